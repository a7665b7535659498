package domain

import "time"

// Core domain models used internally. API request/response shapes live in the
// HTTP adapter; keep these decoupled where helpful.

// SignalType names one dimension of lead quality.
type SignalType string

const (
	SignalEmail   SignalType = "email"
	SignalPhone   SignalType = "phone"
	SignalName    SignalType = "name"
	SignalCompany SignalType = "company"
	SignalMessage SignalType = "message"
)

// SignalTypes lists every signal in evaluation order.
var SignalTypes = []SignalType{SignalEmail, SignalPhone, SignalName, SignalCompany, SignalMessage}

// SignalReport is the normalized output of one evaluator: a trust/relevance
// score in [0,1] plus type-specific metadata consumed by risk-flag and bonus
// logic downstream.
type SignalReport struct {
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DefaultReport substitutes for an evaluator that could not produce a report.
// The aggregator never sees a missing signal, only this neutral stand-in.
func DefaultReport() SignalReport {
	return SignalReport{Score: 0.5, Metadata: map[string]any{}}
}

// SignalBundle holds one report per signal type for a single qualification
// request. Built fresh per request and never mutated after hand-off.
type SignalBundle struct {
	LeadID  string
	Reports map[SignalType]SignalReport
}

// Report returns the report for sig, or the neutral default if the bundle was
// built without it.
func (b SignalBundle) Report(sig SignalType) SignalReport {
	if r, ok := b.Reports[sig]; ok {
		return r
	}
	return DefaultReport()
}

// Decision is a qualification tier, ordered by contact priority.
type Decision string

const (
	DecisionHot          Decision = "HOT"
	DecisionQualified    Decision = "QUALIFIED"
	DecisionWarm         Decision = "WARM"
	DecisionNurture      Decision = "NURTURE"
	DecisionReview       Decision = "REVIEW"
	DecisionNotQualified Decision = "NOT_QUALIFIED"
)

// Contactable reports whether a decision tier triggers an immediate follow-up.
func (d Decision) Contactable() bool {
	return d == DecisionHot || d == DecisionQualified || d == DecisionWarm
}

// AggregationResult is the single output of the aggregation engine for one
// bundle. RiskFlags is kept sorted so identical bundles produce identical
// results.
type AggregationResult struct {
	LeadID     string                 `json:"lead_id"`
	TotalScore float64                `json:"total_score"`
	Decision   Decision               `json:"decision"`
	Confidence float64                `json:"confidence"`
	RiskFlags  []string               `json:"risk_flags"`
	Scores     map[SignalType]float64 `json:"scores"`
}

// StatusNew is the lead lifecycle tag before any aggregation has been applied.
// Afterwards the status always equals the latest decision (last-write-wins).
const StatusNew = "NEW"

type Lead struct {
	ID          string
	Name        string
	Email       string
	Phone       string
	Company     string
	Budget      string
	Source      string
	Message     string
	EmailDomain string
	Status      string
	Score       float64
	Confidence  float64
	RiskFlags   []string
	Enriched    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AuditLog records one pipeline event for a lead.
type AuditLog struct {
	ID        string
	LeadID    string
	Action    string
	Details   map[string]any
	CreatedAt time.Time
}

// Audit actions written by the dispatcher and intake service.
const (
	AuditLeadCreated       = "lead_created"
	AuditQualificationRun  = "qualification_result"
	AuditFollowUpTriggered = "followup_triggered"
	AuditFollowUpSkipped   = "followup_skipped"
	AuditFollowUpFailed    = "followup_failed"
)

// FollowUpStatus is the outcome of one follow-up boundary call.
type FollowUpStatus string

const (
	FollowUpSent    FollowUpStatus = "sent"
	FollowUpSkipped FollowUpStatus = "skipped"
	FollowUpFailed  FollowUpStatus = "failed"
)

// FollowUpRequest carries everything the follow-up generator needs: contact
// info, the decision, and selected context fields extracted from the raw
// signals.
type FollowUpRequest struct {
	LeadID          string
	Name            string
	Email           string
	Company         string
	Score           float64
	Decision        Decision
	Confidence      float64
	EmailType       string
	CompanySize     string
	CompanyIndustry string
	MessageIntent   string
}

// FollowUpOutcome is returned synchronously by the follow-up boundary. Exactly
// one of the three statuses, with a reason on skip or failure.
type FollowUpOutcome struct {
	Status FollowUpStatus
	Reason string
	To     string
}

// Message is a generated follow-up ready for transport.
type Message struct {
	To      string
	Subject string
	Body    string
}
