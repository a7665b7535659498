package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"matrixlead/internal/domain"
	"matrixlead/internal/metrics"
	"matrixlead/internal/ports"
)

// Dispatcher applies one aggregation result to lead state and drives the
// follow-up decision. Updates for the same lead are serialized so two
// qualification runs cannot interleave their writes.
type Dispatcher struct {
	leads    ports.LeadRepository
	audits   ports.AuditLogRepository
	followup ports.FollowUpSender
	log      *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(leads ports.LeadRepository, audits ports.AuditLogRepository, followup ports.FollowUpSender, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		leads:    leads,
		audits:   audits,
		followup: followup,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (d *Dispatcher) leadLock(leadID string) *sync.Mutex {
	d.mu.Lock()
	defer d.mu.Unlock()
	lock, ok := d.locks[leadID]
	if !ok {
		lock = &sync.Mutex{}
		d.locks[leadID] = lock
	}
	return lock
}

// Apply overwrites the lead's status, score, confidence and risk flags with
// the new result (last-write-wins), records the result, and triggers the
// follow-up for contact-now tiers. Follow-up delivery failures are audited
// and never fail the state update; persistence failures are returned.
func (d *Dispatcher) Apply(ctx context.Context, lead domain.Lead, bundle domain.SignalBundle, result domain.AggregationResult) error {
	lock := d.leadLock(lead.ID)
	lock.Lock()
	defer lock.Unlock()

	if err := d.leads.UpdateStatus(ctx, lead.ID, string(result.Decision), result.TotalScore); err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if err := d.leads.UpdateConfidenceRisk(ctx, lead.ID, result.Confidence, result.RiskFlags); err != nil {
		return fmt.Errorf("update lead confidence: %w", err)
	}

	metrics.QualificationsTotal.WithLabelValues(string(result.Decision)).Inc()
	d.log.Info("qualification applied",
		"lead_id", lead.ID,
		"decision", result.Decision,
		"score", result.TotalScore,
		"confidence", result.Confidence,
		"risk_flags", result.RiskFlags,
	)

	if err := d.audits.Append(ctx, lead.ID, domain.AuditQualificationRun, map[string]any{
		"decision":   result.Decision,
		"score":      result.TotalScore,
		"confidence": result.Confidence,
		"risk_flags": result.RiskFlags,
		"scores":     result.Scores,
	}); err != nil {
		return fmt.Errorf("record qualification result: %w", err)
	}

	outcome := d.triggerFollowUp(ctx, lead, bundle, result)
	metrics.FollowUpOutcomes.WithLabelValues(string(outcome.Status)).Inc()

	details := map[string]any{"status": outcome.Status}
	if outcome.Reason != "" {
		details["reason"] = outcome.Reason
	}
	if outcome.To != "" {
		details["to"] = outcome.To
	}
	if err := d.audits.Append(ctx, lead.ID, auditActionFor(outcome.Status), details); err != nil {
		return fmt.Errorf("record follow-up outcome: %w", err)
	}
	return nil
}

// triggerFollowUp is fire-and-forget from the dispatcher's perspective: the
// boundary returns an outcome, never an error that could undo the status
// update.
func (d *Dispatcher) triggerFollowUp(ctx context.Context, lead domain.Lead, bundle domain.SignalBundle, result domain.AggregationResult) domain.FollowUpOutcome {
	if !result.Decision.Contactable() {
		return domain.FollowUpOutcome{
			Status: domain.FollowUpSkipped,
			Reason: fmt.Sprintf("decision %s does not trigger outreach", result.Decision),
		}
	}
	return d.followup.Send(ctx, buildFollowUpRequest(lead, bundle, result))
}

// buildFollowUpRequest extracts the context fields the generator personalizes
// on from the raw signal metadata.
func buildFollowUpRequest(lead domain.Lead, bundle domain.SignalBundle, result domain.AggregationResult) domain.FollowUpRequest {
	email := bundle.Report(domain.SignalEmail).Metadata
	company := bundle.Report(domain.SignalCompany).Metadata
	message := bundle.Report(domain.SignalMessage).Metadata

	return domain.FollowUpRequest{
		LeadID:          lead.ID,
		Name:            lead.Name,
		Email:           lead.Email,
		Company:         lead.Company,
		Score:           result.TotalScore,
		Decision:        result.Decision,
		Confidence:      result.Confidence,
		EmailType:       metaString(email, "type"),
		CompanySize:     metaString(company, "size"),
		CompanyIndustry: metaString(company, "industry"),
		MessageIntent:   metaString(message, "intent"),
	}
}

func auditActionFor(status domain.FollowUpStatus) string {
	switch status {
	case domain.FollowUpSent:
		return domain.AuditFollowUpTriggered
	case domain.FollowUpFailed:
		return domain.AuditFollowUpFailed
	default:
		return domain.AuditFollowUpSkipped
	}
}

func metaString(md map[string]any, key string) string {
	if s, ok := md[key].(string); ok {
		return s
	}
	return ""
}
