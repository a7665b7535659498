package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"matrixlead/internal/domain"
)

// Engine is the scoring authority: a pure, deterministic function from a
// signal bundle to an aggregation result. It holds no state and performs no
// I/O.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Fixed signal weights. They sum to 1.0 and are never renormalized: a failed
// evaluator's neutral 0.5 default still contributes its full weighted share.
var weights = map[domain.SignalType]float64{
	domain.SignalEmail:   0.28,
	domain.SignalPhone:   0.12,
	domain.SignalName:    0.08,
	domain.SignalCompany: 0.32,
	domain.SignalMessage: 0.20,
}

// Zero-score confidence deductions per signal. Name is never penalized.
var confidenceDeductions = map[domain.SignalType]float64{
	domain.SignalEmail:   0.15,
	domain.SignalPhone:   0.10,
	domain.SignalCompany: 0.15,
	domain.SignalMessage: 0.10,
}

var highValueIndustries = []string{
	"technology", "software", "saas", "fintech", "finance", "healthcare", "biotech", "ecommerce",
}

var urgencyKeywords = []string{
	"asap", "urgent", "immediately", "right away", "as soon as possible", "this week", "today",
}

var buyingKeywords = []string{
	"buy", "purchase", "pricing", "price", "quote", "demo", "budget", "contract", "subscribe", "sign up",
}

var buyingIntents = map[string]bool{
	"interested": true, "buying": true, "qualified": true, "hot": true,
}

// Substrings that make a risk flag critical. The partition is re-derived from
// the flag text, never stored.
var criticalMarkers = []string{"invalid", "disposable", "bot", "spam"}

// Aggregate scores one bundle. Identical bundles produce identical results:
// risk flags come out sorted and all arithmetic is fixed-order float64.
func (e *Engine) Aggregate(bundle domain.SignalBundle) domain.AggregationResult {
	scores := make(map[domain.SignalType]float64, len(domain.SignalTypes))
	for _, sig := range domain.SignalTypes {
		scores[sig] = normalizeScore(bundle.Report(sig).Score)
	}

	flags := detectRiskFlags(bundle)
	criticalCount := 0
	for _, f := range flags {
		if isCritical(f) {
			criticalCount++
		}
	}
	minorCount := len(flags) - criticalCount

	confidence := 1.0
	for _, sig := range domain.SignalTypes {
		if scores[sig] == 0 {
			confidence -= confidenceDeductions[sig]
		}
	}
	confidence -= 0.08 * float64(len(flags))
	confidence = round2(clamp01(confidence))

	total := 0.0
	for _, sig := range domain.SignalTypes {
		total += scores[sig] * weights[sig]
	}

	total += e.contextualBonuses(bundle, scores)
	total -= float64(criticalCount)*0.08 + float64(minorCount)*0.03
	total = round2(clamp01(total))

	decision := tierFor(total, criticalCount)

	// Legacy qualifier rule carried forward: a form submission declaring no
	// budget while just browsing is always nurtured, whatever it scored.
	if text := messageText(bundle); containsFold(text, "no budget") && containsFold(text, "just browsing") {
		decision = domain.DecisionNurture
		total = 0.10
		confidence = 0.90
	}

	return domain.AggregationResult{
		LeadID:     bundle.LeadID,
		TotalScore: total,
		Decision:   decision,
		Confidence: confidence,
		RiskFlags:  flags,
		Scores:     scores,
	}
}

// tierFor maps a final score and critical-flag count to a decision tier.
// Evaluated top-down, first match wins.
func tierFor(total float64, criticalCount int) domain.Decision {
	switch {
	case total >= 0.85 && criticalCount == 0:
		return domain.DecisionHot
	case total >= 0.70 && criticalCount == 0:
		return domain.DecisionQualified
	case total >= 0.55 && criticalCount <= 1:
		return domain.DecisionWarm
	case total >= 0.45:
		return domain.DecisionNurture
	case total >= 0.35:
		return domain.DecisionReview
	default:
		return domain.DecisionNotQualified
	}
}

func (e *Engine) contextualBonuses(bundle domain.SignalBundle, scores map[domain.SignalType]float64) float64 {
	email := bundle.Report(domain.SignalEmail).Metadata
	company := bundle.Report(domain.SignalCompany).Metadata
	message := bundle.Report(domain.SignalMessage).Metadata

	bonus := 0.0

	// Industry.
	industry := strings.ToLower(metaString(company, "industry"))
	switch {
	case matchesAny(industry, highValueIndustries):
		bonus += 0.10
	case industry != "" && industry != "unknown":
		bonus += 0.05
	}

	// Company size.
	switch strings.ToLower(metaString(company, "size")) {
	case "large":
		bonus += 0.10
	case "medium":
		bonus += 0.07
	case "small":
		bonus += 0.03
	}

	text := strings.ToLower(messageText(bundle))

	urgencyBonus := math.Min(0.08, float64(countKeywords(text, urgencyKeywords))*0.03)
	bonus += urgencyBonus

	buyingBonus := math.Min(0.10, float64(countKeywords(text, buyingKeywords))*0.04)
	if buyingIntents[strings.ToLower(metaString(message, "intent"))] {
		buyingBonus += 0.05
	}
	bonus += buyingBonus

	// Business email.
	if strings.EqualFold(metaString(email, "type"), "business") && scores[domain.SignalEmail] >= 0.7 {
		bonus += 0.05
	}

	// Verified company: exists and has a website on record.
	if exists, ok := metaBool(company, "exists"); ok && exists && metaString(company, "website") != "" {
		bonus += 0.04
	}

	// Strong email+company combo; higher tier wins.
	switch {
	case scores[domain.SignalEmail] >= 0.85 && scores[domain.SignalCompany] >= 0.85:
		bonus += 0.06
	case scores[domain.SignalEmail] >= 0.75 && scores[domain.SignalCompany] >= 0.75:
		bonus += 0.03
	}

	// Clear intent backed by a real company.
	if scores[domain.SignalMessage] >= 0.80 && scores[domain.SignalCompany] >= 0.75 {
		bonus += 0.04
	}

	// High-intent override: urgency plus buying intent lets strong
	// personal-email leads still qualify.
	if urgencyBonus >= 0.04 && buyingBonus >= 0.04 {
		bonus += 0.08
	}

	return bonus
}

// detectRiskFlags inspects per-signal metadata against fixed rule sets and
// returns the flags sorted.
func detectRiskFlags(bundle domain.SignalBundle) []string {
	var flags []string

	email := bundle.Report(domain.SignalEmail).Metadata
	switch t := strings.ToLower(metaString(email, "type")); t {
	case "disposable", "spammy", "bot", "invalid":
		flags = append(flags, "email_"+t)
	}
	if genuine, ok := metaBool(email, "is_likely_genuine"); ok && !genuine {
		flags = append(flags, "email_not_genuine")
	}

	phone := bundle.Report(domain.SignalPhone).Metadata
	if valid, ok := metaBool(phone, "is_valid"); ok && !valid {
		flags = append(flags, "phone_invalid")
	}
	if strings.EqualFold(metaString(phone, "type"), "voip") {
		flags = append(flags, "phone_voip")
	}

	name := bundle.Report(domain.SignalName).Metadata
	if valid, ok := metaBool(name, "is_valid"); ok && !valid {
		flags = append(flags, "name_suspicious")
	}

	company := bundle.Report(domain.SignalCompany).Metadata
	if exists, ok := metaBool(company, "exists"); ok && !exists {
		flags = append(flags, "company_not_found")
	}

	message := bundle.Report(domain.SignalMessage).Metadata
	switch intent := strings.ToLower(metaString(message, "intent")); intent {
	case "spam", "irrelevant", "unclear":
		flags = append(flags, "message_"+intent)
	}

	sort.Strings(flags)
	return flags
}

func isCritical(flag string) bool {
	return matchesAny(flag, criticalMarkers)
}

// messageText returns the raw inbound message, as captured by the facade in
// the message report's metadata.
func messageText(bundle domain.SignalBundle) string {
	return metaString(bundle.Report(domain.SignalMessage).Metadata, "text")
}

// normalizeScore clamps a score to [0,1] and maps anything non-finite to 0,
// so a malformed input degrades instead of corrupting the total.
func normalizeScore(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return clamp01(v)
}

// SafeScore coerces an arbitrary decoded JSON value into a valid score.
// Non-numeric values become 0.
func SafeScore(v any) float64 {
	switch n := v.(type) {
	case float64:
		return normalizeScore(n)
	case int:
		return normalizeScore(float64(n))
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err == nil {
			return normalizeScore(f)
		}
		return 0
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func metaString(md map[string]any, key string) string {
	if s, ok := md[key].(string); ok {
		return s
	}
	return ""
}

func metaBool(md map[string]any, key string) (value, present bool) {
	if b, ok := md[key].(bool); ok {
		return b, true
	}
	return false, false
}

func matchesAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

func countKeywords(text string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
		}
	}
	return count
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
