package followup

import (
	"fmt"
	"strings"

	"matrixlead/internal/domain"
)

// Generate builds the follow-up message for a contact-now decision. When no
// action applies (non-contactable tier, or no address to send to) it returns
// a nil message with the skip reason; that is a normal outcome, not an error.
func Generate(req domain.FollowUpRequest) (*domain.Message, string) {
	if !req.Decision.Contactable() {
		return nil, fmt.Sprintf("decision %s does not trigger outreach", req.Decision)
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, "lead has no email address"
	}

	name := req.Name
	if name == "" {
		name = "there"
	}
	company := req.Company
	if company == "" {
		company = "your company"
	}

	var subject, greeting, intro, closing string
	switch req.Decision {
	case domain.DecisionHot:
		subject = fmt.Sprintf("Exclusive opportunity for %s", company)
		greeting = fmt.Sprintf("Hi %s,", name)
		intro = fmt.Sprintf("I noticed your inquiry and wanted to reach out personally. Based on your profile, I believe we have an exceptional opportunity that aligns with %s's needs.", company)
		closing = "I'd love to schedule a call this week to discuss how we can help."
	case domain.DecisionQualified:
		subject = fmt.Sprintf("Great fit for %s - let's connect", company)
		greeting = fmt.Sprintf("Hello %s,", name)
		intro = fmt.Sprintf("Thank you for your interest! I've reviewed your information and I'm excited to discuss how we can help %s achieve its goals.", company)
		closing = "I'd like to schedule a brief call within the next few days."
	default: // WARM
		subject = fmt.Sprintf("Following up on your inquiry - %s", company)
		greeting = fmt.Sprintf("Hi %s,", name)
		intro = fmt.Sprintf("I wanted to follow up on your recent inquiry. I'd love to learn more about %s and explore how we might be able to help.", company)
		closing = "Let's schedule a call when you have time."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n", greeting, intro)
	fmt.Fprintf(&b, "Why we think this is a great fit:\n")
	fmt.Fprintf(&b, "- Match score: %d%% - %s priority\n", int(req.Score*100), req.Decision)
	fmt.Fprintf(&b, "- Confidence level: %d%%\n", int(req.Confidence*100))
	if req.CompanyIndustry != "" && !strings.EqualFold(req.CompanyIndustry, "unknown") {
		fmt.Fprintf(&b, "- Experience with %s companies like %s\n", strings.ToLower(req.CompanyIndustry), company)
	}
	fmt.Fprintf(&b, "\n%s\n\nBest regards,\nMatrixLead AI\n", closing)

	return &domain.Message{To: req.Email, Subject: subject, Body: b.String()}, ""
}
