package followup

import (
	"context"
	"log/slog"

	"matrixlead/internal/domain"
	"matrixlead/internal/ports"
)

// Sender combines message generation and transport delivery behind a single
// boundary call that always reports exactly one outcome.
type Sender struct {
	transport ports.MailTransport
	log       *slog.Logger
}

func NewSender(transport ports.MailTransport, log *slog.Logger) *Sender {
	return &Sender{transport: transport, log: log}
}

// Send never returns an error: delivery failures come back as a failed
// outcome for the dispatcher to audit.
func (s *Sender) Send(ctx context.Context, req domain.FollowUpRequest) domain.FollowUpOutcome {
	msg, reason := Generate(req)
	if msg == nil {
		return domain.FollowUpOutcome{Status: domain.FollowUpSkipped, Reason: reason}
	}

	if err := s.transport.Deliver(ctx, *msg); err != nil {
		s.log.Error("follow-up delivery failed", "lead_id", req.LeadID, "to", msg.To, "error", err)
		return domain.FollowUpOutcome{Status: domain.FollowUpFailed, Reason: err.Error(), To: msg.To}
	}

	s.log.Info("follow-up sent", "lead_id", req.LeadID, "to", msg.To, "decision", req.Decision)
	return domain.FollowUpOutcome{Status: domain.FollowUpSent, To: msg.To}
}
