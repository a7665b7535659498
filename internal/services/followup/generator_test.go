package followup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixlead/internal/domain"
)

func contactableReq(decision domain.Decision) domain.FollowUpRequest {
	return domain.FollowUpRequest{
		LeadID:     "lead-1",
		Name:       "Jane",
		Email:      "jane@acme.example",
		Company:    "Acme",
		Score:      0.88,
		Decision:   decision,
		Confidence: 0.95,
	}
}

func TestGenerateTierVariants(t *testing.T) {
	tests := []struct {
		decision    domain.Decision
		wantSubject string
	}{
		{domain.DecisionHot, "Exclusive opportunity for Acme"},
		{domain.DecisionQualified, "Great fit for Acme - let's connect"},
		{domain.DecisionWarm, "Following up on your inquiry - Acme"},
	}

	for _, tt := range tests {
		t.Run(string(tt.decision), func(t *testing.T) {
			msg, reason := Generate(contactableReq(tt.decision))
			require.NotNil(t, msg)
			assert.Empty(t, reason)
			assert.Equal(t, tt.wantSubject, msg.Subject)
			assert.Equal(t, "jane@acme.example", msg.To)
			assert.Contains(t, msg.Body, "88%")
			assert.Contains(t, msg.Body, "95%")
		})
	}
}

func TestGenerateNoActionForNonContactableTiers(t *testing.T) {
	for _, decision := range []domain.Decision{domain.DecisionNurture, domain.DecisionReview, domain.DecisionNotQualified} {
		msg, reason := Generate(contactableReq(decision))
		assert.Nil(t, msg, decision)
		assert.Contains(t, reason, string(decision))
	}
}

func TestGenerateNoActionWithoutEmail(t *testing.T) {
	req := contactableReq(domain.DecisionHot)
	req.Email = "  "

	msg, reason := Generate(req)
	assert.Nil(t, msg)
	assert.Equal(t, "lead has no email address", reason)
}

func TestGenerateFallbackNameAndCompany(t *testing.T) {
	req := contactableReq(domain.DecisionWarm)
	req.Name = ""
	req.Company = ""

	msg, _ := Generate(req)
	require.NotNil(t, msg)
	assert.Contains(t, msg.Body, "Hi there,")
	assert.Contains(t, msg.Subject, "your company")
}

type stubTransport struct {
	delivered []domain.Message
	err       error
}

func (s *stubTransport) Deliver(_ context.Context, msg domain.Message) error {
	if s.err != nil {
		return s.err
	}
	s.delivered = append(s.delivered, msg)
	return nil
}

func TestSenderOutcomes(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sent", func(t *testing.T) {
		transport := &stubTransport{}
		out := NewSender(transport, log).Send(context.Background(), contactableReq(domain.DecisionHot))

		assert.Equal(t, domain.FollowUpSent, out.Status)
		assert.Equal(t, "jane@acme.example", out.To)
		require.Len(t, transport.delivered, 1)
	})

	t.Run("skipped without touching transport", func(t *testing.T) {
		transport := &stubTransport{}
		out := NewSender(transport, log).Send(context.Background(), contactableReq(domain.DecisionNurture))

		assert.Equal(t, domain.FollowUpSkipped, out.Status)
		assert.NotEmpty(t, out.Reason)
		assert.Empty(t, transport.delivered)
	})

	t.Run("failed carries transport reason", func(t *testing.T) {
		transport := &stubTransport{err: errors.New("smtp: connection reset")}
		out := NewSender(transport, log).Send(context.Background(), contactableReq(domain.DecisionQualified))

		assert.Equal(t, domain.FollowUpFailed, out.Status)
		assert.Equal(t, "smtp: connection reset", out.Reason)
	})
}
