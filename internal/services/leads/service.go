package leads

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/net/publicsuffix"

	"matrixlead/internal/domain"
	"matrixlead/internal/ports"
)

// Service handles lead intake and reads. Creating a lead also enqueues its
// qualification job; the background workers pick it up from there.
type Service struct {
	repo   ports.LeadRepository
	audits ports.AuditLogRepository
	jobs   ports.JobRepository
	log    *slog.Logger
}

func New(repo ports.LeadRepository, audits ports.AuditLogRepository, jobs ports.JobRepository, log *slog.Logger) *Service {
	return &Service{repo: repo, audits: audits, jobs: jobs, log: log}
}

type CreateInput struct {
	Name    string
	Email   string
	Phone   string
	Company string
	Budget  string
	Source  string
	Message string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Lead, error) {
	lead := domain.Lead{
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Phone:       strings.TrimSpace(in.Phone),
		Company:     strings.TrimSpace(in.Company),
		Budget:      in.Budget,
		Source:      in.Source,
		Message:     in.Message,
		EmailDomain: EmailDomain(in.Email),
		Status:      domain.StatusNew,
	}

	id, err := s.repo.Create(ctx, lead)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("create lead: %w", err)
	}
	lead.ID = id

	if err := s.audits.Append(ctx, id, domain.AuditLeadCreated, map[string]any{
		"source":       lead.Source,
		"email_domain": lead.EmailDomain,
	}); err != nil {
		s.log.Error("lead created but audit write failed", "lead_id", id, "error", err)
	}

	jobID, err := s.jobs.Enqueue(ctx, id)
	if err != nil {
		return lead, fmt.Errorf("enqueue qualification: %w", err)
	}
	s.log.Info("lead created", "lead_id", id, "job_id", jobID, "source", lead.Source)
	return lead, nil
}

func (s *Service) Get(ctx context.Context, leadID string) (domain.Lead, error) {
	return s.repo.Get(ctx, leadID)
}

func (s *Service) List(ctx context.Context) ([]domain.Lead, error) {
	return s.repo.List(ctx)
}

func (s *Service) Logs(ctx context.Context, leadID string) ([]domain.AuditLog, error) {
	return s.audits.ListByLead(ctx, leadID)
}

// Requalify enqueues a fresh qualification job for an existing lead.
func (s *Service) Requalify(ctx context.Context, leadID string) (string, error) {
	if _, err := s.repo.Get(ctx, leadID); err != nil {
		return "", err
	}
	return s.jobs.Enqueue(ctx, leadID)
}

// EmailDomain reduces an email address to the registrable domain (eTLD+1) of
// its host, or the bare host when the public suffix list has no answer.
func EmailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return ""
	}
	host := strings.ToLower(strings.TrimSpace(email[at+1:]))
	if registrable, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return registrable
	}
	return host
}
