package leads

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixlead/internal/domain"
	"matrixlead/internal/ports"
)

type fakeLeadRepo struct {
	created []domain.Lead
}

func (f *fakeLeadRepo) Create(_ context.Context, lead domain.Lead) (string, error) {
	lead.ID = "lead-1"
	f.created = append(f.created, lead)
	return lead.ID, nil
}

func (f *fakeLeadRepo) Get(_ context.Context, leadID string) (domain.Lead, error) {
	return domain.Lead{ID: leadID}, nil
}
func (f *fakeLeadRepo) List(context.Context) ([]domain.Lead, error)                 { return nil, nil }
func (f *fakeLeadRepo) UpdateStatus(context.Context, string, string, float64) error { return nil }
func (f *fakeLeadRepo) UpdateConfidenceRisk(context.Context, string, float64, []string) error {
	return nil
}
func (f *fakeLeadRepo) MarkEnriched(context.Context, string) error { return nil }

type fakeAuditRepo struct {
	actions []string
}

func (f *fakeAuditRepo) Append(_ context.Context, _, action string, _ map[string]any) error {
	f.actions = append(f.actions, action)
	return nil
}
func (f *fakeAuditRepo) ListByLead(context.Context, string) ([]domain.AuditLog, error) {
	return nil, nil
}

type fakeJobRepo struct {
	enqueued []string
}

func (f *fakeJobRepo) Enqueue(_ context.Context, leadID string) (string, error) {
	f.enqueued = append(f.enqueued, leadID)
	return "job-1", nil
}
func (f *fakeJobRepo) ClaimNext(context.Context) (ports.QualificationJob, bool, error) {
	return ports.QualificationJob{}, false, nil
}
func (f *fakeJobRepo) MarkCompleted(context.Context, string) error      { return nil }
func (f *fakeJobRepo) MarkFailed(context.Context, string, string) error { return nil }
func (f *fakeJobRepo) StartJobForLead(context.Context, string) (string, error) {
	return "", nil
}

func TestCreateEnqueuesQualification(t *testing.T) {
	repo := &fakeLeadRepo{}
	audits := &fakeAuditRepo{}
	jobs := &fakeJobRepo{}
	svc := New(repo, audits, jobs, slog.New(slog.NewTextHandler(io.Discard, nil)))

	lead, err := svc.Create(context.Background(), CreateInput{
		Name:    "  Jane Doe ",
		Email:   "jane@mail.acme.co.uk",
		Phone:   "+15551234567",
		Company: "Acme",
		Source:  "website",
		Message: "need a demo",
	})
	require.NoError(t, err)

	assert.Equal(t, "lead-1", lead.ID)
	assert.Equal(t, domain.StatusNew, lead.Status)
	assert.Equal(t, "Jane Doe", lead.Name)
	assert.Equal(t, "acme.co.uk", lead.EmailDomain)
	assert.Equal(t, []string{"lead-1"}, jobs.enqueued)
	assert.Equal(t, []string{domain.AuditLeadCreated}, audits.actions)
}

func TestEmailDomain(t *testing.T) {
	tests := []struct {
		email string
		want  string
	}{
		{"jane@acme.com", "acme.com"},
		{"jane@mail.acme.co.uk", "acme.co.uk"},
		{"JANE@ACME.COM", "acme.com"},
		{"no-at-sign", ""},
		{"trailing@", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EmailDomain(tt.email), tt.email)
	}
}
