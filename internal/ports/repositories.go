package ports

import (
	"context"
	"errors"

	"matrixlead/internal/domain"
)

// ErrNotFound is returned by repositories when the requested row is absent.
var ErrNotFound = errors.New("not found")

// LeadRepository stores and fetches leads.
type LeadRepository interface {
	Create(ctx context.Context, lead domain.Lead) (string, error)
	Get(ctx context.Context, leadID string) (domain.Lead, error)
	List(ctx context.Context) ([]domain.Lead, error)

	// UpdateStatus and UpdateConfidenceRisk overwrite their fields
	// (last-write-wins) and are idempotent when replayed with identical
	// arguments.
	UpdateStatus(ctx context.Context, leadID string, status string, score float64) error
	UpdateConfidenceRisk(ctx context.Context, leadID string, confidence float64, riskFlags []string) error
	MarkEnriched(ctx context.Context, leadID string) error
}

// AuditLogRepository appends and reads per-lead audit records.
type AuditLogRepository interface {
	Append(ctx context.Context, leadID string, action string, details map[string]any) error
	ListByLead(ctx context.Context, leadID string) ([]domain.AuditLog, error)
}
