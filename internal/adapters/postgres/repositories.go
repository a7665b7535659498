package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"matrixlead/internal/domain"
	"matrixlead/internal/ports"
)

// LeadRepository

func (db *DB) Create(ctx context.Context, lead domain.Lead) (string, error) {
	var id string
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, company, budget, source, message, email_domain, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, lead.Name, lead.Email, lead.Phone, lead.Company, lead.Budget, lead.Source, lead.Message, lead.EmailDomain, lead.Status).Scan(&id)
	return id, err
}

func (db *DB) Get(ctx context.Context, leadID string) (domain.Lead, error) {
	var lead domain.Lead
	var riskFlags []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT id, name, email, phone, company, budget, source, message, email_domain,
		       status, score, confidence, COALESCE(risk_flags, '[]'::jsonb), enriched, created_at, updated_at
		FROM leads WHERE id = $1
	`, leadID).Scan(
		&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company, &lead.Budget,
		&lead.Source, &lead.Message, &lead.EmailDomain, &lead.Status, &lead.Score,
		&lead.Confidence, &riskFlags, &lead.Enriched, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	if err := json.Unmarshal(riskFlags, &lead.RiskFlags); err != nil {
		return domain.Lead{}, fmt.Errorf("decode risk flags for lead %s: %w", lead.ID, err)
	}
	return lead, nil
}

func (db *DB) List(ctx context.Context) ([]domain.Lead, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, name, email, phone, company, budget, source, message, email_domain,
		       status, score, confidence, COALESCE(risk_flags, '[]'::jsonb), enriched, created_at, updated_at
		FROM leads ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		var lead domain.Lead
		var riskFlags []byte
		if err := rows.Scan(
			&lead.ID, &lead.Name, &lead.Email, &lead.Phone, &lead.Company, &lead.Budget,
			&lead.Source, &lead.Message, &lead.EmailDomain, &lead.Status, &lead.Score,
			&lead.Confidence, &riskFlags, &lead.Enriched, &lead.CreatedAt, &lead.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(riskFlags, &lead.RiskFlags); err != nil {
			return nil, fmt.Errorf("decode risk flags for lead %s: %w", lead.ID, err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (db *DB) UpdateStatus(ctx context.Context, leadID, status string, score float64) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE leads SET status=$2, score=$3, updated_at=now() WHERE id=$1
	`, leadID, status, score)
	return err
}

func (db *DB) UpdateConfidenceRisk(ctx context.Context, leadID string, confidence float64, riskFlags []string) error {
	encoded, err := json.Marshal(riskFlags)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
		UPDATE leads SET confidence=$2, risk_flags=$3, updated_at=now() WHERE id=$1
	`, leadID, confidence, encoded)
	return err
}

func (db *DB) MarkEnriched(ctx context.Context, leadID string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE leads SET enriched=true, updated_at=now() WHERE id=$1
	`, leadID)
	return err
}

// AuditLogRepository

func (db *DB) Append(ctx context.Context, leadID, action string, details map[string]any) error {
	encoded, err := json.Marshal(details)
	if err != nil {
		return err
	}
	_, err = db.Pool.Exec(ctx, `
		INSERT INTO lead_logs (lead_id, action, details) VALUES ($1, $2, $3)
	`, leadID, action, encoded)
	return err
}

func (db *DB) ListByLead(ctx context.Context, leadID string) ([]domain.AuditLog, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, lead_id, action, COALESCE(details, '{}'::jsonb), created_at
		FROM lead_logs WHERE lead_id = $1 ORDER BY created_at
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []domain.AuditLog
	for rows.Next() {
		var entry domain.AuditLog
		var details []byte
		if err := rows.Scan(&entry.ID, &entry.LeadID, &entry.Action, &details, &entry.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(details, &entry.Details); err != nil {
			return nil, fmt.Errorf("decode log details %s: %w", entry.ID, err)
		}
		logs = append(logs, entry)
	}
	return logs, rows.Err()
}
