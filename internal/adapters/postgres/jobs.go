package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"matrixlead/internal/ports"
)

func (db *DB) Enqueue(ctx context.Context, leadID string) (string, error) {
	var jobID string
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO qualification_jobs (lead_id) VALUES ($1) RETURNING id
	`, leadID).Scan(&jobID)
	return jobID, err
}

// ClaimNext selects the next queued job using SKIP LOCKED and marks it running.
func (db *DB) ClaimNext(ctx context.Context) (job ports.QualificationJob, found bool, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return job, false, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		SELECT id, lead_id FROM qualification_jobs
		WHERE status = 'queued'
		ORDER BY queued_at
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`).Scan(&job.ID, &job.LeadID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = nil
		return job, false, nil
	}
	if err != nil {
		return job, false, err
	}

	if _, err = tx.Exec(ctx, `
		UPDATE qualification_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
	`, job.ID); err != nil {
		return job, false, err
	}
	return job, true, nil
}

func (db *DB) MarkCompleted(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		UPDATE qualification_jobs SET status='completed', finished_at=now() WHERE id=$1
	`, jobID)
	return err
}

func (db *DB) MarkFailed(ctx context.Context, jobID string, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := db.Pool.Exec(ctx, `
		UPDATE qualification_jobs SET status='failed', finished_at=now(), last_error=$2 WHERE id=$1
	`, jobID, reason)
	return err
}

// StartJobForLead claims the queued job for a specific lead and returns the
// job id. Used by the blocking qualify path so the background workers cannot
// pick up the same job.
func (db *DB) StartJobForLead(ctx context.Context, leadID string) (jobID string, err error) {
	tx, err := db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			_ = tx.Commit(ctx)
		}
	}()

	err = tx.QueryRow(ctx, `
		SELECT id FROM qualification_jobs
		WHERE lead_id = $1 AND status = 'queued'
		ORDER BY queued_at DESC
		FOR UPDATE SKIP LOCKED
		LIMIT 1
	`, leadID).Scan(&jobID)
	if errors.Is(err, pgx.ErrNoRows) {
		err = ports.ErrNotFound
		return "", err
	}
	if err != nil {
		return "", err
	}
	if _, err = tx.Exec(ctx, `
		UPDATE qualification_jobs SET status='running', started_at=now(), attempts=attempts+1 WHERE id=$1
	`, jobID); err != nil {
		return "", err
	}
	return jobID, nil
}
