package qualifyrunner

import (
	"context"
	"log/slog"
	"time"

	"matrixlead/internal/ports"
)

// Processor performs the qualification work for a job's lead id.
type Processor interface {
	Process(ctx context.Context, leadID string) error
}

// Run starts worker goroutines that claim qualification jobs and process
// them until the context is cancelled.
func Run(ctx context.Context, repo ports.JobRepository, processor Processor, concurrency int, pollInterval time.Duration, log *slog.Logger) {
	if concurrency < 1 {
		return
	}
	jobsCh := make(chan ports.QualificationJob, concurrency)

	// dispatcher loop
	go func() {
		ticker := time.NewTicker(pollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				close(jobsCh)
				return
			case <-ticker.C:
				for {
					job, found, err := repo.ClaimNext(ctx)
					if err != nil {
						log.Error("job claim failed", "error", err)
						break
					}
					if !found {
						break
					}
					jobsCh <- job
				}
			}
		}
	}()

	// workers
	for i := 0; i < concurrency; i++ {
		go func(idx int) {
			for job := range jobsCh {
				if err := processor.Process(ctx, job.LeadID); err != nil {
					_ = repo.MarkFailed(ctx, job.ID, err.Error())
					log.Error("qualification job failed", "worker", idx, "job_id", job.ID, "lead_id", job.LeadID, "error", err)
					continue
				}
				if err := repo.MarkCompleted(ctx, job.ID); err != nil {
					log.Error("job completion write failed", "worker", idx, "job_id", job.ID, "error", err)
				}
			}
		}(i)
	}
}

// ProcessInline starts and processes a queued job for a specific lead
// synchronously, using the same processor logic as the background workers.
func ProcessInline(ctx context.Context, repo ports.JobRepository, processor Processor, leadID string) error {
	jobID, err := repo.StartJobForLead(ctx, leadID)
	if err != nil {
		return err
	}
	if err := processor.Process(ctx, leadID); err != nil {
		_ = repo.MarkFailed(ctx, jobID, err.Error())
		return err
	}
	return repo.MarkCompleted(ctx, jobID)
}
