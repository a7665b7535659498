package ports

import "context"

type QualificationJob struct {
	ID     string
	LeadID string
}

// JobRepository supports claiming and updating qualification jobs.
type JobRepository interface {
	Enqueue(ctx context.Context, leadID string) (jobID string, err error)
	ClaimNext(ctx context.Context) (job QualificationJob, found bool, err error)
	MarkCompleted(ctx context.Context, jobID string) error
	MarkFailed(ctx context.Context, jobID string, reason string) error
	StartJobForLead(ctx context.Context, leadID string) (jobID string, err error)
}
