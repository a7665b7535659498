package ports

import (
	"context"

	"matrixlead/internal/domain"
)

// EvaluatorClient issues one request to an external signal evaluator. A failed
// call returns an error; callers substitute the neutral default report.
type EvaluatorClient interface {
	Evaluate(ctx context.Context, sig domain.SignalType, value string) (domain.SignalReport, error)
}

// Collector fans out to all evaluators and assembles a complete bundle. It
// never fails: individual evaluator failures degrade to default reports.
type Collector interface {
	Collect(ctx context.Context, lead domain.Lead) domain.SignalBundle
}

// Aggregator turns a bundle into a single qualification result. Pure and
// deterministic: identical bundles yield identical results.
type Aggregator interface {
	Aggregate(bundle domain.SignalBundle) domain.AggregationResult
}

// Dispatcher applies an aggregation result to lead state and decides on
// follow-up. Persistence errors are returned; follow-up delivery errors are
// audited, never returned.
type Dispatcher interface {
	Apply(ctx context.Context, lead domain.Lead, bundle domain.SignalBundle, result domain.AggregationResult) error
}

// FollowUpSender builds and delivers a follow-up message, reporting exactly
// one outcome per call.
type FollowUpSender interface {
	Send(ctx context.Context, req domain.FollowUpRequest) domain.FollowUpOutcome
}

// MailTransport delivers a generated message.
type MailTransport interface {
	Deliver(ctx context.Context, msg domain.Message) error
}
