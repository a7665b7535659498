package signals

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"matrixlead/internal/domain"
	"matrixlead/internal/metrics"
	"matrixlead/internal/ports"
)

// Orchestrator fans out to all five evaluators concurrently under one shared
// timeout budget and joins the results into a complete bundle. It holds no
// per-request state; each call owns its own bundle.
type Orchestrator struct {
	client  ports.EvaluatorClient
	timeout time.Duration
	log     *slog.Logger
}

func New(client ports.EvaluatorClient, timeout time.Duration, log *slog.Logger) *Orchestrator {
	return &Orchestrator{client: client, timeout: timeout, log: log}
}

// Collect never fails: a leg that errors or times out contributes the neutral
// default report instead, so the aggregator always sees all five signals.
func (o *Orchestrator) Collect(ctx context.Context, lead domain.Lead) domain.SignalBundle {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	values := map[domain.SignalType]string{
		domain.SignalEmail:   lead.Email,
		domain.SignalPhone:   lead.Phone,
		domain.SignalName:    lead.Name,
		domain.SignalCompany: lead.Company,
		domain.SignalMessage: lead.Message,
	}

	// One slot per signal; each goroutine writes only its own index, so the
	// join needs no locking.
	collected := make([]domain.SignalReport, len(domain.SignalTypes))

	g, gctx := errgroup.WithContext(ctx)
	for i, sig := range domain.SignalTypes {
		i, sig := i, sig
		g.Go(func() error {
			report, err := o.client.Evaluate(gctx, sig, values[sig])
			if err != nil {
				o.log.Warn("evaluator call failed, substituting neutral default",
					"signal", sig, "lead_id", lead.ID, "error", err)
				metrics.EvaluatorFailures.WithLabelValues(string(sig)).Inc()
				report = domain.DefaultReport()
			}
			collected[i] = report
			return nil
		})
	}
	// Legs never return errors; Wait is purely the join barrier.
	_ = g.Wait()

	reports := make(map[domain.SignalType]domain.SignalReport, len(domain.SignalTypes))
	for i, sig := range domain.SignalTypes {
		reports[sig] = collected[i]
	}
	return domain.SignalBundle{LeadID: lead.ID, Reports: reports}
}
