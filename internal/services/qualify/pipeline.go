package qualify

import (
	"context"
	"fmt"
	"log/slog"

	"matrixlead/internal/ports"
)

// Pipeline runs one full qualification: load the lead, collect signals,
// aggregate, dispatch. It is the processor executed by the background
// workers and by the blocking API path.
type Pipeline struct {
	leads      ports.LeadRepository
	collector  ports.Collector
	engine     ports.Aggregator
	dispatcher ports.Dispatcher
	log        *slog.Logger
}

func New(leads ports.LeadRepository, collector ports.Collector, engine ports.Aggregator, dispatcher ports.Dispatcher, log *slog.Logger) *Pipeline {
	return &Pipeline{leads: leads, collector: collector, engine: engine, dispatcher: dispatcher, log: log}
}

// Process qualifies one lead. Partial evaluator failure still yields a
// decision; only a broken scoring path or persistence failure errors out.
func (p *Pipeline) Process(ctx context.Context, leadID string) error {
	lead, err := p.leads.Get(ctx, leadID)
	if err != nil {
		return fmt.Errorf("load lead %s: %w", leadID, err)
	}

	bundle := p.collector.Collect(ctx, lead)

	// The engine is the scoring authority: it cannot degrade, so any failure
	// from here on is fatal for this run and must surface.
	result := p.engine.Aggregate(bundle)

	if err := p.dispatcher.Apply(ctx, lead, bundle, result); err != nil {
		return fmt.Errorf("dispatch result for lead %s: %w", leadID, err)
	}

	if err := p.leads.MarkEnriched(ctx, leadID); err != nil {
		return fmt.Errorf("mark lead %s enriched: %w", leadID, err)
	}

	p.log.Debug("qualification pipeline finished", "lead_id", leadID, "decision", result.Decision)
	return nil
}
