package qualify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"matrixlead/internal/domain"
	"matrixlead/internal/ports"
)

type fakeLeadRepo struct {
	lead     domain.Lead
	getErr   error
	enriched []string
}

func (f *fakeLeadRepo) Get(_ context.Context, leadID string) (domain.Lead, error) {
	if f.getErr != nil {
		return domain.Lead{}, f.getErr
	}
	lead := f.lead
	lead.ID = leadID
	return lead, nil
}

func (f *fakeLeadRepo) Create(context.Context, domain.Lead) (string, error) { return "", nil }
func (f *fakeLeadRepo) List(context.Context) ([]domain.Lead, error)         { return nil, nil }
func (f *fakeLeadRepo) UpdateStatus(context.Context, string, string, float64) error {
	return nil
}
func (f *fakeLeadRepo) UpdateConfidenceRisk(context.Context, string, float64, []string) error {
	return nil
}
func (f *fakeLeadRepo) MarkEnriched(_ context.Context, leadID string) error {
	f.enriched = append(f.enriched, leadID)
	return nil
}

type fakeCollector struct {
	bundles []domain.SignalBundle
}

func (f *fakeCollector) Collect(_ context.Context, lead domain.Lead) domain.SignalBundle {
	bundle := domain.SignalBundle{LeadID: lead.ID, Reports: map[domain.SignalType]domain.SignalReport{}}
	f.bundles = append(f.bundles, bundle)
	return bundle
}

type fakeAggregator struct {
	result domain.AggregationResult
}

func (f *fakeAggregator) Aggregate(bundle domain.SignalBundle) domain.AggregationResult {
	result := f.result
	result.LeadID = bundle.LeadID
	return result
}

type fakeDispatcher struct {
	applied []domain.AggregationResult
	err     error
}

func (f *fakeDispatcher) Apply(_ context.Context, _ domain.Lead, _ domain.SignalBundle, result domain.AggregationResult) error {
	if f.err != nil {
		return f.err
	}
	f.applied = append(f.applied, result)
	return nil
}

func TestProcessRunsFullPipeline(t *testing.T) {
	repo := &fakeLeadRepo{lead: domain.Lead{Email: "jane@acme.com"}}
	collector := &fakeCollector{}
	dispatcher := &fakeDispatcher{}
	engine := &fakeAggregator{result: domain.AggregationResult{Decision: domain.DecisionHot, TotalScore: 0.9}}
	p := New(repo, collector, engine, dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	require.NoError(t, p.Process(context.Background(), "lead-1"))

	require.Len(t, collector.bundles, 1)
	assert.Equal(t, "lead-1", collector.bundles[0].LeadID)
	require.Len(t, dispatcher.applied, 1)
	assert.Equal(t, domain.DecisionHot, dispatcher.applied[0].Decision)
	assert.Equal(t, []string{"lead-1"}, repo.enriched)
}

func TestProcessMissingLead(t *testing.T) {
	repo := &fakeLeadRepo{getErr: ports.ErrNotFound}
	p := New(repo, &fakeCollector{}, &fakeAggregator{}, &fakeDispatcher{}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := p.Process(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestProcessDispatchFailureSurfaces(t *testing.T) {
	repo := &fakeLeadRepo{}
	dispatcher := &fakeDispatcher{err: errors.New("db down")}
	p := New(repo, &fakeCollector{}, &fakeAggregator{}, dispatcher, slog.New(slog.NewTextHandler(io.Discard, nil)))

	err := p.Process(context.Background(), "lead-1")
	require.Error(t, err)
	assert.Empty(t, repo.enriched)
}
