package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// QualificationsTotal counts completed qualification runs by decision tier.
	QualificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadqual_qualifications_total",
		Help: "Completed qualification runs by decision tier.",
	}, []string{"decision"})

	// EvaluatorFailures counts evaluator calls replaced by the default report.
	EvaluatorFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadqual_evaluator_failures_total",
		Help: "Evaluator calls that failed and were substituted with the neutral default report.",
	}, []string{"signal"})

	// FollowUpOutcomes counts follow-up boundary outcomes.
	FollowUpOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "leadqual_followup_outcomes_total",
		Help: "Follow-up trigger outcomes (sent, skipped, failed).",
	}, []string{"status"})
)
