package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	predictions   *prometheus.CounterVec
	valueBets     *prometheus.CounterVec
	opportunities *prometheus.CounterVec
	errorsTotal   *prometheus.CounterVec
	bankroll      prometheus.Gauge
	latency       *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		predictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oddsengine_predictions_total",
				Help: "Total number of fixture predictions scored",
			},
			[]string{"market"},
		),
		valueBets: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oddsengine_value_bets_total",
				Help: "Total number of value bets flagged",
			},
			[]string{"tier"},
		),
		opportunities: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oddsengine_live_opportunities_total",
				Help: "Total number of live opportunities emitted",
			},
			[]string{"signal", "urgency"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oddsengine_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		bankroll: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "oddsengine_bankroll_balance",
				Help: "Current bankroll ledger balance",
			},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oddsengine_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordPrediction records a scored market prediction.
func (r *Recorder) RecordPrediction(market string) {
	r.predictions.WithLabelValues(market).Inc()
}

// RecordValueBet records a flagged value bet by alert tier.
func (r *Recorder) RecordValueBet(tier string) {
	r.valueBets.WithLabelValues(tier).Inc()
}

// RecordOpportunity records an emitted live opportunity.
func (r *Recorder) RecordOpportunity(signal, urgency string) {
	r.opportunities.WithLabelValues(signal, urgency).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordBankroll records the current ledger balance.
func (r *Recorder) RecordBankroll(balance float64) {
	r.bankroll.Set(balance)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
