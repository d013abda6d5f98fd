package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records activation-code and on-chain verification outcomes.
type PaymentMetrics struct {
	verifications *prometheus.CounterVec
	activations   *prometheus.CounterVec
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	verifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_verifications_total",
		Help: "Payment verification attempts by outcome.",
	}, []string{"outcome"})
	activations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_activations_total",
		Help: "Successful subscription activations by plan.",
	}, []string{"plan"})
	reg.MustRegister(verifications, activations)
	return &PaymentMetrics{
		verifications: verifications,
		activations:   activations,
	}
}

// IncVerification counts a verification attempt with its outcome label.
func (p *PaymentMetrics) IncVerification(outcome string) {
	if p == nil || p.verifications == nil {
		return
	}
	p.verifications.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncActivation counts an activated subscription for the given plan.
func (p *PaymentMetrics) IncActivation(plan string) {
	if p == nil || p.activations == nil {
		return
	}
	p.activations.WithLabelValues(normalizeLabel(plan)).Inc()
}

// AnalysisMetrics records chart analysis requests.
type AnalysisMetrics struct {
	duration *prometheus.HistogramVec
	requests *prometheus.CounterVec
}

// NewAnalysisMetrics registers the analysis metrics on the provided registerer.
func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	if reg == nil {
		return &AnalysisMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Duration of chart analysis round trips in seconds.",
		Buckets: []float64{1, 5, 10, 30, 60, 120},
	}, []string{"outcome"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "analysis_requests_total",
		Help: "Chart analysis requests by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(duration, requests)
	return &AnalysisMetrics{
		duration: duration,
		requests: requests,
	}
}

// Observe records one analysis round trip.
func (a *AnalysisMetrics) Observe(outcome string, duration time.Duration) {
	if a == nil || a.requests == nil {
		return
	}
	label := normalizeLabel(outcome)
	a.requests.WithLabelValues(label).Inc()
	a.duration.WithLabelValues(label).Observe(duration.Seconds())
}

// OutboxMetrics records publisher and consumer activity in the worker.
type OutboxMetrics struct {
	published *prometheus.CounterVec
	consumed  *prometheus.CounterVec
}

// NewOutboxMetrics registers the outbox metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events published by result.",
	}, []string{"result"})
	consumed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_consumed_total",
		Help: "Domain events consumed by event type and result.",
	}, []string{"event_type", "result"})
	reg.MustRegister(published, consumed)
	return &OutboxMetrics{
		published: published,
		consumed:  consumed,
	}
}

// IncPublished counts a publish attempt result.
func (o *OutboxMetrics) IncPublished(result string) {
	if o == nil || o.published == nil {
		return
	}
	o.published.WithLabelValues(normalizeLabel(result)).Inc()
}

// IncConsumed counts a consumed event result.
func (o *OutboxMetrics) IncConsumed(eventType, result string) {
	if o == nil || o.consumed == nil {
		return
	}
	o.consumed.WithLabelValues(normalizeLabel(eventType), normalizeLabel(result)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
