package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeThrottle = "throttled"
)

// AuthMetrics counts identity events: sign-ins, signups, refreshes and logouts.
type AuthMetrics struct {
	events *prometheus.CounterVec
}

func NewAuthMetrics(reg prometheus.Registerer) *AuthMetrics {
	if reg == nil {
		return &AuthMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_events_total",
		Help: "Authentication events by kind and outcome.",
	}, []string{"event", "outcome"})
	reg.MustRegister(events)
	return &AuthMetrics{events: events}
}

// Record increments the counter for event with outcome.
func (a *AuthMetrics) Record(event, outcome string) {
	if a == nil || a.events == nil {
		return
	}
	a.events.WithLabelValues(normalizeLabel(event), normalizeLabel(outcome)).Inc()
}

// RecordResult records OutcomeSuccess when err is nil and OutcomeFailure otherwise.
func (a *AuthMetrics) RecordResult(event string, err error) {
	if err != nil {
		a.Record(event, OutcomeFailure)
		return
	}
	a.Record(event, OutcomeSuccess)
}
