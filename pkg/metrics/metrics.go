package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Registry holds the account metrics. The zero value is not usable; use New.
type Registry struct {
	reg *prometheus.Registry

	authEvents      *prometheus.CounterVec
	dispatchFailure *prometheus.CounterVec
	sessionsRevoked prometheus.Counter
}

// New creates a registry with the account collectors and the Go runtime collectors
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inkpost",
			Name:      "auth_events_total",
			Help:      "Account and token operations by outcome.",
		}, []string{"operation", "outcome"}),
		dispatchFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "inkpost",
			Name:      "notification_dispatch_failures_total",
			Help:      "Notifications that could not be handed to the transport.",
		}, []string{"kind"}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "inkpost",
			Name:      "sessions_revoked_total",
			Help:      "Outstanding sessions marked revoked.",
		}),
	}
	r.reg.MustRegister(
		r.authEvents,
		r.dispatchFailure,
		r.sessionsRevoked,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// AuthEvent counts one operation result
func (r *Registry) AuthEvent(operation string, err error) {
	if r == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	r.authEvents.WithLabelValues(operation, outcome).Inc()
}

// DispatchFailed counts a failed notification
func (r *Registry) DispatchFailed(kind string) {
	if r == nil {
		return
	}
	r.dispatchFailure.WithLabelValues(kind).Inc()
}

// SessionsRevoked adds n revoked sessions
func (r *Registry) SessionsRevoked(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.sessionsRevoked.Add(float64(n))
}

// Handler exposes the registry in the Prometheus text format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
