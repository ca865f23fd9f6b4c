package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "blackqueen"

// Metrics records scorekeeping activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	gamesStarted     prometheus.Counter
	roundsSubmitted  *prometheus.CounterVec
	validationErrors *prometheus.CounterVec
	activeSessions   prometheus.Gauge
	sessionsEvicted  prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		gamesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "games_started_total",
			Help:      "Games that left the setup phase.",
		}),
		roundsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_submitted_total",
			Help:      "Rounds appended to a score table, by outcome and deck count.",
		}, []string{"outcome", "decks"}),
		validationErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_errors_total",
			Help:      "Rejected user input, by error code.",
		}, []string{"code"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held in memory.",
		}),
		sessionsEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_evicted_total",
			Help:      "Sessions discarded after being idle.",
		}),
	}
	m.registry.MustRegister(
		m.gamesStarted,
		m.roundsSubmitted,
		m.validationErrors,
		m.activeSessions,
		m.sessionsEvicted,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) GameStarted() {
	if m == nil {
		return
	}
	m.gamesStarted.Inc()
}

func (m *Metrics) RoundSubmitted(outcome string, decks string) {
	if m == nil {
		return
	}
	m.roundsSubmitted.WithLabelValues(outcome, decks).Inc()
}

func (m *Metrics) ValidationFailed(code string) {
	if m == nil {
		return
	}
	m.validationErrors.WithLabelValues(code).Inc()
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *Metrics) SessionsEvicted(n int) {
	if m == nil {
		return
	}
	m.sessionsEvicted.Add(float64(n))
}
