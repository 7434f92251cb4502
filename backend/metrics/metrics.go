// Package metrics exposes prometheus collectors for test sessions.
package metrics

import (
	"context"
	"net/http"

	"neetprep/backend/models"
	"neetprep/backend/session"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	sessionsStarted   prometheus.Counter
	attemptsSubmitted *prometheus.CounterVec
	sessionFailures   *prometheus.CounterVec
	scorePercentage   prometheus.Histogram
	requestDuration   *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		sessionsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "practice_sessions_started_total",
			Help: "Total number of test sessions that reached in-progress",
		}),
		attemptsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "practice_attempts_submitted_total",
				Help: "Total number of persisted test attempts",
			},
			[]string{"subject", "completion"}, // completion: manual/timeout
		),
		sessionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "practice_session_failures_total",
				Help: "Total number of sessions that moved to failed",
			},
			[]string{"kind"},
		),
		scorePercentage: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "practice_attempt_score_percentage",
			Help:    "Score of persisted attempts as a percentage of the question count",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "practice_http_request_duration_seconds",
				Help:    "Time spent serving HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "status"},
		),
	}
}

// TrackActiveSessions exports the current value of count as a gauge.
func (m *Metrics) TrackActiveSessions(count func() int) {
	promauto.With(m.registry).NewGaugeFunc(prometheus.GaugeOpts{
		Name: "practice_sessions_active",
		Help: "Sessions currently held by the server",
	}, func() float64 { return float64(count()) })
}

func (m *Metrics) ObserveRequest(method, status string, seconds float64) {
	m.requestDuration.WithLabelValues(method, status).Observe(seconds)
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) SessionHooks() session.Hooks {
	return session.Hooks{
		Started: func(ctx context.Context, view session.View) {
			m.sessionsStarted.Inc()
		},
		Completed: func(ctx context.Context, attempt models.TestAttempt) {
			m.attemptsSubmitted.WithLabelValues(string(attempt.Subject), string(attempt.CompletionType)).Inc()
			m.scorePercentage.Observe(attempt.Percentage())
		},
		Failed: func(ctx context.Context, view session.View, err *session.Error) {
			m.sessionFailures.WithLabelValues(string(err.Kind)).Inc()
		},
	}
}
