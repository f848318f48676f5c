package observability

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aretw0/hotelbot/pkg/domain"
)

const namespace = "hotelbot"

// Metrics holds the prometheus collectors for conversations.
type Metrics struct {
	registry *prometheus.Registry

	StageTransitions *prometheus.CounterVec
	Messages         *prometheus.CounterVec
	Exchanges        *prometheus.CounterVec
	ExchangeDuration *prometheus.HistogramVec
	Resets           prometheus.Counter
}

// NewMetrics creates the collectors and registers them, together with the Go
// runtime and process collectors, in a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		StageTransitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_transitions_total",
				Help:      "Number of conversation stage transitions.",
			},
			[]string{"from", "to", "source"},
		),
		Messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Number of chat messages appended, by sender.",
			},
			[]string{"sender"},
		),
		Exchanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "backend_requests_total",
				Help:      "Number of backend requests, by endpoint and outcome.",
			},
			[]string{"endpoint", "outcome"},
		),
		ExchangeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "backend_request_duration_seconds",
				Help:      "Duration of backend requests.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		Resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversation_resets_total",
			Help:      "Number of conversations returned to the welcome state.",
		}),
	}

	m.registry.MustRegister(
		m.StageTransitions,
		m.Messages,
		m.Exchanges,
		m.ExchangeDuration,
		m.Resets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks records lifecycle events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStageChange: func(_ context.Context, e *domain.StageEvent) {
			m.StageTransitions.WithLabelValues(string(e.From), string(e.To), e.Source).Inc()
		},
		OnMessage: func(_ context.Context, e *domain.MessageEvent) {
			m.Messages.WithLabelValues(string(e.Message.Sender)).Inc()
		},
		OnExchange: func(_ context.Context, e *domain.ExchangeEvent) {
			m.Exchanges.WithLabelValues(e.Endpoint, e.Outcome).Inc()
			m.ExchangeDuration.WithLabelValues(e.Endpoint).Observe(e.Duration.Seconds())
		},
		OnReset: func(context.Context, *domain.ResetEvent) {
			m.Resets.Inc()
		},
	}
}
