package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/uranai/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the bot's collectors.
type Metrics struct {
	registry *prometheus.Registry

	Turns            *prometheus.CounterVec
	TurnDuration     *prometheus.HistogramVec
	Transitions      *prometheus.CounterVec
	Effects          *prometheus.CounterVec
	EffectDuration   *prometheus.HistogramVec
	StoreUnavailable prometheus.Counter
	WebhookBatches   *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors, plus Go runtime and process collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uranai_turns_total",
			Help: "Turns processed, by event type and outcome.",
		}, []string{"event_type", "status"}),
		TurnDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uranai_turn_duration_seconds",
			Help:    "Wall time of a turn from load to persist.",
			Buckets: []float64{.01, .05, .1, .5, 1, 2.5, 5, 10, 25, 60},
		}, []string{"event_type"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uranai_step_transitions_total",
			Help: "Session step changes.",
		}, []string{"from", "to"}),
		Effects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uranai_effect_stages_total",
			Help: "Generation side-effect stages, by stage and result.",
		}, []string{"stage", "result"}),
		EffectDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "uranai_effect_duration_seconds",
			Help:    "Duration of generation side-effect stages.",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 15, 20, 25, 30},
		}, []string{"stage"}),
		StoreUnavailable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "uranai_store_unavailable_total",
			Help: "Webhook batches rejected because the session store was not ready.",
		}),
		WebhookBatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "uranai_webhook_batches_total",
			Help: "Webhook requests, by HTTP status code.",
		}, []string{"code"}),
	}

	m.registry.MustRegister(
		m.Turns,
		m.TurnDuration,
		m.Transitions,
		m.Effects,
		m.EffectDuration,
		m.StoreUnavailable,
		m.WebhookBatches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Hooks records turn lifecycle events.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurnEnd: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(string(e.EventType), string(e.Status)).Inc()
			m.TurnDuration.WithLabelValues(string(e.EventType)).Observe(e.Duration.Seconds())
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(e.From.String(), e.To.String()).Inc()
		},
		OnEffect: func(_ context.Context, e *domain.EffectEvent) {
			result := "ok"
			if e.Err != nil {
				result = "error"
			}
			m.Effects.WithLabelValues(string(e.Stage), result).Inc()
			if e.Stage != domain.StageRevert {
				m.EffectDuration.WithLabelValues(string(e.Stage)).Observe(e.Duration.Seconds())
			}
		},
	}
}
