package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the editor collectors.
type Metrics struct {
	Commits      *prometheus.CounterVec
	Saves        *prometheus.CounterVec
	SaveDuration prometheus.Histogram
	History      *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg uses the default prometheus registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		Commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecraft_commits_total",
				Help: "Total number of committed editor operations",
			},
			[]string{"op"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecraft_saves_total",
				Help: "Total number of save attempts by result",
			},
			[]string{"result"},
		),
		SaveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pagecraft_save_duration_seconds",
				Help:    "Duration of project saves",
				Buckets: prometheus.DefBuckets,
			},
		),
		History: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pagecraft_history_total",
				Help: "Total number of undo and redo steps",
			},
			[]string{"direction"},
		),
		gatherer: prometheus.DefaultGatherer,
	}
	reg.MustRegister(m.Commits, m.Saves, m.SaveDuration, m.History)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// Hooks returns callbacks that record into m.
func (m *Metrics) Hooks() domain.Hooks {
	return domain.Hooks{
		OnCommit: func(_ context.Context, e *domain.CommitEvent) {
			m.Commits.WithLabelValues(e.Op).Inc()
		},
		OnUndo: func(context.Context, *domain.CommitEvent) {
			m.History.WithLabelValues("undo").Inc()
		},
		OnRedo: func(context.Context, *domain.CommitEvent) {
			m.History.WithLabelValues("redo").Inc()
		},
		OnSave: func(_ context.Context, e *domain.SaveEvent) {
			m.Saves.WithLabelValues("ok").Inc()
			m.SaveDuration.Observe(e.Duration.Seconds())
		},
		OnSaveError: func(_ context.Context, e *domain.SaveEvent) {
			m.Saves.WithLabelValues("error").Inc()
			m.SaveDuration.Observe(e.Duration.Seconds())
		},
	}
}

// Handler serves the registry the metrics were registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
