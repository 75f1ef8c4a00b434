// Package metrics exposes editor activity as Prometheus metrics.
package metrics

import (
	"context"
	"strconv"

	"github.com/aretw0/flowedit/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the editor collectors.
type Metrics struct {
	DocumentsImported prometheus.Counter
	ImportFailures    prometheus.Counter
	NodesSaved        *prometheus.CounterVec
	EnvironmentSaves  prometheus.Counter
	ProjectDuration   prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocumentsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowedit_documents_imported_total",
			Help: "Total number of documents imported",
		}),
		ImportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowedit_import_failures_total",
			Help: "Total number of rejected document imports",
		}),
		NodesSaved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "flowedit_nodes_saved_total",
			Help: "Total number of node saves",
		}, []string{"kind", "created"}),
		EnvironmentSaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flowedit_environment_saves_total",
			Help: "Total number of environment variable saves",
		}),
		ProjectDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "flowedit_projection_duration_seconds",
			Help:    "Duration of tree projections",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
	reg.MustRegister(m.DocumentsImported, m.ImportFailures, m.NodesSaved, m.EnvironmentSaves, m.ProjectDuration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDocumentLoad: func(_ context.Context, e *domain.DocumentEvent) {
			if e.Err != nil {
				m.ImportFailures.Inc()
				return
			}
			m.DocumentsImported.Inc()
		},
		OnNodeSave: func(_ context.Context, e *domain.NodeEvent) {
			m.NodesSaved.WithLabelValues(string(e.NodeKind), strconv.FormatBool(e.Created)).Inc()
		},
		OnEnvironmentsSave: func(_ context.Context, _ *domain.EnvironmentsEvent) {
			m.EnvironmentSaves.Inc()
		},
		OnProject: func(_ context.Context, e *domain.ProjectEvent) {
			m.ProjectDuration.Observe(e.Duration.Seconds())
		},
	}
}
