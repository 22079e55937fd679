package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	filterEvaluations *prometheus.CounterVec
	presetOperations  *prometheus.CounterVec
	sessionsActive    prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) *metrics {
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	return &metrics{
		filterEvaluations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "status_viewer_filter_evaluations_total",
			Help: "Catalog filter evaluations by category.",
		}, []string{"category"}),
		presetOperations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "status_viewer_preset_operations_total",
			Help: "Saved filter operations by kind and outcome.",
		}, []string{"op", "result"}),
		sessionsActive: f.NewGauge(prometheus.GaugeOpts{
			Name: "status_viewer_sessions_active",
			Help: "Live client sessions.",
		}),
	}
}
