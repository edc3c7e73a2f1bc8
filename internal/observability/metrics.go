// Package observability holds the Prometheus metrics exported by bikecast.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bikecast"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Prediction metrics.
	Predictions        *prometheus.CounterVec // labels: outcome={success,invalid_argument,schema_mismatch,error}
	PredictionDuration prometheus.Histogram
	PredictedCount     prometheus.Histogram
	ModelsLoaded       prometheus.Gauge

	// Chart metrics.
	ChartRenders        *prometheus.CounterVec   // labels: chart, format, outcome={success,error}
	ChartRenderDuration *prometheus.HistogramVec // labels: chart

	// Backtest metrics, set once after the startup evaluation.
	BacktestR2                 prometheus.Gauge
	BacktestWithinTolerancePct prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		Predictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "predictions_total",
			Help:      "Prediction requests by outcome.",
		}, []string{"outcome"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "prediction_duration_seconds",
			Help:      "Time spent assembling features and evaluating the models.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		PredictedCount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "predicted_rentals",
			Help:      "Distribution of predicted hourly rental counts.",
			Buckets:   []float64{10, 50, 100, 200, 300, 400, 500, 700, 1000},
		}),
		ModelsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "models_loaded",
			Help:      "Number of model artifacts in the prediction ensemble.",
		}),
		ChartRenders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Chart renders by chart, format and outcome.",
		}, []string{"chart", "format", "outcome"}),
		ChartRenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chart_render_duration_seconds",
			Help:      "Chart rendering duration in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"chart"}),
		BacktestR2: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backtest_r2",
			Help:      "R² of the ensemble on the held-out test period.",
		}),
		BacktestWithinTolerancePct: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "backtest_within_tolerance_percent",
			Help:      "Share of held-out predictions that were almost correct.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Predictions,
		m.PredictionDuration,
		m.PredictedCount,
		m.ModelsLoaded,
		m.ChartRenders,
		m.ChartRenderDuration,
		m.BacktestR2,
		m.BacktestWithinTolerancePct,
	}
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() (*Metrics, *prometheus.Registry) {
	m := newMetrics()
	reg := prometheus.NewRegistry()
	reg.MustRegister(m.collectors()...)
	return m, reg
}
