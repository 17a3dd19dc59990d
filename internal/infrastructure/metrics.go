package infrastructure

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const (
	metricsNamespace = "regionstats"
	MeterName        = "regionstats"
)

// Metrics are collected during a run and written once at the end in the
// Prometheus text format, for pickup by a node_exporter textfile collector.
type Metrics struct {
	Registry *prometheus.Registry

	RowsLoaded     *prometheus.GaugeVec
	NameMismatches *prometheus.GaugeVec
	StepDuration   *prometheus.GaugeVec
	StepsTotal     *prometheus.CounterVec
	LastSuccess    prometheus.Gauge

	// MeterProvider exports OpenTelemetry instruments into Registry.
	MeterProvider *sdkmetric.MeterProvider
	stepHistogram metric.Float64Histogram
}

// NewMetrics creates the run metrics on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "rows_loaded",
			Help:      "Rows in each cleaned dataset.",
		}, []string{"dataset"}),
		NameMismatches: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "name_mismatches",
			Help:      "Administrative names present in only one of two compared datasets.",
		}, []string{"check"}),
		StepDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "step_duration_seconds",
			Help:      "Wall time of each pipeline step.",
		}, []string{"step"}),
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "steps_total",
			Help:      "Pipeline steps run, by outcome.",
		}, []string{"step", "status"}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}
	m.Registry.MustRegister(m.RowsLoaded, m.NameMismatches, m.StepDuration, m.StepsTotal, m.LastSuccess)

	// Like MustRegister, this only fails on a duplicate registration.
	if err := m.initMeter(); err != nil {
		panic(fmt.Sprintf("failed to initialize OpenTelemetry metrics: %v", err))
	}
	return m
}

// initMeter bridges an OpenTelemetry meter into the Prometheus registry
func (m *Metrics) initMeter() error {
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(m.Registry),
		otelprom.WithNamespace(metricsNamespace),
		otelprom.WithoutTargetInfo(),
	)
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}
	m.MeterProvider = sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	meter := m.MeterProvider.Meter(MeterName)
	m.stepHistogram, err = meter.Float64Histogram("operation_step_duration",
		metric.WithDescription("Operation step execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return fmt.Errorf("failed to create step histogram: %w", err)
	}
	return nil
}

// ObserveStep records one finished step
func (m *Metrics) ObserveStep(step string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.StepDuration.WithLabelValues(step).Set(d.Seconds())
	m.StepsTotal.WithLabelValues(step, status).Inc()
	m.stepHistogram.Record(context.Background(), d.Seconds(), metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", status),
	))
}

// MarkSuccess stamps the completion time of a successful run
func (m *Metrics) MarkSuccess(now time.Time) {
	m.LastSuccess.Set(float64(now.Unix()))
}

// WriteToFile writes all metrics to path atomically
func (m *Metrics) WriteToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
