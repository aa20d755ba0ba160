package telemetry

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"qcloud/internal/domain"
)

type PrometheusMetrics struct {
	submits      *prometheus.CounterVec
	inquiries    *prometheus.CounterVec
	taskDuration *prometheus.HistogramVec
	taskPolls    *prometheus.HistogramVec
	batchSteps   *prometheus.HistogramVec
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		submits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qcloud_submits_total",
				Help: "Total number of task submissions",
			},
			[]string{"backend", "batch", "outcome"},
		),
		inquiries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "qcloud_inquiries_total",
				Help: "Total number of task inquiries by reported state",
			},
			[]string{"backend", "status"},
		),
		taskDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qcloud_task_duration_seconds",
				Help:    "Time from submission to terminal state in seconds",
				Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600, 1800},
			},
			[]string{"backend", "batch", "outcome"},
		),
		taskPolls: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qcloud_task_polls",
				Help:    "Number of inquiries issued before a terminal state",
				Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"backend", "batch"},
		),
		batchSteps: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "qcloud_batch_steps",
				Help:    "Number of steps per submitted batch",
				Buckets: []float64{1, 2, 4, 8, 16, 32, 64, 128},
			},
			[]string{"backend"},
		),
	}
}

func (p *PrometheusMetrics) ObserveSubmit(backend domain.BackendKind, batch bool, outcome domain.TaskOutcome) {
	p.submits.WithLabelValues(backend.String(), strconv.FormatBool(batch), string(outcome)).Inc()
}

func (p *PrometheusMetrics) ObserveInquiry(backend domain.BackendKind, status domain.TaskStatus) {
	p.inquiries.WithLabelValues(backend.String(), status.String()).Inc()
}

func (p *PrometheusMetrics) ObserveTask(metric domain.TaskMetric) {
	batch := strconv.FormatBool(metric.Batch)
	p.taskDuration.WithLabelValues(metric.Backend.String(), batch, string(metric.Outcome)).Observe(metric.Duration.Seconds())
	if metric.Polls > 0 {
		p.taskPolls.WithLabelValues(metric.Backend.String(), batch).Observe(float64(metric.Polls))
	}
}

func (p *PrometheusMetrics) ObserveBatchSteps(backend domain.BackendKind, steps int) {
	p.batchSteps.WithLabelValues(backend.String()).Observe(float64(steps))
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
