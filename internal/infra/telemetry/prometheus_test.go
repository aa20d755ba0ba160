package telemetry

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcloud/internal/domain"
)

func TestNewPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	assert.NotNil(t, m)
	assert.NotNil(t, m.submits)
	assert.NotNil(t, m.inquiries)
	assert.NotNil(t, m.taskDuration)
	assert.NotNil(t, m.taskPolls)
	assert.NotNil(t, m.batchSteps)
}

func TestNewPrometheusMetrics_UsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewPrometheusMetrics(registry)
	m.ObserveSubmit(domain.BackendRealChip, false, domain.TaskOutcomeSuccess)
	m.ObserveInquiry(domain.BackendRealChip, domain.TaskStatusComputing)
	m.ObserveTask(domain.TaskMetric{
		Backend:  domain.BackendRealChip,
		Outcome:  domain.TaskOutcomeSuccess,
		Polls:    3,
		Duration: 3 * time.Second,
	})
	m.ObserveBatchSteps(domain.BackendFullAmplitude, 4)

	metrics, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(metrics))
	for _, m := range metrics {
		names = append(names, m.GetName())
	}

	assert.Contains(t, names, "qcloud_submits_total")
	assert.Contains(t, names, "qcloud_inquiries_total")
	assert.Contains(t, names, "qcloud_task_duration_seconds")
	assert.Contains(t, names, "qcloud_task_polls")
	assert.Contains(t, names, "qcloud_batch_steps")
}

func TestPrometheusMetrics_ImplementsInterface(t *testing.T) {
	var _ domain.Metrics = (*PrometheusMetrics)(nil)
}

func TestPrometheusMetrics_CountsInquiriesByStatus(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics(registry)
	m.ObserveInquiry(domain.BackendNoiseMachine, domain.TaskStatusWaiting)
	m.ObserveInquiry(domain.BackendNoiseMachine, domain.TaskStatusWaiting)
	m.ObserveInquiry(domain.BackendNoiseMachine, domain.TaskStatusFinished)

	families, err := registry.Gather()
	require.NoError(t, err)
	counts := map[string]float64{}
	for _, family := range families {
		if family.GetName() != "qcloud_inquiries_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "status" {
					counts[label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"WAITING": 2, "FINISHED": 1}, counts)
}

func TestPrometheusMetrics_SkipsPollsWhenZero(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewPrometheusMetrics(registry)
	m.ObserveTask(domain.TaskMetric{Backend: domain.BackendQST, Outcome: domain.TaskOutcomeRejected})

	families, err := registry.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, family := range families {
		names = append(names, family.GetName())
	}
	assert.Contains(t, names, "qcloud_task_duration_seconds")
	assert.NotContains(t, names, "qcloud_task_polls")
}
