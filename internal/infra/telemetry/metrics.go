package telemetry

import (
	"qcloud/internal/domain"
)

type NoopMetrics struct{}

func NewNoopMetrics() *NoopMetrics {
	return &NoopMetrics{}
}

func (n *NoopMetrics) ObserveSubmit(_ domain.BackendKind, _ bool, _ domain.TaskOutcome) {}

func (n *NoopMetrics) ObserveInquiry(_ domain.BackendKind, _ domain.TaskStatus) {}

func (n *NoopMetrics) ObserveTask(_ domain.TaskMetric) {}

func (n *NoopMetrics) ObserveBatchSteps(_ domain.BackendKind, _ int) {}

var _ domain.Metrics = (*NoopMetrics)(nil)
