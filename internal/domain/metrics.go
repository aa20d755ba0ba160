package domain

import "time"

// TaskOutcome labels how a task or call ended.
type TaskOutcome string

const (
	// TaskOutcomeSuccess indicates the task finished with a decoded result.
	TaskOutcomeSuccess TaskOutcome = "success"
	// TaskOutcomeRejected indicates the service answered success=false.
	TaskOutcomeRejected TaskOutcome = "rejected"
	// TaskOutcomeFailed indicates the task reached FAILED.
	TaskOutcomeFailed TaskOutcome = "failed"
	// TaskOutcomeFatal indicates a build-system fatal state.
	TaskOutcomeFatal TaskOutcome = "fatal"
	// TaskOutcomeDecodeError indicates a malformed response.
	TaskOutcomeDecodeError TaskOutcome = "decode_error"
	// TaskOutcomeTransportError indicates the transport failed.
	TaskOutcomeTransportError TaskOutcome = "transport_error"
	// TaskOutcomeCanceled indicates the caller cancelled or the deadline passed.
	TaskOutcomeCanceled TaskOutcome = "canceled"
	// TaskOutcomeUnknown indicates an unclassified failure.
	TaskOutcomeUnknown TaskOutcome = "unknown"
)

// OutcomeFromError classifies err for metric labels.
func OutcomeFromError(err error) TaskOutcome {
	if err == nil {
		return TaskOutcomeSuccess
	}
	code, ok := CodeFrom(err)
	if !ok {
		return TaskOutcomeUnknown
	}
	switch code {
	case CodeRemoteRejection:
		return TaskOutcomeRejected
	case CodeTaskFailed:
		return TaskOutcomeFailed
	case CodeFatalTaskState:
		return TaskOutcomeFatal
	case CodeResultDecode:
		return TaskOutcomeDecodeError
	case CodeTransport:
		return TaskOutcomeTransportError
	case CodeCanceled, CodeDeadlineExceeded:
		return TaskOutcomeCanceled
	default:
		return TaskOutcomeUnknown
	}
}

// TaskMetric captures one task lifecycle from submit to terminal state.
type TaskMetric struct {
	Backend  BackendKind
	Batch    bool
	Outcome  TaskOutcome
	Polls    int
	Duration time.Duration
}

// Metrics records operational metrics for the task lifecycle.
type Metrics interface {
	ObserveSubmit(backend BackendKind, batch bool, outcome TaskOutcome)
	ObserveInquiry(backend BackendKind, status TaskStatus)
	ObserveTask(metric TaskMetric)
	ObserveBatchSteps(backend BackendKind, steps int)
}
