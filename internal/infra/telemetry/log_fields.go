package telemetry

import (
	"time"

	"go.uber.org/zap"

	"qcloud/internal/domain"
)

const (
	FieldEvent      = "event"
	FieldOperation  = "operation"
	FieldBackend    = "backend"
	FieldTaskID     = "task_id"
	FieldStep       = "step"
	FieldStatus     = "status"
	FieldPolls      = "polls"
	FieldDurationMs = "duration_ms"
	FieldRequestID  = "request_id"
	FieldTraceID    = "trace_id"
	FieldSpanID     = "span_id"
	FieldBody       = "body"
)

const (
	EventSubmit          = "submit"
	EventSubmitRejected  = "submit_rejected"
	EventInquire         = "inquire"
	EventUnknownState    = "unknown_state"
	EventTaskReady       = "task_ready"
	EventTaskFailed      = "task_failed"
	EventBatchSubmit     = "batch_submit"
	EventBatchPass       = "batch_pass"
	EventBatchReady      = "batch_ready"
	EventResponseDump    = "response_dump"
	EventPollingAborted  = "polling_aborted"
	EventNoiseConfigured = "noise_configured"
)

func EventField(event string) zap.Field {
	return zap.String(FieldEvent, event)
}

func OperationField(op string) zap.Field {
	return zap.String(FieldOperation, op)
}

func BackendField(backend domain.BackendKind) zap.Field {
	return zap.String(FieldBackend, backend.String())
}

func TaskIDField(id string) zap.Field {
	return zap.String(FieldTaskID, id)
}

func StepField(step int) zap.Field {
	return zap.Int(FieldStep, step)
}

func StatusField(status domain.TaskStatus) zap.Field {
	return zap.String(FieldStatus, status.String())
}

func PollsField(polls int) zap.Field {
	return zap.Int(FieldPolls, polls)
}

func DurationField(duration time.Duration) zap.Field {
	return zap.Int64(FieldDurationMs, duration.Milliseconds())
}

func RequestIDField(value string) zap.Field {
	return zap.String(FieldRequestID, value)
}

func TraceIDField(value string) zap.Field {
	return zap.String(FieldTraceID, value)
}

func SpanIDField(value string) zap.Field {
	return zap.String(FieldSpanID, value)
}

// BodyField carries a raw wire body; only logged in verbose mode.
func BodyField(body []byte) zap.Field {
	return zap.ByteString(FieldBody, body)
}
