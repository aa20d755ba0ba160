package decode

import (
	"encoding/json"
	"strings"

	"qcloud/internal/domain"
)

// Phase classifies one inquiry answer.
type Phase int

const (
	// PhasePending means the task has not reached a terminal state.
	PhasePending Phase = iota
	// PhaseReady means the task finished and Result holds its payload.
	PhaseReady
	// PhaseFailed means the task reached FAILED or a fatal state; Err says which.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseReady:
		return "ready"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the decoded answer to a single-task inquiry.
type Outcome struct {
	Phase   Phase
	Status  domain.TaskStatus
	Backend domain.BackendKind
	Result  domain.Result
	Err     error
}

// Submit extracts the task id from a single-task submit response.
func Submit(body []byte) (string, error) {
	const op = "decode.Submit"
	env, err := parseEnvelope(op, body)
	if err != nil {
		return "", err
	}
	var obj struct {
		TaskID flexString `json:"taskId"`
	}
	if err := json.Unmarshal(env.Obj, &obj); err != nil {
		return "", malformed(op, "parse obj: %v", err)
	}
	id := strings.TrimSpace(obj.TaskID.String())
	if id == "" {
		return "", malformed(op, "response has no task id")
	}
	return id, nil
}

type taskEntry struct {
	TaskState     flexString  `json:"taskState"`
	RQMachineType flexString  `json:"rQMachineType"`
	TaskResult    string      `json:"taskResult"`
	QSTResult     *string     `json:"qstresult"`
	QSTFidelity   *flexString `json:"qstfidelity"`
}

type inquiryObj struct {
	TaskVo *struct {
		TaskResultList []taskEntry `json:"taskResultList"`
	} `json:"qcodeTaskNewVo"`
}

// Inquiry decodes a single-task inquire response. hint is the backend the
// task was submitted to; the response's own machine type wins when present.
// Malformed documents return an error; a failed task is reported through
// the Outcome, not the error.
func Inquiry(body []byte, hint domain.BackendKind) (Outcome, error) {
	const op = "decode.Inquiry"
	env, err := parseEnvelope(op, body)
	if err != nil {
		return Outcome{}, err
	}
	var obj inquiryObj
	if err := json.Unmarshal(env.Obj, &obj); err != nil {
		return Outcome{}, malformed(op, "parse obj: %v", err)
	}
	if obj.TaskVo == nil || len(obj.TaskVo.TaskResultList) == 0 {
		return Outcome{}, malformed(op, "response has no task result list")
	}
	entry := obj.TaskVo.TaskResultList[0]

	status, err := domain.ParseTaskStatus(entry.TaskState.String())
	if err != nil {
		return Outcome{}, malformed(op, "%v", err)
	}
	backend := hint
	if raw := strings.TrimSpace(entry.RQMachineType.String()); raw != "" {
		backend, err = domain.ParseBackendKind(raw)
		if err != nil {
			return Outcome{}, malformed(op, "%v", err)
		}
	}
	out := Outcome{Phase: PhasePending, Status: status, Backend: backend}

	switch {
	case status == domain.TaskStatusFinished:
		result, err := decodeFinished(backend, entry)
		if err != nil {
			return Outcome{}, malformed(op, "%s result: %v", backend, err).WithMeta("status", status.String())
		}
		out.Phase = PhaseReady
		out.Result = result
	case status == domain.TaskStatusFailed:
		out.Phase = PhaseFailed
		out.Err = taskFailed(op, backend, entry.TaskResult)
	case status.Fatal():
		out.Phase = PhaseFailed
		out.Err = fatalState(op, status)
	}
	return out, nil
}

func taskFailed(op string, backend domain.BackendKind, raw string) *domain.Error {
	msg := ""
	if backend.RealChipFamily() {
		msg = failureMessage(raw)
	}
	if msg == "" {
		msg = domain.ErrTaskFailed.Error()
	}
	return domain.E(domain.CodeTaskFailed, op, msg, domain.ErrTaskFailed)
}

func fatalState(op string, status domain.TaskStatus) *domain.Error {
	return domain.E(domain.CodeFatalTaskState, op, "", status.FatalError()).
		WithMeta("status", status.String())
}
