package decode

import (
	"encoding/json"
	"strconv"
	"strings"

	"qcloud/internal/domain"
)

// BatchSubmit extracts the step to task id mapping from a batch submit
// response. Steps keep the order the service reported them in.
func BatchSubmit(body []byte) ([]domain.StepTask, error) {
	const op = "decode.BatchSubmit"
	env, err := parseEnvelope(op, body)
	if err != nil {
		return nil, err
	}
	var obj struct {
		Steps []struct {
			Step   flexString `json:"step"`
			TaskID flexString `json:"taskId"`
		} `json:"stepTaskResultList"`
	}
	if err := json.Unmarshal(env.Obj, &obj); err != nil {
		return nil, malformed(op, "parse obj: %v", err)
	}
	if len(obj.Steps) == 0 {
		return nil, malformed(op, "response has no step task list")
	}

	steps := make([]domain.StepTask, 0, len(obj.Steps))
	seen := make(map[int]struct{}, len(obj.Steps))
	for _, item := range obj.Steps {
		step, err := parseStep(op, item.Step)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[step]; dup {
			return nil, malformed(op, "duplicate step %d", step)
		}
		seen[step] = struct{}{}
		id := strings.TrimSpace(item.TaskID.String())
		if id == "" {
			return nil, malformed(op, "step %d has no task id", step)
		}
		steps = append(steps, domain.StepTask{Step: step, TaskID: id})
	}
	return steps, nil
}

// BatchOutcome is one pass over a batch inquire response.
type BatchOutcome struct {
	// Results holds every step that reached FINISHED in this pass.
	Results map[int]domain.Result
	// Statuses holds the reported state of every step in the response.
	Statuses map[int]domain.TaskStatus
	// Err is the first FAILED or fatal step in response order.
	Err error
}

// Complete reports whether every step in want finished in this pass.
// Steps absent from the response count as pending.
func (o BatchOutcome) Complete(want []domain.StepTask) bool {
	if o.Err != nil {
		return false
	}
	for _, step := range want {
		if _, ok := o.Results[step.Step]; !ok {
			return false
		}
	}
	return true
}

// Pending lists the steps in want that have no result yet.
func (o BatchOutcome) Pending(want []domain.StepTask) []int {
	var out []int
	for _, step := range want {
		if _, ok := o.Results[step.Step]; !ok {
			out = append(out, step.Step)
		}
	}
	return out
}

// BatchInquiry decodes a batch inquire response. Finished steps are decoded
// by their embedded ResultType. A failed step does not stop decoding the
// remaining entries, but the first one becomes Err.
func BatchInquiry(body []byte, backend domain.BackendKind) (BatchOutcome, error) {
	const op = "decode.BatchInquiry"
	env, err := parseEnvelope(op, body)
	if err != nil {
		return BatchOutcome{}, err
	}
	var entries []struct {
		Step       flexString `json:"step"`
		TaskState  flexString `json:"taskState"`
		TaskResult string     `json:"taskResult"`
	}
	if err := json.Unmarshal(env.Obj, &entries); err != nil {
		return BatchOutcome{}, malformed(op, "parse obj: %v", err)
	}

	out := BatchOutcome{
		Results:  make(map[int]domain.Result, len(entries)),
		Statuses: make(map[int]domain.TaskStatus, len(entries)),
	}
	for _, entry := range entries {
		step, err := parseStep(op, entry.Step)
		if err != nil {
			return BatchOutcome{}, err
		}
		status, err := domain.ParseTaskStatus(entry.TaskState.String())
		if err != nil {
			return BatchOutcome{}, malformed(op, "step %d: %v", step, err)
		}
		out.Statuses[step] = status

		switch {
		case status == domain.TaskStatusFinished:
			result, err := decodeStepResult(entry.TaskResult)
			if err != nil {
				return BatchOutcome{}, malformed(op, "step %d result: %v", step, err)
			}
			out.Results[step] = result
		case status == domain.TaskStatusFailed:
			if out.Err == nil {
				out.Err = taskFailed(op, backend, entry.TaskResult).WithMeta("step", strconv.Itoa(step))
			}
		case status.Fatal():
			if out.Err == nil {
				out.Err = fatalState(op, status).WithMeta("step", strconv.Itoa(step))
			}
		}
	}
	return out, nil
}
