package domain

import (
	"errors"
	"sort"
	"time"
)

var ErrInvalidParameter = errors.New("invalid parameter")
var ErrUnknownNoiseModel = errors.New("unknown noise model")
var ErrNoiseParams = errors.New("insufficient noise parameters")
var ErrNoiseNotConfigured = errors.New("noise model not configured")
var ErrInvalidEndpoint = errors.New("invalid endpoint")
var ErrUnsupportedBackend = errors.New("unsupported backend")
var ErrMalformedResponse = errors.New("malformed response")
var ErrResultKindMismatch = errors.New("result kind mismatch")
var ErrBuildSystem = errors.New("build system error")
var ErrSequenceTooLong = errors.New("exceeding maximum timing sequence")
var ErrTaskFailed = errors.New("task failed")
var ErrTaskNotFound = errors.New("task not found")

// TaskHandle is created on a successful submit and is the only state carried
// across the submit/inquire boundary.
type TaskHandle struct {
	TaskID      string      `json:"taskId"`
	Backend     BackendKind `json:"backend"`
	Kind        TaskKind    `json:"kind"`
	Name        string      `json:"name,omitempty"`
	SubmittedAt time.Time   `json:"submittedAt"`
}

// StepTask binds a caller-visible step index to a server task id.
type StepTask struct {
	Step   int    `json:"step"`
	TaskID string `json:"taskId"`
}

// BatchHandle tracks one submission carrying many programs. Steps keep the
// order in which the server reported them.
type BatchHandle struct {
	Backend     BackendKind `json:"backend"`
	Kind        TaskKind    `json:"kind"`
	Name        string      `json:"name,omitempty"`
	SubmittedAt time.Time   `json:"submittedAt"`
	Steps       []StepTask  `json:"steps"`
}

// TaskIDs returns the task ids in step submission order.
func (h BatchHandle) TaskIDs() []string {
	ids := make([]string, 0, len(h.Steps))
	for _, step := range h.Steps {
		ids = append(ids, step.TaskID)
	}
	return ids
}

// Lookup returns the task id registered for step.
func (h BatchHandle) Lookup(step int) (string, bool) {
	for _, s := range h.Steps {
		if s.Step == step {
			return s.TaskID, true
		}
	}
	return "", false
}

// TaskReport is what the asynchronous query/exec surface returns instead of
// an error: a failed attempt reports TaskStatusFailed with an empty result
// and the cause in Err.
type TaskReport struct {
	Status TaskStatus
	Result Result
	Err    error
}

// StepResult is the decoded payload of one batch step.
type StepResult struct {
	Step   int
	Result Result
}

// BatchResult holds per-step payloads ordered by step index.
type BatchResult struct {
	Steps []StepResult
}

// NewBatchResult orders the step mapping by step index.
func NewBatchResult(byStep map[int]Result) BatchResult {
	steps := make([]StepResult, 0, len(byStep))
	for step, result := range byStep {
		steps = append(steps, StepResult{Step: step, Result: result})
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Step < steps[j].Step })
	return BatchResult{Steps: steps}
}

func (b BatchResult) Len() int {
	return len(b.Steps)
}

// ByStep returns the results keyed by step index.
func (b BatchResult) ByStep() map[int]Result {
	out := make(map[int]Result, len(b.Steps))
	for _, s := range b.Steps {
		out[s.Step] = s.Result
	}
	return out
}

func (b BatchResult) Histograms() ([]map[string]float64, error) {
	out := make([]map[string]float64, 0, len(b.Steps))
	for _, s := range b.Steps {
		h, err := s.Result.Histogram()
		if err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, nil
}

func (b BatchResult) AmplitudeMaps() ([]map[string]complex128, error) {
	out := make([]map[string]complex128, 0, len(b.Steps))
	for _, s := range b.Steps {
		a, err := s.Result.Amplitudes()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

func (b BatchResult) Amplitudes() ([]complex128, error) {
	out := make([]complex128, 0, len(b.Steps))
	for _, s := range b.Steps {
		a, err := s.Result.Amplitude()
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// BatchReport is the asynchronous counterpart of TaskReport for batches.
// Result may be partial when Status is not terminal.
type BatchReport struct {
	Status TaskStatus
	Result BatchResult
	Err    error
}
