package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// TaskStatus is the remote lifecycle state of a task, encoded on the wire as
// a small integer.
type TaskStatus int

const (
	TaskStatusUnknown           TaskStatus = 0
	TaskStatusWaiting           TaskStatus = 1
	TaskStatusComputing         TaskStatus = 2
	TaskStatusQueuing           TaskStatus = 3
	TaskStatusFinished          TaskStatus = 4
	TaskStatusFailed            TaskStatus = 5
	TaskStatusSentToBuildSystem TaskStatus = 6
	TaskStatusBuildSystemRun    TaskStatus = 7
	TaskStatusBuildSystemError  TaskStatus = -3
	TaskStatusSequenceTooLong   TaskStatus = -4
)

var statusNames = map[TaskStatus]string{
	TaskStatusWaiting:           "WAITING",
	TaskStatusComputing:         "COMPUTING",
	TaskStatusQueuing:           "QUEUING",
	TaskStatusFinished:          "FINISHED",
	TaskStatusFailed:            "FAILED",
	TaskStatusSentToBuildSystem: "SENT_TO_BUILD_SYSTEM",
	TaskStatusBuildSystemRun:    "BUILD_SYSTEM_RUN",
	TaskStatusBuildSystemError:  "BUILD_SYSTEM_ERROR",
	TaskStatusSequenceTooLong:   "SEQUENCE_TOO_LONG",
}

func (s TaskStatus) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(s))
}

// Known reports whether s is one of the documented wire states.
func (s TaskStatus) Known() bool {
	_, ok := statusNames[s]
	return ok
}

// Terminal reports whether polling stops at s.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusFinished, TaskStatusFailed, TaskStatusBuildSystemError, TaskStatusSequenceTooLong:
		return true
	default:
		return false
	}
}

// Fatal reports whether s is an unrecoverable build-system state.
func (s TaskStatus) Fatal() bool {
	return s == TaskStatusBuildSystemError || s == TaskStatusSequenceTooLong
}

// BuildSystemTransit reports whether s is one of the states only real-chip
// backends pass through.
func (s TaskStatus) BuildSystemTransit() bool {
	return s == TaskStatusSentToBuildSystem || s == TaskStatusBuildSystemRun
}

// ParseTaskStatus decodes the integer-as-string state tag. Unrecognised
// integers are returned as-is; callers treat them as non-terminal.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return TaskStatusUnknown, fmt.Errorf("%w: task state %q", ErrMalformedResponse, raw)
	}
	return TaskStatus(n), nil
}

// FatalError maps a fatal status to its sentinel error.
func (s TaskStatus) FatalError() error {
	switch s {
	case TaskStatusBuildSystemError:
		return ErrBuildSystem
	case TaskStatusSequenceTooLong:
		return ErrSequenceTooLong
	default:
		return nil
	}
}
