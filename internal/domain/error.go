package domain

import (
	"context"
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeConfiguration    ErrorCode = "CONFIGURATION"
	CodeTransport        ErrorCode = "TRANSPORT"
	CodeRemoteRejection  ErrorCode = "REMOTE_REJECTION"
	CodeResultDecode     ErrorCode = "RESULT_DECODE"
	CodeFatalTaskState   ErrorCode = "FATAL_TASK_STATE"
	CodeTaskFailed       ErrorCode = "TASK_FAILED"
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeInternal         ErrorCode = "INTERNAL"
	CodeCanceled         ErrorCode = "CANCELED"
	CodeDeadlineExceeded ErrorCode = "DEADLINE_EXCEEDED"
)

type Error struct {
	Code      ErrorCode
	Op        string
	Message   string
	Cause     error
	Retryable bool
	Meta      map[string]string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Op == "" {
		if msg == "" {
			return string(e.Code)
		}
		return fmt.Sprintf("%s: %s", e.Code, msg)
	}
	if msg == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Code)
	}
	return fmt.Sprintf("%s: %s: %s", e.Op, e.Code, msg)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func E(code ErrorCode, op, msg string, cause error) *Error {
	if msg == "" && cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Code:    code,
		Op:      op,
		Message: msg,
		Cause:   cause,
	}
}

func Wrap(code ErrorCode, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		if existing.Op != "" || op == "" {
			return existing
		}
		return &Error{
			Code:      existing.Code,
			Op:        op,
			Message:   existing.Message,
			Cause:     existing.Cause,
			Retryable: existing.Retryable,
			Meta:      existing.Meta,
		}
	}
	return E(code, op, "", err)
}

// Configf builds a configuration error for parameters rejected before any
// network call is made.
func Configf(op, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	return E(CodeConfiguration, op, msg, fmt.Errorf("%w: %s", ErrInvalidParameter, msg))
}

// WithMeta returns e with key set in its metadata.
func (e *Error) WithMeta(key, value string) *Error {
	if e == nil {
		return nil
	}
	if e.Meta == nil {
		e.Meta = make(map[string]string)
	}
	e.Meta[key] = value
	return e
}

func CodeFrom(err error) (ErrorCode, bool) {
	if err == nil {
		return "", false
	}
	var domainErr *Error
	if errors.As(err, &domainErr) && domainErr.Code != "" {
		return domainErr.Code, true
	}
	switch {
	case errors.Is(err, context.Canceled):
		return CodeCanceled, true
	case errors.Is(err, context.DeadlineExceeded):
		return CodeDeadlineExceeded, true
	case errors.Is(err, ErrInvalidParameter), errors.Is(err, ErrUnknownNoiseModel),
		errors.Is(err, ErrNoiseParams), errors.Is(err, ErrNoiseNotConfigured),
		errors.Is(err, ErrInvalidEndpoint), errors.Is(err, ErrUnsupportedBackend):
		return CodeConfiguration, true
	case errors.Is(err, ErrBuildSystem), errors.Is(err, ErrSequenceTooLong):
		return CodeFatalTaskState, true
	case errors.Is(err, ErrTaskFailed):
		return CodeTaskFailed, true
	case errors.Is(err, ErrMalformedResponse), errors.Is(err, ErrResultKindMismatch):
		return CodeResultDecode, true
	case errors.Is(err, ErrTaskNotFound):
		return CodeNotFound, true
	default:
		return "", false
	}
}

// IsCode reports whether err classifies as code.
func IsCode(err error, code ErrorCode) bool {
	got, ok := CodeFrom(err)
	return ok && got == code
}
