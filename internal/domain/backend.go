package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// BackendKind selects the remote computation semantics, and with it both the
// request shape and the result-decoding branch.
type BackendKind int

const (
	BackendFullAmplitude    BackendKind = 0
	BackendNoiseMachine     BackendKind = 1
	BackendPartialAmplitude BackendKind = 2
	BackendSingleAmplitude  BackendKind = 3
	BackendRealChip         BackendKind = 5
	BackendQST              BackendKind = 6
	BackendFidelity         BackendKind = 7
)

var backendNames = map[BackendKind]string{
	BackendFullAmplitude:    "FULL_AMPLITUDE",
	BackendNoiseMachine:     "NOISE_MACHINE",
	BackendPartialAmplitude: "PARTIAL_AMPLITUDE",
	BackendSingleAmplitude:  "SINGLE_AMPLITUDE",
	BackendRealChip:         "REAL_CHIP",
	BackendQST:              "QST",
	BackendFidelity:         "FIDELITY",
}

func (b BackendKind) String() string {
	if name, ok := backendNames[b]; ok {
		return name
	}
	return fmt.Sprintf("BACKEND(%d)", int(b))
}

// Valid reports whether b is a backend this client can drive.
func (b BackendKind) Valid() bool {
	_, ok := backendNames[b]
	return ok
}

// RealChipFamily reports whether requests for b use the real-chip shape.
func (b BackendKind) RealChipFamily() bool {
	switch b {
	case BackendRealChip, BackendQST, BackendFidelity:
		return true
	default:
		return false
	}
}

// ParseBackendKind decodes the integer-as-string machine type tag used on the
// wire.
func ParseBackendKind(raw string) (BackendKind, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: machine type %q", ErrMalformedResponse, raw)
	}
	kind := BackendKind(n)
	if !kind.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrUnsupportedBackend, n)
	}
	return kind, nil
}

// TaskKind is orthogonal to BackendKind and determines the extra request
// fields (shots, qubit subset, hamiltonian).
type TaskKind int

const (
	TaskMeasure            TaskKind = 1
	TaskProbabilityMeasure TaskKind = 2
	TaskExpectation        TaskKind = 3
)

func (k TaskKind) String() string {
	switch k {
	case TaskMeasure:
		return "MEASURE"
	case TaskProbabilityMeasure:
		return "PROBABILITY_MEASURE"
	case TaskExpectation:
		return "EXPECTATION"
	default:
		return fmt.Sprintf("TASK_KIND(%d)", int(k))
	}
}

// ChipID identifies a real quantum chip.
type ChipID int

const (
	ChipWuyuanD5 ChipID = 2
	ChipWuyuanD4 ChipID = 5
	ChipWuyuanD3 ChipID = 7
)

func (c ChipID) Valid() bool {
	switch c {
	case ChipWuyuanD3, ChipWuyuanD4, ChipWuyuanD5:
		return true
	default:
		return false
	}
}

func (c ChipID) String() string {
	switch c {
	case ChipWuyuanD3:
		return "WUYUAN_D3"
	case ChipWuyuanD4:
		return "WUYUAN_D4"
	case ChipWuyuanD5:
		return "WUYUAN_D5"
	default:
		return fmt.Sprintf("CHIP(%d)", int(c))
	}
}

// ParseChipID accepts either a chip name (case-insensitive, with or without
// the WUYUAN_ prefix) or its integer id.
func ParseChipID(raw string) (ChipID, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(value); err == nil {
		chip := ChipID(n)
		if !chip.Valid() {
			return 0, fmt.Errorf("%w: unknown chip id %d", ErrInvalidParameter, n)
		}
		return chip, nil
	}
	value = strings.TrimPrefix(value, "WUYUAN_")
	switch value {
	case "D3":
		return ChipWuyuanD3, nil
	case "D4":
		return ChipWuyuanD4, nil
	case "D5":
		return ChipWuyuanD5, nil
	default:
		return 0, fmt.Errorf("%w: unknown chip %q", ErrInvalidParameter, raw)
	}
}
