package domain

import "strings"

// ChipOptions are the caller-facing real-chip flags. The wire protocol
// inverts the three booleans; see request.chipFlags.
type ChipOptions struct {
	Chip         ChipID
	Amend        bool
	Mapping      bool
	Optimization bool
}

// DefaultChipOptions enables every correction on the default chip.
func DefaultChipOptions() ChipOptions {
	return ChipOptions{Chip: ChipWuyuanD4, Amend: true, Mapping: true, Optimization: true}
}

// Task describes one remote computation independent of the program text.
type Task struct {
	Backend     BackendKind
	Kind        TaskKind
	Name        string
	Shots       int
	Qubits      []int
	Amplitudes  []string
	Amplitude   string
	Hamiltonian Hamiltonian
	Chip        ChipOptions
}

// TaskName returns the configured name or the default one.
func (t Task) TaskName() string {
	if name := strings.TrimSpace(t.Name); name != "" {
		return name
	}
	return DefaultTaskName
}

// Validate checks the parameters that can be rejected before any network
// call. qubits is the widest register among the programs to submit.
func (t Task) Validate(qubits int, batch bool) error {
	const op = "domain.Task.Validate"
	if !t.Backend.Valid() {
		return E(CodeConfiguration, op, "", ErrUnsupportedBackend).WithMeta("backend", t.Backend.String())
	}
	switch t.Kind {
	case TaskMeasure, TaskProbabilityMeasure, TaskExpectation:
	default:
		return Configf(op, "unknown task kind %s", t.Kind)
	}

	if t.Backend.RealChipFamily() {
		if t.Kind != TaskMeasure {
			return Configf(op, "%s supports measure tasks only", t.Backend)
		}
		if !t.Chip.Chip.Valid() {
			return Configf(op, "unknown chip id %d", int(t.Chip.Chip))
		}
		if t.Shots < RealChipMinShots || t.Shots > RealChipMaxShots {
			return Configf(op, "real chip shots must be in range [%d, %d], got %d", RealChipMinShots, RealChipMaxShots, t.Shots)
		}
		if qubits > RealChipMaxQubits {
			return Configf(op, "real chip supports at most %d qubits, program uses %d", RealChipMaxQubits, qubits)
		}
		if batch && t.Backend != BackendRealChip {
			return Configf(op, "%s has no batch variant", t.Backend)
		}
		return nil
	}

	switch t.Kind {
	case TaskMeasure:
		if t.Backend == BackendPartialAmplitude || t.Backend == BackendSingleAmplitude {
			return Configf(op, "%s supports probability measures only", t.Backend)
		}
		if t.Shots <= 0 {
			return Configf(op, "shots must be positive, got %d", t.Shots)
		}
	case TaskProbabilityMeasure:
		switch t.Backend {
		case BackendFullAmplitude:
			if len(t.Qubits) == 0 {
				return Configf(op, "qubit subset is required")
			}
		case BackendPartialAmplitude:
			if len(t.Amplitudes) == 0 {
				return Configf(op, "amplitude set is required")
			}
		case BackendSingleAmplitude:
			if strings.TrimSpace(t.Amplitude) == "" {
				return Configf(op, "amplitude index is required")
			}
		default:
			return Configf(op, "%s does not support probability measures", t.Backend)
		}
	case TaskExpectation:
		if t.Backend != BackendFullAmplitude {
			return Configf(op, "expectation requires %s, got %s", BackendFullAmplitude, t.Backend)
		}
		if batch {
			return Configf(op, "expectation has no batch variant")
		}
		if len(t.Hamiltonian) == 0 {
			return Configf(op, "hamiltonian is required")
		}
		if len(t.Qubits) == 0 {
			return Configf(op, "qubit subset is required")
		}
	}
	for _, q := range t.Qubits {
		if q < 0 {
			return Configf(op, "negative qubit index %d", q)
		}
	}
	return nil
}
