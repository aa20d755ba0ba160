package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTaskValidate(t *testing.T) {
	chip := DefaultChipOptions()
	tests := []struct {
		name   string
		task   Task
		qubits int
		batch  bool
		ok     bool
	}{
		{name: "measure", task: Task{Backend: BackendFullAmplitude, Kind: TaskMeasure, Shots: 100}, ok: true},
		{name: "measure zero shots", task: Task{Backend: BackendFullAmplitude, Kind: TaskMeasure}},
		{name: "pmeasure needs qubits", task: Task{Backend: BackendFullAmplitude, Kind: TaskProbabilityMeasure}},
		{name: "partial", task: Task{Backend: BackendPartialAmplitude, Kind: TaskProbabilityMeasure, Amplitudes: []string{"0"}}, ok: true},
		{name: "partial empty", task: Task{Backend: BackendPartialAmplitude, Kind: TaskProbabilityMeasure}},
		{name: "single", task: Task{Backend: BackendSingleAmplitude, Kind: TaskProbabilityMeasure, Amplitude: "3"}, ok: true},
		{name: "expectation", task: Task{Backend: BackendFullAmplitude, Kind: TaskExpectation, Qubits: []int{0}, Hamiltonian: Hamiltonian{{Coefficient: 1}}}, ok: true},
		{name: "expectation batch", task: Task{Backend: BackendFullAmplitude, Kind: TaskExpectation, Qubits: []int{0}, Hamiltonian: Hamiltonian{{Coefficient: 1}}}, batch: true},
		{name: "chip", task: Task{Backend: BackendRealChip, Kind: TaskMeasure, Shots: 1000, Chip: chip}, qubits: 6, ok: true},
		{name: "chip too wide", task: Task{Backend: BackendRealChip, Kind: TaskMeasure, Shots: 1000, Chip: chip}, qubits: 7},
		{name: "chip few shots", task: Task{Backend: BackendRealChip, Kind: TaskMeasure, Shots: 999, Chip: chip}},
		{name: "qst batch", task: Task{Backend: BackendQST, Kind: TaskMeasure, Shots: 1000, Chip: chip}, batch: true},
		{name: "chemistry", task: Task{Backend: BackendKind(4), Kind: TaskMeasure, Shots: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate(tt.qubits, tt.batch)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, IsCode(err, CodeConfiguration), "got %v", err)
		})
	}
}
