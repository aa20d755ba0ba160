package client

import (
	"context"

	"qcloud/internal/domain"
)

// TaskOption adjusts a task before submission.
type TaskOption func(*domain.Task)

// WithTaskName sets the name the service shows for the task.
func WithTaskName(name string) TaskOption {
	return func(t *domain.Task) {
		t.Name = name
	}
}

func newTask(backend domain.BackendKind, kind domain.TaskKind, opts []TaskOption) domain.Task {
	task := domain.Task{Backend: backend, Kind: kind}
	for _, opt := range opts {
		if opt != nil {
			opt(&task)
		}
	}
	return task
}

// Run submits task and blocks until it reaches a terminal state.
func (c *Client) Run(ctx context.Context, task domain.Task, prog domain.Program) (domain.Result, error) {
	return c.run(ctx, "run", task, prog)
}

// FullAmplitudeMeasure samples prog shots times on the full amplitude
// simulator and returns the outcome frequencies.
func (c *Client) FullAmplitudeMeasure(ctx context.Context, prog domain.Program, shots int, opts ...TaskOption) (map[string]float64, error) {
	task := newTask(domain.BackendFullAmplitude, domain.TaskMeasure, opts)
	task.Shots = shots
	res, err := c.run(ctx, "full_amplitude_measure", task, prog)
	if err != nil {
		return nil, err
	}
	return res.Histogram()
}

// FullAmplitudePMeasure returns the exact probabilities of qubits.
func (c *Client) FullAmplitudePMeasure(ctx context.Context, prog domain.Program, qubits []int, opts ...TaskOption) (map[string]float64, error) {
	task := newTask(domain.BackendFullAmplitude, domain.TaskProbabilityMeasure, opts)
	task.Qubits = qubits
	res, err := c.run(ctx, "full_amplitude_pmeasure", task, prog)
	if err != nil {
		return nil, err
	}
	return res.Histogram()
}

func (c *Client) PartialAmplitudePMeasure(ctx context.Context, prog domain.Program, amplitudes []string, opts ...TaskOption) (map[string]complex128, error) {
	task := newTask(domain.BackendPartialAmplitude, domain.TaskProbabilityMeasure, opts)
	task.Amplitudes = amplitudes
	res, err := c.run(ctx, "partial_amplitude_pmeasure", task, prog)
	if err != nil {
		return nil, err
	}
	return res.Amplitudes()
}

func (c *Client) SingleAmplitudePMeasure(ctx context.Context, prog domain.Program, amplitude string, opts ...TaskOption) (complex128, error) {
	task := newTask(domain.BackendSingleAmplitude, domain.TaskProbabilityMeasure, opts)
	task.Amplitude = amplitude
	res, err := c.run(ctx, "single_amplitude_pmeasure", task, prog)
	if err != nil {
		return 0, err
	}
	return res.Amplitude()
}

// NoiseMeasure samples prog on the noise simulator using the session's
// noise model.
func (c *Client) NoiseMeasure(ctx context.Context, prog domain.Program, shots int, opts ...TaskOption) (map[string]float64, error) {
	task := newTask(domain.BackendNoiseMachine, domain.TaskMeasure, opts)
	task.Shots = shots
	res, err := c.run(ctx, "noise_measure", task, prog)
	if err != nil {
		return nil, err
	}
	return res.Histogram()
}

func (c *Client) RealChipMeasure(ctx context.Context, prog domain.Program, shots int, chip domain.ChipOptions, opts ...TaskOption) (map[string]float64, error) {
	task := newTask(domain.BackendRealChip, domain.TaskMeasure, opts)
	task.Shots = shots
	task.Chip = chip
	res, err := c.run(ctx, "real_chip_measure", task, prog)
	if err != nil {
		return nil, err
	}
	return res.Histogram()
}

// StateTomography runs quantum state tomography on a real chip and returns
// the reconstructed density matrix.
func (c *Client) StateTomography(ctx context.Context, prog domain.Program, shots int, chip domain.ChipOptions, opts ...TaskOption) ([][]complex128, error) {
	task := newTask(domain.BackendQST, domain.TaskMeasure, opts)
	task.Shots = shots
	task.Chip = chip
	res, err := c.run(ctx, "state_tomography", task, prog)
	if err != nil {
		return nil, err
	}
	return res.DensityMatrix()
}

func (c *Client) StateFidelity(ctx context.Context, prog domain.Program, shots int, chip domain.ChipOptions, opts ...TaskOption) (float64, error) {
	task := newTask(domain.BackendFidelity, domain.TaskMeasure, opts)
	task.Shots = shots
	task.Chip = chip
	res, err := c.run(ctx, "state_fidelity", task, prog)
	if err != nil {
		return 0, err
	}
	return res.Fidelity()
}

// Expectation computes <prog|h|prog> over qubits on the full amplitude
// simulator.
func (c *Client) Expectation(ctx context.Context, prog domain.Program, h domain.Hamiltonian, qubits []int, opts ...TaskOption) (float64, error) {
	task := newTask(domain.BackendFullAmplitude, domain.TaskExpectation, opts)
	task.Hamiltonian = h
	task.Qubits = qubits
	res, err := c.run(ctx, "expectation", task, prog)
	if err != nil {
		return 0, err
	}
	return res.Expectation()
}
