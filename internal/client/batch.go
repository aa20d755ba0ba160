package client

import (
	"context"

	"qcloud/internal/domain"
)

// RunBatch submits every program in one request and blocks until all steps
// finished in the same pass.
func (c *Client) RunBatch(ctx context.Context, task domain.Task, progs []domain.Program) (domain.BatchResult, error) {
	return c.runBatch(ctx, "run_batch", task, progs)
}

func (c *Client) FullAmplitudeMeasureBatch(ctx context.Context, progs []domain.Program, shots int, opts ...TaskOption) ([]map[string]float64, error) {
	task := newTask(domain.BackendFullAmplitude, domain.TaskMeasure, opts)
	task.Shots = shots
	res, err := c.runBatch(ctx, "full_amplitude_measure_batch", task, progs)
	if err != nil {
		return nil, err
	}
	return res.Histograms()
}

func (c *Client) FullAmplitudePMeasureBatch(ctx context.Context, progs []domain.Program, qubits []int, opts ...TaskOption) ([]map[string]float64, error) {
	task := newTask(domain.BackendFullAmplitude, domain.TaskProbabilityMeasure, opts)
	task.Qubits = qubits
	res, err := c.runBatch(ctx, "full_amplitude_pmeasure_batch", task, progs)
	if err != nil {
		return nil, err
	}
	return res.Histograms()
}

func (c *Client) PartialAmplitudePMeasureBatch(ctx context.Context, progs []domain.Program, amplitudes []string, opts ...TaskOption) ([]map[string]complex128, error) {
	task := newTask(domain.BackendPartialAmplitude, domain.TaskProbabilityMeasure, opts)
	task.Amplitudes = amplitudes
	res, err := c.runBatch(ctx, "partial_amplitude_pmeasure_batch", task, progs)
	if err != nil {
		return nil, err
	}
	return res.AmplitudeMaps()
}

func (c *Client) SingleAmplitudePMeasureBatch(ctx context.Context, progs []domain.Program, amplitude string, opts ...TaskOption) ([]complex128, error) {
	task := newTask(domain.BackendSingleAmplitude, domain.TaskProbabilityMeasure, opts)
	task.Amplitude = amplitude
	res, err := c.runBatch(ctx, "single_amplitude_pmeasure_batch", task, progs)
	if err != nil {
		return nil, err
	}
	return res.Amplitudes()
}

func (c *Client) NoiseMeasureBatch(ctx context.Context, progs []domain.Program, shots int, opts ...TaskOption) ([]map[string]float64, error) {
	task := newTask(domain.BackendNoiseMachine, domain.TaskMeasure, opts)
	task.Shots = shots
	res, err := c.runBatch(ctx, "noise_measure_batch", task, progs)
	if err != nil {
		return nil, err
	}
	return res.Histograms()
}

func (c *Client) RealChipMeasureBatch(ctx context.Context, progs []domain.Program, shots int, chip domain.ChipOptions, opts ...TaskOption) ([]map[string]float64, error) {
	task := newTask(domain.BackendRealChip, domain.TaskMeasure, opts)
	task.Shots = shots
	task.Chip = chip
	res, err := c.runBatch(ctx, "real_chip_measure_batch", task, progs)
	if err != nil {
		return nil, err
	}
	return res.Histograms()
}
