package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"qcloud/internal/app"
	"qcloud/internal/client"
	"qcloud/internal/domain"
)

type taskKind struct {
	backend domain.BackendKind
	kind    domain.TaskKind
	short   string
}

var taskKinds = map[string]taskKind{
	"measure":  {domain.BackendFullAmplitude, domain.TaskMeasure, "sample on the full amplitude simulator"},
	"pmeasure": {domain.BackendFullAmplitude, domain.TaskProbabilityMeasure, "exact probabilities of --qubits"},
	"partial":  {domain.BackendPartialAmplitude, domain.TaskProbabilityMeasure, "amplitudes of the --amplitude basis states"},
	"single":   {domain.BackendSingleAmplitude, domain.TaskProbabilityMeasure, "amplitude of one basis state"},
	"noise":    {domain.BackendNoiseMachine, domain.TaskMeasure, "sample on the noise simulator"},
	"chip":     {domain.BackendRealChip, domain.TaskMeasure, "sample on a real chip"},
	"qst":      {domain.BackendQST, domain.TaskMeasure, "state tomography density matrix"},
	"fidelity": {domain.BackendFidelity, domain.TaskMeasure, "state fidelity"},
	"expect":   {domain.BackendFullAmplitude, domain.TaskExpectation, "expectation of --hamiltonian"},
}

func kindNames() []string {
	names := make([]string, 0, len(taskKinds))
	for name := range taskKinds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type taskFlags struct {
	shots       int
	qubits      []int
	amplitudes  []string
	chip        string
	amend       bool
	mapping     bool
	optimize    bool
	noiseModel  string
	singleGate  []float64
	doubleGate  []float64
	taskName    string
	qubitNum    int
	cbitNum     int
	hamiltonian string
	batch       bool
}

func bindTaskFlags(cmd *cobra.Command, tf *taskFlags) {
	defaults := domain.DefaultChipOptions()
	tf.amend, tf.mapping, tf.optimize = defaults.Amend, defaults.Mapping, defaults.Optimization

	flags := cmd.Flags()
	flags.IntVar(&tf.shots, "shots", domain.RealChipMinShots, "number of shots for measure tasks")
	flags.IntSliceVar(&tf.qubits, "qubits", nil, "qubit subset for pmeasure and expect")
	flags.StringSliceVar(&tf.amplitudes, "amplitude", nil, "basis state(s) for partial and single")
	flags.StringVar(&tf.chip, "chip", defaults.Chip.String(), "real chip name or id")
	flags.BoolVar(&tf.amend, "amend", tf.amend, "apply readout error correction on real chips")
	flags.BoolVar(&tf.mapping, "mapping", tf.mapping, "apply qubit mapping on real chips")
	flags.BoolVar(&tf.optimize, "optimize", tf.optimize, "apply circuit optimization on real chips")
	flags.StringVar(&tf.noiseModel, "noise-model", "", "noise model for the noise simulator (overrides config)")
	flags.Float64SliceVar(&tf.singleGate, "single-gate", nil, "single gate noise parameters")
	flags.Float64SliceVar(&tf.doubleGate, "double-gate", nil, "double gate noise parameters")
	flags.StringVar(&tf.taskName, "task-name", "", "task name shown by the service")
	flags.IntVar(&tf.qubitNum, "qubit-num", 0, "qubit count (default: read from QINIT)")
	flags.IntVar(&tf.cbitNum, "cbit-num", 0, "classical bit count (default: read from CREG)")
	flags.StringVar(&tf.hamiltonian, "hamiltonian", "", `hamiltonian for expect, e.g. "0.5:Z0 Z1;-0.3:X0"`)
	flags.BoolVar(&tf.batch, "batch", false, "use the batch endpoints even for a single program")
}

// buildTask validates the flags relevant to kind and assembles the task.
func buildTask(name string, tf taskFlags) (domain.Task, error) {
	const op = "qcloudctl.buildTask"
	k, ok := taskKinds[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return domain.Task{}, domain.Configf(op, "unknown kind %q (want one of %s)", name, strings.Join(kindNames(), ", "))
	}
	task := domain.Task{Backend: k.backend, Kind: k.kind, Name: tf.taskName}

	switch {
	case k.backend.RealChipFamily():
		chip, err := domain.ParseChipID(tf.chip)
		if err != nil {
			return domain.Task{}, domain.Wrap(domain.CodeConfiguration, op, err)
		}
		task.Shots = tf.shots
		task.Chip = domain.ChipOptions{Chip: chip, Amend: tf.amend, Mapping: tf.mapping, Optimization: tf.optimize}
	case k.kind == domain.TaskMeasure:
		task.Shots = tf.shots
	case k.kind == domain.TaskExpectation:
		h, err := domain.ParseHamiltonian(tf.hamiltonian)
		if err != nil {
			return domain.Task{}, domain.Wrap(domain.CodeConfiguration, op, err)
		}
		task.Hamiltonian = h
		task.Qubits = tf.qubits
	case k.backend == domain.BackendPartialAmplitude:
		task.Amplitudes = tf.amplitudes
	case k.backend == domain.BackendSingleAmplitude:
		if len(tf.amplitudes) != 1 {
			return domain.Task{}, domain.Configf(op, "single takes exactly one --amplitude, got %d", len(tf.amplitudes))
		}
		task.Amplitude = tf.amplitudes[0]
	default:
		task.Qubits = tf.qubits
	}
	return task, nil
}

// applyNoiseFlags installs a noise model given on the command line.
func applyNoiseFlags(session *client.Session, tf taskFlags) error {
	if strings.TrimSpace(tf.noiseModel) == "" {
		return nil
	}
	model, err := domain.ParseNoiseModel(tf.noiseModel)
	if err != nil {
		return domain.Wrap(domain.CodeConfiguration, "qcloudctl.applyNoiseFlags", err)
	}
	return session.SetNoiseModel(model, tf.singleGate, tf.doubleGate)
}

// prepare parses kind and loads the program files for run and submit.
func prepare(application *app.App, args []string, tf taskFlags) (domain.Task, []domain.Program, error) {
	task, err := buildTask(args[0], tf)
	if err != nil {
		return domain.Task{}, nil, err
	}
	if err := applyNoiseFlags(application.Session(), tf); err != nil {
		return domain.Task{}, nil, err
	}
	progs, err := app.LoadPrograms(args[1:], app.ProgramSizes{Qubits: tf.qubitNum, Cbits: tf.cbitNum})
	if err != nil {
		return domain.Task{}, nil, err
	}
	return task, progs, nil
}

func kindUsage() string {
	var b strings.Builder
	for _, name := range kindNames() {
		fmt.Fprintf(&b, "  %-9s %s\n", name, taskKinds[name].short)
	}
	return b.String()
}
