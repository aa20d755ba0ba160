package request

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcloud/internal/domain"
)

func decodeBody(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func TestSingleMeasureCommonFields(t *testing.T) {
	b := NewBuilder("token", domain.NoiseConfig{})
	data, err := b.Single(domain.Task{Backend: domain.BackendFullAmplitude, Kind: domain.TaskMeasure, Shots: 1000, Name: "bell"}, "QINIT 2", 2, 2)
	require.NoError(t, err)

	body := decodeBody(t, data)
	assert.Equal(t, "token", body["apiKey"])
	assert.Equal(t, float64(0), body["QMachineType"])
	assert.Equal(t, "QINIT 2", body["code"])
	assert.Equal(t, float64(7), body["codeLen"])
	assert.Equal(t, float64(2), body["qubitNum"])
	assert.Equal(t, float64(2), body["classicalbitNum"])
	assert.Equal(t, float64(1), body["measureType"])
	assert.Equal(t, "bell", body["taskName"])
	assert.Equal(t, float64(1000), body["shot"])
}

func TestRealChipFlagsAreInverted(t *testing.T) {
	b := NewBuilder("token", domain.NoiseConfig{})
	task := domain.Task{
		Backend: domain.BackendRealChip,
		Kind:    domain.TaskMeasure,
		Shots:   1000,
		Chip:    domain.ChipOptions{Chip: domain.ChipWuyuanD4, Amend: true, Mapping: false, Optimization: true},
	}
	data, err := b.Single(task, "QINIT 2", 2, 2)
	require.NoError(t, err)

	body := decodeBody(t, data)
	assert.Equal(t, false, body["isAmend"])
	assert.Equal(t, true, body["mappingFlag"])
	assert.Equal(t, false, body["circuitOptimization"])
	assert.Equal(t, float64(domain.ChipWuyuanD4), body["chipId"])
	assert.Equal(t, float64(5), body["QMachineType"])
}

func TestNoiseFields(t *testing.T) {
	noise, err := domain.NewNoiseConfig(domain.NoiseDecoherenceKraus, []float64{5, 2, 0.03}, []float64{5, 2, 0.06})
	require.NoError(t, err)
	b := NewBuilder("token", noise)
	data, err := b.Single(domain.Task{Backend: domain.BackendNoiseMachine, Kind: domain.TaskMeasure, Shots: 10}, "QINIT 1", 1, 1)
	require.NoError(t, err)

	body := decodeBody(t, data)
	assert.Equal(t, "DECOHERENCE_KRAUS_OPERATOR", body["noisemodel"])
	assert.Equal(t, 5.0, body["singleGate"])
	assert.Equal(t, 2.0, body["doubleP2"])
	assert.Equal(t, 0.06, body["doublePgate"])

	plain, err := domain.NewNoiseConfig(domain.NoiseBitFlipKraus, []float64{0.1}, []float64{0.2})
	require.NoError(t, err)
	data, err = NewBuilder("token", plain).Single(domain.Task{Backend: domain.BackendNoiseMachine, Kind: domain.TaskMeasure, Shots: 10}, "QINIT 1", 1, 1)
	require.NoError(t, err)
	body = decodeBody(t, data)
	assert.NotContains(t, body, "singleP2")
}

func TestNoiseRequiresConfiguredModel(t *testing.T) {
	_, err := NewBuilder("token", domain.NoiseConfig{}).Single(domain.Task{Backend: domain.BackendNoiseMachine, Kind: domain.TaskMeasure, Shots: 10}, "QINIT 1", 1, 1)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
	assert.ErrorIs(t, err, domain.ErrNoiseNotConfigured)
}

func TestAmplitudeAndExpectationFields(t *testing.T) {
	b := NewBuilder("token", domain.NoiseConfig{})

	data, err := b.Single(domain.Task{Backend: domain.BackendPartialAmplitude, Kind: domain.TaskProbabilityMeasure, Amplitudes: []string{"0", "3"}}, "QINIT 2", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []any{"0", "3"}, decodeBody(t, data)["Amplitude"])

	data, err = b.Single(domain.Task{Backend: domain.BackendSingleAmplitude, Kind: domain.TaskProbabilityMeasure, Amplitude: "3"}, "QINIT 2", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, "3", decodeBody(t, data)["Amplitude"])

	h, err := domain.ParseHamiltonian("0.5:Z0 Z1;-0.25:X1")
	require.NoError(t, err)
	data, err = b.Single(domain.Task{Backend: domain.BackendFullAmplitude, Kind: domain.TaskExpectation, Qubits: []int{0, 1}, Hamiltonian: h}, "QINIT 2", 2, 0)
	require.NoError(t, err)
	body := decodeBody(t, data)
	assert.Equal(t, float64(3), body["measureType"])
	assert.Equal(t, []any{"0", "1"}, body["qubits"])
	assert.JSONEq(t, `{"pauli_type":["Z0 Z1","X1"],"pauli_parm":[0.5,-0.25]}`, body["hamiltonian"].(string))
}

func TestBatchBody(t *testing.T) {
	b := NewBuilder("token", domain.NoiseConfig{})
	data, err := b.Batch(domain.Task{Backend: domain.BackendFullAmplitude, Kind: domain.TaskMeasure, Shots: 100}, []string{"ab", "cde"}, 3, 2)
	require.NoError(t, err)

	body := decodeBody(t, data)
	assert.Equal(t, []any{"ab", "cde"}, body["codeArr"])
	assert.Equal(t, "5", body["codeLen"])
	assert.Equal(t, "0", body["QMachineType"])
	assert.Equal(t, "3", body["qubitNum"])
	assert.Equal(t, "100", body["shot"])
	assert.NotContains(t, body, "code")
}

func TestBatchRejectsEmptyPrograms(t *testing.T) {
	b := NewBuilder("token", domain.NoiseConfig{})
	_, err := b.Batch(domain.Task{Backend: domain.BackendFullAmplitude, Kind: domain.TaskMeasure, Shots: 1}, nil, 1, 1)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))

	_, err = b.Batch(domain.Task{Backend: domain.BackendFullAmplitude, Kind: domain.TaskMeasure, Shots: 1}, []string{"ok", " "}, 1, 1)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
}

func TestInquireBodies(t *testing.T) {
	b := NewBuilder("token", domain.NoiseConfig{})
	data, err := b.Inquire("T1", domain.BackendQST)
	require.NoError(t, err)
	assert.JSONEq(t, `{"taskId":"T1","apiKey":"token","QMachineType":6}`, string(data))

	data, err = b.BatchInquire([]string{"A", "B"}, domain.BackendRealChip)
	require.NoError(t, err)
	assert.JSONEq(t, `{"taskIds":"A;B;","apiKey":"token","QMachineType":"5"}`, string(data))

	_, err = b.Inquire("", domain.BackendQST)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
}
