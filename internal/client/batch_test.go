package client

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcloud/internal/domain"
)

const threeSteps = `{"success":true,"obj":{"stepTaskResultList":[
	{"step":"0","taskId":"A"},{"step":"1","taskId":"B"},{"step":"2","taskId":"C"}]}}`

func histJSON(key string) string {
	return `{"ResultType":1,"Key":["` + key + `"],"Value":[1]}`
}

func TestBatchPendingStepForcesFullRepoll(t *testing.T) {
	fc := newFakeCloud(t)
	fc.on(domain.BatchComputePath, threeSteps)
	fc.on(domain.BatchInquirePath,
		batchInquireResp(t,
			stepEntry{"0", "4", histJSON("00")},
			stepEntry{"1", "4", histJSON("01")},
			stepEntry{"2", "2", ""},
		),
		batchInquireResp(t,
			stepEntry{"0", "4", histJSON("00")},
			stepEntry{"1", "4", histJSON("01")},
			stepEntry{"2", "4", histJSON("11")},
		),
	)
	c := fc.client(t)

	progs := []domain.Program{bell(), bell(), bell()}
	hists, err := c.FullAmplitudeMeasureBatch(context.Background(), progs, 100)
	require.NoError(t, err)
	want := []map[string]float64{{"00": 1}, {"01": 1}, {"11": 1}}
	if diff := cmp.Diff(want, hists); diff != "" {
		t.Fatalf("batch histograms mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, fc.calls(domain.BatchInquirePath))

	inquiry := fc.request(domain.BatchInquirePath, 1)
	assert.Equal(t, "A;B;C;", inquiry["taskIds"])
	assert.Equal(t, "0", inquiry["QMachineType"])

	submit := fc.request(domain.BatchComputePath, 0)
	assert.Len(t, submit["codeArr"], 3)
	assert.Equal(t, "100", submit["shot"])
}

func TestBatchMissingStepCountsAsPending(t *testing.T) {
	fc := newFakeCloud(t)
	fc.on(domain.BatchComputePath, threeSteps)
	fc.on(domain.BatchInquirePath,
		batchInquireResp(t,
			stepEntry{"0", "4", histJSON("0")},
			stepEntry{"1", "4", histJSON("1")},
		),
		batchInquireResp(t,
			stepEntry{"2", "4", histJSON("2")},
			stepEntry{"1", "4", histJSON("1")},
			stepEntry{"0", "4", histJSON("0")},
		),
	)
	c := fc.client(t)

	hists, err := c.FullAmplitudeMeasureBatch(context.Background(), []domain.Program{bell(), bell(), bell()}, 10)
	require.NoError(t, err)
	require.Len(t, hists, 3)
	assert.Equal(t, map[string]float64{"2": 1}, hists[2])
	assert.Equal(t, 2, fc.calls(domain.BatchInquirePath))
}

func TestBatchStepOrderFollowsStepIndex(t *testing.T) {
	fc := newFakeCloud(t)
	fc.on(domain.BatchComputePath, `{"success":true,"obj":{"stepTaskResultList":[
		{"step":"7","taskId":"X"},{"step":"3","taskId":"Y"}]}}`)
	fc.on(domain.BatchInquirePath, batchInquireResp(t,
		stepEntry{"7", "4", `{"ResultType":4,"ValueReal":1,"ValueImag":0}`},
		stepEntry{"3", "4", `{"ResultType":4,"ValueReal":0,"ValueImag":1}`},
	))
	c := fc.client(t)

	amps, err := c.SingleAmplitudePMeasureBatch(context.Background(), []domain.Program{bell(), bell()}, "0")
	require.NoError(t, err)
	assert.Equal(t, []complex128{complex(0, 1), complex(1, 0)}, amps)
}

func TestBatchFailureAbortsWholeBatch(t *testing.T) {
	fc := newFakeCloud(t)
	fc.on(domain.BatchComputePath, threeSteps)
	fc.on(domain.BatchInquirePath, batchInquireResp(t,
		stepEntry{"0", "4", `{"key":["0"],"value":[1]}`},
		stepEntry{"1", "5", `{"Value":"calibration"}`},
		stepEntry{"2", "-4", ""},
	))
	c := fc.client(t)

	_, err := c.RealChipMeasureBatch(context.Background(), []domain.Program{bell(), bell(), bell()}, 1000, domain.DefaultChipOptions())
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeTaskFailed))
	assert.Contains(t, err.Error(), "calibration")
	assert.Equal(t, 1, fc.calls(domain.BatchInquirePath))
}

func TestBatchNoiseCarriesModel(t *testing.T) {
	fc := newFakeCloud(t)
	fc.on(domain.BatchComputePath, `{"success":true,"obj":{"stepTaskResultList":[{"step":"0","taskId":"N"}]}}`)
	fc.on(domain.BatchInquirePath, batchInquireResp(t, stepEntry{"0", "4", histJSON("1")}))
	c := fc.client(t)
	require.NoError(t, c.Session().SetNoiseModel(domain.NoiseBitFlipKraus, []float64{0.1}, []float64{0.2}))

	_, err := c.NoiseMeasureBatch(context.Background(), []domain.Program{bell()}, 50)
	require.NoError(t, err)
	assert.Equal(t, "BITFLIP_KRAUS_OPERATOR", fc.request(domain.BatchComputePath, 0)["noisemodel"])
}

func TestBatchPMeasureUsesProbabilityDiscriminator(t *testing.T) {
	fc := newFakeCloud(t)
	fc.on(domain.BatchComputePath, `{"success":true,"obj":{"stepTaskResultList":[{"step":"0","taskId":"P"}]}}`)
	fc.on(domain.BatchInquirePath, batchInquireResp(t, stepEntry{"0", "4", histJSON("10")}))
	c := fc.client(t)

	_, err := c.FullAmplitudePMeasureBatch(context.Background(), []domain.Program{bell()}, []int{0, 1})
	require.NoError(t, err)
	submit := fc.request(domain.BatchComputePath, 0)
	assert.Equal(t, "2", submit["measureType"])
	assert.Equal(t, []any{"0", "1"}, submit["qubits"])
}

func TestBatchSubmitRejected(t *testing.T) {
	fc := newFakeCloud(t)
	fc.on(domain.BatchComputePath, `{"success":false,"enMessage":"too many programs"}`)
	c := fc.client(t)

	_, err := c.FullAmplitudeMeasureBatch(context.Background(), []domain.Program{bell()}, 10)
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeRemoteRejection))
	assert.Zero(t, fc.calls(domain.BatchInquirePath))
}

func TestBatchRejectsEmptyInput(t *testing.T) {
	fc := newFakeCloud(t)
	c := fc.client(t)
	_, err := c.FullAmplitudeMeasureBatch(context.Background(), nil, 10)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
	assert.True(t, errors.Is(err, domain.ErrInvalidParameter))
}
