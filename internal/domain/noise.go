package domain

import (
	"fmt"
	"strings"
)

// NoiseModel is one of the fixed noise model identifiers understood by the
// noise machine backend. The spellings are part of the wire protocol.
type NoiseModel string

const (
	NoiseBitFlipKraus      NoiseModel = "BITFLIP_KRAUS_OPERATOR"
	NoiseBitPhaseFlip      NoiseModel = "BIT_PHASE_FLIP_OPRATOR"
	NoiseDampingKraus      NoiseModel = "DAMPING_KRAUS_OPERATOR"
	NoiseDecoherenceKraus  NoiseModel = "DECOHERENCE_KRAUS_OPERATOR"
	NoiseDephasingKraus    NoiseModel = "DEPHASING_KRAUS_OPERATOR"
	NoiseDepolarizingKraus NoiseModel = "DEPOLARIZING_KRAUS_OPERATOR"
	NoiseKrausMatrix       NoiseModel = "KRAUS_MATRIX_OPRATOR"
	NoiseMixedUnitary      NoiseModel = "MIXED_UNITARY_OPRATOR"
	NoisePauliKrausMap     NoiseModel = "PAULI_KRAUS_MAP"
	NoisePhaseDamping      NoiseModel = "PHASE_DAMPING_OPRATOR"
)

// NoiseModels lists the accepted vocabulary in a stable order.
var NoiseModels = []NoiseModel{
	NoiseBitFlipKraus,
	NoiseBitPhaseFlip,
	NoiseDampingKraus,
	NoiseDecoherenceKraus,
	NoiseDephasingKraus,
	NoiseDepolarizingKraus,
	NoiseKrausMatrix,
	NoiseMixedUnitary,
	NoisePauliKrausMap,
	NoisePhaseDamping,
}

// decoherenceParams is the number of single/double gate parameters the
// decoherence model needs: gate parameter, p2 and pgate.
const decoherenceParams = 3

func (m NoiseModel) Valid() bool {
	for _, known := range NoiseModels {
		if m == known {
			return true
		}
	}
	return false
}

// ParseNoiseModel matches raw against the vocabulary ignoring case.
func ParseNoiseModel(raw string) (NoiseModel, error) {
	value := NoiseModel(strings.ToUpper(strings.TrimSpace(raw)))
	if !value.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownNoiseModel, raw)
	}
	return value, nil
}

// NoiseConfig is the validated noise configuration sent with noise machine
// requests. The P2/PGate fields are only meaningful for the decoherence
// model.
type NoiseConfig struct {
	Model           NoiseModel
	SingleGateParam float64
	DoubleGateParam float64
	SingleP2        float64
	DoubleP2        float64
	SinglePGate     float64
	DoublePGate     float64
}

// NewNoiseConfig validates the model name and parameter counts. Every model
// needs at least one single and one double gate parameter; the decoherence
// model needs three of each.
func NewNoiseConfig(model NoiseModel, single, double []float64) (NoiseConfig, error) {
	const op = "domain.NewNoiseConfig"
	if !model.Valid() {
		return NoiseConfig{}, E(CodeConfiguration, op, "", fmt.Errorf("%w: %q", ErrUnknownNoiseModel, model))
	}
	if len(single) == 0 || len(double) == 0 {
		return NoiseConfig{}, E(CodeConfiguration, op, "", fmt.Errorf("%w: %s needs single and double gate parameters", ErrNoiseParams, model))
	}
	cfg := NoiseConfig{
		Model:           model,
		SingleGateParam: single[0],
		DoubleGateParam: double[0],
	}
	if model == NoiseDecoherenceKraus {
		if len(single) < decoherenceParams || len(double) < decoherenceParams {
			return NoiseConfig{}, E(CodeConfiguration, op, "", fmt.Errorf("%w: %s needs %d single and %d double gate parameters, got %d and %d",
				ErrNoiseParams, model, decoherenceParams, decoherenceParams, len(single), len(double)))
		}
		cfg.SingleP2 = single[1]
		cfg.DoubleP2 = double[1]
		cfg.SinglePGate = single[2]
		cfg.DoublePGate = double[2]
	}
	return cfg, nil
}

// Configured reports whether a model has been set.
func (c NoiseConfig) Configured() bool {
	return c.Model != ""
}

// Decoherence reports whether the three-parameter fields are in use.
func (c NoiseConfig) Decoherence() bool {
	return c.Model == NoiseDecoherenceKraus
}
