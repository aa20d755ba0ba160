package decode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"qcloud/internal/domain"
)

// clusterResult is the JSON document embedded as a string in taskResult.
// Real-chip results use lower-case key/value.
type clusterResult struct {
	ResultType *int            `json:"ResultType"`
	Key        json.RawMessage `json:"Key"`
	Value      json.RawMessage `json:"Value"`
	LowerKey   json.RawMessage `json:"key"`
	LowerValue json.RawMessage `json:"value"`
	ValueReal  json.RawMessage `json:"ValueReal"`
	ValueImag  json.RawMessage `json:"ValueImag"`
}

func (c clusterResult) keys() json.RawMessage {
	if len(c.LowerKey) > 0 {
		return c.LowerKey
	}
	return c.Key
}

func (c clusterResult) values() json.RawMessage {
	if len(c.LowerValue) > 0 {
		return c.LowerValue
	}
	return c.Value
}

func parseClusterResult(raw string) (clusterResult, error) {
	var res clusterResult
	if strings.TrimSpace(raw) == "" {
		return res, fmt.Errorf("task result is empty")
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return res, fmt.Errorf("parse task result: %w", err)
	}
	return res, nil
}

// decodeFinished selects the payload variant for backend. Each case reads
// exactly the fields its backend produces.
func decodeFinished(backend domain.BackendKind, entry taskEntry) (domain.Result, error) {
	switch backend {
	case domain.BackendRealChip:
		res, err := parseClusterResult(entry.TaskResult)
		if err != nil {
			return domain.Result{}, err
		}
		hist, err := zipHistogram(res.keys(), res.values())
		if err != nil {
			return domain.Result{}, err
		}
		return domain.HistogramResult(hist), nil

	case domain.BackendFullAmplitude, domain.BackendNoiseMachine:
		res, err := parseClusterResult(entry.TaskResult)
		if err != nil {
			return domain.Result{}, err
		}
		if res.ResultType != nil && domain.ResultType(*res.ResultType) == domain.ResultTypeExpectation {
			v, err := firstNumber(res.Value, "Value")
			if err != nil {
				return domain.Result{}, err
			}
			return domain.ExpectationResult(v), nil
		}
		hist, err := zipHistogram(res.Key, res.Value)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.HistogramResult(hist), nil

	case domain.BackendPartialAmplitude:
		res, err := parseClusterResult(entry.TaskResult)
		if err != nil {
			return domain.Result{}, err
		}
		amps, err := zipAmplitudes(res.Key, res.ValueReal, res.ValueImag)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.AmplitudesResult(amps), nil

	case domain.BackendSingleAmplitude:
		res, err := parseClusterResult(entry.TaskResult)
		if err != nil {
			return domain.Result{}, err
		}
		amp, err := singleAmplitude(res)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.AmplitudeResult(amp), nil

	case domain.BackendQST:
		if entry.QSTResult == nil {
			return domain.Result{}, fmt.Errorf("missing qstresult")
		}
		matrix, err := decodeDensityMatrix(*entry.QSTResult)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.DensityMatrixResult(matrix), nil

	case domain.BackendFidelity:
		if entry.QSTFidelity == nil {
			return domain.Result{}, fmt.Errorf("missing qstfidelity")
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(entry.QSTFidelity.String()), 64)
		if err != nil {
			return domain.Result{}, fmt.Errorf("qstfidelity %q is not a decimal", entry.QSTFidelity.String())
		}
		return domain.FidelityResult(v), nil

	default:
		return domain.Result{}, fmt.Errorf("%w: %s", domain.ErrUnsupportedBackend, backend)
	}
}

// decodeStepResult decodes one batch step. Batch payloads are tagged by the
// embedded ResultType rather than by backend; a payload without ResultType
// is a real-chip histogram.
func decodeStepResult(raw string) (domain.Result, error) {
	res, err := parseClusterResult(raw)
	if err != nil {
		return domain.Result{}, err
	}
	if res.ResultType == nil {
		hist, err := zipHistogram(res.keys(), res.values())
		if err != nil {
			return domain.Result{}, err
		}
		return domain.HistogramResult(hist), nil
	}

	switch domain.ResultType(*res.ResultType) {
	case domain.ResultTypeProbabilityMap:
		hist, err := zipHistogram(res.Key, res.Value)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.HistogramResult(hist), nil
	case domain.ResultTypeExpectation:
		v, err := firstNumber(res.Value, "Value")
		if err != nil {
			return domain.Result{}, err
		}
		return domain.ExpectationResult(v), nil
	case domain.ResultTypeMultiAmplitude:
		if isJSONArray(res.Key) {
			amps, err := zipAmplitudes(res.Key, res.ValueReal, res.ValueImag)
			if err != nil {
				return domain.Result{}, err
			}
			return domain.AmplitudesResult(amps), nil
		}
		amp, err := singleAmplitude(res)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.AmplitudeResult(amp), nil
	case domain.ResultTypeSingleAmplitude:
		amp, err := singleAmplitude(res)
		if err != nil {
			return domain.Result{}, err
		}
		return domain.AmplitudeResult(amp), nil
	default:
		return domain.Result{}, fmt.Errorf("unknown ResultType %d", *res.ResultType)
	}
}

func zipHistogram(rawKeys, rawValues json.RawMessage) (map[string]float64, error) {
	var keys []string
	if err := unmarshalField(rawKeys, "Key", &keys); err != nil {
		return nil, err
	}
	var values []float64
	if err := unmarshalField(rawValues, "Value", &values); err != nil {
		return nil, err
	}
	if len(keys) != len(values) {
		return nil, fmt.Errorf("key/value length mismatch: %d keys, %d values", len(keys), len(values))
	}
	out := make(map[string]float64, len(keys))
	for i, key := range keys {
		out[key] = values[i]
	}
	return out, nil
}

func zipAmplitudes(rawKeys, rawReal, rawImag json.RawMessage) (map[string]complex128, error) {
	var keys []string
	if err := unmarshalField(rawKeys, "Key", &keys); err != nil {
		return nil, err
	}
	var re, im []float64
	if err := unmarshalField(rawReal, "ValueReal", &re); err != nil {
		return nil, err
	}
	if err := unmarshalField(rawImag, "ValueImag", &im); err != nil {
		return nil, err
	}
	if len(re) != len(keys) || len(im) != len(keys) {
		return nil, fmt.Errorf("amplitude length mismatch: %d keys, %d real, %d imag", len(keys), len(re), len(im))
	}
	out := make(map[string]complex128, len(keys))
	for i, key := range keys {
		out[key] = complex(re[i], im[i])
	}
	return out, nil
}

func singleAmplitude(res clusterResult) (complex128, error) {
	re, err := firstNumber(res.ValueReal, "ValueReal")
	if err != nil {
		return 0, err
	}
	im, err := firstNumber(res.ValueImag, "ValueImag")
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

type densityElement struct {
	R *float64 `json:"r"`
	I *float64 `json:"i"`
}

// decodeDensityMatrix reshapes the flattened tomography result row-major
// into an r×r matrix. The element count must be a non-zero perfect square.
func decodeDensityMatrix(raw string) ([][]complex128, error) {
	var elems []densityElement
	if err := json.Unmarshal([]byte(raw), &elems); err != nil {
		return nil, fmt.Errorf("parse qstresult: %w", err)
	}
	rank := int(math.Sqrt(float64(len(elems))))
	if rank == 0 || rank*rank != len(elems) {
		return nil, fmt.Errorf("qstresult has %d elements, not a square matrix", len(elems))
	}
	matrix := make([][]complex128, rank)
	for i := 0; i < rank; i++ {
		row := make([]complex128, rank)
		for j := 0; j < rank; j++ {
			elem := elems[i*rank+j]
			if elem.R == nil || elem.I == nil {
				return nil, fmt.Errorf("qstresult element %d lacks r or i", i*rank+j)
			}
			row[j] = complex(*elem.R, *elem.I)
		}
		matrix[i] = row
	}
	return matrix, nil
}

// firstNumber reads a bare number or the first element of a number array.
func firstNumber(raw json.RawMessage, name string) (float64, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, fmt.Errorf("missing %s", name)
	}
	if raw[0] == '[' {
		var values []float64
		if err := json.Unmarshal(raw, &values); err != nil {
			return 0, fmt.Errorf("%s: %w", name, err)
		}
		if len(values) == 0 {
			return 0, fmt.Errorf("%s is empty", name)
		}
		return values[0], nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return v, nil
}

func unmarshalField(raw json.RawMessage, name string, dst any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("missing %s", name)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

func isJSONArray(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '['
}

// failureMessage extracts the error text a real chip embeds in a failed
// task's result as {"Value": "..."}.
func failureMessage(raw string) string {
	var res struct {
		Value json.RawMessage `json:"Value"`
	}
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return ""
	}
	var msg string
	if err := json.Unmarshal(res.Value, &msg); err != nil {
		return ""
	}
	return strings.TrimSpace(msg)
}
