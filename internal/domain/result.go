package domain

import "fmt"

// ResultKind names the populated variant of a Result.
type ResultKind int

const (
	ResultNone ResultKind = iota
	ResultHistogram
	ResultAmplitudes
	ResultAmplitude
	ResultExpectation
	ResultDensityMatrix
	ResultFidelity
)

func (k ResultKind) String() string {
	switch k {
	case ResultNone:
		return "none"
	case ResultHistogram:
		return "histogram"
	case ResultAmplitudes:
		return "amplitudes"
	case ResultAmplitude:
		return "amplitude"
	case ResultExpectation:
		return "expectation"
	case ResultDensityMatrix:
		return "density_matrix"
	case ResultFidelity:
		return "fidelity"
	default:
		return fmt.Sprintf("result(%d)", int(k))
	}
}

// Result is the decoded payload of a finished task. Exactly one variant is
// populated; asking for another one fails with ErrResultKindMismatch.
type Result struct {
	kind       ResultKind
	histogram  map[string]float64
	amplitudes map[string]complex128
	amplitude  complex128
	scalar     float64
	matrix     [][]complex128
}

func HistogramResult(h map[string]float64) Result {
	return Result{kind: ResultHistogram, histogram: h}
}

func AmplitudesResult(a map[string]complex128) Result {
	return Result{kind: ResultAmplitudes, amplitudes: a}
}

func AmplitudeResult(a complex128) Result {
	return Result{kind: ResultAmplitude, amplitude: a}
}

func ExpectationResult(v float64) Result {
	return Result{kind: ResultExpectation, scalar: v}
}

func DensityMatrixResult(m [][]complex128) Result {
	return Result{kind: ResultDensityMatrix, matrix: m}
}

func FidelityResult(v float64) Result {
	return Result{kind: ResultFidelity, scalar: v}
}

func (r Result) Kind() ResultKind {
	return r.kind
}

func (r Result) IsZero() bool {
	return r.kind == ResultNone
}

func (r Result) mismatch(want ResultKind) error {
	return fmt.Errorf("%w: want %s, have %s", ErrResultKindMismatch, want, r.kind)
}

func (r Result) Histogram() (map[string]float64, error) {
	if r.kind != ResultHistogram {
		return nil, r.mismatch(ResultHistogram)
	}
	return r.histogram, nil
}

func (r Result) Amplitudes() (map[string]complex128, error) {
	if r.kind != ResultAmplitudes {
		return nil, r.mismatch(ResultAmplitudes)
	}
	return r.amplitudes, nil
}

func (r Result) Amplitude() (complex128, error) {
	if r.kind != ResultAmplitude {
		return 0, r.mismatch(ResultAmplitude)
	}
	return r.amplitude, nil
}

func (r Result) Expectation() (float64, error) {
	if r.kind != ResultExpectation {
		return 0, r.mismatch(ResultExpectation)
	}
	return r.scalar, nil
}

// DensityMatrix returns the reconstructed state as a square row-major matrix.
func (r Result) DensityMatrix() ([][]complex128, error) {
	if r.kind != ResultDensityMatrix {
		return nil, r.mismatch(ResultDensityMatrix)
	}
	return r.matrix, nil
}

func (r Result) Fidelity() (float64, error) {
	if r.kind != ResultFidelity {
		return 0, r.mismatch(ResultFidelity)
	}
	return r.scalar, nil
}

// Value returns the populated variant as an untyped value, for rendering.
func (r Result) Value() any {
	switch r.kind {
	case ResultHistogram:
		return r.histogram
	case ResultAmplitudes:
		return r.amplitudes
	case ResultAmplitude:
		return r.amplitude
	case ResultExpectation, ResultFidelity:
		return r.scalar
	case ResultDensityMatrix:
		return r.matrix
	default:
		return nil
	}
}
