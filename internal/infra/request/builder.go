package request

import (
	"encoding/json"
	"strconv"
	"strings"

	"qcloud/internal/domain"
)

// Builder constructs request bodies from session state. It is pure: it never
// touches the network and fails before any call is attempted.
type Builder struct {
	apiKey string
	noise  domain.NoiseConfig
}

func NewBuilder(apiKey string, noise domain.NoiseConfig) *Builder {
	return &Builder{apiKey: apiKey, noise: noise}
}

type fields map[string]any

// Single builds the submit body for one program.
func (b *Builder) Single(task domain.Task, code string, qubits, cbits int) ([]byte, error) {
	const op = "request.Single"
	if err := task.Validate(qubits, false); err != nil {
		return nil, domain.Wrap(domain.CodeConfiguration, op, err)
	}
	if strings.TrimSpace(code) == "" {
		return nil, domain.Configf(op, "program text is empty")
	}
	body := fields{
		"code":            code,
		"apiKey":          b.apiKey,
		"QMachineType":    int(task.Backend),
		"codeLen":         len(code),
		"qubitNum":        qubits,
		"classicalbitNum": cbits,
		"measureType":     int(task.Kind),
		"taskName":        task.TaskName(),
	}
	if err := b.kindFields(body, task, false); err != nil {
		return nil, domain.Wrap(domain.CodeConfiguration, op, err)
	}
	return marshal(op, body)
}

// Batch builds one submit body carrying every program text. Counters are
// sent as strings, matching the batch endpoint.
func (b *Builder) Batch(task domain.Task, codes []string, qubits, cbits int) ([]byte, error) {
	const op = "request.Batch"
	if len(codes) == 0 {
		return nil, domain.Configf(op, "at least one program is required")
	}
	if err := task.Validate(qubits, true); err != nil {
		return nil, domain.Wrap(domain.CodeConfiguration, op, err)
	}
	codeLen := 0
	for i, code := range codes {
		if strings.TrimSpace(code) == "" {
			return nil, domain.Configf(op, "program %d text is empty", i)
		}
		codeLen += len(code)
	}
	body := fields{
		"codeArr":         codes,
		"apiKey":          b.apiKey,
		"QMachineType":    strconv.Itoa(int(task.Backend)),
		"codeLen":         strconv.Itoa(codeLen),
		"qubitNum":        strconv.Itoa(qubits),
		"classicalbitNum": strconv.Itoa(cbits),
		"measureType":     strconv.Itoa(int(task.Kind)),
		"taskName":        task.TaskName(),
	}
	if err := b.kindFields(body, task, true); err != nil {
		return nil, domain.Wrap(domain.CodeConfiguration, op, err)
	}
	return marshal(op, body)
}

// Inquire builds the status request for one task.
func (b *Builder) Inquire(taskID string, backend domain.BackendKind) ([]byte, error) {
	const op = "request.Inquire"
	if strings.TrimSpace(taskID) == "" {
		return nil, domain.Configf(op, "task id is required")
	}
	return marshal(op, fields{
		"taskId":       taskID,
		"apiKey":       b.apiKey,
		"QMachineType": int(backend),
	})
}

// BatchInquire builds the status request for every task of a batch. Ids are
// joined with a trailing ';' each.
func (b *Builder) BatchInquire(taskIDs []string, backend domain.BackendKind) ([]byte, error) {
	const op = "request.BatchInquire"
	if len(taskIDs) == 0 {
		return nil, domain.Configf(op, "task ids are required")
	}
	var joined strings.Builder
	for _, id := range taskIDs {
		joined.WriteString(id)
		joined.WriteString(";")
	}
	return marshal(op, fields{
		"taskIds":      joined.String(),
		"apiKey":       b.apiKey,
		"QMachineType": strconv.Itoa(int(backend)),
	})
}

func (b *Builder) kindFields(body fields, task domain.Task, batch bool) error {
	shots := func() any {
		if batch {
			return strconv.Itoa(task.Shots)
		}
		return task.Shots
	}

	if task.Backend.RealChipFamily() {
		body["shot"] = shots()
		body["chipId"] = int(task.Chip.Chip)
		for key, value := range chipFlags(task.Chip) {
			body[key] = value
		}
		return nil
	}

	switch task.Backend {
	case domain.BackendNoiseMachine:
		if !b.noise.Configured() {
			return domain.E(domain.CodeConfiguration, "", "", domain.ErrNoiseNotConfigured)
		}
		body["shot"] = shots()
		noiseFields(body, b.noise)
		return nil
	case domain.BackendPartialAmplitude:
		body["Amplitude"] = append([]string(nil), task.Amplitudes...)
		return nil
	case domain.BackendSingleAmplitude:
		body["Amplitude"] = task.Amplitude
		return nil
	}

	switch task.Kind {
	case domain.TaskMeasure:
		body["shot"] = shots()
	case domain.TaskProbabilityMeasure:
		body["qubits"] = qubitStrings(task.Qubits)
	case domain.TaskExpectation:
		body["qubits"] = qubitStrings(task.Qubits)
		hamiltonian, err := EncodeHamiltonian(task.Hamiltonian)
		if err != nil {
			return err
		}
		body["hamiltonian"] = hamiltonian
	}
	return nil
}

// chipFlags maps the caller's real-chip switches to the wire fields. The
// service expects each flag negated: enabling amend/mapping/optimization on
// the caller side is sent as false.
func chipFlags(opts domain.ChipOptions) map[string]bool {
	return map[string]bool{
		"isAmend":             !opts.Amend,
		"mappingFlag":         !opts.Mapping,
		"circuitOptimization": !opts.Optimization,
	}
}

func noiseFields(body fields, noise domain.NoiseConfig) {
	body["noisemodel"] = string(noise.Model)
	body["singleGate"] = noise.SingleGateParam
	body["doubleGate"] = noise.DoubleGateParam
	if noise.Decoherence() {
		body["singleP2"] = noise.SingleP2
		body["doubleP2"] = noise.DoubleP2
		body["singlePgate"] = noise.SinglePGate
		body["doublePgate"] = noise.DoublePGate
	}
}

func qubitStrings(qubits []int) []string {
	out := make([]string, 0, len(qubits))
	for _, q := range qubits {
		out = append(out, strconv.Itoa(q))
	}
	return out
}

type hamiltonianWire struct {
	PauliType []string  `json:"pauli_type"`
	PauliParm []float64 `json:"pauli_parm"`
}

// EncodeHamiltonian renders h as the JSON document embedded, as a string, in
// expectation requests.
func EncodeHamiltonian(h domain.Hamiltonian) (string, error) {
	wire := hamiltonianWire{
		PauliType: make([]string, 0, len(h)),
		PauliParm: make([]float64, 0, len(h)),
	}
	for _, term := range h {
		wire.PauliType = append(wire.PauliType, term.Operator())
		wire.PauliParm = append(wire.PauliParm, term.Coefficient)
	}
	data, err := json.Marshal(wire)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func marshal(op string, body fields) ([]byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, domain.E(domain.CodeInternal, op, "marshal request", err)
	}
	return data, nil
}
