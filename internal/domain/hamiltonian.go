package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Pauli is a single-qubit Pauli operator.
type Pauli byte

const (
	PauliX Pauli = 'X'
	PauliY Pauli = 'Y'
	PauliZ Pauli = 'Z'
)

func (p Pauli) Valid() bool {
	return p == PauliX || p == PauliY || p == PauliZ
}

// PauliTerm is Coefficient times the tensor product of Ops. An empty Ops is
// the identity.
type PauliTerm struct {
	Ops         map[int]Pauli
	Coefficient float64
}

// Operator renders the term as "X0 Z1", ordered by qubit index.
func (t PauliTerm) Operator() string {
	qubits := make([]int, 0, len(t.Ops))
	for q := range t.Ops {
		qubits = append(qubits, q)
	}
	sort.Ints(qubits)
	parts := make([]string, 0, len(qubits))
	for _, q := range qubits {
		parts = append(parts, string(t.Ops[q])+strconv.Itoa(q))
	}
	return strings.Join(parts, " ")
}

// Hamiltonian is a weighted sum of Pauli terms.
type Hamiltonian []PauliTerm

// ParseHamiltonian reads terms of the form "0.5:Z0 Z1;-0.3:X0". An empty
// operator string denotes the identity term.
func ParseHamiltonian(raw string) (Hamiltonian, error) {
	var h Hamiltonian
	for _, chunk := range strings.Split(raw, ";") {
		chunk = strings.TrimSpace(chunk)
		if chunk == "" {
			continue
		}
		coeffText, opsText, ok := strings.Cut(chunk, ":")
		if !ok {
			return nil, fmt.Errorf("%w: hamiltonian term %q lacks coefficient", ErrInvalidParameter, chunk)
		}
		coeff, err := strconv.ParseFloat(strings.TrimSpace(coeffText), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: hamiltonian coefficient %q", ErrInvalidParameter, coeffText)
		}
		term := PauliTerm{Ops: map[int]Pauli{}, Coefficient: coeff}
		for _, op := range strings.Fields(opsText) {
			if len(op) < 2 {
				return nil, fmt.Errorf("%w: pauli operator %q", ErrInvalidParameter, op)
			}
			p := Pauli(strings.ToUpper(op[:1])[0])
			if !p.Valid() {
				return nil, fmt.Errorf("%w: pauli operator %q", ErrInvalidParameter, op)
			}
			q, err := strconv.Atoi(op[1:])
			if err != nil || q < 0 {
				return nil, fmt.Errorf("%w: pauli qubit %q", ErrInvalidParameter, op)
			}
			if _, dup := term.Ops[q]; dup {
				return nil, fmt.Errorf("%w: qubit %d repeated in term %q", ErrInvalidParameter, q, chunk)
			}
			term.Ops[q] = p
		}
		h = append(h, term)
	}
	return h, nil
}
