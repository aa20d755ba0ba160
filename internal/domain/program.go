package domain

import "context"

// Program is a compiled quantum program. Its representation is opaque to
// this module; only the register sizes are needed to build requests.
type Program interface {
	QubitCount() int
	CbitCount() int
}

// ProgramEncoder serializes programs into the textual form embedded in
// requests, one text per program.
type ProgramEncoder interface {
	Encode(ctx context.Context, progs ...Program) ([]string, error)
}

// IRProgram is a program already lowered to OriginIR text.
type IRProgram struct {
	Source string
	Qubits int
	Cbits  int
}

func (p IRProgram) QubitCount() int { return p.Qubits }
func (p IRProgram) CbitCount() int  { return p.Cbits }

// RegisterSizes returns the largest qubit and cbit counts over progs. A
// batch shares one allocation so the widest program decides.
func RegisterSizes(progs ...Program) (qubits, cbits int) {
	for _, p := range progs {
		if p == nil {
			continue
		}
		qubits = max(qubits, p.QubitCount())
		cbits = max(cbits, p.CbitCount())
	}
	return qubits, cbits
}
