package app

import (
	"fmt"
	"os"
	"strings"

	"qcloud/internal/domain"
	"qcloud/internal/infra/encoder"
)

// ProgramSizes overrides the register sizes declared in the program text.
// Zero keeps the declared value.
type ProgramSizes struct {
	Qubits int
	Cbits  int
}

// LoadPrograms reads OriginIR files. Register sizes come from each file's
// QINIT/CREG header unless sizes overrides them.
func LoadPrograms(paths []string, sizes ProgramSizes) ([]domain.Program, error) {
	const op = "app.LoadPrograms"
	if len(paths) == 0 {
		return nil, domain.Configf(op, "at least one program file is required")
	}
	progs := make([]domain.Program, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, domain.E(domain.CodeConfiguration, op, fmt.Sprintf("read %s", path), err)
		}
		prog, err := ParseProgram(string(data), sizes)
		if err != nil {
			return nil, domain.Wrap(domain.CodeConfiguration, op, err).WithMeta("file", path)
		}
		progs = append(progs, prog)
	}
	return progs, nil
}

// ParseProgram builds an IR program from source.
func ParseProgram(source string, sizes ProgramSizes) (domain.IRProgram, error) {
	if strings.TrimSpace(source) == "" {
		return domain.IRProgram{}, fmt.Errorf("%w: empty program", domain.ErrInvalidParameter)
	}
	prog := domain.IRProgram{Source: source, Qubits: sizes.Qubits, Cbits: sizes.Cbits}
	if prog.Qubits > 0 && prog.Cbits > 0 {
		return prog, nil
	}
	qubits, cbits, err := encoder.ParseIRHeader(source)
	if err != nil {
		if prog.Qubits > 0 {
			return prog, nil
		}
		return domain.IRProgram{}, err
	}
	if prog.Qubits <= 0 {
		prog.Qubits = qubits
	}
	if prog.Cbits <= 0 {
		prog.Cbits = cbits
	}
	return prog, nil
}
