package encoder

import (
	"context"
	"fmt"
	"strings"

	"qcloud/internal/domain"
)

// IREncoder passes through programs already lowered to OriginIR text.
type IREncoder struct{}

func NewIREncoder() IREncoder {
	return IREncoder{}
}

// Encode returns the source of each program, rejecting programs that are not
// IR text and programs with an empty body.
func (IREncoder) Encode(ctx context.Context, progs ...domain.Program) ([]string, error) {
	const op = "encoder.Encode"
	if len(progs) == 0 {
		return nil, domain.Configf(op, "at least one program is required")
	}
	out := make([]string, 0, len(progs))
	for i, prog := range progs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var src string
		switch p := prog.(type) {
		case domain.IRProgram:
			src = p.Source
		case *domain.IRProgram:
			if p == nil {
				return nil, domain.Configf(op, "program %d is nil", i)
			}
			src = p.Source
		default:
			return nil, domain.Configf(op, "program %d: unsupported program type %T", i, prog)
		}
		src = normalizeNewlines(src)
		if strings.TrimSpace(src) == "" {
			return nil, domain.Configf(op, "program %d is empty", i)
		}
		out = append(out, src)
	}
	return out, nil
}

func normalizeNewlines(src string) string {
	return strings.ReplaceAll(src, "\r\n", "\n")
}

// CodeLength is the combined length of the encoded texts, sent as codeLen.
func CodeLength(texts []string) int {
	n := 0
	for _, text := range texts {
		n += len(text)
	}
	return n
}

// ParseIRHeader reads the QINIT/CREG declarations of an OriginIR program to
// recover its register sizes.
func ParseIRHeader(src string) (qubits, cbits int, err error) {
	for _, line := range strings.Split(normalizeNewlines(src), "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		var n int
		if _, scanErr := fmt.Sscanf(fields[1], "%d", &n); scanErr != nil {
			continue
		}
		switch strings.ToUpper(fields[0]) {
		case "QINIT":
			qubits = n
		case "CREG":
			cbits = n
		}
	}
	if qubits <= 0 {
		return 0, 0, fmt.Errorf("%w: missing QINIT declaration", domain.ErrInvalidParameter)
	}
	return qubits, cbits, nil
}

var _ domain.ProgramEncoder = IREncoder{}
