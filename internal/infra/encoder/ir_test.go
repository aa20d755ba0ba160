package encoder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qcloud/internal/domain"
)

const bell = "QINIT 2\r\nCREG 2\r\nH q[0]\r\nCNOT q[0],q[1]\r\nMEASURE q[0],c[0]\r\n"

func TestIREncoderEncode(t *testing.T) {
	texts, err := NewIREncoder().Encode(context.Background(),
		domain.IRProgram{Source: bell, Qubits: 2, Cbits: 2},
		&domain.IRProgram{Source: "QINIT 1\nCREG 1\nX q[0]\n", Qubits: 1, Cbits: 1},
	)
	require.NoError(t, err)
	require.Len(t, texts, 2)
	assert.NotContains(t, texts[0], "\r")
	assert.Equal(t, len(texts[0])+len(texts[1]), CodeLength(texts))
}

func TestIREncoderRejectsEmpty(t *testing.T) {
	_, err := NewIREncoder().Encode(context.Background(), domain.IRProgram{Source: "  \n"})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))

	_, err = NewIREncoder().Encode(context.Background())
	assert.True(t, domain.IsCode(err, domain.CodeConfiguration))
}

func TestParseIRHeader(t *testing.T) {
	q, c, err := ParseIRHeader(bell)
	require.NoError(t, err)
	assert.Equal(t, 2, q)
	assert.Equal(t, 2, c)

	_, _, err = ParseIRHeader("H q[0]")
	assert.ErrorIs(t, err, domain.ErrInvalidParameter)
}
