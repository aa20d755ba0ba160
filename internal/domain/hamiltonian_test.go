package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHamiltonian(t *testing.T) {
	h, err := ParseHamiltonian("0.5:Z1 z0; -0.3:X2; 1.0:")
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.Equal(t, "Z0 Z1", h[0].Operator())
	assert.Equal(t, 0.5, h[0].Coefficient)
	assert.Equal(t, "X2", h[1].Operator())
	assert.Equal(t, "", h[2].Operator())
}

func TestParseHamiltonianRejectsBadTerms(t *testing.T) {
	for _, raw := range []string{"Z0", "a:Z0", "1:Q0", "1:Z", "1:Z0 X0"} {
		_, err := ParseHamiltonian(raw)
		assert.ErrorIs(t, err, ErrInvalidParameter, raw)
	}
}
