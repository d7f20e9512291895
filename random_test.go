package cngcrypt

import (
	"bytes"
	"testing"

	"github.com/opd-ai/cngcrypt/status"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenRandom(t *testing.T) {
	rng := mustOpen(t, RNG, 0)

	closed, err := Open(RNG, 0)
	require.NoError(t, err)
	require.NoError(t, closed.Close())

	tests := []struct {
		name    string
		p       *Provider
		wantErr status.Status
	}{
		{"system rng", nil, 0},
		{"rng provider", rng, 0},
		{"hash provider", mustOpen(t, "SHA1", 0), status.InvalidHandle},
		{"closed provider", closed, status.InvalidHandle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := make([]byte, 32)
			err := GenRandom(tt.p, out)
			if tt.wantErr != 0 {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, make([]byte, 32), out)
				return
			}
			require.NoError(t, err)
			assert.False(t, bytes.Equal(out, make([]byte, 32)))
		})
	}

	require.NoError(t, GenRandom(rng, nil))
}
