package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/m2m/keys"
)

func testKeyMaterial(t *testing.T, seed byte) *keys.KeyMaterial {
	t.Helper()
	b := make([]byte, 32)
	for i := range b {
		b[i] = seed
	}
	km, err := keys.New(b)
	require.NoError(t, err)
	return km
}

func TestSecurityContextAEADRoundtrip(t *testing.T) {
	pool := NewNoncePool()
	ctx, err := NewAEADSecurityContext(testKeyMaterial(t, 1), pool)
	require.NoError(t, err)

	sealed, err := ctx.Seal([]byte("plaintext"), []byte("aad"))
	require.NoError(t, err)
	opened, err := ctx.Open(sealed, []byte("aad"))
	require.NoError(t, err)
	require.Equal(t, []byte("plaintext"), opened)
}

func TestSecurityContextHMACRoundtrip(t *testing.T) {
	ctx, err := NewHMACSecurityContext(testKeyMaterial(t, 2))
	require.NoError(t, err)

	sealed, err := ctx.Seal([]byte("plaintext"), []byte("aad"))
	require.NoError(t, err)
	opened, err := ctx.Open(sealed, []byte("aad"))
	require.NoError(t, err)
	require.Equal(t, []byte("plaintext"), opened)
}

func TestSecurityContextRejectsCounterSourceInProduction(t *testing.T) {
	_, err := NewAEADSecurityContextWithSource(testKeyMaterial(t, 3), &CounterNonceSource{}, false)
	require.ErrorIs(t, err, ErrCounterNonceSourceInProduction)
}

func TestSecurityContextAllowsCounterSourceForTests(t *testing.T) {
	ctx, err := NewAEADSecurityContextWithSource(testKeyMaterial(t, 4), &CounterNonceSource{}, true)
	require.NoError(t, err)

	sealed, err := ctx.Seal([]byte("x"), nil)
	require.NoError(t, err)
	opened, err := ctx.Open(sealed, nil)
	require.NoError(t, err)
	require.Equal(t, []byte("x"), opened)
}
