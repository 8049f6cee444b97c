package keys

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyExchangeSymmetry(t *testing.T) {
	alice, err := NewKeyExchange()
	require.NoError(t, err)
	bob, err := NewKeyExchange()
	require.NoError(t, err)

	require.Equal(t, ExchangeFresh, alice.State())
	require.False(t, alice.IsComplete())

	require.NoError(t, alice.SetPeerPublic(bob.PublicKey()))
	require.NoError(t, bob.SetPeerPublic(alice.PublicKey()))

	require.True(t, alice.IsComplete())
	require.True(t, bob.IsComplete())

	label := []byte("m2m-session-v1")
	ka, err := alice.DeriveSessionKey(label)
	require.NoError(t, err)
	kb, err := bob.DeriveSessionKey(label)
	require.NoError(t, err)

	require.True(t, ka.Equal(kb))
}

func TestKeyExchangeDifferentLabelsDiffer(t *testing.T) {
	alice, err := NewKeyExchange()
	require.NoError(t, err)
	bob, err := NewKeyExchange()
	require.NoError(t, err)
	require.NoError(t, alice.SetPeerPublic(bob.PublicKey()))

	a, err := alice.DeriveSessionKey([]byte("label-a"))
	require.NoError(t, err)
	b, err := alice.DeriveSessionKey([]byte("label-b"))
	require.NoError(t, err)
	require.False(t, a.Equal(b))
}

func TestKeyExchangeFreshRejectsDerive(t *testing.T) {
	alice, err := NewKeyExchange()
	require.NoError(t, err)
	_, err = alice.DeriveSessionKey([]byte("x"))
	require.ErrorIs(t, err, ErrExchangeNotComplete)
}

func TestKeyExchangeBadPeerPublic(t *testing.T) {
	alice, err := NewKeyExchange()
	require.NoError(t, err)
	err = alice.SetPeerPublic([]byte{1, 2, 3})
	require.Error(t, err)
	require.Equal(t, ExchangeFresh, alice.State())
}
