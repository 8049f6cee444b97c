package keys

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticKeyFromEd25519MatchesPublicConversion(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	xPriv, err := StaticKeyFromEd25519(priv)
	require.NoError(t, err)

	xPub, err := StaticPublicFromEd25519(pub)
	require.NoError(t, err)

	require.Equal(t, xPriv.PublicKey().Bytes(), xPub.Bytes())
}

func TestStaticKeyExchangeSymmetryAcrossIdentities(t *testing.T) {
	_, alicePriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	_, bobPriv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	alice, err := NewStaticKeyExchange(alicePriv)
	require.NoError(t, err)
	bob, err := NewStaticKeyExchange(bobPriv)
	require.NoError(t, err)

	require.NoError(t, alice.SetPeerPublic(bob.PublicKey()))
	require.NoError(t, bob.SetPeerPublic(alice.PublicKey()))

	label := []byte("m2m-static-bind-v1")
	ka, err := alice.DeriveSessionKey(label)
	require.NoError(t, err)
	kb, err := bob.DeriveSessionKey(label)
	require.NoError(t, err)
	require.True(t, ka.Equal(kb))
}

func TestStaticPublicFromEd25519RejectsBadLength(t *testing.T) {
	_, err := StaticPublicFromEd25519([]byte{1, 2, 3})
	require.Error(t, err)
}
