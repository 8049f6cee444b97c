package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sage-x-project/m2m/keys"
	"github.com/sage-x-project/m2m/wire"
)

func newActiveSession(t *testing.T) *Session {
	t.Helper()
	b := make([]byte, 32)
	km, err := keys.New(b)
	require.NoError(t, err)
	ctx, err := NewAEADSecurityContext(km, NewNoncePool())
	require.NoError(t, err)

	s := New("sess-1", "peer-1")
	s.Activate(Capabilities{SecurityModes: []wire.SecurityMode{wire.SecurityAead}}, ctx)
	return s
}

func TestSessionStateTransitions(t *testing.T) {
	s := New("s", "p")
	require.Equal(t, StateNegotiating, s.State())

	km, err := keys.New(make([]byte, 32))
	require.NoError(t, err)
	ctx, err := NewHMACSecurityContext(km)
	require.NoError(t, err)
	s.Activate(Capabilities{}, ctx)
	require.Equal(t, StateActive, s.State())

	require.NoError(t, s.Close())
	require.Equal(t, StateClosed, s.State())
}

func TestSessionEncryptDecryptFrame(t *testing.T) {
	s := newActiveSession(t)
	sealed, err := s.EncryptFrame([]byte("hello"), []byte("aad"))
	require.NoError(t, err)

	plain, err := s.DecryptFrame(sealed, []byte("aad"))
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), plain)
}

func TestSessionRejectsOperationsWhenNotActive(t *testing.T) {
	s := New("s", "p")
	_, err := s.EncryptFrame([]byte("x"), nil)
	require.ErrorIs(t, err, ErrNotActive)
}

func TestSessionRejectsOperationsWhenClosed(t *testing.T) {
	s := newActiveSession(t)
	require.NoError(t, s.Close())
	_, err := s.EncryptFrame([]byte("x"), nil)
	require.ErrorIs(t, err, ErrSessionClosed)
}

func TestSessionSequenceMonotonic(t *testing.T) {
	s := New("s", "p")
	require.Equal(t, uint64(0), s.NextSequence())
	require.Equal(t, uint64(1), s.NextSequence())
	require.Equal(t, uint64(2), s.NextSequence())
}

func TestSessionReplayWindowRejectsDuplicateFrame(t *testing.T) {
	s := newActiveSession(t)
	s.EnableReplayWindow(16)

	sealed, err := s.EncryptFrame([]byte("hello"), []byte("aad"))
	require.NoError(t, err)

	_, err = s.DecryptFrameWithSequence(sealed, []byte("aad"), 0)
	require.NoError(t, err)

	_, err = s.DecryptFrameWithSequence(sealed, []byte("aad"), 0)
	require.Error(t, err)
}

func TestNegotiateCapabilitiesIntersection(t *testing.T) {
	a := Capabilities{SecurityModes: []wire.SecurityMode{wire.SecurityHmac, wire.SecurityAead}, Compression: true}
	b := Capabilities{SecurityModes: []wire.SecurityMode{wire.SecurityAead, wire.SecurityNone}, Compression: false}

	n := Negotiate(a, b)
	require.Equal(t, []wire.SecurityMode{wire.SecurityAead}, n.SecurityModes)
	require.False(t, n.Compression)
}
