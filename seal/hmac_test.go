package seal

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHMACSignVerifyRoundtrip(t *testing.T) {
	h, err := NewHMAC([]byte("0123456789abcdef"))
	require.NoError(t, err)

	msg := []byte("fixed-header || routing-header || len || crc || payload")
	tag := h.Sign(msg)
	require.Len(t, tag, TagSize)
	require.NoError(t, h.Verify(msg, tag))
}

func TestHMACVerifyRejectsTamperedMessage(t *testing.T) {
	h, err := NewHMAC([]byte("0123456789abcdef"))
	require.NoError(t, err)

	tag := h.Sign([]byte("message one"))
	err = h.Verify([]byte("message two"), tag)
	require.ErrorIs(t, err, ErrHMACVerify)
}

func TestHMACVerifyRejectsTamperedTag(t *testing.T) {
	h, err := NewHMAC([]byte("0123456789abcdef"))
	require.NoError(t, err)

	msg := []byte("message")
	tag := h.Sign(msg)
	tag[0] ^= 0xFF
	require.ErrorIs(t, h.Verify(msg, tag), ErrHMACVerify)
}

func TestHMACRejectsShortKey(t *testing.T) {
	_, err := NewHMAC([]byte("short"))
	require.ErrorIs(t, err, ErrHMACKeyShort)
}

func TestHMACDifferentKeysProduceDifferentTags(t *testing.T) {
	h1, err := NewHMAC([]byte("0123456789abcdef"))
	require.NoError(t, err)
	h2, err := NewHMAC([]byte("fedcba9876543210"))
	require.NoError(t, err)

	msg := []byte("same message")
	require.NotEqual(t, h1.Sign(msg), h2.Sign(msg))
}
