package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedHeaderRoundtrip(t *testing.T) {
	h := FixedHeader{
		HeaderLen: 42,
		Schema:    SchemaResponse,
		Security:  SecurityAead,
		Flags:     Flags(0).WithResponseFlag(FlagHasUsage).WithCommonFlag(FlagCompressed),
	}
	buf := h.Marshal()
	require.Len(t, buf, FixedHeaderSize)
	for _, b := range buf[8:20] {
		require.Zero(t, b)
	}

	got, err := ParseFixedHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
	require.True(t, got.Flags.HasResponseFlag(FlagHasUsage))
	require.True(t, got.Flags.HasCommonFlag(FlagCompressed))
	require.False(t, got.Flags.HasCommonFlag(FlagHasExtensions))
}

func TestFixedHeaderShort(t *testing.T) {
	_, err := ParseFixedHeader(make([]byte, FixedHeaderSize-1))
	require.ErrorIs(t, err, ErrHeaderShort)
}

func TestFixedHeaderUnknownSchema(t *testing.T) {
	buf := FixedHeader{Schema: SchemaError}.Marshal()
	buf[2] = 99
	_, err := ParseFixedHeader(buf)
	require.ErrorIs(t, err, ErrUnknownSchema)
}

func TestFixedHeaderUnknownSecurity(t *testing.T) {
	buf := FixedHeader{}.Marshal()
	buf[3] = 7
	_, err := ParseFixedHeader(buf)
	require.ErrorIs(t, err, ErrUnknownSecurityMode)
}

func TestFixedHeaderPreservesUnknownFlagBits(t *testing.T) {
	// Bit 15 of the request-flags space is reserved today; a frame
	// encoded with it set must still decode cleanly (spec.md §8.8).
	h := FixedHeader{Flags: Flags(1 << 15)}
	buf := h.Marshal()
	got, err := ParseFixedHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h.Flags, got.Flags)
}
