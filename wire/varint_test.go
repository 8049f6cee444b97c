package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarintRoundtrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 129, 16384, 1 << 32, 1<<64 - 1}
	for _, v := range values {
		encoded := WriteVarint(v)
		got, n, err := ReadVarint(encoded)
		require.NoError(t, err)
		require.Equal(t, len(encoded), n)
		require.Equal(t, v, got)
	}
}

func TestVarintTruncated(t *testing.T) {
	encoded := WriteVarint(1 << 40)
	_, _, err := ReadVarint(encoded[:len(encoded)-1])
	require.ErrorIs(t, err, ErrTruncated)
}

func TestVarintOverflow(t *testing.T) {
	buf := make([]byte, 11)
	for i := range buf {
		buf[i] = 0x80
	}
	buf = append(buf, 0x01)
	_, _, err := ReadVarint(buf)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestAppendVarintAccumulates(t *testing.T) {
	buf := []byte{0xff}
	buf = AppendVarint(buf, 300)
	require.Equal(t, byte(0xff), buf[0])
	v, n, err := ReadVarint(buf[1:])
	require.NoError(t, err)
	require.Equal(t, uint64(300), v)
	require.Equal(t, 2, n)
}
