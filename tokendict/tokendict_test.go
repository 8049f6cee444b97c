package tokendict

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// wordCounter is a deterministic stand-in for a real BPE tokenizer: it
// counts one token per sentinel byte and per JSON punctuation byte
// (`"{}[]:,`), plus one per run of other bytes, cheaply modeling
// "sentinels cost one token, substrings they replace cost more".
type wordCounter struct{}

func (wordCounter) TokensOf(s string, _ Encoding) int {
	count := 0
	inWord := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 || strings.IndexByte(`"{}[]:,`, c) >= 0 {
			count++
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

func TestNewDictionaryRejectsSentinelCollision(t *testing.T) {
	_, err := NewDictionary([]Entry{
		{Original: "a", Sentinel: 0x01, DeltaCl100: 1, DeltaO200: 1},
		{Original: "b", Sentinel: 0x01, DeltaCl100: 1, DeltaO200: 1},
	})
	require.ErrorIs(t, err, ErrSentinelCollision)
}

func TestNewDictionaryRejectsEmptyOriginal(t *testing.T) {
	_, err := NewDictionary([]Entry{{Original: "", Sentinel: 0x01}})
	require.ErrorIs(t, err, ErrEmptyOriginal)
}

func TestNewCalibratedDictionaryDropsNonPositiveDelta(t *testing.T) {
	d, err := NewCalibratedDictionary([]Entry{
		{Original: "good", Sentinel: 0x01, DeltaCl100: 1, DeltaO200: 1},
		{Original: "bad", Sentinel: 0x02, DeltaCl100: 0, DeltaO200: -1},
	}, Cl100kBase)
	require.NoError(t, err)
	require.Len(t, d.entries, 1)
	require.Equal(t, "good", d.entries[0].Original)
}

func TestDefaultDictionaryExcludesTopP(t *testing.T) {
	d, err := DefaultDictionary(Cl100kBase)
	require.NoError(t, err)
	for _, e := range d.entries {
		require.NotEqual(t, `"top_p"`, e.Original)
	}
}

func TestCompressDecompressRoundtrip(t *testing.T) {
	d, err := DefaultDictionary(Cl100kBase)
	require.NoError(t, err)

	payload := `{"model":"gpt-4o","messages":[` +
		strings.Repeat(`{"role":"user","content":"hello there, this is a fairly long message to pad things out"},`, 5) +
		`{"role":"assistant","content":"ok"}]}`

	compressed, used := d.Compress(payload, Cl100kBase, wordCounter{})
	require.True(t, used)
	require.NotEqual(t, payload, compressed)

	decompressed, err := d.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, payload, decompressed)
}

func TestCompressBelowThresholdIsNoOp(t *testing.T) {
	d, err := DefaultDictionary(Cl100kBase)
	require.NoError(t, err)

	payload := `{"role":"user","content":"hi"}`
	require.Less(t, len(payload), CompressThreshold)

	out, used := d.Compress(payload, Cl100kBase, wordCounter{})
	require.False(t, used)
	require.Equal(t, payload, out)
}

func TestCompressDeclinesWhenNotSmaller(t *testing.T) {
	d, err := NewDictionary([]Entry{
		{Original: "x", Sentinel: 0x01, DeltaCl100: 1, DeltaO200: 1},
	})
	require.NoError(t, err)

	payload := strings.Repeat("y", CompressThreshold+10)
	out, used := d.Compress(payload, Cl100kBase, wordCounter{})
	require.False(t, used)
	require.Equal(t, payload, out)
}

func TestDecompressRejectsBadVersionTag(t *testing.T) {
	d, err := DefaultDictionary(Cl100kBase)
	require.NoError(t, err)

	_, err = d.Decompress(string([]byte{0x99, 'a', 'b'}))
	require.ErrorIs(t, err, ErrBadVersion)

	_, err = d.Decompress("")
	require.ErrorIs(t, err, ErrBadVersion)
}

func TestLongestMatchPrefersStructuralPattern(t *testing.T) {
	d, err := DefaultDictionary(Cl100kBase)
	require.NoError(t, err)

	in := `{"role":"user","content":"hi"}`
	out := d.substitute(in, Cl100kBase)
	// The structural pattern sentinel (0x1B) should appear, and the
	// plain "role"/"content" key sentinels should not have fired
	// separately for the part the pattern already consumed.
	require.Contains(t, out, string([]byte{0x1B}))
}
