// Package tokendict implements the reversible substitution compressor
// described in spec.md §4.9: chosen sub-strings of chat-completion JSON
// are replaced with single-byte sentinels chosen so the result
// tokenizes to strictly fewer BPE tokens, not merely fewer bytes.
package tokendict

import (
	"errors"
	"fmt"
	"sort"
)

// Encoding names a target BPE tokenizer. The dictionary carries a
// token_delta per entry per encoding because the same substitution can
// help under one tokenizer and hurt under another.
type Encoding int

const (
	Cl100kBase Encoding = iota
	O200kBase
)

// TableVersion is prepended as a one-byte tag to every compressed
// payload so a decoder can pick the matching dictionary generation.
// It is included in token counting (spec.md §4.9 step 3).
const TableVersion byte = 0x01

// CompressThreshold is the minimum input length, in bytes, below which
// the frame codec does not attempt compression at all (spec.md §4.10
// step 1).
const CompressThreshold = 100

// TokenCounter is the injected `tokens_of` oracle: the core never
// implements a tokenizer itself, spec.md §6's consumer contract.
type TokenCounter interface {
	TokensOf(s string, enc Encoding) int
}

// Entry is one dictionary substitution: a literal original string
// mapped to a single sentinel byte, with the per-encoding token
// savings that justify using it.
type Entry struct {
	Original   string
	Sentinel   byte
	DeltaCl100 int
	DeltaO200  int
}

func (e Entry) delta(enc Encoding) int {
	if enc == O200kBase {
		return e.DeltaO200
	}
	return e.DeltaCl100
}

// ErrSentinelCollision is returned by NewDictionary when two entries
// share a sentinel byte, breaking the bijection the decompressor
// depends on.
var ErrSentinelCollision = errors.New("tokendict: sentinel byte used by more than one entry")

// ErrEmptyOriginal is returned for a zero-length Original string.
var ErrEmptyOriginal = errors.New("tokendict: entry has empty original string")

// Dictionary is a self-checked, read-only table of substitutions,
// process-wide global state per spec.md §9 ("Global state").
type Dictionary struct {
	// entries sorted longest-original-first, for greedy longest-match.
	entries []Entry
	bySentinel map[byte]Entry
}

// NewDictionary validates entries — each Original non-empty, each
// Sentinel byte used by at most one entry — and returns a Dictionary
// ready for Compress/Decompress. It does not filter by token_delta;
// callers that want the "positive delta only" policy use
// NewCalibratedDictionary.
func NewDictionary(entries []Entry) (*Dictionary, error) {
	bySentinel := make(map[byte]Entry, len(entries))
	for _, e := range entries {
		if len(e.Original) == 0 {
			return nil, ErrEmptyOriginal
		}
		if _, ok := bySentinel[e.Sentinel]; ok {
			return nil, fmt.Errorf("%w: 0x%02x", ErrSentinelCollision, e.Sentinel)
		}
		bySentinel[e.Sentinel] = e
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		return len(sorted[i].Original) > len(sorted[j].Original)
	})
	return &Dictionary{entries: sorted, bySentinel: bySentinel}, nil
}

// NewCalibratedDictionary builds a Dictionary after dropping every
// entry whose token_delta is non-positive under enc, resolving Open
// Question (a): an implementer must regenerate or filter the table per
// target encoding rather than ship one that can make output worse.
func NewCalibratedDictionary(entries []Entry, enc Encoding) (*Dictionary, error) {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.delta(enc) > 0 {
			kept = append(kept, e)
		}
	}
	return NewDictionary(kept)
}

// Compress runs the longest-match substitution pass and the
// token-count gate of spec.md §4.9. It returns the substituted payload
// (with the version tag prepended) and true if compression helped, or
// the original payload and false if it did not or if the payload
// already contains one of the dictionary's sentinel bytes.
func (d *Dictionary) Compress(payload string, enc Encoding, counter TokenCounter) (string, bool) {
	if len(payload) < CompressThreshold {
		return payload, false
	}
	// A sentinel byte already in the payload would be expanded by
	// Decompress, so such a payload is sent uncompressed.
	for i := 0; i < len(payload); i++ {
		if _, ok := d.bySentinel[payload[i]]; ok {
			return payload, false
		}
	}
	t0 := counter.TokensOf(payload, enc)

	substituted := d.substitute(payload, enc)
	tagged := string(TableVersion) + substituted

	t1 := counter.TokensOf(tagged, enc)
	if t1 < t0 {
		return tagged, true
	}
	return payload, false
}

// substitute performs a single left-to-right greedy longest-match
// scan, only ever applying entries whose delta is positive for enc.
func (d *Dictionary) substitute(payload string, enc Encoding) string {
	out := make([]byte, 0, len(payload))
	i := 0
	for i < len(payload) {
		matched := false
		for _, e := range d.entries {
			if e.delta(enc) <= 0 {
				continue
			}
			n := len(e.Original)
			if n <= len(payload)-i && payload[i:i+n] == e.Original {
				out = append(out, e.Sentinel)
				i += n
				matched = true
				break
			}
		}
		if !matched {
			out = append(out, payload[i])
			i++
		}
	}
	return string(out)
}

// ErrBadVersion is returned by Decompress when the leading version tag
// does not match this Dictionary's generation.
var ErrBadVersion = errors.New("tokendict: unknown dictionary version tag")

// Decompress inverts Compress: it strips the version tag and replaces
// each sentinel byte with its original string. Correctness depends on
// the sentinel<->original mapping being a bijection, which
// NewDictionary enforces at construction, and on the original payload
// holding no sentinel byte, which Compress checks — no token counting is
// involved on this path (spec.md §4.9's inverse note).
func (d *Dictionary) Decompress(compressed string) (string, error) {
	if len(compressed) == 0 {
		return "", ErrBadVersion
	}
	if compressed[0] != TableVersion {
		return "", ErrBadVersion
	}
	body := compressed[1:]
	out := make([]byte, 0, len(body)*2)
	for i := 0; i < len(body); i++ {
		c := body[i]
		if e, ok := d.bySentinel[c]; ok {
			out = append(out, e.Original...)
			continue
		}
		out = append(out, c)
	}
	return string(out), nil
}
