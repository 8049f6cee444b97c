package session

import (
	"github.com/sage-x-project/m2m/tokendict"
	"github.com/sage-x-project/m2m/wire"
)

// Capabilities lists the features one peer advertises:
// security modes, encodings, and compression support, spec.md §4.12.
type Capabilities struct {
	SecurityModes []wire.SecurityMode
	Encodings     []tokendict.Encoding
	Compression   bool
}

// Negotiate computes the set both peers actually support: the
// intersection of each peer's advertised SecurityModes and Encodings,
// and compression only if both sides support it. The spec's prose
// calls this negotiated set "the union of feature flags both peers
// support", but the only sense in which that is safe to use on the
// wire is the mutually-supported subset, so intersection is what is
// computed here.
func Negotiate(a, b Capabilities) Capabilities {
	return Capabilities{
		SecurityModes: intersectSecurity(a.SecurityModes, b.SecurityModes),
		Encodings:     intersectEncoding(a.Encodings, b.Encodings),
		Compression:   a.Compression && b.Compression,
	}
}

func intersectSecurity(a, b []wire.SecurityMode) []wire.SecurityMode {
	inB := make(map[wire.SecurityMode]bool, len(b))
	for _, m := range b {
		inB[m] = true
	}
	var out []wire.SecurityMode
	for _, m := range a {
		if inB[m] {
			out = append(out, m)
		}
	}
	return out
}

func intersectEncoding(a, b []tokendict.Encoding) []tokendict.Encoding {
	inB := make(map[tokendict.Encoding]bool, len(b))
	for _, e := range b {
		inB[e] = true
	}
	var out []tokendict.Encoding
	for _, e := range a {
		if inB[e] {
			out = append(out, e)
		}
	}
	return out
}

// SupportsSecurity reports whether mode is in c.SecurityModes.
func (c Capabilities) SupportsSecurity(mode wire.SecurityMode) bool {
	for _, m := range c.SecurityModes {
		if m == mode {
			return true
		}
	}
	return false
}
