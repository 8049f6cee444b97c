package session

import (
	"errors"
	"fmt"

	"github.com/sage-x-project/m2m/keys"
	"github.com/sage-x-project/m2m/seal"
)

// ErrCounterNonceSourceInProduction is returned when a counter-based
// nonce source is used outside tests, spec.md §3's SecurityContext
// invariant: "forbidden in production because counters reset on
// restart".
var ErrCounterNonceSourceInProduction = errors.New("session: counter nonce source is forbidden outside tests")

// NonceSource issues nonces guaranteed unique under one key.
type NonceSource interface {
	NextNonce() ([]byte, error)
}

// poolNonceSource adapts a NoncePool to NonceSource, the production
// default: system CSPRNG output, birthday bound ~2^48 messages/key.
type poolNonceSource struct {
	pool *NoncePool
}

func (s poolNonceSource) NextNonce() ([]byte, error) {
	return s.pool.Next()
}

// CounterNonceSource is a deterministic, test-only nonce source.
// NewAEADSecurityContextWithSource refuses it unless its
// allowTestSource argument is true, because a monotonic counter resets to zero
// on process restart and would silently reuse nonces in production.
type CounterNonceSource struct {
	next uint64
}

func (s *CounterNonceSource) NextNonce() ([]byte, error) {
	n := make([]byte, NonceSize)
	v := s.next
	s.next++
	for i := 0; i < 8 && i < NonceSize; i++ {
		n[NonceSize-1-i] = byte(v >> (8 * i))
	}
	return n, nil
}

// SecurityContext binds a KeyMaterial to a nonce-generation discipline
// and produces the AEAD/HMAC trailers for one peer relationship,
// spec.md §3.
type SecurityContext struct {
	key         *keys.KeyMaterial
	aead        *seal.AEAD
	hmac        *seal.HMAC
	nonceSource NonceSource
	mode        securityMode
}

type securityMode int

const (
	modeAEAD securityMode = iota
	modeHMAC
)

// NewAEADSecurityContext builds a SecurityContext for AEAD sealing
// backed by the production NoncePool-based nonce source.
func NewAEADSecurityContext(key *keys.KeyMaterial, pool *NoncePool) (*SecurityContext, error) {
	a, err := seal.NewAEAD(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("session: constructing aead context: %w", err)
	}
	return &SecurityContext{key: key, aead: a, nonceSource: poolNonceSource{pool: pool}, mode: modeAEAD}, nil
}

// NewAEADSecurityContextWithSource builds an AEAD SecurityContext with
// an explicit NonceSource. Passing a *CounterNonceSource is rejected
// unless allowTestSource is true.
func NewAEADSecurityContextWithSource(key *keys.KeyMaterial, src NonceSource, allowTestSource bool) (*SecurityContext, error) {
	if _, isCounter := src.(*CounterNonceSource); isCounter && !allowTestSource {
		return nil, ErrCounterNonceSourceInProduction
	}
	a, err := seal.NewAEAD(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("session: constructing aead context: %w", err)
	}
	return &SecurityContext{key: key, aead: a, nonceSource: src, mode: modeAEAD}, nil
}

// NewHMACSecurityContext builds a SecurityContext for HMAC signing.
// HMAC trailers carry no nonce, so no NonceSource is required.
func NewHMACSecurityContext(key *keys.KeyMaterial) (*SecurityContext, error) {
	h, err := seal.NewHMAC(key.Bytes())
	if err != nil {
		return nil, fmt.Errorf("session: constructing hmac context: %w", err)
	}
	return &SecurityContext{key: key, hmac: h, mode: modeHMAC}, nil
}

// Seal encrypts or signs plaintext, binding aad (the frame's fixed
// header || routing header) to the trailer.
func (c *SecurityContext) Seal(plaintext, aad []byte) ([]byte, error) {
	switch c.mode {
	case modeAEAD:
		nonce, err := c.nonceSource.NextNonce()
		if err != nil {
			return nil, fmt.Errorf("session: drawing nonce: %w", err)
		}
		return c.aead.SealWithNonce(nonce, plaintext, aad)
	case modeHMAC:
		tag := c.hmac.Sign(append(append([]byte{}, aad...), plaintext...))
		return append(append([]byte{}, plaintext...), tag...), nil
	default:
		return nil, fmt.Errorf("session: unknown security context mode")
	}
}

// Open verifies and decrypts/unsigns data produced by Seal.
func (c *SecurityContext) Open(data, aad []byte) ([]byte, error) {
	switch c.mode {
	case modeAEAD:
		return c.aead.Open(data, aad)
	case modeHMAC:
		if len(data) < seal.TagSize {
			return nil, seal.ErrHMACVerify
		}
		body := data[:len(data)-seal.TagSize]
		tag := data[len(data)-seal.TagSize:]
		if err := c.hmac.Verify(append(append([]byte{}, aad...), body...), tag); err != nil {
			return nil, err
		}
		return body, nil
	default:
		return nil, fmt.Errorf("session: unknown security context mode")
	}
}

// Close releases the underlying key material.
func (c *SecurityContext) Close() error {
	return c.key.Close()
}
