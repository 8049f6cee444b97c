// Package seal implements the M2M v1 payload trailer formats: the
// SecurityNone no-op, the SecurityHmac integrity trailer, and the
// SecurityAead confidentiality-plus-integrity trailer.
package seal

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/sage-x-project/m2m/internal/metrics"
)

const algAEAD = "chacha20poly1305"

// MinAEADKeyLen is ChaCha20-Poly1305's fixed key size.
const MinAEADKeyLen = chacha20poly1305.KeySize

// NonceSize is ChaCha20-Poly1305's fixed 96-bit nonce size.
const NonceSize = chacha20poly1305.NonceSize

// ErrAEADKeyShort is returned by NewAEAD when the key is not exactly
// MinAEADKeyLen bytes long.
var ErrAEADKeyShort = errors.New("seal: aead key must be exactly 32 bytes")

// ErrAEADOpen is returned when authenticated decryption fails. It never
// distinguishes a bad key from a tampered ciphertext; doing so would
// hand an attacker an oracle.
var ErrAEADOpen = errors.New("seal: aead open failed")

// AEAD wraps a ChaCha20-Poly1305 cipher bound to a single key, spec.md
// §4.5's SecurityAead mode.
type AEAD struct {
	aead interface {
		Seal(dst, nonce, plaintext, additionalData []byte) []byte
		Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	}
}

// NewAEAD constructs an AEAD from a 32-byte key.
func NewAEAD(key []byte) (*AEAD, error) {
	if len(key) != MinAEADKeyLen {
		return nil, ErrAEADKeyShort
	}
	a, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, fmt.Errorf("seal: constructing chacha20poly1305: %w", err)
	}
	return &AEAD{aead: a}, nil
}

// Seal encrypts plaintext, authenticating it together with aad (the
// frame's fixed header and routing header, spec.md §4.10). It generates
// a fresh random nonce and returns nonce || ciphertext || tag.
func (a *AEAD) Seal(plaintext, aad []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("seal", algAEAD).Observe(time.Since(start).Seconds())
	}()

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		metrics.CryptoErrors.WithLabelValues("seal").Inc()
		return nil, fmt.Errorf("seal: generating nonce: %w", err)
	}
	sealed := a.aead.Seal(nil, nonce, plaintext, aad)
	out := make([]byte, len(nonce)+len(sealed))
	copy(out, nonce)
	copy(out[len(nonce):], sealed)
	metrics.CryptoOperations.WithLabelValues("seal", algAEAD).Inc()
	return out, nil
}

// SealWithNonce is Seal with an explicit nonce, for callers (e.g. the
// session layer) that manage their own nonce discipline instead of
// using fresh randomness per call. The caller must never reuse a nonce
// under the same key.
func (a *AEAD) SealWithNonce(nonce, plaintext, aad []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("seal: nonce must be %d bytes, got %d", NonceSize, len(nonce))
	}
	sealed := a.aead.Seal(nil, nonce, plaintext, aad)
	out := make([]byte, len(nonce)+len(sealed))
	copy(out, nonce)
	copy(out[len(nonce):], sealed)
	return out, nil
}

// Open decrypts and verifies data produced by Seal or SealWithNonce,
// given the same aad used to seal it.
func (a *AEAD) Open(data, aad []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("open", algAEAD).Observe(time.Since(start).Seconds())
	}()

	if len(data) < NonceSize {
		metrics.CryptoErrors.WithLabelValues("open").Inc()
		return nil, ErrAEADOpen
	}
	nonce := data[:NonceSize]
	ciphertext := data[NonceSize:]
	plaintext, err := a.aead.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		metrics.CryptoErrors.WithLabelValues("open").Inc()
		return nil, ErrAEADOpen
	}
	metrics.CryptoOperations.WithLabelValues("open", algAEAD).Inc()
	return plaintext, nil
}
