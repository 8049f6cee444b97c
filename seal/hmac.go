package seal

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"time"

	"github.com/sage-x-project/m2m/internal/metrics"
)

const algHMAC = "hmac-sha256"

// MinHMACKeyLen is the floor below which an HMAC key is rejected,
// spec.md §4.5.
const MinHMACKeyLen = 16

// TagSize is the HMAC-SHA256 output size.
const TagSize = sha256.Size

// ErrHMACKeyShort is returned when a key shorter than MinHMACKeyLen is
// supplied.
var ErrHMACKeyShort = errors.New("seal: hmac key must be at least 16 bytes")

// ErrHMACVerify is returned by Verify on a tag mismatch.
var ErrHMACVerify = errors.New("seal: hmac verification failed")

// HMAC computes and verifies SecurityHmac trailers: a SHA-256 HMAC over
// the fixed header, routing header, payload length, CRC-32, and
// plaintext payload (spec.md §4.5, §8.3's OpenQuestion resolution).
type HMAC struct {
	key []byte
}

// NewHMAC constructs an HMAC signer/verifier from key.
func NewHMAC(key []byte) (*HMAC, error) {
	if len(key) < MinHMACKeyLen {
		return nil, ErrHMACKeyShort
	}
	cp := make([]byte, len(key))
	copy(cp, key)
	return &HMAC{key: cp}, nil
}

// Sign computes the tag over message (the concatenation of every field
// the trailer covers).
func (h *HMAC) Sign(message []byte) []byte {
	start := time.Now()
	mac := hmac.New(sha256.New, h.key)
	mac.Write(message)
	tag := mac.Sum(nil)
	metrics.CryptoOperations.WithLabelValues("seal", algHMAC).Inc()
	metrics.CryptoOperationDuration.WithLabelValues("seal", algHMAC).Observe(time.Since(start).Seconds())
	return tag
}

// Verify checks tag against message in constant time.
func (h *HMAC) Verify(message, tag []byte) error {
	start := time.Now()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("open", algHMAC).Observe(time.Since(start).Seconds())
	}()
	expected := h.Sign(message)
	if !hmac.Equal(expected, tag) {
		metrics.CryptoErrors.WithLabelValues("open").Inc()
		return ErrHMACVerify
	}
	metrics.CryptoOperations.WithLabelValues("open", algHMAC).Inc()
	return nil
}
