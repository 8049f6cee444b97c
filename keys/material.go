// Package keys implements the M2M v1 key-management core: KeyMaterial
// ownership and zeroization, the Keyring lookup table, X25519 key
// exchange, and the org/agent key hierarchy. The HKDF and AEAD
// primitives follow the same golang.org/x/crypto usage the teacher
// project's core/session package establishes.
package keys

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/crypto/hkdf"

	"github.com/sage-x-project/m2m/internal/metrics"
)

const algHKDF = "hkdf-sha256"

// MinKeyLen is the minimum acceptable length for KeyMaterial bytes,
// spec.md §4.2.
const MinKeyLen = 32

// ErrTooShort is returned when constructing KeyMaterial from fewer than
// MinKeyLen bytes.
var ErrTooShort = errors.New("keys: key material shorter than 32 bytes")

// KeyMaterial owns a secret byte sequence. It is safe to duplicate
// (Clone), but every holder must call Close when done; Close overwrites
// the buffer with zeros so a dropped key pair can't be recovered from a
// lingering heap allocation.
type KeyMaterial struct {
	b []byte
}

// New constructs KeyMaterial from explicit bytes. The bytes are copied;
// the caller retains ownership of (and responsibility for zeroing) its
// own copy.
func New(b []byte) (*KeyMaterial, error) {
	if len(b) < MinKeyLen {
		return nil, ErrTooShort
	}
	owned := make([]byte, len(b))
	copy(owned, b)
	return &KeyMaterial{b: owned}, nil
}

// Bytes returns the underlying secret. Callers must not retain the
// returned slice past the KeyMaterial's lifetime.
func (k *KeyMaterial) Bytes() []byte {
	return k.b
}

// Len reports the key length in bytes.
func (k *KeyMaterial) Len() int {
	return len(k.b)
}

// Equal performs a constant-time comparison against another KeyMaterial.
func (k *KeyMaterial) Equal(other *KeyMaterial) bool {
	if other == nil || len(k.b) != len(other.b) {
		return false
	}
	return subtle.ConstantTimeCompare(k.b, other.b) == 1
}

// Clone returns an independent copy of the key material. The clone must
// be Closed independently of the original.
func (k *KeyMaterial) Clone() *KeyMaterial {
	owned := make([]byte, len(k.b))
	copy(owned, k.b)
	return &KeyMaterial{b: owned}
}

// Close zeroizes the underlying buffer. It is safe to call multiple
// times and on a nil receiver.
func (k *KeyMaterial) Close() error {
	if k == nil {
		return nil
	}
	zero(k.b)
	return nil
}

// zero overwrites b with zeros. Declared as its own function (rather
// than inlined) so it cannot be optimized away by a compiler that would
// otherwise prove the subsequent writes are dead — the call boundary
// plus the loop's visible side effect keep it honest under the current
// Go compiler; volatile-write guarantees aren't part of the language,
// so this is a best-effort contract, not a proof.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Derive implements RFC 5869 HKDF-SHA256 with salt = 32 zero bytes and
// info = context, per spec.md §4.2. Test vectors from RFC 5869 §A.1-A.3
// must reproduce bit-exact (see material_test.go).
func (k *KeyMaterial) Derive(context []byte, outLen int) (*KeyMaterial, error) {
	return DeriveWithSalt(k.b, nil, context, outLen)
}

// DeriveWithSalt runs HKDF-SHA256(ikm, salt, info=context, len=outLen).
// A nil salt is treated as RFC 5869's zero-filled salt of the hash's
// output length. Exposed at package level so callers deriving from raw
// ECDH output (rather than an existing KeyMaterial) can reuse the same
// HKDF plumbing.
func DeriveWithSalt(ikm, salt, context []byte, outLen int) (*KeyMaterial, error) {
	start := time.Now()
	defer func() {
		metrics.CryptoOperationDuration.WithLabelValues("derive", algHKDF).Observe(time.Since(start).Seconds())
	}()

	if salt == nil {
		salt = make([]byte, sha256.Size)
	}
	r := hkdf.New(sha256.New, ikm, salt, context)
	out := make([]byte, outLen)
	if _, err := io.ReadFull(r, out); err != nil {
		metrics.CryptoErrors.WithLabelValues("derive").Inc()
		return nil, fmt.Errorf("keys: hkdf expand: %w", err)
	}
	metrics.CryptoOperations.WithLabelValues("derive", algHKDF).Inc()
	return &KeyMaterial{b: out}, nil
}

// Extract runs the RFC 5869 HKDF-Extract step directly, returning the
// pseudorandom key HMAC-SHA256(salt, ikm); a nil salt is treated as 32
// zero bytes. It takes raw input keying material (such as DH output),
// not a KeyMaterial. No code in this module calls it.
func Extract(salt, ikm []byte) []byte {
	if salt == nil {
		salt = make([]byte, sha256.Size)
	}
	mac := hmac.New(sha256.New, salt)
	mac.Write(ikm)
	return mac.Sum(nil)
}
