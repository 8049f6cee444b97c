package keys

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"

	"github.com/cloudflare/circl/hpke"
)

// hpkeSuite is the RFC 9180 Base-mode ciphersuite used for the
// HPKE-backed KeyExchange alternative: X25519 KEM, HKDF-SHA256, and
// ChaCha20-Poly1305 (matching the frame codec's own AEAD, spec.md §4.5).
var hpkeSuite = hpke.NewSuite(hpke.KEM_X25519_HKDF_SHA256, hpke.KDF_HKDF_SHA256, hpke.AEAD_ChaCha20Poly1305)

// HPKESender is the encapsulating side of an HPKE-backed key exchange.
// Unlike KeyExchange's symmetric ephemeral DH, HPKE's sender and
// receiver roles are asymmetric: the sender needs only the receiver's
// static public key to produce an encapsulated key and an exporter
// secret, with no round trip required before the first message.
type HPKESender struct {
	enc            []byte
	exporterSecret *KeyMaterial
}

// NewHPKESender runs HPKE Setup against the receiver's X25519 public
// key. info binds the exchange to an application context (e.g. the
// org/agent pair); exportCtx and exportLen parameterize the exporter
// call that produces the session key.
func NewHPKESender(receiverPub *ecdh.PublicKey, info, exportCtx []byte, exportLen int) (*HPKESender, error) {
	if receiverPub.Curve() != ecdh.X25519() {
		return nil, fmt.Errorf("keys: hpke sender requires an X25519 public key")
	}
	kem := hpke.KEM_X25519_HKDF_SHA256.Scheme()
	rp, err := kem.UnmarshalBinaryPublicKey(receiverPub.Bytes())
	if err != nil {
		return nil, fmt.Errorf("keys: hpke unmarshal receiver public key: %w", err)
	}
	sender, err := hpkeSuite.NewSender(rp, info)
	if err != nil {
		return nil, fmt.Errorf("keys: hpke new sender: %w", err)
	}
	enc, sealer, err := sender.Setup(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keys: hpke sender setup: %w", err)
	}
	secret := sealer.Export(exportCtx, uint(exportLen))
	km, err := New(padTo32(secret))
	if err != nil {
		return nil, err
	}
	return &HPKESender{enc: enc, exporterSecret: km}, nil
}

// Encapsulated returns the KEM encapsulated key to send to the
// receiver alongside (or in place of) a routing-header extension.
func (s *HPKESender) Encapsulated() []byte {
	return s.enc
}

// ExporterSecret returns the derived session KeyMaterial.
func (s *HPKESender) ExporterSecret() *KeyMaterial {
	return s.exporterSecret
}

// HPKEOpen is the decapsulating side: given the receiver's static
// private key and the sender's encapsulated key, it reproduces the same
// exporter secret. info, exportCtx, and exportLen must match the
// sender's values exactly.
func HPKEOpen(receiverPriv *ecdh.PrivateKey, enc, info, exportCtx []byte, exportLen int) (*KeyMaterial, error) {
	if receiverPriv.PublicKey().Curve() != ecdh.X25519() {
		return nil, fmt.Errorf("keys: hpke receiver requires an X25519 private key")
	}
	kem := hpke.KEM_X25519_HKDF_SHA256.Scheme()
	skR, err := kem.UnmarshalBinaryPrivateKey(receiverPriv.Bytes())
	if err != nil {
		return nil, fmt.Errorf("keys: hpke unmarshal receiver private key: %w", err)
	}
	receiver, err := hpkeSuite.NewReceiver(skR, info)
	if err != nil {
		return nil, fmt.Errorf("keys: hpke new receiver: %w", err)
	}
	opener, err := receiver.Setup(enc)
	if err != nil {
		return nil, fmt.Errorf("keys: hpke receiver setup: %w", err)
	}
	secret := opener.Export(exportCtx, uint(exportLen))
	return New(padTo32(secret))
}

// padTo32 widens an exporter secret shorter than MinKeyLen by
// HKDF-expanding it once more, so it always satisfies KeyMaterial's
// 32-byte floor regardless of the caller's requested exportLen.
func padTo32(secret []byte) []byte {
	if len(secret) >= MinKeyLen {
		return secret
	}
	km, err := DeriveWithSalt(secret, nil, []byte("m2m/v1/hpke-pad"), MinKeyLen)
	if err != nil {
		// DeriveWithSalt only fails if the HKDF reader itself errors,
		// which golang.org/x/crypto/hkdf never does for in-range
		// lengths; keep the original bytes as a last resort rather
		// than panicking in a library function.
		return secret
	}
	return km.Bytes()
}
