package keys

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/sha512"
	"fmt"

	"filippo.io/edwards25519"
)

// StaticKeyFromEd25519 converts an agent's long-term Ed25519 identity
// key pair into the X25519 key pair used to bind a KeyExchange to that
// identity. This lets a cross-org handshake prove "the peer at the
// other end of this DH holds the agent's signing key" without running
// a second key exchange over a second key pair.
func StaticKeyFromEd25519(priv ed25519.PrivateKey) (*ecdh.PrivateKey, error) {
	xPriv, err := ed25519PrivToX25519Scalar(priv)
	if err != nil {
		return nil, err
	}
	return ecdh.X25519().NewPrivateKey(xPriv)
}

// StaticPublicFromEd25519 converts an agent's Ed25519 public identity
// key into the X25519 public key a peer uses as the static half of a
// statically-bound KeyExchange.
func StaticPublicFromEd25519(pub ed25519.PublicKey) (*ecdh.PublicKey, error) {
	if l := len(pub); l != ed25519.PublicKeySize {
		return nil, fmt.Errorf("keys: bad ed25519 public key length: %d", l)
	}
	P, err := new(edwards25519.Point).SetBytes(pub)
	if err != nil {
		return nil, fmt.Errorf("keys: invalid ed25519 public key: %w", err)
	}
	return ecdh.X25519().NewPublicKey(P.BytesMontgomery())
}

// ed25519PrivToX25519Scalar derives the X25519 scalar RFC 8032 §5.1.5
// defines for birational Ed25519/X25519 conversion: the low 32 bytes
// of SHA-512(seed), clamped.
func ed25519PrivToX25519Scalar(priv ed25519.PrivateKey) ([]byte, error) {
	if l := len(priv); l != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("keys: bad ed25519 private key length: %d", l)
	}
	seed := priv.Seed()
	h := sha512.Sum512(seed)
	h[0] &= 248
	h[31] &= 127
	h[31] |= 64

	scalar := make([]byte, 32)
	copy(scalar, h[:32])
	return scalar, nil
}
