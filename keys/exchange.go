package keys

import (
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
)

// ExchangeState tracks a KeyExchange's lifecycle, spec.md §3: Fresh
// (keypair generated, no peer yet) -> Complete (after SetPeerPublic).
type ExchangeState int

const (
	ExchangeFresh ExchangeState = iota
	ExchangeComplete
)

// ErrExchangeNotComplete is returned by DeriveSessionKey when called in
// the Fresh state — a failed precondition, not an exception, per
// spec.md §4.6.
var ErrExchangeNotComplete = errors.New("keys: key exchange has no peer public key yet")

// ErrLowOrderPoint is returned when the computed X25519 shared secret
// is the all-zero identity point, which would happen only for a
// maliciously crafted peer public key.
var ErrLowOrderPoint = errors.New("keys: x25519 shared secret is a low-order point")

// KeyExchange performs ephemeral X25519 Diffie-Hellman and derives a
// session key from the raw DH output via HKDF-SHA256, spec.md §4.6.
type KeyExchange struct {
	priv   *ecdh.PrivateKey
	pub    *ecdh.PublicKey
	peer   *ecdh.PublicKey
	shared []byte
	state  ExchangeState
}

// NewKeyExchange generates a fresh ephemeral X25519 key pair.
func NewKeyExchange() (*KeyExchange, error) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("keys: generating x25519 keypair: %w", err)
	}
	return &KeyExchange{
		priv:  priv,
		pub:   priv.PublicKey(),
		state: ExchangeFresh,
	}, nil
}

// NewStaticKeyExchange builds a KeyExchange whose key pair is derived
// from an agent's long-term Ed25519 identity key rather than a fresh
// ephemeral one, binding the DH to that identity for cross-org
// handshakes where the peer must prove it holds the signing key it
// claims, not just some X25519 scalar.
func NewStaticKeyExchange(identity ed25519.PrivateKey) (*KeyExchange, error) {
	priv, err := StaticKeyFromEd25519(identity)
	if err != nil {
		return nil, fmt.Errorf("keys: deriving static x25519 key: %w", err)
	}
	return &KeyExchange{
		priv:  priv,
		pub:   priv.PublicKey(),
		state: ExchangeFresh,
	}, nil
}

// PublicKey returns this side's 32-byte X25519 public key, to be sent
// to the peer.
func (kx *KeyExchange) PublicKey() []byte {
	return kx.pub.Bytes()
}

// State reports whether the exchange has a peer public key yet.
func (kx *KeyExchange) State() ExchangeState {
	return kx.state
}

// IsComplete reports State() == ExchangeComplete.
func (kx *KeyExchange) IsComplete() bool {
	return kx.state == ExchangeComplete
}

// SetPeerPublic records the peer's public key and computes the raw DH
// shared secret, transitioning Fresh -> Complete. It is safe to call
// more than once (e.g. to recover from a transport retry); each call
// recomputes the shared secret from the supplied bytes.
func (kx *KeyExchange) SetPeerPublic(peerPub []byte) error {
	pub, err := ecdh.X25519().NewPublicKey(peerPub)
	if err != nil {
		return fmt.Errorf("keys: invalid peer public key: %w", err)
	}
	raw, err := kx.priv.ECDH(pub)
	if err != nil {
		return fmt.Errorf("keys: x25519 ecdh: %w", err)
	}
	var zero [32]byte
	if subtle.ConstantTimeCompare(raw, zero[:]) == 1 {
		return ErrLowOrderPoint
	}
	kx.peer = pub
	kx.shared = raw
	kx.state = ExchangeComplete
	return nil
}

// DeriveSessionKey runs HKDF-SHA256(ikm=shared secret, salt=nil,
// info=label) over the raw DH output. By the symmetry of X25519,
// dh(our_sk, peer_pk) == dh(peer_sk, our_pk), so both sides derive
// bit-identical output for the same label (spec.md §8.5).
func (kx *KeyExchange) DeriveSessionKey(label []byte) (*KeyMaterial, error) {
	if kx.state != ExchangeComplete {
		return nil, ErrExchangeNotComplete
	}
	return DeriveWithSalt(kx.shared, nil, label, MinKeyLen)
}

// DH computes raw X25519 Diffie-Hellman between two raw key pairs,
// exposed for tests that want to assert the symmetry property directly
// without going through the full KeyExchange state machine.
func DH(priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error) {
	raw, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("keys: x25519 ecdh: %w", err)
	}
	return raw, nil
}
