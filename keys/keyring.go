package keys

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// KeyIdSize is the length in bytes of a KeyId, spec.md §3: 16-byte
// opaque identifier, not derived from key bytes.
const KeyIdSize = 16

// KeyId is an opaque keyring lookup handle. It carries no relationship
// to the key material it names — an attacker who observes a KeyId on
// the wire learns nothing about the key's bytes.
type KeyId [KeyIdSize]byte

// String renders the KeyId as lowercase hex.
func (id KeyId) String() string {
	return hex.EncodeToString(id[:])
}

// NewKeyId generates a random KeyId backed by google/uuid's CSPRNG
// source (UUIDv4), truncated to the 16 raw bytes a UUID already is.
func NewKeyId() KeyId {
	return KeyId(uuid.New())
}

// ParseKeyId decodes a hex-encoded KeyId.
func ParseKeyId(s string) (KeyId, error) {
	var id KeyId
	b, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("keys: invalid key id: %w", err)
	}
	if len(b) != KeyIdSize {
		return id, fmt.Errorf("keys: key id must be %d bytes, got %d", KeyIdSize, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// ErrNotFound is returned by Get/Remove for a KeyId the Keyring doesn't
// hold.
var ErrNotFound = errors.New("keys: key id not found")

// ErrDuplicate is returned by Insert when the KeyId already exists.
var ErrDuplicate = errors.New("keys: key id already present")

// ErrInvalidKey wraps a rejected KeyMaterial (e.g. too short).
var ErrInvalidKey = errors.New("keys: invalid key material")

// Keyring maps KeyId to KeyMaterial. Mutations (Insert/Remove/Rotate)
// are serialized by an internal mutex and are observable as atomic:
// Rotate either replaces the mapping entirely or leaves it untouched.
type Keyring struct {
	mu   sync.RWMutex
	keys map[KeyId]*KeyMaterial
}

// NewKeyring returns an empty Keyring.
func NewKeyring() *Keyring {
	return &Keyring{keys: make(map[KeyId]*KeyMaterial)}
}

// Insert adds km under id. Returns ErrDuplicate if id is already
// present.
func (kr *Keyring) Insert(id KeyId, km *KeyMaterial) error {
	if km == nil || km.Len() < MinKeyLen {
		return ErrInvalidKey
	}
	kr.mu.Lock()
	defer kr.mu.Unlock()
	if _, exists := kr.keys[id]; exists {
		return ErrDuplicate
	}
	kr.keys[id] = km
	return nil
}

// Get returns the KeyMaterial for id.
func (kr *Keyring) Get(id KeyId) (*KeyMaterial, error) {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	km, ok := kr.keys[id]
	if !ok {
		return nil, ErrNotFound
	}
	return km, nil
}

// Remove deletes id from the keyring, zeroizing its KeyMaterial.
func (kr *Keyring) Remove(id KeyId) error {
	kr.mu.Lock()
	defer kr.mu.Unlock()
	km, ok := kr.keys[id]
	if !ok {
		return ErrNotFound
	}
	delete(kr.keys, id)
	return km.Close()
}

// Rotate atomically replaces the KeyMaterial under old with new,
// inserting new under a fresh id if old isn't already present. Either
// both the removal of old and the insertion of new are observable, or
// neither is — no reader ever sees a keyring with old present but new
// absent, or vice versa, mid-call.
func (kr *Keyring) Rotate(old KeyId, newID KeyId, newKey *KeyMaterial) error {
	if newKey == nil || newKey.Len() < MinKeyLen {
		return ErrInvalidKey
	}
	kr.mu.Lock()
	defer kr.mu.Unlock()

	oldKM, hadOld := kr.keys[old]
	if _, exists := kr.keys[newID]; exists && newID != old {
		return ErrDuplicate
	}
	kr.keys[newID] = newKey
	if hadOld && old != newID {
		delete(kr.keys, old)
		return oldKM.Close()
	}
	return nil
}

// List returns a snapshot of the KeyIds currently held.
func (kr *Keyring) List() []KeyId {
	kr.mu.RLock()
	defer kr.mu.RUnlock()
	ids := make([]KeyId, 0, len(kr.keys))
	for id := range kr.keys {
		ids = append(ids, id)
	}
	return ids
}
