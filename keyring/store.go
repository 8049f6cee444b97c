// Package keyring defines the durable persistence contract for key
// material, distinct from keys.Keyring's in-process lookup cache: a
// Store is where a KeyId's bytes live across restarts. keys.Keyring
// is the concurrency-safe in-process view and does not read from or
// write to a Store.
package keyring

import (
	"context"
	"errors"
	"time"

	"github.com/sage-x-project/m2m/keys"
)

// ErrNotFound is returned by Get/Delete for an unknown KeyId.
var ErrNotFound = errors.New("keyring: key not found in store")

// ErrDuplicate is returned by Put when id is already present.
var ErrDuplicate = errors.New("keyring: key already exists in store")

// Record is one persisted key: its raw bytes and bookkeeping metadata.
// Bytes are stored exactly as KeyMaterial.Bytes() returns them; a Store
// implementation is responsible for protecting them at rest (e.g. a
// column-level encryption policy on the Postgres backend, or disk
// encryption for the memory backend's host).
type Record struct {
	ID        keys.KeyId
	Bytes     []byte
	CreatedAt time.Time
}

// Store is the durable persistence contract a keyring backend
// implements.
type Store interface {
	Put(ctx context.Context, rec Record) error
	Get(ctx context.Context, id keys.KeyId) (Record, error)
	Delete(ctx context.Context, id keys.KeyId) error
	List(ctx context.Context) ([]keys.KeyId, error)
	Close() error
}
