// Package postgres implements keyring.Store on top of a Postgres
// table, for deployments that need key material to survive process
// restarts and to be shared across instances.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sage-x-project/m2m/keyring"
	"github.com/sage-x-project/m2m/keys"
)

// Config holds the connection settings for the keyring table's
// database.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// Store implements keyring.Store backed by a pgxpool connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and verifies the connection with a
// ping before returning.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	connString := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("keyring/postgres: creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("keyring/postgres: pinging database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Put inserts rec, wrapped in a transaction so a concurrent duplicate
// insert is detected atomically rather than racing two plain INSERTs.
func (s *Store) Put(ctx context.Context, rec keyring.Record) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("keyring/postgres: begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	err = tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM m2m_keyring WHERE key_id = $1)`, rec.ID[:]).Scan(&exists)
	if err != nil {
		return fmt.Errorf("keyring/postgres: checking existing key: %w", err)
	}
	if exists {
		return keyring.ErrDuplicate
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO m2m_keyring (key_id, key_bytes, created_at) VALUES ($1, $2, $3)`,
		rec.ID[:], rec.Bytes, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("keyring/postgres: inserting key: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("keyring/postgres: commit transaction: %w", err)
	}
	return nil
}

// Get retrieves a record by id.
func (s *Store) Get(ctx context.Context, id keys.KeyId) (keyring.Record, error) {
	var rec keyring.Record
	var idBytes []byte
	row := s.pool.QueryRow(ctx,
		`SELECT key_id, key_bytes, created_at FROM m2m_keyring WHERE key_id = $1`, id[:])
	if err := row.Scan(&idBytes, &rec.Bytes, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return keyring.Record{}, keyring.ErrNotFound
		}
		return keyring.Record{}, fmt.Errorf("keyring/postgres: querying key: %w", err)
	}
	copy(rec.ID[:], idBytes)
	return rec, nil
}

// Delete removes a record by id.
func (s *Store) Delete(ctx context.Context, id keys.KeyId) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM m2m_keyring WHERE key_id = $1`, id[:])
	if err != nil {
		return fmt.Errorf("keyring/postgres: deleting key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return keyring.ErrNotFound
	}
	return nil
}

// List returns every stored KeyId.
func (s *Store) List(ctx context.Context) ([]keys.KeyId, error) {
	rows, err := s.pool.Query(ctx, `SELECT key_id FROM m2m_keyring`)
	if err != nil {
		return nil, fmt.Errorf("keyring/postgres: listing keys: %w", err)
	}
	defer rows.Close()

	var out []keys.KeyId
	for rows.Next() {
		var idBytes []byte
		if err := rows.Scan(&idBytes); err != nil {
			return nil, fmt.Errorf("keyring/postgres: scanning key id: %w", err)
		}
		var id keys.KeyId
		copy(id[:], idBytes)
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("keyring/postgres: iterating keys: %w", err)
	}
	return out, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
