package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo stores one encrypted upload token per client slot, under
// model.CredentialKey.
type CredentialRepo struct {
	db     *DB
	sealer *sealer
	err    error // set when no usable key was given; returned by every call
}

// NewCredentialRepo creates a CredentialRepo. key must be 32 bytes for
// AES-256-GCM. With a nil key every operation returns
// driven.ErrEncryptionKeyNotSet.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	r := &CredentialRepo{db: db}
	if key == nil {
		r.err = driven.ErrEncryptionKeyNotSet
		return r
	}
	r.sealer, r.err = newSealer(key)
	return r
}

// Set stores value for slot, replacing any previous value. An empty value
// removes the slot's row.
func (r *CredentialRepo) Set(ctx context.Context, slot, value string) error {
	if r.err != nil {
		return r.err
	}
	if value == "" {
		return r.remove(ctx, slot)
	}

	sealed, err := r.sealer.seal(slot, value)
	if err != nil {
		return fmt.Errorf("encrypt credential for slot %q: %w", slot, err)
	}

	const query = `INSERT INTO credentials (slot, key, value, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (slot, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.Writer.ExecContext(ctx, query, slot, model.CredentialKey, sealed); err != nil {
		return fmt.Errorf("set credential for slot %q: %w", slot, err)
	}
	return nil
}

// Get returns the stored value for slot, or "" when none is stored.
func (r *CredentialRepo) Get(ctx context.Context, slot string) (string, error) {
	if r.err != nil {
		return "", r.err
	}

	const query = `SELECT value FROM credentials WHERE slot = ? AND key = ?`
	var sealed string
	err := r.db.Reader.QueryRowContext(ctx, query, slot, model.CredentialKey).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential for slot %q: %w", slot, err)
	}

	value, err := r.sealer.open(slot, sealed)
	if err != nil {
		return "", fmt.Errorf("decrypt credential for slot %q: %w", slot, err)
	}
	return value, nil
}

// remove deletes the credential for slot. A missing slot is not an error.
func (r *CredentialRepo) remove(ctx context.Context, slot string) error {
	const query = `DELETE FROM credentials WHERE slot = ? AND key = ?`
	if _, err := r.db.Writer.ExecContext(ctx, query, slot, model.CredentialKey); err != nil {
		return fmt.Errorf("delete credential for slot %q: %w", slot, err)
	}
	return nil
}
