package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// DROPVAULT_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set DROPVAULT_SECRET_KEY")

// CredentialStore defines the driven port for the per-client upload token.
// Each slot holds exactly one value with no schema or expiry. Adapters may
// encrypt at rest; this interface operates on plaintext values.
type CredentialStore interface {
	// Get returns the stored value for slot, or ("", nil) when nothing is stored.
	Get(ctx context.Context, slot string) (string, error)

	// Set stores value for slot, replacing any previous value. The value is
	// stored verbatim, including the empty string.
	Set(ctx context.Context, slot, value string) error
}
