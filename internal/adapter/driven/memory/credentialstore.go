// Package memory provides process-local implementations of driven ports.
package memory

import (
	"context"
	"sync"

	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

var _ driven.CredentialStore = (*CredentialStore)(nil)

// CredentialStore keeps one credential per slot in memory. Values are lost on
// restart; it backs the service when no encryption key is configured.
type CredentialStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewCredentialStore returns an empty CredentialStore.
func NewCredentialStore() *CredentialStore {
	return &CredentialStore{values: make(map[string]string)}
}

// Get returns the stored value for slot, or "" when none is stored.
func (s *CredentialStore) Get(_ context.Context, slot string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[slot], nil
}

// Set stores value for slot. An empty value drops the slot.
func (s *CredentialStore) Set(_ context.Context, slot, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if value == "" {
		delete(s.values, slot)
		return nil
	}
	s.values[slot] = value
	return nil
}
