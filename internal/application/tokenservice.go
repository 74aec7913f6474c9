package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
	"github.com/ericfisherdev/dropvault/internal/domain/port/driven"
)

// Reinitializer rebuilds whatever state was derived from a slot's credential.
type Reinitializer func(ctx context.Context, slot string) error

// TokenService reads and writes the per-client upload credential.
type TokenService struct {
	store  driven.CredentialStore
	reinit Reinitializer
	logger *slog.Logger
}

// NewTokenService creates a TokenService over the given credential store.
func NewTokenService(store driven.CredentialStore, logger *slog.Logger) *TokenService {
	return &TokenService{
		store:  store,
		logger: logger,
	}
}

// OnSave registers the function Save invokes after a credential is written.
// The composition root wires this to PanelService.Reinitialize.
func (s *TokenService) OnSave(fn Reinitializer) {
	s.reinit = fn
}

// Load reads the credential for slot once and derives the auth-entry state.
func (s *TokenService) Load(ctx context.Context, slot string) (model.TokenState, error) {
	credential, err := s.store.Get(ctx, slot)
	if err != nil {
		return model.TokenState{}, fmt.Errorf("load credential: %w", err)
	}
	return model.NewTokenState(credential), nil
}

// Save stores value verbatim for slot and then re-initializes the slot so the
// new credential takes effect. The value is not validated; "" clears it.
func (s *TokenService) Save(ctx context.Context, slot, value string) error {
	if err := s.store.Set(ctx, slot, value); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	s.logger.Info("credential saved", "slot", slot, "empty", value == "")

	if s.reinit == nil {
		return nil
	}
	if err := s.reinit(ctx, slot); err != nil {
		return fmt.Errorf("reinitialize after credential save: %w", err)
	}
	return nil
}
