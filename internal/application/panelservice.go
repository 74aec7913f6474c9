package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// PanelService initializes the upload page for a client slot: it reads the
// credential once and builds the widget configuration from it.
type PanelService struct {
	tokens   *TokenService
	uploader *UploaderService
	sessions *SessionProvider
	now      func() time.Time
	logger   *slog.Logger
}

// NewPanelService creates a PanelService with all required dependencies.
func NewPanelService(
	tokens *TokenService,
	uploader *UploaderService,
	sessions *SessionProvider,
	logger *slog.Logger,
) *PanelService {
	return &PanelService{
		tokens:   tokens,
		uploader: uploader,
		sessions: sessions,
		now:      time.Now,
		logger:   logger,
	}
}

// Init returns the slot's current session, building it on first use.
func (p *PanelService) Init(ctx context.Context, slot string) (*Session, error) {
	if s := p.sessions.Get(slot); s != nil {
		return s, nil
	}
	return p.rebuild(ctx, slot)
}

// Reinitialize rebuilds the slot's session from storage and replaces the
// current one. It satisfies Reinitializer.
func (p *PanelService) Reinitialize(ctx context.Context, slot string) error {
	_, err := p.rebuild(ctx, slot)
	return err
}

func (p *PanelService) rebuild(ctx context.Context, slot string) (*Session, error) {
	token, err := p.tokens.Load(ctx, slot)
	if err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}

	s := &Session{
		Slot:     slot,
		Token:    token,
		Uploader: p.uploader.Build(token.Credential),
		BuiltAt:  p.now(),
	}
	p.sessions.Replace(s)

	p.logger.Debug("session initialized", "slot", slot, "has_credential", token.HasCredential())
	return s, nil
}

// StartPruner drops sessions older than maxAge every interval until ctx is
// cancelled.
func (p *PanelService) StartPruner(ctx context.Context, interval, maxAge time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("session pruner stopped")
			return
		case <-ticker.C:
			if n := p.sessions.Prune(p.now().Add(-maxAge)); n > 0 {
				p.logger.Debug("pruned idle sessions", "count", n)
			}
		}
	}
}
