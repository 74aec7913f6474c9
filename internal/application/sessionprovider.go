package application

import (
	"sync"
	"time"

	"github.com/ericfisherdev/dropvault/internal/domain/model"
)

// Session is the initialized page state for one client slot. It is built once
// from the stored credential and replaced wholesale on re-initialization.
type Session struct {
	Slot     string
	Token    model.TokenState
	Uploader model.UploaderConfig
	BuiltAt  time.Time
}

// SessionProvider enables runtime replacement of per-slot sessions. Readers
// always see either the previous or the new session, never a partial one.
type SessionProvider struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionProvider creates an empty provider.
func NewSessionProvider() *SessionProvider {
	return &SessionProvider{sessions: make(map[string]*Session)}
}

// Get returns the current session for slot, or nil if none has been built.
func (p *SessionProvider) Get(slot string) *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sessions[slot]
}

// Replace installs s as the current session for its slot.
func (p *SessionProvider) Replace(s *Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sessions[s.Slot] = s
}

// Prune drops sessions built before cutoff and returns how many were removed.
// Pruned slots are rebuilt from storage on next use.
func (p *SessionProvider) Prune(cutoff time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	removed := 0
	for slot, s := range p.sessions {
		if s.BuiltAt.Before(cutoff) {
			delete(p.sessions, slot)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached sessions.
func (p *SessionProvider) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.sessions)
}
