package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jerseyhub/gallery-system/internal/core/domain"
)

const defaultDeferredTTL = 15 * time.Minute

// SessionManager tracks deferred commands captured for anonymous browsing
// sessions. A guest who attempts a protected action has that action stored
// under their guest session id; after the session resolves to an identity
// the command is replayed exactly once.
type SessionManager struct {
	mu       sync.Mutex
	deferred map[string]deferredEntry
	ttl      time.Duration
	log      zerolog.Logger
}

type deferredEntry struct {
	cmd     domain.DeferredCommand
	expires time.Time
}

func NewSessionManager(ttl time.Duration, log zerolog.Logger) *SessionManager {
	if ttl <= 0 {
		ttl = defaultDeferredTTL
	}
	return &SessionManager{
		deferred: make(map[string]deferredEntry),
		ttl:      ttl,
		log:      log,
	}
}

// Capture stores the command for the guest session. At most one command is
// kept per session; a newer capture replaces the old one.
func (m *SessionManager) Capture(guestSession string, cmd domain.DeferredCommand) {
	if guestSession == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deferred[guestSession] = deferredEntry{cmd: cmd, expires: time.Now().Add(m.ttl)}
	m.log.Debug().Str("guest_session", guestSession).Str("kind", string(cmd.Kind)).Msg("deferred command captured")
}

// TakeReplay pops the command captured for the guest session, if any.
// The command is removed before it is returned, so replay happens at most
// once even under concurrent logins for the same session.
func (m *SessionManager) TakeReplay(guestSession string) (domain.DeferredCommand, bool) {
	if guestSession == "" {
		return domain.DeferredCommand{}, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.deferred[guestSession]
	if !ok {
		return domain.DeferredCommand{}, false
	}
	delete(m.deferred, guestSession)
	if time.Now().After(entry.expires) {
		return domain.DeferredCommand{}, false
	}
	return entry.cmd, true
}

// Clear discards any command captured for the guest session. Idempotent.
func (m *SessionManager) Clear(guestSession string) {
	if guestSession == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.deferred, guestSession)
}

// Run sweeps expired entries until ctx is cancelled.
func (m *SessionManager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.ttl)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *SessionManager) sweep() {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, entry := range m.deferred {
		if now.After(entry.expires) {
			delete(m.deferred, id)
		}
	}
}
