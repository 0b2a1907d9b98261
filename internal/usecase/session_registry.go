package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/preciosya/backend/internal/domain"
)

// SessionRegistry keeps shopping sessions keyed by a random UUID and
// expires sessions that have been idle longer than the TTL.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*ShoppingSession
	cart     SessionCart
	ttl      time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionRegistry creates an empty registry
func NewSessionRegistry(cart SessionCart, ttl time.Duration, logger *slog.Logger) *SessionRegistry {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionRegistry{
		sessions: make(map[string]*ShoppingSession),
		cart:     cart,
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new session with retailers enabled
func (r *SessionRegistry) Create(retailers []domain.RetailerID) *ShoppingSession {
	session := NewShoppingSession(uuid.NewString(), r.cart, retailers)
	session.touch(r.now())

	r.mu.Lock()
	r.sessions[session.ID()] = session
	r.mu.Unlock()

	r.logger.Debug("session created", slog.String("session_id", session.ID()))
	return session
}

// Get returns the session for id and marks it as used
func (r *SessionRegistry) Get(id string) (*ShoppingSession, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrSessionNotFound
	}

	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	session.touch(r.now())
	return session, nil
}

// Delete resets and forgets the session for id
func (r *SessionRegistry) Delete(id string) bool {
	r.mu.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		session.Reset()
	}
	return ok
}

// Len returns the number of live sessions
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes sessions idle for longer than the TTL and returns how many
func (r *SessionRegistry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*ShoppingSession
	for id, session := range r.sessions {
		if session.idleSince().Before(cutoff) {
			expired = append(expired, session)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.Reset()
	}
	if len(expired) > 0 {
		r.logger.Info("expired idle sessions", slog.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps expired sessions periodically until ctx is done
func (r *SessionRegistry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
