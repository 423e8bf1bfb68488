package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
)

type sessionRepositoryImpl struct {
	mu       sync.RWMutex
	sessions map[string]wizard.Session
	now      func() time.Time
}

// NewSessionRepository creates an in-memory wizard session store
func NewSessionRepository() wizard.SessionRepository {
	return newSessionRepository(time.Now)
}

// NewSessionRepositoryWithClock is NewSessionRepository with an injected clock
func NewSessionRepositoryWithClock(now func() time.Time) wizard.SessionRepository {
	return newSessionRepository(now)
}

func newSessionRepository(now func() time.Time) *sessionRepositoryImpl {
	return &sessionRepositoryImpl{
		sessions: make(map[string]wizard.Session),
		now:      now,
	}
}

// Save implements wizard.SessionRepository.
func (r *sessionRepositoryImpl) Save(ctx context.Context, session wizard.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session.Snapshot = session.Snapshot.Clone()
	r.sessions[session.ID] = session
	return nil
}

// Get implements wizard.SessionRepository.
func (r *sessionRepositoryImpl) Get(ctx context.Context, id string) (wizard.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[id]
	if !ok || session.IsExpired(r.now()) {
		return wizard.Session{}, wizard.ErrSessionNotFound
	}
	session.Snapshot = session.Snapshot.Clone()
	return session, nil
}

// Delete implements wizard.SessionRepository.
func (r *sessionRepositoryImpl) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, id)
	return nil
}

// DeleteExpired implements wizard.SessionRepository.
func (r *sessionRepositoryImpl) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, session := range r.sessions {
		if session.IsExpired(now) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// CountActive implements wizard.SessionRepository.
func (r *sessionRepositoryImpl) CountActive(ctx context.Context, now time.Time) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := 0
	for _, session := range r.sessions {
		if !session.IsExpired(now) {
			active++
		}
	}
	return active, nil
}
