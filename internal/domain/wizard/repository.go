package wizard

import (
	"context"
	"time"
)

// Session is one open wizard owned by a user.
type Session struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	CompanyID string    `json:"company_id"`
	Snapshot  Snapshot  `json:"snapshot"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired checks if the session has outlived its TTL
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// SessionRepository stores wizard sessions
type SessionRepository interface {
	// Save creates or replaces a session
	Save(ctx context.Context, session Session) error

	// Get returns a session by ID; expired sessions are reported as ErrSessionNotFound
	Get(ctx context.Context, id string) (Session, error)

	// Delete removes a session; deleting a missing session is not an error
	Delete(ctx context.Context, id string) error

	// DeleteExpired removes sessions that expired before now and returns how many were removed
	DeleteExpired(ctx context.Context, now time.Time) (int, error)

	// CountActive returns how many sessions are still live at now
	CountActive(ctx context.Context, now time.Time) (int, error)
}
