package wizard

import (
	"context"
	"time"
)

// WizardService runs wizard sessions for the authenticated user
type WizardService interface {
	// Open starts a new wizard session owned by the caller
	Open(ctx context.Context) (View, error)

	// Get returns the current view of a session
	Get(ctx context.Context, id string) (View, error)

	// Update merges a partial update into the session's data
	Update(ctx context.Context, id string, patch Patch) (View, error)

	// Advance validates the current step and moves forward when it passes
	Advance(ctx context.Context, id string) (AdvanceResponse, error)

	// Retreat moves one step back
	Retreat(ctx context.Context, id string) (RetreatResponse, error)

	// Complete persists the final data as a contractor invitation and ends the session
	Complete(ctx context.Context, id string) (CompleteResponse, error)

	// Close abandons the session
	Close(ctx context.Context, id string) error

	// SweepExpired deletes sessions past their TTL (scheduler job)
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}
