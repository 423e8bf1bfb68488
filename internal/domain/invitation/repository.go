package invitation

import (
	"context"
)

// ListFilter narrows a company's invitation list
type ListFilter struct {
	CompanyID string
	Status    Status // empty means any
	Offset    int
	Limit     int
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create stores a new invitation and returns it with generated fields set
	Create(ctx context.Context, inv Invitation) (Invitation, error)

	// GetByID retrieves an invitation scoped to a company
	GetByID(ctx context.Context, id, companyID string) (Invitation, error)

	// List returns one page of invitations, newest first, and the total count
	List(ctx context.Context, filter ListFilter) ([]Invitation, int64, error)

	// MarkRevoked marks a pending invitation as revoked.
	// Returns ErrInvitationAlreadyRevoked when it is not pending.
	MarkRevoked(ctx context.Context, id, companyID string) (Invitation, error)
}
