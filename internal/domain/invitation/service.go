package invitation

import "context"

// InvitationService defines the interface for contractor invitation business logic
type InvitationService interface {
	// CreateFromWizard converts completed wizard data into a pending invitation
	CreateFromWizard(ctx context.Context, req CreateRequest) (Invitation, error)

	// GetByID returns one invitation of the caller's company
	GetByID(ctx context.Context, id string) (InvitationResponse, error)

	// List returns the caller's company invitations with pagination
	List(ctx context.Context, req ListRequest) (ListResponse, error)

	// Revoke revokes a pending invitation
	Revoke(ctx context.Context, id string) (InvitationResponse, error)
}
