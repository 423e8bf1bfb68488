package invitation

import "errors"

var (
	ErrInvitationNotFound       = errors.New("invitation not found")
	ErrInvitationAlreadyRevoked = errors.New("invitation has already been revoked")
	ErrInvalidInvitationID      = errors.New("invalid invitation id")
)
