package response

import (
	"errors"
	"net/http"

	"github.com/mind-links/contractor-backend-go/internal/domain/invitation"
	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
	"github.com/mind-links/contractor-backend-go/internal/pkg/jwt"
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Token errors
	case errors.Is(err, jwt.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, jwt.ErrCompanyRequired):
		Forbidden(w, "A company is required for this action")

	// Wizard domain errors
	case errors.Is(err, wizard.ErrSessionNotFound):
		NotFound(w, "Wizard session not found")
	case errors.Is(err, wizard.ErrInvalidSessionID):
		BadRequest(w, "Invalid wizard session id", nil)
	case errors.Is(err, wizard.ErrContractTypeLocked):
		Conflict(w, "Contract type can only be changed on the contract type step")
	case errors.Is(err, wizard.ErrNotOnReviewStep):
		Conflict(w, "Wizard can only be completed from the review step")
	case errors.Is(err, wizard.ErrWizardClosed):
		Conflict(w, "Wizard is not open")

	// Invitation domain errors
	case errors.Is(err, invitation.ErrInvitationNotFound):
		NotFound(w, "Invitation not found")
	case errors.Is(err, invitation.ErrInvalidInvitationID):
		BadRequest(w, "Invalid invitation id", nil)
	case errors.Is(err, invitation.ErrInvitationAlreadyRevoked):
		Conflict(w, "Invitation already revoked")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
