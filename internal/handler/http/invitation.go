package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/mind-links/contractor-backend-go/internal/domain/invitation"
	"github.com/mind-links/contractor-backend-go/internal/handler/http/response"
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
)

type InvitationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Revoke(w http.ResponseWriter, r *http.Request)
}

type invitationHandlerImpl struct {
	invitationService invitation.InvitationService
}

func NewInvitationHandler(invitationService invitation.InvitationService) InvitationHandler {
	return &invitationHandlerImpl{
		invitationService: invitationService,
	}
}

// List implements InvitationHandler.
func (h *invitationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := invitation.ListRequest{Status: query.Get("status")}

	var errs validator.ValidationErrors
	for _, param := range []struct {
		key  string
		dest *int
	}{
		{"page", &req.Page},
		{"limit", &req.Limit},
	} {
		raw := query.Get(param.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs = append(errs, validator.ValidationError{
				Field:   param.key,
				Message: param.key + " must be a number",
			})
			continue
		}
		*param.dest = n
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	result, err := h.invitationService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Invitations, &response.Meta{
		Page:       result.Page,
		Limit:      result.Limit,
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
	})
}

// GetByID implements InvitationHandler.
func (h *invitationHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	result, err := h.invitationService.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Revoke implements InvitationHandler.
func (h *invitationHandlerImpl) Revoke(w http.ResponseWriter, r *http.Request) {
	result, err := h.invitationService.Revoke(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Invitation revoked", result)
}
