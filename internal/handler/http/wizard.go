package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
	"github.com/mind-links/contractor-backend-go/internal/handler/http/response"
)

type WizardHandler interface {
	Open(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Advance(w http.ResponseWriter, r *http.Request)
	Retreat(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	Close(w http.ResponseWriter, r *http.Request)
}

type wizardHandlerImpl struct {
	wizardService wizard.WizardService
}

func NewWizardHandler(wizardService wizard.WizardService) WizardHandler {
	return &wizardHandlerImpl{
		wizardService: wizardService,
	}
}

// Open implements WizardHandler.
func (h *wizardHandlerImpl) Open(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizardService.Open(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Wizard opened", view)
}

// Get implements WizardHandler.
func (h *wizardHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	view, err := h.wizardService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, view)
}

// Update implements WizardHandler.
func (h *wizardHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var patch wizard.Patch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	view, err := h.wizardService.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, view)
}

// Advance implements WizardHandler. A blocked step is reported in the body,
// not as an error status.
func (h *wizardHandlerImpl) Advance(w http.ResponseWriter, r *http.Request) {
	result, err := h.wizardService.Advance(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !result.Advanced {
		response.SuccessWithMessage(w, "Please fix the highlighted fields", result)
		return
	}

	response.Success(w, result)
}

// Retreat implements WizardHandler.
func (h *wizardHandlerImpl) Retreat(w http.ResponseWriter, r *http.Request) {
	result, err := h.wizardService.Retreat(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Complete implements WizardHandler.
func (h *wizardHandlerImpl) Complete(w http.ResponseWriter, r *http.Request) {
	result, err := h.wizardService.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Contractor invitation created", result)
}

// Close implements WizardHandler.
func (h *wizardHandlerImpl) Close(w http.ResponseWriter, r *http.Request) {
	if err := h.wizardService.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Wizard closed", nil)
}
