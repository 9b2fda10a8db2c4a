package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shehriyar31/pp-Live/internal/middleware"
	"github.com/Shehriyar31/pp-Live/internal/services"
)

type PasswordResetHandler struct {
	service *services.PasswordResetService
}

func NewPasswordResetHandler(service *services.PasswordResetService) *PasswordResetHandler {
	return &PasswordResetHandler{service: service}
}

// Create files a reset request for the caller's account.
func (h *PasswordResetHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	request, err := h.service.Create(principal.UserID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"request": request,
	})
}

// List returns all reset requests for admin review.
func (h *PasswordResetHandler) List(w http.ResponseWriter, r *http.Request) {
	requests, err := h.service.List()
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"requests": requests,
	})
}

// Approve marks a pending reset request approved.
func (h *PasswordResetHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// Reject marks a pending reset request rejected.
func (h *PasswordResetHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

func (h *PasswordResetHandler) resolve(w http.ResponseWriter, r *http.Request, approve bool) {
	if err := h.service.Resolve(chi.URLParam(r, "requestId"), approve); err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
