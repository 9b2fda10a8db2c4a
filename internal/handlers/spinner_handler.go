package handlers

import (
	"net/http"

	"github.com/Shehriyar31/pp-Live/internal/middleware"
	"github.com/Shehriyar31/pp-Live/internal/services"
)

type SpinnerHandler struct {
	service *services.SpinnerService
}

func NewSpinnerHandler(service *services.SpinnerService) *SpinnerHandler {
	return &SpinnerHandler{service: service}
}

// Status reports whether the account may spin and when the gate reopens.
func (h *SpinnerHandler) Status(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	status, err := h.service.Status(principal.UserID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"status":  status,
	})
}

// Spin draws one prize for the account.
func (h *SpinnerHandler) Spin(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	result, err := h.service.Spin(principal.UserID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"result":  result,
	})
}
