package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shehriyar31/pp-Live/internal/middleware"
	"github.com/Shehriyar31/pp-Live/internal/services"
)

type RequestHandler struct {
	service   *services.RequestService
	validator *services.ValidationHelper
}

func NewRequestHandler(service *services.RequestService) *RequestHandler {
	return &RequestHandler{
		service:   service,
		validator: services.NewValidationHelper(),
	}
}

// CreateDeposit files an activation-fee deposit with proof of payment.
func (h *RequestHandler) CreateDeposit(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Amount         int64  `json:"amount" validate:"required,gt=0"`
		PaymentMethod  string `json:"paymentMethod" validate:"required"`
		TransactionRef string `json:"transactionId"`
		Screenshot     string `json:"screenshot"`
		Description    string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	request, err := h.service.CreateDepositRequest(services.DepositRequestInput{
		AccountID:      principal.UserID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
		TransactionRef: req.TransactionRef,
		Screenshot:     req.Screenshot,
		Description:    req.Description,
	})
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"request": request,
	})
}

// CreateWithdrawal files a withdrawal; amount plus the 1% fee is escrowed
// out of the balance immediately.
func (h *RequestHandler) CreateWithdrawal(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	var req struct {
		Amount        int64  `json:"amount" validate:"required,gt=0"`
		AccountNumber string `json:"accountNumber" validate:"required"`
		AccountName   string `json:"accountName" validate:"required"`
		BankName      string `json:"bankName" validate:"required"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	request, err := h.service.CreateWithdrawalRequest(services.WithdrawalRequestInput{
		AccountID:     principal.UserID,
		Amount:        req.Amount,
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		BankName:      req.BankName,
	})
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"request": request,
	})
}

// List returns all requests for admin review.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
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

// Get returns a single request.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	request, err := h.service.Get(chi.URLParam(r, "requestId"))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"request": request,
	})
}

// Approve resolves a pending request positively.
func (h *RequestHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Approve(chi.URLParam(r, "requestId")); err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Reject resolves a pending request negatively; withdrawals are refunded.
func (h *RequestHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reject(chi.URLParam(r, "requestId")); err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Cleanup bulk-deletes rejected requests.
func (h *RequestHandler) Cleanup(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.CleanupRejected()
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"deleted": deleted,
	})
}

// decodeBody reads a single JSON object into dst, rejecting unknown fields
// and trailing content. Returns false after writing the error response.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1_048_576)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		services.SendErrorResponse(w, "Invalid request body", http.StatusBadRequest, nil)
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		services.SendErrorResponse(w, "Request body must only contain a single JSON object", http.StatusBadRequest, nil)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
