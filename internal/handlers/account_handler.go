package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Shehriyar31/pp-Live/internal/middleware"
	"github.com/Shehriyar31/pp-Live/internal/models"
	"github.com/Shehriyar31/pp-Live/internal/services"
)

type AccountHandler struct {
	accounts  *services.AccountService
	ledger    *services.LedgerService
	referrals *services.ReferralService
	validator *services.ValidationHelper
}

func NewAccountHandler(accounts *services.AccountService, ledger *services.LedgerService, referrals *services.ReferralService) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		ledger:    ledger,
		referrals: referrals,
		validator: services.NewValidationHelper(),
	}
}

// Me returns the caller's own account snapshot.
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	account, err := h.ledger.Snapshot(principal.UserID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"account": account,
	})
}

// Transactions returns the caller's ledger history, oldest first.
func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	transactions, err := h.ledger.Transactions(principal.UserID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"transactions": transactions,
	})
}

// Referrals lists the caller's approved referrals with the live count.
func (h *AccountHandler) Referrals(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFrom(r.Context())
	if !ok {
		services.SendErrorResponse(w, "Unauthorized", http.StatusUnauthorized, nil)
		return
	}

	referrals, err := h.referrals.Referrals(principal.UserID)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"count":     len(referrals),
		"referrals": referrals,
	})
}

// List returns all accounts for admin review.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List()
	if err != nil {
		services.SendErrorResponse(w, err.Error(), http.StatusInternalServerError, nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"accounts": accounts,
	})
}

// Get returns one account by id.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	account, err := h.ledger.Snapshot(chi.URLParam(r, "accountId"))
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"account": account,
	})
}

// UpdateStatus applies the whitelisted admin edits to an account. Balance
// and earnings are not part of the whitelist.
func (h *AccountHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req models.AccountStatusUpdate
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account, err := h.accounts.UpdateStatus(chi.URLParam(r, "accountId"), req)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"account": account,
	})
}

// AdjustBalance is the admin credit/debit. It rides the ledger, so the
// adjustment appears in the account's transaction history like any other.
func (h *AccountHandler) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type        string `json:"type" validate:"required,oneof=deposit withdraw"`
		Amount      int64  `json:"amount" validate:"required,gt=0"`
		Description string `json:"description"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.ValidateStruct(&req); err != nil {
		services.SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	txn, err := h.ledger.AdjustBalance(chi.URLParam(r, "accountId"),
		models.TransactionType(req.Type), req.Amount, req.Description)
	if err != nil {
		services.SendErrorResponse(w, err.Error(), services.StatusForError(err), nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"transaction": txn,
	})
}
