package handlers

import (
	"net/http"

	"github.com/Luismi76/fiestapp-sub003/internal/middleware"
	"github.com/Luismi76/fiestapp-sub003/internal/money"
)

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	wallet, err := h.walletSvc.Balance(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "unable to load wallet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":                wallet.ID,
		"balance":           wallet.Balance,
		"balance_formatted": money.FormatMinor(wallet.Balance),
		"currency":          wallet.Currency,
	})
}

func (h *Handler) CanOperate(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	allowed, err := h.walletSvc.CanOperate(r.Context(), userID)
	if err != nil {
		respondServiceError(w, err, "unable to check wallet")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"can_operate":  allowed,
		"required_fee": h.cfg.PlatformFeeMinor,
	})
}

func (h *Handler) ListWalletTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	rows, err := h.walletSvc.Transactions(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err, "unable to load transactions")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}
