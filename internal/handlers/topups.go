package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Luismi76/fiestapp-sub003/internal/middleware"
)

type topUpRequest struct {
	Amount string `json:"amount"`
}

func (h *Handler) CreateTopUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req topUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	amount, err := parseAmountMinor(req.Amount)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	intent, err := h.topups.Create(r.Context(), userID, amount)
	if err != nil {
		respondServiceError(w, err, "unable to create top-up")
		return
	}
	respondJSON(w, http.StatusCreated, intent)
}

func (h *Handler) ConfirmTopUp(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserIDFromContext(r.Context()); !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	externalRef := chi.URLParam(r, "ref")
	if externalRef == "" {
		respondError(w, http.StatusBadRequest, "missing reference")
		return
	}
	tx, err := h.topups.Confirm(r.Context(), externalRef)
	if err != nil {
		respondServiceError(w, err, "unable to confirm top-up")
		return
	}
	respondJSON(w, http.StatusOK, tx)
}
