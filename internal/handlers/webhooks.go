package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Luismi76/fiestapp-sub003/internal/models"
)

type webhookPayload struct {
	ExternalRef string `json:"external_ref"`
	Type        string `json:"type"`
}

func (h *Handler) PaymentWebhook(w http.ResponseWriter, r *http.Request) {
	var payload webhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if payload.ExternalRef == "" {
		respondError(w, http.StatusBadRequest, "missing external_ref")
		return
	}
	intent, found, err := h.gateway.Intent(r.Context(), payload.ExternalRef)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to process webhook")
		return
	}
	if !found {
		respondJSON(w, http.StatusOK, map[string]any{"received": true, "handled": false})
		return
	}
	switch intent.Context {
	case models.IntentContextTopUp:
		if _, err := h.topups.Confirm(r.Context(), payload.ExternalRef); err != nil {
			respondServiceError(w, err, "unable to process webhook")
			return
		}
	case models.IntentContextMatch:
		if err := h.matchSvc.SettleCapture(r.Context(), payload.ExternalRef); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to process webhook")
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"received": true, "handled": true})
}
