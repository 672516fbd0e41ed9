package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Luismi76/fiestapp-sub003/internal/middleware"
)

type openDisputeRequest struct {
	MatchID     string `json:"match_id"`
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

func (h *Handler) OpenDispute(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req openDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.MatchID == "" || req.Reason == "" {
		respondError(w, http.StatusBadRequest, "match_id and reason are required")
		return
	}
	dispute, err := h.disputeSvc.Open(r.Context(), req.MatchID, userID, req.Reason, req.Description)
	if err != nil {
		respondServiceError(w, err, "unable to open dispute")
		return
	}
	respondJSON(w, http.StatusCreated, dispute)
}

func (h *Handler) GetDispute(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	dispute, err := h.disputeSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "unable to load dispute")
		return
	}
	if dispute.OpenedBy != userID && dispute.Respondent != userID {
		isAdmin, err := h.users.IsAdmin(r.Context(), userID)
		if err != nil || !isAdmin {
			respondError(w, http.StatusForbidden, "not a party to this dispute")
			return
		}
	}
	respondJSON(w, http.StatusOK, dispute)
}

func (h *Handler) ReviewDispute(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	dispute, err := h.disputeSvc.Review(r.Context(), chi.URLParam(r, "id"), adminID)
	if err != nil {
		respondServiceError(w, err, "unable to review dispute")
		return
	}
	respondJSON(w, http.StatusOK, dispute)
}

func (h *Handler) CloseDispute(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	dispute, err := h.disputeSvc.Close(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		respondServiceError(w, err, "unable to close dispute")
		return
	}
	respondJSON(w, http.StatusOK, dispute)
}

type resolveDisputeRequest struct {
	Outcome      string `json:"outcome"`
	RefundAmount string `json:"refund_amount"`
}

func (h *Handler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	adminID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req resolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	var refundAmount int64
	if req.RefundAmount != "" {
		amount, err := parseAmountMinor(req.RefundAmount)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		refundAmount = amount
	}
	dispute, err := h.disputeSvc.Resolve(r.Context(), chi.URLParam(r, "id"), adminID, req.Outcome, refundAmount)
	if err != nil {
		respondServiceError(w, err, "unable to resolve dispute")
		return
	}
	respondJSON(w, http.StatusOK, dispute)
}
