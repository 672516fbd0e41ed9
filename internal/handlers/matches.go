package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Luismi76/fiestapp-sub003/internal/middleware"
	"github.com/Luismi76/fiestapp-sub003/internal/models"
	"github.com/Luismi76/fiestapp-sub003/internal/services"
)

type createMatchRequest struct {
	HostID       string `json:"host_id"`
	ExperienceID string `json:"experience_id"`
	Participants int    `json:"participants"`
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req createMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if req.HostID == "" || req.ExperienceID == "" {
		respondError(w, http.StatusBadRequest, "host_id and experience_id are required")
		return
	}
	if req.Participants < 1 {
		respondError(w, http.StatusBadRequest, "participants must be at least 1")
		return
	}
	created, err := h.matchSvc.Request(r.Context(), services.MatchRequest{
		RequesterID:  userID,
		HostID:       req.HostID,
		ExperienceID: req.ExperienceID,
		Participants: req.Participants,
	})
	if err != nil {
		respondServiceError(w, err, "unable to create match")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{
		"match":         created.Match,
		"client_secret": created.ClientSecret,
		"approval_url":  created.ApprovalURL,
	})
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	rows, err := h.matches.ListByParticipant(r.Context(), userID, limit, offset)
	if err != nil {
		respondServiceError(w, err, "unable to load matches")
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	match, err := h.matchSvc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "unable to load match")
		return
	}
	if match.RequesterID != userID && match.HostID != userID {
		respondError(w, http.StatusForbidden, "not a participant")
		return
	}
	respondJSON(w, http.StatusOK, match)
}

func (h *Handler) AcceptMatch(w http.ResponseWriter, r *http.Request) {
	h.transitionMatch(w, r, h.matchSvc.Accept)
}

func (h *Handler) RejectMatch(w http.ResponseWriter, r *http.Request) {
	h.transitionMatch(w, r, h.matchSvc.Reject)
}

func (h *Handler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	h.transitionMatch(w, r, h.matchSvc.Cancel)
}

func (h *Handler) CompleteMatch(w http.ResponseWriter, r *http.Request) {
	h.transitionMatch(w, r, h.matchSvc.Complete)
}

func (h *Handler) transitionMatch(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, matchID, actorID string) (models.Match, error)) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	matchID := chi.URLParam(r, "id")
	if matchID == "" {
		respondError(w, http.StatusBadRequest, "missing match id")
		return
	}
	match, err := fn(r.Context(), matchID, userID)
	if err != nil {
		respondServiceError(w, err, "unable to update match")
		return
	}
	respondJSON(w, http.StatusOK, match)
}
