package handlers

import (
	"net/http"
	"strings"

	"github.com/Luismi76/fiestapp-sub003/internal/auth"
	"github.com/Luismi76/fiestapp-sub003/internal/events"
)

func (h *Handler) WSEvents(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	events.ServeWS(w, r, h.hub, claims.UserID)
}
