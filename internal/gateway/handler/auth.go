package handler

import (
	"net/http"
	"strings"

	"casewizard/internal/types"
)

type loginRequest struct {
	Username string `json:"username"`
}

type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// handleLogin issues tokens for a username. There is no password check
// here; identity comes from the platform in front of this gateway.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	user := strings.TrimSpace(req.Username)
	if user == "" {
		writeError(w, http.StatusUnprocessableEntity, "username is required")
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken:  h.signer.Access(user),
		RefreshToken: h.signer.RefreshToken(user),
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req types.RefreshRequest
	if !decodeBody(w, r, &req) {
		return
	}
	token := strings.TrimSpace(req.Token)
	if token == "" {
		token = bearerToken(r)
	}
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing refresh token")
		return
	}
	access, err := h.signer.Refresh(token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}
	writeJSON(w, http.StatusOK, types.RefreshResponse{AccessToken: access})
}
