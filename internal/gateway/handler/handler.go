// Package handler wires the gateway's HTTP surface: record creation,
// the conversational assistant, provider status, and token refresh.
package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"casewizard/internal/assistant"
	"casewizard/internal/auth"
	"casewizard/internal/gateway/archive"
	"casewizard/internal/gateway/recordstore"
	"casewizard/internal/types"
)

type Handler struct {
	records   *recordstore.Store
	archive   archive.Store
	assistant *assistant.Service
	signer    *auth.Signer
}

func New(records *recordstore.Store, arc archive.Store, asst *assistant.Service, signer *auth.Signer) *Handler {
	if arc == nil {
		arc = archive.NewMemoryStore()
	}
	return &Handler{records: records, archive: arc, assistant: asst, signer: signer}
}

// Register attaches every route to the mux. Creation and assistant
// routes require a bearer token; status and refresh do not.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/projects", h.authed(h.handleProjects))
	mux.HandleFunc("/api/cases", h.authed(h.handleCases))
	mux.HandleFunc("/api/ai/intelligent-config", h.authed(h.handleConfigure))
	mux.HandleFunc("/api/ai/watch", h.handleWatch)
	mux.HandleFunc("/api/ai/status", h.handleStatus)
	mux.HandleFunc("/api/auth/refresh", h.handleRefresh)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func (h *Handler) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if _, err := h.signer.Verify(token); err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next(w, r)
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(raw, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, types.ErrorBody{Detail: detail})
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}
