package handler

import (
	"errors"
	"log"
	"net/http"

	"casewizard/internal/llmclient"
	"casewizard/internal/types"
)

func (h *Handler) handleConfigure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req types.ConfigRequest
	if !decodeBody(w, r, &req) {
		return
	}
	resp, err := h.assistant.HandleTurn(r.Context(), req)
	if err != nil {
		if errors.Is(err, llmclient.ErrNoProviders) {
			writeError(w, http.StatusServiceUnavailable, "no AI provider is configured")
			return
		}
		var perm *llmclient.PermanentError
		if errors.As(err, &perm) {
			writeError(w, http.StatusBadGateway, "AI provider rejected the request: "+perm.Error())
			return
		}
		log.Printf("assistant turn failed: %v", err)
		writeError(w, http.StatusBadGateway, "AI provider is unavailable, try again shortly")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, h.assistant.Available())
}
