package server

import (
	"net/http"

	"casewizard/internal/gateway/handler"
	"casewizard/internal/gateway/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()
	h.Register(mux)
	return middleware.CORS(mux)
}
