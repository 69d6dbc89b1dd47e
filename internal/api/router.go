package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/Nhlanhla999/Epidemiologist-Data-Science-Tool/internal/middleware"
)

// NewRouter mounts the handler under /api/v1. CORS wraps the whole router
// so preflight OPTIONS requests are answered even though no route accepts
// that method.
func NewRouter(h *Handler, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/api/v1").Subrouter())

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin"},
		MaxAge:         86400,
	})

	return middleware.RecoveryMiddleware(middleware.LoggingMiddleware(corsHandler.Handler(r)))
}
