package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"tonecheck-backend/internal/handlers"
	"tonecheck-backend/internal/middleware"
)

// New builds the HTTP handler. A nil limiter disables rate limiting.
func New(
	analyzeHandler *handlers.AnalyzeHandler,
	limiter middleware.Limiter,
	relayPath string,
	log logrus.FieldLogger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// ──── Tone Relay ────
	r.Route(relayPath, func(r chi.Router) {
		r.Use(middleware.CORS)
		if limiter != nil {
			r.Use(middleware.RateLimit(limiter, log))
		}
		r.Options("/", analyzeHandler.Preflight)
		r.Post("/", analyzeHandler.Analyze)
		r.MethodNotAllowed(analyzeHandler.MethodNotAllowed)
	})

	return r
}
