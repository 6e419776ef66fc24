package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/footy-tipping/internal/api/handler"
	"github.com/albapepper/footy-tipping/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, users UserLoader, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	r.Use(middleware.Compress(5)) // gzip

	// CORS
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "Authorization", "X-User-ID"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Request-Id"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	// Root
	r.Get("/", h.Root)

	// Health checks
	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/db", h.HealthCheckDB)
		r.Get("/reports", h.HealthCheckReports)
	})

	// Swagger UI
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	// API v1 routes, behind the gateway identity check
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(GatewayMiddleware(cfg.GatewayToken, users, logger))

		// Rounds
		r.Get("/rounds/current", h.GetCurrentRound)

		// Tips
		r.Get("/tips/form", h.GetTipForm)
		r.Get("/tips", h.GetTips)
		r.Post("/tips", h.SubmitTips)

		// Match intelligence reports
		r.Get("/reports/{matchID}", h.GetReport)
		r.Delete("/reports/{matchID}", h.CancelReport)

		// Chat
		r.Get("/chat/messages", h.GetChatMessages)
		r.Post("/chat/messages", h.PostChatMessage)
	})

	return r
}
