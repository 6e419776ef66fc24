// Package handler provides HTTP handlers for all API endpoints. Handlers
// decode the request, call the tips, chat or report services and map
// service errors onto the JSON error envelope.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/albapepper/footy-tipping/internal/api/respond"
	"github.com/albapepper/footy-tipping/internal/chat"
	"github.com/albapepper/footy-tipping/internal/config"
	"github.com/albapepper/footy-tipping/internal/report"
	"github.com/albapepper/footy-tipping/internal/store"
	"github.com/albapepper/footy-tipping/internal/tips"
	"github.com/albapepper/footy-tipping/internal/validate"
)

// Pinger is the database health probe.
type Pinger interface {
	Ping(ctx context.Context) error
	Dialect() string
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	db      Pinger
	tips    *tips.Service
	chat    *chat.Service
	reports *report.Tracker
	cfg     *config.Config
	logger  *slog.Logger
}

// New creates a Handler with shared dependencies.
func New(db Pinger, t *tips.Service, c *chat.Service, reports *report.Tracker, cfg *config.Config, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{db: db, tips: t, chat: c, reports: reports, cfg: cfg, logger: logger}
}

type userKey struct{}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, u store.User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// UserFrom returns the authenticated user placed on the context by the
// gateway middleware.
func UserFrom(ctx context.Context) (store.User, bool) {
	u, ok := ctx.Value(userKey{}).(store.User)
	return u, ok
}

// currentUser writes 401 and returns false when no user is on the request.
func currentUser(w http.ResponseWriter, r *http.Request) (store.User, bool) {
	u, ok := UserFrom(r.Context())
	if !ok {
		respond.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "no authenticated user")
	}
	return u, ok
}

// writeServiceError maps service errors onto HTTP responses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		respond.WriteErrorDetail(w, http.StatusUnprocessableEntity, "VALIDATION_FAILED", "request failed validation", validate.Message(err))
	case errors.Is(err, store.ErrNotFound):
		respond.WriteError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, tips.ErrNoRound):
		respond.WriteError(w, http.StatusForbidden, "NO_ACTIVE_ROUND", "Tipping is unavailable until fixtures are loaded.")
	case errors.Is(err, tips.ErrClosed):
		respond.WriteError(w, http.StatusForbidden, "TIPS_CLOSED", "Tips are closed for this round.")
	case errors.Is(err, tips.ErrMatchNotOpen):
		respond.WriteErrorDetail(w, http.StatusForbidden, "MATCH_NOT_OPEN", "Tips for this match are not open.", err.Error())
	case errors.Is(err, tips.ErrAlreadySubmitted):
		respond.WriteError(w, http.StatusConflict, "ALREADY_SUBMITTED", "You have already submitted your tips.")
	case errors.Is(err, tips.ErrMissingSelection):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "MISSING_SELECTION", "Please select a team for every match.", err.Error())
	case errors.Is(err, tips.ErrInvalidTeam):
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_TEAM", "Selected team is not playing in that match.", err.Error())
	case errors.Is(err, chat.ErrNoRound):
		respond.WriteError(w, http.StatusBadRequest, "CHAT_UNAVAILABLE", "Chat is unavailable until fixtures are loaded.")
	case errors.Is(err, chat.ErrEmptyMessage):
		respond.WriteError(w, http.StatusBadRequest, "EMPTY_MESSAGE", "Empty message.")
	case errors.Is(err, report.ErrWrongRound):
		respond.WriteError(w, http.StatusForbidden, "WRONG_ROUND", "Reports are only available for current round matches.")
	case errors.Is(err, report.ErrUnavailable):
		respond.WriteErrorDetail(w, http.StatusServiceUnavailable, "REPORTS_UNAVAILABLE", "Report generation is unavailable.", err.Error())
	default:
		h.logger.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and docs location.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":        "Footy Tipping API",
		"version":     "1.0.0",
		"status":      "running",
		"competition": config.CompetitionName,
		"docs":        "/docs/index.html",
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckDB verifies database connectivity.
// @Summary Database health check
// @Description Verifies database connectivity (Postgres or SQLite).
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/db [get]
func (h *Handler) HealthCheckDB(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("Database health check failed", "error", err)
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"database":  "disconnected",
			"driver":    h.db.Dialect(),
			"error":     "Database connection check failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"database":  "connected",
		"driver":    h.db.Dialect(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckReports returns report tracker statistics.
// @Summary Report tracker health check
// @Description Returns whether the generator is configured and counts of pending, cached and failed report jobs.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health/reports [get]
func (h *Handler) HealthCheckReports(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"enabled":   h.reports.Enabled(),
		"reports":   h.reports.Stats(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
