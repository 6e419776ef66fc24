package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/albapepper/footy-tipping/internal/api/respond"
	"github.com/albapepper/footy-tipping/internal/report"
)

// GetReport returns the match intelligence report, scheduling it on first
// request.
// @Summary Get match report
// @Description Returns 200 with the report when ready, 202 while generation is pending (poll again), or 500 once with the failure of the last attempt.
// @Tags reports
// @Produce json
// @Param X-User-ID header int true "Signed-in user id set by the gateway"
// @Param matchID path string true "Match id"
// @Success 200 {object} report.Result
// @Success 202 {object} report.Result
// @Failure 403 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Failure 500 {object} respond.ErrorResponse
// @Failure 503 {object} respond.ErrorResponse
// @Router /api/v1/reports/{matchID} [get]
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	res, err := h.reports.Request(r.Context(), user.ID, chi.URLParam(r, "matchID"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	switch res.Status {
	case report.StatusReady:
		respond.WriteJSONObject(w, http.StatusOK, res)
	case report.StatusPending:
		respond.WriteJSONObject(w, http.StatusAccepted, res)
	default:
		respond.WriteErrorDetail(w, http.StatusInternalServerError, "GENERATION_FAILED", res.Message, res.Detail)
	}
}

// CancelReport discards any in-flight generation for the match.
// @Summary Cancel match report
// @Description Cancels a pending report job and clears a recorded failure. Completed reports are kept. Always succeeds.
// @Tags reports
// @Produce json
// @Param X-User-ID header int true "Signed-in user id set by the gateway"
// @Param matchID path string true "Match id"
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/reports/{matchID} [delete]
func (h *Handler) CancelReport(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	cancelled := h.reports.Cancel(user.ID, chi.URLParam(r, "matchID"))
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "cancelled",
		"cancelled": cancelled,
	})
}
