package handler

import (
	"net/http"
	"strconv"

	"github.com/albapepper/footy-tipping/internal/api/respond"
	"github.com/albapepper/footy-tipping/internal/tips"
)

// GetTipForm returns the matches the user must tip now.
// @Summary Get tip form
// @Description Returns the fixtures currently open for submission, the user's existing tips for the round, and whether they have already submitted or the round is closed.
// @Tags tips
// @Produce json
// @Param X-User-ID header int true "Signed-in user id set by the gateway"
// @Success 200 {object} tips.Form
// @Failure 401 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Router /api/v1/tips/form [get]
func (h *Handler) GetTipForm(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	form, err := h.tips.Form(r.Context(), user)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, form)
}

// SubmitTips stores the user's picks for the open matches.
// @Summary Submit tips
// @Description Submits one selected team per open match. Tips are final once stored.
// @Tags tips
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Signed-in user id set by the gateway"
// @Param body body tips.Submission true "Selections keyed by match id"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 409 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /api/v1/tips [post]
func (h *Handler) SubmitTips(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var sub tips.Submission
	if err := respond.DecodeJSON(r, &sub); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", err.Error())
		return
	}
	n, err := h.tips.Submit(r.Context(), user, sub)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, map[string]interface{}{
		"message":  "Tips submitted successfully!",
		"inserted": n,
	})
}

// GetTips returns a round's tips with visibility windows applied.
// @Summary View tips
// @Description Returns the round's tips. The caller's own tips are always included; other users' tips only for matches whose visibility window has opened.
// @Tags tips
// @Produce json
// @Param X-User-ID header int true "Signed-in user id set by the gateway"
// @Param round query int false "Round number (defaults to the current round)"
// @Success 200 {object} tips.RoundView
// @Failure 400 {object} respond.ErrorResponse
// @Failure 403 {object} respond.ErrorResponse
// @Failure 404 {object} respond.ErrorResponse
// @Router /api/v1/tips [get]
func (h *Handler) GetTips(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	round := 0
	if s := r.URL.Query().Get("round"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_ROUND", "round must be a positive integer")
			return
		}
		round = n
	}
	view, err := h.tips.View(r.Context(), user, round)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, view)
}
