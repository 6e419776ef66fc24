package handler

import (
	"errors"
	"net/http"

	"github.com/albapepper/footy-tipping/internal/api/respond"
	"github.com/albapepper/footy-tipping/internal/store"
	"github.com/albapepper/footy-tipping/internal/tips"
)

// currentRoundResponse is what clients load first: the active round, its
// fixtures and whether chat is open.
type currentRoundResponse struct {
	RoundNumber *int            `json:"round_number"`
	Fixtures    []store.Fixture `json:"fixtures"`
	ChatOpen    bool            `json:"chat_open"`
}

// GetCurrentRound returns the active round and its fixtures.
// @Summary Get current round
// @Description Returns the lowest round with an unplayed match and its fixtures. round_number is null and chat_open false until fixtures are loaded.
// @Tags rounds
// @Produce json
// @Param X-User-ID header int true "Signed-in user id set by the gateway"
// @Success 200 {object} currentRoundResponse
// @Failure 401 {object} respond.ErrorResponse
// @Router /api/v1/rounds/current [get]
func (h *Handler) GetCurrentRound(w http.ResponseWriter, r *http.Request) {
	round, err := h.tips.CurrentRound(r.Context())
	if errors.Is(err, tips.ErrNoRound) {
		respond.WriteJSONObject(w, http.StatusOK, currentRoundResponse{Fixtures: []store.Fixture{}})
		return
	}
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	n := round.Number
	respond.WriteJSONObject(w, http.StatusOK, currentRoundResponse{
		RoundNumber: &n,
		Fixtures:    round.Fixtures,
		ChatOpen:    true,
	})
}
