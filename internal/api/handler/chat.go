package handler

import (
	"net/http"
	"strconv"

	"github.com/albapepper/footy-tipping/internal/api/respond"
	"github.com/albapepper/footy-tipping/internal/chat"
)

// GetChatMessages lists a round's chat.
// @Summary List chat messages
// @Description Returns the round's messages oldest first. Defaults to the current round.
// @Tags chat
// @Produce json
// @Param X-User-ID header int true "Signed-in user id set by the gateway"
// @Param round_number query int false "Round number"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} respond.ErrorResponse
// @Router /api/v1/chat/messages [get]
func (h *Handler) GetChatMessages(w http.ResponseWriter, r *http.Request) {
	round := 0
	if s := r.URL.Query().Get("round_number"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.WriteError(w, http.StatusBadRequest, "INVALID_ROUND", "round_number must be a positive integer")
			return
		}
		round = n
	}
	round, msgs, err := h.chat.Messages(r.Context(), round)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"round_number": round,
		"messages":     msgs,
	})
}

// PostChatMessage appends a message to a round's chat.
// @Summary Post chat message
// @Description Posts a message to the given round, or the current round when round_number is omitted.
// @Tags chat
// @Accept json
// @Produce json
// @Param X-User-ID header int true "Signed-in user id set by the gateway"
// @Param body body chat.Post true "Message"
// @Success 201 {object} store.ChatMessage
// @Failure 400 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /api/v1/chat/messages [post]
func (h *Handler) PostChatMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	var p chat.Post
	if err := respond.DecodeJSON(r, &p); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_BODY", "request body must be JSON", err.Error())
		return
	}
	msg, err := h.chat.Send(r.Context(), user, p)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	respond.WriteJSONObject(w, http.StatusCreated, msg)
}
