package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/caretrackhq/backend/internal/notify"
	"github.com/caretrackhq/backend/internal/patient"
	"github.com/caretrackhq/backend/internal/task"
)

// SendPush dispatches one push notification for a triggering event. The
// client calls this after writing the record the event describes.
func (h *Handler) SendPush(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req notify.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	receipt, err := h.notifier.Dispatch(r.Context(), actor.UID, req)
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrUnknownType):
			WriteError(w, http.StatusBadRequest, "VALIDATION", "unknown event type", nil)
		case errors.Is(err, notify.ErrMissingTarget):
			WriteError(w, http.StatusBadRequest, "VALIDATION", "clientId, taskId or channel required for this type", nil)
		case errors.Is(err, patient.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "patient not found", nil)
		case errors.Is(err, task.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "task not found", nil)
		default:
			log.Error().Err(err).Str("type", req.Type).Msg("push dispatch failed")
			WriteError(w, http.StatusInternalServerError, "INTERNAL", "send failed", nil)
		}
		return
	}

	WriteJSON(w, http.StatusOK, receipt)
}
