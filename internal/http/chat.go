package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/caretrackhq/backend/internal/chat"
)

// ChatHistory returns the retained messages of a channel.
func (h *Handler) ChatHistory(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.actor(w, r); !ok {
		return
	}

	messages, err := h.chat.History(r.Context(), chi.URLParam(r, "channel"))
	if err != nil {
		if errors.Is(err, chat.ErrInvalidChannel) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load history", nil)
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

// PostChatMessage appends a message to a channel.
func (h *Handler) PostChatMessage(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	msg, err := h.chat.Post(r.Context(), chi.URLParam(r, "channel"), actor.UID, actor.DisplayName, payload.Text)
	if err != nil {
		if errors.Is(err, chat.ErrInvalidChannel) || errors.Is(err, chat.ErrEmptyMessage) {
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not post message", nil)
		return
	}

	WriteJSON(w, http.StatusCreated, msg)
}
