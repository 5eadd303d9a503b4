package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/caretrackhq/backend/internal/audit"
	"github.com/caretrackhq/backend/internal/staff"
)

// ListStaff returns every staff profile. Any authenticated member may
// read the roster; tokens and password hashes never serialize.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.staff.List(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list staff", nil)
		return
	}
	WriteJSON(w, http.StatusOK, profiles)
}

// CreateStaff provisions a new account. Admin only: the route
// middleware gates on token claims, the handler re-checks the stored
// profile so a demoted admin loses the power immediately.
func (h *Handler) CreateStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.policy.CanAccessAdmin(actor.Subject()) {
		forbidden(w)
		return
	}

	var payload struct {
		DisplayName string `json:"displayName"`
		Email       string `json:"email"`
		Role        string `json:"role"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	profile, err := h.staff.Create(r.Context(), staff.CreateInput{
		DisplayName: payload.DisplayName,
		Email:       payload.Email,
		Role:        payload.Role,
		Password:    payload.Password,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "staff.create",
		Entity:   "staff",
		EntityID: profile.UID,
	})

	WriteJSON(w, http.StatusCreated, profile)
}

// UpdateStaff changes a profile's name, role or active flag. Admin only,
// re-checked against the stored profile.
func (h *Handler) UpdateStaff(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.policy.CanAccessAdmin(actor.Subject()) {
		forbidden(w)
		return
	}

	uid := strings.TrimSpace(chi.URLParam(r, "uid"))
	if uid == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "missing uid", nil)
		return
	}

	var payload struct {
		DisplayName *string `json:"displayName"`
		Role        *string `json:"role"`
		Active      *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	profile, err := h.staff.Update(r.Context(), uid, staff.UpdateInput{
		DisplayName: payload.DisplayName,
		Role:        payload.Role,
		Active:      payload.Active,
	})
	if err != nil {
		switch {
		case errors.Is(err, staff.ErrNotFound):
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "staff member not found", nil)
		case errors.Is(err, staff.ErrUnknownRole):
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		default:
			WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		}
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "staff.update",
		Entity:   "staff",
		EntityID: uid,
	})

	WriteJSON(w, http.StatusOK, profile)
}

// SaveDeviceToken registers the caller's push token.
func (h *Handler) SaveDeviceToken(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}
	if strings.TrimSpace(payload.Token) == "" {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "token is required", nil)
		return
	}

	if err := h.staff.SaveToken(r.Context(), subjectOf(r), payload.Token); err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "staff member not found", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not save token", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// ClearDeviceToken drops the caller's push token.
func (h *Handler) ClearDeviceToken(w http.ResponseWriter, r *http.Request) {
	if err := h.staff.ClearToken(r.Context(), subjectOf(r)); err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "staff member not found", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not clear token", nil)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// ListAuditLog returns recent audit entries. Admin only, re-checked
// against the stored profile.
func (h *Handler) ListAuditLog(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.policy.CanAccessAdmin(actor.Subject()) {
		forbidden(w)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.auditLog.List(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list audit entries", nil)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}
