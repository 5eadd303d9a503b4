package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/audit"
	"github.com/caretrackhq/backend/internal/patient"
	"github.com/caretrackhq/backend/internal/report"
)

// SubmitReport files a clinical section report. The caller must be
// allowed to submit the named section.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var payload struct {
		PatientID   uuid.UUID      `json:"patientId"`
		PatientName string         `json:"patientName"`
		Section     string         `json:"section"`
		Content     map[string]any `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	if !h.policy.CanSubmitSection(actor.Subject(), payload.Section) {
		forbidden(w)
		return
	}

	rec, err := h.patients.Get(r.Context(), payload.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "patient not found", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load patient", nil)
		return
	}

	name := payload.PatientName
	if name == "" {
		name = rec.Name
	}

	rep, err := h.reports.Submit(r.Context(), actor.UID, actor.DisplayName, report.CreateInput{
		PatientID:   rec.ID,
		PatientName: name,
		Section:     payload.Section,
		Content:     payload.Content,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "report.submit",
		Entity:   "report",
		EntityID: rep.ID.String(),
	})

	WriteJSON(w, http.StatusCreated, rep)
}

// GetReport returns one report.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid report id", nil)
		return
	}

	rep, err := h.reports.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "report not found", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load report", nil)
		return
	}

	// The permission check needs the patient record; if it cannot be
	// loaded the report must not be served.
	rec, err := h.patients.Get(r.Context(), rep.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "patient not found", nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load patient", nil)
		return
	}
	if !h.policy.CanViewHistoryFor(actor.Subject(), rec.Refs()) {
		forbidden(w)
		return
	}

	WriteJSON(w, http.StatusOK, rep)
}

// AmendReport replaces a report's payload. Admin only.
func (h *Handler) AmendReport(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.policy.CanEditReport(actor.Subject()) {
		forbidden(w)
		return
	}

	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid report id", nil)
		return
	}

	var payload struct {
		Content map[string]any `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	rep, err := h.reports.Amend(r.Context(), id, payload.Content)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "report not found", nil)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "report.amend",
		Entity:   "report",
		EntityID: rep.ID.String(),
	})

	WriteJSON(w, http.StatusOK, rep)
}
