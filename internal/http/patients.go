package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/audit"
	"github.com/caretrackhq/backend/internal/patient"
	"github.com/caretrackhq/backend/internal/staff"
)

func parseIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "id"))
}

// actor loads the caller's fresh profile or writes the error response.
// Returns false when the request has already been answered.
func (h *Handler) actor(w http.ResponseWriter, r *http.Request) (staff.Profile, bool) {
	profile, err := h.subjectProfile(r)
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			WriteError(w, http.StatusUnauthorized, "AUTH", "unknown subject", nil)
			return staff.Profile{}, false
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load profile", nil)
		return staff.Profile{}, false
	}
	if !profile.Active {
		WriteError(w, http.StatusForbidden, "FORBIDDEN", "account disabled", nil)
		return staff.Profile{}, false
	}
	return profile, true
}

// loadPatient fetches the record or writes the error response.
func (h *Handler) loadPatient(w http.ResponseWriter, r *http.Request) (patient.Patient, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid patient id", nil)
		return patient.Patient{}, false
	}
	rec, err := h.patients.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "patient not found", nil)
			return patient.Patient{}, false
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load patient", nil)
		return patient.Patient{}, false
	}
	return rec, true
}

func forbidden(w http.ResponseWriter) {
	WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions", nil)
}

// ListPatients returns patients, optionally filtered by status.
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.policy.CanViewOverview(actor.Subject()) {
		forbidden(w)
		return
	}

	patients, err := h.patients.List(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list patients", nil)
		return
	}
	WriteJSON(w, http.StatusOK, patients)
}

// GetPatient returns one record.
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.policy.CanViewOverview(actor.Subject()) {
		forbidden(w)
		return
	}

	rec, ok := h.loadPatient(w, r)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, rec)
}

// AdmitPatient creates a new patient record.
func (h *Handler) AdmitPatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.policy.CanAddPatient(actor.Subject()) {
		forbidden(w)
		return
	}

	var payload struct {
		Name              string     `json:"name"`
		Ward              string     `json:"ward"`
		Bed               string     `json:"bed"`
		Diagnosis         string     `json:"diagnosis"`
		AssignedTherapist string     `json:"assignedTherapist"`
		AssignedDoctors   []string   `json:"assignedDoctors"`
		AdmittedAt        *time.Time `json:"admittedAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	rec, err := h.patients.Admit(r.Context(), patient.CreateInput{
		Name:              payload.Name,
		Ward:              payload.Ward,
		Bed:               payload.Bed,
		Diagnosis:         payload.Diagnosis,
		AssignedTherapist: payload.AssignedTherapist,
		AssignedDoctors:   payload.AssignedDoctors,
		CreatedBy:         actor.UID,
		AdmittedAt:        payload.AdmittedAt,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "patient.admit",
		Entity:   "patient",
		EntityID: rec.ID.String(),
	})

	WriteJSON(w, http.StatusCreated, rec)
}

// UpdatePatient edits a record the caller is related to.
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	rec, ok := h.loadPatient(w, r)
	if !ok {
		return
	}
	if !h.policy.CanEditPatientFor(actor.Subject(), rec.Refs()) {
		forbidden(w)
		return
	}

	var payload struct {
		Name              *string  `json:"name"`
		Ward              *string  `json:"ward"`
		Bed               *string  `json:"bed"`
		Diagnosis         *string  `json:"diagnosis"`
		AssignedTherapist *string  `json:"assignedTherapist"`
		AssignedDoctors   []string `json:"assignedDoctors"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	updated, err := h.patients.Update(r.Context(), rec.ID, patient.UpdateInput{
		Name:              payload.Name,
		Ward:              payload.Ward,
		Bed:               payload.Bed,
		Diagnosis:         payload.Diagnosis,
		AssignedTherapist: payload.AssignedTherapist,
		AssignedDoctors:   payload.AssignedDoctors,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "patient.update",
		Entity:   "patient",
		EntityID: rec.ID.String(),
	})

	WriteJSON(w, http.StatusOK, updated)
}

// DischargePatient marks a patient as discharged.
func (h *Handler) DischargePatient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	rec, ok := h.loadPatient(w, r)
	if !ok {
		return
	}
	if !h.policy.CanDischargePatientFor(actor.Subject(), rec.Refs()) {
		forbidden(w)
		return
	}

	updated, err := h.patients.Discharge(r.Context(), rec.ID)
	if err != nil {
		if errors.Is(err, patient.ErrAlreadyDischarged) {
			WriteError(w, http.StatusConflict, "VALIDATION", err.Error(), nil)
			return
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not discharge patient", nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "patient.discharge",
		Entity:   "patient",
		EntityID: rec.ID.String(),
	})

	WriteJSON(w, http.StatusOK, updated)
}

// AddDiagnosis appends a diagnosis history entry.
func (h *Handler) AddDiagnosis(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	rec, ok := h.loadPatient(w, r)
	if !ok {
		return
	}
	if !h.policy.CanAddDiagnosisFor(actor.Subject(), rec.Refs()) {
		forbidden(w)
		return
	}

	var payload struct {
		Diagnosis string `json:"diagnosis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	entry, err := h.patients.AddDiagnosis(r.Context(), patient.DiagnosisEntry{
		PatientID:   rec.ID,
		Diagnosis:   payload.Diagnosis,
		AddedBy:     actor.UID,
		AddedByName: actor.DisplayName,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, entry)
}

// ListDiagnosis returns the diagnosis history of a patient.
func (h *Handler) ListDiagnosis(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	rec, ok := h.loadPatient(w, r)
	if !ok {
		return
	}
	if !h.policy.CanViewHistoryFor(actor.Subject(), rec.Refs()) {
		forbidden(w)
		return
	}

	entries, err := h.patients.ListDiagnosis(r.Context(), rec.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list history", nil)
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// AddPatientComment adds a staff note to a patient.
func (h *Handler) AddPatientComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	rec, ok := h.loadPatient(w, r)
	if !ok {
		return
	}
	if !h.policy.CanViewOverview(actor.Subject()) {
		forbidden(w)
		return
	}

	var payload struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	comment, err := h.patients.AddComment(r.Context(), patient.Comment{
		PatientID:  rec.ID,
		Text:       payload.Text,
		AuthorUID:  actor.UID,
		AuthorName: actor.DisplayName,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	WriteJSON(w, http.StatusCreated, comment)
}

// ListPatientComments returns a patient's staff notes.
func (h *Handler) ListPatientComments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	rec, ok := h.loadPatient(w, r)
	if !ok {
		return
	}
	if !h.policy.CanViewOverview(actor.Subject()) {
		forbidden(w)
		return
	}

	comments, err := h.patients.ListComments(r.Context(), rec.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list comments", nil)
		return
	}
	WriteJSON(w, http.StatusOK, comments)
}

// ListPatientReports returns every report filed for a patient.
func (h *Handler) ListPatientReports(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	rec, ok := h.loadPatient(w, r)
	if !ok {
		return
	}
	if !h.policy.CanViewHistoryFor(actor.Subject(), rec.Refs()) {
		forbidden(w)
		return
	}

	reports, err := h.reports.ListByPatient(r.Context(), rec.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list reports", nil)
		return
	}
	WriteJSON(w, http.StatusOK, reports)
}
