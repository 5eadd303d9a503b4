package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/audit"
	"github.com/caretrackhq/backend/internal/rbac"
	"github.com/caretrackhq/backend/internal/task"
)

// loadTask fetches the task or writes the error response.
func (h *Handler) loadTask(w http.ResponseWriter, r *http.Request) (task.Task, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid task id", nil)
		return task.Task{}, false
	}
	t, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, task.ErrNotFound) {
			WriteError(w, http.StatusNotFound, "NOT_FOUND", "task not found", nil)
			return task.Task{}, false
		}
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not load task", nil)
		return task.Task{}, false
	}
	return t, true
}

// linkedPatientRefs loads the patient refs a task points at, when any.
// A stale link resolves to nil rather than failing the access check.
func (h *Handler) linkedPatientRefs(r *http.Request, t task.Task) *rbac.PatientRefs {
	if t.PatientID == nil {
		return nil
	}
	rec, err := h.patients.Get(r.Context(), *t.PatientID)
	if err != nil {
		return nil
	}
	refs := rec.Refs()
	return &refs
}

// ListTasks returns tasks the caller may see.
func (h *Handler) ListTasks(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var filter task.Filter
	filter.Status = r.URL.Query().Get("status")
	if raw := r.URL.Query().Get("patientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid patientId", nil)
			return
		}
		filter.PatientID = &id
	}
	if r.URL.Query().Get("mine") == "true" {
		filter.AssignedTo = actor.UID
	}

	tasks, err := h.tasks.List(r.Context(), filter)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list tasks", nil)
		return
	}

	subject := actor.Subject()
	visible := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if h.policy.CanViewTask(subject, t.Refs(), h.linkedPatientRefs(r, t)) {
			visible = append(visible, t)
		}
	}
	WriteJSON(w, http.StatusOK, visible)
}

// GetTask returns one task.
func (h *Handler) GetTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	t, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	if !h.policy.CanViewTask(actor.Subject(), t.Refs(), h.linkedPatientRefs(r, t)) {
		forbidden(w)
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// CreateTask creates a new task.
func (h *Handler) CreateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	if !h.policy.CanCreateTask(actor.Subject()) {
		forbidden(w)
		return
	}

	var payload struct {
		Title          string     `json:"title"`
		Notes          string     `json:"notes"`
		PatientID      *uuid.UUID `json:"patientId"`
		PatientName    string     `json:"patientName"`
		AssignedTo     string     `json:"assignedTo"`
		AssignedToName string     `json:"assignedToName"`
		Priority       string     `json:"priority"`
		DueDate        *time.Time `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	t, err := h.tasks.Create(r.Context(), task.CreateInput{
		Title:          payload.Title,
		Notes:          payload.Notes,
		PatientID:      payload.PatientID,
		PatientName:    payload.PatientName,
		CreatedBy:      actor.UID,
		CreatedByName:  actor.DisplayName,
		AssignedTo:     payload.AssignedTo,
		AssignedToName: payload.AssignedToName,
		Priority:       payload.Priority,
		DueDate:        payload.DueDate,
	})
	if err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "task.create",
		Entity:   "task",
		EntityID: t.ID.String(),
	})

	WriteJSON(w, http.StatusCreated, t)
}

// UpdateTask applies an edit at the caller's permitted level.
func (h *Handler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	t, ok := h.loadTask(w, r)
	if !ok {
		return
	}

	level := h.policy.TaskEditLevel(actor.Subject(), t.Refs(), h.linkedPatientRefs(r, t))
	if level == rbac.EditNone {
		forbidden(w)
		return
	}

	var payload struct {
		Title          *string    `json:"title"`
		Notes          *string    `json:"notes"`
		AssignedTo     *string    `json:"assignedTo"`
		AssignedToName *string    `json:"assignedToName"`
		Status         *string    `json:"status"`
		Priority       *string    `json:"priority"`
		DueDate        *time.Time `json:"dueDate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "VALIDATION", "invalid JSON", nil)
		return
	}

	updated, err := h.tasks.Update(r.Context(), t.ID, level, task.UpdateInput{
		Title:          payload.Title,
		Notes:          payload.Notes,
		AssignedTo:     payload.AssignedTo,
		AssignedToName: payload.AssignedToName,
		Status:         payload.Status,
		Priority:       payload.Priority,
		DueDate:        payload.DueDate,
	})
	if err != nil {
		if errors.Is(err, task.ErrProgressOnly) {
			forbidden(w)
			return
		}
		WriteError(w, http.StatusBadRequest, "VALIDATION", err.Error(), nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "task.update",
		Entity:   "task",
		EntityID: t.ID.String(),
	})

	WriteJSON(w, http.StatusOK, updated)
}

// DeleteTask removes a task. Admin or creator only.
func (h *Handler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	t, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	if !h.policy.CanDeleteTask(actor.Subject(), t.Refs()) {
		forbidden(w)
		return
	}

	if err := h.tasks.Delete(r.Context(), t.ID); err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not delete task", nil)
		return
	}

	h.audit.Record(r.Context(), audit.Entry{
		ActorUID: actor.UID,
		Action:   "task.delete",
		Entity:   "task",
		EntityID: t.ID.String(),
	})

	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddTaskComment adds a comment to a task the caller may at least
// progress-edit.
func (h *Handler) AddTaskComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	t, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	if h.policy.TaskEditLevel(actor.Subject(), t.Refs(), h.linkedPatientRefs(r, t)) == rbac.EditNone {
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

	comment, err := h.tasks.AddComment(r.Context(), task.Comment{
		TaskID:     t.ID,
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

// ListTaskComments returns a task's comments.
func (h *Handler) ListTaskComments(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	t, ok := h.loadTask(w, r)
	if !ok {
		return
	}
	if !h.policy.CanViewTask(actor.Subject(), t.Refs(), h.linkedPatientRefs(r, t)) {
		forbidden(w)
		return
	}

	comments, err := h.tasks.ListComments(r.Context(), t.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "INTERNAL", "could not list comments", nil)
		return
	}
	WriteJSON(w, http.StatusOK, comments)
}
