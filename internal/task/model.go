package task

import (
	"time"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/rbac"
)

// Task statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Task is a unit of coordinated work, optionally linked to a patient.
// CreatedBy and AssignedTo are staff uids.
type Task struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Notes          string     `json:"notes,omitempty"`
	PatientID      *uuid.UUID `json:"patientId,omitempty"`
	PatientName    string     `json:"patientName,omitempty"`
	CreatedBy      string     `json:"createdBy"`
	CreatedByName  string     `json:"createdByName,omitempty"`
	AssignedTo     string     `json:"assignedTo,omitempty"`
	AssignedToName string     `json:"assignedToName,omitempty"`
	Status         string     `json:"status"`
	Priority       string     `json:"priority"`
	DueDate        *time.Time `json:"dueDate,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      *time.Time `json:"updatedAt,omitempty"`
}

// Refs converts the task into the shape access checks consume.
func (t Task) Refs() rbac.TaskRefs {
	refs := rbac.TaskRefs{
		CreatedBy:  t.CreatedBy,
		AssignedTo: t.AssignedTo,
	}
	if t.PatientID != nil {
		refs.ClientID = t.PatientID.String()
	}
	return refs
}

// AssigneeRefs returns the uids notifications for this task fan out to.
func (t Task) AssigneeRefs() []string {
	var refs []string
	if t.AssignedTo != "" {
		refs = append(refs, t.AssignedTo)
	}
	if t.CreatedBy != "" {
		refs = append(refs, t.CreatedBy)
	}
	return refs
}

// Comment is a staff note on a task.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	TaskID     uuid.UUID `json:"taskId"`
	Text       string    `json:"text"`
	AuthorUID  string    `json:"authorUid"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateInput carries fields for a new task.
type CreateInput struct {
	Title          string
	Notes          string
	PatientID      *uuid.UUID
	PatientName    string
	CreatedBy      string
	CreatedByName  string
	AssignedTo     string
	AssignedToName string
	Priority       string
	DueDate        *time.Time
}

// UpdateInput carries the full-edit fields; nil means "leave unchanged".
type UpdateInput struct {
	Title          *string
	Notes          *string
	AssignedTo     *string
	AssignedToName *string
	Status         *string
	Priority       *string
	DueDate        *time.Time
}

// ProgressOnly strips an update down to what the progress edit level may
// change: status, nothing else.
func (in UpdateInput) ProgressOnly() UpdateInput {
	return UpdateInput{Status: in.Status}
}

// TouchesRestrictedFields reports whether the update changes anything
// beyond status.
func (in UpdateInput) TouchesRestrictedFields() bool {
	return in.Title != nil || in.Notes != nil || in.AssignedTo != nil ||
		in.AssignedToName != nil || in.Priority != nil || in.DueDate != nil
}

// Filter narrows task listings.
type Filter struct {
	Status     string
	PatientID  *uuid.UUID
	AssignedTo string
}
