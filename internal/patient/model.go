package patient

import (
	"time"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/rbac"
)

// Patient statuses.
const (
	StatusActive     = "active"
	StatusDischarged = "discharged"
)

// Patient is a resident record. AssignedDoctors holds unresolved
// assignee references exactly as entered (names, emails or uids); they
// are only resolved to uids at notification time, never rewritten.
type Patient struct {
	ID                uuid.UUID  `json:"id"`
	Name              string     `json:"name"`
	Ward              string     `json:"ward,omitempty"`
	Bed               string     `json:"bed,omitempty"`
	Status            string     `json:"status"`
	Diagnosis         string     `json:"diagnosis,omitempty"`
	AssignedTherapist string     `json:"assignedTherapist,omitempty"`
	AssignedDoctors   []string   `json:"assignedDoctors,omitempty"`
	CreatedBy         string     `json:"createdBy"`
	AdmittedAt        *time.Time `json:"admittedAt,omitempty"`
	DischargedAt      *time.Time `json:"dischargedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         *time.Time `json:"updatedAt,omitempty"`
}

// Refs converts the record into the shape access checks consume.
func (p Patient) Refs() rbac.PatientRefs {
	return rbac.PatientRefs{
		AssignedTherapist: p.AssignedTherapist,
		AssignedDoctors:   p.AssignedDoctors,
		CreatedBy:         p.CreatedBy,
	}
}

// AssigneeRefs returns the assignee references notifications fan out to,
// falling back to the single therapist field on older records.
func (p Patient) AssigneeRefs() []string {
	if len(p.AssignedDoctors) > 0 {
		return p.AssignedDoctors
	}
	if p.AssignedTherapist != "" {
		return []string{p.AssignedTherapist}
	}
	return nil
}

// DiagnosisEntry is one line of a patient's diagnosis history.
type DiagnosisEntry struct {
	ID          uuid.UUID `json:"id"`
	PatientID   uuid.UUID `json:"patientId"`
	Diagnosis   string    `json:"diagnosis"`
	AddedBy     string    `json:"addedBy"`
	AddedByName string    `json:"addedByName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Comment is a free-text staff note on a patient.
type Comment struct {
	ID         uuid.UUID `json:"id"`
	PatientID  uuid.UUID `json:"patientId"`
	Text       string    `json:"text"`
	AuthorUID  string    `json:"authorUid"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CreateInput carries fields for admitting a patient.
type CreateInput struct {
	Name              string
	Ward              string
	Bed               string
	Diagnosis         string
	AssignedTherapist string
	AssignedDoctors   []string
	CreatedBy         string
	AdmittedAt        *time.Time
}

// UpdateInput carries the mutable fields; nil means "leave unchanged".
type UpdateInput struct {
	Name              *string
	Ward              *string
	Bed               *string
	Diagnosis         *string
	AssignedTherapist *string
	AssignedDoctors   []string
}
