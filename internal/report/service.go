package report

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/rbac"
)

var (
	// ErrUnknownSection is returned when the section name is not one of
	// the recognized clinical sections.
	ErrUnknownSection = errors.New("unknown report section")

	// ErrEmptyContent is returned when the submission carries no payload.
	ErrEmptyContent = errors.New("report content is required")
)

var knownSections = map[string]struct{}{
	rbac.SectionPsychiatric: {},
	rbac.SectionBehavioral:  {},
	rbac.SectionMedication:  {},
	rbac.SectionTherapeutic: {},
	rbac.SectionRisk:        {},
	rbac.SectionADL:         {},
}

// SectionRepository is the persistence surface the service needs.
type SectionRepository interface {
	Get(ctx context.Context, id uuid.UUID) (Report, error)
	Create(ctx context.Context, rep Report) (Report, error)
	UpdateContent(ctx context.Context, id uuid.UUID, content map[string]any) (Report, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Report, error)
}

// Service validates and persists report submissions.
type Service struct {
	repo SectionRepository
}

// NewService creates the report service.
func NewService(repo SectionRepository) *Service {
	return &Service{repo: repo}
}

// CreateInput is a new section submission.
type CreateInput struct {
	PatientID   uuid.UUID      `json:"patientId"`
	PatientName string         `json:"patientName"`
	Section     string         `json:"section"`
	Content     map[string]any `json:"content"`
}

// Submit stores a new report for the given author.
func (s *Service) Submit(ctx context.Context, authorUID, authorName string, input CreateInput) (Report, error) {
	if _, ok := knownSections[input.Section]; !ok {
		return Report{}, ErrUnknownSection
	}
	if len(input.Content) == 0 {
		return Report{}, ErrEmptyContent
	}

	return s.repo.Create(ctx, Report{
		PatientID:       input.PatientID,
		PatientName:     input.PatientName,
		Section:         input.Section,
		Content:         input.Content,
		SubmittedBy:     authorUID,
		SubmittedByName: authorName,
	})
}

// Get loads one report.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Report, error) {
	return s.repo.Get(ctx, id)
}

// Amend replaces the payload of an existing report.
func (s *Service) Amend(ctx context.Context, id uuid.UUID, content map[string]any) (Report, error) {
	if len(content) == 0 {
		return Report{}, ErrEmptyContent
	}
	return s.repo.UpdateContent(ctx, id, content)
}

// ListByPatient returns all reports filed for a patient.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Report, error) {
	return s.repo.ListByPatient(ctx, patientID)
}
