package patient

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/util"
)

// ErrAlreadyDischarged indicates a discharge on a non-active record.
var ErrAlreadyDischarged = errors.New("patient already discharged")

// RecordRepository is the persistence contract the service needs.
type RecordRepository interface {
	Get(ctx context.Context, id uuid.UUID) (Patient, error)
	List(ctx context.Context, status string) ([]Patient, error)
	Create(ctx context.Context, input CreateInput) (Patient, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Patient, error)
	Discharge(ctx context.Context, id uuid.UUID) (Patient, error)
	AddDiagnosis(ctx context.Context, entry DiagnosisEntry) (DiagnosisEntry, error)
	ListDiagnosis(ctx context.Context, patientID uuid.UUID) ([]DiagnosisEntry, error)
	AddComment(ctx context.Context, c Comment) (Comment, error)
	ListComments(ctx context.Context, patientID uuid.UUID) ([]Comment, error)
}

// Service holds the patient record rules. Access decisions live with the
// callers; the service assumes the actor was already cleared.
type Service struct {
	repo RecordRepository
}

// NewService creates the service.
func NewService(repo RecordRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, status string) ([]Patient, error) {
	return s.repo.List(ctx, status)
}

// Admit creates a new active record.
func (s *Service) Admit(ctx context.Context, input CreateInput) (Patient, error) {
	if err := util.RequireString(input.Name, "name"); err != nil {
		return Patient{}, err
	}
	return s.repo.Create(ctx, input)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Patient, error) {
	return s.repo.Update(ctx, id, input)
}

// Discharge closes an active record.
func (s *Service) Discharge(ctx context.Context, id uuid.UUID) (Patient, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return Patient{}, err
	}
	if current.Status != StatusActive {
		return Patient{}, ErrAlreadyDischarged
	}
	return s.repo.Discharge(ctx, id)
}

// AddDiagnosis appends to the history.
func (s *Service) AddDiagnosis(ctx context.Context, entry DiagnosisEntry) (DiagnosisEntry, error) {
	if err := util.RequireString(entry.Diagnosis, "diagnosis"); err != nil {
		return DiagnosisEntry{}, err
	}
	if _, err := s.repo.Get(ctx, entry.PatientID); err != nil {
		return DiagnosisEntry{}, err
	}
	return s.repo.AddDiagnosis(ctx, entry)
}

func (s *Service) ListDiagnosis(ctx context.Context, patientID uuid.UUID) ([]DiagnosisEntry, error) {
	return s.repo.ListDiagnosis(ctx, patientID)
}

// AddComment appends a staff note.
func (s *Service) AddComment(ctx context.Context, c Comment) (Comment, error) {
	if err := util.RequireString(c.Text, "text"); err != nil {
		return Comment{}, err
	}
	if _, err := s.repo.Get(ctx, c.PatientID); err != nil {
		return Comment{}, err
	}
	return s.repo.AddComment(ctx, c)
}

func (s *Service) ListComments(ctx context.Context, patientID uuid.UUID) ([]Comment, error) {
	return s.repo.ListComments(ctx, patientID)
}
