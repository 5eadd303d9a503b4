package task

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/rbac"
	"github.com/caretrackhq/backend/internal/util"
)

var (
	// ErrInvalidStatus indicates a status outside the closed set.
	ErrInvalidStatus = errors.New("invalid task status")
	// ErrInvalidPriority indicates a priority outside the closed set.
	ErrInvalidPriority = errors.New("invalid task priority")
	// ErrProgressOnly indicates a progress-level editor touched
	// restricted fields.
	ErrProgressOnly = errors.New("edit level allows status updates and comments only")
)

// TaskRepository is the persistence contract the service needs.
type TaskRepository interface {
	Get(ctx context.Context, id uuid.UUID) (Task, error)
	List(ctx context.Context, filter Filter) ([]Task, error)
	Create(ctx context.Context, input CreateInput) (Task, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AddComment(ctx context.Context, c Comment) (Comment, error)
	ListComments(ctx context.Context, taskID uuid.UUID) ([]Comment, error)
}

// Service holds the task rules.
type Service struct {
	repo TaskRepository
}

// NewService creates the service.
func NewService(repo TaskRepository) *Service {
	return &Service{repo: repo}
}

func validStatus(s string) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

func validPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Task, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter Filter) ([]Task, error) {
	return s.repo.List(ctx, filter)
}

// Create validates and inserts a new task.
func (s *Service) Create(ctx context.Context, input CreateInput) (Task, error) {
	if err := util.RequireString(input.Title, "title"); err != nil {
		return Task{}, err
	}
	if input.Priority != "" && !validPriority(strings.ToLower(input.Priority)) {
		return Task{}, ErrInvalidPriority
	}
	return s.repo.Create(ctx, input)
}

// Update applies an edit at the given level. Progress-level editors may
// only change status; anything else is rejected, not silently dropped.
func (s *Service) Update(ctx context.Context, id uuid.UUID, level rbac.EditLevel, input UpdateInput) (Task, error) {
	switch level {
	case rbac.EditFull:
		// every field allowed
	case rbac.EditProgress:
		if input.TouchesRestrictedFields() {
			return Task{}, ErrProgressOnly
		}
		input = input.ProgressOnly()
	default:
		return Task{}, ErrProgressOnly
	}

	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !validStatus(status) {
			return Task{}, ErrInvalidStatus
		}
		input.Status = &status
	}
	if input.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*input.Priority))
		if !validPriority(priority) {
			return Task{}, ErrInvalidPriority
		}
		input.Priority = &priority
	}
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return Task{}, errors.New("title must not be empty")
	}

	return s.repo.Update(ctx, id, input)
}

// Delete removes a task.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AddComment appends a note.
func (s *Service) AddComment(ctx context.Context, c Comment) (Comment, error) {
	if err := util.RequireString(c.Text, "text"); err != nil {
		return Comment{}, err
	}
	if _, err := s.repo.Get(ctx, c.TaskID); err != nil {
		return Comment{}, err
	}
	return s.repo.AddComment(ctx, c)
}

func (s *Service) ListComments(ctx context.Context, taskID uuid.UUID) ([]Comment, error) {
	return s.repo.ListComments(ctx, taskID)
}
