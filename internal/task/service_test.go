package task

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/rbac"
)

type stubRepo struct {
	task    Task
	updated *UpdateInput
}

func (s *stubRepo) Get(_ context.Context, id uuid.UUID) (Task, error) {
	if id != s.task.ID {
		return Task{}, ErrNotFound
	}
	return s.task, nil
}
func (s *stubRepo) List(context.Context, Filter) ([]Task, error) { return []Task{s.task}, nil }
func (s *stubRepo) Create(_ context.Context, input CreateInput) (Task, error) {
	return Task{ID: uuid.New(), Title: input.Title, Status: StatusTodo}, nil
}
func (s *stubRepo) Update(_ context.Context, _ uuid.UUID, input UpdateInput) (Task, error) {
	s.updated = &input
	return s.task, nil
}
func (s *stubRepo) Delete(context.Context, uuid.UUID) error { return nil }
func (s *stubRepo) AddComment(_ context.Context, c Comment) (Comment, error) {
	c.ID = uuid.New()
	return c, nil
}
func (s *stubRepo) ListComments(context.Context, uuid.UUID) ([]Comment, error) { return nil, nil }

func strptr(s string) *string { return &s }

func TestUpdateProgressLevelAllowsStatusOnly(t *testing.T) {
	repo := &stubRepo{task: Task{ID: uuid.New(), Title: "Rounds", Status: StatusTodo}}
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Update(ctx, repo.task.ID, rbac.EditProgress, UpdateInput{Status: strptr("in_progress")}); err != nil {
		t.Fatalf("status update: %v", err)
	}
	if repo.updated == nil || repo.updated.Status == nil || *repo.updated.Status != StatusInProgress {
		t.Fatal("status change did not reach the repository")
	}

	_, err := svc.Update(ctx, repo.task.ID, rbac.EditProgress, UpdateInput{Title: strptr("Renamed")})
	if !errors.Is(err, ErrProgressOnly) {
		t.Fatalf("expected ErrProgressOnly, got %v", err)
	}
}

func TestUpdateRejectsInvalidValues(t *testing.T) {
	repo := &stubRepo{task: Task{ID: uuid.New(), Title: "Rounds", Status: StatusTodo}}
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Update(ctx, repo.task.ID, rbac.EditFull, UpdateInput{Status: strptr("paused")}); !errors.Is(err, ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.Update(ctx, repo.task.ID, rbac.EditFull, UpdateInput{Priority: strptr("urgent")}); !errors.Is(err, ErrInvalidPriority) {
		t.Fatalf("expected ErrInvalidPriority, got %v", err)
	}
	if _, err := svc.Update(ctx, repo.task.ID, rbac.EditFull, UpdateInput{Title: strptr("   ")}); err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestUpdateEditNoneDenied(t *testing.T) {
	repo := &stubRepo{task: Task{ID: uuid.New(), Title: "Rounds", Status: StatusTodo}}
	svc := NewService(repo)

	if _, err := svc.Update(context.Background(), repo.task.ID, rbac.EditNone, UpdateInput{Status: strptr("done")}); !errors.Is(err, ErrProgressOnly) {
		t.Fatalf("expected ErrProgressOnly, got %v", err)
	}
}
