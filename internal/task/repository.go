package task

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no task matches.
var ErrNotFound = errors.New("task not found")

const taskColumns = `id, title, coalesce(notes, ''), patient_id, coalesce(patient_name, ''), created_by, coalesce(created_by_name, ''), coalesce(assigned_to, ''), coalesce(assigned_to_name, ''), status, priority, due_date, created_at, updated_at`

// Repository provides access to task tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.Title, &t.Notes, &t.PatientID, &t.PatientName, &t.CreatedBy, &t.CreatedByName, &t.AssignedTo, &t.AssignedToName, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, ErrNotFound
		}
		return Task{}, err
	}
	return t, nil
}

// Get loads one task.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Task, error) {
	const query = `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1`
	return scanTask(r.pool.QueryRow(ctx, query, id))
}

// List returns tasks matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Task, error) {
	base := `SELECT ` + taskColumns + ` FROM tasks`

	var (
		clauses []string
		args    []any
		idx     = 1
	)

	if filter.Status != "" {
		clauses = append(clauses, fmt.Sprintf("status = $%d", idx))
		args = append(args, strings.ToLower(filter.Status))
		idx++
	}
	if filter.PatientID != nil {
		clauses = append(clauses, fmt.Sprintf("patient_id = $%d", idx))
		args = append(args, *filter.PatientID)
		idx++
	}
	if filter.AssignedTo != "" {
		clauses = append(clauses, fmt.Sprintf("assigned_to = $%d", idx))
		args = append(args, filter.AssignedTo)
		idx++
	}

	query := base
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Create inserts a new task.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Task, error) {
	const query = `
        INSERT INTO tasks (title, notes, patient_id, patient_name, created_by, created_by_name, assigned_to, assigned_to_name, status, priority, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        RETURNING ` + taskColumns

	priority := strings.ToLower(strings.TrimSpace(input.Priority))
	if priority == "" {
		priority = PriorityMedium
	}

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Title),
		strings.TrimSpace(input.Notes),
		input.PatientID,
		strings.TrimSpace(input.PatientName),
		input.CreatedBy,
		input.CreatedByName,
		strings.TrimSpace(input.AssignedTo),
		strings.TrimSpace(input.AssignedToName),
		StatusTodo,
		priority,
		input.DueDate,
	)
	return scanTask(row)
}

// Update applies the given fields and returns the fresh row.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Task, error) {
	const query = `
        UPDATE tasks
        SET title = coalesce($2, title),
            notes = coalesce($3, notes),
            assigned_to = coalesce($4, assigned_to),
            assigned_to_name = coalesce($5, assigned_to_name),
            status = coalesce($6, status),
            priority = coalesce($7, priority),
            due_date = coalesce($8, due_date),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query, id, input.Title, input.Notes, input.AssignedTo, input.AssignedToName, input.Status, input.Priority, input.DueDate)
	return scanTask(row)
}

// Delete removes a task and its comments.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddComment appends one note to a task.
func (r *Repository) AddComment(ctx context.Context, c Comment) (Comment, error) {
	const query = `
        INSERT INTO task_comments (task_id, text, author_uid, author_name)
        VALUES ($1, $2, $3, $4)
        RETURNING id, task_id, text, author_uid, author_name, created_at
    `

	row := r.pool.QueryRow(ctx, query, c.TaskID, strings.TrimSpace(c.Text), c.AuthorUID, c.AuthorName)
	var out Comment
	if err := row.Scan(&out.ID, &out.TaskID, &out.Text, &out.AuthorUID, &out.AuthorName, &out.CreatedAt); err != nil {
		return Comment{}, err
	}
	return out, nil
}

// ListComments returns notes, oldest first.
func (r *Repository) ListComments(ctx context.Context, taskID uuid.UUID) ([]Comment, error) {
	const query = `
        SELECT id, task_id, text, author_uid, author_name, created_at
        FROM task_comments
        WHERE task_id = $1
        ORDER BY created_at
    `

	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.TaskID, &c.Text, &c.AuthorUID, &c.AuthorName, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
