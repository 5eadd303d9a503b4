package report

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no report matches.
var ErrNotFound = errors.New("report not found")

// Report is one structured section submission for a patient. Content is
// the free-form section payload as submitted by the form.
type Report struct {
	ID              uuid.UUID      `json:"id"`
	PatientID       uuid.UUID      `json:"patientId"`
	PatientName     string         `json:"patientName,omitempty"`
	Section         string         `json:"section"`
	Content         map[string]any `json:"content"`
	SubmittedBy     string         `json:"submittedBy"`
	SubmittedByName string         `json:"submittedByName,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       *time.Time     `json:"updatedAt,omitempty"`
}

const reportColumns = `id, patient_id, coalesce(patient_name, ''), section, content, submitted_by, coalesce(submitted_by_name, ''), created_at, updated_at`

// Repository provides access to the reports table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanReport(row pgx.Row) (Report, error) {
	var rep Report
	err := row.Scan(&rep.ID, &rep.PatientID, &rep.PatientName, &rep.Section, &rep.Content, &rep.SubmittedBy, &rep.SubmittedByName, &rep.CreatedAt, &rep.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Report{}, ErrNotFound
		}
		return Report{}, err
	}
	return rep, nil
}

// Get loads one report.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Report, error) {
	const query = `SELECT ` + reportColumns + ` FROM reports WHERE id = $1`
	return scanReport(r.pool.QueryRow(ctx, query, id))
}

// Create inserts a new report.
func (r *Repository) Create(ctx context.Context, rep Report) (Report, error) {
	const query = `
        INSERT INTO reports (patient_id, patient_name, section, content, submitted_by, submitted_by_name)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING ` + reportColumns

	row := r.pool.QueryRow(ctx, query, rep.PatientID, rep.PatientName, rep.Section, rep.Content, rep.SubmittedBy, rep.SubmittedByName)
	return scanReport(row)
}

// UpdateContent replaces the payload of an existing report.
func (r *Repository) UpdateContent(ctx context.Context, id uuid.UUID, content map[string]any) (Report, error) {
	const query = `
        UPDATE reports
        SET content = $2, updated_at = now()
        WHERE id = $1
        RETURNING ` + reportColumns

	return scanReport(r.pool.QueryRow(ctx, query, id, content))
}

// ListByPatient returns a patient's reports, newest first.
func (r *Repository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Report, error) {
	const query = `
        SELECT ` + reportColumns + `
        FROM reports
        WHERE patient_id = $1
        ORDER BY created_at DESC
    `

	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
