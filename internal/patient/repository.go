package patient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no patient record matches.
var ErrNotFound = errors.New("patient not found")

const patientColumns = `id, name, coalesce(ward, ''), coalesce(bed, ''), status, coalesce(diagnosis, ''), coalesce(assigned_therapist, ''), assigned_doctors, created_by, admitted_at, discharged_at, created_at, updated_at`

// Repository provides access to patient tables.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanPatient(row pgx.Row) (Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Ward, &p.Bed, &p.Status, &p.Diagnosis, &p.AssignedTherapist, &p.AssignedDoctors, &p.CreatedBy, &p.AdmittedAt, &p.DischargedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Patient{}, ErrNotFound
		}
		return Patient{}, err
	}
	return p, nil
}

// Get loads one patient.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Patient, error) {
	const query = `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return scanPatient(r.pool.QueryRow(ctx, query, id))
}

// List returns patients, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string) ([]Patient, error) {
	base := `SELECT ` + patientColumns + ` FROM patients`

	var args []any
	query := base
	if status != "" {
		query += fmt.Sprintf(" WHERE status = $%d", len(args)+1)
		args = append(args, strings.ToLower(status))
	}
	query += " ORDER BY name"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}

// Create admits a new patient.
func (r *Repository) Create(ctx context.Context, input CreateInput) (Patient, error) {
	const query = `
        INSERT INTO patients (name, ward, bed, status, diagnosis, assigned_therapist, assigned_doctors, created_by, admitted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, coalesce($9, now()))
        RETURNING ` + patientColumns

	doctors := input.AssignedDoctors
	if doctors == nil {
		doctors = []string{}
	}

	row := r.pool.QueryRow(ctx, query,
		strings.TrimSpace(input.Name),
		strings.TrimSpace(input.Ward),
		strings.TrimSpace(input.Bed),
		StatusActive,
		strings.TrimSpace(input.Diagnosis),
		strings.TrimSpace(input.AssignedTherapist),
		doctors,
		input.CreatedBy,
		input.AdmittedAt,
	)
	return scanPatient(row)
}

// Update applies the mutable fields and returns the fresh row.
// AssignedDoctors replaces the whole list when non-nil.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (Patient, error) {
	const query = `
        UPDATE patients
        SET name = coalesce($2, name),
            ward = coalesce($3, ward),
            bed = coalesce($4, bed),
            diagnosis = coalesce($5, diagnosis),
            assigned_therapist = coalesce($6, assigned_therapist),
            assigned_doctors = coalesce($7, assigned_doctors),
            updated_at = now()
        WHERE id = $1
        RETURNING ` + patientColumns

	row := r.pool.QueryRow(ctx, query, id, input.Name, input.Ward, input.Bed, input.Diagnosis, input.AssignedTherapist, input.AssignedDoctors)
	return scanPatient(row)
}

// Discharge flips the status and stamps the discharge date.
func (r *Repository) Discharge(ctx context.Context, id uuid.UUID) (Patient, error) {
	const query = `
        UPDATE patients
        SET status = $2, discharged_at = now(), updated_at = now()
        WHERE id = $1
        RETURNING ` + patientColumns

	return scanPatient(r.pool.QueryRow(ctx, query, id, StatusDischarged))
}

// AddDiagnosis appends one history entry.
func (r *Repository) AddDiagnosis(ctx context.Context, entry DiagnosisEntry) (DiagnosisEntry, error) {
	const query = `
        INSERT INTO diagnosis_history (patient_id, diagnosis, added_by, added_by_name)
        VALUES ($1, $2, $3, $4)
        RETURNING id, patient_id, diagnosis, added_by, added_by_name, created_at
    `

	row := r.pool.QueryRow(ctx, query, entry.PatientID, strings.TrimSpace(entry.Diagnosis), entry.AddedBy, entry.AddedByName)
	var e DiagnosisEntry
	if err := row.Scan(&e.ID, &e.PatientID, &e.Diagnosis, &e.AddedBy, &e.AddedByName, &e.CreatedAt); err != nil {
		return DiagnosisEntry{}, err
	}
	return e, nil
}

// ListDiagnosis returns the history, newest first.
func (r *Repository) ListDiagnosis(ctx context.Context, patientID uuid.UUID) ([]DiagnosisEntry, error) {
	const query = `
        SELECT id, patient_id, diagnosis, added_by, added_by_name, created_at
        FROM diagnosis_history
        WHERE patient_id = $1
        ORDER BY created_at DESC
    `

	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []DiagnosisEntry
	for rows.Next() {
		var e DiagnosisEntry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Diagnosis, &e.AddedBy, &e.AddedByName, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddComment appends one staff note.
func (r *Repository) AddComment(ctx context.Context, c Comment) (Comment, error) {
	const query = `
        INSERT INTO patient_comments (patient_id, text, author_uid, author_name)
        VALUES ($1, $2, $3, $4)
        RETURNING id, patient_id, text, author_uid, author_name, created_at
    `

	row := r.pool.QueryRow(ctx, query, c.PatientID, strings.TrimSpace(c.Text), c.AuthorUID, c.AuthorName)
	var out Comment
	if err := row.Scan(&out.ID, &out.PatientID, &out.Text, &out.AuthorUID, &out.AuthorName, &out.CreatedAt); err != nil {
		return Comment{}, err
	}
	return out, nil
}

// ListComments returns notes, newest first.
func (r *Repository) ListComments(ctx context.Context, patientID uuid.UUID) ([]Comment, error) {
	const query = `
        SELECT id, patient_id, text, author_uid, author_name, created_at
        FROM patient_comments
        WHERE patient_id = $1
        ORDER BY created_at DESC
    `

	rows, err := r.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.PatientID, &c.Text, &c.AuthorUID, &c.AuthorName, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
