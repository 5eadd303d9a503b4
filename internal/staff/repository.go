package staff

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no profile matches.
var ErrNotFound = errors.New("profile not found")

const profileColumns = `uid, display_name, email, role, roles, active, coalesce(fcm_token, ''), password_hash, created_at, updated_at`

// Repository provides access to the staff profile table.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UID, &p.DisplayName, &p.Email, &p.Role, &p.Roles, &p.Active, &p.FCMToken, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Profile{}, ErrNotFound
		}
		return Profile{}, err
	}
	return p, nil
}

// GetByUID loads one profile.
func (r *Repository) GetByUID(ctx context.Context, uid string) (Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM staff_profiles WHERE uid = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, uid))
}

// GetByEmail loads one profile by lowercased email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM staff_profiles WHERE lower(email) = $1`
	return scanProfile(r.pool.QueryRow(ctx, query, strings.ToLower(strings.TrimSpace(email))))
}

// ListProfiles returns the full staff snapshot. The resolver depends on
// this being one bulk read per invocation; there is no incremental cache.
func (r *Repository) ListProfiles(ctx context.Context) ([]Profile, error) {
	const query = `SELECT ` + profileColumns + ` FROM staff_profiles ORDER BY display_name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// Create inserts a new profile.
func (r *Repository) Create(ctx context.Context, p Profile) (Profile, error) {
	const query = `
        INSERT INTO staff_profiles (uid, display_name, email, role, roles, active, password_hash)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query,
		p.UID,
		strings.TrimSpace(p.DisplayName),
		strings.ToLower(strings.TrimSpace(p.Email)),
		p.Role,
		p.Roles,
		p.Active,
		p.PasswordHash,
	)
	return scanProfile(row)
}

// Update applies the mutable fields and returns the fresh row.
func (r *Repository) Update(ctx context.Context, uid string, input UpdateInput) (Profile, error) {
	const query = `
        UPDATE staff_profiles
        SET display_name = coalesce($2, display_name),
            role = coalesce($3, role),
            active = coalesce($4, active),
            updated_at = now()
        WHERE uid = $1
        RETURNING ` + profileColumns

	row := r.pool.QueryRow(ctx, query, uid, input.DisplayName, input.Role, input.Active)
	return scanProfile(row)
}

// SaveToken registers or refreshes the push token for an account.
func (r *Repository) SaveToken(ctx context.Context, uid, token string) error {
	const query = `UPDATE staff_profiles SET fcm_token = $2, updated_at = now() WHERE uid = $1`
	tag, err := r.pool.Exec(ctx, query, uid, token)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearToken removes the push token, e.g. when permission is revoked.
func (r *Repository) ClearToken(ctx context.Context, uid string) error {
	const query = `UPDATE staff_profiles SET fcm_token = NULL, updated_at = now() WHERE uid = $1`
	tag, err := r.pool.Exec(ctx, query, uid)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
