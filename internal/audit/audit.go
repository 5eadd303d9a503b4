package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Entry is one audit trail record.
type Entry struct {
	ID        uuid.UUID      `json:"id"`
	ActorUID  string         `json:"actorUid"`
	Action    string         `json:"action"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entityId"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Recorder accepts audit entries. Recording never fails the calling
// operation; failures are logged and dropped.
type Recorder interface {
	Record(ctx context.Context, entry Entry)
}

// Repository persists audit entries in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates the repository instance.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Record inserts one entry, logging on failure.
func (r *Repository) Record(ctx context.Context, entry Entry) {
	const query = `
        INSERT INTO audit_log (actor_uid, action, entity, entity_id, detail)
        VALUES ($1, $2, $3, $4, $5)
    `

	if _, err := r.pool.Exec(ctx, query, entry.ActorUID, entry.Action, entry.Entity, entry.EntityID, entry.Detail); err != nil {
		log.Warn().Err(err).Str("action", entry.Action).Msg("audit: record failed")
	}
}

// List returns the most recent entries.
func (r *Repository) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	const query = `
        SELECT id, actor_uid, action, entity, entity_id, detail, created_at
        FROM audit_log
        ORDER BY created_at DESC
        LIMIT $1
    `

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorUID, &e.Action, &e.Entity, &e.EntityID, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
