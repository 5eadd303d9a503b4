package repo

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caretrackhq/backend/internal/db"
)

// Queries wraps the connection pool for session-token persistence.
type Queries struct {
	pool *pgxpool.Pool
}

// NewQueries creates the query helper.
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

const refreshColumns = `id, subject, audience, token_hash, expires_at, created_at, revoked`

func scanRefresh(row pgx.Row) (RefreshToken, error) {
	var t RefreshToken
	err := row.Scan(&t.ID, &t.Subject, &t.Audience, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt, &t.Revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RefreshToken{}, ErrNotFound
		}
		return RefreshToken{}, err
	}
	return t, nil
}

// RotateRefreshToken stores a newly minted token hash and revokes every
// other live token of the subject in the same transaction. One live
// refresh token per session.
func (q *Queries) RotateRefreshToken(ctx context.Context, t RefreshToken) (RefreshToken, error) {
	const insert = `
        INSERT INTO refresh_tokens (id, subject, audience, token_hash, expires_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + refreshColumns
	const revokeOthers = `
        UPDATE refresh_tokens
        SET revoked = true
        WHERE subject = $1 AND audience = $2 AND token_hash <> $3 AND NOT revoked
    `

	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}

	var stored RefreshToken
	err := db.WithTx(ctx, q.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		stored, err = scanRefresh(tx.QueryRow(ctx, insert, t.ID, t.Subject, t.Audience, t.TokenHash, t.ExpiresAt))
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, revokeOthers, t.Subject, t.Audience, t.TokenHash)
		return err
	})
	if err != nil {
		return RefreshToken{}, err
	}
	return stored, nil
}

// GetRefreshTokenByHash finds a token by its stored hash.
func (q *Queries) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (RefreshToken, error) {
	const query = `SELECT ` + refreshColumns + ` FROM refresh_tokens WHERE token_hash = $1`
	return scanRefresh(q.pool.QueryRow(ctx, query, tokenHash))
}

// RevokeRefreshToken revokes a single token by hash.
func (q *Queries) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	const query = `UPDATE refresh_tokens SET revoked = true WHERE token_hash = $1`
	cmd, err := q.pool.Exec(ctx, query, tokenHash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
