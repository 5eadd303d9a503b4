package repo

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken models one row of the refresh_tokens table. Subject is
// the staff uid the token was minted for; only the SHA-256 hash of the
// raw token is ever stored.
type RefreshToken struct {
	ID        uuid.UUID
	Subject   string
	Audience  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
}
