package staff

import (
	"time"

	"github.com/caretrackhq/backend/internal/rbac"
)

// Profile is a staff account. UID is the opaque platform identifier;
// Roles carries the legacy multi-role shape still present on older
// accounts. Accounts are deactivated, never deleted.
type Profile struct {
	UID          string     `json:"uid"`
	DisplayName  string     `json:"displayName"`
	Email        string     `json:"email"`
	Role         string     `json:"role"`
	Roles        []string   `json:"roles,omitempty"`
	Active       bool       `json:"active"`
	FCMToken     string     `json:"-"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    *time.Time `json:"updatedAt,omitempty"`
}

// Subject converts the profile into the shape access checks consume.
func (p Profile) Subject() rbac.Subject {
	return rbac.Subject{
		UID:         p.UID,
		DisplayName: p.DisplayName,
		Role:        p.Role,
		Roles:       p.Roles,
	}
}

// CreateInput carries fields for provisioning a new account.
type CreateInput struct {
	DisplayName string
	Email       string
	Role        string
	Password    string
}

// UpdateInput carries the mutable fields; nil means "leave unchanged".
type UpdateInput struct {
	DisplayName *string
	Role        *string
	Active      *bool
}
