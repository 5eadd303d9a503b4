package staff

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/caretrackhq/backend/internal/auth"
	"github.com/caretrackhq/backend/internal/rbac"
	"github.com/caretrackhq/backend/internal/util"
)

var (
	// ErrUnknownRole indicates a role outside the closed set.
	ErrUnknownRole = errors.New("unknown role")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// ProfileRepository is the persistence contract the service needs.
type ProfileRepository interface {
	GetByUID(ctx context.Context, uid string) (Profile, error)
	GetByEmail(ctx context.Context, email string) (Profile, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	Create(ctx context.Context, p Profile) (Profile, error)
	Update(ctx context.Context, uid string, input UpdateInput) (Profile, error)
	SaveToken(ctx context.Context, uid, token string) error
	ClearToken(ctx context.Context, uid string) error
}

// Service holds the staff account rules.
type Service struct {
	repo ProfileRepository
}

// NewService creates the service.
func NewService(repo ProfileRepository) *Service {
	return &Service{repo: repo}
}

// Get loads one profile.
func (s *Service) Get(ctx context.Context, uid string) (Profile, error) {
	return s.repo.GetByUID(ctx, uid)
}

// List returns the full staff snapshot.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.repo.ListProfiles(ctx)
}

// Create provisions a new account with a platform-shaped uid.
func (s *Service) Create(ctx context.Context, input CreateInput) (Profile, error) {
	if err := util.RequireString(input.DisplayName, "displayName"); err != nil {
		return Profile{}, err
	}
	if err := util.ValidateEmail(input.Email); err != nil {
		return Profile{}, err
	}
	if err := util.ValidatePassword(input.Password); err != nil {
		return Profile{}, err
	}
	role := rbac.Normalize(input.Role)
	if rbac.Rank(role) < 0 {
		return Profile{}, ErrUnknownRole
	}

	if _, err := s.repo.GetByEmail(ctx, input.Email); err == nil {
		return Profile{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Profile{}, err
	}

	hash, err := auth.Hash(input.Password)
	if err != nil {
		return Profile{}, err
	}

	return s.repo.Create(ctx, Profile{
		UID:          uuid.NewString(),
		DisplayName:  strings.TrimSpace(input.DisplayName),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		Role:         string(role),
		Active:       true,
		PasswordHash: hash,
	})
}

// Update changes name, role or active flag. Accounts are deactivated
// through this path, never deleted.
func (s *Service) Update(ctx context.Context, uid string, input UpdateInput) (Profile, error) {
	if input.Role != nil {
		role := rbac.Normalize(*input.Role)
		if rbac.Rank(role) < 0 {
			return Profile{}, ErrUnknownRole
		}
		normalized := string(role)
		input.Role = &normalized
	}
	if input.DisplayName != nil && strings.TrimSpace(*input.DisplayName) == "" {
		return Profile{}, errors.New("displayName must not be empty")
	}
	return s.repo.Update(ctx, uid, input)
}

// SaveToken registers the caller's push token.
func (s *Service) SaveToken(ctx context.Context, uid, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token must not be empty")
	}
	return s.repo.SaveToken(ctx, uid, token)
}

// ClearToken removes the caller's push token.
func (s *Service) ClearToken(ctx context.Context, uid string) error {
	return s.repo.ClearToken(ctx, uid)
}
