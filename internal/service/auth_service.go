package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/caretrackhq/backend/internal/auth"
	"github.com/caretrackhq/backend/internal/repo"
	"github.com/caretrackhq/backend/internal/staff"
)

// AudienceStaff is the single token audience this API issues.
const AudienceStaff = "staff"

var (
	// ErrInvalidCredentials signals an authentication failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled signals a deactivated account.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrRefreshInvalid signals an invalid or expired refresh token.
	ErrRefreshInvalid = errors.New("invalid refresh token")
)

type staffReader interface {
	GetByEmail(ctx context.Context, email string) (staff.Profile, error)
	GetByUID(ctx context.Context, uid string) (staff.Profile, error)
}

type sessionStore interface {
	RotateRefreshToken(ctx context.Context, t repo.RefreshToken) (repo.RefreshToken, error)
	GetRefreshTokenByHash(ctx context.Context, tokenHash string) (repo.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}

type redisCommander interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// AuthService owns login, session refresh and logout.
type AuthService struct {
	staff      staffReader
	sessions   sessionStore
	redis      redisCommander
	jwt        *auth.JWTManager
	refreshTTL time.Duration
}

// NewAuthService wires the auth dependencies.
func NewAuthService(staffRepo staffReader, sessions sessionStore, redisClient *redis.Client, jwtMgr *auth.JWTManager, refreshTTL time.Duration) *AuthService {
	return &AuthService{staff: staffRepo, sessions: sessions, redis: redisClient, jwt: jwtMgr, refreshTTL: refreshTTL}
}

// JWT exposes the token manager for middleware wiring.
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// LoginResult is the standard authentication outcome.
type LoginResult struct {
	AccessToken   string
	RefreshToken  string
	Subject       string
	Roles         []string
	Profile       staff.Profile
	RefreshExpiry time.Time
}

func claimRoles(p staff.Profile) []string {
	if len(p.Roles) > 0 {
		return p.Roles
	}
	if p.Role != "" {
		return []string{p.Role}
	}
	return nil
}

// Login authenticates a staff member by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	profile, err := s.staff.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			log.Warn().Msg("login: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := auth.Verify(password, profile.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Msg("login: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, profile)
}

func (s *AuthService) startSession(ctx context.Context, profile staff.Profile) (*LoginResult, error) {
	if !profile.Active {
		return nil, ErrAccountDisabled
	}

	roles := claimRoles(profile)
	token, _, err := s.jwt.GenerateAccessToken(profile.UID, AudienceStaff, roles)
	if err != nil {
		return nil, err
	}

	rawRefresh, refreshHash, err := auth.GenerateRefreshToken()
	if err != nil {
		return nil, err
	}

	expires := time.Now().UTC().Add(s.refreshTTL)
	if err := s.persistRefresh(ctx, profile.UID, refreshHash, expires); err != nil {
		return nil, err
	}

	return &LoginResult{
		AccessToken:   token,
		RefreshToken:  rawRefresh,
		Subject:       profile.UID,
		Roles:         roles,
		Profile:       profile,
		RefreshExpiry: expires,
	}, nil
}

// Refresh rotates a refresh token into a fresh session.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (*LoginResult, error) {
	if rawToken == "" {
		return nil, ErrRefreshInvalid
	}

	hash := auth.HashRefreshToken(rawToken)
	record, err := s.sessions.GetRefreshTokenByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	if record.Revoked || time.Now().UTC().After(record.ExpiresAt) || record.Audience != AudienceStaff {
		return nil, ErrRefreshInvalid
	}

	redisKey := auth.RefreshRedisKey(AudienceStaff, hash)
	status, err := s.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		return nil, ErrRefreshInvalid
	}
	if err != nil {
		return nil, err
	}
	if status != "active" {
		return nil, ErrRefreshInvalid
	}

	profile, err := s.staff.GetByUID(ctx, record.Subject)
	if err != nil {
		if errors.Is(err, staff.ErrNotFound) {
			return nil, ErrRefreshInvalid
		}
		return nil, err
	}

	result, err := s.startSession(ctx, profile)
	if err != nil {
		return nil, err
	}

	// Rotation: revoke the consumed token in both stores.
	if err := s.sessions.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return nil, err
	}

	return result, nil
}

// Logout revokes the current refresh token. A blank token is a no-op.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	hash := auth.HashRefreshToken(rawToken)
	if err := s.sessions.RevokeRefreshToken(ctx, hash); err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	redisKey := auth.RefreshRedisKey(AudienceStaff, hash)
	if err := s.redis.Del(ctx, redisKey).Err(); err != nil && err != redis.Nil {
		return err
	}
	return nil
}

// GetMe returns the caller's profile and claim roles.
func (s *AuthService) GetMe(ctx context.Context, subject string) (staff.Profile, []string, error) {
	profile, err := s.staff.GetByUID(ctx, subject)
	if err != nil {
		return staff.Profile{}, nil, err
	}
	return profile, claimRoles(profile), nil
}

func (s *AuthService) persistRefresh(ctx context.Context, subject, hash string, expires time.Time) error {
	if _, err := s.sessions.RotateRefreshToken(ctx, repo.RefreshToken{
		Subject:   subject,
		Audience:  AudienceStaff,
		TokenHash: hash,
		ExpiresAt: expires,
	}); err != nil {
		return err
	}

	return s.redis.Set(ctx, auth.RefreshRedisKey(AudienceStaff, hash), "active", time.Until(expires)).Err()
}
