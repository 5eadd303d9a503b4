package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caretrackhq/backend/internal/auth"
	"github.com/caretrackhq/backend/internal/repo"
	"github.com/caretrackhq/backend/internal/staff"
)

type stubStaff struct {
	profiles map[string]staff.Profile
}

func (s *stubStaff) GetByEmail(_ context.Context, email string) (staff.Profile, error) {
	for _, p := range s.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return staff.Profile{}, staff.ErrNotFound
}

func (s *stubStaff) GetByUID(_ context.Context, uid string) (staff.Profile, error) {
	p, ok := s.profiles[uid]
	if !ok {
		return staff.Profile{}, staff.ErrNotFound
	}
	return p, nil
}

type stubSessions struct {
	tokens map[string]repo.RefreshToken
}

func (s *stubSessions) RotateRefreshToken(_ context.Context, t repo.RefreshToken) (repo.RefreshToken, error) {
	for hash, existing := range s.tokens {
		if existing.Subject == t.Subject && existing.Audience == t.Audience && hash != t.TokenHash {
			existing.Revoked = true
			s.tokens[hash] = existing
		}
	}
	s.tokens[t.TokenHash] = t
	return t, nil
}

func (s *stubSessions) GetRefreshTokenByHash(_ context.Context, tokenHash string) (repo.RefreshToken, error) {
	t, ok := s.tokens[tokenHash]
	if !ok {
		return repo.RefreshToken{}, repo.ErrNotFound
	}
	return t, nil
}

func (s *stubSessions) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	t, ok := s.tokens[tokenHash]
	if !ok {
		return repo.ErrNotFound
	}
	t.Revoked = true
	s.tokens[tokenHash] = t
	return nil
}

type stubRedis struct {
	store map[string]string
}

func (s *stubRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	s.store[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (s *stubRedis) Get(_ context.Context, key string) *redis.StringCmd {
	v, ok := s.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (s *stubRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := s.store[k]; ok {
			delete(s.store, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

const testUID = "uid_tester_0123456789abcd"

func newTestAuthService(t *testing.T, active bool) (*AuthService, *stubSessions, *stubRedis) {
	t.Helper()

	hash, err := auth.Hash("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}

	staffRepo := &stubStaff{profiles: map[string]staff.Profile{
		testUID: {
			UID:          testUID,
			DisplayName:  "Terry Tester",
			Email:        "terry@clinic.test",
			Role:         "nurse",
			Active:       active,
			PasswordHash: hash,
		},
	}}
	sessions := &stubSessions{tokens: map[string]repo.RefreshToken{}}
	rdb := &stubRedis{store: map[string]string{}}

	svc := &AuthService{
		staff:      staffRepo,
		sessions:   sessions,
		redis:      rdb,
		jwt:        auth.NewJWTManager("test-secret", time.Minute),
		refreshTTL: time.Hour,
	}
	return svc, sessions, rdb
}

func TestLoginAndRefreshRotation(t *testing.T) {
	svc, sessions, rdb := newTestAuthService(t, true)
	ctx := context.Background()

	result, err := svc.Login(ctx, "Terry@clinic.test", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if result.Subject != testUID {
		t.Fatalf("subject = %q", result.Subject)
	}

	firstHash := auth.HashRefreshToken(result.RefreshToken)
	if _, ok := rdb.store[auth.RefreshRedisKey(AudienceStaff, firstHash)]; !ok {
		t.Fatal("refresh marker missing from redis")
	}

	rotated, err := svc.Refresh(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if rotated.RefreshToken == result.RefreshToken {
		t.Fatal("refresh token was not rotated")
	}
	if !sessions.tokens[firstHash].Revoked {
		t.Fatal("consumed token not revoked")
	}

	// The consumed token must not refresh a second time.
	if _, err := svc.Refresh(ctx, result.RefreshToken); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t, true)

	if _, err := svc.Login(context.Background(), "terry@clinic.test", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t, true)

	if _, err := svc.Login(context.Background(), "nobody@clinic.test", "s3cret-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	svc, _, _ := newTestAuthService(t, false)

	if _, err := svc.Login(context.Background(), "terry@clinic.test", "s3cret-pass"); !errors.Is(err, ErrAccountDisabled) {
		t.Fatalf("expected ErrAccountDisabled, got %v", err)
	}
}

func TestRefreshUnknownToken(t *testing.T) {
	svc, _, _ := newTestAuthService(t, true)

	if _, err := svc.Refresh(context.Background(), "never-issued"); !errors.Is(err, ErrRefreshInvalid) {
		t.Fatalf("expected ErrRefreshInvalid, got %v", err)
	}
}

func TestLogoutRevokesBothStores(t *testing.T) {
	svc, sessions, rdb := newTestAuthService(t, true)
	ctx := context.Background()

	result, err := svc.Login(ctx, "terry@clinic.test", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := svc.Logout(ctx, result.RefreshToken); err != nil {
		t.Fatalf("logout: %v", err)
	}

	hash := auth.HashRefreshToken(result.RefreshToken)
	if !sessions.tokens[hash].Revoked {
		t.Fatal("token not revoked in store")
	}
	if _, ok := rdb.store[auth.RefreshRedisKey(AudienceStaff, hash)]; ok {
		t.Fatal("redis marker not deleted")
	}
}
