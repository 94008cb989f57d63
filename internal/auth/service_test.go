package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-shoplist/internal/storage/memory"
	"github.com/goliatone/go-shoplist/pkg/domain"
)

type authFixture struct {
	svc   *Service
	users *memory.UserRepository
	keys  *memory.ApiKeyRepository
	now   time.Time
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	f := &authFixture{
		users: memory.NewUserRepository(),
		keys:  memory.NewApiKeyRepository(),
		now:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	svc, err := NewService(Dependencies{
		Users:       f.users,
		Keys:        f.keys,
		SecretKey:   "test-secret",
		TokenExpiry: time.Hour,
		Clock:       func() time.Time { return f.now },
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func (f *authFixture) addUser(t *testing.T, active bool) *domain.User {
	t.Helper()
	user := &domain.User{
		Username: "alice",
		Email:    "alice@example.com",
		IsActive: active,
	}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestIssueAndVerifyToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, true)

	token, err := f.svc.IssueToken(user.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	got, err := f.svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != user.ID {
		t.Fatalf("Verify resolved %s, want %s", got, user.ID)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, true)

	token, err := f.svc.IssueToken(user.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	f.now = f.now.Add(2 * time.Hour)
	if _, err := f.svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyWrongSignature(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, true)

	other, err := NewService(Dependencies{
		Users:     f.users,
		SecretKey: "different-secret",
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	token, err := other.IssueToken(user.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := f.svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for mis-signed token, got %v", err)
	}
}

func TestVerifyGarbageToken(t *testing.T) {
	f := newAuthFixture(t)
	if _, err := f.svc.Verify(context.Background(), "not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyInactiveUser(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, false)

	token, err := f.svc.IssueToken(user.ID)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := f.svc.Verify(context.Background(), token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for disabled account, got %v", err)
	}
}

func TestAuthenticateAPIKey(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, true)

	plain, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	record := &domain.ApiKey{
		UserID:    user.ID,
		KeyHash:   hash,
		KeyPrefix: prefix,
		Name:      "test key",
		IsActive:  true,
	}
	if err := f.keys.Create(context.Background(), record); err != nil {
		t.Fatalf("create key: %v", err)
	}

	got, err := f.svc.Authenticate(context.Background(), plain)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("Authenticate resolved wrong user")
	}

	stored, err := f.keys.GetByID(context.Background(), record.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !stored.LastUsed.Equal(f.now) {
		t.Fatalf("last-used not stamped, got %v", stored.LastUsed)
	}
}

func TestAuthenticateRevokedAPIKey(t *testing.T) {
	f := newAuthFixture(t)
	user := f.addUser(t, true)

	plain, hash, prefix, err := GenerateAPIKey()
	if err != nil {
		t.Fatalf("GenerateAPIKey: %v", err)
	}
	record := &domain.ApiKey{
		UserID:    user.ID,
		KeyHash:   hash,
		KeyPrefix: prefix,
		Name:      "revoked key",
		IsActive:  false,
	}
	if err := f.keys.Create(context.Background(), record); err != nil {
		t.Fatalf("create key: %v", err)
	}

	if _, err := f.svc.Authenticate(context.Background(), plain); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for revoked key, got %v", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2!")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !VerifyPassword("hunter2!", hash) {
		t.Fatalf("correct password rejected")
	}
	if VerifyPassword("wrong", hash) {
		t.Fatalf("wrong password accepted")
	}
}
