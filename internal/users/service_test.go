package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-shoplist/internal/auth"
	"github.com/goliatone/go-shoplist/internal/storage/memory"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/google/uuid"
)

type usersFixture struct {
	svc     *Service
	users   *memory.UserRepository
	invites *memory.InviteCodeRepository
	keys    *memory.ApiKeyRepository
	now     time.Time
}

func newUsersFixture(t *testing.T, openRegistration bool) *usersFixture {
	t.Helper()
	f := &usersFixture{
		users:   memory.NewUserRepository(),
		invites: memory.NewInviteCodeRepository(),
		keys:    memory.NewApiKeyRepository(),
		now:     time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	authSvc, err := auth.NewService(auth.Dependencies{
		Users:     f.users,
		Keys:      f.keys,
		SecretKey: "test-secret",
		Clock:     clock,
	})
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}

	svc, err := NewService(Dependencies{
		Users:               f.users,
		Invites:             f.invites,
		Keys:                f.keys,
		Auth:                authSvc,
		RegistrationEnabled: openRegistration,
		Clock:               clock,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func (f *usersFixture) register(t *testing.T, username, invite string) *domain.User {
	t.Helper()
	user, err := f.svc.Register(context.Background(), RegisterInput{
		Username:   username,
		Email:      username + "@example.com",
		Password:   "secret123",
		InviteCode: invite,
	})
	if err != nil {
		t.Fatalf("Register(%s): %v", username, err)
	}
	return user
}

func TestRegisterFirstUserBecomesAdmin(t *testing.T) {
	f := newUsersFixture(t, false)

	open, err := f.svc.RegistrationOpen(context.Background())
	if err != nil || !open {
		t.Fatalf("bootstrap registration should be open, got %v %v", open, err)
	}

	first := f.register(t, "alice", "")
	if !first.IsAdmin {
		t.Fatalf("first account should be admin")
	}

	open, err = f.svc.RegistrationOpen(context.Background())
	if err != nil || open {
		t.Fatalf("registration should close after bootstrap, got %v %v", open, err)
	}
}

func TestRegisterClosedRequiresInvite(t *testing.T) {
	f := newUsersFixture(t, false)
	admin := f.register(t, "alice", "")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "bob",
		Email:    "bob@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, ErrRegistrationClosed) {
		t.Fatalf("expected ErrRegistrationClosed, got %v", err)
	}

	invite, err := f.svc.CreateInvite(context.Background(), admin.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	bob := f.register(t, "bob", invite.Code)
	if bob.IsAdmin {
		t.Fatalf("invited user should not be admin")
	}

	stored, err := f.invites.GetByCode(context.Background(), invite.Code)
	if err != nil {
		t.Fatalf("GetByCode: %v", err)
	}
	if !stored.IsUsed || stored.UsedBy != bob.ID {
		t.Fatalf("invite not marked used: %+v", stored)
	}

	// A consumed invite cannot be reused.
	_, err = f.svc.Register(context.Background(), RegisterInput{
		Username:   "carol",
		Email:      "carol@example.com",
		Password:   "secret123",
		InviteCode: invite.Code,
	})
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("expected ErrInviteInvalid for reused invite, got %v", err)
	}
}

func TestRegisterExpiredInvite(t *testing.T) {
	f := newUsersFixture(t, false)
	admin := f.register(t, "alice", "")

	invite, err := f.svc.CreateInvite(context.Background(), admin.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateInvite: %v", err)
	}

	f.now = f.now.Add(2 * time.Hour)
	_, err = f.svc.Register(context.Background(), RegisterInput{
		Username:   "bob",
		Email:      "bob@example.com",
		Password:   "secret123",
		InviteCode: invite.Code,
	})
	if !errors.Is(err, ErrInviteInvalid) {
		t.Fatalf("expected ErrInviteInvalid for expired invite, got %v", err)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	f := newUsersFixture(t, true)
	f.register(t, "alice", "")

	_, err := f.svc.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}

	_, err = f.svc.Register(context.Background(), RegisterInput{
		Username: "alice2",
		Email:    "ALICE@example.com",
		Password: "secret123",
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken for case-insensitive email, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	f := newUsersFixture(t, true)
	user := f.register(t, "alice", "")

	got, token, err := f.svc.Login(context.Background(), "alice", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != user.ID || token == "" {
		t.Fatalf("Login returned wrong user or empty token")
	}

	if _, _, err := f.svc.Login(context.Background(), "alice", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, _, err := f.svc.Login(context.Background(), "nobody", "secret123"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown user should yield ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	f := newUsersFixture(t, true)
	user := f.register(t, "alice", "")
	user.IsActive = false
	if err := f.users.Update(context.Background(), user); err != nil {
		t.Fatalf("Update: %v", err)
	}

	if _, _, err := f.svc.Login(context.Background(), "alice", "secret123"); !errors.Is(err, auth.ErrInactiveUser) {
		t.Fatalf("expected ErrInactiveUser, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	f := newUsersFixture(t, true)
	user := f.register(t, "alice", "")

	if err := f.svc.ChangePassword(context.Background(), user.ID, "wrong", "next12345"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
	if err := f.svc.ChangePassword(context.Background(), user.ID, "secret123", "next12345"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, _, err := f.svc.Login(context.Background(), "alice", "next12345"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestApiKeyLifecycle(t *testing.T) {
	f := newUsersFixture(t, true)
	user := f.register(t, "alice", "")

	result, err := f.svc.CreateApiKey(context.Background(), user.ID, "  ")
	if err != nil {
		t.Fatalf("CreateApiKey: %v", err)
	}
	if result.Secret == "" {
		t.Fatalf("plaintext key missing from creation result")
	}
	if result.Key.Name != "API key" {
		t.Fatalf("blank name should fall back to default, got %q", result.Key.Name)
	}

	keys, err := f.svc.ListApiKeys(context.Background(), user.ID)
	if err != nil || len(keys) != 1 {
		t.Fatalf("ListApiKeys: %v, %d keys", err, len(keys))
	}

	// Someone else's key id renders as not-found, not forbidden.
	stranger := f.register(t, "bob", "")
	if err := f.svc.RevokeApiKey(context.Background(), stranger.ID, result.Key.ID); err == nil {
		t.Fatalf("expected error revoking another user's key")
	}

	if err := f.svc.RevokeApiKey(context.Background(), user.ID, result.Key.ID); err != nil {
		t.Fatalf("RevokeApiKey: %v", err)
	}
	stored, err := f.keys.GetByID(context.Background(), result.Key.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.IsActive {
		t.Fatalf("revoked key still active")
	}
}

func TestCreateInviteRequiresAdmin(t *testing.T) {
	f := newUsersFixture(t, true)
	f.register(t, "alice", "") // admin
	bob := f.register(t, "bob", "")

	if _, err := f.svc.CreateInvite(context.Background(), bob.ID, 0); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
	if _, err := f.svc.ListInvites(context.Background(), bob.ID); !errors.Is(err, ErrNotAdmin) {
		t.Fatalf("expected ErrNotAdmin, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	f := newUsersFixture(t, true)
	user := f.register(t, "alice", "")
	f.register(t, "bob", "")

	name := "Alice A."
	updated, err := f.svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{DisplayName: &name})
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if updated.DisplayName != "Alice A." {
		t.Fatalf("display name not applied: %q", updated.DisplayName)
	}

	taken := "bob@example.com"
	if _, err := f.svc.UpdateProfile(context.Background(), user.ID, UpdateProfileInput{Email: &taken}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	_, err = f.svc.UpdateProfile(context.Background(), uuid.New(), UpdateProfileInput{DisplayName: &name})
	if err == nil {
		t.Fatalf("expected error for unknown user")
	}
}
