package users

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-shoplist/internal/auth"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

var (
	ErrUsernameTaken      = errors.New("users: username already taken")
	ErrEmailTaken         = errors.New("users: email already registered")
	ErrRegistrationClosed = errors.New("users: registration requires an invite code")
	ErrInviteInvalid      = errors.New("users: invite code is invalid or used")
	ErrWrongPassword      = errors.New("users: current password does not match")
	ErrNotAdmin           = errors.New("users: admin privileges required")
)

// RegisterInput carries the signup form.
type RegisterInput struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	InviteCode  string `json:"invite_code"`
}

// UpdateProfileInput carries optional profile changes; nil fields are left
// untouched.
type UpdateProfileInput struct {
	DisplayName *string        `json:"display_name,omitempty"`
	Email       *string        `json:"email,omitempty"`
	Settings    domain.JSONMap `json:"settings,omitempty"`
}

// ApiKeyResult returns the plaintext key exactly once, at creation.
type ApiKeyResult struct {
	Key    *domain.ApiKey `json:"api_key"`
	Secret string         `json:"key"`
}

// Dependencies wires repositories and helpers into the service.
type Dependencies struct {
	Users               store.UserRepository
	Invites             store.InviteCodeRepository
	Keys                store.ApiKeyRepository
	Auth                *auth.Service
	RegistrationEnabled bool
	Logger              logger.Logger
	Clock               func() time.Time
}

// Service manages accounts, credentials, and invites.
type Service struct {
	users        store.UserRepository
	invites      store.InviteCodeRepository
	keys         store.ApiKeyRepository
	auth         *auth.Service
	openRegister bool
	log          logger.Logger
	clock        func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Users == nil {
		return nil, errors.New("users: user repository is required")
	}
	if deps.Auth == nil {
		return nil, errors.New("users: auth service is required")
	}
	log := deps.Logger
	if log == nil {
		log = &logger.Nop{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		users:        deps.Users,
		invites:      deps.Invites,
		keys:         deps.Keys,
		auth:         deps.Auth,
		openRegister: deps.RegistrationEnabled,
		log:          log,
		clock:        clock,
	}, nil
}

// RegistrationOpen reports whether signup works without an invite code. The
// very first account always registers freely so the instance can bootstrap.
func (s *Service) RegistrationOpen(ctx context.Context) (bool, error) {
	if s.openRegister {
		return true, nil
	}
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("users: count accounts: %w", err)
	}
	return count == 0, nil
}

// Register creates an account. The first account becomes admin; later
// signups need an invite code unless open registration is configured.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if username == "" || email == "" || input.Password == "" {
		return nil, domain.Invalidf("users: username, email, and password are required")
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	count, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("users: count accounts: %w", err)
	}
	firstUser := count == 0

	var invite *domain.InviteCode
	if !firstUser && !s.openRegister {
		invite, err = s.consumeInviteLookup(ctx, input.InviteCode)
		if err != nil {
			return nil, err
		}
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		IsAdmin:      firstUser,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("users: create account: %w", err)
	}

	if invite != nil {
		invite.IsUsed = true
		invite.UsedBy = user.ID
		if err := s.invites.Update(ctx, invite); err != nil {
			s.log.Warn("users: mark invite used",
				logger.Field{Key: "code", Value: invite.Code},
				logger.Field{Key: "error", Value: err})
		}
	}

	s.log.Info("users: account registered",
		logger.Field{Key: "user_id", Value: user.ID},
		logger.Field{Key: "admin", Value: user.IsAdmin})
	return user, nil
}

func (s *Service) consumeInviteLookup(ctx context.Context, code string) (*domain.InviteCode, error) {
	if s.invites == nil || strings.TrimSpace(code) == "" {
		return nil, ErrRegistrationClosed
	}
	invite, err := s.invites.GetByCode(ctx, strings.TrimSpace(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInviteInvalid
		}
		return nil, err
	}
	if invite.IsUsed {
		return nil, ErrInviteInvalid
	}
	if !invite.ExpiresAt.IsZero() && invite.ExpiresAt.Before(s.clock()) {
		return nil, ErrInviteInvalid
	}
	return invite, nil
}

// Login verifies credentials and returns the user plus a signed token.
func (s *Service) Login(ctx context.Context, username, password string) (*domain.User, string, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, "", auth.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if !user.IsActive {
		return nil, "", auth.ErrInactiveUser
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, "", auth.ErrInvalidCredentials
	}
	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UpdateProfile applies the provided fields to the user.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if input.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*input.DisplayName)
	}
	if input.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*input.Email))
		if email != user.Email {
			if _, err := s.users.GetByEmail(ctx, email); err == nil {
				return nil, ErrEmailTaken
			} else if !errors.Is(err, store.ErrNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Settings != nil {
		user.Settings = input.Settings
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword swaps the password after verifying the current one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.VerifyPassword(current, user.PasswordHash) {
		return ErrWrongPassword
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return s.users.Update(ctx, user)
}

// CreateApiKey mints a key for external tools. The plaintext is only
// available in the returned result.
func (s *Service) CreateApiKey(ctx context.Context, userID uuid.UUID, name string) (*ApiKeyResult, error) {
	if s.keys == nil {
		return nil, errors.New("users: api key repository is not configured")
	}
	plain, hash, prefix, err := auth.GenerateAPIKey()
	if err != nil {
		return nil, err
	}
	key := &domain.ApiKey{
		UserID:    userID,
		KeyHash:   hash,
		KeyPrefix: prefix,
		Name:      strings.TrimSpace(name),
		IsActive:  true,
	}
	if key.Name == "" {
		key.Name = "API key"
	}
	if err := s.keys.Create(ctx, key); err != nil {
		return nil, fmt.Errorf("users: create api key: %w", err)
	}
	return &ApiKeyResult{Key: key, Secret: plain}, nil
}

// ListApiKeys returns the user's keys, hashes excluded by the model's JSON
// tags.
func (s *Service) ListApiKeys(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error) {
	if s.keys == nil {
		return nil, nil
	}
	return s.keys.ListByUser(ctx, userID)
}

// RevokeApiKey deactivates one of the user's keys.
func (s *Service) RevokeApiKey(ctx context.Context, userID, keyID uuid.UUID) error {
	if s.keys == nil {
		return store.ErrNotFound
	}
	key, err := s.keys.GetByID(ctx, keyID)
	if err != nil {
		return err
	}
	if key.UserID != userID {
		return store.ErrNotFound
	}
	key.IsActive = false
	return s.keys.Update(ctx, key)
}

// CreateInvite mints an invite code. Only admins can invite when
// registration is closed.
func (s *Service) CreateInvite(ctx context.Context, createdBy uuid.UUID, expiresIn time.Duration) (*domain.InviteCode, error) {
	if s.invites == nil {
		return nil, errors.New("users: invite repository is not configured")
	}
	creator, err := s.users.GetByID(ctx, createdBy)
	if err != nil {
		return nil, err
	}
	if !creator.IsAdmin {
		return nil, ErrNotAdmin
	}
	code, err := randomCode(8)
	if err != nil {
		return nil, err
	}
	invite := &domain.InviteCode{
		Code:      code,
		CreatedBy: createdBy,
	}
	if expiresIn > 0 {
		invite.ExpiresAt = s.clock().Add(expiresIn)
	}
	if err := s.invites.Create(ctx, invite); err != nil {
		return nil, fmt.Errorf("users: create invite: %w", err)
	}
	return invite, nil
}

// ListInvites returns invites for admin review.
func (s *Service) ListInvites(ctx context.Context, requestedBy uuid.UUID) ([]domain.InviteCode, error) {
	if s.invites == nil {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, requestedBy)
	if err != nil {
		return nil, err
	}
	if !user.IsAdmin {
		return nil, ErrNotAdmin
	}
	result, err := s.invites.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

func randomCode(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("users: generate invite code: %w", err)
	}
	return strings.ToUpper(base64.RawURLEncoding.EncodeToString(buf)[:n]), nil
}
