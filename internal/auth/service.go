package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// API keys are prefixed so they can be told apart from JWTs and listed
// without exposing material.
const apiKeyPrefix = "kc_"

var (
	// ErrInvalidCredentials covers bad username/password pairs.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	// ErrInvalidToken covers expired, malformed, or revoked bearer tokens.
	ErrInvalidToken = errors.New("auth: invalid or expired token")
	// ErrInactiveUser means the credential was valid but the account is disabled.
	ErrInactiveUser = errors.New("auth: account disabled")
)

// Service issues and verifies credentials: HS256 JWTs for interactive
// sessions and hashed API keys for external tools.
type Service struct {
	users  store.UserRepository
	keys   store.ApiKeyRepository
	secret []byte
	expiry time.Duration
	log    logger.Logger
	clock  func() time.Time
}

// Dependencies wires repositories and signing material into the service.
type Dependencies struct {
	Users       store.UserRepository
	Keys        store.ApiKeyRepository
	SecretKey   string
	TokenExpiry time.Duration
	Logger      logger.Logger
	Clock       func() time.Time
}

// NewService constructs the auth service.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Users == nil {
		return nil, errors.New("auth: user repository is required")
	}
	if deps.SecretKey == "" {
		return nil, errors.New("auth: secret key is required")
	}
	if deps.TokenExpiry <= 0 {
		deps.TokenExpiry = 24 * time.Hour
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{
		users:  deps.Users,
		keys:   deps.Keys,
		secret: []byte(deps.SecretKey),
		expiry: deps.TokenExpiry,
		log:    deps.Logger,
		clock:  deps.Clock,
	}, nil
}

// HashPassword derives a bcrypt hash for storage.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// VerifyPassword reports whether plain matches the stored hash.
func VerifyPassword(plain, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

// IssueToken signs a session token for the user.
func (s *Service) IssueToken(userID uuid.UUID) (string, error) {
	now := s.clock()
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"iat": jwt.NewNumericDate(now),
		"exp": jwt.NewNumericDate(now.Add(s.expiry)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify resolves a JWT to an active user's ID. Expired, malformed, or
// mis-signed tokens and disabled accounts all yield ErrInvalidToken; the
// realtime handshake relies on this single failure class.
func (s *Service) Verify(ctx context.Context, tokenString string) (uuid.UUID, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(s.clock))
	if err != nil || !parsed.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return uuid.Nil, ErrInvalidToken
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil || !user.IsActive {
		return uuid.Nil, ErrInvalidToken
	}
	return user.ID, nil
}

// Authenticate resolves a bearer credential (JWT or API key) to a user.
// JWTs are tried first; anything carrying the API key prefix goes through
// the hashed key lookup instead.
func (s *Service) Authenticate(ctx context.Context, bearer string) (*domain.User, error) {
	bearer = strings.TrimSpace(bearer)
	if bearer == "" {
		return nil, ErrInvalidToken
	}

	if strings.HasPrefix(bearer, apiKeyPrefix) {
		return s.authenticateAPIKey(ctx, bearer)
	}

	userID, err := s.Verify(ctx, bearer)
	if err != nil {
		return nil, err
	}
	return s.users.GetByID(ctx, userID)
}

func (s *Service) authenticateAPIKey(ctx context.Context, key string) (*domain.User, error) {
	if s.keys == nil {
		return nil, ErrInvalidToken
	}

	record, err := s.keys.GetByHash(ctx, HashAPIKey(key))
	if err != nil || !record.IsActive {
		return nil, ErrInvalidToken
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !user.IsActive {
		return nil, ErrInactiveUser
	}

	record.LastUsed = s.clock().UTC()
	if err := s.keys.Update(ctx, record); err != nil {
		s.log.Warn("api key last-used update failed",
			logger.Field{Key: "key_prefix", Value: record.KeyPrefix},
			logger.Field{Key: "error", Value: err})
	}
	return user, nil
}

// GenerateAPIKey mints a fresh key, returning the plaintext (shown once),
// its storage hash, and the listing prefix.
func GenerateAPIKey() (plain, hash, prefix string, err error) {
	buf := make([]byte, 32)
	if _, err = rand.Read(buf); err != nil {
		return "", "", "", err
	}
	plain = apiKeyPrefix + base64.RawURLEncoding.EncodeToString(buf)
	hash = HashAPIKey(plain)
	prefix = plain[:len(apiKeyPrefix)+8]
	return plain, hash, prefix, nil
}

// HashAPIKey maps key material to its storage digest.
func HashAPIKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
