package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goliatone/go-shoplist/internal/access"
	"github.com/goliatone/go-shoplist/internal/categories"
	"github.com/goliatone/go-shoplist/internal/commands"
	"github.com/goliatone/go-shoplist/internal/events"
	"github.com/goliatone/go-shoplist/internal/items"
	"github.com/goliatone/go-shoplist/internal/lists"
	"github.com/goliatone/go-shoplist/internal/push"
	"github.com/goliatone/go-shoplist/internal/ratelimit"
	"github.com/goliatone/go-shoplist/internal/realtime"
	"github.com/goliatone/go-shoplist/internal/storage/memory"
	"github.com/goliatone/go-shoplist/internal/users"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"

	authsvc "github.com/goliatone/go-shoplist/internal/auth"
)

type serverFixture struct {
	srv *Server
}

func newServerFixture(t *testing.T, loginLimit, registerLimit *ratelimit.Limiter) *serverFixture {
	t.Helper()

	userRepo := memory.NewUserRepository()
	memberRepo := memory.NewListMemberRepository()
	itemRepo := memory.NewListItemRepository()
	listRepo := memory.NewShoppingListRepository(memberRepo, itemRepo)
	categoryRepo := memory.NewCategoryRepository()
	memoryRepo := memory.NewItemCategoryMemoryRepository()
	keyRepo := memory.NewApiKeyRepository()
	inviteRepo := memory.NewInviteCodeRepository()
	subRepo := memory.NewPushSubscriptionRepository()
	prefRepo := memory.NewNotificationPreferenceRepository()

	authSvc, err := authsvc.NewService(authsvc.Dependencies{
		Users:     userRepo,
		Keys:      keyRepo,
		SecretKey: "test-secret",
	})
	if err != nil {
		t.Fatalf("auth.NewService: %v", err)
	}

	accessSvc, err := access.NewService(access.Dependencies{
		Lists:   listRepo,
		Members: memberRepo,
	})
	if err != nil {
		t.Fatalf("access.NewService: %v", err)
	}

	registry := realtime.NewRegistry(&logger.Nop{})
	router, err := events.NewRouter(events.Dependencies{Broadcaster: registry})
	if err != nil {
		t.Fatalf("events.NewRouter: %v", err)
	}

	pushSvc, err := push.NewService(push.Dependencies{
		Resolver:      accessSvc,
		Lists:         listRepo,
		Subscriptions: subRepo,
		Preferences:   prefRepo,
	})
	if err != nil {
		t.Fatalf("push.NewService: %v", err)
	}

	userSvc, err := users.NewService(users.Dependencies{
		Users:               userRepo,
		Invites:             inviteRepo,
		Keys:                keyRepo,
		Auth:                authSvc,
		RegistrationEnabled: true,
	})
	if err != nil {
		t.Fatalf("users.NewService: %v", err)
	}

	listSvc, err := lists.NewService(lists.Dependencies{
		Lists:   listRepo,
		Members: memberRepo,
		Users:   userRepo,
		Access:  accessSvc,
		Router:  router,
	})
	if err != nil {
		t.Fatalf("lists.NewService: %v", err)
	}

	itemSvc, err := items.NewService(items.Dependencies{
		Items:      itemRepo,
		Memory:     memoryRepo,
		Categories: categoryRepo,
		Users:      userRepo,
		Access:     accessSvc,
		Router:     router,
	})
	if err != nil {
		t.Fatalf("items.NewService: %v", err)
	}

	categorySvc, err := categories.NewService(categories.Dependencies{
		Categories: categoryRepo,
	})
	if err != nil {
		t.Fatalf("categories.NewService: %v", err)
	}

	catalog, err := commands.NewCatalog(commands.Dependencies{
		Push:       pushSvc,
		Invites:    userSvc,
		Categories: categorySvc,
	})
	if err != nil {
		t.Fatalf("commands.NewCatalog: %v", err)
	}

	srv, err := New(Dependencies{
		Auth:          authSvc,
		Users:         userSvc,
		Lists:         listSvc,
		Items:         itemSvc,
		Categories:    categorySvc,
		Push:          pushSvc,
		Commands:      catalog,
		LoginLimit:    loginLimit,
		RegisterLimit: registerLimit,
		Logger:        &logger.Nop{},
	})
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return &serverFixture{srv: srv}
}

func (f *serverFixture) post(t *testing.T, path string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(http.MethodPost, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp, err := f.srv.App().Test(req, 5000)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	return resp
}

func (f *serverFixture) register(t *testing.T, username string) {
	t.Helper()
	resp := f.post(t, "/api/auth/register", map[string]string{
		"username": username,
		"email":    username + "@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
}

func (f *serverFixture) login(t *testing.T, username, password string) *http.Response {
	t.Helper()
	return f.post(t, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	})
}

func TestLoginRateLimitCountsOnlyFailures(t *testing.T) {
	f := newServerFixture(t, ratelimit.New(time.Minute, 3), nil)
	f.register(t, "alice")

	for i := 0; i < 2; i++ {
		if resp := f.login(t, "alice", "wrong-pass"); resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("bad login %d: status %d", i, resp.StatusCode)
		}
	}

	// Successful logins never count against the window, so a user can log
	// in more times than the failure cap allows.
	for i := 0; i < 4; i++ {
		if resp := f.login(t, "alice", "secret123"); resp.StatusCode != http.StatusOK {
			t.Fatalf("good login %d: status %d", i, resp.StatusCode)
		}
	}

	if resp := f.login(t, "alice", "wrong-pass"); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("third failure: status %d", resp.StatusCode)
	}

	resp := f.login(t, "alice", "secret123")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("saturated window: status %d, want 429", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatalf("429 response missing Retry-After header")
	}
	var body struct {
		RetryAfter int `json:"retry_after"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode 429 body: %v", err)
	}
	if body.RetryAfter <= 0 {
		t.Fatalf("retry_after = %d, want > 0", body.RetryAfter)
	}
}

func TestRegisterRateLimitCountsEverySubmission(t *testing.T) {
	f := newServerFixture(t, nil, ratelimit.New(time.Minute, 2))

	f.register(t, "alice")
	f.register(t, "bob")

	resp := f.post(t, "/api/auth/register", map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "secret123",
	})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("third registration: status %d, want 429", resp.StatusCode)
	}
}
