package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
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
	"github.com/goliatone/go-shoplist/internal/server"
	"github.com/goliatone/go-shoplist/internal/users"
	"github.com/goliatone/go-shoplist/pkg/config"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"

	authsvc "github.com/goliatone/go-shoplist/internal/auth"
	bunrepo "github.com/goliatone/go-shoplist/internal/storage/bun"
)

func main() {
	log := logger.Default().With(logger.Field{Key: "app", Value: "shoplist"})

	if err := run(log); err != nil {
		log.Error("fatal", logger.Field{Key: "error", Value: err})
		os.Exit(1)
	}
}

func run(log logger.Logger) error {
	ctx := context.Background()
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	db, err := bunrepo.OpenDatabase(ctx, cfg.Persistence.Driver, cfg.Persistence.DSN, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := bunrepo.SeedDefaults(ctx, db); err != nil {
		return err
	}

	userRepo := bunrepo.NewUserRepository(db)
	listRepo := bunrepo.NewShoppingListRepository(db)
	memberRepo := bunrepo.NewListMemberRepository(db)
	categoryRepo := bunrepo.NewCategoryRepository(db)
	itemRepo := bunrepo.NewListItemRepository(db)
	memoryRepo := bunrepo.NewItemCategoryMemoryRepository(db)
	keyRepo := bunrepo.NewApiKeyRepository(db)
	inviteRepo := bunrepo.NewInviteCodeRepository(db)
	subscriptionRepo := bunrepo.NewPushSubscriptionRepository(db)
	preferenceRepo := bunrepo.NewNotificationPreferenceRepository(db)

	authService, err := authsvc.NewService(authsvc.Dependencies{
		Users:       userRepo,
		Keys:        keyRepo,
		SecretKey:   cfg.Auth.SecretKey,
		TokenExpiry: cfg.Auth.TokenExpiry,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	accessService, err := access.NewService(access.Dependencies{
		Lists:   listRepo,
		Members: memberRepo,
	})
	if err != nil {
		return err
	}

	vapid, err := push.ResolveKeys(push.Keys{
		Public:  cfg.Push.VAPIDPublicKey,
		Private: cfg.Push.VAPIDPrivateKey,
	}, cfg.App.DataDir)
	if err != nil {
		log.Warn("push: vapid keys unavailable, notifications disabled",
			logger.Field{Key: "error", Value: err})
	}

	pushService, err := push.NewService(push.Dependencies{
		Resolver:      accessService,
		Lists:         listRepo,
		Subscriptions: subscriptionRepo,
		Preferences:   preferenceRepo,
		Keys:          vapid,
		Subscriber:    cfg.Push.SubscriberEmail,
		AppName:       cfg.App.Name,
		Logger:        log,
	})
	if err != nil {
		return err
	}

	registry := realtime.NewRegistry(log)

	router, err := events.NewRouter(events.Dependencies{
		Broadcaster: registry,
		Dispatcher:  pushService,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	handshake, err := realtime.NewHandshake(realtime.HandshakeDeps{
		Verifier: authService,
		Access:   accessService,
		Registry: registry,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	userService, err := users.NewService(users.Dependencies{
		Users:               userRepo,
		Invites:             inviteRepo,
		Keys:                keyRepo,
		Auth:                authService,
		RegistrationEnabled: cfg.App.RegistrationEnabled,
		Logger:              log,
	})
	if err != nil {
		return err
	}

	listService, err := lists.NewService(lists.Dependencies{
		Lists:   listRepo,
		Members: memberRepo,
		Users:   userRepo,
		Access:  accessService,
		Router:  router,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	itemService, err := items.NewService(items.Dependencies{
		Items:      itemRepo,
		Memory:     memoryRepo,
		Categories: categoryRepo,
		Users:      userRepo,
		Access:     accessService,
		Router:     router,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	categoryService, err := categories.NewService(categories.Dependencies{
		Categories: categoryRepo,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	catalog, err := commands.NewCatalog(commands.Dependencies{
		Push:       pushService,
		Invites:    userService,
		Categories: categoryService,
		Logger:     log,
	})
	if err != nil {
		return err
	}

	srv, err := server.New(server.Dependencies{
		AppName:       cfg.App.Name,
		Auth:          authService,
		Users:         userService,
		Lists:         listService,
		Items:         itemService,
		Categories:    categoryService,
		Push:          pushService,
		Commands:      catalog,
		Handshake:     handshake,
		LoginLimit:    ratelimit.New(cfg.RateLimit.Login.Window, cfg.RateLimit.Login.MaxAttempts),
		RegisterLimit: ratelimit.New(cfg.RateLimit.Register.Window, cfg.RateLimit.Register.MaxAttempts),
		Logger:        log,
	})
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		log.Info("server: listening",
			logger.Field{Key: "addr", Value: addr},
			logger.Field{Key: "push_enabled", Value: pushService.Enabled()})
		errCh <- srv.Listen(addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("server: shutting down", logger.Field{Key: "signal", Value: sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
