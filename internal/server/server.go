package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/goliatone/go-shoplist/internal/categories"
	"github.com/goliatone/go-shoplist/internal/commands"
	"github.com/goliatone/go-shoplist/internal/items"
	"github.com/goliatone/go-shoplist/internal/lists"
	"github.com/goliatone/go-shoplist/internal/push"
	"github.com/goliatone/go-shoplist/internal/ratelimit"
	"github.com/goliatone/go-shoplist/internal/realtime"
	"github.com/goliatone/go-shoplist/internal/users"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"

	authsvc "github.com/goliatone/go-shoplist/internal/auth"
)

// Dependencies wires every feature service into the HTTP surface.
type Dependencies struct {
	AppName       string
	Auth          *authsvc.Service
	Users         *users.Service
	Lists         *lists.Service
	Items         *items.Service
	Categories    *categories.Service
	Push          *push.Service
	Commands      *commands.Catalog
	Handshake     *realtime.Handshake
	LoginLimit    *ratelimit.Limiter
	RegisterLimit *ratelimit.Limiter
	Logger        logger.Logger
}

// Server owns the fiber app and the route handlers.
type Server struct {
	app           *fiber.App
	auth          *authsvc.Service
	users         *users.Service
	lists         *lists.Service
	items         *items.Service
	categories    *categories.Service
	push          *push.Service
	commands      *commands.Catalog
	handshake     *realtime.Handshake
	loginLimit    *ratelimit.Limiter
	registerLimit *ratelimit.Limiter
	log           logger.Logger
}

// New builds the server and registers every route.
func New(deps Dependencies) (*Server, error) {
	for name, missing := range map[string]bool{
		"auth service":     deps.Auth == nil,
		"users service":    deps.Users == nil,
		"lists service":    deps.Lists == nil,
		"items service":    deps.Items == nil,
		"category service": deps.Categories == nil,
		"push service":     deps.Push == nil,
		"command catalog":  deps.Commands == nil,
	} {
		if missing {
			return nil, fmt.Errorf("server: %s is required", name)
		}
	}
	log := deps.Logger
	if log == nil {
		log = &logger.Nop{}
	}
	appName := deps.AppName
	if appName == "" {
		appName = "Kitchen Cupboard"
	}

	s := &Server{
		auth:          deps.Auth,
		users:         deps.Users,
		lists:         deps.Lists,
		items:         deps.Items,
		categories:    deps.Categories,
		push:          deps.Push,
		commands:      deps.Commands,
		handshake:     deps.Handshake,
		loginLimit:    deps.LoginLimit,
		registerLimit: deps.RegisterLimit,
		log:           log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		ErrorHandler:          s.errorHandler,
	})
	s.app.Use(recover.New())
	s.app.Use(cors.New())
	s.app.Use(securityHeaders)

	s.registerRoutes()
	return s, nil
}

// App exposes the underlying fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

// errorHandler renders unhandled fiber errors as the JSON envelope the rest
// of the API uses.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.log.Error("server: unhandled error",
			logger.Field{Key: "path", Value: c.Path()},
			logger.Field{Key: "error", Value: err})
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}
