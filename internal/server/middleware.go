package server

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-shoplist/internal/ratelimit"
	"github.com/goliatone/go-shoplist/pkg/domain"
)

const userContextKey = "current_user"

// securityHeaders sets the browser hardening headers on every response.
func securityHeaders(c *fiber.Ctx) error {
	c.Set("X-Content-Type-Options", "nosniff")
	c.Set("X-Frame-Options", "DENY")
	c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
	return c.Next()
}

// requireAuth resolves the bearer credential (JWT or kc_ API key) into the
// current user.
func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	if token == "" || token == header {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing bearer token"})
	}
	user, err := s.auth.Authenticate(c.Context(), token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}
	c.Locals(userContextKey, user)
	return c.Next()
}

// currentUser returns the authenticated user placed by requireAuth.
func currentUser(c *fiber.Ctx) *domain.User {
	user, _ := c.Locals(userContextKey).(*domain.User)
	return user
}

// rateLimited gates unauthenticated endpoints keyed by client IP, answering
// 429 with Retry-After once the window is saturated. The gate only reads;
// the handler decides what counts as an attempt (login records failed
// credential checks only, registration records every submission), so
// legitimate repeated logins never lock a user out.
func (s *Server) rateLimited(limiter *ratelimit.Limiter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		key := c.IP()
		if limiter.IsLimited(key) {
			retry := limiter.RetryAfter(key)
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retry))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "too many attempts, try again later",
				"retry_after": retry,
			})
		}
		return c.Next()
	}
}
