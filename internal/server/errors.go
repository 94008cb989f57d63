package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-shoplist/internal/access"
	"github.com/goliatone/go-shoplist/internal/categories"
	"github.com/goliatone/go-shoplist/internal/lists"
	"github.com/goliatone/go-shoplist/internal/users"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"

	authsvc "github.com/goliatone/go-shoplist/internal/auth"
)

// renderError maps service errors onto the API's status codes. Forbidden
// lists intentionally render as 404 so outsiders cannot probe which ids
// exist.
func renderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, access.ErrNotFound),
		errors.Is(err, access.ErrForbidden):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})

	case errors.Is(err, access.ErrViewOnly),
		errors.Is(err, lists.ErrOwnerOnly),
		errors.Is(err, users.ErrNotAdmin),
		errors.Is(err, categories.ErrDefaultLocked),
		errors.Is(err, categories.ErrNotOwnCategory):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": err.Error()})

	case errors.Is(err, authsvc.ErrInvalidCredentials),
		errors.Is(err, authsvc.ErrInvalidToken),
		errors.Is(err, authsvc.ErrInactiveUser):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})

	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, users.ErrUsernameTaken),
		errors.Is(err, users.ErrEmailTaken),
		errors.Is(err, users.ErrRegistrationClosed),
		errors.Is(err, users.ErrInviteInvalid),
		errors.Is(err, users.ErrWrongPassword),
		errors.Is(err, lists.ErrSelfShare),
		errors.Is(err, lists.ErrAlreadyShared),
		errors.Is(err, lists.ErrBadRole),
		errors.Is(err, categories.ErrNameTaken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})

	default:
		return fiber.NewError(fiber.StatusInternalServerError, "internal error")
	}
}

// badRequest is the fallback for malformed bodies and parameters.
func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
