package server

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-shoplist/internal/users"
	"github.com/google/uuid"

	authsvc "github.com/goliatone/go-shoplist/internal/auth"
)

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) registrationStatus(c *fiber.Ctx) error {
	open, err := s.users.RegistrationOpen(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"registration_open": open})
}

func (s *Server) register(c *fiber.Ctx) error {
	var input users.RegisterInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	// Every registration submission counts against the window.
	if s.registerLimit != nil {
		s.registerLimit.RecordAttempt(c.IP())
	}
	user, err := s.users.Register(c.Context(), input)
	if err != nil {
		return renderError(c, err)
	}
	token, err := s.auth.IssueToken(user.ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (s *Server) login(c *fiber.Ctx) error {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, token, err := s.users.Login(c.Context(), input.Username, input.Password)
	if err != nil {
		// Only failed credential checks count against the window, so a
		// user logging in repeatedly is never throttled.
		if s.loginLimit != nil && errors.Is(err, authsvc.ErrInvalidCredentials) {
			s.loginLimit.RecordAttempt(c.IP())
		}
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

func (s *Server) me(c *fiber.Ctx) error {
	return c.JSON(currentUser(c))
}

func (s *Server) updateProfile(c *fiber.Ctx) error {
	var input users.UpdateProfileInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	user, err := s.users.UpdateProfile(c.Context(), currentUser(c).ID, input)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(user)
}

func (s *Server) changePassword(c *fiber.Ctx) error {
	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	if input.NewPassword == "" {
		return badRequest(c, "new password is required")
	}
	if err := s.users.ChangePassword(c.Context(), currentUser(c).ID, input.CurrentPassword, input.NewPassword); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "password changed"})
}

func (s *Server) listApiKeys(c *fiber.Ctx) error {
	keys, err := s.users.ListApiKeys(c.Context(), currentUser(c).ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(keys)
}

func (s *Server) createApiKey(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	result, err := s.users.CreateApiKey(c.Context(), currentUser(c).ID, input.Name)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (s *Server) revokeApiKey(c *fiber.Ctx) error {
	keyID, err := uuid.Parse(c.Params("keyID"))
	if err != nil {
		return badRequest(c, "invalid key id")
	}
	if err := s.users.RevokeApiKey(c.Context(), currentUser(c).ID, keyID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "revoked"})
}

func (s *Server) listInvites(c *fiber.Ctx) error {
	invites, err := s.users.ListInvites(c.Context(), currentUser(c).ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(invites)
}

func (s *Server) createInvite(c *fiber.Ctx) error {
	var input struct {
		ExpiresInHours int `json:"expires_in_hours"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	invite, err := s.users.CreateInvite(c.Context(), currentUser(c).ID, time.Duration(input.ExpiresInHours)*time.Hour)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(invite)
}
