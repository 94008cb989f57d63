package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-shoplist/internal/commands"
	"github.com/goliatone/go-shoplist/internal/push"
)

func (s *Server) vapidKey(c *fiber.Ctx) error {
	if !s.push.Enabled() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "push is not configured"})
	}
	return c.JSON(fiber.Map{"public_key": s.push.PublicKey()})
}

func (s *Server) pushSubscribe(c *fiber.Ctx) error {
	var input push.SubscribeInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	msg := commands.PushSubscribe{
		UserID:       currentUser(c).ID,
		Subscription: input,
	}
	if err := s.commands.Subscribe.Execute(c.Context(), msg); err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "subscribed"})
}

func (s *Server) pushUnsubscribe(c *fiber.Ctx) error {
	var input struct {
		Endpoint string `json:"endpoint"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	msg := commands.PushUnsubscribe{
		UserID:   currentUser(c).ID,
		Endpoint: input.Endpoint,
	}
	if err := s.commands.Unsubscribe.Execute(c.Context(), msg); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "unsubscribed"})
}

func (s *Server) pushSettings(c *fiber.Ctx) error {
	pref, err := s.push.PreferencesFor(c.Context(), currentUser(c).ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(pref)
}

func (s *Server) updatePushSettings(c *fiber.Ctx) error {
	var input push.PreferenceInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	userID := currentUser(c).ID
	msg := commands.PreferenceUpsert{
		UserID: userID,
		Input:  input,
	}
	if err := s.commands.UpsertPreference.Execute(c.Context(), msg); err != nil {
		return renderError(c, err)
	}
	pref, err := s.push.PreferencesFor(c.Context(), userID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(pref)
}
