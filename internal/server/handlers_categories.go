package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-shoplist/internal/categories"
	"github.com/google/uuid"
)

func (s *Server) listCategories(c *fiber.Ctx) error {
	result, err := s.categories.All(c.Context())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (s *Server) createCategory(c *fiber.Ctx) error {
	var input categories.Input
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	category, err := s.categories.Create(c.Context(), currentUser(c).ID, input)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (s *Server) updateCategory(c *fiber.Ctx) error {
	categoryID, err := uuid.Parse(c.Params("categoryID"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}
	var input categories.Input
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	user := currentUser(c)
	category, err := s.categories.Update(c.Context(), user.ID, user.IsAdmin, categoryID, input)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(category)
}

func (s *Server) deleteCategory(c *fiber.Ctx) error {
	categoryID, err := uuid.Parse(c.Params("categoryID"))
	if err != nil {
		return badRequest(c, "invalid category id")
	}
	user := currentUser(c)
	if err := s.categories.Delete(c.Context(), user.ID, user.IsAdmin, categoryID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
