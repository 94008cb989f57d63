package server

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-shoplist/internal/lists"
	"github.com/google/uuid"
)

func (s *Server) listLists(c *fiber.Ctx) error {
	result, err := s.lists.ForUser(c.Context(), currentUser(c).ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (s *Server) createList(c *fiber.Ctx) error {
	var input lists.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	list, err := s.lists.Create(c.Context(), currentUser(c).ID, input)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(list)
}

func (s *Server) getList(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	list, err := s.lists.Get(c.Context(), listID, currentUser(c).ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) updateList(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	var input lists.UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	list, err := s.lists.Update(c.Context(), listID, currentUser(c).ID, input)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(list)
}

func (s *Server) deleteList(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	if err := s.lists.Delete(c.Context(), listID, currentUser(c).ID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

func (s *Server) listMembers(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	members, err := s.lists.Members(c.Context(), listID, currentUser(c).ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(members)
}

func (s *Server) shareList(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	var input struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	member, err := s.lists.Share(c.Context(), listID, currentUser(c).ID, input.Username, input.Role)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(member)
}

func (s *Server) unshareList(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	memberID, err := uuid.Parse(c.Params("userID"))
	if err != nil {
		return badRequest(c, "invalid user id")
	}
	if err := s.lists.Unshare(c.Context(), listID, currentUser(c).ID, memberID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "unshared"})
}
