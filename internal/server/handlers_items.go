package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-shoplist/internal/items"
	"github.com/google/uuid"
)

func (s *Server) listItems(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	result, err := s.items.List(c.Context(), listID, currentUser(c).ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func (s *Server) addItem(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	var input items.AddInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	item, err := s.items.Add(c.Context(), listID, currentUser(c).ID, input)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) updateItem(c *fiber.Ctx) error {
	listID, itemID, err := listItemParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var input items.UpdateInput
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	item, err := s.items.Update(c.Context(), listID, itemID, currentUser(c).ID, input)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(item)
}

func (s *Server) checkItem(c *fiber.Ctx) error {
	listID, itemID, err := listItemParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	var input struct {
		Checked *bool `json:"checked"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	checked := true
	if input.Checked != nil {
		checked = *input.Checked
	}
	item, err := s.items.SetChecked(c.Context(), listID, itemID, currentUser(c).ID, checked)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(item)
}

func (s *Server) removeItem(c *fiber.Ctx) error {
	listID, itemID, err := listItemParams(c)
	if err != nil {
		return badRequest(c, err.Error())
	}
	if err := s.items.Remove(c.Context(), listID, itemID, currentUser(c).ID); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "removed"})
}

func (s *Server) clearChecked(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	count, err := s.items.ClearChecked(c.Context(), listID, currentUser(c).ID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"deleted_count": count})
}

func (s *Server) reorderItems(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return badRequest(c, "invalid list id")
	}
	var input struct {
		ItemIDs []uuid.UUID `json:"item_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return badRequest(c, "invalid request body")
	}
	if err := s.items.Reorder(c.Context(), listID, currentUser(c).ID, input.ItemIDs); err != nil {
		return renderError(c, err)
	}
	return c.JSON(fiber.Map{"status": "reordered"})
}

func (s *Server) suggestions(c *fiber.Ctx) error {
	query := c.Query("q")
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	result, err := s.items.Suggestions(c.Context(), query, limit)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(result)
}

func listItemParams(c *fiber.Ctx) (uuid.UUID, uuid.UUID, error) {
	listID, err := uuid.Parse(c.Params("listID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid list id")
	}
	itemID, err := uuid.Parse(c.Params("itemID"))
	if err != nil {
		return uuid.Nil, uuid.Nil, fiber.NewError(fiber.StatusBadRequest, "invalid item id")
	}
	return listID, itemID, nil
}
