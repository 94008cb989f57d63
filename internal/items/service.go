package items

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-shoplist/internal/access"
	"github.com/goliatone/go-shoplist/internal/events"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

// AddInput carries the new-item form. CategoryID is optional; when absent
// the category memory picks one.
type AddInput struct {
	Name       string    `json:"name"`
	Quantity   float64   `json:"quantity"`
	Unit       string    `json:"unit"`
	CategoryID uuid.UUID `json:"category_id"`
	Notes      string    `json:"notes"`
}

// UpdateInput carries optional item changes; nil fields are left untouched.
type UpdateInput struct {
	Name       *string    `json:"name,omitempty"`
	Quantity   *float64   `json:"quantity,omitempty"`
	Unit       *string    `json:"unit,omitempty"`
	CategoryID *uuid.UUID `json:"category_id,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// Suggestion is a type-ahead hit from the category memory.
type Suggestion struct {
	Name         string    `json:"name"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name,omitempty"`
	UsageCount   int       `json:"usage_count"`
}

// Dependencies wires repositories, access checks, and the event router.
type Dependencies struct {
	Items      store.ListItemRepository
	Memory     store.ItemCategoryMemoryRepository
	Categories store.CategoryRepository
	Users      store.UserRepository
	Access     *access.Service
	Router     *events.Router
	Logger     logger.Logger
	Clock      func() time.Time
}

// Service manages list items and publishes a list event for every mutation.
type Service struct {
	items      store.ListItemRepository
	memory     store.ItemCategoryMemoryRepository
	categories store.CategoryRepository
	users      store.UserRepository
	access     *access.Service
	router     *events.Router
	log        logger.Logger
	clock      func() time.Time
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Items == nil {
		return nil, errors.New("items: item repository is required")
	}
	if deps.Users == nil {
		return nil, errors.New("items: user repository is required")
	}
	if deps.Access == nil {
		return nil, errors.New("items: access service is required")
	}
	log := deps.Logger
	if log == nil {
		log = &logger.Nop{}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		items:      deps.Items,
		memory:     deps.Memory,
		categories: deps.Categories,
		users:      deps.Users,
		access:     deps.Access,
		router:     deps.Router,
		log:        log,
		clock:      clock,
	}, nil
}

// List returns the items on a list the user can view.
func (s *Service) List(ctx context.Context, listID, userID uuid.UUID) ([]domain.ListItem, error) {
	if _, err := s.access.Check(ctx, listID, userID, false); err != nil {
		return nil, err
	}
	return s.items.ListByList(ctx, listID)
}

// Add creates an item, auto-categorizing from memory when no category was
// picked, and broadcasts item_added.
func (s *Service) Add(ctx context.Context, listID, userID uuid.UUID, input AddInput) (*domain.ListItem, error) {
	if _, err := s.access.Check(ctx, listID, userID, true); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Invalidf("items: name is required")
	}

	categoryID := input.CategoryID
	if categoryID == uuid.Nil {
		categoryID = s.suggestCategory(ctx, name)
	}

	item := &domain.ListItem{
		ListID:     listID,
		Name:       name,
		Quantity:   input.Quantity,
		Unit:       strings.TrimSpace(input.Unit),
		CategoryID: categoryID,
		AddedBy:    userID,
		Notes:      strings.TrimSpace(input.Notes),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("items: create: %w", err)
	}

	if categoryID != uuid.Nil {
		s.remember(ctx, name, categoryID)
	}
	s.publish(ctx, domain.EventItemAdded, listID, userID, itemData(item))
	return item, nil
}

// Update applies changes and broadcasts item_updated. An explicit category
// change feeds the memory so the next same-named item lands there.
func (s *Service) Update(ctx context.Context, listID, itemID, userID uuid.UUID, input UpdateInput) (*domain.ListItem, error) {
	if _, err := s.access.Check(ctx, listID, userID, true); err != nil {
		return nil, err
	}
	item, err := s.items.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.Invalidf("items: name is required")
		}
		item.Name = name
	}
	if input.Quantity != nil {
		item.Quantity = *input.Quantity
	}
	if input.Unit != nil {
		item.Unit = strings.TrimSpace(*input.Unit)
	}
	if input.CategoryID != nil && *input.CategoryID != item.CategoryID {
		item.CategoryID = *input.CategoryID
		if item.CategoryID != uuid.Nil {
			s.remember(ctx, item.Name, item.CategoryID)
		}
	}
	if input.Notes != nil {
		item.Notes = strings.TrimSpace(*input.Notes)
	}

	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventItemUpdated, listID, userID, itemData(item))
	return item, nil
}

// SetChecked checks or unchecks an item and broadcasts item_checked.
func (s *Service) SetChecked(ctx context.Context, listID, itemID, userID uuid.UUID, checked bool) (*domain.ListItem, error) {
	if _, err := s.access.Check(ctx, listID, userID, true); err != nil {
		return nil, err
	}
	item, err := s.items.GetItem(ctx, listID, itemID)
	if err != nil {
		return nil, err
	}

	item.Checked = checked
	if checked {
		item.CheckedBy = userID
		item.CheckedAt = s.clock().UTC()
	} else {
		item.CheckedBy = uuid.Nil
		item.CheckedAt = time.Time{}
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	s.publish(ctx, domain.EventItemChecked, listID, userID, itemData(item))
	return item, nil
}

// Remove deletes an item and broadcasts item_removed.
func (s *Service) Remove(ctx context.Context, listID, itemID, userID uuid.UUID) error {
	if _, err := s.access.Check(ctx, listID, userID, true); err != nil {
		return err
	}
	if err := s.items.DeleteItem(ctx, listID, itemID); err != nil {
		return err
	}
	s.publish(ctx, domain.EventItemRemoved, listID, userID, domain.JSONMap{"id": itemID.String()})
	return nil
}

// ClearChecked removes every checked item and broadcasts checked_cleared
// with the removed count.
func (s *Service) ClearChecked(ctx context.Context, listID, userID uuid.UUID) (int, error) {
	if _, err := s.access.Check(ctx, listID, userID, true); err != nil {
		return 0, err
	}
	count, err := s.items.DeleteChecked(ctx, listID)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, domain.EventCheckedCleared, listID, userID, domain.JSONMap{"deleted_count": count})
	return count, nil
}

// Reorder rewrites sort order to match the given id sequence and broadcasts
// items_reordered. Ids not on the list are ignored.
func (s *Service) Reorder(ctx context.Context, listID, userID uuid.UUID, orderedIDs []uuid.UUID) error {
	if _, err := s.access.Check(ctx, listID, userID, true); err != nil {
		return err
	}
	existing, err := s.items.ListByList(ctx, listID)
	if err != nil {
		return err
	}
	byID := make(map[uuid.UUID]*domain.ListItem, len(existing))
	for i := range existing {
		byID[existing[i].ID] = &existing[i]
	}

	applied := make([]string, 0, len(orderedIDs))
	for pos, id := range orderedIDs {
		item, ok := byID[id]
		if !ok {
			continue
		}
		if item.SortOrder != pos {
			item.SortOrder = pos
			if err := s.items.Update(ctx, item); err != nil {
				return err
			}
		}
		applied = append(applied, id.String())
	}
	s.publish(ctx, domain.EventItemsReordered, listID, userID, domain.JSONMap{"item_ids": applied})
	return nil
}

// Suggestions returns remembered item names matching the query prefix.
func (s *Service) Suggestions(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = strings.TrimSpace(query)
	if query == "" || s.memory == nil {
		return []Suggestion{}, nil
	}
	matches, err := s.memory.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]Suggestion, 0, len(matches))
	for _, m := range matches {
		sg := Suggestion{
			Name:       m.ItemNameLower,
			CategoryID: m.CategoryID,
			UsageCount: m.UsageCount,
		}
		if s.categories != nil {
			if cat, err := s.categories.GetByID(ctx, m.CategoryID); err == nil {
				sg.CategoryName = cat.Name
			}
		}
		out = append(out, sg)
	}
	return out, nil
}

// suggestCategory picks the most used category for the item name, if any.
func (s *Service) suggestCategory(ctx context.Context, name string) uuid.UUID {
	if s.memory == nil {
		return uuid.Nil
	}
	match, err := s.memory.GetBestMatch(ctx, strings.ToLower(name))
	if err != nil {
		return uuid.Nil
	}
	return match.CategoryID
}

// remember bumps the usage count for a name/category pair, creating it on
// first use.
func (s *Service) remember(ctx context.Context, name string, categoryID uuid.UUID) {
	if s.memory == nil {
		return
	}
	lower := strings.ToLower(strings.TrimSpace(name))
	now := s.clock().UTC()

	existing, err := s.memory.GetByNameAndCategory(ctx, lower, categoryID)
	switch {
	case err == nil:
		existing.UsageCount++
		existing.LastUsed = now
		err = s.memory.Update(ctx, existing)
	case errors.Is(err, store.ErrNotFound):
		err = s.memory.Create(ctx, &domain.ItemCategoryMemory{
			ItemNameLower: lower,
			CategoryID:    categoryID,
			UsageCount:    1,
			LastUsed:      now,
		})
	}
	if err != nil {
		s.log.Warn("items: record category memory",
			logger.Field{Key: "item", Value: lower},
			logger.Field{Key: "error", Value: err})
	}
}

func (s *Service) publish(ctx context.Context, typ domain.EventType, listID, userID uuid.UUID, data domain.JSONMap) {
	if s.router == nil {
		return
	}
	actor, err := s.users.GetByID(ctx, userID)
	if err != nil {
		actor = &domain.User{RecordMeta: domain.RecordMeta{ID: userID}}
	}
	s.router.Publish(ctx, domain.NewEvent(typ, listID, data, actor))
}

// itemData renders the item through its JSON tags so the broadcast payload
// matches what the REST API returns.
func itemData(item *domain.ListItem) domain.JSONMap {
	raw, err := json.Marshal(item)
	if err != nil {
		return domain.JSONMap{"id": item.ID.String()}
	}
	var data domain.JSONMap
	if err := json.Unmarshal(raw, &data); err != nil {
		return domain.JSONMap{"id": item.ID.String()}
	}
	return data
}
