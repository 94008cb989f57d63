package categories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

var (
	ErrNameTaken      = errors.New("categories: a category with that name exists")
	ErrDefaultLocked  = errors.New("categories: default categories cannot be removed")
	ErrNotOwnCategory = errors.New("categories: only the creator can change it")
)

// Input carries the category form.
type Input struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	Color     string `json:"color"`
	SortOrder int    `json:"sort_order"`
}

// Dependencies wires the repository and logging into the service.
type Dependencies struct {
	Categories store.CategoryRepository
	Logger     logger.Logger
}

// Service manages the seeded defaults plus user-created categories.
type Service struct {
	categories store.CategoryRepository
	log        logger.Logger
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Categories == nil {
		return nil, errors.New("categories: repository is required")
	}
	log := deps.Logger
	if log == nil {
		log = &logger.Nop{}
	}
	return &Service{categories: deps.Categories, log: log}, nil
}

// All returns every category in display order.
func (s *Service) All(ctx context.Context) ([]domain.Category, error) {
	result, err := s.categories.List(ctx, store.ListOptions{})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Create adds a user category. Names are unique case-insensitively.
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, input Input) (*domain.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Invalidf("categories: name is required")
	}
	if _, err := s.categories.GetByName(ctx, name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	category := &domain.Category{
		Name:      name,
		Icon:      input.Icon,
		Color:     input.Color,
		SortOrder: input.SortOrder,
		CreatedBy: createdBy,
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("categories: create: %w", err)
	}
	return category, nil
}

// Update edits a user category. Defaults and other users' categories are off
// limits unless the caller is admin.
func (s *Service) Update(ctx context.Context, userID uuid.UUID, isAdmin bool, categoryID uuid.UUID, input Input) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if category.IsDefault && !isAdmin {
		return nil, ErrDefaultLocked
	}
	if !category.IsDefault && category.CreatedBy != userID && !isAdmin {
		return nil, ErrNotOwnCategory
	}

	if name := strings.TrimSpace(input.Name); name != "" && !strings.EqualFold(name, category.Name) {
		if _, err := s.categories.GetByName(ctx, name); err == nil {
			return nil, ErrNameTaken
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		category.Name = name
	}
	if input.Icon != "" {
		category.Icon = input.Icon
	}
	if input.Color != "" {
		category.Color = input.Color
	}
	if input.SortOrder != 0 {
		category.SortOrder = input.SortOrder
	}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a user category. Seeded defaults stay.
func (s *Service) Delete(ctx context.Context, userID uuid.UUID, isAdmin bool, categoryID uuid.UUID) error {
	category, err := s.categories.GetByID(ctx, categoryID)
	if err != nil {
		return err
	}
	if category.IsDefault {
		return ErrDefaultLocked
	}
	if category.CreatedBy != userID && !isAdmin {
		return ErrNotOwnCategory
	}
	return s.categories.Delete(ctx, categoryID)
}
