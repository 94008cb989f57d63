package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

type ListItemRepository struct {
	base baseMemoryRepo[domain.ListItem]
}

func NewListItemRepository() *ListItemRepository {
	return &ListItemRepository{
		base: newBaseMemoryRepo[domain.ListItem](func(i *domain.ListItem) *domain.RecordMeta { return &i.RecordMeta }),
	}
}

func (r *ListItemRepository) Create(ctx context.Context, item *domain.ListItem) error {
	return r.base.create(ctx, item)
}

func (r *ListItemRepository) Update(ctx context.Context, item *domain.ListItem) error {
	return r.base.update(ctx, item)
}

func (r *ListItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ListItem, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *ListItemRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.ListItem], error) {
	return r.base.list(ctx, opts)
}

func (r *ListItemRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *ListItemRepository) GetItem(ctx context.Context, listID, itemID uuid.UUID) (*domain.ListItem, error) {
	return r.base.find(func(i *domain.ListItem) bool {
		return i.ID == itemID && i.ListID == listID
	})
}

func (r *ListItemRepository) ListByList(ctx context.Context, listID uuid.UUID) ([]domain.ListItem, error) {
	items := r.base.filter(func(i *domain.ListItem) bool { return i.ListID == listID })
	sort.SliceStable(items, func(a, b int) bool {
		if items[a].Checked != items[b].Checked {
			return !items[a].Checked
		}
		if items[a].SortOrder != items[b].SortOrder {
			return items[a].SortOrder < items[b].SortOrder
		}
		return items[a].CreatedAt.After(items[b].CreatedAt)
	})
	return items, nil
}

func (r *ListItemRepository) DeleteItem(ctx context.Context, listID, itemID uuid.UUID) error {
	removed := r.base.remove(func(i *domain.ListItem) bool {
		return i.ID == itemID && i.ListID == listID
	})
	if removed == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *ListItemRepository) DeleteChecked(ctx context.Context, listID uuid.UUID) (int, error) {
	removed := r.base.remove(func(i *domain.ListItem) bool {
		return i.ListID == listID && i.Checked
	})
	return removed, nil
}

type ItemCategoryMemoryRepository struct {
	base baseMemoryRepo[domain.ItemCategoryMemory]
}

func NewItemCategoryMemoryRepository() *ItemCategoryMemoryRepository {
	return &ItemCategoryMemoryRepository{
		base: newBaseMemoryRepo[domain.ItemCategoryMemory](func(m *domain.ItemCategoryMemory) *domain.RecordMeta { return &m.RecordMeta }),
	}
}

func (r *ItemCategoryMemoryRepository) Create(ctx context.Context, memory *domain.ItemCategoryMemory) error {
	return r.base.create(ctx, memory)
}

func (r *ItemCategoryMemoryRepository) Update(ctx context.Context, memory *domain.ItemCategoryMemory) error {
	return r.base.update(ctx, memory)
}

func (r *ItemCategoryMemoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ItemCategoryMemory, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *ItemCategoryMemoryRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.ItemCategoryMemory], error) {
	return r.base.list(ctx, opts)
}

func (r *ItemCategoryMemoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *ItemCategoryMemoryRepository) GetBestMatch(ctx context.Context, itemNameLower string) (*domain.ItemCategoryMemory, error) {
	matches := r.base.filter(func(m *domain.ItemCategoryMemory) bool {
		return m.ItemNameLower == strings.ToLower(itemNameLower)
	})
	if len(matches) == 0 {
		return nil, store.ErrNotFound
	}
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].UsageCount != matches[b].UsageCount {
			return matches[a].UsageCount > matches[b].UsageCount
		}
		return matches[a].LastUsed.After(matches[b].LastUsed)
	})
	best := matches[0]
	return &best, nil
}

func (r *ItemCategoryMemoryRepository) Search(ctx context.Context, query string, limit int) ([]domain.ItemCategoryMemory, error) {
	if limit <= 0 {
		limit = 10
	}
	prefix := strings.ToLower(query)
	matches := r.base.filter(func(m *domain.ItemCategoryMemory) bool {
		return strings.HasPrefix(m.ItemNameLower, prefix)
	})
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].UsageCount != matches[b].UsageCount {
			return matches[a].UsageCount > matches[b].UsageCount
		}
		return matches[a].LastUsed.After(matches[b].LastUsed)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (r *ItemCategoryMemoryRepository) GetByNameAndCategory(ctx context.Context, itemNameLower string, categoryID uuid.UUID) (*domain.ItemCategoryMemory, error) {
	return r.base.find(func(m *domain.ItemCategoryMemory) bool {
		return m.ItemNameLower == strings.ToLower(itemNameLower) && m.CategoryID == categoryID
	})
}
