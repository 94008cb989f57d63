package bunrepo

import (
	"context"
	"strings"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ItemCategoryMemoryRepository struct {
	base baseRepository[domain.ItemCategoryMemory]
}

func NewItemCategoryMemoryRepository(db *bun.DB) *ItemCategoryMemoryRepository {
	return &ItemCategoryMemoryRepository{
		base: newBaseRepository[domain.ItemCategoryMemory](db, func(m *domain.ItemCategoryMemory) *domain.RecordMeta { return &m.RecordMeta }),
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

// GetBestMatch returns the most used category memory for an exact item name.
func (r *ItemCategoryMemoryRepository) GetBestMatch(ctx context.Context, itemNameLower string) (*domain.ItemCategoryMemory, error) {
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.item_name_lower = ?", strings.ToLower(itemNameLower)).
				Order("usage_count DESC", "last_used DESC").
				Limit(1)
		},
		withoutDeleted(),
	)
}

// Search finds remembered item names by prefix for type-ahead suggestions.
func (r *ItemCategoryMemoryRepository) Search(ctx context.Context, query string, limit int) ([]domain.ItemCategoryMemory, error) {
	if limit <= 0 {
		limit = 10
	}
	return r.base.selectMany(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.item_name_lower LIKE ?", strings.ToLower(query)+"%").
				Order("usage_count DESC", "last_used DESC").
				Limit(limit)
		},
		withoutDeleted(),
	)
}

func (r *ItemCategoryMemoryRepository) GetByNameAndCategory(ctx context.Context, itemNameLower string, categoryID uuid.UUID) (*domain.ItemCategoryMemory, error) {
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.item_name_lower = ?", strings.ToLower(itemNameLower)).
				Where("?TableAlias.category_id = ?", categoryID)
		},
		withoutDeleted(),
	)
}
