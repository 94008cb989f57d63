package memory

import (
	"context"
	"strings"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

type CategoryRepository struct {
	base baseMemoryRepo[domain.Category]
}

func NewCategoryRepository() *CategoryRepository {
	return &CategoryRepository{
		base: newBaseMemoryRepo[domain.Category](func(c *domain.Category) *domain.RecordMeta { return &c.RecordMeta }),
	}
}

func (r *CategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	return r.base.create(ctx, category)
}

func (r *CategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	return r.base.update(ctx, category)
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *CategoryRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.Category], error) {
	return r.base.list(ctx, opts)
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.base.find(func(c *domain.Category) bool {
		return strings.EqualFold(c.Name, name)
	})
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if removed := r.base.remove(func(c *domain.Category) bool { return c.ID == id }); removed == 0 {
		return store.ErrNotFound
	}
	return nil
}
