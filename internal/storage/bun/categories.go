package bunrepo

import (
	"context"
	"strings"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type CategoryRepository struct {
	base baseRepository[domain.Category]
}

func NewCategoryRepository(db *bun.DB) *CategoryRepository {
	return &CategoryRepository{
		base: newBaseRepository[domain.Category](db, func(c *domain.Category) *domain.RecordMeta { return &c.RecordMeta }),
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
	records, err := r.base.selectMany(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			if opts.Limit > 0 {
				q = q.Limit(opts.Limit)
			}
			if opts.Offset > 0 {
				q = q.Offset(opts.Offset)
			}
			return q.Order("sort_order ASC", "name ASC")
		},
		withoutDeleted(),
	)
	if err != nil {
		return store.ListResult[domain.Category]{}, err
	}
	return store.ListResult[domain.Category]{Items: records, Total: len(records)}, nil
}

func (r *CategoryRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("LOWER(name) = ?", strings.ToLower(name))
		},
		withoutDeleted(),
	)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.base.db.NewDelete().
		Model((*domain.Category)(nil)).
		Where("id = ?", id).
		ForceDelete().
		Exec(ctx)
	return mapError(err)
}
