package bunrepo

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ListItemRepository struct {
	base baseRepository[domain.ListItem]
}

func NewListItemRepository(db *bun.DB) *ListItemRepository {
	return &ListItemRepository{
		base: newBaseRepository[domain.ListItem](db, func(i *domain.ListItem) *domain.RecordMeta { return &i.RecordMeta }),
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
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.id = ?", itemID).
				Where("?TableAlias.list_id = ?", listID)
		},
		withoutDeleted(),
	)
}

// ListByList returns the items in display order: unchecked first by sort
// order, then by recency.
func (r *ListItemRepository) ListByList(ctx context.Context, listID uuid.UUID) ([]domain.ListItem, error) {
	return r.base.selectMany(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.list_id = ?", listID).
				Order("checked ASC", "sort_order ASC", "created_at DESC")
		},
		withoutDeleted(),
	)
}

func (r *ListItemRepository) DeleteItem(ctx context.Context, listID, itemID uuid.UUID) error {
	res, err := r.base.db.NewDelete().
		Model((*domain.ListItem)(nil)).
		Where("id = ?", itemID).
		Where("list_id = ?", listID).
		ForceDelete().
		Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteChecked removes every checked item on the list and reports how many
// rows went away.
func (r *ListItemRepository) DeleteChecked(ctx context.Context, listID uuid.UUID) (int, error) {
	res, err := r.base.db.NewDelete().
		Model((*domain.ListItem)(nil)).
		Where("list_id = ?", listID).
		Where("checked = ?", true).
		ForceDelete().
		Exec(ctx)
	if err != nil {
		return 0, mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
