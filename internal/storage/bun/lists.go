package bunrepo

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ShoppingListRepository struct {
	base baseRepository[domain.ShoppingList]
}

func NewShoppingListRepository(db *bun.DB) *ShoppingListRepository {
	return &ShoppingListRepository{
		base: newBaseRepository[domain.ShoppingList](db, func(l *domain.ShoppingList) *domain.RecordMeta { return &l.RecordMeta }),
	}
}

func (r *ShoppingListRepository) Create(ctx context.Context, list *domain.ShoppingList) error {
	return r.base.create(ctx, list)
}

func (r *ShoppingListRepository) Update(ctx context.Context, list *domain.ShoppingList) error {
	return r.base.update(ctx, list)
}

func (r *ShoppingListRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ShoppingList, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *ShoppingListRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.ShoppingList], error) {
	return r.base.list(ctx, opts)
}

func (r *ShoppingListRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

// ListForUser returns lists the user owns plus lists shared with them,
// newest first.
func (r *ShoppingListRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingList, error) {
	return r.base.selectMany(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.owner_id = ? OR ?TableAlias.id IN (SELECT list_id FROM list_members WHERE user_id = ? AND deleted_at IS NULL)", userID, userID).
				Order("created_at DESC")
		},
		withoutDeleted(),
	)
}

// Delete removes a list and its dependent rows. Items and memberships go with
// the list so a recreated list with the same id starts clean.
func (r *ShoppingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.base.db.NewDelete().
		Model((*domain.ListItem)(nil)).
		Where("list_id = ?", id).
		ForceDelete().
		Exec(ctx); err != nil {
		return mapError(err)
	}
	if _, err := r.base.db.NewDelete().
		Model((*domain.ListMember)(nil)).
		Where("list_id = ?", id).
		ForceDelete().
		Exec(ctx); err != nil {
		return mapError(err)
	}
	_, err := r.base.db.NewDelete().
		Model((*domain.ShoppingList)(nil)).
		Where("id = ?", id).
		ForceDelete().
		Exec(ctx)
	return mapError(err)
}
