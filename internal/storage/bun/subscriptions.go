package bunrepo

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type PushSubscriptionRepository struct {
	base baseRepository[domain.PushSubscription]
}

func NewPushSubscriptionRepository(db *bun.DB) *PushSubscriptionRepository {
	return &PushSubscriptionRepository{
		base: newBaseRepository[domain.PushSubscription](db, func(s *domain.PushSubscription) *domain.RecordMeta { return &s.RecordMeta }),
	}
}

func (r *PushSubscriptionRepository) Create(ctx context.Context, sub *domain.PushSubscription) error {
	return r.base.create(ctx, sub)
}

func (r *PushSubscriptionRepository) Update(ctx context.Context, sub *domain.PushSubscription) error {
	return r.base.update(ctx, sub)
}

func (r *PushSubscriptionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PushSubscription, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *PushSubscriptionRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.PushSubscription], error) {
	return r.base.list(ctx, opts)
}

func (r *PushSubscriptionRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *PushSubscriptionRepository) GetByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) (*domain.PushSubscription, error) {
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.user_id = ?", userID).
				Where("?TableAlias.endpoint = ?", endpoint)
		},
		withoutDeleted(),
	)
}

func (r *PushSubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PushSubscription, error) {
	return r.base.selectMany(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.user_id = ?", userID)
		},
		withoutDeleted(),
	)
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	res, err := r.base.db.NewDelete().
		Model((*domain.PushSubscription)(nil)).
		Where("user_id = ?", userID).
		Where("endpoint = ?", endpoint).
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

// DeleteBatch removes subscriptions whose endpoints came back permanently
// gone from the push service. Missing ids are ignored.
func (r *PushSubscriptionRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.base.db.NewDelete().
		Model((*domain.PushSubscription)(nil)).
		Where("id IN (?)", bun.In(ids)).
		ForceDelete().
		Exec(ctx)
	return mapError(err)
}
