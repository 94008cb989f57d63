package bunrepo

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type NotificationPreferenceRepository struct {
	base baseRepository[domain.NotificationPreference]
}

func NewNotificationPreferenceRepository(db *bun.DB) *NotificationPreferenceRepository {
	return &NotificationPreferenceRepository{
		base: newBaseRepository[domain.NotificationPreference](db, func(p *domain.NotificationPreference) *domain.RecordMeta { return &p.RecordMeta }),
	}
}

func (r *NotificationPreferenceRepository) Create(ctx context.Context, pref *domain.NotificationPreference) error {
	return r.base.create(ctx, pref)
}

func (r *NotificationPreferenceRepository) Update(ctx context.Context, pref *domain.NotificationPreference) error {
	return r.base.update(ctx, pref)
}

func (r *NotificationPreferenceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.NotificationPreference, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *NotificationPreferenceRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.NotificationPreference], error) {
	return r.base.list(ctx, opts)
}

func (r *NotificationPreferenceRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *NotificationPreferenceRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.user_id = ?", userID)
		},
		withoutDeleted(),
	)
}
