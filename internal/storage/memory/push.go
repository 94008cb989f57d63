package memory

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

type PushSubscriptionRepository struct {
	base baseMemoryRepo[domain.PushSubscription]
}

func NewPushSubscriptionRepository() *PushSubscriptionRepository {
	return &PushSubscriptionRepository{
		base: newBaseMemoryRepo[domain.PushSubscription](func(s *domain.PushSubscription) *domain.RecordMeta { return &s.RecordMeta }),
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
	return r.base.find(func(s *domain.PushSubscription) bool {
		return s.UserID == userID && s.Endpoint == endpoint
	})
}

func (r *PushSubscriptionRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PushSubscription, error) {
	return r.base.filter(func(s *domain.PushSubscription) bool { return s.UserID == userID }), nil
}

func (r *PushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	removed := r.base.remove(func(s *domain.PushSubscription) bool {
		return s.UserID == userID && s.Endpoint == endpoint
	})
	if removed == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *PushSubscriptionRepository) DeleteBatch(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	r.base.remove(func(s *domain.PushSubscription) bool { return drop[s.ID] })
	return nil
}

type NotificationPreferenceRepository struct {
	base baseMemoryRepo[domain.NotificationPreference]
}

func NewNotificationPreferenceRepository() *NotificationPreferenceRepository {
	return &NotificationPreferenceRepository{
		base: newBaseMemoryRepo[domain.NotificationPreference](func(p *domain.NotificationPreference) *domain.RecordMeta { return &p.RecordMeta }),
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
	return r.base.find(func(p *domain.NotificationPreference) bool { return p.UserID == userID })
}
