package memory

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

type ApiKeyRepository struct {
	base baseMemoryRepo[domain.ApiKey]
}

func NewApiKeyRepository() *ApiKeyRepository {
	return &ApiKeyRepository{
		base: newBaseMemoryRepo[domain.ApiKey](func(k *domain.ApiKey) *domain.RecordMeta { return &k.RecordMeta }),
	}
}

func (r *ApiKeyRepository) Create(ctx context.Context, key *domain.ApiKey) error {
	return r.base.create(ctx, key)
}

func (r *ApiKeyRepository) Update(ctx context.Context, key *domain.ApiKey) error {
	return r.base.update(ctx, key)
}

func (r *ApiKeyRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ApiKey, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *ApiKeyRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.ApiKey], error) {
	return r.base.list(ctx, opts)
}

func (r *ApiKeyRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *ApiKeyRepository) GetByHash(ctx context.Context, keyHash string) (*domain.ApiKey, error) {
	return r.base.find(func(k *domain.ApiKey) bool { return k.KeyHash == keyHash })
}

func (r *ApiKeyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error) {
	return r.base.filter(func(k *domain.ApiKey) bool { return k.UserID == userID }), nil
}

type InviteCodeRepository struct {
	base baseMemoryRepo[domain.InviteCode]
}

func NewInviteCodeRepository() *InviteCodeRepository {
	return &InviteCodeRepository{
		base: newBaseMemoryRepo[domain.InviteCode](func(c *domain.InviteCode) *domain.RecordMeta { return &c.RecordMeta }),
	}
}

func (r *InviteCodeRepository) Create(ctx context.Context, code *domain.InviteCode) error {
	return r.base.create(ctx, code)
}

func (r *InviteCodeRepository) Update(ctx context.Context, code *domain.InviteCode) error {
	return r.base.update(ctx, code)
}

func (r *InviteCodeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.InviteCode, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *InviteCodeRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.InviteCode], error) {
	return r.base.list(ctx, opts)
}

func (r *InviteCodeRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *InviteCodeRepository) GetByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	return r.base.find(func(c *domain.InviteCode) bool { return c.Code == code })
}
