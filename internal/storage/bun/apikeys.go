package bunrepo

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ApiKeyRepository struct {
	base baseRepository[domain.ApiKey]
}

func NewApiKeyRepository(db *bun.DB) *ApiKeyRepository {
	return &ApiKeyRepository{
		base: newBaseRepository[domain.ApiKey](db, func(k *domain.ApiKey) *domain.RecordMeta { return &k.RecordMeta }),
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
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.key_hash = ?", keyHash)
		},
		withoutDeleted(),
	)
}

func (r *ApiKeyRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error) {
	return r.base.selectMany(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.user_id = ?", userID).
				Order("created_at DESC")
		},
		withoutDeleted(),
	)
}
