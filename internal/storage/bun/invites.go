package bunrepo

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type InviteCodeRepository struct {
	base baseRepository[domain.InviteCode]
}

func NewInviteCodeRepository(db *bun.DB) *InviteCodeRepository {
	return &InviteCodeRepository{
		base: newBaseRepository[domain.InviteCode](db, func(c *domain.InviteCode) *domain.RecordMeta { return &c.RecordMeta }),
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
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.code = ?", code)
		},
		withoutDeleted(),
	)
}
