package bunrepo

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type ListMemberRepository struct {
	base baseRepository[domain.ListMember]
}

func NewListMemberRepository(db *bun.DB) *ListMemberRepository {
	return &ListMemberRepository{
		base: newBaseRepository[domain.ListMember](db, func(m *domain.ListMember) *domain.RecordMeta { return &m.RecordMeta }),
	}
}

func (r *ListMemberRepository) Create(ctx context.Context, member *domain.ListMember) error {
	return r.base.create(ctx, member)
}

func (r *ListMemberRepository) Update(ctx context.Context, member *domain.ListMember) error {
	return r.base.update(ctx, member)
}

func (r *ListMemberRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ListMember, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *ListMemberRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.ListMember], error) {
	return r.base.list(ctx, opts)
}

func (r *ListMemberRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *ListMemberRepository) GetMember(ctx context.Context, listID, userID uuid.UUID) (*domain.ListMember, error) {
	return r.base.get(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.list_id = ?", listID).
				Where("?TableAlias.user_id = ?", userID)
		},
		withoutDeleted(),
	)
}

func (r *ListMemberRepository) ListMembers(ctx context.Context, listID uuid.UUID) ([]domain.ListMember, error) {
	return r.base.selectMany(ctx,
		func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.list_id = ?", listID).
				Order("created_at ASC")
		},
		withoutDeleted(),
	)
}

func (r *ListMemberRepository) RemoveMember(ctx context.Context, listID, userID uuid.UUID) error {
	res, err := r.base.db.NewDelete().
		Model((*domain.ListMember)(nil)).
		Where("list_id = ?", listID).
		Where("user_id = ?", userID).
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
