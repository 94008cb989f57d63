package memory

import (
	"context"
	"strings"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

type UserRepository struct {
	base baseMemoryRepo[domain.User]
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		base: newBaseMemoryRepo[domain.User](func(u *domain.User) *domain.RecordMeta { return &u.RecordMeta }),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.base.create(ctx, user)
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	return r.base.update(ctx, user)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.base.getByID(ctx, id, false)
}

func (r *UserRepository) List(ctx context.Context, opts store.ListOptions) (store.ListResult[domain.User], error) {
	return r.base.list(ctx, opts)
}

func (r *UserRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.base.softDelete(ctx, id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.base.find(func(u *domain.User) bool {
		return strings.EqualFold(u.Username, username)
	})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.base.find(func(u *domain.User) bool {
		return strings.EqualFold(u.Email, email)
	})
}

func (r *UserRepository) Count(ctx context.Context) (int, error) {
	return len(r.base.filter(func(*domain.User) bool { return true })), nil
}
