package memory

import (
	"context"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

type ShoppingListRepository struct {
	base    baseMemoryRepo[domain.ShoppingList]
	members *ListMemberRepository
	items   *ListItemRepository
}

// NewShoppingListRepository wires the list repo to the member and item repos
// so Delete can cascade the way the sqlite store does.
func NewShoppingListRepository(members *ListMemberRepository, items *ListItemRepository) *ShoppingListRepository {
	return &ShoppingListRepository{
		base:    newBaseMemoryRepo[domain.ShoppingList](func(l *domain.ShoppingList) *domain.RecordMeta { return &l.RecordMeta }),
		members: members,
		items:   items,
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

func (r *ShoppingListRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingList, error) {
	memberOf := map[uuid.UUID]bool{}
	if r.members != nil {
		for _, m := range r.members.base.filter(func(m *domain.ListMember) bool { return m.UserID == userID }) {
			memberOf[m.ListID] = true
		}
	}
	return r.base.filter(func(l *domain.ShoppingList) bool {
		return l.OwnerID == userID || memberOf[l.ID]
	}), nil
}

func (r *ShoppingListRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if r.items != nil {
		r.items.base.remove(func(i *domain.ListItem) bool { return i.ListID == id })
	}
	if r.members != nil {
		r.members.base.remove(func(m *domain.ListMember) bool { return m.ListID == id })
	}
	if removed := r.base.remove(func(l *domain.ShoppingList) bool { return l.ID == id }); removed == 0 {
		return store.ErrNotFound
	}
	return nil
}

type ListMemberRepository struct {
	base baseMemoryRepo[domain.ListMember]
}

func NewListMemberRepository() *ListMemberRepository {
	return &ListMemberRepository{
		base: newBaseMemoryRepo[domain.ListMember](func(m *domain.ListMember) *domain.RecordMeta { return &m.RecordMeta }),
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
	return r.base.find(func(m *domain.ListMember) bool {
		return m.ListID == listID && m.UserID == userID
	})
}

func (r *ListMemberRepository) ListMembers(ctx context.Context, listID uuid.UUID) ([]domain.ListMember, error) {
	return r.base.filter(func(m *domain.ListMember) bool { return m.ListID == listID }), nil
}

func (r *ListMemberRepository) RemoveMember(ctx context.Context, listID, userID uuid.UUID) error {
	removed := r.base.remove(func(m *domain.ListMember) bool {
		return m.ListID == listID && m.UserID == userID
	})
	if removed == 0 {
		return store.ErrNotFound
	}
	return nil
}
