package access

import (
	"context"
	"errors"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

var (
	// ErrNotFound means the list does not exist.
	ErrNotFound = errors.New("access: list not found")
	// ErrForbidden means the principal has no membership on the list. The
	// HTTP layer renders this as not-found to avoid existence leakage; the
	// realtime handshake keeps the distinction in its close codes.
	ErrForbidden = errors.New("access: forbidden")
	// ErrViewOnly means the principal may read but not mutate the list.
	ErrViewOnly = errors.New("access: view-only membership")
)

// Service answers "does principal P have access to list L, and at what
// level" for every transport.
type Service struct {
	lists   store.ShoppingListRepository
	members store.ListMemberRepository
}

// Dependencies wires repositories into the service.
type Dependencies struct {
	Lists   store.ShoppingListRepository
	Members store.ListMemberRepository
}

// NewService constructs the access checker.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Lists == nil {
		return nil, errors.New("access: list repository is required")
	}
	if deps.Members == nil {
		return nil, errors.New("access: member repository is required")
	}
	return &Service{lists: deps.Lists, members: deps.Members}, nil
}

// Check verifies the user can access the list, optionally requiring edit
// rights, and returns the list on success. Owners always pass; members pass
// unless requireEdit is set and their role is viewer.
func (s *Service) Check(ctx context.Context, listID, userID uuid.UUID, requireEdit bool) (*domain.ShoppingList, error) {
	lst, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if lst.OwnerID == userID {
		return lst, nil
	}

	member, err := s.members.GetMember(ctx, listID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	if requireEdit && member.Role == domain.RoleViewer {
		return nil, ErrViewOnly
	}
	return lst, nil
}

// CanView reports read access, used by the realtime handshake.
func (s *Service) CanView(ctx context.Context, listID, userID uuid.UUID) error {
	_, err := s.Check(ctx, listID, userID, false)
	return err
}

// Subscribers returns the owner plus every member of the list: the set of
// users interested in its events.
func (s *Service) Subscribers(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error) {
	lst, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	members, err := s.members.ListMembers(ctx, listID)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(members)+1)
	ids = append(ids, lst.OwnerID)
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	return ids, nil
}
