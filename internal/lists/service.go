package lists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-shoplist/internal/access"
	"github.com/goliatone/go-shoplist/internal/events"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

var (
	ErrOwnerOnly     = errors.New("lists: only the owner can do that")
	ErrSelfShare     = errors.New("lists: cannot share a list with its owner")
	ErrAlreadyShared = errors.New("lists: list is already shared with that user")
	ErrBadRole       = errors.New("lists: role must be editor or viewer")
)

// CreateInput carries the new-list form.
type CreateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
}

// UpdateInput carries optional list changes; nil fields are left untouched.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
	Icon        *string `json:"icon,omitempty"`
	IsArchived  *bool   `json:"is_archived,omitempty"`
}

// MemberView is a member row joined with display fields.
type MemberView struct {
	UserID      uuid.UUID `json:"user_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
}

// Dependencies wires repositories, access checks, and the event router.
type Dependencies struct {
	Lists   store.ShoppingListRepository
	Members store.ListMemberRepository
	Users   store.UserRepository
	Access  *access.Service
	Router  *events.Router
	Logger  logger.Logger
}

// Service manages shopping lists and their membership.
type Service struct {
	lists   store.ShoppingListRepository
	members store.ListMemberRepository
	users   store.UserRepository
	access  *access.Service
	router  *events.Router
	log     logger.Logger
}

func NewService(deps Dependencies) (*Service, error) {
	if deps.Lists == nil {
		return nil, errors.New("lists: list repository is required")
	}
	if deps.Members == nil {
		return nil, errors.New("lists: member repository is required")
	}
	if deps.Users == nil {
		return nil, errors.New("lists: user repository is required")
	}
	if deps.Access == nil {
		return nil, errors.New("lists: access service is required")
	}
	log := deps.Logger
	if log == nil {
		log = &logger.Nop{}
	}
	return &Service{
		lists:   deps.Lists,
		members: deps.Members,
		users:   deps.Users,
		access:  deps.Access,
		router:  deps.Router,
		log:     log,
	}, nil
}

// Create makes a new list owned by the user.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*domain.ShoppingList, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domain.Invalidf("lists: name is required")
	}
	list := &domain.ShoppingList{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     ownerID,
		Color:       input.Color,
		Icon:        input.Icon,
	}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, fmt.Errorf("lists: create: %w", err)
	}
	return list, nil
}

// Get returns the list if the user can view it.
func (s *Service) Get(ctx context.Context, listID, userID uuid.UUID) (*domain.ShoppingList, error) {
	return s.access.Check(ctx, listID, userID, false)
}

// ForUser returns every list the user owns or belongs to.
func (s *Service) ForUser(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingList, error) {
	return s.lists.ListForUser(ctx, userID)
}

// Update applies changes; any member with edit rights may update.
func (s *Service) Update(ctx context.Context, listID, userID uuid.UUID, input UpdateInput) (*domain.ShoppingList, error) {
	list, err := s.access.Check(ctx, listID, userID, true)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, domain.Invalidf("lists: name is required")
		}
		list.Name = name
	}
	if input.Description != nil {
		list.Description = strings.TrimSpace(*input.Description)
	}
	if input.Color != nil {
		list.Color = *input.Color
	}
	if input.Icon != nil {
		list.Icon = *input.Icon
	}
	if input.IsArchived != nil {
		list.IsArchived = *input.IsArchived
	}
	if err := s.lists.Update(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Delete removes a list and everything on it. Owner only.
func (s *Service) Delete(ctx context.Context, listID, userID uuid.UUID) error {
	list, err := s.access.Check(ctx, listID, userID, false)
	if err != nil {
		return err
	}
	if list.OwnerID != userID {
		return ErrOwnerOnly
	}
	return s.lists.Delete(ctx, listID)
}

// Share grants another user access by username and notifies them. Owner only.
func (s *Service) Share(ctx context.Context, listID, ownerID uuid.UUID, username, role string) (*MemberView, error) {
	list, err := s.access.Check(ctx, listID, ownerID, false)
	if err != nil {
		return nil, err
	}
	if list.OwnerID != ownerID {
		return nil, ErrOwnerOnly
	}
	if role == "" {
		role = domain.RoleEditor
	}
	if role != domain.RoleEditor && role != domain.RoleViewer {
		return nil, ErrBadRole
	}

	target, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, access.ErrNotFound
		}
		return nil, err
	}
	if target.ID == list.OwnerID {
		return nil, ErrSelfShare
	}
	if _, err := s.members.GetMember(ctx, listID, target.ID); err == nil {
		return nil, ErrAlreadyShared
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	member := &domain.ListMember{
		ListID: listID,
		UserID: target.ID,
		Role:   role,
	}
	if err := s.members.Create(ctx, member); err != nil {
		return nil, fmt.Errorf("lists: share: %w", err)
	}

	if s.router != nil {
		actor, err := s.users.GetByID(ctx, ownerID)
		if err != nil {
			actor = &domain.User{RecordMeta: domain.RecordMeta{ID: ownerID}}
		}
		s.router.PublishShared(ctx, listID, list.Name, target.ID, actor)
	}

	s.log.Info("lists: shared",
		logger.Field{Key: "list_id", Value: listID},
		logger.Field{Key: "with", Value: target.Username},
		logger.Field{Key: "role", Value: role})
	return &MemberView{
		UserID:      target.ID,
		Username:    target.Username,
		DisplayName: target.DisplayName,
		Role:        role,
	}, nil
}

// Unshare revokes a member's access. The owner can remove anyone; members
// can remove themselves.
func (s *Service) Unshare(ctx context.Context, listID, requestedBy, memberID uuid.UUID) error {
	list, err := s.access.Check(ctx, listID, requestedBy, false)
	if err != nil {
		return err
	}
	if list.OwnerID != requestedBy && requestedBy != memberID {
		return ErrOwnerOnly
	}
	return s.members.RemoveMember(ctx, listID, memberID)
}

// Members returns the owner plus shared members with display fields.
func (s *Service) Members(ctx context.Context, listID, userID uuid.UUID) ([]MemberView, error) {
	list, err := s.access.Check(ctx, listID, userID, false)
	if err != nil {
		return nil, err
	}

	views := []MemberView{}
	if owner, err := s.users.GetByID(ctx, list.OwnerID); err == nil {
		views = append(views, MemberView{
			UserID:      owner.ID,
			Username:    owner.Username,
			DisplayName: owner.DisplayName,
			Role:        domain.RoleOwner,
		})
	}

	members, err := s.members.ListMembers(ctx, listID)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		view := MemberView{UserID: m.UserID, Role: m.Role}
		if u, err := s.users.GetByID(ctx, m.UserID); err == nil {
			view.Username = u.Username
			view.DisplayName = u.DisplayName
		}
		views = append(views, view)
	}
	return views, nil
}
