package commands

import (
	"context"
	"errors"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-shoplist/internal/categories"
	"github.com/goliatone/go-shoplist/internal/push"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/google/uuid"
)

// Catalog exposes go-command compatible handlers so host transports (HTTP
// today, CLI or queues later) invoke mutations through one shape.
type Catalog struct {
	UpsertPreference command.Commander[PreferenceUpsert]
	Subscribe        command.Commander[PushSubscribe]
	Unsubscribe      command.Commander[PushUnsubscribe]
	CreateInvite     command.Commander[InviteCreate]
	UpsertCategory   command.Commander[CategoryUpsert]
}

type pushService interface {
	Subscribe(ctx context.Context, userID uuid.UUID, input push.SubscribeInput) (*domain.PushSubscription, error)
	Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error
	UpdatePreferences(ctx context.Context, userID uuid.UUID, input push.PreferenceInput) (*domain.NotificationPreference, error)
}

type inviteService interface {
	CreateInvite(ctx context.Context, createdBy uuid.UUID, expiresIn time.Duration) (*domain.InviteCode, error)
}

type categoryService interface {
	Create(ctx context.Context, createdBy uuid.UUID, input categories.Input) (*domain.Category, error)
	Update(ctx context.Context, userID uuid.UUID, isAdmin bool, categoryID uuid.UUID, input categories.Input) (*domain.Category, error)
}

// Dependencies wires feature services into the command catalog.
type Dependencies struct {
	Push       pushService
	Invites    inviteService
	Categories categoryService
	Logger     logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Push == nil {
		return nil, errors.New("commands: push service is required")
	}
	if deps.Invites == nil {
		return nil, errors.New("commands: invite service is required")
	}
	if deps.Categories == nil {
		return nil, errors.New("commands: category service is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}

	return &Catalog{
		UpsertPreference: preferenceUpsertCommand{svc: deps.Push},
		Subscribe:        pushSubscribeCommand{svc: deps.Push},
		Unsubscribe:      pushUnsubscribeCommand{svc: deps.Push},
		CreateInvite:     inviteCreateCommand{svc: deps.Invites},
		UpsertCategory:   categoryUpsertCommand{svc: deps.Categories},
	}, nil
}

// PreferenceUpsert applies per-event opt-in changes for a user.
type PreferenceUpsert struct {
	UserID uuid.UUID            `json:"user_id"`
	Input  push.PreferenceInput `json:"input"`
}

type preferenceUpsertCommand struct {
	svc pushService
}

func (c preferenceUpsertCommand) Execute(ctx context.Context, msg PreferenceUpsert) error {
	if msg.UserID == uuid.Nil {
		return errors.New("commands: user id is required")
	}
	_, err := c.svc.UpdatePreferences(ctx, msg.UserID, msg.Input)
	return err
}

// PushSubscribe registers a browser push endpoint.
type PushSubscribe struct {
	UserID       uuid.UUID           `json:"user_id"`
	Subscription push.SubscribeInput `json:"subscription"`
}

type pushSubscribeCommand struct {
	svc pushService
}

func (c pushSubscribeCommand) Execute(ctx context.Context, msg PushSubscribe) error {
	if msg.UserID == uuid.Nil {
		return errors.New("commands: user id is required")
	}
	_, err := c.svc.Subscribe(ctx, msg.UserID, msg.Subscription)
	return err
}

// PushUnsubscribe drops a push endpoint.
type PushUnsubscribe struct {
	UserID   uuid.UUID `json:"user_id"`
	Endpoint string    `json:"endpoint"`
}

type pushUnsubscribeCommand struct {
	svc pushService
}

func (c pushUnsubscribeCommand) Execute(ctx context.Context, msg PushUnsubscribe) error {
	if msg.UserID == uuid.Nil {
		return errors.New("commands: user id is required")
	}
	return c.svc.Unsubscribe(ctx, msg.UserID, msg.Endpoint)
}

// InviteCreate mints a registration invite.
type InviteCreate struct {
	CreatedBy uuid.UUID     `json:"created_by"`
	ExpiresIn time.Duration `json:"expires_in"`
}

type inviteCreateCommand struct {
	svc inviteService
}

func (c inviteCreateCommand) Execute(ctx context.Context, msg InviteCreate) error {
	if msg.CreatedBy == uuid.Nil {
		return errors.New("commands: creator id is required")
	}
	_, err := c.svc.CreateInvite(ctx, msg.CreatedBy, msg.ExpiresIn)
	return err
}

// CategoryUpsert creates a category, or updates it when an id is supplied.
type CategoryUpsert struct {
	UserID     uuid.UUID        `json:"user_id"`
	IsAdmin    bool             `json:"is_admin"`
	CategoryID uuid.UUID        `json:"category_id"`
	Input      categories.Input `json:"input"`
}

type categoryUpsertCommand struct {
	svc categoryService
}

func (c categoryUpsertCommand) Execute(ctx context.Context, msg CategoryUpsert) error {
	if msg.UserID == uuid.Nil {
		return errors.New("commands: user id is required")
	}
	if msg.CategoryID != uuid.Nil {
		_, err := c.svc.Update(ctx, msg.UserID, msg.IsAdmin, msg.CategoryID, msg.Input)
		return err
	}
	_, err := c.svc.Create(ctx, msg.UserID, msg.Input)
	return err
}
