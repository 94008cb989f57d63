package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-shoplist/internal/categories"
	"github.com/goliatone/go-shoplist/internal/push"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/google/uuid"
)

type fakePush struct {
	subscribed   []push.SubscribeInput
	unsubscribed []string
	updated      []push.PreferenceInput
}

func (f *fakePush) Subscribe(ctx context.Context, userID uuid.UUID, input push.SubscribeInput) (*domain.PushSubscription, error) {
	f.subscribed = append(f.subscribed, input)
	return &domain.PushSubscription{UserID: userID, Endpoint: input.Endpoint}, nil
}

func (f *fakePush) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	f.unsubscribed = append(f.unsubscribed, endpoint)
	return nil
}

func (f *fakePush) UpdatePreferences(ctx context.Context, userID uuid.UUID, input push.PreferenceInput) (*domain.NotificationPreference, error) {
	f.updated = append(f.updated, input)
	return domain.DefaultPreference(userID), nil
}

type fakeInvites struct {
	created []uuid.UUID
}

func (f *fakeInvites) CreateInvite(ctx context.Context, createdBy uuid.UUID, expiresIn time.Duration) (*domain.InviteCode, error) {
	f.created = append(f.created, createdBy)
	return &domain.InviteCode{Code: "ABCD1234", CreatedBy: createdBy}, nil
}

type fakeCategories struct {
	created []categories.Input
	updated []uuid.UUID
}

func (f *fakeCategories) Create(ctx context.Context, createdBy uuid.UUID, input categories.Input) (*domain.Category, error) {
	f.created = append(f.created, input)
	return &domain.Category{Name: input.Name, CreatedBy: createdBy}, nil
}

func (f *fakeCategories) Update(ctx context.Context, userID uuid.UUID, isAdmin bool, categoryID uuid.UUID, input categories.Input) (*domain.Category, error) {
	f.updated = append(f.updated, categoryID)
	return &domain.Category{Name: input.Name}, nil
}

func newCatalogFixture(t *testing.T) (*Catalog, *fakePush, *fakeInvites, *fakeCategories) {
	t.Helper()
	pushSvc := &fakePush{}
	invites := &fakeInvites{}
	cats := &fakeCategories{}
	catalog, err := NewCatalog(Dependencies{Push: pushSvc, Invites: invites, Categories: cats})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return catalog, pushSvc, invites, cats
}

func TestCatalogValidatesDependencies(t *testing.T) {
	if _, err := NewCatalog(Dependencies{}); err == nil {
		t.Fatalf("expected error for missing dependencies")
	}
}

func TestSubscribeCommand(t *testing.T) {
	catalog, pushSvc, _, _ := newCatalogFixture(t)

	msg := PushSubscribe{UserID: uuid.New()}
	msg.Subscription.Endpoint = "https://push/endpoint"
	if err := catalog.Subscribe.Execute(context.Background(), msg); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(pushSvc.subscribed) != 1 {
		t.Fatalf("subscribe not delegated")
	}

	msg.UserID = uuid.Nil
	if err := catalog.Subscribe.Execute(context.Background(), msg); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}

func TestUnsubscribeCommand(t *testing.T) {
	catalog, pushSvc, _, _ := newCatalogFixture(t)

	err := catalog.Unsubscribe.Execute(context.Background(), PushUnsubscribe{
		UserID:   uuid.New(),
		Endpoint: "https://push/endpoint",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(pushSvc.unsubscribed) != 1 || pushSvc.unsubscribed[0] != "https://push/endpoint" {
		t.Fatalf("unsubscribe not delegated: %v", pushSvc.unsubscribed)
	}
}

func TestPreferenceUpsertCommand(t *testing.T) {
	catalog, pushSvc, _, _ := newCatalogFixture(t)

	enabled := false
	err := catalog.UpsertPreference.Execute(context.Background(), PreferenceUpsert{
		UserID: uuid.New(),
		Input:  push.PreferenceInput{PushEnabled: &enabled},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(pushSvc.updated) != 1 || pushSvc.updated[0].PushEnabled == nil {
		t.Fatalf("preference update not delegated")
	}
}

func TestInviteCreateCommand(t *testing.T) {
	catalog, _, invites, _ := newCatalogFixture(t)

	admin := uuid.New()
	if err := catalog.CreateInvite.Execute(context.Background(), InviteCreate{CreatedBy: admin}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(invites.created) != 1 || invites.created[0] != admin {
		t.Fatalf("invite creation not delegated")
	}

	if err := catalog.CreateInvite.Execute(context.Background(), InviteCreate{}); err == nil {
		t.Fatalf("expected error for missing creator")
	}
}

func TestCategoryUpsertCommandRoutes(t *testing.T) {
	catalog, _, _, cats := newCatalogFixture(t)
	userID := uuid.New()

	err := catalog.UpsertCategory.Execute(context.Background(), CategoryUpsert{
		UserID: userID,
		Input:  categories.Input{Name: "Snacks"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(cats.created) != 1 || len(cats.updated) != 0 {
		t.Fatalf("create not routed: %+v %+v", cats.created, cats.updated)
	}

	categoryID := uuid.New()
	err = catalog.UpsertCategory.Execute(context.Background(), CategoryUpsert{
		UserID:     userID,
		CategoryID: categoryID,
		Input:      categories.Input{Name: "Renamed"},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(cats.updated) != 1 || cats.updated[0] != categoryID {
		t.Fatalf("update not routed: %+v", cats.updated)
	}
}

var errBoom = errors.New("boom")

type failingPush struct{ fakePush }

func (f *failingPush) Subscribe(ctx context.Context, userID uuid.UUID, input push.SubscribeInput) (*domain.PushSubscription, error) {
	return nil, errBoom
}

func TestCommandSurfacesServiceError(t *testing.T) {
	catalog, err := NewCatalog(Dependencies{
		Push:       &failingPush{},
		Invites:    &fakeInvites{},
		Categories: &fakeCategories{},
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	msg := PushSubscribe{UserID: uuid.New()}
	if err := catalog.Subscribe.Execute(context.Background(), msg); !errors.Is(err, errBoom) {
		t.Fatalf("expected service error surfaced, got %v", err)
	}
}
