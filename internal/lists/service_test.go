package lists

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-shoplist/internal/access"
	"github.com/goliatone/go-shoplist/internal/events"
	"github.com/goliatone/go-shoplist/internal/storage/memory"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

type captureBroadcaster struct {
	events []domain.Event
}

func (b *captureBroadcaster) Broadcast(ev domain.Event) {
	b.events = append(b.events, ev)
}

type listsFixture struct {
	svc        *Service
	users      *memory.UserRepository
	lists      *memory.ShoppingListRepository
	members    *memory.ListMemberRepository
	items      *memory.ListItemRepository
	broadcasts *captureBroadcaster
}

func newListsFixture(t *testing.T) *listsFixture {
	t.Helper()

	f := &listsFixture{
		users:      memory.NewUserRepository(),
		members:    memory.NewListMemberRepository(),
		items:      memory.NewListItemRepository(),
		broadcasts: &captureBroadcaster{},
	}
	f.lists = memory.NewShoppingListRepository(f.members, f.items)

	accessSvc, err := access.NewService(access.Dependencies{Lists: f.lists, Members: f.members})
	if err != nil {
		t.Fatalf("access.NewService: %v", err)
	}
	router, err := events.NewRouter(events.Dependencies{Broadcaster: f.broadcasts})
	if err != nil {
		t.Fatalf("events.NewRouter: %v", err)
	}

	svc, err := NewService(Dependencies{
		Lists:   f.lists,
		Members: f.members,
		Users:   f.users,
		Access:  accessSvc,
		Router:  router,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	f.svc = svc
	return f
}

func (f *listsFixture) addUser(t *testing.T, username string) *domain.User {
	t.Helper()
	user := &domain.User{Username: username, IsActive: true}
	if err := f.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestCreateAndGet(t *testing.T) {
	f := newListsFixture(t)
	owner := f.addUser(t, "alice")
	ctx := context.Background()

	list, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: " Groceries "})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if list.Name != "Groceries" || list.OwnerID != owner.ID {
		t.Fatalf("unexpected list: %+v", list)
	}

	if _, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: "   "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error for blank name, got %v", err)
	}

	got, err := f.svc.Get(ctx, list.ID, owner.ID)
	if err != nil || got.ID != list.ID {
		t.Fatalf("Get: %v", err)
	}
}

func TestShareGrantsAccess(t *testing.T) {
	f := newListsFixture(t)
	owner := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	ctx := context.Background()

	list, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.svc.Get(ctx, list.ID, bob.ID); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden before share, got %v", err)
	}

	view, err := f.svc.Share(ctx, list.ID, owner.ID, "bob", "")
	if err != nil {
		t.Fatalf("Share: %v", err)
	}
	if view.Role != domain.RoleEditor {
		t.Fatalf("default role should be editor, got %q", view.Role)
	}

	if _, err := f.svc.Get(ctx, list.ID, bob.ID); err != nil {
		t.Fatalf("shared user should view the list: %v", err)
	}

	if len(f.broadcasts.events) != 1 || f.broadcasts.events[0].Type != domain.EventListShared {
		t.Fatalf("list_shared broadcast missing: %+v", f.broadcasts.events)
	}
}

func TestShareRejections(t *testing.T) {
	f := newListsFixture(t)
	owner := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	ctx := context.Background()

	list, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "alice", ""); !errors.Is(err, ErrSelfShare) {
		t.Fatalf("expected ErrSelfShare, got %v", err)
	}
	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "nobody", ""); !errors.Is(err, access.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown user, got %v", err)
	}
	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "bob", "superuser"); !errors.Is(err, ErrBadRole) {
		t.Fatalf("expected ErrBadRole, got %v", err)
	}

	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "bob", domain.RoleViewer); err != nil {
		t.Fatalf("Share: %v", err)
	}
	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "bob", domain.RoleViewer); !errors.Is(err, ErrAlreadyShared) {
		t.Fatalf("expected ErrAlreadyShared, got %v", err)
	}

	// Members cannot share, only the owner.
	if _, err := f.svc.Share(ctx, list.ID, bob.ID, "alice", ""); !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("expected ErrOwnerOnly, got %v", err)
	}
}

func TestUnshare(t *testing.T) {
	f := newListsFixture(t)
	owner := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	carol := f.addUser(t, "carol")
	ctx := context.Background()

	list, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "bob", ""); err != nil {
		t.Fatalf("Share: %v", err)
	}
	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "carol", ""); err != nil {
		t.Fatalf("Share: %v", err)
	}

	// A member cannot remove another member.
	if err := f.svc.Unshare(ctx, list.ID, bob.ID, carol.ID); !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("expected ErrOwnerOnly, got %v", err)
	}
	// A member can leave.
	if err := f.svc.Unshare(ctx, list.ID, bob.ID, bob.ID); err != nil {
		t.Fatalf("self-unshare: %v", err)
	}
	// The owner can remove anyone.
	if err := f.svc.Unshare(ctx, list.ID, owner.ID, carol.ID); err != nil {
		t.Fatalf("owner unshare: %v", err)
	}

	if _, err := f.svc.Get(ctx, list.ID, bob.ID); !errors.Is(err, access.ErrForbidden) {
		t.Fatalf("expected ErrForbidden after unshare, got %v", err)
	}
}

func TestMembersIncludesOwnerFirst(t *testing.T) {
	f := newListsFixture(t)
	owner := f.addUser(t, "alice")
	f.addUser(t, "bob")
	ctx := context.Background()

	list, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "bob", domain.RoleViewer); err != nil {
		t.Fatalf("Share: %v", err)
	}

	views, err := f.svc.Members(ctx, list.ID, owner.ID)
	if err != nil {
		t.Fatalf("Members: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 members, got %d", len(views))
	}
	if views[0].Role != domain.RoleOwner || views[0].Username != "alice" {
		t.Fatalf("owner should come first: %+v", views[0])
	}
	if views[1].Username != "bob" || views[1].Role != domain.RoleViewer {
		t.Fatalf("unexpected member row: %+v", views[1])
	}
}

func TestDeleteOwnerOnlyAndCascades(t *testing.T) {
	f := newListsFixture(t)
	owner := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	ctx := context.Background()

	list, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "bob", ""); err != nil {
		t.Fatalf("Share: %v", err)
	}
	item := &domain.ListItem{ListID: list.ID, Name: "Milk", AddedBy: owner.ID}
	if err := f.items.Create(ctx, item); err != nil {
		t.Fatalf("create item: %v", err)
	}

	if err := f.svc.Delete(ctx, list.ID, bob.ID); !errors.Is(err, ErrOwnerOnly) {
		t.Fatalf("expected ErrOwnerOnly, got %v", err)
	}
	if err := f.svc.Delete(ctx, list.ID, owner.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := f.lists.GetByID(ctx, list.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("list should be gone, got %v", err)
	}
	if items, _ := f.items.ListByList(ctx, list.ID); len(items) != 0 {
		t.Fatalf("items should cascade, got %+v", items)
	}
	if members, _ := f.members.ListMembers(ctx, list.ID); len(members) != 0 {
		t.Fatalf("members should cascade, got %+v", members)
	}
}

func TestForUserIncludesShared(t *testing.T) {
	f := newListsFixture(t)
	owner := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	ctx := context.Background()

	mine, err := f.svc.Create(ctx, bob.ID, CreateInput{Name: "Bob's"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	shared, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Share(ctx, shared.ID, owner.ID, "bob", ""); err != nil {
		t.Fatalf("Share: %v", err)
	}

	lists, err := f.svc.ForUser(ctx, bob.ID)
	if err != nil {
		t.Fatalf("ForUser: %v", err)
	}
	if len(lists) != 2 {
		t.Fatalf("expected owned + shared lists, got %d", len(lists))
	}
	seen := map[uuid.UUID]bool{}
	for _, l := range lists {
		seen[l.ID] = true
	}
	if !seen[mine.ID] || !seen[shared.ID] {
		t.Fatalf("missing expected lists: %+v", lists)
	}
}

func TestUpdateRequiresEditRights(t *testing.T) {
	f := newListsFixture(t)
	owner := f.addUser(t, "alice")
	bob := f.addUser(t, "bob")
	ctx := context.Background()

	list, err := f.svc.Create(ctx, owner.ID, CreateInput{Name: "Groceries"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := f.svc.Share(ctx, list.ID, owner.ID, "bob", domain.RoleViewer); err != nil {
		t.Fatalf("Share: %v", err)
	}

	name := "Renamed"
	if _, err := f.svc.Update(ctx, list.ID, bob.ID, UpdateInput{Name: &name}); !errors.Is(err, access.ErrViewOnly) {
		t.Fatalf("expected ErrViewOnly, got %v", err)
	}

	archived := true
	updated, err := f.svc.Update(ctx, list.ID, owner.ID, UpdateInput{Name: &name, IsArchived: &archived})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Renamed" || !updated.IsArchived {
		t.Fatalf("update not applied: %+v", updated)
	}
}
