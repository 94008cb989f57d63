package categories

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-shoplist/internal/storage/memory"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

func newCategoriesFixture(t *testing.T) (*Service, *memory.CategoryRepository) {
	t.Helper()
	repo := memory.NewCategoryRepository()
	svc, err := NewService(Dependencies{Categories: repo})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func seedDefault(t *testing.T, repo *memory.CategoryRepository, name string) *domain.Category {
	t.Helper()
	cat := &domain.Category{Name: name, IsDefault: true}
	if err := repo.Create(context.Background(), cat); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return cat
}

func TestCreateRejectsDuplicateNames(t *testing.T) {
	svc, _ := newCategoriesFixture(t)
	userID := uuid.New()
	ctx := context.Background()

	if _, err := svc.Create(ctx, userID, Input{Name: "Snacks"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Create(ctx, userID, Input{Name: "snacks"}); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken for case-insensitive duplicate, got %v", err)
	}
	if _, err := svc.Create(ctx, userID, Input{Name: "  "}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateOwnership(t *testing.T) {
	svc, repo := newCategoriesFixture(t)
	creator := uuid.New()
	stranger := uuid.New()
	ctx := context.Background()

	cat, err := svc.Create(ctx, creator, Input{Name: "Snacks"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, stranger, false, cat.ID, Input{Color: "#f00"}); !errors.Is(err, ErrNotOwnCategory) {
		t.Fatalf("expected ErrNotOwnCategory, got %v", err)
	}
	if _, err := svc.Update(ctx, creator, false, cat.ID, Input{Color: "#f00"}); err != nil {
		t.Fatalf("creator update: %v", err)
	}
	// Admins can edit anyone's category.
	if _, err := svc.Update(ctx, stranger, true, cat.ID, Input{Icon: "cookie"}); err != nil {
		t.Fatalf("admin update: %v", err)
	}

	def := seedDefault(t, repo, "Fruit & Veg")
	if _, err := svc.Update(ctx, creator, false, def.ID, Input{Color: "#0f0"}); !errors.Is(err, ErrDefaultLocked) {
		t.Fatalf("expected ErrDefaultLocked, got %v", err)
	}
	if _, err := svc.Update(ctx, creator, true, def.ID, Input{Color: "#0f0"}); err != nil {
		t.Fatalf("admin should edit defaults: %v", err)
	}
}

func TestDeleteRules(t *testing.T) {
	svc, repo := newCategoriesFixture(t)
	creator := uuid.New()
	ctx := context.Background()

	def := seedDefault(t, repo, "Dairy")
	// Defaults are never deletable, not even by admins.
	if err := svc.Delete(ctx, creator, true, def.ID); !errors.Is(err, ErrDefaultLocked) {
		t.Fatalf("expected ErrDefaultLocked, got %v", err)
	}

	cat, err := svc.Create(ctx, creator, Input{Name: "Snacks"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := svc.Delete(ctx, uuid.New(), false, cat.ID); !errors.Is(err, ErrNotOwnCategory) {
		t.Fatalf("expected ErrNotOwnCategory, got %v", err)
	}
	if err := svc.Delete(ctx, creator, false, cat.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, cat.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("category should be gone, got %v", err)
	}
}

func TestUpdateRenameCollision(t *testing.T) {
	svc, _ := newCategoriesFixture(t)
	creator := uuid.New()
	ctx := context.Background()

	if _, err := svc.Create(ctx, creator, Input{Name: "Snacks"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	other, err := svc.Create(ctx, creator, Input{Name: "Drinks"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Update(ctx, creator, false, other.ID, Input{Name: "Snacks"}); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("expected ErrNameTaken on rename collision, got %v", err)
	}
	// Re-casing your own name is allowed.
	if _, err := svc.Update(ctx, creator, false, other.ID, Input{Name: "DRINKS"}); err != nil {
		t.Fatalf("same-name recase: %v", err)
	}
}
