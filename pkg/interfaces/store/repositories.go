package store

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// ErrConflict is returned when a uniqueness constraint would be violated.
var ErrConflict = errors.New("store: conflict")

// ListOptions capture pagination and filtering knobs common to repositories.
type ListOptions struct {
	Limit              int
	Offset             int
	Since              time.Time
	Until              time.Time
	IncludeSoftDeleted bool
}

// ListResult bundles records and totals.
type ListResult[T any] struct {
	Items []T
	Total int
}

// Repository defines base CRUD helpers reused by entity-specific interfaces.
type Repository[T any] interface {
	Create(ctx context.Context, record *T) error
	Update(ctx context.Context, record *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	List(ctx context.Context, opts ListOptions) (ListResult[T], error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type UserRepository interface {
	Repository[domain.User]
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Count(ctx context.Context) (int, error)
}

type ShoppingListRepository interface {
	Repository[domain.ShoppingList]
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.ShoppingList, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ListMemberRepository interface {
	Repository[domain.ListMember]
	GetMember(ctx context.Context, listID, userID uuid.UUID) (*domain.ListMember, error)
	ListMembers(ctx context.Context, listID uuid.UUID) ([]domain.ListMember, error)
	RemoveMember(ctx context.Context, listID, userID uuid.UUID) error
}

type CategoryRepository interface {
	Repository[domain.Category]
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ListItemRepository interface {
	Repository[domain.ListItem]
	GetItem(ctx context.Context, listID, itemID uuid.UUID) (*domain.ListItem, error)
	ListByList(ctx context.Context, listID uuid.UUID) ([]domain.ListItem, error)
	DeleteItem(ctx context.Context, listID, itemID uuid.UUID) error
	DeleteChecked(ctx context.Context, listID uuid.UUID) (int, error)
}

type ItemCategoryMemoryRepository interface {
	Repository[domain.ItemCategoryMemory]
	GetBestMatch(ctx context.Context, itemNameLower string) (*domain.ItemCategoryMemory, error)
	Search(ctx context.Context, query string, limit int) ([]domain.ItemCategoryMemory, error)
	GetByNameAndCategory(ctx context.Context, itemNameLower string, categoryID uuid.UUID) (*domain.ItemCategoryMemory, error)
}

type ApiKeyRepository interface {
	Repository[domain.ApiKey]
	GetByHash(ctx context.Context, keyHash string) (*domain.ApiKey, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.ApiKey, error)
}

type InviteCodeRepository interface {
	Repository[domain.InviteCode]
	GetByCode(ctx context.Context, code string) (*domain.InviteCode, error)
}

type PushSubscriptionRepository interface {
	Repository[domain.PushSubscription]
	GetByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) (*domain.PushSubscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error
	DeleteBatch(ctx context.Context, ids []uuid.UUID) error
}

type NotificationPreferenceRepository interface {
	Repository[domain.NotificationPreference]
	GetByUser(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error)
}
