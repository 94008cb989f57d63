package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RecordMeta captures identifiers and audit fields shared across entities.
type RecordMeta struct {
	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
	DeletedAt time.Time `bun:",soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// EnsureID assigns a UUID when the struct is about to be persisted.
func (m *RecordMeta) EnsureID() {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
}

// JSONMap persists arbitrary metadata fields as JSON.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if m == nil {
		return errors.New("JSONMap: Scan on nil pointer")
	}
	switch v := value.(type) {
	case nil:
		*m = nil
		return nil
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	default:
		return fmt.Errorf("JSONMap: unsupported type %T", value)
	}
}

// Member roles. Owners are implicit (the list's owner_id); members carry
// editor or viewer.
const (
	RoleOwner  = "owner"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// User is an account that can own lists, join lists, and receive pushes.
type User struct {
	bun.BaseModel `bun:"table:users"`
	RecordMeta

	Username     string  `bun:",unique,nullzero,notnull" json:"username"`
	Email        string  `bun:",unique,nullzero,notnull" json:"email"`
	PasswordHash string  `bun:",nullzero,notnull" json:"-"`
	DisplayName  string  `bun:",nullzero" json:"display_name"`
	IsAdmin      bool    `bun:"," json:"is_admin"`
	IsActive     bool    `bun:"," json:"is_active"`
	Settings     JSONMap `bun:"type:jsonb,nullzero" json:"settings,omitempty"`
}

// Name returns the name shown to other collaborators.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}

// ShoppingList is the shared collaborative resource.
type ShoppingList struct {
	bun.BaseModel `bun:"table:shopping_lists"`
	RecordMeta

	Name        string    `bun:",nullzero,notnull" json:"name"`
	Description string    `bun:",nullzero" json:"description"`
	OwnerID     uuid.UUID `bun:",type:uuid,notnull" json:"owner_id"`
	Color       string    `bun:",nullzero" json:"color"`
	Icon        string    `bun:",nullzero" json:"icon"`
	IsArchived  bool      `bun:"," json:"is_archived"`
}

// ListMember links a user to a shared list with a role.
type ListMember struct {
	bun.BaseModel `bun:"table:list_members"`
	RecordMeta

	ListID uuid.UUID `bun:",type:uuid,notnull,unique:uq_list_member" json:"list_id"`
	UserID uuid.UUID `bun:",type:uuid,notnull,unique:uq_list_member" json:"user_id"`
	Role   string    `bun:",nullzero" json:"role"`
}

// Category groups items. Default categories are seeded at startup; users may
// add their own.
type Category struct {
	bun.BaseModel `bun:"table:categories"`
	RecordMeta

	Name      string    `bun:",nullzero,notnull" json:"name"`
	Icon      string    `bun:",nullzero" json:"icon"`
	Color     string    `bun:",nullzero" json:"color"`
	SortOrder int       `bun:"," json:"sort_order"`
	IsDefault bool      `bun:"," json:"is_default"`
	CreatedBy uuid.UUID `bun:",type:uuid,nullzero" json:"created_by,omitempty"`
}

// ListItem is a single entry on a shopping list.
type ListItem struct {
	bun.BaseModel `bun:"table:list_items"`
	RecordMeta

	ListID     uuid.UUID `bun:",type:uuid,notnull" json:"list_id"`
	Name       string    `bun:",nullzero,notnull" json:"name"`
	Quantity   float64   `bun:",nullzero" json:"quantity"`
	Unit       string    `bun:",nullzero" json:"unit"`
	CategoryID uuid.UUID `bun:",type:uuid,nullzero" json:"category_id,omitempty"`
	Checked    bool      `bun:"," json:"checked"`
	CheckedBy  uuid.UUID `bun:",type:uuid,nullzero" json:"checked_by,omitempty"`
	CheckedAt  time.Time `bun:",nullzero" json:"checked_at,omitempty"`
	AddedBy    uuid.UUID `bun:",type:uuid,notnull" json:"added_by"`
	Notes      string    `bun:",nullzero" json:"notes"`
	SortOrder  int       `bun:"," json:"sort_order"`
}

// ItemCategoryMemory remembers which category an item name was assigned to,
// so repeat items auto-categorize and fuel the suggestions endpoint.
type ItemCategoryMemory struct {
	bun.BaseModel `bun:"table:item_category_memory"`
	RecordMeta

	ItemNameLower string    `bun:",nullzero,notnull,unique:uq_item_category" json:"item_name_lower"`
	CategoryID    uuid.UUID `bun:",type:uuid,notnull,unique:uq_item_category" json:"category_id"`
	UsageCount    int       `bun:"," json:"usage_count"`
	LastUsed      time.Time `bun:",nullzero" json:"last_used"`
}

// ApiKey is a long-lived credential for external tools. Only the sha256 hash
// is stored; the prefix allows listing keys without exposing material.
type ApiKey struct {
	bun.BaseModel `bun:"table:api_keys"`
	RecordMeta

	UserID    uuid.UUID `bun:",type:uuid,notnull" json:"user_id"`
	KeyHash   string    `bun:",nullzero,notnull" json:"-"`
	KeyPrefix string    `bun:",nullzero,notnull" json:"key_prefix"`
	Name      string    `bun:",nullzero,notnull" json:"name"`
	Scopes    string    `bun:",nullzero" json:"scopes"`
	IsActive  bool      `bun:"," json:"is_active"`
	LastUsed  time.Time `bun:",nullzero" json:"last_used,omitempty"`
}

// InviteCode gates registration when open signup is disabled.
type InviteCode struct {
	bun.BaseModel `bun:"table:invite_codes"`
	RecordMeta

	Code      string    `bun:",unique,nullzero,notnull" json:"code"`
	CreatedBy uuid.UUID `bun:",type:uuid,notnull" json:"created_by"`
	UsedBy    uuid.UUID `bun:",type:uuid,nullzero" json:"used_by,omitempty"`
	IsUsed    bool      `bun:"," json:"is_used"`
	ExpiresAt time.Time `bun:",nullzero" json:"expires_at,omitempty"`
}

// PushSubscription is one browser/device push endpoint bound to a user.
type PushSubscription struct {
	bun.BaseModel `bun:"table:push_subscriptions"`
	RecordMeta

	UserID   uuid.UUID `bun:",type:uuid,notnull,unique:uq_push_endpoint" json:"user_id"`
	Endpoint string    `bun:",nullzero,notnull,unique:uq_push_endpoint" json:"endpoint"`
	P256dh   string    `bun:",nullzero,notnull" json:"-"`
	Auth     string    `bun:",nullzero,notnull" json:"-"`
}

// NotificationPreference captures a user's per-event push opt-ins. PushEnabled
// overrides every per-event flag when false.
type NotificationPreference struct {
	bun.BaseModel `bun:"table:notification_preferences"`
	RecordMeta

	UserID              uuid.UUID `bun:",type:uuid,notnull,unique" json:"user_id"`
	PushEnabled         bool      `bun:"," json:"push_enabled"`
	NotifyItemAdded     bool      `bun:"," json:"notify_item_added"`
	NotifyItemChecked   bool      `bun:"," json:"notify_item_checked"`
	NotifyItemUpdated   bool      `bun:"," json:"notify_item_updated"`
	NotifyItemRemoved   bool      `bun:"," json:"notify_item_removed"`
	NotifyListShared    bool      `bun:"," json:"notify_list_shared"`
	NotifyCheckedClear  bool      `bun:"," json:"notify_checked_cleared"`
	NotifyItemReordered bool      `bun:"," json:"notify_items_reordered"`
}

// DefaultPreference is the effective preference for users with no stored
// record: pushes for added/checked/shared, silent otherwise.
func DefaultPreference(userID uuid.UUID) *NotificationPreference {
	return &NotificationPreference{
		UserID:            userID,
		PushEnabled:       true,
		NotifyItemAdded:   true,
		NotifyItemChecked: true,
		NotifyListShared:  true,
	}
}

// Allows reports whether this preference enables pushes for the event type.
func (p *NotificationPreference) Allows(eventType EventType) bool {
	if p == nil || !p.PushEnabled {
		return false
	}
	switch eventType {
	case EventItemAdded:
		return p.NotifyItemAdded
	case EventItemChecked:
		return p.NotifyItemChecked
	case EventItemUpdated:
		return p.NotifyItemUpdated
	case EventItemRemoved:
		return p.NotifyItemRemoved
	case EventListShared:
		return p.NotifyListShared
	case EventCheckedCleared:
		return p.NotifyCheckedClear
	case EventItemsReordered:
		return p.NotifyItemReordered
	default:
		return false
	}
}
