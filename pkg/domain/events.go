package domain

import (
	"github.com/google/uuid"
)

// EventType identifies a committed list mutation.
type EventType string

const (
	EventItemAdded      EventType = "item_added"
	EventItemUpdated    EventType = "item_updated"
	EventItemChecked    EventType = "item_checked"
	EventItemRemoved    EventType = "item_removed"
	EventItemsReordered EventType = "items_reordered"
	EventCheckedCleared EventType = "checked_cleared"
	EventListShared     EventType = "list_shared"
)

// Event is an immutable notice of a committed mutation. It is constructed
// once per mutation and consumed by both the live broadcast path and the
// push dispatch path. Events are never persisted or replayed.
type Event struct {
	Type      EventType `json:"type"`
	ListID    uuid.UUID `json:"list_id"`
	Data      JSONMap   `json:"data"`
	ActorID   uuid.UUID `json:"user_id"`
	ActorName string    `json:"username"`
}

// NewEvent builds a list event attributed to the acting user.
func NewEvent(typ EventType, listID uuid.UUID, data JSONMap, actor *User) Event {
	ev := Event{
		Type:   typ,
		ListID: listID,
		Data:   data,
	}
	if actor != nil {
		ev.ActorID = actor.ID
		ev.ActorName = actor.Name()
	}
	return ev
}
