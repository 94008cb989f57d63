package push

import (
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-shoplist/pkg/domain"
)

// notification is the document delivered to the push endpoint; the service
// worker renders it verbatim, so the shape is part of the client contract.
type notification struct {
	Title string           `json:"title"`
	Body  string           `json:"body"`
	Tag   string           `json:"tag"`
	Data  notificationData `json:"data"`
}

type notificationData struct {
	URL       string `json:"url"`
	ListID    string `json:"list_id"`
	EventType string `json:"event_type"`
}

// buildPayload renders the notification once per event; the same bytes are
// reused for every recipient and endpoint.
func buildPayload(appName, listName string, ev domain.Event) ([]byte, error) {
	listID := ev.ListID.String()
	n := notification{
		Title: appName,
		Body:  bodyText(ev, listName),
		Tag:   fmt.Sprintf("%s:%s", ev.Type, listID),
		Data: notificationData{
			URL:       "/list/" + listID,
			ListID:    listID,
			EventType: string(ev.Type),
		},
	}
	return json.Marshal(n)
}

func bodyText(ev domain.Event, listName string) string {
	actor := ev.ActorName
	item := stringField(ev.Data, "name")

	switch ev.Type {
	case domain.EventItemAdded:
		return fmt.Sprintf("%s added %q to %s", actor, item, listName)
	case domain.EventItemChecked:
		return fmt.Sprintf("%s checked off %q in %s", actor, item, listName)
	case domain.EventItemUpdated:
		return fmt.Sprintf("%s updated %q in %s", actor, item, listName)
	case domain.EventItemRemoved:
		return fmt.Sprintf("%s removed an item from %s", actor, listName)
	case domain.EventItemsReordered:
		return fmt.Sprintf("%s reordered %s", actor, listName)
	case domain.EventCheckedCleared:
		count := intField(ev.Data, "deleted_count")
		plural := "s"
		if count == 1 {
			plural = ""
		}
		return fmt.Sprintf("%s cleared %d checked item%s from %s", actor, count, plural, listName)
	case domain.EventListShared:
		return fmt.Sprintf("%s shared %q with you", actor, listName)
	default:
		return fmt.Sprintf("%s updated %s", actor, listName)
	}
}

func stringField(data domain.JSONMap, key string) string {
	if data == nil {
		return ""
	}
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func intField(data domain.JSONMap, key string) int {
	if data == nil {
		return 0
	}
	switch v := data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
