package events

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/google/uuid"
)

type stubBroadcaster struct {
	events []domain.Event
}

func (b *stubBroadcaster) Broadcast(ev domain.Event) {
	b.events = append(b.events, ev)
}

type stubDispatcher struct {
	dispatched chan domain.Event
	shared     chan uuid.UUID
}

func newStubDispatcher() *stubDispatcher {
	return &stubDispatcher{
		dispatched: make(chan domain.Event, 1),
		shared:     make(chan uuid.UUID, 1),
	}
}

func (d *stubDispatcher) DispatchListEvent(ctx context.Context, ev domain.Event) {
	d.dispatched <- ev
}

func (d *stubDispatcher) DispatchListShared(ctx context.Context, listID uuid.UUID, listName string, targetUserID uuid.UUID, actor *domain.User) {
	d.shared <- targetUserID
}

func TestPublishBroadcastsAndDispatches(t *testing.T) {
	broadcaster := &stubBroadcaster{}
	dispatcher := newStubDispatcher()
	router, err := NewRouter(Dependencies{Broadcaster: broadcaster, Dispatcher: dispatcher})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	ev := domain.Event{Type: domain.EventItemAdded, ListID: uuid.New()}
	router.Publish(context.Background(), ev)

	if len(broadcaster.events) != 1 || broadcaster.events[0].Type != domain.EventItemAdded {
		t.Fatalf("broadcast not delivered: %+v", broadcaster.events)
	}

	select {
	case got := <-dispatcher.dispatched:
		if got.ListID != ev.ListID {
			t.Fatalf("dispatched wrong event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("push dispatch never ran")
	}
}

func TestPublishSurvivesCanceledRequestContext(t *testing.T) {
	broadcaster := &stubBroadcaster{}
	dispatcher := newStubDispatcher()
	router, err := NewRouter(Dependencies{Broadcaster: broadcaster, Dispatcher: dispatcher})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	router.Publish(ctx, domain.Event{Type: domain.EventItemRemoved, ListID: uuid.New()})

	select {
	case <-dispatcher.dispatched:
	case <-time.After(time.Second):
		t.Fatalf("push dispatch should detach from the request context")
	}
}

func TestPublishWithoutDispatcher(t *testing.T) {
	broadcaster := &stubBroadcaster{}
	router, err := NewRouter(Dependencies{Broadcaster: broadcaster})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	// Push is optional; broadcast-only deployments must not panic.
	router.Publish(context.Background(), domain.Event{Type: domain.EventItemChecked, ListID: uuid.New()})
	router.PublishShared(context.Background(), uuid.New(), "Groceries", uuid.New(), nil)
	if len(broadcaster.events) != 2 {
		t.Fatalf("expected 2 broadcasts, got %d", len(broadcaster.events))
	}
}

func TestPublishSharedTargetsMember(t *testing.T) {
	broadcaster := &stubBroadcaster{}
	dispatcher := newStubDispatcher()
	router, err := NewRouter(Dependencies{Broadcaster: broadcaster, Dispatcher: dispatcher})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	target := uuid.New()
	actor := &domain.User{Username: "alice"}
	router.PublishShared(context.Background(), uuid.New(), "Groceries", target, actor)

	if len(broadcaster.events) != 1 || broadcaster.events[0].Type != domain.EventListShared {
		t.Fatalf("list_shared broadcast missing: %+v", broadcaster.events)
	}

	select {
	case got := <-dispatcher.shared:
		if got != target {
			t.Fatalf("share push targeted %s, want %s", got, target)
		}
	case <-time.After(time.Second):
		t.Fatalf("share push never ran")
	}
}
