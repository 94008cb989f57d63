package events

import (
	"context"
	"errors"
	"time"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/google/uuid"
)

// Broadcaster fans an event out to live realtime subscribers.
type Broadcaster interface {
	Broadcast(event domain.Event)
}

// Dispatcher delivers asynchronous push notifications for an event.
type Dispatcher interface {
	DispatchListEvent(ctx context.Context, ev domain.Event)
	DispatchListShared(ctx context.Context, listID uuid.UUID, listName string, targetUserID uuid.UUID, actor *domain.User)
}

// pushTimeout bounds the detached push sweep so a stuck endpoint cannot pin
// a goroutine forever.
const pushTimeout = 30 * time.Second

// Router is the glue invoked by mutation handlers after a commit: broadcast
// to live connections synchronously, then push to offline subscribers in the
// background. A missed event is never replayed.
type Router struct {
	broadcaster Broadcaster
	dispatcher  Dispatcher
	log         logger.Logger
}

// Dependencies wires the two delivery paths into the router.
type Dependencies struct {
	Broadcaster Broadcaster
	Dispatcher  Dispatcher
	Logger      logger.Logger
}

// NewRouter constructs the event router.
func NewRouter(deps Dependencies) (*Router, error) {
	if deps.Broadcaster == nil {
		return nil, errors.New("events: broadcaster is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	return &Router{
		broadcaster: deps.Broadcaster,
		dispatcher:  deps.Dispatcher,
		log:         deps.Logger,
	}, nil
}

// Publish delivers the event on both paths. The push sweep runs detached
// from the request context: the mutation is already committed, so request
// cancellation must not cancel notification delivery.
func (r *Router) Publish(ctx context.Context, ev domain.Event) {
	r.broadcaster.Broadcast(ev)

	if r.dispatcher == nil {
		return
	}
	go func() {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		r.dispatcher.DispatchListEvent(pushCtx, ev)
	}()
}

// PublishShared handles the dedicated share trigger: a list_shared event to
// live subscribers plus a "shared with you" push for the new member only.
func (r *Router) PublishShared(ctx context.Context, listID uuid.UUID, listName string, targetUserID uuid.UUID, actor *domain.User) {
	r.broadcaster.Broadcast(domain.NewEvent(domain.EventListShared, listID, domain.JSONMap{
		"name":      listName,
		"shared_to": targetUserID.String(),
	}, actor))

	if r.dispatcher == nil {
		return
	}
	go func() {
		pushCtx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		r.dispatcher.DispatchListShared(pushCtx, listID, listName, targetUserID, actor)
	}()
}
