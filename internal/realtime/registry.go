package realtime

import (
	"encoding/json"

	"sync"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/google/uuid"
)

// Conn is the capability the registry needs from a live connection: deliver
// a text frame, or close with a status code. Implementations must not block
// indefinitely in SendText; a full outbound queue is a send failure.
type Conn interface {
	SendText(payload []byte) error
	Close(code int, reason string) error
}

// Registry tracks which connections are subscribed to which list and fans
// mutation events out to them. One instance is created at startup and shared
// by every connection-handling and mutation-handling path; nothing here is
// persisted, so teardown on shutdown simply drops all subscriptions.
type Registry struct {
	mu          sync.RWMutex
	subscribers map[uuid.UUID]map[Conn]struct{}
	log         logger.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(log logger.Logger) *Registry {
	if log == nil {
		log = &logger.Nop{}
	}
	return &Registry{
		subscribers: make(map[uuid.UUID]map[Conn]struct{}),
		log:         log,
	}
}

// Connect admits an already-authorized connection into the subscriber set
// for listID. Re-adding a present connection is a no-op.
func (r *Registry) Connect(listID uuid.UUID, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subscribers[listID]
	if !ok {
		set = make(map[Conn]struct{})
		r.subscribers[listID] = set
	}
	set[c] = struct{}{}
}

// Disconnect removes the connection from listID's subscriber set, dropping
// the list entry entirely once its set is empty so transient lists do not
// grow the map forever.
func (r *Registry) Disconnect(listID uuid.UUID, c Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.subscribers[listID]
	if !ok {
		return
	}
	delete(set, c)
	if len(set) == 0 {
		delete(r.subscribers, listID)
	}
}

// Broadcast serializes event once and sends it to every current subscriber
// of the event's list. A failing connection never aborts delivery to the
// rest; failed connections are removed from the registry after the sweep,
// which is how dead peers get reclaimed without an explicit close.
func (r *Registry) Broadcast(event domain.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		r.log.Error("broadcast marshal failed",
			logger.Field{Key: "type", Value: event.Type},
			logger.Field{Key: "error", Value: err})
		return
	}

	r.mu.RLock()
	set := r.subscribers[event.ListID]
	conns := make([]Conn, 0, len(set))
	for c := range set {
		conns = append(conns, c)
	}
	r.mu.RUnlock()

	var failed []Conn
	for _, c := range conns {
		if err := c.SendText(payload); err != nil {
			r.log.Warn("dropping dead subscriber",
				logger.Field{Key: "list_id", Value: event.ListID},
				logger.Field{Key: "error", Value: err})
			failed = append(failed, c)
		}
	}

	for _, c := range failed {
		r.Disconnect(event.ListID, c)
		_ = c.Close(CloseGoingAway, "send failed")
	}
}

// Count reports the number of live subscribers for a list.
func (r *Registry) Count(listID uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers[listID])
}

// Lists reports how many lists currently have subscribers.
func (r *Registry) Lists() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscribers)
}
