package push

import (
	"context"
	"errors"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/logger"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

// SubscriberResolver returns the owner plus members of a list.
type SubscriberResolver interface {
	Subscribers(ctx context.Context, listID uuid.UUID) ([]uuid.UUID, error)
}

// Sender delivers one payload to one endpoint and reports the transport
// status code. Split out so tests can fake the push service.
type Sender interface {
	Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) (int, error)
}

// Service fans a committed mutation out to the push endpoints of every
// eligible recipient. It runs strictly after the mutation and never surfaces
// an error to the triggering request; the worst case is a missed
// notification.
type Service struct {
	resolver      SubscriberResolver
	lists         store.ShoppingListRepository
	subscriptions store.PushSubscriptionRepository
	preferences   store.NotificationPreferenceRepository
	sender        Sender
	keys          Keys
	appName       string
	log           logger.Logger
}

// Dependencies wires repositories, key material, and delivery into the service.
type Dependencies struct {
	Resolver      SubscriberResolver
	Lists         store.ShoppingListRepository
	Subscriptions store.PushSubscriptionRepository
	Preferences   store.NotificationPreferenceRepository
	Keys          Keys
	// Subscriber is the VAPID claims contact (mailto: URL).
	Subscriber string
	AppName    string
	Sender     Sender
	Logger     logger.Logger
}

// NewService constructs the dispatcher. Missing key material is not an
// error: the service degrades to a logged no-op so the surrounding app keeps
// working without push.
func NewService(deps Dependencies) (*Service, error) {
	if deps.Resolver == nil {
		return nil, errors.New("push: subscriber resolver is required")
	}
	if deps.Lists == nil {
		return nil, errors.New("push: list repository is required")
	}
	if deps.Subscriptions == nil {
		return nil, errors.New("push: subscription repository is required")
	}
	if deps.Preferences == nil {
		return nil, errors.New("push: preference repository is required")
	}
	if deps.Logger == nil {
		deps.Logger = &logger.Nop{}
	}
	if deps.AppName == "" {
		deps.AppName = "Kitchen Cupboard"
	}
	if deps.Sender == nil {
		deps.Sender = &webpushSender{
			keys:       deps.Keys,
			subscriber: deps.Subscriber,
		}
	}
	return &Service{
		resolver:      deps.Resolver,
		lists:         deps.Lists,
		subscriptions: deps.Subscriptions,
		preferences:   deps.Preferences,
		sender:        deps.Sender,
		keys:          deps.Keys,
		appName:       deps.AppName,
		log:           deps.Logger,
	}, nil
}

// Enabled reports whether delivery credentials are available.
func (s *Service) Enabled() bool {
	return !s.keys.IsZero()
}

// PublicKey exposes the VAPID public key for browser subscription flows.
func (s *Service) PublicKey() string {
	return s.keys.Public
}

// DispatchListEvent notifies every list subscriber except the actor whose
// preferences allow the event type. Endpoint failures are isolated per
// endpoint; endpoints the transport reports as permanently gone are deleted
// in one batch after the sweep.
func (s *Service) DispatchListEvent(ctx context.Context, ev domain.Event) {
	if !s.Enabled() {
		s.log.Warn("push disabled, skipping dispatch",
			logger.Field{Key: "type", Value: ev.Type})
		return
	}

	listName := s.listName(ctx, ev.ListID)
	payload, err := buildPayload(s.appName, listName, ev)
	if err != nil {
		s.log.Error("push payload build failed",
			logger.Field{Key: "type", Value: ev.Type},
			logger.Field{Key: "error", Value: err})
		return
	}

	recipients, err := s.resolver.Subscribers(ctx, ev.ListID)
	if err != nil {
		s.log.Error("push recipient resolution failed",
			logger.Field{Key: "list_id", Value: ev.ListID},
			logger.Field{Key: "error", Value: err})
		return
	}

	var dead []uuid.UUID
	for _, userID := range recipients {
		if userID == ev.ActorID {
			continue
		}
		if !s.shouldNotify(ctx, userID, ev.Type) {
			continue
		}
		dead = append(dead, s.deliverToUser(ctx, userID, payload)...)
	}

	s.pruneDead(ctx, dead)
}

// DispatchListShared notifies only the newly-added member that a list was
// shared with them.
func (s *Service) DispatchListShared(ctx context.Context, listID uuid.UUID, listName string, targetUserID uuid.UUID, actor *domain.User) {
	if !s.Enabled() {
		s.log.Warn("push disabled, skipping share notification")
		return
	}

	if !s.shouldNotify(ctx, targetUserID, domain.EventListShared) {
		return
	}

	ev := domain.NewEvent(domain.EventListShared, listID, domain.JSONMap{"name": listName}, actor)
	payload, err := buildPayload(s.appName, listName, ev)
	if err != nil {
		s.log.Error("push payload build failed",
			logger.Field{Key: "type", Value: ev.Type},
			logger.Field{Key: "error", Value: err})
		return
	}

	dead := s.deliverToUser(ctx, targetUserID, payload)
	s.pruneDead(ctx, dead)
}

// shouldNotify resolves a recipient's effective preference. Users without a
// stored record get the documented defaults.
func (s *Service) shouldNotify(ctx context.Context, userID uuid.UUID, eventType domain.EventType) bool {
	pref, err := s.preferences.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			pref = domain.DefaultPreference(userID)
		} else {
			s.log.Warn("preference lookup failed",
				logger.Field{Key: "user_id", Value: userID},
				logger.Field{Key: "error", Value: err})
			return false
		}
	}
	return pref.Allows(eventType)
}

// deliverToUser attempts delivery to each of the user's endpoints
// independently and returns the IDs of endpoints reported gone.
func (s *Service) deliverToUser(ctx context.Context, userID uuid.UUID, payload []byte) []uuid.UUID {
	subs, err := s.subscriptions.ListByUser(ctx, userID)
	if err != nil {
		s.log.Warn("subscription lookup failed",
			logger.Field{Key: "user_id", Value: userID},
			logger.Field{Key: "error", Value: err})
		return nil
	}

	var dead []uuid.UUID
	for i := range subs {
		sub := &subs[i]
		status, err := s.sender.Send(ctx, sub, payload)
		switch {
		case status == http.StatusNotFound || status == http.StatusGone:
			dead = append(dead, sub.ID)
		case err != nil:
			s.log.Warn("push delivery failed",
				logger.Field{Key: "subscription_id", Value: sub.ID},
				logger.Field{Key: "error", Value: err})
		}
	}
	return dead
}

// pruneDead deletes expired endpoints in one batch. The delete is idempotent
// and safe to race with a concurrent re-subscription.
func (s *Service) pruneDead(ctx context.Context, ids []uuid.UUID) {
	if len(ids) == 0 {
		return
	}
	if err := s.subscriptions.DeleteBatch(ctx, ids); err != nil {
		s.log.Warn("dead subscription cleanup failed",
			logger.Field{Key: "count", Value: len(ids)},
			logger.Field{Key: "error", Value: err})
		return
	}
	s.log.Info("expired push subscriptions removed",
		logger.Field{Key: "count", Value: len(ids)})
}

func (s *Service) listName(ctx context.Context, listID uuid.UUID) string {
	lst, err := s.lists.GetByID(ctx, listID)
	if err != nil {
		return "a list"
	}
	return lst.Name
}

// webpushSender delivers through the Web Push protocol with VAPID signing.
type webpushSender struct {
	keys       Keys
	subscriber string
}

func (w *webpushSender) Send(ctx context.Context, sub *domain.PushSubscription, payload []byte) (int, error) {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      w.subscriber,
		VAPIDPublicKey:  w.keys.Public,
		VAPIDPrivateKey: w.keys.Private,
		TTL:             60,
	})
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return resp.StatusCode, errors.New("push: endpoint returned " + resp.Status)
	}
	return resp.StatusCode, nil
}
