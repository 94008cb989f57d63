package push

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-shoplist/pkg/domain"
	"github.com/goliatone/go-shoplist/pkg/interfaces/store"
	"github.com/google/uuid"
)

// SubscribeInput mirrors the browser PushSubscription JSON.
type SubscribeInput struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

// Subscribe registers or refreshes a push endpoint for the user. Browsers
// rotate endpoint URLs, so re-subscribing the same endpoint updates the key
// material in place.
func (s *Service) Subscribe(ctx context.Context, userID uuid.UUID, input SubscribeInput) (*domain.PushSubscription, error) {
	endpoint := strings.TrimSpace(input.Endpoint)
	if endpoint == "" || input.Keys.P256dh == "" || input.Keys.Auth == "" {
		return nil, domain.Invalidf("push: endpoint and keys are required")
	}

	existing, err := s.subscriptions.GetByEndpoint(ctx, userID, endpoint)
	switch {
	case err == nil:
		existing.P256dh = input.Keys.P256dh
		existing.Auth = input.Keys.Auth
		if err := s.subscriptions.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, store.ErrNotFound):
		sub := &domain.PushSubscription{
			UserID:   userID,
			Endpoint: endpoint,
			P256dh:   input.Keys.P256dh,
			Auth:     input.Keys.Auth,
		}
		if err := s.subscriptions.Create(ctx, sub); err != nil {
			return nil, err
		}
		return sub, nil
	default:
		return nil, err
	}
}

// Unsubscribe removes a push endpoint. Unknown endpoints are not an error;
// the browser already forgot them.
func (s *Service) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	err := s.subscriptions.DeleteByEndpoint(ctx, userID, strings.TrimSpace(endpoint))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

// PreferencesFor returns the stored preference or the defaults when the
// user never saved one.
func (s *Service) PreferencesFor(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	pref, err := s.preferences.GetByUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.DefaultPreference(userID), nil
	}
	return pref, err
}

// PreferenceInput carries per-event opt-in changes; nil fields are left
// untouched.
type PreferenceInput struct {
	PushEnabled         *bool `json:"push_enabled,omitempty"`
	NotifyItemAdded     *bool `json:"notify_item_added,omitempty"`
	NotifyItemChecked   *bool `json:"notify_item_checked,omitempty"`
	NotifyItemUpdated   *bool `json:"notify_item_updated,omitempty"`
	NotifyItemRemoved   *bool `json:"notify_item_removed,omitempty"`
	NotifyListShared    *bool `json:"notify_list_shared,omitempty"`
	NotifyCheckedClear  *bool `json:"notify_checked_cleared,omitempty"`
	NotifyItemReordered *bool `json:"notify_items_reordered,omitempty"`
}

// UpdatePreferences upserts the user's preference record with the provided
// fields, starting from the defaults for first-time savers.
func (s *Service) UpdatePreferences(ctx context.Context, userID uuid.UUID, input PreferenceInput) (*domain.NotificationPreference, error) {
	pref, err := s.preferences.GetByUser(ctx, userID)
	created := false
	if errors.Is(err, store.ErrNotFound) {
		pref = domain.DefaultPreference(userID)
		created = true
	} else if err != nil {
		return nil, err
	}

	apply := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&pref.PushEnabled, input.PushEnabled)
	apply(&pref.NotifyItemAdded, input.NotifyItemAdded)
	apply(&pref.NotifyItemChecked, input.NotifyItemChecked)
	apply(&pref.NotifyItemUpdated, input.NotifyItemUpdated)
	apply(&pref.NotifyItemRemoved, input.NotifyItemRemoved)
	apply(&pref.NotifyListShared, input.NotifyListShared)
	apply(&pref.NotifyCheckedClear, input.NotifyCheckedClear)
	apply(&pref.NotifyItemReordered, input.NotifyItemReordered)

	if created {
		err = s.preferences.Create(ctx, pref)
	} else {
		err = s.preferences.Update(ctx, pref)
	}
	if err != nil {
		return nil, err
	}
	return pref, nil
}

// SubscriptionsFor lists the user's registered endpoints.
func (s *Service) SubscriptionsFor(ctx context.Context, userID uuid.UUID) ([]domain.PushSubscription, error) {
	return s.subscriptions.ListByUser(ctx, userID)
}
