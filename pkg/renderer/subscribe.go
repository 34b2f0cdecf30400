package renderer

import (
	"context"
	"fmt"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

// Subscribe subscribes to every event channel the transport offers and
// registers each SID in registry before returning. It may be called once.
//
// A channel that fails does not stop the others. If any channel failed the
// result is a *SubscribeError, which matches ErrPartiallyFailed and wraps
// one error per failed channel.
func (s *Session) Subscribe(ctx context.Context, registry *Registry) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.subscribed {
		s.mu.Unlock()
		return ErrAlreadySubscribed
	}
	s.subscribed = true
	s.registry = registry
	s.mu.Unlock()

	channels := s.transport.EventChannels()
	if len(channels) == 0 {
		s.log().Warn("no event channels", "rendererID", s.id, "name", s.FriendlyName())
		return ErrNoEventChannels
	}

	var result SubscribeError
	for _, channel := range channels {
		sid, err := s.transport.Subscribe(ctx, channel)
		if err != nil {
			err = fmt.Errorf("%w: %w", ErrSubscriptionRefused, err)
			result.Failed = append(result.Failed, ChannelError{Channel: channel, Err: err})
			s.log().Warn("subscribe failed",
				"rendererID", s.id,
				"channel", channel,
				"error", err)
			s.captureSubscription(channel, "", "REFUSED", err.Error())
			continue
		}

		if err := registry.Insert(sid, s); err != nil {
			result.Failed = append(result.Failed, ChannelError{Channel: channel, Err: err})
			s.log().Warn("subscription id rejected",
				"rendererID", s.id,
				"channel", channel,
				"sid", sid,
				"error", err)
			s.captureSubscription(channel, sid, "REJECTED", err.Error())
			continue
		}

		s.mu.Lock()
		closed := s.closed
		if !closed {
			s.subscriptionIDs = append(s.subscriptionIDs, sid)
		}
		s.mu.Unlock()
		if closed {
			// Close ran while we were subscribing.
			registry.Remove(sid)
			return ErrSessionClosed
		}

		result.Subscribed = append(result.Subscribed, channel)
		s.log().Debug("subscribed", "rendererID", s.id, "channel", channel, "sid", sid)
		s.captureSubscription(channel, sid, "SUBSCRIBED", "")
	}

	if len(result.Failed) > 0 {
		return &result
	}
	return nil
}

func (s *Session) captureSubscription(channel, sid, state, reason string) {
	s.capture(log.Event{
		Direction:      log.DirectionLocal,
		Layer:          log.LayerSession,
		Category:       log.CategoryState,
		SubscriptionID: sid,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySubscription,
			NewState: state,
			Reason:   joinReason(channel, reason),
		},
	})
}

func joinReason(channel, reason string) string {
	if reason == "" {
		return channel
	}
	return channel + ": " + reason
}
