package renderer

import (
	"errors"
	"fmt"
	"strings"
)

// Session errors.
var (
	ErrAlreadySubscribed   = errors.New("session already subscribed")
	ErrSubscriptionRefused = errors.New("subscription refused")
	ErrPartiallyFailed     = errors.New("subscription partially failed")
	ErrNoEventChannels     = errors.New("renderer offers no event channels")
	ErrActionFailed        = errors.New("transport action failed")
	ErrSessionClosed       = errors.New("session closed")
)

// ChannelError records why one event channel could not be subscribed.
type ChannelError struct {
	Channel string
	Err     error
}

func (e ChannelError) Error() string {
	return e.Channel + ": " + e.Err.Error()
}

func (e ChannelError) Unwrap() error {
	return e.Err
}

// SubscribeError is returned by Subscribe when at least one channel failed.
// Channels listed in Subscribed are registered and delivering events.
type SubscribeError struct {
	Subscribed []string
	Failed     []ChannelError
}

func (e *SubscribeError) Error() string {
	parts := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%s: %d of %d channels: %s",
		ErrPartiallyFailed, len(e.Failed), len(e.Failed)+len(e.Subscribed),
		strings.Join(parts, "; "))
}

// Is makes errors.Is(err, ErrPartiallyFailed) true.
func (e *SubscribeError) Is(target error) bool {
	return target == ErrPartiallyFailed
}

// Unwrap exposes the per-channel errors.
func (e *SubscribeError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}

// FailedChannels lists the channels that could not be subscribed.
func (e *SubscribeError) FailedChannels() []string {
	out := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		out[i] = f.Channel
	}
	return out
}
