package renderer

import (
	"context"
	"fmt"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/log"
	"github.com/upnp-display/upnp-display-go/pkg/variables"
)

// instanceID is the only AVTransport instance addressed.
const instanceID = "0"

// RequestPositionRefresh polls the renderer for its playback position while
// it is playing. The result is applied as a single-field RelTime batch; the
// last event time is left alone. Failures are logged and swallowed.
func (s *Session) RequestPositionRefresh(ctx context.Context) {
	if s.Closed() || s.vars.Get(variables.TransportState) != variables.StatePlaying {
		return
	}

	result, err := s.invoke(ctx, ActionGetPositionInfo, map[string]string{
		"InstanceID": instanceID,
	})
	if err != nil {
		return
	}

	relTime, ok := result[variables.RelTime]
	if !ok {
		return
	}

	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	// An event may have stopped playback while the action was in flight.
	if s.Closed() || s.vars.Get(variables.TransportState) != variables.StatePlaying {
		return
	}
	s.vars.ApplyBatch(variables.Batch{{Name: variables.RelTime, Value: relTime}})
}

// Play starts playback unless the renderer is already playing.
func (s *Session) Play(ctx context.Context) {
	if s.vars.Get(variables.TransportState) == variables.StatePlaying {
		return
	}
	_, _ = s.invoke(ctx, ActionPlay, map[string]string{
		"InstanceID": instanceID,
		"Speed":      "1",
	})
}

// Pause pauses playback. It does nothing unless the renderer is playing.
func (s *Session) Pause(ctx context.Context) {
	if s.vars.Get(variables.TransportState) != variables.StatePlaying {
		return
	}
	_, _ = s.invoke(ctx, ActionPause, map[string]string{
		"InstanceID": instanceID,
	})
}

// Stop stops playback. It does nothing unless the renderer is playing.
func (s *Session) Stop(ctx context.Context) {
	if s.vars.Get(variables.TransportState) != variables.StatePlaying {
		return
	}
	_, _ = s.invoke(ctx, ActionStop, map[string]string{
		"InstanceID": instanceID,
	})
}

// invoke sends one action, logs failures and records it in the capture log.
// The returned error wraps ErrActionFailed and is only used internally.
func (s *Session) invoke(ctx context.Context, action Action, params map[string]string) (map[string]string, error) {
	start := time.Now()
	result, err := s.transport.SendAction(ctx, action, params)
	elapsed := time.Since(start)

	s.capture(log.Event{
		Direction: log.DirectionOut,
		Layer:     log.LayerSession,
		Category:  log.CategoryAction,
		Action: &log.ActionEvent{
			Action:   string(action),
			Params:   params,
			Result:   result,
			Duration: elapsed,
			Failed:   err != nil,
		},
	})

	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrActionFailed, action, err)
		s.log().Warn("action failed",
			"rendererID", s.id,
			"action", string(action),
			"error", err)
		return nil, err
	}
	return result, nil
}
