package renderer

import (
	"context"

	"github.com/upnp-display/upnp-display-go/pkg/didl"
)

// Action is an AVTransport action name.
type Action string

// Actions the session invokes.
const (
	ActionGetPositionInfo Action = "GetPositionInfo"
	ActionPlay            Action = "Play"
	ActionPause           Action = "Pause"
	ActionStop            Action = "Stop"
)

// Transport is the session's view of the network: eventing and action
// invocation for one renderer.
type Transport interface {
	// EventChannels lists the service types that publish events.
	EventChannels() []string

	// Subscribe subscribes to one event channel and returns its SID.
	Subscribe(ctx context.Context, channel string) (string, error)

	// SendAction invokes action with params and returns the output
	// arguments by name.
	SendAction(ctx context.Context, action Action, params map[string]string) (map[string]string, error)
}

// MetadataDecoder decodes a CurrentTrackMetaData payload.
type MetadataDecoder func(doc string) (didl.Metadata, error)
