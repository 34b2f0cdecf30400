package display

import (
	"context"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/renderer"
)

// Sink renders frames on one device. Sinks own their scroll and blink
// state; each call corresponds to one tick.
type Sink interface {
	// Width is the number of display cells per line.
	Width() int

	// Frame renders the state of the attached renderer.
	Frame(snapshot renderer.Snapshot)

	// NoSessionFrame renders while no renderer is attached.
	NoSessionFrame()

	// ScreensaveFrame renders while the screensaver is active.
	ScreensaveFrame()

	// FarewellFrame renders once at shutdown.
	FarewellFrame()
}

// Session is the controller's view of a renderer session.
// *renderer.Session implements it.
type Session interface {
	ID() string
	FriendlyName() string
	LastEventAge(now time.Time) time.Duration
	Snapshot() renderer.Snapshot
	RequestPositionRefresh(ctx context.Context)
	Closed() bool
}

var _ Session = (*renderer.Session)(nil)
