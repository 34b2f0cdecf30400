package display

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

// DefaultTickInterval is the update loop cadence.
const DefaultTickInterval = 400 * time.Millisecond

// FrameKind identifies the frame rendered by Tick.
type FrameKind uint8

const (
	FrameNoSession FrameKind = iota
	FrameScreensave
	FrameNormal
)

// String returns the frame kind name.
func (k FrameKind) String() string {
	switch k {
	case FrameNoSession:
		return "NO_SESSION"
	case FrameScreensave:
		return "SCREENSAVE"
	case FrameNormal:
		return "NORMAL"
	default:
		return "UNKNOWN"
	}
}

// Config configures a Controller.
type Config struct {
	// Match selects the renderer by id or friendly name. Empty matches the
	// first renderer offered.
	Match string

	// ScreensaveTimeout blanks the display after this long without an
	// event. Zero or negative disables the screensaver.
	ScreensaveTimeout time.Duration

	// TickInterval is the loop cadence. Zero means DefaultTickInterval.
	TickInterval time.Duration
}

// Controller owns the attachment state and the update loop.
type Controller struct {
	config Config
	sink   Sink
	clock  Clock

	logger         *slog.Logger
	protocolLogger log.Logger

	// mu guards only attached.
	mu       sync.Mutex
	attached Session
}

// NewController creates a controller rendering to sink.
func NewController(config Config, sink Sink) *Controller {
	if config.TickInterval <= 0 {
		config.TickInterval = DefaultTickInterval
	}
	return &Controller{
		config: config,
		sink:   sink,
		clock:  RealClock(),
		logger: slog.Default(),
	}
}

// SetLogger sets the logger for the controller.
func (c *Controller) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	c.logger = logger
}

// SetProtocolLogger sets the capture logger. Call before Loop.
func (c *Controller) SetProtocolLogger(logger log.Logger) {
	c.protocolLogger = logger
}

// SetClock replaces the time source. Call before Loop.
func (c *Controller) SetClock(clock Clock) {
	c.clock = clock
}

// Match returns the configured renderer filter.
func (c *Controller) Match() string {
	return c.config.Match
}

// AttachCandidate attaches session if nothing is attached and it matches
// the filter. It reports whether the session was attached.
//
// The friendly name is read before the controller lock is taken.
func (c *Controller) AttachCandidate(id string, session Session) bool {
	if session == nil || !c.matches(id, session.FriendlyName()) {
		return false
	}

	c.mu.Lock()
	if c.attached != nil {
		c.mu.Unlock()
		return false
	}
	c.attached = session
	c.mu.Unlock()

	c.logger.Info("renderer attached", "rendererID", id, "name", session.FriendlyName())
	c.captureAttachment(id, "UNATTACHED", "ATTACHED")
	return true
}

// DetachCandidate detaches the session with the given id. It is a no-op
// unless that session is the one attached, and may be called repeatedly.
func (c *Controller) DetachCandidate(id string) bool {
	c.mu.Lock()
	if c.attached == nil || c.attached.ID() != id {
		c.mu.Unlock()
		return false
	}
	c.attached = nil
	c.mu.Unlock()

	c.logger.Info("renderer detached", "rendererID", id)
	c.captureAttachment(id, "ATTACHED", "UNATTACHED")
	return true
}

// Attached returns the attached session, or nil.
func (c *Controller) Attached() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attached
}

func (c *Controller) matches(id, name string) bool {
	m := c.config.Match
	return m == "" || m == id || m == name
}

// Loop renders one frame per tick until ctx is cancelled, then renders
// the farewell frame and returns. Cancellation is observed between ticks.
func (c *Controller) Loop(ctx context.Context) error {
	ticker := c.clock.NewTicker(c.config.TickInterval)
	defer ticker.Stop()

	c.logger.Debug("display loop started",
		"interval", c.config.TickInterval,
		"screensave", c.config.ScreensaveTimeout,
		"width", c.sink.Width())

	for {
		if ctx.Err() != nil {
			break
		}
		c.Tick(ctx)

		select {
		case <-ctx.Done():
		case <-ticker.C():
		}
	}

	c.sink.FarewellFrame()
	c.logger.Debug("display loop stopped")
	return nil
}

// Tick renders one frame and reports which kind it was.
func (c *Controller) Tick(ctx context.Context) FrameKind {
	c.mu.Lock()
	session := c.attached
	c.mu.Unlock()

	if session == nil || session.Closed() {
		c.sink.NoSessionFrame()
		return FrameNoSession
	}

	timeout := c.config.ScreensaveTimeout
	if timeout > 0 && session.LastEventAge(c.clock.Now()) > timeout {
		c.sink.ScreensaveFrame()
		return FrameScreensave
	}

	session.RequestPositionRefresh(ctx)
	c.sink.Frame(session.Snapshot())
	return FrameNormal
}

func (c *Controller) captureAttachment(id, oldState, newState string) {
	if c.protocolLogger == nil {
		return
	}
	c.protocolLogger.Log(log.Event{
		Timestamp:  c.clock.Now(),
		RendererID: id,
		Direction:  log.DirectionLocal,
		Layer:      log.LayerDisplay,
		Category:   log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityAttachment,
			OldState: oldState,
			NewState: newState,
			Reason:   c.config.Match,
		},
	})
}
