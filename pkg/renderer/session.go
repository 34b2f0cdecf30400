package renderer

import (
	"log/slog"
	"sync"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/didl"
	"github.com/upnp-display/upnp-display-go/pkg/log"
	"github.com/upnp-display/upnp-display-go/pkg/subscription"
	"github.com/upnp-display/upnp-display-go/pkg/variables"
)

// Registry routes subscription ids to sessions.
type Registry = subscription.Registry[Session]

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return subscription.NewRegistry[Session]()
}

// Session tracks one renderer.
type Session struct {
	mu sync.RWMutex

	id           string
	friendlyName string
	transport    Transport
	decode       MetadataDecoder
	now          func() time.Time
	logger       *slog.Logger

	// Protocol capture (optional)
	protocolLogger log.Logger

	lastEventUpdate time.Time

	// Subscription bookkeeping
	registry        *Registry
	subscriptionIDs []string
	subscribed      bool
	closed          bool

	// applyMu serializes ApplyEvent so events for one session are applied
	// one at a time, in arrival order.
	applyMu sync.Mutex

	vars *variables.Store
}

// NewSession creates a session for the renderer identified by id.
func NewSession(id string, transport Transport) *Session {
	return &Session{
		id:              id,
		transport:       transport,
		decode:          didl.Decode,
		now:             time.Now,
		lastEventUpdate: time.Now(),
		vars:            variables.NewStore(),
	}
}

// ID returns the renderer id.
func (s *Session) ID() string {
	return s.id
}

// FriendlyName returns the renderer's friendly name, or "" if the
// descriptor has not been loaded.
func (s *Session) FriendlyName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.friendlyName
}

// SetFriendlyName records the name from the device descriptor.
func (s *Session) SetFriendlyName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.friendlyName = name
}

// SetLogger sets the logger for this session.
func (s *Session) SetLogger(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logger = logger
}

// SetProtocolLogger sets the capture logger.
func (s *Session) SetProtocolLogger(logger log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocolLogger = logger
}

// SetMetadataDecoder replaces the DIDL-Lite decoder.
func (s *Session) SetMetadataDecoder(decode MetadataDecoder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decode = decode
}

// SetClock replaces the time source and restarts the event age from the
// new clock's current time.
func (s *Session) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	s.lastEventUpdate = now()
}

// Variables returns the session's variable store.
func (s *Session) Variables() *variables.Store {
	return s.vars
}

// Get returns a single variable.
func (s *Session) Get(name string) string {
	return s.vars.Get(name)
}

// LastEventUpdate returns when the most recent event was applied, or the
// construction time if none has arrived.
func (s *Session) LastEventUpdate() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastEventUpdate
}

// LastEventAge returns now minus the last event time.
func (s *Session) LastEventAge(now time.Time) time.Duration {
	return now.Sub(s.LastEventUpdate())
}

// SubscriptionIDs returns the registered subscription ids in the order
// they were obtained.
func (s *Session) SubscriptionIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.subscriptionIDs...)
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close tears the session down and removes every subscription id it
// registered. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	ids := s.subscriptionIDs
	registry := s.registry
	s.subscriptionIDs = nil
	s.mu.Unlock()

	if registry != nil {
		for _, id := range ids {
			registry.Remove(id)
		}
	}

	s.log().Debug("session closed", "rendererID", s.id, "subscriptions", len(ids))
	s.capture(log.Event{
		Direction: log.DirectionLocal,
		Layer:     log.LayerSession,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntitySession,
			OldState: "OPEN",
			NewState: "CLOSED",
		},
	})
}

func (s *Session) log() *slog.Logger {
	s.mu.RLock()
	logger := s.logger
	s.mu.RUnlock()
	if logger == nil {
		return slog.Default()
	}
	return logger
}

func (s *Session) clock() time.Time {
	s.mu.RLock()
	now := s.now
	s.mu.RUnlock()
	return now()
}

// capture stamps and forwards an event to the protocol logger, if any.
func (s *Session) capture(event log.Event) {
	s.mu.RLock()
	logger := s.protocolLogger
	now := s.now
	s.mu.RUnlock()

	if logger == nil {
		return
	}
	event.Timestamp = now()
	event.RendererID = s.id
	logger.Log(event)
}
