package upnp

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/display"
	"github.com/upnp-display/upnp-display-go/pkg/log"
	"github.com/upnp-display/upnp-display-go/pkg/renderer"
)

// Tracker defaults.
const (
	DefaultDiscoveryInterval = 30 * time.Second
	DefaultMissingRounds     = 3
)

// Endpoint is a renderer transport that holds network resources.
type Endpoint interface {
	renderer.Transport

	// Err returns non-nil once the endpoint has stopped receiving events,
	// e.g. after a failed renewal.
	Err() error

	Close()
}

// Attacher receives renderer candidates. *display.Controller implements it.
type Attacher interface {
	AttachCandidate(id string, session display.Session) bool
	DetachCandidate(id string) bool
}

var _ Attacher = (*display.Controller)(nil)

// FindFunc discovers renderers.
type FindFunc func(ctx context.Context) ([]Device, error)

// ConnectFunc creates the endpoint for a discovered renderer.
type ConnectFunc func(ctx context.Context, device Device) (Endpoint, error)

// TrackerConfig configures a Tracker.
type TrackerConfig struct {
	// Interval between discovery rounds.
	Interval time.Duration

	// MissingRounds is how many consecutive rounds a renderer may be
	// absent before it is torn down.
	MissingRounds int
}

type tracked struct {
	session  *renderer.Session
	endpoint Endpoint
	missed   int
}

// Tracker keeps one session per renderer on the network.
type Tracker struct {
	config   TrackerConfig
	registry *renderer.Registry
	attacher Attacher
	find     FindFunc
	connect  ConnectFunc

	logger         *slog.Logger
	protocolLogger log.Logger

	mu        sync.Mutex
	renderers map[string]*tracked
}

// NewTracker creates a tracker. find and connect are required.
func NewTracker(config TrackerConfig, registry *renderer.Registry, attacher Attacher, find FindFunc, connect ConnectFunc) *Tracker {
	if config.Interval <= 0 {
		config.Interval = DefaultDiscoveryInterval
	}
	if config.MissingRounds <= 0 {
		config.MissingRounds = DefaultMissingRounds
	}
	return &Tracker{
		config:    config,
		registry:  registry,
		attacher:  attacher,
		find:      find,
		connect:   connect,
		logger:    slog.Default(),
		renderers: make(map[string]*tracked),
	}
}

// SetLogger sets the logger for the tracker and the sessions it creates.
func (t *Tracker) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	t.logger = logger
}

// SetProtocolLogger sets the capture logger for new sessions.
func (t *Tracker) SetProtocolLogger(logger log.Logger) {
	t.protocolLogger = logger
}

// Run performs discovery rounds until ctx is cancelled, then tears down
// every session.
func (t *Tracker) Run(ctx context.Context) error {
	defer t.closeAll()

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		t.Round(ctx)

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Round runs one discovery pass.
func (t *Tracker) Round(ctx context.Context) {
	devices, err := t.find(ctx)
	if err != nil {
		if ctx.Err() == nil {
			t.logger.Warn("discovery failed", "error", err)
		}
		return
	}

	present := make(map[string]bool, len(devices))
	for _, dev := range devices {
		present[dev.ID] = true

		t.mu.Lock()
		r, ok := t.renderers[dev.ID]
		var stale *tracked
		if ok {
			r.missed = 0
			if r.endpoint.Err() != nil {
				delete(t.renderers, dev.ID)
				stale, ok = r, false
			}
		}
		t.mu.Unlock()

		if stale != nil {
			t.logger.Warn("renderer stopped sending events, reconnecting",
				"rendererID", dev.ID,
				"name", dev.FriendlyName,
				"error", stale.endpoint.Err())
			t.teardown(stale)
		}
		if !ok {
			t.add(ctx, dev)
		}
	}

	t.mu.Lock()
	var gone []*tracked
	for id, r := range t.renderers {
		if present[id] {
			continue
		}
		r.missed++
		if r.missed >= t.config.MissingRounds {
			delete(t.renderers, id)
			gone = append(gone, r)
		}
	}
	t.mu.Unlock()

	for _, r := range gone {
		t.logger.Info("renderer gone", "rendererID", r.session.ID(), "name", r.session.FriendlyName())
		t.teardown(r)
	}

	// Offer every renderer so another one can take over after a detach.
	for _, s := range t.Sessions() {
		t.attacher.AttachCandidate(s.ID(), s)
	}
}

func (t *Tracker) add(ctx context.Context, dev Device) {
	endpoint, err := t.connect(ctx, dev)
	if err != nil {
		t.logger.Warn("cannot connect to renderer",
			"rendererID", dev.ID,
			"name", dev.FriendlyName,
			"error", err)
		return
	}

	session := renderer.NewSession(dev.ID, endpoint)
	session.SetFriendlyName(dev.FriendlyName)
	session.SetLogger(t.logger)
	session.SetProtocolLogger(t.protocolLogger)

	err = session.Subscribe(ctx, t.registry)
	var subErr *renderer.SubscribeError
	switch {
	case err == nil:
	case errors.As(err, &subErr) && len(subErr.Subscribed) > 0:
		t.logger.Warn("renderer partially subscribed",
			"rendererID", dev.ID,
			"failed", subErr.FailedChannels())
	default:
		// Nothing to listen to; try again next round.
		t.logger.Warn("cannot subscribe to renderer",
			"rendererID", dev.ID,
			"name", dev.FriendlyName,
			"error", err)
		session.Close()
		endpoint.Close()
		return
	}

	t.mu.Lock()
	t.renderers[dev.ID] = &tracked{session: session, endpoint: endpoint}
	t.mu.Unlock()

	t.logger.Info("renderer connected", "rendererID", dev.ID, "name", dev.FriendlyName)
}

func (t *Tracker) teardown(r *tracked) {
	t.attacher.DetachCandidate(r.session.ID())
	r.session.Close()
	r.endpoint.Close()
}

func (t *Tracker) closeAll() {
	t.mu.Lock()
	all := make([]*tracked, 0, len(t.renderers))
	for id, r := range t.renderers {
		all = append(all, r)
		delete(t.renderers, id)
	}
	t.mu.Unlock()

	for _, r := range all {
		t.teardown(r)
	}
}

// Sessions returns the tracked sessions ordered by id.
func (t *Tracker) Sessions() []*renderer.Session {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]*renderer.Session, 0, len(t.renderers))
	for _, r := range t.renderers {
		out = append(out, r.session)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Connector returns a ConnectFunc creating Clients that deliver events to
// listener.
func Connector(listener *Listener, logger *slog.Logger, protocolLogger log.Logger) ConnectFunc {
	return func(_ context.Context, dev Device) (Endpoint, error) {
		base, err := listener.CallbackBase(dev.Location)
		if err != nil {
			return nil, err
		}
		c := NewClient(dev, base)
		c.SetLogger(logger)
		c.SetProtocolLogger(protocolLogger)
		return c, nil
	}
}

// Finder returns a FindFunc running SSDP discovery.
func Finder(logger *slog.Logger) FindFunc {
	return func(ctx context.Context) ([]Device, error) {
		return Discover(ctx, logger)
	}
}
