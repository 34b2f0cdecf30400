package upnp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/huin/goupnp/dcps/av1"

	"github.com/upnp-display/upnp-display-go/pkg/log"
	"github.com/upnp-display/upnp-display-go/pkg/renderer"
)

// Client errors.
var (
	ErrUnknownChannel    = errors.New("unknown event channel")
	ErrNoAVTransport     = errors.New("renderer has no AVTransport service")
	ErrUnsupportedAction = errors.New("unsupported action")
	ErrInvalidParameter  = errors.New("invalid action parameter")
	ErrClientClosed      = errors.New("client closed")
	ErrRenewalFailed     = errors.New("subscription renewal failed")
)

// avTransport is the subset of the generated AVTransport client we use.
type avTransport interface {
	GetPositionInfoCtx(ctx context.Context, InstanceID uint32) (Track uint32, TrackDuration string, TrackMetaData string, TrackURI string, RelTime string, AbsTime string, RelCount int32, AbsCount int32, err error)
	PlayCtx(ctx context.Context, InstanceID uint32, Speed string) error
	PauseCtx(ctx context.Context, InstanceID uint32) error
	StopCtx(ctx context.Context, InstanceID uint32) error
}

var _ avTransport = (*av1.AVTransport1)(nil)

// Client is the network side of one renderer session.
type Client struct {
	device       Device
	callbackBase string

	channels  []string
	eventURLs map[string]string

	av   avTransport
	gena *GENAClient

	logger         *slog.Logger
	protocolLogger log.Logger

	// renewAfter maps a granted timeout to the renewal delay.
	renewAfter func(granted time.Duration) time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	subs   map[string]string // SID -> event URL
	err    error             // first renewal failure
	closed bool
}

var _ renderer.Transport = (*Client)(nil)

// NewClient creates a client for device. Event notifications are requested
// at callbackBase, e.g. "http://192.168.1.10:49494".
func NewClient(device Device, callbackBase string) *Client {
	channels, urls := device.EventURLs()
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		device:       device,
		callbackBase: strings.TrimSuffix(callbackBase, "/"),
		channels:     channels,
		eventURLs:    urls,
		gena:         NewGENAClient(),
		renewAfter:   renewInterval,
		logger:       slog.Default(),
		ctx:          ctx,
		cancel:       cancel,
		subs:         make(map[string]string),
	}

	if device.Root != nil {
		clients, err := av1.NewAVTransport1ClientsFromRootDevice(device.Root, device.Location)
		if err == nil && len(clients) > 0 {
			c.av = clients[0]
		}
	}
	return c
}

// SetLogger sets the logger for this client.
func (c *Client) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	c.logger = logger
}

// SetProtocolLogger sets the capture logger.
func (c *Client) SetProtocolLogger(logger log.Logger) {
	c.protocolLogger = logger
}

// EventChannels returns the AVTransport and RenderingControl service types.
func (c *Client) EventChannels() []string {
	return append([]string(nil), c.channels...)
}

// Subscribe subscribes to one channel and keeps the subscription renewed
// until Close.
func (c *Client) Subscribe(ctx context.Context, channel string) (string, error) {
	eventURL, ok := c.eventURLs[channel]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}

	callback := c.callbackBase + "/event/" + uuid.NewString()
	sid, granted, err := c.gena.Subscribe(ctx, eventURL, callback)
	if err != nil {
		c.captureError("subscribe "+channel, err)
		return "", err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		c.unsubscribe(sid, eventURL)
		return "", ErrClientClosed
	}
	c.subs[sid] = eventURL
	c.wg.Add(1)
	c.mu.Unlock()

	c.logger.Debug("GENA subscribed",
		"rendererID", c.device.ID,
		"channel", channel,
		"sid", sid,
		"timeout", granted)

	go c.renewLoop(sid, eventURL, granted)
	return sid, nil
}

func (c *Client) renewLoop(sid, eventURL string, granted time.Duration) {
	defer c.wg.Done()

	for {
		timer := time.NewTimer(c.renewAfter(granted))
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		var err error
		granted, err = c.gena.Renew(c.ctx, eventURL, sid)
		if err != nil {
			if c.ctx.Err() != nil {
				return
			}
			c.logger.Warn("GENA renewal failed",
				"rendererID", c.device.ID,
				"sid", sid,
				"error", err)
			c.captureError("renew "+sid, err)

			c.mu.Lock()
			if c.err == nil {
				c.err = fmt.Errorf("%w: %s: %w", ErrRenewalFailed, sid, err)
			}
			c.mu.Unlock()
			return
		}
	}
}

// Err returns a non-nil error once a subscription could not be renewed.
// The renderer no longer sends events on it; the client must be replaced.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SendAction invokes an AVTransport action.
func (c *Client) SendAction(ctx context.Context, action renderer.Action, params map[string]string) (map[string]string, error) {
	if c.av == nil {
		return nil, ErrNoAVTransport
	}

	id, err := strconv.ParseUint(params["InstanceID"], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: InstanceID %q", ErrInvalidParameter, params["InstanceID"])
	}
	instance := uint32(id)

	switch action {
	case renderer.ActionGetPositionInfo:
		track, duration, metadata, uri, relTime, absTime, relCount, absCount, err := c.av.GetPositionInfoCtx(ctx, instance)
		if err != nil {
			return nil, err
		}
		return map[string]string{
			"Track":         strconv.FormatUint(uint64(track), 10),
			"TrackDuration": duration,
			"TrackMetaData": metadata,
			"TrackURI":      uri,
			"RelTime":       relTime,
			"AbsTime":       absTime,
			"RelCount":      strconv.Itoa(int(relCount)),
			"AbsCount":      strconv.Itoa(int(absCount)),
		}, nil
	case renderer.ActionPlay:
		speed := params["Speed"]
		if speed == "" {
			speed = "1"
		}
		return map[string]string{}, c.av.PlayCtx(ctx, instance, speed)
	case renderer.ActionPause:
		return map[string]string{}, c.av.PauseCtx(ctx, instance)
	case renderer.ActionStop:
		return map[string]string{}, c.av.StopCtx(ctx, instance)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAction, action)
	}
}

// Close stops renewals and unsubscribes every SID. Close is idempotent.
func (c *Client) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := c.subs
	c.subs = make(map[string]string)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	for sid, eventURL := range subs {
		c.unsubscribe(sid, eventURL)
	}
}

func (c *Client) unsubscribe(sid, eventURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.gena.Unsubscribe(ctx, eventURL, sid); err != nil {
		c.logger.Debug("GENA unsubscribe failed",
			"rendererID", c.device.ID,
			"sid", sid,
			"error", err)
	}
}

func (c *Client) captureError(op string, err error) {
	if c.protocolLogger == nil {
		return
	}
	c.protocolLogger.Log(log.Event{
		Timestamp:  time.Now(),
		RendererID: c.device.ID,
		Direction:  log.DirectionOut,
		Layer:      log.LayerTransport,
		Category:   log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: op,
		},
	})
}
