package upnp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/log"
	"github.com/upnp-display/upnp-display-go/pkg/renderer"
)

// maxEventSize bounds a NOTIFY body. LastChange with DIDL-Lite metadata
// is usually a few kilobytes.
const maxEventSize = 1 << 20

var errPendingFull = errors.New("too many pending subscriptions")

// Listener receives GENA event notifications and routes them to sessions.
type Listener struct {
	addr     string
	registry *renderer.Registry

	logger         *slog.Logger
	protocolLogger log.Logger

	ln     net.Listener
	server *http.Server
}

// NewListener creates a listener for addr, e.g. ":0" or ":49494".
func NewListener(addr string, registry *renderer.Registry) *Listener {
	l := &Listener{
		addr:     addr,
		registry: registry,
		logger:   slog.Default(),
	}
	l.server = &http.Server{
		Handler:           l,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return l
}

// SetLogger sets the logger for the listener.
func (l *Listener) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	l.logger = logger
}

// SetProtocolLogger sets the capture logger.
func (l *Listener) SetProtocolLogger(logger log.Logger) {
	l.protocolLogger = logger
}

// Listen binds the listening socket.
func (l *Listener) Listen() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("event listener: %w", err)
	}
	l.ln = ln
	return nil
}

// Port returns the bound port, or 0 before Listen.
func (l *Listener) Port() int {
	if l.ln == nil {
		return 0
	}
	return l.ln.Addr().(*net.TCPAddr).Port
}

// Serve handles notifications until ctx is cancelled.
func (l *Listener) Serve(ctx context.Context) error {
	if l.ln == nil {
		if err := l.Listen(); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- l.server.Serve(l.ln)
	}()
	l.logger.Info("event listener started", "addr", l.ln.Addr().String())

	select {
	case err := <-errCh:
		return fmt.Errorf("event listener: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.server.Shutdown(shutdownCtx); err != nil {
		l.logger.Debug("event listener shutdown", "error", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("event listener: %w", err)
	}
	return nil
}

// CallbackBase returns the base URL under which the renderer at location
// can reach this listener. The local address is the one the kernel picks
// to route to the renderer.
func (l *Listener) CallbackBase(location *url.URL) (string, error) {
	host, err := localAddrFor(location)
	if err != nil {
		return "", err
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(l.Port())), nil
}

func localAddrFor(location *url.URL) (string, error) {
	if location == nil {
		return "", errors.New("renderer location unknown")
	}
	port := location.Port()
	if port == "" {
		port = "80"
	}
	// UDP dial sends nothing; it only selects a route.
	conn, err := net.Dial("udp", net.JoinHostPort(location.Hostname(), port))
	if err != nil {
		return "", fmt.Errorf("route to renderer: %w", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}

// ServeHTTP handles one NOTIFY request.
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != "NOTIFY" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sid := r.Header.Get("SID")
	if r.Header.Get("NT") == "" || r.Header.Get("NTS") == "" || sid == "" {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	if r.Header.Get("NT") != "upnp:event" || r.Header.Get("NTS") != "upnp:propchange" {
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}

	session, err := l.registry.Resolve(sid)
	initial := r.Header.Get("SEQ") == "0"
	if err != nil && !initial {
		l.logger.Debug("event for unknown subscription", "sid", sid)
		l.captureError("", sid, "resolve", err)
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventSize))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	batch, err := ParsePropertySet(body)
	if err != nil {
		rendererID := ""
		if session != nil {
			rendererID = session.ID()
		}
		l.logger.Warn("dropping malformed event",
			"rendererID", rendererID,
			"sid", sid,
			"error", err)
		l.captureError(rendererID, sid, "parse", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if session != nil {
		session.ApplyEvent(batch)
		w.WriteHeader(http.StatusOK)
		return
	}

	// The initial event can beat the SUBSCRIBE response; hold it until the
	// SID is registered.
	apply := func(s *renderer.Session) { s.ApplyEvent(batch) }
	if !l.registry.Defer(sid, apply) {
		l.logger.Debug("too many pending subscriptions", "sid", sid)
		l.captureError("", sid, "defer", errPendingFull)
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}
	l.logger.Debug("holding initial event", "sid", sid)
	w.WriteHeader(http.StatusOK)
}

func (l *Listener) captureError(rendererID, sid, op string, err error) {
	if l.protocolLogger == nil {
		return
	}
	l.protocolLogger.Log(log.Event{
		Timestamp:      time.Now(),
		RendererID:     rendererID,
		Direction:      log.DirectionIn,
		Layer:          log.LayerTransport,
		Category:       log.CategoryError,
		SubscriptionID: sid,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: err.Error(),
			Context: op,
		},
	})
}
