package upnp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// GENA defaults.
const (
	DefaultSubscriptionTimeout = 1800 * time.Second

	// minRenewInterval bounds the renewal period for renderers that grant
	// very short subscriptions.
	minRenewInterval = 10 * time.Second
)

// GENA errors.
var (
	ErrSubscriptionRejected = errors.New("subscription rejected")
	ErrMissingSID           = errors.New("response carries no SID")
)

// StatusError is a GENA request answered with a non-200 status.
type StatusError struct {
	Method string
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d %s", e.Method, e.Status, http.StatusText(e.Status))
}

func (e *StatusError) Unwrap() error {
	return ErrSubscriptionRejected
}

// GENAClient sends SUBSCRIBE and UNSUBSCRIBE requests.
type GENAClient struct {
	HTTP    *http.Client
	Timeout time.Duration
}

// NewGENAClient creates a client requesting DefaultSubscriptionTimeout.
func NewGENAClient() *GENAClient {
	return &GENAClient{
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Timeout: DefaultSubscriptionTimeout,
	}
}

// Subscribe opens a subscription delivering to callback. It returns the SID
// and the subscription lifetime granted by the renderer.
func (g *GENAClient) Subscribe(ctx context.Context, eventURL, callback string) (string, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, "SUBSCRIBE", eventURL, nil)
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("CALLBACK", "<"+callback+">")
	req.Header.Set("NT", "upnp:event")
	req.Header.Set("TIMEOUT", formatTimeout(g.Timeout))

	resp, err := g.do(req)
	if err != nil {
		return "", 0, err
	}
	sid := resp.Header.Get("SID")
	if sid == "" {
		return "", 0, ErrMissingSID
	}
	return sid, parseTimeout(resp.Header.Get("TIMEOUT"), g.Timeout), nil
}

// Renew extends an existing subscription.
func (g *GENAClient) Renew(ctx context.Context, eventURL, sid string) (time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, "SUBSCRIBE", eventURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("SID", sid)
	req.Header.Set("TIMEOUT", formatTimeout(g.Timeout))

	resp, err := g.do(req)
	if err != nil {
		return 0, err
	}
	return parseTimeout(resp.Header.Get("TIMEOUT"), g.Timeout), nil
}

// Unsubscribe cancels a subscription.
func (g *GENAClient) Unsubscribe(ctx context.Context, eventURL, sid string) error {
	req, err := http.NewRequestWithContext(ctx, "UNSUBSCRIBE", eventURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("SID", sid)

	_, err = g.do(req)
	return err
}

func (g *GENAClient) do(req *http.Request) (*http.Response, error) {
	client := g.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Method: req.Method, Status: resp.StatusCode}
	}
	return resp, nil
}

func formatTimeout(d time.Duration) string {
	if d <= 0 {
		return "infinite"
	}
	return "Second-" + strconv.Itoa(int(d/time.Second))
}

// parseTimeout reads a "Second-N" header. Missing, infinite or invalid
// values yield fallback.
func parseTimeout(header string, fallback time.Duration) time.Duration {
	n, ok := strings.CutPrefix(strings.TrimSpace(header), "Second-")
	if !ok {
		return fallback
	}
	secs, err := strconv.Atoi(n)
	if err != nil || secs <= 0 {
		return fallback
	}
	return time.Duration(secs) * time.Second
}

// renewInterval renews at half the granted lifetime.
func renewInterval(granted time.Duration) time.Duration {
	return max(granted/2, minRenewInterval)
}
