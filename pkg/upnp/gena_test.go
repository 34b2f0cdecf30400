package upnp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// genaServer is a fake renderer event endpoint.
type genaServer struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	timeout  string
	nextSID  string
}

func (s *genaServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, r.Clone(context.Background()))
	if s.status != 0 && s.status != http.StatusOK {
		w.WriteHeader(s.status)
		return
	}
	if r.Method == "SUBSCRIBE" {
		sid := r.Header.Get("SID")
		if sid == "" {
			sid = s.nextSID
		}
		w.Header().Set("SID", sid)
		if s.timeout != "" {
			w.Header().Set("TIMEOUT", s.timeout)
		}
	}
	w.WriteHeader(http.StatusOK)
}

func (s *genaServer) Requests() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func TestGENASubscribe(t *testing.T) {
	fake := &genaServer{nextSID: "uuid:sid-1", timeout: "Second-300"}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	g := NewGENAClient()
	sid, granted, err := g.Subscribe(context.Background(), srv.URL+"/evt", "http://10.0.0.2:4000/event/x")
	require.NoError(t, err)

	assert.Equal(t, "uuid:sid-1", sid)
	assert.Equal(t, 300*time.Second, granted)

	reqs := fake.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "SUBSCRIBE", reqs[0].Method)
	assert.Equal(t, "/evt", reqs[0].URL.Path)
	assert.Equal(t, "<http://10.0.0.2:4000/event/x>", reqs[0].Header.Get("CALLBACK"))
	assert.Equal(t, "upnp:event", reqs[0].Header.Get("NT"))
	assert.Equal(t, "Second-1800", reqs[0].Header.Get("TIMEOUT"))
}

func TestGENARenewAndUnsubscribe(t *testing.T) {
	fake := &genaServer{}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	g := NewGENAClient()
	granted, err := g.Renew(context.Background(), srv.URL, "uuid:sid-1")
	require.NoError(t, err)
	assert.Equal(t, DefaultSubscriptionTimeout, granted)

	require.NoError(t, g.Unsubscribe(context.Background(), srv.URL, "uuid:sid-1"))

	reqs := fake.Requests()
	require.Len(t, reqs, 2)
	assert.Equal(t, "uuid:sid-1", reqs[0].Header.Get("SID"))
	assert.Empty(t, reqs[0].Header.Get("NT"))
	assert.Empty(t, reqs[0].Header.Get("CALLBACK"))
	assert.Equal(t, "UNSUBSCRIBE", reqs[1].Method)
	assert.Equal(t, "uuid:sid-1", reqs[1].Header.Get("SID"))
}

func TestGENARejected(t *testing.T) {
	srv := httptest.NewServer(&genaServer{status: http.StatusPreconditionFailed})
	defer srv.Close()

	_, _, err := NewGENAClient().Subscribe(context.Background(), srv.URL, "http://x/")
	assert.ErrorIs(t, err, ErrSubscriptionRejected)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusPreconditionFailed, statusErr.Status)
}

func TestGENAMissingSID(t *testing.T) {
	srv := httptest.NewServer(&genaServer{})
	defer srv.Close()

	_, _, err := NewGENAClient().Subscribe(context.Background(), srv.URL, "http://x/")
	assert.ErrorIs(t, err, ErrMissingSID)
}

func TestParseTimeout(t *testing.T) {
	fallback := time.Minute
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"Second-1800", 1800 * time.Second},
		{" Second-5 ", 5 * time.Second},
		{"infinite", fallback},
		{"Second-0", fallback},
		{"Second-x", fallback},
		{"", fallback},
	}

	for _, tt := range tests {
		if got := parseTimeout(tt.in, fallback); got != tt.want {
			t.Errorf("parseTimeout(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestRenewInterval(t *testing.T) {
	assert.Equal(t, 900*time.Second, renewInterval(1800*time.Second))
	assert.Equal(t, minRenewInterval, renewInterval(4*time.Second))
}
