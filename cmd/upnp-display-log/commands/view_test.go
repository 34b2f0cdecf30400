package commands

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

const testRenderer = "uuid:5f9ec1b3-ed59-1900-4530-00a0deb9d2a1"

func TestFormatVariablesEvent(t *testing.T) {
	ts := time.Date(2026, 10, 15, 10, 15, 32, 123456000, time.UTC)
	event := log.Event{
		Timestamp:      ts,
		RendererID:     testRenderer,
		Direction:      log.DirectionIn,
		Layer:          log.LayerSession,
		Category:       log.CategoryEvent,
		SubscriptionID: "uuid:sid-1",
		Variables: &log.VariablesEvent{
			Variables:     map[string]string{"Volume": "30", "TransportState": "PLAYING"},
			MetadataReset: true,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{
		"2026-10-15T10:15:32.123456Z",
		"[5f9ec1b3]",
		"IN",
		"SESSION",
		"Variables",
		"SID: uuid:sid-1",
		`TransportState = "PLAYING"`,
		"(metadata reset)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}

	// Variables are sorted by name.
	if strings.Index(output, "TransportState") > strings.Index(output, "Volume") {
		t.Errorf("expected sorted variables, got: %s", output)
	}
}

func TestFormatActionEvent(t *testing.T) {
	event := log.Event{
		Timestamp:  time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC),
		RendererID: testRenderer,
		Direction:  log.DirectionOut,
		Layer:      log.LayerTransport,
		Category:   log.CategoryAction,
		Action: &log.ActionEvent{
			Action:   "GetPositionInfo",
			Params:   map[string]string{"InstanceID": "0"},
			Result:   map[string]string{"RelTime": "0:01:02"},
			Duration: 1500 * time.Microsecond,
			Failed:   true,
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{"GetPositionInfo", "InstanceID=0", "RelTime=0:01:02", "1.500ms", "FAILED"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestFormatStateChangeEvent(t *testing.T) {
	event := log.Event{
		Timestamp: time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC),
		Direction: log.DirectionLocal,
		Layer:     log.LayerDisplay,
		Category:  log.CategoryState,
		StateChange: &log.StateChangeEvent{
			Entity:   log.StateEntityAttachment,
			OldState: "DETACHED",
			NewState: "ATTACHED",
			Reason:   "name match",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	for _, want := range []string{"[-]", "LOCAL", "ATTACHMENT", "DETACHED -> ATTACHED", "Reason: name match"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output, got: %s", want, output)
		}
	}
}

func TestFormatErrorEvent(t *testing.T) {
	event := log.Event{
		Category: log.CategoryError,
		Error: &log.ErrorEventData{
			Layer:   log.LayerTransport,
			Message: "connection refused",
			Context: "renew",
		},
	}

	var buf bytes.Buffer
	formatEvent(&buf, event)
	output := buf.String()

	if !strings.Contains(output, "Message: connection refused") {
		t.Errorf("expected error message, got: %s", output)
	}
	if !strings.Contains(output, "Context: renew") {
		t.Errorf("expected error context, got: %s", output)
	}
}

func TestShortenRendererID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{testRenderer, "5f9ec1b3"},
		{"uuid:abc", "abc"},
		{"", "-"},
	}
	for _, tt := range tests {
		if got := shortenRendererID(tt.in); got != tt.want {
			t.Errorf("shortenRendererID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseFlags(t *testing.T) {
	if l, err := ParseLayerFlag("Session"); err != nil || l != log.LayerSession {
		t.Errorf("ParseLayerFlag(Session) = %v, %v", l, err)
	}
	if _, err := ParseLayerFlag("wire"); err == nil {
		t.Error("expected error for unknown layer")
	}
	if d, err := ParseDirectionFlag("LOCAL"); err != nil || d != log.DirectionLocal {
		t.Errorf("ParseDirectionFlag(LOCAL) = %v, %v", d, err)
	}
	if _, err := ParseDirectionFlag("sideways"); err == nil {
		t.Error("expected error for unknown direction")
	}
	if c, err := ParseCategoryFlag("action"); err != nil || c != log.CategoryAction {
		t.Errorf("ParseCategoryFlag(action) = %v, %v", c, err)
	}
	if _, err := ParseCategoryFlag("snapshot"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestRunViewWithFilter(t *testing.T) {
	ts := time.Date(2026, 10, 15, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, RendererID: testRenderer, Direction: log.DirectionIn, Category: log.CategoryEvent,
			Variables: &log.VariablesEvent{Variables: map[string]string{"Volume": "1"}}},
		{Timestamp: ts, RendererID: testRenderer, Direction: log.DirectionOut, Category: log.CategoryAction,
			Action: &log.ActionEvent{Action: "Play"}},
		{Timestamp: ts, RendererID: "uuid:other", Direction: log.DirectionOut, Category: log.CategoryAction,
			Action: &log.ActionEvent{Action: "Stop"}},
	}
	path := createTestLogFile(t, events)

	out := log.DirectionOut
	var buf bytes.Buffer
	if err := RunView(path, log.Filter{RendererID: testRenderer, Direction: &out}, &buf); err != nil {
		t.Fatalf("RunView failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "Play") {
		t.Errorf("expected Play action, got: %s", output)
	}
	if strings.Contains(output, "Stop") || strings.Contains(output, "Volume") {
		t.Errorf("filtered events leaked into output: %s", output)
	}
}

func TestRunViewMissingFile(t *testing.T) {
	var buf bytes.Buffer
	if err := RunView("/nonexistent/capture.ucap", log.Filter{}, &buf); err == nil {
		t.Error("expected error for missing file")
	}
}
