// Package commands implements the upnp-display-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [renderer] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format(timestampLayout)
	fmt.Fprintf(w, "%s [%s] %-5s %s %s\n",
		ts, shortenRendererID(event.RendererID), event.Direction.String(), event.Layer.String(), typeLabel(event))

	if event.SubscriptionID != "" {
		fmt.Fprintf(w, "  SID: %s\n", event.SubscriptionID)
	}

	switch {
	case event.Variables != nil:
		formatVariablesDetails(w, event.Variables)
	case event.Action != nil:
		formatActionDetails(w, event.Action)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}

	fmt.Fprintln(w)
}

func typeLabel(event log.Event) string {
	switch {
	case event.Variables != nil:
		return "Variables"
	case event.Action != nil:
		return event.Action.Action
	case event.StateChange != nil:
		return "State"
	case event.Error != nil:
		return "Error"
	default:
		return "Unknown"
	}
}

// shortenRendererID drops the "uuid:" prefix and keeps the first 8
// characters.
func shortenRendererID(id string) string {
	id = strings.TrimPrefix(id, "uuid:")
	if id == "" {
		return "-"
	}
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatVariablesDetails(w io.Writer, v *log.VariablesEvent) {
	names := make([]string, 0, len(v.Variables))
	for name := range v.Variables {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s = %q\n", name, v.Variables[name])
	}
	if v.MetadataReset {
		fmt.Fprintln(w, "  (metadata reset)")
	}
}

func formatActionDetails(w io.Writer, a *log.ActionEvent) {
	if len(a.Params) > 0 {
		fmt.Fprintf(w, "  Params: %s\n", formatArgs(a.Params))
	}
	if len(a.Result) > 0 {
		fmt.Fprintf(w, "  Result: %s\n", formatArgs(a.Result))
	}
	if a.Duration > 0 {
		fmt.Fprintf(w, "  Duration: %s\n", formatDuration(a.Duration))
	}
	if a.Failed {
		fmt.Fprintln(w, "  FAILED")
	}
}

func formatArgs(args map[string]string) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + args[k]
	}
	return strings.Join(parts, " ")
}

// formatStateChangeDetails writes state change details.
func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  Entity: %s\n", sc.Entity.String())
	if sc.OldState != "" {
		fmt.Fprintf(w, "  %s -> %s\n", sc.OldState, sc.NewState)
	} else {
		fmt.Fprintf(w, "  -> %s\n", sc.NewState)
	}
	if sc.Reason != "" {
		fmt.Fprintf(w, "  Reason: %s\n", sc.Reason)
	}
}

// formatErrorDetails writes error details.
func formatErrorDetails(w io.Writer, err *log.ErrorEventData) {
	fmt.Fprintf(w, "  Layer: %s\n", err.Layer.String())
	fmt.Fprintf(w, "  Message: %s\n", err.Message)
	if err.Context != "" {
		fmt.Fprintf(w, "  Context: %s\n", err.Context)
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.3fus", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.3fms", float64(d.Microseconds())/1000)
	}
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// ParseLayerFlag parses a layer string (case-insensitive).
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "session":
		return log.LayerSession, nil
	case "display":
		return log.LayerDisplay, nil
	default:
		return 0, fmt.Errorf("invalid layer: %s (must be transport, session, or display)", s)
	}
}

// ParseDirectionFlag parses a direction string (case-insensitive).
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	case "local":
		return log.DirectionLocal, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s (must be in, out, or local)", s)
	}
}

// ParseCategoryFlag parses a category string (case-insensitive).
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "event":
		return log.CategoryEvent, nil
	case "action":
		return log.CategoryAction, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category: %s (must be event, action, state, or error)", s)
	}
}

// RunView prints every event of the capture at path that matches filter.
func RunView(path string, filter log.Filter, output io.Writer) error {
	return eachEvent(path, filter, func(event log.Event) error {
		formatEvent(output, event)
		return nil
	})
}
