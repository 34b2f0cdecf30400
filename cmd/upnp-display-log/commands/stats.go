package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Renderers         map[string]*RendererStats
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// RendererStats holds statistics for a single renderer.
type RendererStats struct {
	FirstSeen     time.Time
	LastSeen      time.Time
	Events        int
	Batches       int
	Actions       int
	FailedActions int
	MetadataReset int
}

// RunStats analyzes the capture file and prints statistics.
func RunStats(path string, w io.Writer) error {
	stats := newStats()
	if err := eachEvent(path, log.Filter{}, func(event log.Event) error {
		stats.add(event)
		return nil
	}); err != nil {
		return err
	}

	printStats(w, stats)
	return nil
}

func newStats() *Stats {
	return &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Renderers:         make(map[string]*RendererStats),
	}
}

func (s *Stats) add(event log.Event) {
	s.TotalEvents++
	s.EventsByLayer[event.Layer]++
	s.EventsByCategory[event.Category]++
	s.EventsByDirection[event.Direction]++

	if s.TimeRange.Start.IsZero() || event.Timestamp.Before(s.TimeRange.Start) {
		s.TimeRange.Start = event.Timestamp
	}
	if event.Timestamp.After(s.TimeRange.End) {
		s.TimeRange.End = event.Timestamp
	}
	if event.Error != nil {
		s.Errors++
	}

	if event.RendererID == "" {
		return
	}
	r, ok := s.Renderers[event.RendererID]
	if !ok {
		r = &RendererStats{FirstSeen: event.Timestamp, LastSeen: event.Timestamp}
		s.Renderers[event.RendererID] = r
	}
	r.Events++
	if event.Timestamp.After(r.LastSeen) {
		r.LastSeen = event.Timestamp
	}
	switch {
	case event.Variables != nil:
		r.Batches++
		if event.Variables.MetadataReset {
			r.MetadataReset++
		}
	case event.Action != nil:
		r.Actions++
		if event.Action.Failed {
			r.FailedActions++
		}
	}
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== UPnP Display Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Second))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerSession, log.LayerDisplay} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryEvent, log.CategoryAction, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut, log.DirectionLocal} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Renderers: %d\n", len(stats.Renderers))
	if len(stats.Renderers) > 0 {
		ids := make([]string, 0, len(stats.Renderers))
		for id := range stats.Renderers {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			return stats.Renderers[ids[i]].FirstSeen.Before(stats.Renderers[ids[j]].FirstSeen)
		})

		fmt.Fprintln(w)
		for _, id := range ids {
			r := stats.Renderers[id]
			fmt.Fprintf(w, "  [%s] %d events, duration %s\n",
				shortenRendererID(id), r.Events, r.LastSeen.Sub(r.FirstSeen).Round(time.Millisecond))
			if r.Batches > 0 {
				fmt.Fprintf(w, "           Batches: %d", r.Batches)
				if r.MetadataReset > 0 {
					fmt.Fprintf(w, " (metadata reset: %d)", r.MetadataReset)
				}
				fmt.Fprintln(w)
			}
			if r.Actions > 0 {
				fmt.Fprintf(w, "           Actions: %d (failed: %d)\n", r.Actions, r.FailedActions)
			}
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
