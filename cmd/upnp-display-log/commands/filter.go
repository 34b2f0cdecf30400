package commands

import (
	"fmt"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

// FilterOptions are the command-line criteria of the filter command.
// Empty fields match everything.
type FilterOptions struct {
	Output     string
	RendererID string
	TimeStart  string
	TimeEnd    string
	Layer      string
	Direction  string
	Category   string
}

// Filter converts the options into a capture filter.
func (o FilterOptions) Filter() (log.Filter, error) {
	f := log.Filter{RendererID: o.RendererID}
	var err error
	if f.TimeStart, err = parseOptional(o.TimeStart, parseRFC3339); err != nil {
		return f, err
	}
	if f.TimeEnd, err = parseOptional(o.TimeEnd, parseRFC3339); err != nil {
		return f, err
	}
	if f.Layer, err = parseOptional(o.Layer, ParseLayerFlag); err != nil {
		return f, err
	}
	if f.Direction, err = parseOptional(o.Direction, ParseDirectionFlag); err != nil {
		return f, err
	}
	if f.Category, err = parseOptional(o.Category, ParseCategoryFlag); err != nil {
		return f, err
	}
	return f, nil
}

// parseOptional returns nil for an empty value.
func parseOptional[T any](value string, parse func(string) (T, error)) (*T, error) {
	if value == "" {
		return nil, nil
	}
	v, err := parse(value)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseRFC3339(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// RunFilter copies the events of the capture at path that match opts into
// a new capture at opts.Output. It returns the number of events written.
func RunFilter(path string, opts FilterOptions) (int, error) {
	filter, err := opts.Filter()
	if err != nil {
		return 0, err
	}

	out, err := log.NewFileLogger(opts.Output)
	if err != nil {
		return 0, err
	}
	defer out.Close()

	count := 0
	err = eachEvent(path, filter, func(event log.Event) error {
		out.Log(event)
		count++
		return nil
	})
	if err != nil {
		return count, err
	}
	if n := out.Dropped(); n > 0 {
		return count - n, fmt.Errorf("failed to write %d events to %s", n, opts.Output)
	}
	return count, nil
}
