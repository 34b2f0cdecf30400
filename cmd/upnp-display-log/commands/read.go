package commands

import (
	"fmt"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

// timestampLayout renders capture times in view and CSV output.
const timestampLayout = "2006-01-02T15:04:05.000000Z"

// eachEvent calls fn for every event in the capture at path that matches
// filter, stopping at the first error.
func eachEvent(path string, filter log.Filter, fn func(log.Event) error) error {
	reader, err := log.Open(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open capture file: %w", err)
	}
	defer reader.Close()

	for event, err := range reader.All() {
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
	return nil
}
