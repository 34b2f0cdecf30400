package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

// csvHeader names the columns written by csvRecord.
var csvHeader = []string{"timestamp", "renderer_id", "direction", "layer", "category", "sid", "type", "detail"}

// RunExport writes the capture at path as JSON lines or CSV to output,
// or to stdout when output is empty.
func RunExport(path, format, output string) error {
	var write func(io.Writer) error
	switch format {
	case "jsonl":
		write = func(w io.Writer) error { return exportJSONL(path, w) }
	case "csv":
		write = func(w io.Writer) error { return exportCSV(path, w) }
	default:
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	if output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportJSONL(path string, w io.Writer) error {
	enc := json.NewEncoder(w)
	return eachEvent(path, log.Filter{}, func(event log.Event) error {
		return enc.Encode(event)
	})
}

func exportCSV(path string, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	if err := eachEvent(path, log.Filter{}, func(event log.Event) error {
		return cw.Write(csvRecord(event))
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// csvRecord flattens event into one row; "detail" carries the most useful
// field of the payload.
func csvRecord(event log.Event) []string {
	kind, detail := "unknown", ""
	switch {
	case event.Variables != nil:
		kind, detail = "variables", strconv.Itoa(len(event.Variables.Variables))
	case event.Action != nil:
		kind, detail = "action", event.Action.Action
	case event.StateChange != nil:
		kind, detail = "state", event.StateChange.Entity.String()+":"+event.StateChange.NewState
	case event.Error != nil:
		kind, detail = "error", event.Error.Message
	}
	return []string{
		event.Timestamp.UTC().Format(timestampLayout),
		event.RendererID,
		event.Direction.String(),
		event.Layer.String(),
		event.Category.String(),
		event.SubscriptionID,
		kind,
		detail,
	}
}
