package commands

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/upnp-display/upnp-display-go/pkg/log"
)

func exportFixture(t *testing.T) string {
	t.Helper()
	ts := time.Date(2026, 10, 15, 10, 15, 32, 123456000, time.UTC)
	return createTestLogFile(t, []log.Event{
		{Timestamp: ts, RendererID: testRenderer, Direction: log.DirectionIn, Layer: log.LayerSession,
			Category: log.CategoryEvent, SubscriptionID: "uuid:sid-1",
			Variables: &log.VariablesEvent{Variables: map[string]string{"Volume": "12", "Mute": "0"}}},
		{Timestamp: ts, RendererID: testRenderer, Direction: log.DirectionOut, Layer: log.LayerTransport,
			Category: log.CategoryAction, Action: &log.ActionEvent{Action: "Pause"}},
	})
}

func TestExportToJSONL(t *testing.T) {
	path := exportFixture(t)
	outPath := filepath.Join(t.TempDir(), "out.jsonl")

	if err := RunExport(path, "jsonl", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	var first log.Event
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if first.RendererID != testRenderer {
		t.Errorf("RendererID = %q, want %q", first.RendererID, testRenderer)
	}
	if first.Variables == nil || first.Variables.Variables["Volume"] != "12" {
		t.Errorf("Variables = %+v, want Volume=12", first.Variables)
	}
}

func TestExportToCSV(t *testing.T) {
	path := exportFixture(t)
	outPath := filepath.Join(t.TempDir(), "out.csv")

	if err := RunExport(path, "csv", outPath); err != nil {
		t.Fatalf("RunExport failed: %v", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(records))
	}
	if records[0][1] != "renderer_id" {
		t.Errorf("header[1] = %q, want renderer_id", records[0][1])
	}
	if records[1][6] != "variables" || records[1][7] != "2" {
		t.Errorf("row 1 = %v, want variables with 2 entries", records[1])
	}
	if records[1][5] != "uuid:sid-1" {
		t.Errorf("row 1 sid = %q, want uuid:sid-1", records[1][5])
	}
	if records[2][6] != "action" || records[2][7] != "Pause" {
		t.Errorf("row 2 = %v, want action Pause", records[2])
	}
}

func TestExportUnknownFormat(t *testing.T) {
	path := exportFixture(t)
	err := RunExport(path, "xml", filepath.Join(t.TempDir(), "out"))
	if err == nil || !strings.Contains(err.Error(), "unknown format") {
		t.Errorf("RunExport(xml) error = %v, want unknown format", err)
	}
}
