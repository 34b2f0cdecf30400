// Command upnp-display-log views and analyzes capture files written by
// upnp-display --capture.
//
// Usage:
//
//	upnp-display-log <command> [flags] <file.ucap>
//
// Commands:
//
//	view     View capture file in human-readable format
//	export   Export capture file to JSON or CSV format
//	filter   Filter capture file and write to new file
//	stats    Show statistics about the capture file
//
// Examples:
//
//	# View only actions sent to renderers
//	upnp-display-log view --category action display.ucap
//
//	# Follow one renderer
//	upnp-display-log view --renderer uuid:5f9ec1b3-ed59-1900-4530-00a0deb9d2a1 display.ucap
//
//	# Export to CSV
//	upnp-display-log export --format csv -o display.csv display.ucap
//
//	# Show statistics
//	upnp-display-log stats display.ucap
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/upnp-display/upnp-display-go/cmd/upnp-display-log/commands"
)

const usage = `upnp-display-log - UPnP Display Capture Analyzer

Usage:
  upnp-display-log <command> [flags] <file.ucap>

Commands:
  view     View capture file in human-readable format
  export   Export capture file to JSON or CSV format
  filter   Filter capture file and write to new file
  stats    Show statistics about the capture file

Use "upnp-display-log <command> --help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func newFlagSet(name, summary string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "upnp-display-log %s - %s\n\nUsage:\n  upnp-display-log %s [flags] <file.ucap>\n\nFlags:\n",
			name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// pathArg returns the single positional argument or exits.
func pathArg(fs *pflag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: capture file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

// filterFlags registers the event selection flags shared by view and filter.
func filterFlags(fs *pflag.FlagSet) *commands.FilterOptions {
	var opts commands.FilterOptions
	fs.StringVar(&opts.RendererID, "renderer", "", "Filter by renderer UDN")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, session, display)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out, local)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (event, action, state, error)")
	return &opts
}

func runView(args []string) {
	fs := newFlagSet("view", "View capture file in human-readable format")
	opts := filterFlags(fs)
	_ = fs.Parse(args)
	path := pathArg(fs)

	filter, err := opts.Filter()
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export capture file to JSON or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")
	_ = fs.Parse(args)
	path := pathArg(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter capture file and write to new file")
	opts := filterFlags(fs)
	fs.StringVarP(&opts.Output, "output", "o", "", "Output file (required)")
	_ = fs.Parse(args)
	path := pathArg(fs)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, *opts)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the capture file")
	_ = fs.Parse(args)
	path := pathArg(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
