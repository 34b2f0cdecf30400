// Command upnp-display shows what a UPnP media renderer is playing on a
// two-line character display.
//
// Usage:
//
//	upnp-display [flags]
//
// Examples:
//
//	# Follow the first renderer found, 16 cells wide
//	upnp-display
//
//	# Follow the renderer named "Kitchen" on a 20 cell display and blank
//	# it after five minutes without events
//	upnp-display -n Kitchen -w 20 -s 300
//
//	# Interactive prompt with play/pause/stop
//	upnp-display -i -n Kitchen
//
//	# Run unattended, logging to a rotated file and capturing protocol
//	# events for upnp-display-log
//	upnp-display -d --log-file /var/log/upnp-display.log --capture display.ucap
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/upnp-display/upnp-display-go/cmd/upnp-display/interactive"
	"github.com/upnp-display/upnp-display-go/internal/config"
	"github.com/upnp-display/upnp-display-go/pkg/display"
	"github.com/upnp-display/upnp-display-go/pkg/log"
	"github.com/upnp-display/upnp-display-go/pkg/printer"
	"github.com/upnp-display/upnp-display-go/pkg/renderer"
	"github.com/upnp-display/upnp-display-go/pkg/upnp"
)

// defaultDaemonLog is used with --daemon when no log file is configured.
var defaultDaemonLog = filepath.Join(os.TempDir(), "upnp-display.log")

// Options holds the command-line flags that are not part of the
// configuration file.
type Options struct {
	ConfigFile  string
	Console     bool
	Daemon      bool
	Interactive bool
}

func newFlagSet() (*pflag.FlagSet, *Options, *config.Config) {
	opts := &Options{}
	cfg := config.Default()

	fs := pflag.NewFlagSet("upnp-display", pflag.ContinueOnError)
	fs.StringVar(&opts.ConfigFile, "config", "", "Configuration file path (YAML)")
	fs.StringVarP(&cfg.Match, "name", "n", cfg.Match, "Renderer friendly name or uuid:... to follow (default: first found)")
	fs.IntVarP(&cfg.Width, "width", "w", cfg.Width, "Display width in cells (at least 8)")
	fs.IntVarP(&cfg.Screensave, "screensave", "s", cfg.Screensave, "Blank the display after this many seconds without events (<= 0 disables)")
	fs.BoolVarP(&opts.Console, "console", "c", false, "Plain console output, one line per change")
	fs.BoolVarP(&opts.Daemon, "daemon", "d", false, "Run unattended: log to file, no interactive prompt")
	fs.BoolVarP(&opts.Interactive, "interactive", "i", false, "Interactive prompt with playback commands")
	fs.StringVar(&cfg.Capture, "capture", cfg.Capture, "Write protocol capture to this file")
	fs.StringVar(&cfg.Listen, "listen", cfg.Listen, "Event listener address")
	fs.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "Write logs to this rotated file instead of stderr")
	return fs, opts, cfg
}

// parseArgs loads the configuration and applies the command line on top.
// Flags only override the file and environment when given explicitly.
func parseArgs(args []string) (*config.Config, *Options, error) {
	fs, opts, flagged := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, nil, err
	}

	overrides := map[string]func(){
		"name":       func() { cfg.Match = flagged.Match },
		"width":      func() { cfg.Width = flagged.Width },
		"screensave": func() { cfg.Screensave = flagged.Screensave },
		"capture":    func() { cfg.Capture = flagged.Capture },
		"listen":     func() { cfg.Listen = flagged.Listen },
		"log-level":  func() { cfg.Log.Level = flagged.Log.Level },
		"log-file":   func() { cfg.Log.File = flagged.Log.File },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	if opts.Daemon {
		if opts.Interactive {
			return nil, nil, errors.New("--daemon and --interactive are mutually exclusive")
		}
		if cfg.Log.File == "" {
			cfg.Log.File = defaultDaemonLog
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, opts, nil
}

// setupLogging builds the operational logger. The returned closer flushes
// the log file, if any.
func setupLogging(cfg *config.Config, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, nil, err
	}

	w, closer := stderr, io.Closer(nopCloser{})
	if cfg.Log.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Log.File,
			MaxSize:    cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAge:     cfg.Log.MaxAgeDays,
		}
		w, closer = lj, lj
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// setupCapture opens the capture file. Captured events are also logged at
// debug level.
func setupCapture(cfg *config.Config, logger *slog.Logger) (log.Logger, io.Closer, error) {
	if cfg.Capture == "" {
		return log.NewSlogAdapter(logger), nopCloser{}, nil
	}
	file, err := log.NewFileLogger(cfg.Capture)
	if err != nil {
		return nil, nil, fmt.Errorf("open capture file: %w", err)
	}
	return log.Tee(file, log.NewSlogAdapter(logger)), file, nil
}

func main() {
	cfg, opts, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, opts *Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var shell *interactive.Shell
	stdout, stderr := io.Writer(os.Stdout), io.Writer(os.Stderr)
	if opts.Interactive {
		var err error
		if shell, err = interactive.New(); err != nil {
			return err
		}
		stdout, stderr = shell.Stdout(), shell.Stderr()
	}

	logger, logCloser, err := setupLogging(cfg, stderr)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	protocolLogger, captureCloser, err := setupCapture(cfg, logger)
	if err != nil {
		return err
	}
	defer captureCloser.Close()

	logger.Info("upnp-display starting",
		"match", cfg.Match,
		"width", cfg.Width,
		"screensave", cfg.ScreensaveTimeout(),
		"capture", cfg.Capture)

	console := printer.NewConsole(stdout, cfg.Width)
	if opts.Console || opts.Interactive {
		console.SetRedraw(false)
	}

	controller := display.NewController(display.Config{
		Match:             cfg.Match,
		ScreensaveTimeout: cfg.ScreensaveTimeout(),
		TickInterval:      cfg.TickInterval,
	}, printer.New(console, cfg.Match))
	controller.SetLogger(logger)
	controller.SetProtocolLogger(protocolLogger)

	registry := renderer.NewRegistry()

	listener := upnp.NewListener(cfg.Listen, registry)
	listener.SetLogger(logger)
	listener.SetProtocolLogger(protocolLogger)
	if err := listener.Listen(); err != nil {
		return err
	}

	tracker := upnp.NewTracker(upnp.TrackerConfig{
		Interval:      cfg.DiscoveryInterval,
		MissingRounds: cfg.MissingRounds,
	}, registry, controller, upnp.Finder(logger), upnp.Connector(listener, logger, protocolLogger))
	tracker.SetLogger(logger)
	tracker.SetProtocolLogger(protocolLogger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listener.Serve(ctx) })
	g.Go(func() error { return tracker.Run(ctx) })
	g.Go(func() error { return controller.Loop(ctx) })
	if shell != nil {
		shell.Bind(controller, tracker, console.Lines)
		g.Go(func() error {
			shell.Run(ctx, cancel)
			return nil
		})
	}

	err = g.Wait()
	logger.Info("Goodbye!")
	return err
}
