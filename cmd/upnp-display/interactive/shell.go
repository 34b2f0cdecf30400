// Package interactive provides the interactive command-line interface
// for upnp-display.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/upnp-display/upnp-display-go/pkg/display"
	"github.com/upnp-display/upnp-display-go/pkg/renderer"
	"github.com/upnp-display/upnp-display-go/pkg/variables"
)

// actionTimeout bounds a single transport action issued from the prompt.
const actionTimeout = 5 * time.Second

// Display is the part of the display controller the shell uses.
type Display interface {
	Match() string
	Attached() display.Session
}

// Renderers lists the renderers currently tracked.
type Renderers interface {
	Sessions() []*renderer.Session
}

// transportControls is implemented by sessions that accept playback
// commands.
type transportControls interface {
	Play(ctx context.Context)
	Pause(ctx context.Context)
	Stop(ctx context.Context)
}

// Shell handles interactive mode for upnp-display.
type Shell struct {
	display   Display
	renderers Renderers
	lines     func() [2]string

	rl  *readline.Instance
	out io.Writer
}

// New creates a new interactive shell. Bind must be called before Run.
func New() (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "display> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{rl: rl, out: rl.Stdout()}, nil
}

// Bind connects the shell to the display and the renderer tracker. lines
// returns what the display is currently showing and may be nil.
func (s *Shell) Bind(d Display, r Renderers, lines func() [2]string) {
	s.display = d
	s.renderers = r
	s.lines = lines
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for display and log output to avoid interfering with the prompt.
func (s *Shell) Stdout() io.Writer {
	return s.out
}

// Stderr returns a writer that properly coordinates with the readline input.
func (s *Shell) Stderr() io.Writer {
	if s.rl == nil {
		return s.out
	}
	return s.rl.Stderr()
}

// Run starts the interactive command loop. It returns when the user quits
// or ctx is cancelled; quitting calls cancel.
func (s *Shell) Run(ctx context.Context, cancel context.CancelFunc) {
	defer s.rl.Close()

	// Readline blocks; closing the instance unblocks it on shutdown.
	stop := context.AfterFunc(ctx, func() { s.rl.Close() })
	defer stop()

	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			if ctx.Err() == nil {
				fmt.Fprintln(s.out, "Exiting...")
				cancel()
			}
			return
		}

		if quit := s.Execute(ctx, line); quit {
			cancel()
			return
		}
	}
}

// Execute runs one command line. It reports whether the user asked to quit.
func (s *Shell) Execute(ctx context.Context, line string) bool {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return false
	}

	switch strings.ToLower(parts[0]) {
	case "help", "?":
		s.printHelp()
	case "play":
		s.cmdTransport(ctx, "play", transportControls.Play)
	case "pause":
		s.cmdTransport(ctx, "pause", transportControls.Pause)
	case "stop":
		s.cmdTransport(ctx, "stop", transportControls.Stop)
	case "status", "s":
		s.cmdStatus()
	case "list", "ls":
		s.cmdList()
	case "quit", "exit", "q":
		fmt.Fprintln(s.out, "Exiting...")
		return true
	default:
		fmt.Fprintf(s.out, "Unknown command: %s (type 'help' for commands)\n", parts[0])
	}
	return false
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.out, `
UPnP Display Commands:
  Playback (attached renderer):
    play               - Start playback
    pause              - Pause playback
    stop               - Stop playback

  Status:
    status             - Show the attached renderer and display lines
    list               - List discovered renderers

  General:
    help               - Show this help
    quit               - Exit`)
}

func (s *Shell) cmdTransport(ctx context.Context, name string, fn func(transportControls, context.Context)) {
	session := s.display.Attached()
	if session == nil {
		fmt.Fprintln(s.out, "No renderer attached")
		return
	}
	controls, ok := session.(transportControls)
	if !ok {
		fmt.Fprintf(s.out, "Renderer %s does not accept %s\n", session.ID(), name)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, actionTimeout)
	defer cancel()
	fn(controls, ctx)
	fmt.Fprintf(s.out, "Sent %s to %s\n", name, displayName(session.FriendlyName(), session.ID()))
}

func (s *Shell) cmdStatus() {
	match := s.display.Match()
	if match == "" {
		match = "(any)"
	}
	fmt.Fprintf(s.out, "Match:    %s\n", match)

	session := s.display.Attached()
	if session == nil {
		fmt.Fprintln(s.out, "Attached: none")
	} else {
		snap := session.Snapshot()
		fmt.Fprintf(s.out, "Attached: %s\n", displayName(session.FriendlyName(), session.ID()))
		fmt.Fprintf(s.out, "  State:    %s\n", valueOr(snap.PlayState, "-"))
		fmt.Fprintf(s.out, "  Title:    %s\n", valueOr(snap.Title, "-"))
		fmt.Fprintf(s.out, "  Artist:   %s\n", valueOr(snap.Artist, "-"))
		fmt.Fprintf(s.out, "  Album:    %s\n", valueOr(snap.Album, "-"))
		fmt.Fprintf(s.out, "  Position: %d/%ds\n", snap.Position, snap.Duration)
		muted := ""
		if snap.Muted {
			muted = " (muted)"
		}
		fmt.Fprintf(s.out, "  Volume:   %s%s\n", valueOr(snap.Volume, "-"), muted)
		fmt.Fprintf(s.out, "  Last event: %s ago\n", session.LastEventAge(time.Now()).Round(time.Second))
	}

	if s.lines != nil {
		lines := s.lines()
		fmt.Fprintf(s.out, "Display:\n  |%s|\n  |%s|\n", lines[0], lines[1])
	}
}

func (s *Shell) cmdList() {
	sessions := s.renderers.Sessions()
	if len(sessions) == 0 {
		fmt.Fprintln(s.out, "No renderers discovered")
		return
	}

	var attachedID string
	if a := s.display.Attached(); a != nil {
		attachedID = a.ID()
	}

	fmt.Fprintf(s.out, "Renderers (%d):\n", len(sessions))
	for _, session := range sessions {
		marker := " "
		if session.ID() == attachedID {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %-24s %-16s %s\n",
			marker,
			valueOr(session.FriendlyName(), "-"),
			valueOr(session.Get(variables.TransportState), "-"),
			session.ID())
	}
}

func displayName(name, id string) string {
	if name == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", name, id)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
