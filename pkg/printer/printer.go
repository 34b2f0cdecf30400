package printer

import (
	"github.com/mattn/go-runewidth"

	"github.com/upnp-display/upnp-display-go/pkg/display"
	"github.com/upnp-display/upnp-display-go/pkg/renderer"
	"github.com/upnp-display/upnp-display-go/pkg/variables"
)

// Glyphs used on the display.
const (
	StopSymbol  = "⬛"
	PlaySymbol  = "▶"
	PauseSymbol = "]["
)

// VolumeFlashTicks is how many frames a volume change stays on screen.
const VolumeFlashTicks = 3

// Device is a two-line text display.
type Device interface {
	// Width is the number of cells per line.
	Width() int

	// Print shows text on line 0 or 1. Text may be wider than the device;
	// devices truncate as they see fit.
	Print(line int, text string)
}

// Printer lays out frames for a Device. It keeps the scroll, blink and
// volume-flash state between frames and is driven from a single loop.
type Printer struct {
	device Device
	match  string

	firstLine  *Scroller
	secondLine *Scroller

	volumeSeen     bool
	previousVolume string
	volumeFlash    int
	blink          int
}

var _ display.Sink = (*Printer)(nil)

// New creates a Printer. match is the renderer filter shown while waiting.
func New(device Device, match string) *Printer {
	return &Printer{
		device:     device,
		match:      match,
		firstLine:  NewScroller(DefaultSeparator),
		secondLine: NewScroller(DefaultSeparator),
	}
}

// Width returns the device width.
func (p *Printer) Width() int {
	return p.device.Width()
}

// NoSessionFrame shows which renderer we are waiting for.
func (p *Printer) NoSessionFrame() {
	name := p.match
	if name == "" {
		name = "any Renderer"
	}
	p.device.Print(0, "Waiting for")
	p.device.Print(1, CenterAlign(name, p.Width()))
}

// ScreensaveFrame blanks the display.
func (p *Printer) ScreensaveFrame() {
	p.device.Print(0, "")
	p.device.Print(1, "")
}

// FarewellFrame shows the shutdown message.
func (p *Printer) FarewellFrame() {
	p.device.Print(0, CenterAlign("Goodbye!", p.Width()))
	p.device.Print(1, CenterAlign("→ ♪♫♪♩ ←", p.Width()))
}

// Frame renders one snapshot.
func (p *Printer) Frame(snap renderer.Snapshot) {
	width := p.Width()

	title := snap.Title
	if snap.Composer != "" {
		title = snap.Composer + ": " + title
	}
	noTitle := title == "" && snap.Album == ""

	if noTitle {
		p.device.Print(0, CenterAlign(snap.FriendlyName, width))
	} else {
		p.firstLine.SetValue(CenterAlign(title, width), width)
		p.device.Print(0, p.firstLine.Content())
		p.firstLine.NextTick()
	}

	switch {
	case snap.Muted:
		p.device.Print(1, CenterAlign("[Muted]", width))
	case p.flashVolume(snap.Volume):
		p.device.Print(1, CenterAlign("Volume "+snap.Volume, width))
	case noTitle:
		p.device.Print(1, CenterAlign(stateLine(snap.PlayState), width))
	default:
		p.device.Print(1, p.progressLine(snap, width))
	}
}

// flashVolume reports whether the volume readout should be shown. The
// first volume seen only sets the baseline.
func (p *Printer) flashVolume(volume string) bool {
	if !p.volumeSeen {
		p.volumeSeen = true
		p.previousVolume = volume
		return false
	}
	if volume != p.previousVolume {
		p.previousVolume = volume
		p.volumeFlash = VolumeFlashTicks
	}
	if p.volumeFlash > 0 {
		p.volumeFlash--
		return true
	}
	return false
}

func stateLine(state string) string {
	switch state {
	case variables.StateStopped:
		return StopSymbol + " [Stopped]"
	case variables.StatePaused:
		return PauseSymbol + " [Paused]"
	case variables.StatePlaying:
		return PlaySymbol + " [Playing]"
	default:
		return state
	}
}

// progressLine builds "<time> <album>/<artist>" with album and artist
// right aligned next to the time.
func (p *Printer) progressLine(snap renderer.Snapshot, width int) string {
	var clock string
	if snap.PlayState == variables.StateStopped {
		clock = "  " + StopSymbol + " "
	} else {
		clock = FormatTime(snap.Position)
		if snap.Duration > 0 {
			clock += "/" + FormatTime(snap.Duration)
		}
		if snap.PlayState == variables.StatePaused && p.blink%2 == 0 {
			clock = Blank(runewidth.StringWidth(clock))
		}
	}
	p.blink++

	remaining := max(width-runewidth.StringWidth(clock)-1, 0)

	text := snap.Album
	var addition string
	if snap.Artist != "" && snap.Artist != snap.Album {
		if text != "" {
			addition = "/"
		}
		addition += snap.Artist
	}
	// Keep the artist when it fits, or when the album has to scroll anyway.
	if runewidth.StringWidth(text+addition) <= remaining || runewidth.StringWidth(text) > remaining {
		text += addition
	}

	p.secondLine.SetValue(RightAlign(text, remaining), remaining)
	line := clock + " " + p.secondLine.Content()
	p.secondLine.NextTick()
	return line
}
