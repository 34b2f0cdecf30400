package printer

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Console is a Device writing to a terminal or a plain stream.
//
// On a terminal both lines are redrawn in place. Otherwise every changed
// line is written as "[n]text". Unchanged lines are not written again.
type Console struct {
	mu sync.Mutex

	w     io.Writer
	width int
	tty   bool

	lines   [2]string
	printed [2]bool
	drawn   bool
}

// NewConsole creates a console device of the given width.
func NewConsole(w io.Writer, width int) *Console {
	return &Console{
		w:     w,
		width: width,
		tty:   isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetRedraw turns in-place redrawing on or off. It defaults to on when the
// writer is a terminal.
func (c *Console) SetRedraw(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tty = on
}

// Width returns the configured width.
func (c *Console) Width() int {
	return c.width
}

// Print shows text on the given line.
func (c *Console) Print(line int, text string) {
	if line < 0 || line > 1 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.printed[line] && c.lines[line] == text {
		return
	}
	c.lines[line] = text
	c.printed[line] = true

	if !c.tty {
		fmt.Fprintf(c.w, "[%d]%s\n", line, text)
		return
	}

	if c.drawn {
		// Move to the start of the first line.
		fmt.Fprint(c.w, "\x1b[2F")
	}
	fmt.Fprintf(c.w, "\x1b[2K%s\n\x1b[2K%s\n", c.lines[0], c.lines[1])
	c.drawn = true
}

// Lines returns the text last printed on each line.
func (c *Console) Lines() [2]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lines
}
