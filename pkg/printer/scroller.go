package printer

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DefaultSeparator is placed between the end of scrolling text and its
// repeated start.
const DefaultSeparator = "  -  "

// Scroller shows a window of a text that may be wider than its line.
// Text that fits is shown as is; wider text rotates left by one rune per
// NextTick.
type Scroller struct {
	separator string

	value  string
	width  int
	offset int
}

// NewScroller creates a scroller using separator between repetitions.
func NewScroller(separator string) *Scroller {
	return &Scroller{separator: separator}
}

// SetValue sets the text and the window width. Changing either restarts
// the scroll position.
func (s *Scroller) SetValue(text string, width int) {
	if text == s.value && width == s.width {
		return
	}
	s.value = text
	s.width = width
	s.offset = 0
}

func (s *Scroller) scrolling() bool {
	return s.width > 0 && runewidth.StringWidth(s.value) > s.width
}

// Content returns the visible window.
func (s *Scroller) Content() string {
	if s.width <= 0 {
		return ""
	}
	if !s.scrolling() {
		return s.value
	}

	loop := []rune(s.value + s.separator)
	var b strings.Builder
	used := 0
	for i := 0; i < len(loop); i++ {
		r := loop[(s.offset+i)%len(loop)]
		w := runewidth.RuneWidth(r)
		if used+w > s.width {
			break
		}
		b.WriteRune(r)
		used += w
	}
	// A wide rune that did not fit leaves a gap.
	b.WriteString(Blank(s.width - used))
	return b.String()
}

// NextTick advances the window by one rune.
func (s *Scroller) NextTick() {
	if !s.scrolling() {
		return
	}
	s.offset = (s.offset + 1) % len([]rune(s.value+s.separator))
}
