package printer

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

// FormatTime formats seconds as m:ss, or h"h"mm:ss when there are hours.
// Negative values get a leading minus sign.
func FormatTime(seconds int) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}

	hours := seconds / 3600
	minutes := seconds % 3600 / 60
	secs := seconds % 60

	if hours > 0 {
		return fmt.Sprintf("%s%dh%02d:%02d", sign, hours, minutes, secs)
	}
	return fmt.Sprintf("%s%d:%02d", sign, minutes, secs)
}

// CenterAlign left-pads text so that it is centred in width cells. Text
// that does not fit is returned unchanged.
func CenterAlign(text string, width int) string {
	n := runewidth.StringWidth(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}

// RightAlign left-pads text to width cells.
func RightAlign(text string, width int) string {
	n := runewidth.StringWidth(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", width-n) + text
}

// Blank returns width spaces.
func Blank(width int) string {
	if width <= 0 {
		return ""
	}
	return strings.Repeat(" ", width)
}
