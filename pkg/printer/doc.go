// Package printer lays out renderer snapshots as two lines of text.
//
// A Printer implements display.Sink on top of a Device, which only knows
// how to put a line of text on screen. Line 0 carries "<composer>: <title>"
// or, when there is nothing to show, the renderer's friendly name. Line 1
// carries, in order of precedence, the mute indicator, a short volume
// flash after a volume change, a transport-state glyph when no title is
// known, or "<elapsed>/<duration> <album>/<artist>".
//
// Text wider than the display scrolls one cell per frame. All widths are
// measured in terminal cells, so East Asian wide characters and the
// transport glyphs are accounted for.
package printer
