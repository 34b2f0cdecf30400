package renderer

import (
	"strconv"
	"strings"

	"github.com/upnp-display/upnp-display-go/pkg/variables"
)

// Snapshot is a consistent, value-copy view of one render pass.
type Snapshot struct {
	FriendlyName string
	Title        string
	Composer     string
	Artist       string
	Album        string

	// PlayState is the raw TransportState value.
	PlayState string

	// Position and Duration are in seconds.
	Position int
	Duration int

	Volume string
	Muted  bool
}

var snapshotFields = []string{
	variables.MetaTitle,
	variables.MetaComposer,
	variables.MetaArtist,
	variables.MetaCreator,
	variables.MetaAlbum,
	variables.TransportState,
	variables.RelTime,
	variables.CurrentTrackDuration,
	variables.Volume,
	variables.Mute,
}

// Snapshot reads the display fields as of one instant.
func (s *Session) Snapshot() Snapshot {
	v := s.vars.SnapshotFields(snapshotFields...)
	title, composer, artist, creator, album := v[0], v[1], v[2], v[3], v[4]

	// Classical tracks often carry the composer in both places and the
	// performer only as creator.
	if artist == composer && creator != "" && creator != artist {
		artist = creator
	}

	return Snapshot{
		FriendlyName: s.FriendlyName(),
		Title:        title,
		Composer:     composer,
		Artist:       artist,
		Album:        album,
		PlayState:    v[5],
		Position:     ParseTime(v[6]),
		Duration:     ParseTime(v[7]),
		Volume:       v[8],
		Muted:        isTrue(v[9]),
	}
}

// ParseTime converts "h:mm:ss" (optionally with a fractional part) to
// seconds. Values that are not in that form, such as "NOT_IMPLEMENTED",
// yield 0.
func ParseTime(value string) int {
	value = strings.TrimSpace(value)
	if i := strings.IndexByte(value, '.'); i >= 0 {
		value = value[:i]
	}

	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0
	}

	negative := strings.HasPrefix(parts[0], "-")
	parts[0] = strings.TrimPrefix(parts[0], "-")

	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	if negative {
		return -total
	}
	return total
}

func isTrue(value string) bool {
	return value == "1" || strings.EqualFold(value, "true")
}
