package renderer

import (
	"github.com/upnp-display/upnp-display-go/pkg/didl"
	"github.com/upnp-display/upnp-display-go/pkg/log"
	"github.com/upnp-display/upnp-display-go/pkg/variables"
)

// isoDateLen is the length of a plain ISO-8601 date, "2006-01-02".
const isoDateLen = 10

// ApplyEvent applies one batch of evented variables. A CurrentTrackMetaData
// entry is decoded and the resulting Meta_* variables are applied in the
// same batch. The last event time is updated once the batch is visible.
//
// Malformed metadata never fails the event; the Meta_* variables are reset
// to empty and the problem is logged.
func (s *Session) ApplyEvent(batch variables.Batch) {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	if s.Closed() {
		return
	}

	s.mu.RLock()
	decode := s.decode
	s.mu.RUnlock()

	out := make(variables.Batch, 0, len(batch)+len(variables.MetaNames))
	metadataReset := false
	for _, p := range batch {
		out = append(out, p)
		if p.Name != variables.CurrentTrackMetaData {
			continue
		}
		md, err := decode(p.Value)
		if err != nil {
			s.log().Warn("resetting track metadata",
				"rendererID", s.id,
				"error", err)
			md = didl.Metadata{}
			metadataReset = true
		}
		out = append(out, metadataBatch(md)...)
	}

	s.vars.ApplyBatch(out)

	now := s.clock()
	s.mu.Lock()
	s.lastEventUpdate = now
	s.mu.Unlock()

	s.capture(log.Event{
		Direction: log.DirectionIn,
		Layer:     log.LayerSession,
		Category:  log.CategoryEvent,
		Variables: &log.VariablesEvent{
			Variables:     out.Map(),
			MetadataReset: metadataReset,
		},
	})
}

// metadataBatch converts decoded metadata into Meta_* updates. Every
// Meta_* variable is present so fields missing from the new track clear
// the previous track's values.
func metadataBatch(md didl.Metadata) variables.Batch {
	artist := md.Artist
	if artist == "" {
		artist = md.AlbumArtist
	}

	return variables.Batch{
		{Name: variables.MetaTitle, Value: md.Title},
		{Name: variables.MetaArtist, Value: artist},
		{Name: variables.MetaComposer, Value: md.Composer},
		{Name: variables.MetaCreator, Value: md.Creator},
		{Name: variables.MetaAlbum, Value: md.Album},
		{Name: variables.MetaGenre, Value: md.Genre},
		{Name: variables.MetaYear, Value: normalizeYear(md.Date)},
	}
}

// normalizeYear shortens a full ISO-8601 date to its year.
func normalizeYear(date string) string {
	if len(date) == isoDateLen {
		return date[:4]
	}
	return date
}
