package didl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trackDoc = `<DIDL-Lite xmlns="urn:schemas-upnp-org:metadata-1-0/DIDL-Lite/"
    xmlns:dc="http://purl.org/dc/elements/1.1/"
    xmlns:upnp="urn:schemas-upnp-org:metadata-1-0/upnp/">
  <item id="1" parentID="0" restricted="1">
    <dc:title>Bohemian Rhapsody</dc:title>
    <upnp:artist role="AlbumArtist">Queen</upnp:artist>
    <upnp:artist role="Composer">Freddie Mercury</upnp:artist>
    <upnp:album>A Night at the Opera</upnp:album>
    <upnp:genre>Rock</upnp:genre>
    <dc:creator>Queen</dc:creator>
    <dc:date>1975-10-31</dc:date>
    <upnp:class>object.item.audioItem.musicTrack</upnp:class>
  </item>
  <item id="2"><dc:title>Ignored</dc:title></item>
</DIDL-Lite>`

func TestDecodeTrack(t *testing.T) {
	md, err := Decode(trackDoc)
	require.NoError(t, err)

	assert.Equal(t, "Bohemian Rhapsody", md.Title)
	assert.Equal(t, "", md.Artist)
	assert.Equal(t, "Queen", md.AlbumArtist)
	assert.Equal(t, "Freddie Mercury", md.Composer)
	assert.Equal(t, "A Night at the Opera", md.Album)
	assert.Equal(t, "Rock", md.Genre)
	assert.Equal(t, "Queen", md.Creator)
	assert.Equal(t, "1975-10-31", md.Date)
}

func TestDecodePlainArtist(t *testing.T) {
	doc := `<DIDL-Lite><item><upnp:artist xmlns:upnp="urn:x">Freddie</upnp:artist>` +
		`<upnp:composer xmlns:upnp="urn:x">Brian</upnp:composer></item></DIDL-Lite>`

	md, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, "Freddie", md.Artist)
	assert.Equal(t, "Brian", md.Composer)
}

func TestDecodeNoItem(t *testing.T) {
	for _, doc := range []string{`<DIDL-Lite></DIDL-Lite>`, "", "  \n"} {
		md, err := Decode(doc)
		require.NoError(t, err, "Decode(%q)", doc)
		assert.Equal(t, Metadata{}, md, "Decode(%q)", doc)
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not implemented", "NOT_IMPLEMENTED"},
		{"truncated", "<DIDL-Lite><item><dc:title>x"},
		{"wrong root", "<foo/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.doc)
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("Decode(%q) error = %v, want ErrMalformed", tt.doc, err)
			}
		})
	}
}
