package didl

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned when a metadata payload cannot be parsed.
var ErrMalformed = errors.New("malformed DIDL-Lite metadata")

// Artist roles carried in the upnp:artist role attribute.
const (
	RoleComposer    = "Composer"
	RoleAlbumArtist = "AlbumArtist"
)

// Metadata is the track information found in one DIDL-Lite item.
type Metadata struct {
	Title    string
	Artist   string
	Composer string
	Creator  string
	Album    string
	Genre    string

	// Date is dc:date as sent, usually an ISO-8601 date.
	Date string

	// AlbumArtist is the upnp:artist entry with role AlbumArtist.
	AlbumArtist string
}

type document struct {
	XMLName xml.Name `xml:"DIDL-Lite"`
	Items   []item   `xml:"item"`
}

type item struct {
	Fields []field `xml:",any"`
}

type field struct {
	XMLName xml.Name
	Role    string `xml:"role,attr"`
	Value   string `xml:",chardata"`
}

// Decode parses a DIDL-Lite document. An empty document, as renderers send
// when stopped, and a well-formed document without any item both yield
// empty Metadata and no error.
func Decode(doc string) (Metadata, error) {
	if strings.TrimSpace(doc) == "" {
		return Metadata{}, nil
	}

	var d document
	if err := xml.Unmarshal([]byte(doc), &d); err != nil {
		return Metadata{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(d.Items) == 0 {
		return Metadata{}, nil
	}

	var md Metadata
	for _, f := range d.Items[0].Fields {
		value := strings.TrimSpace(f.Value)
		if value == "" {
			continue
		}
		switch f.XMLName.Local {
		case "title":
			md.Title = value
		case "artist":
			switch f.Role {
			case RoleComposer:
				md.Composer = value
			case RoleAlbumArtist:
				md.AlbumArtist = value
			default:
				md.Artist = value
			}
		case "album":
			md.Album = value
		case "genre":
			md.Genre = value
		case "composer":
			md.Composer = value
		case "creator":
			md.Creator = value
		case "date":
			md.Date = value
		}
	}
	return md, nil
}
