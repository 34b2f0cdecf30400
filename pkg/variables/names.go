package variables

// Variables reported by the AVTransport and RenderingControl services.
const (
	TransportState       = "TransportState"
	RelTime              = "RelTime"
	CurrentTrackDuration = "CurrentTrackDuration"
	CurrentTrackMetaData = "CurrentTrackMetaData"
	Volume               = "Volume"
	Mute                 = "Mute"
)

// Variables derived from the DIDL-Lite document in CurrentTrackMetaData.
const (
	MetaTitle    = "Meta_Title"
	MetaArtist   = "Meta_Artist"
	MetaComposer = "Meta_Composer"
	MetaCreator  = "Meta_Creator"
	MetaAlbum    = "Meta_Album"
	MetaGenre    = "Meta_Genre"
	MetaYear     = "Meta_Year"
)

// MetaNames lists every derived metadata variable.
var MetaNames = []string{
	MetaTitle,
	MetaArtist,
	MetaComposer,
	MetaCreator,
	MetaAlbum,
	MetaGenre,
	MetaYear,
}

// Transport states as reported in TransportState.
const (
	StatePlaying = "PLAYING"
	StatePaused  = "PAUSED_PLAYBACK"
	StateStopped = "STOPPED"
)
