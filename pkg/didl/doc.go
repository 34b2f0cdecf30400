// Package didl decodes the DIDL-Lite documents renderers publish in
// CurrentTrackMetaData.
//
// Only the first item of a document is read. Fields are matched by element
// local name, so documents that bind the dc and upnp prefixes to unusual
// namespaces still decode.
package didl
