// Package variables holds the renderer state variables reported by UPnP
// eventing.
//
// A Store maps variable names (TransportState, RelTime, Meta_Title, ...) to
// their last reported string value. Absent variables read as the empty
// string. Writes arrive as a Batch, and a batch is applied atomically with
// respect to readers: a reader never observes half of a batch.
package variables
