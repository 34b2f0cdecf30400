// Package renderer tracks the state of one UPnP media renderer.
//
// A Session owns the renderer's variable store and is fed by two paths:
//
//   - Event delivery: the transport resolves a GENA SID through the
//     subscription registry and calls ApplyEvent with the decoded
//     LastChange variables.
//   - Position refresh: the display loop calls RequestPositionRefresh,
//     which queries GetPositionInfo while the renderer is playing.
//
// # Metadata Policy
//
// CurrentTrackMetaData is decoded into Meta_* variables in the same atomic
// batch as the raw variables. A payload that fails to decode clears every
// Meta_* variable: unknown metadata reads as empty, never as the previous
// track's. An empty artist falls back to the album artist, and a 10
// character ISO-8601 date is shortened to its year.
//
// # Locking
//
// A session has two locks. The store lock guards only the variable map. The
// session lock guards identity, subscription bookkeeping and the last event
// time. Neither is held while calling the transport, and callers such as
// the display controller must never call into a session while holding
// their own lock.
package renderer
