// Package subscription routes inbound GENA events to renderer sessions.
//
// Each renderer session subscribes to one or more event channels
// (AVTransport, RenderingControl). The renderer answers every subscription
// with an opaque SID, and later NOTIFY requests carry only that SID. The
// Registry maps SIDs back to the session that owns them.
//
// # Ownership
//
// The registry does not keep sessions alive. Entries hold weak references,
// and a session removes its own SIDs when it is torn down. An SID whose
// session has already been collected resolves as not found.
//
// # Early events
//
// A renderer may send its first NOTIFY, which carries its full state,
// before the SUBSCRIBE response has been processed and the SID inserted.
// Defer holds such a delivery for a short time and runs it when the SID is
// inserted.
//
// # Concurrency
//
// Insert, Remove, Resolve and Defer are safe to call concurrently from event
// delivery goroutines and from session lifecycle code.
package subscription
