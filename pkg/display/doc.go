// Package display drives a two-line display from the attached renderer.
//
// The Controller holds at most one attached session. Discovery offers
// candidates with AttachCandidate and withdraws them with DetachCandidate;
// the first candidate matching the configured filter wins and later
// candidates are ignored until it is detached.
//
// Loop renders one frame per tick:
//
//	no session attached       -> Sink.NoSessionFrame
//	no event for > timeout    -> Sink.ScreensaveFrame
//	otherwise                 -> RequestPositionRefresh, then Sink.Frame
//
// and Sink.FarewellFrame exactly once when its context is cancelled.
//
// The controller lock guards only the attachment reference. It is released
// before the loop calls into a session, so a slow position query never
// blocks attach or detach, and the controller and session locks are never
// nested.
package display
