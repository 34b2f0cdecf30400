// Package log provides structured capture of renderer traffic.
//
// This package defines the Logger interface and Event types for recording
// what happened between the display and a renderer: variable events
// received over GENA, actions sent over SOAP, attachment and subscription
// state changes, and errors. It is separate from operational logging
// (slog). A capture is a complete machine-readable trace that can be
// replayed with the upnp-display-log tool.
//
// # Basic Usage
//
//	// For development: mirror events to slog
//	session.SetProtocolLogger(log.NewSlogAdapter(slog.Default()))
//
//	// For field debugging: write a capture file
//	capture, _ := log.NewFileLogger("/var/tmp/display.ulog")
//
//	// Both
//	logger := log.Tee(log.NewSlogAdapter(slog.Default()), capture)
//
// # File Format
//
// Capture files are a stream of CBOR-encoded events with integer keys
// (.ulog extension).
package log
