// Package upnp connects renderer sessions to UPnP devices on the network.
//
// Discovery uses SSDP through goupnp and looks for MediaRenderer devices.
// Each renderer gets a Client, which implements renderer.Transport: it
// subscribes to the AVTransport and RenderingControl event channels with
// GENA and invokes AVTransport actions over SOAP.
//
// Event notifications arrive at the Listener, an HTTP server that accepts
// NOTIFY requests, resolves the SID in the subscription registry and hands
// the decoded LastChange variables to the owning session.
//
// The Tracker ties it together: it repeats discovery, creates and
// subscribes sessions for new renderers, offers them to the display, and
// tears down renderers that stop answering.
//
// Only the first InstanceID of a LastChange document is read; renderers
// exposing several AVTransport instances are not supported.
package upnp
