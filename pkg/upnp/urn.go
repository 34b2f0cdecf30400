package upnp

import "strings"

// Device and service types.
const (
	DeviceTypeMediaRenderer = "urn:schemas-upnp-org:device:MediaRenderer:1"

	// Service type prefixes; any version matches.
	ServicePrefixAVTransport      = "urn:schemas-upnp-org:service:AVTransport:"
	ServicePrefixRenderingControl = "urn:schemas-upnp-org:service:RenderingControl:"
)

// isEventChannel reports whether a service type publishes variables the
// display uses.
func isEventChannel(serviceType string) bool {
	return strings.HasPrefix(serviceType, ServicePrefixAVTransport) ||
		strings.HasPrefix(serviceType, ServicePrefixRenderingControl)
}
