package upnp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/huin/goupnp"
)

// Device is a renderer found on the network.
type Device struct {
	// ID is the device UDN, "uuid:...".
	ID           string
	FriendlyName string

	// Location is the URL of the device description.
	Location *url.URL

	// Root is the parsed device description.
	Root *goupnp.RootDevice
}

// EventURLs returns the event subscription URL of every AVTransport and
// RenderingControl service, keyed by service type, plus the service types
// in description order.
func (d Device) EventURLs() ([]string, map[string]string) {
	if d.Root == nil {
		return nil, nil
	}

	var channels []string
	urls := make(map[string]string)
	d.Root.Device.VisitServices(func(s *goupnp.Service) {
		if !isEventChannel(s.ServiceType) {
			return
		}
		if _, dup := urls[s.ServiceType]; dup {
			return
		}
		u := s.EventSubURL.URL
		if u.Host == "" && d.Location != nil {
			ref, err := url.Parse(s.EventSubURL.Str)
			if err != nil {
				return
			}
			u = *d.Location.ResolveReference(ref)
		}
		channels = append(channels, s.ServiceType)
		urls[s.ServiceType] = u.String()
	})
	return channels, urls
}

// Discover searches for MediaRenderer devices. Devices whose description
// cannot be loaded are skipped.
func Discover(ctx context.Context, logger *slog.Logger) ([]Device, error) {
	if logger == nil {
		logger = slog.Default()
	}

	found, err := goupnp.DiscoverDevicesCtx(ctx, DeviceTypeMediaRenderer)
	if err != nil {
		return nil, fmt.Errorf("discover renderers: %w", err)
	}

	seen := make(map[string]bool)
	devices := make([]Device, 0, len(found))
	for _, m := range found {
		if m.Err != nil {
			logger.Debug("skipping renderer", "usn", m.USN, "error", m.Err)
			continue
		}
		udn := m.Root.Device.UDN
		if seen[udn] {
			continue
		}
		seen[udn] = true

		devices = append(devices, Device{
			ID:           udn,
			FriendlyName: m.Root.Device.FriendlyName,
			Location:     m.Location,
			Root:         m.Root,
		})
	}
	return devices, nil
}
