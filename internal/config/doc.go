// Package config holds the runtime configuration of upnp-display.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// UPNP_DISPLAY_* environment variables. Command line flags are applied on
// top by the caller, which then calls Validate.
package config
