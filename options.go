package acpikit

import (
	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/host"
	"github.com/acpikit/acpikit/ns"
)

// Option configures a Subsystem.
type Option func(*Subsystem)

// WithHost sets the host services the subsystem runs on. The default host
// is not backed by real hardware; embedders with platform firmware supply
// their own.
func WithHost(h host.Services) Option {
	return func(s *Subsystem) {
		if h != nil {
			s.host = h
		}
	}
}

// WithLogger sets the logger for subsystem diagnostics. The default
// discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Subsystem) {
		s.log = log
	}
}

// WithStateCacheDepth bounds how many released state records the state
// cache keeps for reuse.
func WithStateCacheDepth(depth int) Option {
	return func(s *Subsystem) {
		s.stateCacheDepth = depth
	}
}

// WithWalkCacheDepth bounds how many released walk-states the walk-state
// cache keeps for reuse.
func WithWalkCacheDepth(depth int) Option {
	return func(s *Subsystem) {
		s.walkCacheDepth = depth
	}
}

// WithDeviceHandlers sets the callbacks InitializeObjects runs against the
// namespace: device status and init, and per-region setup.
func WithDeviceHandlers(h ns.DeviceHandlers) Option {
	return func(s *Subsystem) {
		s.handlers = h
	}
}

// InitOptions selects which optional steps Enable and InitializeObjects
// run. The zero value runs everything.
type InitOptions struct {
	// NoHardwareEnable skips the transition into ACPI mode. Platforms that
	// boot already in ACPI mode, or that have no firmware at all, set this.
	NoHardwareEnable bool

	// NoFACSInit skips mapping the firmware control structure.
	NoFACSInit bool

	// NoEventInit skips initializing the fixed and general purpose event
	// counters.
	NoEventInit bool

	// NoHandlerInit skips marking the event dispatch path live.
	NoHandlerInit bool

	// NoDeviceInit skips the device status and init pass over the
	// namespace.
	NoDeviceInit bool

	// NoAddressSpaceInit skips region setup and address range tracking.
	NoAddressSpaceInit bool

	// NoObjectInit skips the final attached-object pass.
	NoObjectInit bool
}
