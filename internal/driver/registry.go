package driver

// Registry holds the drivers in detection order plus a name index.
// Ordering is an explicit contract: the multiplexer comes first (a tmux
// session nested in any emulator is controlled at the tmux level), the
// terminal emulators follow (their detection signals are mutually
// exclusive in practice), and the catch-all fallback closes the list so
// live detection always terminates.
type Registry struct {
	ordered []Driver
	byName  map[string]Driver
}

// NewRegistry constructs the standard driver set.
func NewRegistry(t Timeouts) *Registry {
	ordered := []Driver{
		newTmuxDriver(t),
		newITermDriver(t),
		newAppleTerminalDriver(t),
		newKittyDriver(t),
		newWeztermDriver(t),
		newAlacrittyDriver(t),
		newKonsoleDriver(t),
		&fallbackDriver{},
	}

	byName := make(map[string]Driver, len(ordered)+1)
	for _, d := range ordered {
		byName[d.Name()] = d
	}
	// Not part of live detection, but sessions it opened must resolve by name
	be := &bestEffortDriver{}
	byName[be.Name()] = be

	return &Registry{ordered: ordered, byName: byName}
}

// DetectActive returns the first driver whose Detect() is true. The
// fallback driver's unconditional true guarantees a result.
func (r *Registry) DetectActive() Driver {
	for _, d := range r.ordered {
		if d.Detect() {
			return d
		}
	}
	// Unreachable with the standard set; kept for custom registries
	return &fallbackDriver{}
}

// Lookup resolves a driver by the name recorded in a session, typically
// in a different process invocation than the one that detected it.
// Unknown names are reported, not errors: the caller falls back to a
// PID kill.
func (r *Registry) Lookup(name string) (Driver, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Drivers returns the detection-ordered driver list.
func (r *Registry) Drivers() []Driver {
	return r.ordered
}

// Fallback returns the catch-all driver.
func (r *Registry) Fallback() Driver {
	return r.byName["fallback"]
}
