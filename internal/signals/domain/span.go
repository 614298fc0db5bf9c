package signals

import "time"

// StateSpan is a contiguous interval during which a discrete machine
// signal (OPERATE, ALARM, DISCONNECT, ...) held one boolean value.
// Spans of the same signal never overlap; a span with a zero EndTime is
// the currently active state. DurationSeconds is pre-computed at write
// time and is authoritative for fully enclosed spans.
type StateSpan struct {
	SignalID        string
	MachineName     string
	State           MachineState
	StartTime       time.Time
	EndTime         time.Time
	Asserted        bool
	DurationSeconds float64

	// Superseded marks an open span whose signal already has a later
	// span in storage. Such a span violates the chain invariant and is
	// never clamped to now; the source sets it because the successor
	// may lie outside any fetch window.
	Superseded bool
}

// Open reports whether the span has no end yet.
func (s StateSpan) Open() bool {
	return s.EndTime.IsZero()
}
