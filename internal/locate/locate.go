// Package locate resolves the device position as a single-shot operation
// with a closed result type, replacing the callback-style permission
// dance the browser version went through. The flow awaits one call and
// branches on the state; where the coordinates come from is invisible to
// it.
package locate

import "context"

// State is the outcome of a location request.
type State int

const (
	// StateGranted means coordinates are available.
	StateGranted State = iota
	// StateDenied means the install refuses to share a position.
	StateDenied
	// StateUnsupported means no position source is configured.
	StateUnsupported
)

// Result is the resolved position. Lat/Lng are meaningful only when
// St is StateGranted.
type Result struct {
	St  State
	Lat float64
	Lng float64
}

// Granted reports whether coordinates are available.
func (r Result) Granted() bool { return r.St == StateGranted }

// Locator resolves the current position once per call.
type Locator interface {
	Current(ctx context.Context) Result
}

// Static always answers with a fixed coordinate pair, typically the
// configured office position of the install.
type Static struct {
	Lat, Lng float64
}

func (s Static) Current(context.Context) Result {
	return Result{St: StateGranted, Lat: s.Lat, Lng: s.Lng}
}

// Unsupported always answers that no position source exists.
type Unsupported struct{}

func (Unsupported) Current(context.Context) Result {
	return Result{St: StateUnsupported}
}

// Denied always refuses. Used by tests and by installs that explicitly
// opt out.
type Denied struct{}

func (Denied) Current(context.Context) Result {
	return Result{St: StateDenied}
}
