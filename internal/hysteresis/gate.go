package hysteresis

import "math"

// Gate suppresses duty cycle recomputation for small temperature deltas
// to avoid fan speed oscillation near curve breakpoints.
//
// The gate measures drift from the last accepted reading, not the last
// observed one: many consecutive small rejected deltas in the same
// direction accumulate and eventually trigger a recompute once the
// cumulative drift exceeds the threshold.
type Gate struct {
	lastAccepted float64
	primed       bool
}

func NewGate() *Gate {
	return &Gate{}
}

// ShouldRecompute reports whether the duty cycle should be recomputed
// for the given temperature. A forced check (mode transition, schedule
// entry switch, manual duty or curve change) always passes.
func (g *Gate) ShouldRecompute(temperature float64, hysteresisDegrees float64, forced bool) bool {
	if forced {
		return true
	}
	if !g.primed {
		return true
	}
	return math.Abs(temperature-g.lastAccepted) >= hysteresisDegrees
}

// Accept records the given temperature as the last accepted reading.
// Callers invoke it after a recompute took effect; rejected readings
// leave the reference point untouched.
func (g *Gate) Accept(temperature float64) {
	g.lastAccepted = temperature
	g.primed = true
}

// LastAccepted returns the temperature of the last accepted reading.
func (g *Gate) LastAccepted() float64 {
	return g.lastAccepted
}
