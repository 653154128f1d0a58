package fanctrl

import (
	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/curve"
	"github.com/hsadmin/fancontrol/internal/schedule"
)

// Decision is the outcome of mode arbitration for a single tick: the
// effective mode, the governing curve (nil for manual and emergency)
// and whether the duty cycle must be recomputed regardless of
// hysteresis.
type Decision struct {
	Mode Mode

	// Curve governs the duty cycle unless Mode is manual or emergency
	Curve *curve.Curve

	// ManualDuty is the fixed duty cycle applied while Mode is manual
	ManualDuty int

	// ActiveEntryID identifies the governing schedule entry, if any
	ActiveEntryID *int

	// Forced is set when the mode, the governing schedule entry or the
	// fan's configuration changed since the previous decision. Forced
	// decisions bypass the hysteresis gate so user actions take effect
	// immediately.
	Forced bool
}

// Arbiter combines the user-selected mode, the schedule and the
// emergency temperature override into one authoritative decision per
// tick. Each fan owns one Arbiter; it is only ever used by that fan's
// control loop.
type Arbiter struct {
	inEmergency bool

	initialized bool
	lastMode    Mode
	lastEntryId *int
	lastVersion int64
}

func NewArbiter() *Arbiter {
	return &Arbiter{}
}

// InEmergency reports whether the arbiter currently holds the fan in
// emergency mode.
func (a *Arbiter) InEmergency() bool {
	return a.inEmergency
}

// Decide evaluates the effective mode and governing curve for the
// given configuration snapshot, temperature and time of day.
//
// Emergency entry happens at the start of any tick once the
// temperature reaches the configured emergency temperature. Recovery
// requires the temperature to drop below the emergency temperature by
// the fan's hysteresis margin, so the fan does not flap in and out of
// emergency around the threshold.
func (a *Arbiter) Decide(snapshot FanSnapshot, temperature float64, now configuration.TimeOfDay) Decision {
	config := snapshot.Config

	if a.inEmergency {
		if temperature < config.EmergencyTemperature-config.HysteresisDegrees {
			a.inEmergency = false
		}
	} else if temperature >= config.EmergencyTemperature {
		a.inEmergency = true
	}

	decision := Decision{
		ManualDuty: snapshot.ManualDuty,
	}

	if a.inEmergency {
		decision.Mode = ModeEmergency
	} else {
		decision.Mode = snapshot.Mode
		switch snapshot.Mode {
		case ModeManual:
			// no curve, duty is the stored manual value
		case ModeScheduled:
			active := schedule.ResolveActive(snapshot.Entries, now)
			if active != nil {
				activeCurve := active.Curve
				entryId := active.ID
				decision.Curve = &activeCurve
				decision.ActiveEntryID = &entryId
			} else {
				// no entry covers this time of day, behave like auto
				// while still reporting the scheduled mode
				defaultCurve := snapshot.DefaultCurve
				decision.Curve = &defaultCurve
			}
		default:
			defaultCurve := snapshot.DefaultCurve
			decision.Curve = &defaultCurve
		}
	}

	decision.Forced = !a.initialized ||
		decision.Mode != a.lastMode ||
		!sameEntryId(decision.ActiveEntryID, a.lastEntryId) ||
		snapshot.Version != a.lastVersion

	a.initialized = true
	a.lastMode = decision.Mode
	a.lastEntryId = decision.ActiveEntryID
	a.lastVersion = snapshot.Version

	return decision
}

func sameEntryId(a *int, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
