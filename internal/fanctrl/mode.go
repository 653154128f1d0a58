package fanctrl

import (
	"encoding/json"
	"fmt"
)

// Mode is the control mode of a single fan.
type Mode int

const (
	// ModeAuto drives the fan along its default curve
	ModeAuto Mode = iota
	// ModeManual drives the fan at a fixed, user-chosen duty cycle
	ModeManual
	// ModeScheduled drives the fan along the curve of the currently
	// active schedule entry, falling back to the default curve when
	// no entry is active
	ModeScheduled
	// ModeEmergency forces the fan to its maximum duty cycle. It is
	// entered automatically when the sensor temperature reaches the
	// configured emergency temperature and cannot be requested by users.
	ModeEmergency
)

func (m Mode) String() string {
	switch m {
	case ModeAuto:
		return "auto"
	case ModeManual:
		return "manual"
	case ModeScheduled:
		return "scheduled"
	case ModeEmergency:
		return "emergency"
	}
	return fmt.Sprintf("unknown(%d)", int(m))
}

// ParseMode parses a mode name. Only user-selectable modes are
// accepted; "emergency" is entered automatically and cannot be set.
func ParseMode(value string) (Mode, error) {
	switch value {
	case "auto":
		return ModeAuto, nil
	case "manual":
		return ModeManual, nil
	case "scheduled":
		return ModeScheduled, nil
	}
	return ModeAuto, fmt.Errorf("unknown mode: %s, must be one of: 'auto', 'manual', 'scheduled'", value)
}

func (m Mode) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *Mode) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	parsed, err := ParseMode(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
