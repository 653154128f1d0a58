package actuator

import (
	"fmt"

	"github.com/hsadmin/fancontrol/internal/configuration"
)

// Actuator drives the physical PWM output of a single fan.
// Duty cycles are percentages in [0, 100]; backends convert to their
// native range where necessary.
type Actuator interface {
	GetId() string

	GetConfig() configuration.FanConfig

	// GetDuty returns the duty cycle currently applied to the fan
	GetDuty() (int, error)

	// SetDuty applies the given duty cycle percentage to the fan
	SetDuty(duty int) error
}

func NewActuator(config configuration.FanConfig) (Actuator, error) {
	if config.HwMon != nil {
		return &HwMonActuator{
			Config: config,
		}, nil
	}

	if config.File != nil {
		return &FileActuator{
			Config: config,
		}, nil
	}

	if config.Cmd != nil {
		return &CmdActuator{
			Config: config,
		}, nil
	}

	return nil, fmt.Errorf("no matching actuator type for fan: %s", config.ID)
}
