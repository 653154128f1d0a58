package actuator

import (
	"math"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/util"
)

const maxRawPwm = 255

type HwMonActuator struct {
	Config configuration.FanConfig `json:"configuration"`
}

func (a *HwMonActuator) GetId() string {
	return a.Config.ID
}

func (a *HwMonActuator) GetConfig() configuration.FanConfig {
	return a.Config
}

func (a *HwMonActuator) GetDuty() (int, error) {
	raw, err := util.ReadIntFromFile(a.Config.HwMon.PwmOutput)
	if err != nil {
		return 0, err
	}
	return rawToPercent(raw), nil
}

func (a *HwMonActuator) SetDuty(duty int) error {
	return util.WriteIntToFile(percentToRaw(duty), a.Config.HwMon.PwmOutput)
}

// hwmon pwm outputs use the raw range [0, 255]

func percentToRaw(percent int) int {
	return int(math.Round(float64(percent) / 100.0 * maxRawPwm))
}

func rawToPercent(raw int) int {
	return int(math.Round(float64(raw) / maxRawPwm * 100.0))
}
