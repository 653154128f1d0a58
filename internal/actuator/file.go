package actuator

import (
	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/util"
)

// FileActuator writes the duty cycle percentage to a plain file,
// for fans driven by an external helper watching that file.
type FileActuator struct {
	Config configuration.FanConfig `json:"configuration"`
}

func (a *FileActuator) GetId() string {
	return a.Config.ID
}

func (a *FileActuator) GetConfig() configuration.FanConfig {
	return a.Config
}

func (a *FileActuator) GetDuty() (int, error) {
	return util.ReadIntFromFile(a.Config.File.Path)
}

func (a *FileActuator) SetDuty(duty int) error {
	// atomic write, so watchers never observe a half-written value
	return util.WriteIntToFileAtomic(duty, a.Config.File.Path)
}
