package actuator

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/util"
)

type CmdActuator struct {
	Config configuration.FanConfig `json:"configuration"`
}

func (a *CmdActuator) GetId() string {
	return a.Config.ID
}

func (a *CmdActuator) GetConfig() configuration.FanConfig {
	return a.Config
}

func (a *CmdActuator) GetDuty() (int, error) {
	timeout := 2 * time.Second
	conf := a.Config.Cmd.GetDuty
	result, err := util.SafeCmdExecution(conf.Exec, conf.Args, timeout)
	if err != nil {
		return 0, fmt.Errorf("fan %s: %s", a.GetId(), err.Error())
	}

	duty, err := strconv.Atoi(result)
	if err != nil {
		return 0, fmt.Errorf("fan %s: unable to parse command output %q", a.GetId(), result)
	}
	return duty, nil
}

func (a *CmdActuator) SetDuty(duty int) error {
	timeout := 2 * time.Second
	conf := a.Config.Cmd.SetDuty

	args := append([]string{}, conf.Args...)
	args = append(args, strconv.Itoa(duty))

	_, err := util.SafeCmdExecution(conf.Exec, args, timeout)
	if err != nil {
		return fmt.Errorf("fan %s: %s", a.GetId(), err.Error())
	}
	return nil
}
