package sensors

import (
	"sync"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/util"
)

type HwmonSensor struct {
	Label string `json:"label"`
	Index int    `json:"index"`
	Input string `json:"string"`

	Config configuration.SensorConfig `json:"configuration"`

	MovingAvg float64 `json:"movingAvg"`

	mu sync.Mutex
}

func (sensor *HwmonSensor) GetId() string {
	return sensor.Config.ID
}

func (sensor *HwmonSensor) GetConfig() configuration.SensorConfig {
	return sensor.Config
}

func (sensor *HwmonSensor) GetValue() (result float64, err error) {
	// hwmon temp inputs are milli-degrees
	integer, err := util.ReadIntFromFile(sensor.Input)
	if err != nil {
		return 0, err
	}
	return float64(integer) / 1000.0, nil
}

func (sensor *HwmonSensor) GetMovingAvg() (avg float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	return sensor.MovingAvg
}

func (sensor *HwmonSensor) SetMovingAvg(avg float64) {
	sensor.mu.Lock()
	defer sensor.mu.Unlock()
	sensor.MovingAvg = avg
}
