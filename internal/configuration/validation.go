package configuration

import (
	"fmt"

	"github.com/hsadmin/fancontrol/internal/curve"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/hsadmin/fancontrol/internal/util"
	"golang.org/x/exp/slices"
)

// MaxScheduleEntries is the maximum number of schedule entries a single fan may own.
const MaxScheduleEntries = 8

func Validate(configPath string) error {
	return validateConfig(&CurrentConfig, configPath)
}

func validateConfig(config *Configuration, path string) error {
	err := validateSensors(config)
	if err != nil {
		return err
	}
	err = validateFans(config)
	if err != nil {
		return err
	}

	if containsCmdBackends(config) {
		if _, err := util.CheckFilePermissionsForExecution(path); err != nil {
			return fmt.Errorf("config file '%s' has invalid permissions: %s", path, err)
		}
	}

	return nil
}

func validateSensors(config *Configuration) error {
	for _, sensorConfig := range config.Sensors {
		subConfigs := 0
		if sensorConfig.HwMon != nil {
			subConfigs++
		}
		if sensorConfig.File != nil {
			subConfigs++
		}
		if sensorConfig.Cmd != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return fmt.Errorf("sensor %s: only one sensor type can be used per sensor definition block", sensorConfig.ID)
		}
		if subConfigs <= 0 {
			return fmt.Errorf("sensor %s: sub-configuration for sensor is missing, use one of: hwmon | file | cmd", sensorConfig.ID)
		}

		if !isSensorConfigInUse(sensorConfig, config.Fans) {
			ui.Warning("Unused sensor configuration: %s", sensorConfig.ID)
		}

		if sensorConfig.HwMon != nil {
			if sensorConfig.HwMon.Index <= 0 {
				return fmt.Errorf("sensor %s: invalid index, must be >= 1", sensorConfig.ID)
			}
		}
	}

	return nil
}

func isSensorConfigInUse(config SensorConfig, fans []FanConfig) bool {
	for _, fanConfig := range fans {
		if fanConfig.Sensor == config.ID {
			return true
		}
	}
	return false
}

func validateFans(config *Configuration) error {
	var seenIds []string
	for _, fanConfig := range config.Fans {
		if slices.Contains(seenIds, fanConfig.ID) {
			return fmt.Errorf("fan %s: duplicate fan id", fanConfig.ID)
		}
		seenIds = append(seenIds, fanConfig.ID)

		subConfigs := 0
		if fanConfig.HwMon != nil {
			subConfigs++
		}
		if fanConfig.File != nil {
			subConfigs++
		}
		if fanConfig.Cmd != nil {
			subConfigs++
		}
		if subConfigs > 1 {
			return fmt.Errorf("fan %s: only one fan type can be used per fan definition block", fanConfig.ID)
		}
		if subConfigs <= 0 {
			return fmt.Errorf("fan %s: sub-configuration for fan is missing, use one of: hwmon | file | cmd", fanConfig.ID)
		}

		if fanConfig.MinDuty < 0 || fanConfig.MaxDuty > 100 || fanConfig.MinDuty >= fanConfig.MaxDuty {
			return fmt.Errorf("fan %s: invalid duty range [%d, %d]", fanConfig.ID, fanConfig.MinDuty, fanConfig.MaxDuty)
		}

		if fanConfig.EmergencyTemperature <= 0 {
			return fmt.Errorf("fan %s: emergencyTemperature must be > 0", fanConfig.ID)
		}

		if fanConfig.HysteresisDegrees < 0 {
			return fmt.Errorf("fan %s: hysteresisDegrees must be >= 0", fanConfig.ID)
		}

		if len(fanConfig.Sensor) <= 0 {
			return fmt.Errorf("fan %s: missing sensor reference in configuration entry", fanConfig.ID)
		}
		if !sensorIdExists(fanConfig.Sensor, config) {
			return fmt.Errorf("fan %s: no sensor definition with id '%s' found", fanConfig.ID, fanConfig.Sensor)
		}

		if err := validateCurvePoints(fanConfig.DefaultCurve, fanConfig); err != nil {
			return fmt.Errorf("fan %s: invalid default curve: %s", fanConfig.ID, err)
		}

		if err := validateSchedule(fanConfig); err != nil {
			return err
		}

		if fanConfig.HwMon != nil {
			if fanConfig.HwMon.Index <= 0 {
				return fmt.Errorf("fan %s: invalid index, must be >= 1", fanConfig.ID)
			}
		}

		if fanConfig.File != nil {
			if len(fanConfig.File.Path) <= 0 {
				return fmt.Errorf("fan %s: no file path provided", fanConfig.ID)
			}
		}

		if fanConfig.Cmd != nil {
			cmdConfig := fanConfig.Cmd
			if cmdConfig.SetDuty == nil || len(cmdConfig.SetDuty.Exec) <= 0 {
				return fmt.Errorf("fan %s: missing setDuty configuration", fanConfig.ID)
			}
			if cmdConfig.GetDuty == nil || len(cmdConfig.GetDuty.Exec) <= 0 {
				return fmt.Errorf("fan %s: missing getDuty configuration", fanConfig.ID)
			}
		}
	}

	return nil
}

func validateSchedule(fanConfig FanConfig) error {
	if len(fanConfig.Schedule) > MaxScheduleEntries {
		return fmt.Errorf("fan %s: at most %d schedule entries are allowed, got %d", fanConfig.ID, MaxScheduleEntries, len(fanConfig.Schedule))
	}

	var seenIds []int
	for _, entryConfig := range fanConfig.Schedule {
		if slices.Contains(seenIds, entryConfig.ID) {
			return fmt.Errorf("fan %s: duplicate schedule entry id %d", fanConfig.ID, entryConfig.ID)
		}
		seenIds = append(seenIds, entryConfig.ID)

		if err := validateCurvePoints(entryConfig.Curve, fanConfig); err != nil {
			return fmt.Errorf("fan %s: invalid curve for schedule entry %d: %s", fanConfig.ID, entryConfig.ID, err)
		}
	}

	return nil
}

func validateCurvePoints(points []CurvePointConfig, fanConfig FanConfig) error {
	_, err := curve.New(CurvePoints(points), fanConfig.MinDuty, fanConfig.MaxDuty)
	return err
}

// CurvePoints converts configuration curve points into curve.Point values.
func CurvePoints(points []CurvePointConfig) []curve.Point {
	result := make([]curve.Point, 0, len(points))
	for _, point := range points {
		result = append(result, curve.Point{
			Temperature: point.Temperature,
			Duty:        point.Duty,
		})
	}
	return result
}

func sensorIdExists(sensorId string, config *Configuration) bool {
	for _, sensor := range config.Sensors {
		if sensor.ID == sensorId {
			return true
		}
	}
	return false
}

func containsCmdBackends(config *Configuration) bool {
	for _, sensorConfig := range config.Sensors {
		if sensorConfig.Cmd != nil {
			return true
		}
	}
	for _, fanConfig := range config.Fans {
		if fanConfig.Cmd != nil {
			return true
		}
	}
	return false
}
