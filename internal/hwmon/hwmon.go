package hwmon

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/util"
	"github.com/md14454/gosensors"
)

const (
	BusTypeIsa  = 1
	BusTypePci  = 2
	BusTypeAcpi = 5
)

// TempSensor is a discovered hwmon temperature input.
type TempSensor struct {
	Label string
	Index int
	Input string
	Value float64
}

// PwmOutput is a discovered hwmon PWM control.
type PwmOutput struct {
	Label string
	Index int
	Path  string
}

type HwMonController struct {
	Name     string
	DType    string
	Modalias string
	Platform string
	Path     string

	PwmOutputs []PwmOutput
	Sensors    []TempSensor
}

func GetChips() []*HwMonController {
	gosensors.Init()
	defer gosensors.Cleanup()
	chips := gosensors.GetDetectedChips()

	var list []*HwMonController

	for i := 0; i < len(chips); i++ {
		chip := chips[i]

		var identifier = computeIdentifier(chip)
		dType := util.GetDeviceType(chip.Path)
		modalias := util.GetDeviceModalias(chip.Path)
		platform := findPlatform(chip.Path)
		if len(platform) <= 0 {
			platform = identifier
		}

		pwmOutputs := GetPwmOutputs(chip)
		sensorList := GetTempSensors(chip)

		if len(pwmOutputs) <= 0 && len(sensorList) <= 0 {
			continue
		}

		c := &HwMonController{
			Name:       identifier,
			DType:      dType,
			Modalias:   modalias,
			Platform:   platform,
			Path:       chip.Path,
			PwmOutputs: pwmOutputs,
			Sensors:    sensorList,
		}
		list = append(list, c)
	}

	return list
}

func GetTempSensors(chip gosensors.Chip) []TempSensor {
	var sensorList []TempSensor

	features := chip.GetFeatures()
	for j := 0; j < len(features); j++ {
		feature := features[j]

		if feature.Type != gosensors.FeatureTypeTemp {
			continue
		}

		subfeatures := feature.GetSubFeatures()

		if containsSubFeature(subfeatures, gosensors.SubFeatureTypeTempInput) {
			inputSubFeature := getSubFeature(subfeatures, gosensors.SubFeatureTypeTempInput)
			sensorInputPath := fmt.Sprintf("%s/%s", chip.Path, inputSubFeature.Name)

			label := getLabel(chip.Path, inputSubFeature.Name)

			sensorList = append(
				sensorList,
				TempSensor{
					Label: label,
					Index: len(sensorList) + 1,
					Input: sensorInputPath,
					Value: inputSubFeature.GetValue(),
				})
		}
	}

	return sensorList
}

var fanChannelRegex = regexp.MustCompile(`fan([0-9]+)_input`)

func GetPwmOutputs(chip gosensors.Chip) []PwmOutput {
	var outputs []PwmOutput

	features := chip.GetFeatures()
	for j := 0; j < len(features); j++ {
		feature := features[j]

		if feature.Type != gosensors.FeatureTypeFan {
			continue
		}

		subfeatures := feature.GetSubFeatures()

		if containsSubFeature(subfeatures, gosensors.SubFeatureTypeFanInput) {
			inputSubFeature := getSubFeature(subfeatures, gosensors.SubFeatureTypeFanInput)

			// the pwm control shares the channel number of the rpm input
			match := fanChannelRegex.FindStringSubmatch(inputSubFeature.Name)
			if match == nil {
				continue
			}
			pwmPath := fmt.Sprintf("%s/pwm%s", chip.Path, match[1])
			if _, err := os.Stat(pwmPath); err != nil {
				continue
			}

			label := getLabel(chip.Path, inputSubFeature.Name)

			outputs = append(outputs, PwmOutput{
				Label: label,
				Index: len(outputs) + 1,
				Path:  pwmPath,
			})
		}
	}

	return outputs
}

// UpdateSensorConfigFromHwMonControllers resolves the temp input path
// of a hwmon sensor config against the discovered chips.
func UpdateSensorConfigFromHwMonControllers(controllers []*HwMonController, config *configuration.SensorConfig) error {
	for _, controller := range controllers {
		matched, err := regexp.MatchString("(?i)"+config.HwMon.Platform, controller.Platform)
		if err != nil {
			return fmt.Errorf("invalid platform regex of sensor %s: %s", config.ID, config.HwMon.Platform)
		}
		if !matched {
			continue
		}
		for _, sensor := range controller.Sensors {
			if sensor.Index == config.HwMon.Index {
				config.HwMon.TempInput = sensor.Input
				return nil
			}
		}
	}
	return fmt.Errorf("no hwmon sensor matched sensor config: %s", config.ID)
}

// UpdateFanConfigFromHwMonControllers resolves the pwm output path of a
// hwmon fan config against the discovered chips.
func UpdateFanConfigFromHwMonControllers(controllers []*HwMonController, config *configuration.FanConfig) error {
	for _, controller := range controllers {
		matched, err := regexp.MatchString("(?i)"+config.HwMon.Platform, controller.Platform)
		if err != nil {
			return fmt.Errorf("invalid platform regex of fan %s: %s", config.ID, config.HwMon.Platform)
		}
		if !matched {
			continue
		}
		for _, output := range controller.PwmOutputs {
			if output.Index == config.HwMon.Index {
				config.HwMon.PwmOutput = output.Path
				return nil
			}
		}
	}
	return fmt.Errorf("no hwmon fan matched fan config: %s", config.ID)
}

func getSubFeature(subfeatures []gosensors.SubFeature, input gosensors.SubFeatureType) gosensors.SubFeature {
	for _, a := range subfeatures {
		if a.Type == input {
			return a
		}
	}
	panic(fmt.Errorf("no such element: %v", input))
}

func containsSubFeature(s []gosensors.SubFeature, e gosensors.SubFeatureType) bool {
	for _, a := range s {
		if a.Type == e {
			return true
		}
	}
	return false
}

// getLabel read the label of a in/output of a device
func getLabel(devicePath string, input string) string {
	labelPath := strings.TrimSuffix(devicePath+"/"+input, "input") + "label"

	content, _ := os.ReadFile(labelPath)
	label := string(content)
	if len(label) <= 0 {
		_, label = filepath.Split(devicePath)
	}
	return strings.TrimSpace(label)
}

func computeIdentifier(chip gosensors.Chip) (name string) {
	name = chip.Prefix

	devicePath := chip.Path
	if len(name) <= 0 {
		name = util.GetDeviceName(devicePath)
	}

	if len(name) <= 0 {
		_, name = filepath.Split(devicePath)
	}

	identifier := name
	switch chip.Bus.Type {
	case BusTypeIsa:
		identifier = fmt.Sprintf("%s-isa-%d%03x", identifier, chip.Bus.Nr, chip.Addr)
	case BusTypePci:
		identifier = fmt.Sprintf("%s-pci-%d%03x", identifier, chip.Bus.Nr, chip.Addr)
	case BusTypeAcpi:
		identifier = fmt.Sprintf("%s-acpi-%d", identifier, chip.Bus.Nr)
	}

	return identifier
}

func findPlatform(devicePath string) string {
	platformRegex := regexp.MustCompile(".*/platform/{}/.*")
	return platformRegex.FindString(devicePath)
}
