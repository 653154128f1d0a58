package fan

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/hsadmin/fancontrol/cmd/global"
	"github.com/hsadmin/fancontrol/internal/actuator"
	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/hwmon"
	"github.com/hsadmin/fancontrol/internal/sensors"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current state of a fan",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		readConfig()

		config, err := findFanConfig(fanId)
		if err != nil {
			return err
		}

		store, err := openStore(config)
		if err != nil {
			return err
		}
		snapshot, _ := store.Snapshot(config.ID)

		act, err := actuator.NewActuator(config)
		if err != nil {
			return err
		}
		dutyText := "N/A"
		if duty, err := act.GetDuty(); err == nil {
			dutyText = fmt.Sprintf("%d%%", duty)
		}

		temperatureText := "N/A"
		for _, sensorConfig := range configuration.CurrentConfig.Sensors {
			if sensorConfig.ID != config.Sensor {
				continue
			}
			if sensorConfig.HwMon != nil {
				chips := hwmon.GetChips()
				if err := hwmon.UpdateSensorConfigFromHwMonControllers(chips, &sensorConfig); err != nil {
					break
				}
			}
			sensor, err := sensors.NewSensor(sensorConfig)
			if err != nil {
				break
			}
			if value, err := sensor.GetValue(); err == nil {
				temperatureText = fmt.Sprintf("%.1f°C", value)
			}
		}

		ui.Printfln(config.ID)
		tab := table.Table{
			Headers: []string{"", ""},
			Rows: [][]string{
				{"Mode", snapshot.Mode.String()},
				{"Manual duty", fmt.Sprintf("%d%%", snapshot.ManualDuty)},
				{"Current duty", dutyText},
				{"Temperature", temperatureText},
				{"Schedule entries", strconv.Itoa(len(snapshot.Entries))},
			},
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			return tableErr
		}
		ui.Printfln(buf.String())
		return nil
	},
}

func init() {
	Command.AddCommand(statusCmd)
}
