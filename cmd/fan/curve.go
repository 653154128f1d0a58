package fan

import (
	"bytes"
	"fmt"

	"github.com/guptarohit/asciigraph"
	"github.com/hsadmin/fancontrol/cmd/global"
	"github.com/hsadmin/fancontrol/internal/curve"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "Print the fan curve(s) of a fan to console",
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

		// print table
		ui.Printfln(config.ID)
		tab := table.Table{
			Headers: []string{"", ""},
			Rows: [][]string{
				{"Min duty", fmt.Sprintf("%d%%", config.MinDuty)},
				{"Max duty", fmt.Sprintf("%d%%", config.MaxDuty)},
				{"Emergency temperature", fmt.Sprintf("%.1f°C", config.EmergencyTemperature)},
				{"Hysteresis", fmt.Sprintf("%.1f°C", config.HysteresisDegrees)},
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

		// print graphs
		plotCurve("Default curve", snapshot.DefaultCurve)
		for _, entry := range snapshot.Entries {
			caption := fmt.Sprintf("%s (%s - %s)", entry.Name, entry.Start, entry.End)
			ui.Printfln("")
			plotCurve(caption, entry.Curve)
		}
		return nil
	},
}

// plotCurve samples the curve over its temperature span and renders it
// as an ascii graph of duty over temperature.
func plotCurve(caption string, c curve.Curve) {
	points := c.Points()
	first := points[0].Temperature
	last := points[len(points)-1].Temperature

	// pad one step beyond both ends to make the clamping visible
	step := (last - first) / 90
	if step <= 0 {
		step = 1
	}
	var values []float64
	for temperature := first - 5*step; temperature <= last+5*step; temperature += step {
		values = append(values, float64(c.Evaluate(temperature)))
	}

	graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption(caption))
	ui.Printfln(graph)
}

func init() {
	Command.AddCommand(curveCmd)
}
