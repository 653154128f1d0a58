package schedule

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/hsadmin/fancontrol/cmd/global"
	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/hsadmin/fancontrol/internal/persistence"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the schedule entries of a fan",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := configuration.DetectAndReadConfigFile()
		ui.Info("Using configuration file at: %s", configPath)
		configuration.LoadConfig()
		if err := configuration.Validate(configPath); err != nil {
			ui.Fatal("%v", err)
		}

		var fanConfig *configuration.FanConfig
		for _, config := range configuration.CurrentConfig.Fans {
			if config.ID == fanId {
				fanConfig = &config
				break
			}
		}
		if fanConfig == nil {
			return fmt.Errorf("no fan with id found: %s", fanId)
		}

		pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
		store := fanctrl.NewStore(pers)
		if err := store.RegisterFan(*fanConfig); err != nil {
			return err
		}

		entries, err := store.ScheduleEntries(fanId)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			ui.Printfln("No schedule entries for fan %s", fanId)
			return nil
		}

		var rows [][]string
		for _, entry := range entries {
			rows = append(rows, []string{
				strconv.Itoa(entry.ID),
				entry.Name,
				fmt.Sprintf("%s - %s", entry.Start, entry.End),
				strconv.Itoa(entry.Priority),
				strconv.FormatBool(entry.Enabled),
				strconv.FormatInt(entry.Version, 10),
			})
		}

		tab := table.Table{
			Headers: []string{"ID", "Name", "Window", "Priority", "Enabled", "Version"},
			Rows:    rows,
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
	Command.AddCommand(listCmd)
}
