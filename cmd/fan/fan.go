package fan

import (
	"fmt"

	"github.com/hsadmin/fancontrol/internal/configuration"
	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/hsadmin/fancontrol/internal/hwmon"
	"github.com/hsadmin/fancontrol/internal/persistence"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/spf13/cobra"
)

var fanId string

var Command = &cobra.Command{
	Use:              "fan",
	Short:            "Fan related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&fanId,
		"id", "i",
		"",
		"Fan ID as specified in the config",
	)
	_ = Command.MarkPersistentFlagRequired("id")
}

// readConfig loads and validates the configuration file.
func readConfig() {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()
	if err := configuration.Validate(configPath); err != nil {
		ui.Fatal("%v", err)
	}
}

// findFanConfig returns the configuration of the given fan, with hwmon
// backends resolved against the detected chips.
func findFanConfig(id string) (configuration.FanConfig, error) {
	for _, config := range configuration.CurrentConfig.Fans {
		if config.ID != id {
			continue
		}

		if config.HwMon != nil {
			chips := hwmon.GetChips()
			if err := hwmon.UpdateFanConfigFromHwMonControllers(chips, &config); err != nil {
				return configuration.FanConfig{}, err
			}
		}

		return config, nil
	}

	return configuration.FanConfig{}, fmt.Errorf("no fan with id found: %s", id)
}

// openStore loads the given fan into a store backed by the configured
// database, merging any runtime edits persisted by the daemon.
func openStore(config configuration.FanConfig) (*fanctrl.Store, error) {
	pers := persistence.NewPersistence(configuration.CurrentConfig.DbPath)
	store := fanctrl.NewStore(pers)
	if err := store.RegisterFan(config); err != nil {
		return nil, err
	}
	return store, nil
}
