package fan

import (
	"github.com/hsadmin/fancontrol/internal/fanctrl"
	"github.com/hsadmin/fancontrol/internal/ui"
	"github.com/spf13/cobra"
)

var manualDuty int

var modeCmd = &cobra.Command{
	Use:   "mode [auto|manual|scheduled]",
	Short: "Get/Set the control mode of a fan",
	Long: `Without an argument the persisted mode of the fan is printed.
With an argument the mode is changed; 'manual' requires --duty.
While the daemon is running, use its REST api instead, the database
is locked by the running process.`,
	Args: cobra.RangeArgs(0, 1),
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

		if len(args) > 0 {
			mode, err := fanctrl.ParseMode(args[0])
			if err != nil {
				return err
			}

			var duty *int
			if cmd.Flags().Changed("duty") {
				duty = &manualDuty
			}

			if err := store.SetMode(config.ID, mode, duty); err != nil {
				return err
			}
		}

		snapshot, _ := store.Snapshot(config.ID)
		if snapshot.Mode == fanctrl.ModeManual {
			ui.Printfln("%s (%d%%)", snapshot.Mode, snapshot.ManualDuty)
		} else {
			ui.Printfln("%s", snapshot.Mode)
		}
		return nil
	},
}

func init() {
	modeCmd.Flags().IntVarP(
		&manualDuty,
		"duty", "d",
		0,
		"Duty cycle (in percent) for manual mode",
	)
	Command.AddCommand(modeCmd)
}
