package schedule

import (
	"github.com/spf13/cobra"
)

var fanId string

var Command = &cobra.Command{
	Use:              "schedule",
	Short:            "Schedule related commands",
	Long:             ``,
	TraverseChildren: true,
}

func init() {
	Command.PersistentFlags().StringVarP(
		&fanId,
		"fan", "f",
		"",
		"Fan ID as specified in the config",
	)
	_ = Command.MarkPersistentFlagRequired("fan")
}
