// apmbuild clean [path]
package cmd

import (
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [manifest path]",
	Short: "Remove the output directory of a target and profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := mustBuilder(args).Clean(); err != nil {
			msg.Fatal("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	addTargetFlags(cleanCmd)
}
