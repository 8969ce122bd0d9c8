// apmbuild fetch [path]
package cmd

import (
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [manifest path]",
	Short: "Clone the vendored source tree",
	Long:  `Clone [source] remote into [source] dir. A remote may pin a branch with @branch and a commit or tag with #rev.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := mustBuilder(args).Fetch(); err != nil {
			msg.Fatal("%v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
