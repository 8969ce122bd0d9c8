// apmbuild doctor [path]
package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/fatih/color"
	"github.com/qobs-build/apmbuild/internal/builder"
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/qobs-build/apmbuild/internal/proc"
	"github.com/spf13/cobra"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor [manifest path]",
	Short: "Check that the tools a build needs are installed",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b := mustBuilder(args)
		statuses, err := builder.CheckTools(cmd.Context(), b.RequiredTools(), &proc.ExecRunner{}, exec.LookPath)
		if err != nil {
			msg.Fatal("%v", err)
		}

		failed := false
		for _, s := range statuses {
			switch {
			case s.OK():
				fmt.Fprintf(msg.Out, "%s %-14s %s %s\n", color.HiGreenString("ok  "), s.Name, s.Path, s.Version)
			case s.Optional:
				fmt.Fprintf(msg.Out, "%s %-14s %v (only needed for the shim)\n", color.YellowString("skip"), s.Name, s.Err)
			default:
				failed = true
				fmt.Fprintf(msg.Out, "%s %-14s %v\n", color.HiRedString("fail"), s.Name, s.Err)
			}
		}
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	addTargetFlags(doctorCmd)
}
