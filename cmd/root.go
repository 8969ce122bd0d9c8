// apmbuild [path], apmbuild build [path]
package cmd

import (
	"fmt"
	"os"

	"github.com/qobs-build/apmbuild/internal/builder/gen"
	"github.com/qobs-build/apmbuild/internal/msg"
	"github.com/spf13/cobra"
)

var (
	flagProfile string
	flagOut     string
	flagLines   bool
	flagSystem  EnumValue = NewEnumValue("", map[string]string{
		gen.SystemMeson: "Configure with meson and build with ninja (default)",
		gen.SystemCMake: "Configure with cmake",
	})
)

func doBuild(cmd *cobra.Command, args []string) {
	b := mustBuilder(args)
	result, err := b.Build()
	if err != nil {
		msg.Fatal("%v", err)
	}

	if flagLines {
		if err := result.Metadata.WriteLines(os.Stdout); err != nil {
			msg.Fatal("%v", err)
		}
	}
	msg.Status("Finished", "%s %s, shim %s, bindings %s", b.Request().Target, b.Request().Profile, result.Shim, result.Bindings)
	msg.Info("build metadata written to %s", result.Manifest)
}

var rootCmd = &cobra.Command{
	Use:   "apmbuild [manifest path]",
	Short: "Build the vendored WebRTC audio processing library",
	Long: `Build the vendored WebRTC audio processing library with its own build system,
compile the optional C shim, generate a binding descriptor from the shim header
and write link metadata for the host build.`,
	Args: cobra.MaximumNArgs(1),
	Run:  doBuild,
}

var buildCmd = &cobra.Command{
	Use:   "build [manifest path]",
	Short: "Run the build pipeline",
	Long:  `Run the build pipeline. If no manifest path is given, uses "."`,
	Args:  cobra.MaximumNArgs(1),
	Run:   doBuild,
}

func init() {
	addTargetFlags(rootCmd)
	rootCmd.Flags().BoolVar(&flagLines, "lines", false, "Print apmbuild:key=value metadata lines to stdout")

	// apmbuild build subcommand
	rootCmd.AddCommand(buildCmd)
	addTargetFlags(buildCmd)
	buildCmd.Flags().BoolVar(&flagLines, "lines", false, "Print apmbuild:key=value metadata lines to stdout")
}

// addTargetFlags registers the flags that select what a command operates on.
func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flagProfile, "profile", "p", "", "Build with the given profile (default $APMBUILD_PROFILE or debug)")
	cmd.Flags().StringVarP(&flagOut, "out", "o", "", "Output directory (default $APMBUILD_OUT_DIR or build/<os>_<arch>/<profile>)")
	cmd.Flags().VarP(&flagSystem, "system", "s", "Build system to drive, one of "+flagSystem.HelpString())
	cmd.RegisterFlagCompletionFunc("system", flagSystem.CompletionFunc())
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
