package cli

import (
	"eigenkey/internal/structures"

	"github.com/spf13/cobra"
)

// Execute creates the root command tree and runs it.
func Execute(version string) error {
	return newRootCmd(version).Execute()
}

func newRootCmd(version string) *cobra.Command {
	flags := &structures.CliFlags{}

	cmd := &cobra.Command{
		Use:   "eigenkey",
		Short: "Time-limited access keys for gated content",
		Long: `EigenKey validates access keys against an allow-list, anchors each key's
30 day validity window on first use, keeps a masked usage log and flags keys
used from more devices than expected.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.ConfigPath, "config", "config.yaml", "path to the YAML config file")
	cmd.PersistentFlags().BoolVar(&flags.DebugMode, "debug", false, "mirror logs to the console")

	cmd.AddCommand(newServeCmd(flags))
	cmd.AddCommand(newKeysCmd(flags))

	return cmd
}
