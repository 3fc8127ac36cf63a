package cli

import (
	"eigenkey/internal/di"
	"eigenkey/internal/structures"
	"fmt"

	"github.com/spf13/cobra"
)

func newServeCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP access API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := di.InitApp(flags)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}
			return app.Run()
		},
	}
}
