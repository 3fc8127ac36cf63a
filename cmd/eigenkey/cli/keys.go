package cli

import (
	"context"
	"eigenkey/internal/di"
	"eigenkey/internal/lifecycle"
	"eigenkey/internal/models"
	"eigenkey/internal/structures"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newKeysCmd(flags *structures.CliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Generate and inspect access keys",
	}

	cmd.AddCommand(newKeysGenerateCmd())
	cmd.AddCommand(newKeysCheckCmd(flags))
	cmd.AddCommand(newKeysUsageCmd(flags))

	return cmd
}

// ---------- keys generate ----------

func newKeysGenerateCmd() *cobra.Command {
	var (
		count  int
		prefix string
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a batch of new access keys",
		Long:  "Generate random access keys and print them as a TOML secrets block or a keys.json allow-list.",
		Example: `  eigenkey keys generate --count 50
  eigenkey keys generate --format json --out keys.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeysGenerate(cmd.OutOrStdout(), count, prefix, format, out)
		},
	}

	cmd.Flags().IntVar(&count, "count", 50, "number of keys to generate")
	cmd.Flags().StringVar(&prefix, "prefix", lifecycle.DefaultKeyPrefix, "key prefix")
	cmd.Flags().StringVar(&format, "format", "toml", "output format: toml or json")
	cmd.Flags().StringVar(&out, "out", "", "write to file instead of stdout")

	return cmd
}

func runKeysGenerate(w io.Writer, count int, prefix, format, out string) error {
	keys, err := lifecycle.GenerateKeys(prefix, count)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "toml":
		data, err = lifecycle.EncodeSecretsTOML(keys)
	case "json":
		data, err = lifecycle.EncodeKeysFile(keys)
	default:
		return fmt.Errorf("unknown format %q (want toml or json)", format)
	}
	if err != nil {
		return fmt.Errorf("encode keys: %w", err)
	}

	if out == "" {
		_, err = w.Write(data)
		return err
	}
	if err := os.WriteFile(out, data, 0600); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(w, "Wrote %d keys to %s\n", len(keys), out)
	return nil
}

// ---------- keys check ----------

func newKeysCheckCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check KEY",
		Short: "Show a key's validity and sharing status",
		Long:  "Validate a key and report its sharing status without writing a usage event. A never-seen key is activated by the check.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, cleanup, err := di.InitAccessService(flags)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer cleanup()

			decision := service.Inspect(context.Background(), args[0])
			data, err := json.MarshalIndent(decision, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

// ---------- keys usage ----------

func newKeysUsageCmd(flags *structures.CliFlags) *cobra.Command {
	var includeArchives bool

	cmd := &cobra.Command{
		Use:   "usage KEY",
		Short: "List recorded usage events for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			history, cleanup, err := di.InitUsageHistory(flags)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer cleanup()
			defer history.Close()

			events, err := history.Events(args[0], includeArchives)
			if err != nil {
				return fmt.Errorf("read usage: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintf(out, "No usage recorded for %s\n", lifecycle.MaskKey(lifecycle.NormalizeKey(args[0])))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tSTATUS\tDEVICE\tPAGE\tIP HASH")
			for _, e := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Timestamp, e.Status, e.DeviceID, e.Page, e.IPHash)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			summary := lifecycle.Summarize(events, time.Local)
			fmt.Fprintf(out, "\n%d events (%d access, %d warning, %d blocked) from %d devices on %d days\n",
				summary.Events,
				summary.ByStatus[models.StatusAccess],
				summary.ByStatus[models.StatusWarning],
				summary.ByStatus[models.StatusBlocked],
				summary.Devices,
				summary.ActiveDays)
			return nil
		},
	}

	cmd.Flags().BoolVar(&includeArchives, "include-archives", false, "also read archived segments")

	return cmd
}
