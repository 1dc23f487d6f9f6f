package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ordodb/ordo/internal/storage"
)

// CompactOptions holds flags for the compact command.
type CompactOptions struct {
	*RootOptions
	DataDir string
}

// NewCompactCommand creates the compact command.
func NewCompactCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompactOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compact [table]",
		Short: "Merge segments now",
		Long: `Merge each table's active segments into one, as the background compactor
would. With a table name only that table is compacted.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tableName := ""
			if len(args) == 1 {
				tableName = args[0]
			}
			return runCompact(opts, tableName, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")

	return cmd
}

func runCompact(opts *CompactOptions, tableName string, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	names := db.TableNames()
	if tableName != "" {
		if _, ok := db.GetTable(tableName); !ok {
			return fmt.Errorf("table %s not found", tableName)
		}
		names = []string{tableName}
	}

	out := cmd.OutOrStdout()
	for _, name := range names {
		table, ok := db.GetTable(name)
		if !ok {
			continue
		}
		before := len(table.ActiveSegments())
		seg, err := storage.Compact(table)
		if err != nil {
			return fmt.Errorf("compacting %s: %w", name, err)
		}
		if seg == nil {
			fmt.Fprintf(out, "%s: nothing to compact\n", name)
			continue
		}
		fmt.Fprintf(out, "%s: merged %d segments (%d rows)\n", name, before, seg.NumRows)
	}
	return nil
}
