package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ordodb/ordo/internal/engine"
	"github.com/ordodb/ordo/internal/parser"
	"github.com/ordodb/ordo/internal/server"
)

// QueryOptions holds flags for the query command.
type QueryOptions struct {
	*RootOptions
	DataDir string
	Format  string
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query <statement>",
		Short: "Run one statement against the data directory",
		Long: `Run a single statement directly against the data directory, without
going through the HTTP server.

Example:
  ordo query "CREATE TABLE events (id Int64, name String) KEY id"
  ordo query --format pretty "SELECT * FROM events WHERE id > 10"`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")
	cmd.Flags().StringVar(&opts.Format, "format", "tsv", "output format (tsv|csv|json|pretty)")

	return cmd
}

func runQuery(opts *QueryOptions, statement string, cmd *cobra.Command) error {
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

	stmt, err := parser.ParseQuery(statement)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	result, err := engine.Execute(stmt, db)
	if err != nil {
		return err
	}

	if result.Message != "" {
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	}
	return server.FormatResult(cmd.OutOrStdout(), result, server.ParseFormat(opts.Format))
}
