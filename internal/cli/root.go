package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ordodb/ordo/internal/config"
	"github.com/ordodb/ordo/internal/storage"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
}

// NewRootCommand creates the root command for the ordo CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ordo",
		Short: "OrdoDB - a key-ordered SQL database",
		Long: `OrdoDB stores each table as immutable segments sorted by one key column
and bounds scans to the key range extracted from the WHERE clause.`,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to YAML config file")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewSegmentsCommand(opts))
	cmd.AddCommand(NewCompactCommand(opts))

	return cmd
}

// loadConfig resolves the effective configuration: the config file when one
// was given, built-in defaults otherwise.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.ConfigPath == "" {
		return config.Default(), nil
	}
	return config.Load(opts.ConfigPath)
}

// openDatabase opens the database the config points at.
func openDatabase(cfg *config.Config) (*storage.Database, error) {
	db, err := storage.OpenDatabase(cfg.DataDir, cfg.Codec())
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", cfg.DataDir, err)
	}
	db.DefaultBlockSize = cfg.BlockSize
	return db, nil
}
