package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ordodb/ordo/internal/server"
	"github.com/ordodb/ordo/internal/storage"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	DataDir    string
	ListenAddr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the OrdoDB HTTP server.

Statements arrive on / as the request body or the query parameter and
results come back tab-separated unless format=csv|json|pretty is given.
A background compactor merges tables that accumulate enough segments.

Example:
  ordo serve --data-dir ./ordo-data --listen :8123
  ordo serve --config ordo.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")
	cmd.Flags().StringVar(&opts.ListenAddr, "listen", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if opts.DataDir != "" {
		cfg.DataDir = opts.DataDir
	}
	if opts.ListenAddr != "" {
		cfg.ListenAddr = opts.ListenAddr
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	log.Printf("[cli] data directory: %s", cfg.DataDir)

	// Use the command's context when set (tests), otherwise create one.
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			log.Printf("[cli] received %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	compactor := storage.NewBackgroundCompactor(db, time.Duration(cfg.CompactInterval), cfg.CompactMinSegments)

	fmt.Fprintf(cmd.OutOrStdout(), "OrdoDB listening on %s\n", cfg.ListenAddr)
	return server.NewServer(db, cfg.ListenAddr, compactor).Start(ctx)
}
