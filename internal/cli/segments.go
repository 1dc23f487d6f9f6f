package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ordodb/ordo/internal/storage"
	"github.com/ordodb/ordo/internal/types"
)

// SegmentsOptions holds flags for the segments command.
type SegmentsOptions struct {
	*RootOptions
	DataDir string
}

type segmentJSON struct {
	Segment   string `json:"segment"`
	Level     uint32 `json:"level"`
	Rows      uint64 `json:"rows"`
	Blocks    int    `json:"blocks"`
	SizeBytes uint64 `json:"size_bytes"`
	MinKey    string `json:"min_key,omitempty"`
	MaxKey    string `json:"max_key,omitempty"`
}

type tableSegmentsJSON struct {
	Table    string        `json:"table"`
	Key      string        `json:"key"`
	Rows     uint64        `json:"rows"`
	Segments []segmentJSON `json:"segments"`
}

// NewSegmentsCommand creates the segments command.
func NewSegmentsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SegmentsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "segments [table]",
		Short: "Show on-disk segments as JSON",
		Long: `Show each table's active segments: row and block counts, size on disk,
and the key interval the sparse index covers. Without a table name all
tables are listed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			tableName := ""
			if len(args) == 1 {
				tableName = args[0]
			}
			return runSegments(opts, tableName, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.DataDir, "data-dir", "", "data directory (overrides config)")

	return cmd
}

func runSegments(opts *SegmentsOptions, tableName string, cmd *cobra.Command) error {
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

	out := make([]tableSegmentsJSON, 0, len(names))
	for _, name := range names {
		table, ok := db.GetTable(name)
		if !ok {
			continue
		}
		tj := tableSegmentsJSON{
			Table:    name,
			Key:      table.Schema.Key,
			Rows:     table.NumRows(),
			Segments: make([]segmentJSON, 0),
		}
		keyType := table.Schema.KeyType()
		for _, seg := range table.ActiveSegments() {
			sj := segmentJSON{
				Segment:   seg.Info.DirName(),
				Level:     seg.Info.Level,
				Rows:      seg.NumRows,
				Blocks:    seg.NumBlocks,
				SizeBytes: seg.SizeBytes,
			}
			reader, err := storage.OpenSegmentReader(seg, &table.Schema)
			if err != nil {
				return fmt.Errorf("segment %s: %w", seg.Info.DirName(), err)
			}
			if idx := reader.Index(); idx.NumBlocks() > 0 {
				sj.MinKey = types.ValueToString(keyType, idx.Entries[0].FirstKey)
				sj.MaxKey = types.ValueToString(keyType, idx.LastKey)
			}
			tj.Segments = append(tj.Segments, sj)
		}
		out = append(out, tj)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
