package storage

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ordodb/ordo/internal/compression"
)

// Database manages all tables under one data directory.
type Database struct {
	DataDir string
	Codec   compression.Codec

	// DefaultBlockSize applies to tables created without an explicit block
	// size. Zero keeps the package default.
	DefaultBlockSize int

	mu     sync.RWMutex
	tables map[string]*Table
}

// OpenDatabase opens (or creates) a database rooted at dataDir, reloading
// table schemas and segment metadata from disk. A nil codec means LZ4.
func OpenDatabase(dataDir string, codec compression.Codec) (*Database, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if codec == nil {
		codec = &compression.LZ4Codec{}
	}
	db := &Database{
		DataDir: dataDir,
		Codec:   codec,
		tables:  make(map[string]*Table),
	}
	if err := db.loadMetadata(); err != nil {
		return nil, fmt.Errorf("loading metadata: %w", err)
	}
	return db, nil
}

// CreateTable validates the schema, persists it, and registers the table.
func (db *Database) CreateTable(name string, schema TableSchema) error {
	if name == "" {
		return fmt.Errorf("table name is empty")
	}
	if schema.BlockSize == 0 {
		schema.BlockSize = db.DefaultBlockSize
	}
	if err := schema.Validate(); err != nil {
		return fmt.Errorf("table %s: %w", name, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if _, exists := db.tables[name]; exists {
		return fmt.Errorf("table %s already exists", name)
	}

	tableDir := filepath.Join(db.DataDir, name)
	if err := os.MkdirAll(tableDir, 0755); err != nil {
		return err
	}

	if err := saveTableSchema(tableDir, name, &schema); err != nil {
		return err
	}

	db.tables[name] = NewTable(name, schema, tableDir, db.Codec)
	return nil
}

// GetTable returns a table by name.
func (db *Database) GetTable(name string) (*Table, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	t, ok := db.tables[name]
	return t, ok
}

// DropTable removes a table and its data.
func (db *Database) DropTable(name string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	t, ok := db.tables[name]
	if !ok {
		return fmt.Errorf("table %s does not exist", name)
	}

	if err := os.RemoveAll(t.DataDir); err != nil {
		return err
	}
	delete(db.tables, name)
	return nil
}

// TableNames returns all table names, sorted.
func (db *Database) TableNames() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	names := make([]string, 0, len(db.tables))
	for n := range db.tables {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AllTables returns all tables.
func (db *Database) AllTables() []*Table {
	db.mu.RLock()
	defer db.mu.RUnlock()
	tables := make([]*Table, 0, len(db.tables))
	for _, t := range db.tables {
		tables = append(tables, t)
	}
	return tables
}

// loadMetadata scans the data directory on startup, reconstructing table and
// segment metadata.
func (db *Database) loadMetadata() error {
	entries, err := os.ReadDir(db.DataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		tableName := entry.Name()
		tableDir := filepath.Join(db.DataDir, tableName)

		schema, err := loadTableSchema(tableDir)
		if err != nil {
			continue // skip directories without a valid schema
		}

		table := NewTable(tableName, *schema, tableDir, db.Codec)

		segEntries, err := os.ReadDir(tableDir)
		if err != nil {
			continue
		}
		for _, se := range segEntries {
			if !se.IsDir() {
				continue
			}
			if strings.HasPrefix(se.Name(), "tmp_") {
				// Leftover from an interrupted write.
				os.RemoveAll(filepath.Join(tableDir, se.Name()))
				continue
			}

			info, err := ParseSegmentDirName(se.Name())
			if err != nil {
				continue
			}

			segDir := filepath.Join(tableDir, se.Name())
			meta, err := readSegmentMeta(segDir)
			if err != nil {
				log.Printf("[storage] segment %s: %v", se.Name(), err)
				continue
			}
			createdAt, _ := time.Parse(time.RFC3339, meta.CreatedAt)

			table.AddSegment(&Segment{
				Info:      info,
				State:     SegmentActive,
				NumRows:   meta.Rows,
				NumBlocks: meta.Blocks,
				SizeBytes: segmentDirSize(segDir),
				CreatedAt: createdAt,
				BasePath:  segDir,
			})
		}

		db.tables[tableName] = table
	}
	return nil
}
