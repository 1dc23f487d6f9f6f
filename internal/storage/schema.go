package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ordodb/ordo/internal/types"
)

const DefaultBlockSize = 4096

// ColumnDef defines a column in a table schema.
type ColumnDef struct {
	Name     string
	DataType types.DataType
}

// TableSchema defines the columns and the single key column of a table.
// Rows are stored sorted by the key column.
type TableSchema struct {
	Columns   []ColumnDef
	Key       string // key column name
	BlockSize int    // rows per block, default 4096
}

// Validate checks that the schema is well formed: at least one column,
// unique column names, and a key column that exists.
func (s *TableSchema) Validate() error {
	if len(s.Columns) == 0 {
		return fmt.Errorf("table needs at least one column")
	}
	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name == "" {
			return fmt.Errorf("column name is empty")
		}
		if seen[c.Name] {
			return fmt.Errorf("duplicate column %s", c.Name)
		}
		seen[c.Name] = true
	}
	if s.Key == "" {
		return fmt.Errorf("table needs a key column")
	}
	if !seen[s.Key] {
		return fmt.Errorf("key column %s not in schema", s.Key)
	}
	return nil
}

// GetColumnDef returns the ColumnDef for a column name.
func (s *TableSchema) GetColumnDef(name string) (ColumnDef, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDef{}, false
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (s *TableSchema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// KeyIndex returns the position of the key column.
func (s *TableSchema) KeyIndex() int {
	return s.ColumnIndex(s.Key)
}

// KeyType returns the key column's data type.
func (s *TableSchema) KeyType() types.DataType {
	def, _ := s.GetColumnDef(s.Key)
	return def.DataType
}

// ColumnNames returns all column names in order.
func (s *TableSchema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// EffectiveBlockSize returns the block size, defaulting to 4096.
func (s *TableSchema) EffectiveBlockSize() int {
	if s.BlockSize <= 0 {
		return DefaultBlockSize
	}
	return s.BlockSize
}

// tableSchemaYAML is the on-disk representation saved as schema.yaml.
type tableSchemaYAML struct {
	Name      string          `yaml:"name"`
	Key       string          `yaml:"key"`
	BlockSize int             `yaml:"block_size"`
	Columns   []columnDefYAML `yaml:"columns"`
}

type columnDefYAML struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

func saveTableSchema(tableDir, name string, schema *TableSchema) error {
	y := tableSchemaYAML{
		Name:      name,
		Key:       schema.Key,
		BlockSize: schema.EffectiveBlockSize(),
	}
	for _, c := range schema.Columns {
		y.Columns = append(y.Columns, columnDefYAML{
			Name: c.Name,
			Type: c.DataType.Name(),
		})
	}
	data, err := yaml.Marshal(&y)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(tableDir, "schema.yaml"), data, 0644)
}

func loadTableSchema(tableDir string) (*TableSchema, error) {
	data, err := os.ReadFile(filepath.Join(tableDir, "schema.yaml"))
	if err != nil {
		return nil, err
	}
	var y tableSchemaYAML
	if err := yaml.Unmarshal(data, &y); err != nil {
		return nil, err
	}
	schema := &TableSchema{
		Key:       y.Key,
		BlockSize: y.BlockSize,
	}
	for _, c := range y.Columns {
		dt, err := types.ParseDataType(c.Type)
		if err != nil {
			return nil, err
		}
		schema.Columns = append(schema.Columns, ColumnDef{Name: c.Name, DataType: dt})
	}
	return schema, nil
}
