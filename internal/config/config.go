package config

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ordodb/ordo/internal/compression"
)

// Duration wraps time.Duration so YAML configs can say "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Config holds the server configuration.
type Config struct {
	DataDir            string   `yaml:"data_dir"`
	ListenAddr         string   `yaml:"listen_addr"`
	BlockSize          int      `yaml:"block_size"`
	Compression        string   `yaml:"compression"` // lz4 or none
	CompactInterval    Duration `yaml:"compact_interval"`
	CompactMinSegments int      `yaml:"compact_min_segments"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		DataDir:            "./ordo-data",
		ListenAddr:         ":8123",
		BlockSize:          4096,
		Compression:        "lz4",
		CompactInterval:    Duration(30 * time.Second),
		CompactMinSegments: 2,
	}
}

// Load reads a YAML config file on top of the defaults. Unknown fields are
// rejected so typos surface at startup instead of silently using defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Codec returns the block codec selected by the Compression field.
func (c *Config) Codec() compression.Codec {
	if c.Compression == "none" {
		return &compression.NoneCodec{}
	}
	return &compression.LZ4Codec{}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is empty")
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("listen_addr is empty")
	}
	if c.BlockSize < 0 {
		return fmt.Errorf("block_size must not be negative")
	}
	switch c.Compression {
	case "lz4", "none":
	default:
		return fmt.Errorf("unknown compression %q (want lz4 or none)", c.Compression)
	}
	if time.Duration(c.CompactInterval) <= 0 {
		return fmt.Errorf("compact_interval must be positive")
	}
	if c.CompactMinSegments < 2 {
		return fmt.Errorf("compact_min_segments must be at least 2")
	}
	return nil
}
