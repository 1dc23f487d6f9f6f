package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// SegmentState represents the lifecycle state of a segment.
type SegmentState uint8

const (
	SegmentTemporary SegmentState = iota // tmp_ prefix, being written
	SegmentActive                        // visible to scans
	SegmentOutdated                      // replaced by compaction, pending removal
)

// SegmentInfo identifies a segment: a time-ordered UUID plus the compaction
// level it was written at.
type SegmentInfo struct {
	ID    uuid.UUID
	Level uint32
}

// NewSegmentInfo allocates an identifier for a new segment. UUIDv7 sorts by
// creation time, which keeps insertion order across segments.
func NewSegmentInfo(level uint32) (SegmentInfo, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return SegmentInfo{}, fmt.Errorf("allocating segment id: %w", err)
	}
	return SegmentInfo{ID: id, Level: level}, nil
}

// DirName returns the directory name for this segment.
func (si SegmentInfo) DirName() string {
	return fmt.Sprintf("%s_%d", si.ID, si.Level)
}

// TmpDirName returns the temporary directory name used while writing.
func (si SegmentInfo) TmpDirName() string {
	return "tmp_" + si.DirName()
}

// ParseSegmentDirName parses "<uuid>_<level>" into SegmentInfo.
func ParseSegmentDirName(name string) (SegmentInfo, error) {
	i := strings.LastIndexByte(name, '_')
	if i < 0 {
		return SegmentInfo{}, fmt.Errorf("invalid segment dir name: %s", name)
	}
	id, err := uuid.Parse(name[:i])
	if err != nil {
		return SegmentInfo{}, fmt.Errorf("invalid segment dir name %s: %w", name, err)
	}
	level, err := strconv.ParseUint(name[i+1:], 10, 32)
	if err != nil {
		return SegmentInfo{}, fmt.Errorf("invalid segment dir name %s: %w", name, err)
	}
	return SegmentInfo{ID: id, Level: uint32(level)}, nil
}

// Segment is an immutable sorted run of rows on disk:
// data.bin (compressed row blocks), index.bin (sparse index), meta.yaml.
type Segment struct {
	Info      SegmentInfo
	State     SegmentState
	NumRows   uint64
	NumBlocks int
	SizeBytes uint64
	CreatedAt time.Time
	BasePath  string // absolute path to the segment directory
}

func (s *Segment) String() string {
	return fmt.Sprintf("Segment{%s, rows=%d, state=%d}", s.Info.DirName(), s.NumRows, s.State)
}

// segmentMetaYAML is the on-disk representation saved as meta.yaml.
// The min/max keys are informational; scans use the binary sparse index.
type segmentMetaYAML struct {
	Rows      uint64 `yaml:"rows"`
	Blocks    int    `yaml:"blocks"`
	Level     uint32 `yaml:"level"`
	CreatedAt string `yaml:"created_at"`
	MinKey    string `yaml:"min_key"`
	MaxKey    string `yaml:"max_key"`
}

func writeSegmentMeta(dir string, meta segmentMetaYAML) error {
	data, err := yaml.Marshal(&meta)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.yaml"), data, 0644)
}

func readSegmentMeta(dir string) (segmentMetaYAML, error) {
	data, err := os.ReadFile(filepath.Join(dir, "meta.yaml"))
	if err != nil {
		return segmentMetaYAML{}, err
	}
	var meta segmentMetaYAML
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return segmentMetaYAML{}, fmt.Errorf("parsing meta.yaml: %w", err)
	}
	return meta, nil
}
