package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/superagent-dev/superagent/internal/errors"
)

// Default values for change tracking configuration
const (
	DefaultRetentionDays        = 30
	DefaultIncrementalThreshold = 0.3
	DefaultSnapshotDir          = ".superagent/snapshots"
)

// Tracking configures the snapshot and incremental-update engine
type Tracking struct {
	// Enabled toggles change tracking entirely
	Enabled bool `yaml:"enabled"`

	// RetentionDays is the age in days after which snapshots are eligible for cleanup
	RetentionDays int `yaml:"retention_days"`

	// IncrementalThreshold is the diff_ratio boundary below which a patch is
	// preferred over full content (0-1)
	IncrementalThreshold float64 `yaml:"incremental_threshold"`

	// CacheContent controls whether in-memory snapshots retain text content for diffing
	CacheContent bool `yaml:"cache_content"`

	// SnapshotDir is the directory holding the snapshot index, relative to the
	// project root unless absolute
	SnapshotDir string `yaml:"snapshot_dir"`
}

// Config is the top-level configuration for superagent
type Config struct {
	Tracking Tracking `yaml:"tracking"`
}

// Default returns the configuration used when no config file is present
func Default() Config {
	return Config{
		Tracking: Tracking{
			Enabled:              true,
			RetentionDays:        DefaultRetentionDays,
			IncrementalThreshold: DefaultIncrementalThreshold,
			CacheContent:         true,
			SnapshotDir:          DefaultSnapshotDir,
		},
	}
}

// Load reads configuration from a YAML file, applying defaults for any
// omitted option. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileReadFailed, fmt.Sprintf("failed to read config file: %s", path), err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.NewFileUnmarshalError(path, "YAML", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate checks the configuration for out-of-range values
func (c Config) Validate() error {
	t := c.Tracking

	if t.IncrementalThreshold < 0 || t.IncrementalThreshold > 1 {
		return errors.NewConfigInvalidError(
			fmt.Sprintf("incremental_threshold must be between 0 and 1, got %g", t.IncrementalThreshold))
	}

	if t.RetentionDays < 0 {
		return errors.NewConfigInvalidError(
			fmt.Sprintf("retention_days must not be negative, got %d", t.RetentionDays))
	}

	if t.SnapshotDir == "" {
		return errors.NewConfigInvalidError("snapshot_dir must not be empty")
	}

	return nil
}
