package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"github.com/rahulvramesh/appdata-cleaner/internal/paths"
	"github.com/rahulvramesh/appdata-cleaner/internal/types"
)

const appName = "appdata-cleaner"

type Scan struct {
	SkipHidden bool   `yaml:"skip_hidden"`
	MinSize    string `yaml:"min_size"`
}

type Delete struct {
	UseTrash bool   `yaml:"use_trash"`
	TrashDir string `yaml:"trash_dir"`
}

type History struct {
	Path string `yaml:"path"`
}

type UI struct {
	PollInterval     time.Duration `yaml:"poll_interval"`
	MaxEventsPerTick int           `yaml:"max_events_per_tick"`
}

type Log struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Config struct {
	Roots   map[string]string `yaml:"roots"`
	Scan    Scan              `yaml:"scan"`
	Delete  Delete            `yaml:"delete"`
	History History           `yaml:"history"`
	UI      UI                `yaml:"ui"`
	Log     Log               `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Roots: map[string]string{},
		Scan: Scan{
			MinSize: "0B",
		},
		Delete: Delete{
			UseTrash: false,
			TrashDir: filepath.Join(dataDir(), "trash"),
		},
		History: History{
			Path: filepath.Join(dataDir(), "history.db"),
		},
		UI: UI{
			PollInterval:     100 * time.Millisecond,
			MaxEventsPerTick: 256,
		},
		Log: Log{
			Level: "warn",
			File:  filepath.Join(dataDir(), appName+".log"),
		},
	}
}

// Load reads the config at path over the defaults. An empty path means
// DefaultPath; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that yaml decoding cannot
func (c *Config) Validate() error {
	if _, err := c.RootOverrides(); err != nil {
		return err
	}
	if _, err := c.MinSizeBytes(); err != nil {
		return err
	}
	if c.UI.PollInterval <= 0 {
		return fmt.Errorf("ui.poll_interval must be positive, got %s", c.UI.PollInterval)
	}
	if c.UI.MaxEventsPerTick <= 0 {
		return fmt.Errorf("ui.max_events_per_tick must be positive, got %d", c.UI.MaxEventsPerTick)
	}
	if c.Delete.UseTrash && c.Delete.TrashDir == "" {
		return errors.New("delete.trash_dir is required when delete.use_trash is set")
	}
	return nil
}

// RootOverrides converts the roots map into targets
func (c *Config) RootOverrides() (map[types.ScanTarget]string, error) {
	out := make(map[types.ScanTarget]string, len(c.Roots))
	for name, dir := range c.Roots {
		target, err := types.ParseScanTarget(name)
		if err != nil {
			return nil, fmt.Errorf("roots: %w", err)
		}
		out[target] = dir
	}
	return out, nil
}

// MinSizeBytes parses scan.min_size
func (c *Config) MinSizeBytes() (uint64, error) {
	if c.Scan.MinSize == "" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(c.Scan.MinSize)
	if err != nil {
		return 0, fmt.Errorf("scan.min_size: %w", err)
	}
	return n, nil
}

// TrashDir returns delete.trash_dir with ~ expanded
func (c *Config) TrashDir() string {
	return paths.ExpandHome(c.Delete.TrashDir)
}

// HistoryPath returns history.path with ~ expanded
func (c *Config) HistoryPath() string {
	return paths.ExpandHome(c.History.Path)
}

// LogFile returns log.file with ~ expanded
func (c *Config) LogFile() string {
	return paths.ExpandHome(c.Log.File)
}

func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName, "config.yaml")
}

func dataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}
