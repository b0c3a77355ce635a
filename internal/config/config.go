package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ilyakaznacheev/cleanenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/dyluth/tack/internal/instance"
	"github.com/dyluth/tack/pkg/board"
)

// Storage backends
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Defaults applied by Validate
const (
	DefaultVersion          = "1.0"
	DefaultAutosaveInterval = 60 * time.Second
	DefaultMinLatency       = 500 * time.Millisecond
	DefaultRedisURL         = "redis://localhost:6379"
)

// DefaultFileNames are probed, in order, in the working directory when no
// config path is given.
var DefaultFileNames = []string{"tack.yml", "tack.yaml", "tack.toml"}

// TackConfig represents the top-level tack.yml configuration
type TackConfig struct {
	Version   string         `yaml:"version" toml:"version"`
	Instance  string         `yaml:"instance,omitempty" toml:"instance" env:"TACK_INSTANCE"`
	Palette   []string       `yaml:"palette,omitempty" toml:"palette" env:"TACK_PALETTE" env-separator:","`
	Autosave  AutosaveConfig `yaml:"autosave,omitempty" toml:"autosave"`
	Storage   StorageConfig  `yaml:"storage,omitempty" toml:"storage"`
	ExportDir string         `yaml:"export_dir,omitempty" toml:"export_dir" env:"TACK_EXPORT_DIR"`
	LogLevel  string         `yaml:"log_level,omitempty" toml:"log_level" env:"TACK_LOG_LEVEL"`

	// Source is the file the config was read from; empty for defaults.
	Source string `yaml:"-" toml:"-"`
}

// AutosaveConfig specifies the autosave timer and simulated save latency
type AutosaveConfig struct {
	// Interval between automatic saves. Default: 60s
	Interval time.Duration `yaml:"interval,omitempty" toml:"interval" env:"TACK_AUTOSAVE_INTERVAL"`

	// MinLatency is the minimum duration of one save. Default: 500ms, negative disables
	MinLatency time.Duration `yaml:"min_latency,omitempty" toml:"min_latency" env:"TACK_AUTOSAVE_MIN_LATENCY"`
}

// StorageConfig selects where the board snapshot lives
type StorageConfig struct {
	// Backend is "file" (default) or "redis"
	Backend string `yaml:"backend,omitempty" toml:"backend" env:"TACK_STORAGE_BACKEND"`

	// Path of the snapshot file. Default: ~/.tack/<instance>.json
	Path string `yaml:"path,omitempty" toml:"path" env:"TACK_STORAGE_PATH"`

	// RedisURL of the redis backend. Default: redis://localhost:6379
	RedisURL string `yaml:"redis_url,omitempty" toml:"redis_url" env:"TACK_REDIS_URL"`
}

// Default returns a validated configuration with every default applied.
func Default() *TackConfig {
	cfg := &TackConfig{Version: DefaultVersion}
	if err := cfg.Validate(); err != nil {
		// Defaults are always valid.
		panic(err)
	}
	return cfg
}

// BoardPalette returns the configured palette as a board.Palette.
func (c *TackConfig) BoardPalette() board.Palette {
	return board.Palette(c.Palette)
}

// Validate performs strict validation on the configuration and applies
// defaults for omitted values.
func (c *TackConfig) Validate() error {
	// Required: version
	if c.Version != DefaultVersion {
		return fmt.Errorf("unsupported version: %s (expected: %s)", c.Version, DefaultVersion)
	}

	if c.Instance == "" {
		c.Instance = instance.DefaultName
	}
	if err := instance.ValidateName(c.Instance); err != nil {
		return err
	}

	if len(c.Palette) == 0 {
		c.Palette = append([]string(nil), board.DefaultPalette...)
	}
	seen := make(map[string]bool, len(c.Palette))
	for i, color := range c.Palette {
		color = strings.ToUpper(strings.TrimSpace(color))
		if !isHexColor(color) {
			return fmt.Errorf("palette[%d]: invalid color %q (expected #RRGGBB)", i, c.Palette[i])
		}
		if seen[color] {
			return fmt.Errorf("palette[%d]: duplicate color %s", i, color)
		}
		seen[color] = true
		c.Palette[i] = color
	}

	if err := c.Autosave.validate(); err != nil {
		return err
	}
	if err := c.Storage.validate(c.Instance); err != nil {
		return err
	}

	if c.LogLevel != "" {
		if _, err := log.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("invalid log_level: %s", c.LogLevel)
		}
	}

	return nil
}

func (a *AutosaveConfig) validate() error {
	if a.Interval == 0 {
		a.Interval = DefaultAutosaveInterval
	}
	if a.Interval < time.Second {
		return fmt.Errorf("autosave.interval must be >= 1s, got %s", a.Interval)
	}
	if a.MinLatency == 0 {
		a.MinLatency = DefaultMinLatency
	}
	return nil
}

func (s *StorageConfig) validate(instanceName string) error {
	if s.Backend == "" {
		s.Backend = BackendFile
	}

	switch s.Backend {
	case BackendFile:
		if s.Path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("storage.path not set and home directory unknown: %w", err)
			}
			s.Path = filepath.Join(home, ".tack", instanceName+".json")
		}
	case BackendRedis:
		if s.RedisURL == "" {
			s.RedisURL = DefaultRedisURL
		}
		if !strings.HasPrefix(s.RedisURL, "redis://") && !strings.HasPrefix(s.RedisURL, "rediss://") {
			return fmt.Errorf("storage.redis_url must start with redis:// or rediss://, got %s", s.RedisURL)
		}
	default:
		return fmt.Errorf("invalid storage.backend: %s (must be '%s' or '%s')", s.Backend, BackendFile, BackendRedis)
	}
	return nil
}

func isHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		if !strings.ContainsRune("0123456789ABCDEF", r) {
			return false
		}
	}
	return true
}

// Load reads and validates the configuration at path. An empty path searches
// DefaultFileNames in the working directory and falls back to the defaults
// when none exists. Environment variables (TACK_*) override file values;
// overrides run last, before validation, so command-line flags win.
func Load(path string, overrides ...func(*TackConfig)) (*TackConfig, error) {
	explicit := path != ""
	if !explicit {
		path = findDefault()
	}

	cfg := &TackConfig{Version: DefaultVersion}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := parse(path, data, cfg); err != nil {
			return nil, err
		}
		cfg.Source = path
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	for _, override := range overrides {
		override(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func findDefault() string {
	for _, name := range DefaultFileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// parse decodes data by file extension: .toml uses TOML, anything else YAML.
func parse(path string, data []byte, cfg *TackConfig) error {
	// An explicit file must state its version.
	cfg.Version = ""

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return fmt.Errorf("failed to parse TOML: %w", err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}
