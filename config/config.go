// Package config loads application settings.
//
// Precedence (highest to lowest): flags > environment > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/nonsonwune/student_records/models"
)

// Defaults.
const (
	DefaultDataDir  = "data"
	DefaultTopN     = 5
	DefaultLogLevel = "warn"

	EnvPrefix = "RECORDS_"
)

// configFiles are looked up in the working directory when no file is given.
var configFiles = []string{"records.yaml", "records.yml"}

// Config holds all application settings.
type Config struct {
	DataDir         string `koanf:"data_dir"`
	TopN            int    `koanf:"top_n"`
	LogLevel        string `koanf:"log_level"`
	NoColor         bool   `koanf:"no_color"`
	HistoryFile     string `koanf:"history_file"`
	DefaultCapacity int    `koanf:"default_capacity"`

	// FileUsed is the config file that was read, if any.
	FileUsed string `koanf:"-"`
}

// RegisterFlags adds the flags Load understands to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("data-dir", DefaultDataDir, "directory holding students.csv, courses.csv and enrollments.csv")
	flags.Int("top-n", DefaultTopN, "number of students in the top performers report")
	flags.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.Bool("no-color", false, "disable coloured output")
	flags.String("history-file", "", "file for interactive input history")
	flags.Int("default-capacity", models.DefaultCapacity, "capacity given to new courses that do not set one")
}

// LoadDotEnv reads environment variables from the given .env files (".env"
// when none are given). Missing files are ignored and variables already set
// are kept.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return nil
}

// Load builds a Config from defaults, the config file, RECORDS_ environment
// variables and the flags that were explicitly set. An explicit cfgFile must
// exist; otherwise records.yaml in the working directory is used when present.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_dir":         DefaultDataDir,
		"top_n":            DefaultTopN,
		"log_level":        DefaultLogLevel,
		"no_color":         false,
		"history_file":     "",
		"default_capacity": models.DefaultCapacity,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: RECORDS_DATA_DIR -> data_dir
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.FileUsed = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.DataDir) == "" {
		errs = append(errs, errors.New("data_dir must not be empty"))
	}
	if c.TopN < 1 {
		errs = append(errs, fmt.Errorf("top_n must be at least 1, got %d", c.TopN))
	}
	if c.DefaultCapacity < models.MinCapacity || c.DefaultCapacity > models.MaxCapacity {
		errs = append(errs, fmt.Errorf("default_capacity must be between %d and %d, got %d",
			models.MinCapacity, models.MaxCapacity, c.DefaultCapacity))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

// Level returns the configured slog level, warn if it cannot be parsed.
func (c *Config) Level() slog.Level {
	lvl, err := parseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("unknown log_level %q", s)
	}
	return lvl, nil
}
