package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFlags(t *testing.T, args ...string) *pflag.FlagSet {
	t.Helper()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse(args))
	return flags
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", newFlags(t))
	require.NoError(t, err)
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultTopN, cfg.TopN)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.NoColor)
	assert.Empty(t, cfg.HistoryFile)
	assert.Equal(t, 30, cfg.DefaultCapacity)
	assert.Empty(t, cfg.FileUsed)
	assert.Equal(t, slog.LevelWarn, cfg.Level())
}

func TestLoad_Precedence(t *testing.T) {
	path := writeConfig(t, "data_dir: from-file\ntop_n: 3\nlog_level: info\ndefault_capacity: 40\n")

	t.Run("file over defaults", func(t *testing.T) {
		cfg, err := Load(path, nil)
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.DataDir)
		assert.Equal(t, 3, cfg.TopN)
		assert.Equal(t, 40, cfg.DefaultCapacity)
		assert.Equal(t, path, cfg.FileUsed)
		assert.Equal(t, slog.LevelInfo, cfg.Level())
	})

	t.Run("env over file", func(t *testing.T) {
		t.Setenv("RECORDS_DATA_DIR", "from-env")
		t.Setenv("RECORDS_TOP_N", "7")

		cfg, err := Load(path, newFlags(t))
		require.NoError(t, err)
		assert.Equal(t, "from-env", cfg.DataDir)
		assert.Equal(t, 7, cfg.TopN)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("changed flags over env", func(t *testing.T) {
		t.Setenv("RECORDS_DATA_DIR", "from-env")
		t.Setenv("RECORDS_TOP_N", "7")

		cfg, err := Load(path, newFlags(t, "--data-dir", "from-flag", "--no-color"))
		require.NoError(t, err)
		assert.Equal(t, "from-flag", cfg.DataDir)
		assert.True(t, cfg.NoColor)
		// unchanged flag defaults never override lower layers
		assert.Equal(t, 7, cfg.TopN)
		assert.Equal(t, 40, cfg.DefaultCapacity)
	})
}

func TestLoad_FindsConfigInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "records.yml"), []byte("top_n: 9\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 9, cfg.TopN)
	assert.Equal(t, "records.yml", cfg.FileUsed)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("explicit file missing", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error reading config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "top_n: [unterminated\n"), nil)
		require.Error(t, err)
	})

	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(writeConfig(t, "top_n: 0\n"), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "top_n")
	})
}

func TestValidate(t *testing.T) {
	valid := Config{DataDir: "data", TopN: 5, LogLevel: "warn", DefaultCapacity: 30}

	tests := []struct {
		name      string
		mutate    func(*Config)
		errSubstr string
	}{
		{"valid", func(*Config) {}, ""},
		{"upper case level", func(c *Config) { c.LogLevel = "DEBUG" }, ""},
		{"empty data dir", func(c *Config) { c.DataDir = "  " }, "data_dir"},
		{"top n zero", func(c *Config) { c.TopN = 0 }, "top_n"},
		{"capacity zero", func(c *Config) { c.DefaultCapacity = 0 }, "default_capacity"},
		{"capacity too large", func(c *Config) { c.DefaultCapacity = 201 }, "default_capacity"},
		{"unknown level", func(c *Config) { c.LogLevel = "verbose" }, "log_level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.errSubstr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECORDS_TEST_DOTENV=loaded\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("RECORDS_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "loaded", os.Getenv("RECORDS_TEST_DOTENV"))
}
