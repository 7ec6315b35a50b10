package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/wordfind/pkg/scan"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1, cfg.Scan.Workers)
	assert.Equal(t, 5, cfg.Scan.TopK)
	assert.Equal(t, "rank", cfg.Scan.Mode)
	assert.Equal(t, 2*1024, cfg.ChunkBytes(), "sequential default is 2 kB")

	cfg.Scan.Workers = 4
	assert.Equal(t, 128*1024, cfg.ChunkBytes(), "parallel default is 128 kB")

	cfg.Scan.ChunkSizeKB = 16
	assert.Equal(t, 16*1024, cfg.ChunkBytes(), "explicit size wins")
}

func TestInitConfigCreatesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wordfind", "config.toml")

	cfg, err := InitConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[scan]
workers = 4
top_k = 10
mode = "words"

[cache]
size = 128
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, 10, cfg.Scan.TopK)
	assert.Equal(t, "words", cfg.Scan.Mode)
	assert.Equal(t, 128, cfg.Cache.Size)
	assert.Equal(t, 250, cfg.Scan.BoundaryLimit, "unset keys keep defaults")
	assert.True(t, cfg.CLI.Color)
}

func TestLoadConfigPartialRecovery(t *testing.T) {
	// workers has the wrong type, the rest of the file is still valid
	path := writeConfig(t, `
[scan]
workers = "many"
top_k = 3

[cli]
color = false
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Scan.Workers)
	assert.Equal(t, 3, cfg.Scan.TopK)
	assert.False(t, cfg.CLI.Color)
}

func TestLoadConfigGarbage(t *testing.T) {
	path := writeConfig(t, "this is [not toml")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigWithPriorityCustomPath(t *testing.T) {
	path := writeConfig(t, "[scan]\ntop_k = 7\n")
	cfg, used, err := LoadConfigWithPriority(path)
	require.NoError(t, err)
	assert.Equal(t, path, used)
	assert.Equal(t, 7, cfg.Scan.TopK)
}

func TestApplyEnv(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("WORDFIND_TOP_K=9\nWORDFIND_MODE=words\n"), 0o644))
	t.Setenv(EnvWorkers, "6")
	t.Setenv(EnvChunkKB, "")
	// godotenv never overrides variables that are already set
	t.Setenv(EnvTopK, "")
	require.NoError(t, os.Unsetenv(EnvTopK))
	t.Setenv(EnvMode, "")
	require.NoError(t, os.Unsetenv(EnvMode))

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv(envFile))

	assert.Equal(t, 6, cfg.Scan.Workers)
	assert.Equal(t, 9, cfg.Scan.TopK)
	assert.Equal(t, "words", cfg.Scan.Mode)
	assert.Equal(t, 0, cfg.Scan.ChunkSizeKB)
}

func TestApplyEnvRejectsBadNumbers(t *testing.T) {
	t.Setenv(EnvWorkers, "lots")
	cfg := DefaultConfig()
	assert.Error(t, cfg.ApplyEnv(""))
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		mutate      func(*Config)
		description string
	}{
		{func(c *Config) { c.Scan.TopK = 0 }, "zero top-k"},
		{func(c *Config) { c.Scan.TopK = -1 }, "negative top-k"},
		{func(c *Config) { c.Scan.Workers = 0 }, "zero workers"},
		{func(c *Config) { c.Scan.ChunkSizeKB = -2 }, "negative chunk size"},
		{func(c *Config) { c.Scan.Mode = "fuzzy" }, "unknown mode"},
	}
	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestScanOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Scan.Workers = 3
	cfg.Scan.Mode = "words"
	cfg.Cache.Size = -1

	opts := cfg.ScanOptions()
	assert.Equal(t, scan.Options{
		Workers:       3,
		ChunkSize:     128 * 1024,
		TopK:          5,
		Mode:          scan.ModeWords,
		BoundaryLimit: 250,
		CacheSize:     -1,
	}, opts)

	_, err := scan.New(opts)
	assert.NoError(t, err)
}
