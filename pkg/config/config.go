/*
Package config manages TOML config for wordfind.
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bastiangx/wordfind/internal/utils"
	"github.com/bastiangx/wordfind/pkg/scan"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvWorkers   = "WORDFIND_WORKERS"
	EnvChunkKB   = "WORDFIND_CHUNK_KB"
	EnvTopK      = "WORDFIND_TOP_K"
	EnvMode      = "WORDFIND_MODE"
	EnvCacheSize = "WORDFIND_CACHE_SIZE"
)

// Config holds the entire config structure
type Config struct {
	Scan  ScanConfig  `toml:"scan"`
	Cache CacheConfig `toml:"cache"`
	CLI   CliConfig   `toml:"cli"`
}

// ScanConfig has the pipeline options.
type ScanConfig struct {
	Workers           int    `toml:"workers"`
	ChunkSizeKB       int    `toml:"chunk_size_kb"`
	SequentialChunkKB int    `toml:"sequential_chunk_kb"`
	ParallelChunkKB   int    `toml:"parallel_chunk_kb"`
	TopK              int    `toml:"top_k"`
	Mode              string `toml:"mode"`
	BoundaryLimit     int    `toml:"boundary_limit"`
}

// CacheConfig sizes the per worker encoder cache.
type CacheConfig struct {
	Size int `toml:"size"`
}

// CliConfig holds cli output options.
type CliConfig struct {
	Color bool `toml:"color"`
	JSON  bool `toml:"json"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Scan: ScanConfig{
			Workers:           1,
			ChunkSizeKB:       0,
			SequentialChunkKB: scan.SequentialChunkSize / 1024,
			ParallelChunkKB:   scan.ParallelChunkSize / 1024,
			TopK:              5,
			Mode:              string(scan.ModeRank),
			BoundaryLimit:     250,
		},
		Cache: CacheConfig{
			Size: scan.DefaultCacheSize,
		},
		CLI: CliConfig{
			Color: true,
			JSON:  false,
		},
	}
}

// GetConfigDir returns the config directory with fallback priority:
// 1. [UserConfigDir]/wordfind
// 2. Current executable dir
func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err == nil {
		primaryPath := filepath.Join(configDir, "wordfind")
		if result := utils.CheckDirStatus(primaryPath); result.Writable {
			return primaryPath, nil
		}
	} else {
		log.Debugf("No user config dir: %v", err)
	}
	execDir, err := utils.GetExecutableDir()
	if err != nil {
		log.Errorf("Failed to get executable directory: %v", err)
		return "", err
	}
	return execDir, nil
}

// GetDefaultConfigPath returns the default path for config.toml
func GetDefaultConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.toml"), nil
}

// LoadConfigWithPriority loads config with priority:
// 1. Custom path from --config flag
// 2. Default path: [UserConfigDir]/wordfind/config.toml
// 3. Builtin defaults
func LoadConfigWithPriority(customConfigPath string) (*Config, string, error) {
	if customConfigPath != "" {
		if _, statErr := os.Stat(customConfigPath); statErr == nil {
			config, err := LoadConfig(customConfigPath)
			if err != nil {
				log.Warnf("Failed to load custom config from %s: %v. Trying default path...", customConfigPath, err)
			} else {
				log.Debugf("Loaded config from custom path: %s", customConfigPath)
				return config, customConfigPath, nil
			}
		} else {
			log.Warnf("Custom config file not found at %s: %v. Trying default path...", customConfigPath, statErr)
		}
	}
	defaultPath, err := GetDefaultConfigPath()
	if err != nil {
		log.Warnf("Failed to determine default config path: %v. Using built-in defaults...", err)
		return DefaultConfig(), "", nil
	}

	config, err := InitConfig(defaultPath)
	if err != nil {
		log.Warnf("Failed to load/create config at default path %s: %v. Using builtin defaults...", defaultPath, err)
		return DefaultConfig(), "", nil
	}
	log.Debugf("Loaded config from default path: %s", defaultPath)
	return config, defaultPath, nil
}

// InitConfig loads config from file or creates default if missing
func InitConfig(configPath string) (*Config, error) {
	configDir := filepath.Dir(configPath)

	if err := utils.EnsureDir(configDir); err != nil {
		log.Warnf("Failed to create config directory %s: %v. Using built-in defaults...", configDir, err)
		return DefaultConfig(), nil
	}

	if !utils.FileExists(configPath) {
		config := DefaultConfig()
		if err := SaveConfig(config, configPath); err != nil {
			log.Warnf("Failed to create default config file at %s: %v. Using built-in defaults...", configPath, err)
			return DefaultConfig(), nil
		}
		log.Debugf("Created default config file at: %s", configPath)
		return config, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig loads from a TOML file
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if err := utils.LoadTOMLFile(configPath, config); err != nil {
		return tryPartialParse(configPath)
	}
	return config, nil
}

// tryPartialParse attempts to parse a TOML file
func tryPartialParse(configPath string) (*Config, error) {
	config := DefaultConfig()

	tempConfig, err := utils.ParseTOMLWithRecovery(configPath)
	if err != nil {
		log.Warnf("Could not parse any valid configuration from %s: %v. Using all defaults.", configPath, err)
		return config, nil
	}

	if scanSection, ok := utils.ExtractSection(tempConfig, "scan"); ok {
		extractScanConfig(scanSection, &config.Scan)
	}
	if cacheSection, ok := utils.ExtractSection(tempConfig, "cache"); ok {
		if val, ok := utils.ExtractInt64(cacheSection, "size"); ok {
			config.Cache.Size = val
		}
	}
	if cliSection, ok := utils.ExtractSection(tempConfig, "cli"); ok {
		if val, ok := utils.ExtractBool(cliSection, "color"); ok {
			config.CLI.Color = val
		}
		if val, ok := utils.ExtractBool(cliSection, "json"); ok {
			config.CLI.JSON = val
		}
	}
	return config, nil
}

// extractScanConfig extracts scan configuration from a map
func extractScanConfig(data map[string]any, sc *ScanConfig) {
	if val, ok := utils.ExtractInt64(data, "workers"); ok {
		sc.Workers = val
	}
	if val, ok := utils.ExtractInt64(data, "chunk_size_kb"); ok {
		sc.ChunkSizeKB = val
	}
	if val, ok := utils.ExtractInt64(data, "sequential_chunk_kb"); ok {
		sc.SequentialChunkKB = val
	}
	if val, ok := utils.ExtractInt64(data, "parallel_chunk_kb"); ok {
		sc.ParallelChunkKB = val
	}
	if val, ok := utils.ExtractInt64(data, "top_k"); ok {
		sc.TopK = val
	}
	if val, ok := utils.ExtractString(data, "mode"); ok {
		sc.Mode = val
	}
	if val, ok := utils.ExtractInt64(data, "boundary_limit"); ok {
		sc.BoundaryLimit = val
	}
}

// ApplyEnv loads an optional .env file from envFile (skipped when empty or
// missing) and applies WORDFIND_* overrides from the environment.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" && utils.FileExists(envFile) {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		log.Debugf("Loaded environment from %s", envFile)
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvWorkers, &c.Scan.Workers},
		{EnvChunkKB, &c.Scan.ChunkSizeKB},
		{EnvTopK, &c.Scan.TopK},
		{EnvCacheSize, &c.Cache.Size},
	}
	for _, v := range ints {
		raw, ok := os.LookupEnv(v.key)
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s: %w", v.key, err)
		}
		*v.dst = n
	}
	if mode, ok := os.LookupEnv(EnvMode); ok && strings.TrimSpace(mode) != "" {
		c.Scan.Mode = strings.TrimSpace(mode)
	}
	return nil
}

// Validate rejects values the scanner cannot work with.
func (c *Config) Validate() error {
	if c.Scan.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.Scan.TopK)
	}
	if c.Scan.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Scan.Workers)
	}
	if c.Scan.ChunkSizeKB < 0 {
		return fmt.Errorf("chunk_size_kb cannot be negative, got %d", c.Scan.ChunkSizeKB)
	}
	switch scan.Mode(c.Scan.Mode) {
	case scan.ModeRank, scan.ModeWords:
	default:
		return fmt.Errorf("unknown mode %q (want %q or %q)", c.Scan.Mode, scan.ModeRank, scan.ModeWords)
	}
	return nil
}

// ChunkBytes resolves the chunk size in bytes for the configured worker count.
// An explicit chunk_size_kb wins over the per mode defaults.
func (c *Config) ChunkBytes() int {
	kb := c.Scan.ChunkSizeKB
	if kb <= 0 {
		kb = c.Scan.SequentialChunkKB
		if c.Scan.Workers > 1 {
			kb = c.Scan.ParallelChunkKB
		}
	}
	return kb * 1024
}

// ScanOptions converts the config into scanner options.
func (c *Config) ScanOptions() scan.Options {
	return scan.Options{
		Workers:       c.Scan.Workers,
		ChunkSize:     c.ChunkBytes(),
		TopK:          c.Scan.TopK,
		Mode:          scan.Mode(c.Scan.Mode),
		BoundaryLimit: c.Scan.BoundaryLimit,
		CacheSize:     c.Cache.Size,
	}
}

// SaveConfig saves into a TOML file
func SaveConfig(config *Config, configPath string) error {
	return utils.SaveTOMLFile(config, configPath)
}
