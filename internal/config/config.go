// Package config loads runtime configuration for the package storage from a
// TOML file with environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultDBFileName   = "madpkg.db"
	DefaultAPKDirName   = "apks"
	DefaultStorageType  = "db"
	DefaultChunkMaxSize = 1 * 1024 * 1024
	DefaultLogLevel     = "info"

	configPathEnvKey  = "MADPKG_CONFIG"
	dbPathEnvKey      = "MADPKG_DB_PATH"
	storageTypeEnvKey = "MADPKG_STORAGE_TYPE"
	chunkSizeEnvKey   = "MADPKG_CHUNK_MAX_SIZE"
)

// Config defines runtime configuration for the package storage.
type Config struct {
	DBPath       string `toml:"db_path"`
	APKDir       string `toml:"apk_dir"`
	StorageType  string `toml:"storage_type"`
	ChunkMaxSize int    `toml:"chunk_max_size"`
	LogLevel     string `toml:"log_level"`
}

// Default returns default configuration values.
func Default() Config {
	return Config{
		DBPath:       DefaultDBFileName,
		APKDir:       DefaultAPKDirName,
		StorageType:  DefaultStorageType,
		ChunkMaxSize: DefaultChunkMaxSize,
		LogLevel:     DefaultLogLevel,
	}
}

// Load builds the configuration from defaults, an optional TOML file, and
// environment overrides, in that precedence order. An empty path falls back
// to the MADPKG_CONFIG environment variable; if neither names a file, the
// file step is skipped.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv(configPathEnvKey))
	}
	if path != "" {
		loaded, err := loadFileIfExists(path, &cfg)
		if err != nil {
			return cfg, err
		}
		if !loaded {
			return cfg, fmt.Errorf("config file %s not found", path)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise only fail deep inside the
// storage layer.
func (c Config) Validate() error {
	if c.ChunkMaxSize <= 0 {
		return fmt.Errorf("chunk_max_size must be positive, got %d", c.ChunkMaxSize)
	}
	switch c.StorageType {
	case "db", "fs":
	default:
		return fmt.Errorf("storage_type must be db or fs, got %q", c.StorageType)
	}
	return nil
}

func loadFileIfExists(path string, cfg *Config) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return false, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return true, nil
}

func applyEnvOverrides(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv(dbPathEnvKey)); value != "" {
		cfg.DBPath = value
	}
	if value := strings.TrimSpace(os.Getenv(storageTypeEnvKey)); value != "" {
		cfg.StorageType = value
	}
	if value := strings.TrimSpace(os.Getenv(chunkSizeEnvKey)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			cfg.ChunkMaxSize = parsed
		}
	}
}
