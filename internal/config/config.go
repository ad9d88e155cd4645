// Package config loads service settings from a YAML file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yumyai/snpseek/internal/util"
)

// Config holds all snpseek configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Export   ExportConfig   `yaml:"export"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig selects the SQL driver. Driver is "sqlite" or "pgx".
type DatabaseConfig struct {
	Driver       string `yaml:"driver"`
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// SearchConfig carries the batching and deadline knobs of the matrix engine.
type SearchConfig struct {
	PageSize       int           `yaml:"page_size"`
	LocusBatchSize int           `yaml:"locus_batch_size"`
	OwnerBatchSize int           `yaml:"owner_batch_size"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LeafTimeout    time.Duration `yaml:"leaf_timeout"`
	Retry          RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	Attempts       int           `yaml:"attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type ExportConfig struct {
	Filename       string        `yaml:"filename"`
	ReferenceLabel string        `yaml:"reference_label"`
	Archive        ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig enables copying rendered exports to an S3-compatible bucket.
// An empty Bucket disables archiving.
type ArchiveConfig struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	PathStyle bool   `yaml:"path_style"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// DefaultConfig returns the settings used when no file or env override is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{Addr: "0.0.0.0:8080"},
		Database: DatabaseConfig{
			Driver:       "sqlite",
			DSN:          "./data/db/snpseek.db",
			MaxOpenConns: 16,
		},
		Search: SearchConfig{
			PageSize:       10,
			LocusBatchSize: 10,
			OwnerBatchSize: 500,
			RequestTimeout: 60 * time.Second,
			LeafTimeout:    15 * time.Second,
			Retry: RetryConfig{
				Attempts:       3,
				InitialBackoff: 100 * time.Millisecond,
				MaxBackoff:     2 * time.Second,
			},
		},
		Export: ExportConfig{
			Filename:       "genotype.xlsx",
			ReferenceLabel: "Japonica Nipponbare",
			Archive:        ArchiveConfig{Region: "us-east-1"},
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("SNPSEEK_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SNPSEEK_DB_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("SNPSEEK_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("SNPSEEK_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SNPSEEK_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SNPSEEK_PAGE_SIZE %q: %w", v, err)
		}
		c.Search.PageSize = n
	}
	if v := os.Getenv("SNPSEEK_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SNPSEEK_REQUEST_TIMEOUT %q: %w", v, err)
		}
		c.Search.RequestTimeout = d
	}
	if v := os.Getenv("SNPSEEK_EXPORT_BUCKET"); v != "" {
		c.Export.Archive.Bucket = v
	}
	if v := os.Getenv("SNPSEEK_EXPORT_ENDPOINT"); v != "" {
		c.Export.Archive.Endpoint = v
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Search.PageSize <= 0 {
		return fmt.Errorf("search.page_size must be positive, got %d", c.Search.PageSize)
	}
	if c.Search.LocusBatchSize <= 0 {
		return fmt.Errorf("search.locus_batch_size must be positive, got %d", c.Search.LocusBatchSize)
	}
	if c.Search.Retry.Attempts <= 0 {
		c.Search.Retry.Attempts = 1
	}
	return nil
}

// SQLiteDirMissing reports whether a file-backed sqlite DSN points into a directory that does not exist.
func (c *Config) SQLiteDirMissing() bool {
	if c.Database.Driver != "sqlite" {
		return false
	}
	dsn := c.Database.DSN
	if dsn == "" || strings.Contains(dsn, ":memory:") {
		return false
	}
	dsn = strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(dsn, '?'); i >= 0 {
		dsn = dsn[:i]
	}
	return !util.DirExists(filepath.Dir(dsn))
}
