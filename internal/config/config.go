// Package config resolves bbfs settings. Layers, lowest precedence first:
// built-in defaults, .bbfs/config.yaml, a .env file in the project root,
// then the process environment. Unusable values fall back to the default
// for that key rather than failing startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/corey/bbfs/internal/domain/bbfs"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvTopN           = "BBFS_TOP_N"
	EnvHTTPPort       = "BBFS_HTTP_PORT"
	EnvLogLevel       = "BBFS_LOG_LEVEL"
	EnvUploadTTL      = "BBFS_UPLOAD_TTL"
	EnvMaxUploadBytes = "BBFS_MAX_UPLOAD_BYTES"
	EnvInboxDir       = "BBFS_INBOX_DIR"
	EnvBatchWorkers   = "BBFS_BATCH_WORKERS"
)

// Default values
const (
	defaultLogLevel       = "info"
	defaultUploadTTL      = time.Hour
	defaultMaxUploadBytes = 5 << 20
	defaultBatchWorkers   = 4
)

// Config holds the resolved settings.
type Config struct {
	TopN           int           `yaml:"top_n"`
	HTTPPort       int           `yaml:"http_port"` // 0 = derived from project root
	LogLevel       string        `yaml:"log_level"`
	UploadTTL      time.Duration `yaml:"upload_ttl"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	InboxDir       string        `yaml:"inbox_dir"` // empty = .bbfs/inbox
	BatchWorkers   int           `yaml:"batch_workers"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TopN:           bbfs.DefaultTopN,
		LogLevel:       defaultLogLevel,
		UploadTTL:      defaultUploadTTL,
		MaxUploadBytes: defaultMaxUploadBytes,
		BatchWorkers:   defaultBatchWorkers,
	}
}

// Load resolves the configuration for a project. configPath is the YAML file
// (missing is fine); envPath is an optional .env file (missing is fine).
// A YAML file that exists but cannot be parsed is an error.
func Load(configPath, envPath string) (Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Default(), fmt.Errorf("parse %s: %w", configPath, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return Default(), fmt.Errorf("read %s: %w", configPath, err)
		}
	}

	fileEnv := map[string]string{}
	if envPath != "" {
		if vals, err := godotenv.Read(envPath); err == nil {
			fileEnv = vals
		}
	}
	lookup := func(key string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fileEnv[key]
	}

	cfg.TopN = envInt(lookup(EnvTopN), cfg.TopN)
	cfg.HTTPPort = envInt(lookup(EnvHTTPPort), cfg.HTTPPort)
	cfg.LogLevel = envString(lookup(EnvLogLevel), cfg.LogLevel)
	cfg.UploadTTL = envDuration(lookup(EnvUploadTTL), cfg.UploadTTL)
	cfg.MaxUploadBytes = int64(envInt(lookup(EnvMaxUploadBytes), int(cfg.MaxUploadBytes)))
	cfg.InboxDir = envString(lookup(EnvInboxDir), cfg.InboxDir)
	cfg.BatchWorkers = envInt(lookup(EnvBatchWorkers), cfg.BatchWorkers)

	cfg.normalize()
	return cfg, nil
}

// normalize replaces unusable values with defaults.
func (c *Config) normalize() {
	d := Default()
	if c.TopN <= 0 {
		c.TopN = d.TopN
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		c.HTTPPort = 0
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
		c.LogLevel = strings.ToLower(c.LogLevel)
	default:
		c.LogLevel = d.LogLevel
	}
	if c.UploadTTL < 0 {
		c.UploadTTL = d.UploadTTL
	}
	if c.MaxUploadBytes < 0 {
		c.MaxUploadBytes = d.MaxUploadBytes
	}
	if c.BatchWorkers <= 0 {
		c.BatchWorkers = d.BatchWorkers
	}
}

// Write saves cfg as YAML, creating parent directories.
func Write(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func envString(value, def string) string {
	if value = strings.TrimSpace(value); value != "" {
		return value
	}
	return def
}

func envInt(value string, def int) int {
	if value = strings.TrimSpace(value); value == "" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return n
}

// envDuration accepts "90m", "1h" or a bare number of seconds.
func envDuration(value string, def time.Duration) time.Duration {
	if value = strings.TrimSpace(value); value == "" {
		return def
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
