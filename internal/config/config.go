package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

const (
	defaultPort                  = 8080
	defaultDataDir               = "data"
	defaultCacheDir              = "cache"
	defaultMaxConcurrentSessions = 2
	defaultHTTPTimeout           = 30 * time.Second
	defaultLogLevel              = "info"
)

// Config describes runtime configuration for the launcher hosts.
type Config struct {
	Port                  int           `yaml:"port"`
	DataDir               string        `yaml:"data_dir"`
	CacheDir              string        `yaml:"cache_dir"`
	MaxConcurrentSessions int           `yaml:"max_concurrent_sessions"`
	HTTPTimeout           time.Duration `yaml:"http_timeout"`
	LogLevel              string        `yaml:"log_level"`
	LogFile               string        `yaml:"log_file"`
	LaunchCommand         string        `yaml:"launch_command"`
	LaunchArgs            []string      `yaml:"launch_args"`
}

func Default() Config {
	return Config{
		Port:                  defaultPort,
		DataDir:               defaultDataDir,
		CacheDir:              defaultCacheDir,
		MaxConcurrentSessions: defaultMaxConcurrentSessions,
		HTTPTimeout:           defaultHTTPTimeout,
		LogLevel:              defaultLogLevel,
	}
}

// Load reads YAML config from the provided path. If the file does not exist
// or is empty, defaults are returned with no error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, errors.New("empty config path")
	}
	fileData, err := os.ReadFile(path) //nolint:gosec // config path is controlled by deployment
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if len(fileData) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(fileData, &cfg); err != nil {
		return cfg, fmt.Errorf("parse yaml: %w", err)
	}
	return cfg, cfg.normalize()
}

func (c *Config) normalize() error {
	if c.Port == 0 {
		c.Port = defaultPort
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.CacheDir) == "" {
		c.CacheDir = defaultCacheDir
	}
	if c.HTTPTimeout == 0 {
		c.HTTPTimeout = defaultHTTPTimeout
	}
	// validate concurrency explicitly: values < 1 are not allowed
	if c.MaxConcurrentSessions < 1 {
		return fmt.Errorf("invalid max_concurrent_sessions: %d (must be >= 1)", c.MaxConcurrentSessions)
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("invalid http_timeout: %s", c.HTTPTimeout)
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return nil
}
