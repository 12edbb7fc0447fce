// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package config loads config.toml and environment overrides into
// domain.Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/autobrr/marquee/internal/domain"
	"github.com/autobrr/marquee/pkg/debounce"
)

const (
	EnvPrefix         = "MARQUEE__"
	configFileName    = "config.toml"
	databaseFileName  = "marquee.db"
	posterDirName     = "posters"
	defaultLogLevel   = "INFO"
	defaultMaxSize    = 50
	defaultMaxBackups = 3
	reloadDelay       = 250 * time.Millisecond
)

// keys lists every config key. Each one can be overridden from the
// environment as MARQUEE__<UPPER_SNAKE_KEY>, e.g. MARQUEE__DATABASE_PATH.
var keys = []string{
	"logLevel", "logPath", "logMaxSize", "logMaxBackups",
	"dataDir", "databasePath", "posterDir",
	"preferredLang", "minConfidence",
	"fetchConcurrency", "httpTimeout", "providerIntervalMs", "rateLimitMaxWait",
	"tmdbApiKey", "fanartApiKey", "rawgApiKey", "comicVineApiKey",
	"torznabUrl", "torznabApiKey",
	"metricsTextfile", "notifyUrls",
}

type AppConfig struct {
	Config *domain.Config

	mu         sync.RWMutex
	viper      *viper.Viper
	configPath string
}

// New loads the config at configPath, which may be a file or a directory.
// An empty path uses the default config directory. A missing file is
// created from the default template first.
func New(configPath string) (*AppConfig, error) {
	path, err := resolveConfigPath(configPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := writeDefaultConfig(path); err != nil {
			return nil, err
		}
		log.Info().Str("path", path).Msg("Created default config")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	setDefaults(v)
	for _, key := range keys {
		if err := v.BindEnv(key, EnvPrefix+envName(key)); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	c := &AppConfig{viper: v, configPath: path}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", defaultLogLevel)
	v.SetDefault("logPath", "")
	v.SetDefault("logMaxSize", defaultMaxSize)
	v.SetDefault("logMaxBackups", defaultMaxBackups)
	v.SetDefault("preferredLang", "en")
	v.SetDefault("minConfidence", 0.6)
	v.SetDefault("fetchConcurrency", 4)
	v.SetDefault("httpTimeout", 15)
	v.SetDefault("providerIntervalMs", 250)
	v.SetDefault("rateLimitMaxWait", 60)
}

func (c *AppConfig) load() error {
	var cfg domain.Config
	if err := c.viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}

	dir := filepath.Dir(c.configPath)
	if cfg.DataDir == "" {
		cfg.DataDir = dir
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(dir, databaseFileName)
	}
	if cfg.PosterDir == "" {
		cfg.PosterDir = filepath.Join(cfg.DataDir, posterDirName)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.mu.Lock()
	c.Config = &cfg
	c.mu.Unlock()
	return nil
}

// Current returns the latest loaded config.
func (c *AppConfig) Current() *domain.Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Config
}

func (c *AppConfig) GetDatabasePath() string {
	return c.Current().DatabasePath
}

func (c *AppConfig) GetPosterDir() string {
	return c.Current().PosterDir
}

func (c *AppConfig) ConfigPath() string {
	return c.configPath
}

// Watch reloads the config whenever the file changes and hands the new
// value to onChange. Bursts of file events within reloadDelay cause one
// reload. A file that fails to load keeps the previous config.
func (c *AppConfig) Watch(onChange func(*domain.Config)) {
	reload := debounce.New(reloadDelay)
	c.viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		reload.Do(func() { c.reload(e.Name, onChange) })
	})
	c.viper.WatchConfig()
}

func (c *AppConfig) reload(path string, onChange func(*domain.Config)) {
	if err := c.load(); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Config reload failed, keeping previous config")
		return
	}
	log.Info().Str("path", path).Msg("Config reloaded")
	if onChange != nil {
		onChange(c.Current())
	}
}

// UpdateLogSettings rewrites the log settings in config.toml in place.
func (c *AppConfig) UpdateLogSettings(level, path string, maxSize, maxBackups int) error {
	content, err := os.ReadFile(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	updated := updateLogSettingsInTOML(string(content), level, path, maxSize, maxBackups)
	if err := os.WriteFile(c.configPath, []byte(updated), 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := c.viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to re-read config: %w", err)
	}
	return c.load()
}

func resolveConfigPath(configPath string) (string, error) {
	if configPath == "" {
		configPath = getDefaultConfigDir()
	}
	if info, err := os.Stat(configPath); err == nil && info.IsDir() {
		configPath = filepath.Join(configPath, configFileName)
	} else if filepath.Ext(configPath) == "" {
		configPath = filepath.Join(configPath, configFileName)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return abs, nil
}

// getDefaultConfigDir returns /config in containers that set
// XDG_CONFIG_HOME=/config, else the user config dir.
func getDefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg == "/config" {
		return xdg
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "marquee")
}

// envName turns a camelCase key into UPPER_SNAKE_CASE.
func envName(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) && i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

func writeDefaultConfig(path string) error {
	if err := os.WriteFile(path, []byte(defaultConfigTemplate), 0o600); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

const defaultConfigTemplate = `# config.toml - Auto-generated on first run

# Log file path
# If not defined, logs to stdout
# Optional
#logPath = "log/marquee.log"

# Log rotation
# Maximum log file size in megabytes before rotation
# Default: 50
#logMaxSize = 50

# Number of rotated log files to retain (0 keeps all)
# Default: 3
#logMaxBackups = 3

# Log level
# Default: "INFO"
# Options: "ERROR", "DEBUG", "INFO", "WARN", "TRACE"
logLevel = "INFO"

# Database path
# Default: marquee.db next to this file
#databasePath = ""

# Poster directory
# Default: posters/ inside dataDir
#posterDir = ""

# Poster language asked of providers first
# Default: "en"
#preferredLang = "en"

# Minimum confidence for a catalog hit to count as a match
# Default: 0.6
#minConfidence = 0.6

# Concurrent poster fetches for batch commands
# Default: 4
#fetchConcurrency = 4

# Provider HTTP timeout in seconds
# Default: 15
#httpTimeout = 15

# Minimum delay between requests to one provider in milliseconds
# Default: 250
#providerIntervalMs = 250

# Longest wait for a provider rate limit slot in seconds
# Default: 60
#rateLimitMaxWait = 60

# Provider API keys. Providers without a key are skipped.
#tmdbApiKey = ""
#fanartApiKey = ""
#rawgApiKey = ""
#comicVineApiKey = ""

# Torznab endpoint used by the caps command
#torznabUrl = ""
#torznabApiKey = ""

# Prometheus textfile written after batch commands
#metricsTextfile = ""

# Shoutrrr urls notified when a fetch batch ends
# Example: ["discord://token@id", "ntfy://ntfy.sh/marquee"]
#notifyUrls = []
`
