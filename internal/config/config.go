package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"conceptsearch/internal/eventbus"
)

// EnvPrefix is the prefix for environment overrides, e.g. CONCEPTSEARCH_BASE_URL
const EnvPrefix = "CONCEPTSEARCH"

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid config")

// Config represents the application configuration
type Config struct {
	Version      int            `mapstructure:"version" toml:"version"`
	BaseURL      string         `mapstructure:"base_url" toml:"base_url"`
	ProfileTypes []string       `mapstructure:"profile_types" toml:"profile_types"`
	DefaultType  string         `mapstructure:"default_type" toml:"default_type"`
	LogFile      string         `mapstructure:"log_file" toml:"log_file"`
	LogLevel     string         `mapstructure:"log_level" toml:"log_level"`
	Search       SearchSettings `mapstructure:"search" toml:"search"`
	Client       ClientSettings `mapstructure:"client" toml:"client"`
	UISettings   UISettings     `mapstructure:"ui" toml:"ui"`
}

// SearchSettings tunes when requests are issued
type SearchSettings struct {
	// MinQueryLength is the shortest non-empty query that is sent to the server
	MinQueryLength int `mapstructure:"min_query_length" toml:"min_query_length"`
	// ScrollThreshold is how many lines from the bottom still count as "at the bottom"
	ScrollThreshold int `mapstructure:"scroll_threshold" toml:"scroll_threshold"`
}

// ClientSettings holds settings for the profile listing client
type ClientSettings struct {
	TimeoutSeconds    int    `mapstructure:"timeout_seconds" toml:"timeout_seconds"`
	RequestsPerSecond int    `mapstructure:"requests_per_second" toml:"requests_per_second"`
	BurstLimit        int    `mapstructure:"burst_limit" toml:"burst_limit"`
	CacheSize         int    `mapstructure:"cache_size" toml:"cache_size"`
	CacheTTLSeconds   int    `mapstructure:"cache_ttl_seconds" toml:"cache_ttl_seconds"`
	UserAgent         string `mapstructure:"user_agent" toml:"user_agent"`
}

// UISettings represents UI-related configuration
type UISettings struct {
	ShowSummaries bool `mapstructure:"show_summaries" toml:"show_summaries"`
	ShowURIs      bool `mapstructure:"show_uris" toml:"show_uris"`
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	BindFlags(fs *pflag.FlagSet) error
	Path() string
	Exists() bool
}

// configService is the concrete implementation
type configService struct {
	bus      eventbus.EventBus
	filePath string
	v        *viper.Viper
}

// NewConfigService creates a config service reading path. An empty path selects
// config.toml in the user config directory.
func NewConfigService(path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &configService{
		filePath: path,
		v:        v,
	}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus, path string) ConfigService {
	cs := NewConfigService(path).(*configService)
	cs.bus = bus
	return cs
}

// DefaultPath returns the per-user config file location
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "conceptsearch", "config.toml")
}

// flagKeys maps command line flags to config keys
var flagKeys = map[string]string{
	"base-url":  "base_url",
	"type":      "default_type",
	"log-file":  "log_file",
	"log-level": "log_level",
}

// BindFlags lets explicitly set flags override file and environment values.
// Flags missing from fs are skipped.
func (cs *configService) BindFlags(fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := cs.v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// Path returns the file the service loads from and saves to
func (cs *configService) Path() string {
	return cs.filePath
}

// Exists reports whether the config file is present
func (cs *configService) Exists() bool {
	_, err := os.Stat(cs.filePath)
	return err == nil
}

// Load merges defaults, the config file (if any), environment and bound flags
func (cs *configService) Load() (*Config, error) {
	if cs.Exists() {
		cs.v.SetConfigFile(cs.filePath)
		cs.v.SetConfigType("toml")
		if err := cs.v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := cs.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{
			Path:    cs.filePath,
			BaseURL: cfg.BaseURL,
		})
	}

	return &cfg, nil
}

// Save saves the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath reads a single TOML file on top of the defaults, without
// environment or flag overrides
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write next to the target and rename so readers never see a partial file
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace config file: %w", err)
	}

	slog.Debug("config written", "path", path)
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version:      1,
		BaseURL:      "http://localhost:8000",
		ProfileTypes: []string{"people", "places", "institutions", "organisms"},
		DefaultType:  "people",
		LogFile:      "conceptsearch.log",
		LogLevel:     "info",
		Search: SearchSettings{
			MinQueryLength:  3,
			ScrollThreshold: 1,
		},
		Client: ClientSettings{
			TimeoutSeconds:    30,
			RequestsPerSecond: 5,
			BurstLimit:        10,
			CacheSize:         256,
			CacheTTLSeconds:   300,
			UserAgent:         "conceptsearch/1",
		},
		UISettings: UISettings{
			ShowSummaries: true,
		},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("version", d.Version)
	v.SetDefault("base_url", d.BaseURL)
	v.SetDefault("profile_types", d.ProfileTypes)
	v.SetDefault("default_type", d.DefaultType)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("search.min_query_length", d.Search.MinQueryLength)
	v.SetDefault("search.scroll_threshold", d.Search.ScrollThreshold)
	v.SetDefault("client.timeout_seconds", d.Client.TimeoutSeconds)
	v.SetDefault("client.requests_per_second", d.Client.RequestsPerSecond)
	v.SetDefault("client.burst_limit", d.Client.BurstLimit)
	v.SetDefault("client.cache_size", d.Client.CacheSize)
	v.SetDefault("client.cache_ttl_seconds", d.Client.CacheTTLSeconds)
	v.SetDefault("client.user_agent", d.Client.UserAgent)
	v.SetDefault("ui.show_summaries", d.UISettings.ShowSummaries)
	v.SetDefault("ui.show_uris", d.UISettings.ShowURIs)
}

// normalize trims user supplied values
func (c *Config) normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	types := make([]string, 0, len(c.ProfileTypes))
	for _, t := range c.ProfileTypes {
		if t = strings.TrimSpace(t); t != "" && !slices.Contains(types, t) {
			types = append(types, t)
		}
	}
	c.ProfileTypes = types
	c.DefaultType = strings.TrimSpace(c.DefaultType)
	if c.DefaultType == "" && len(c.ProfileTypes) > 0 {
		c.DefaultType = c.ProfileTypes[0]
	}
}

// Validate checks the configuration for values the client cannot work with
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q is not an absolute URL", ErrInvalidConfig, c.BaseURL)
	}
	if len(c.ProfileTypes) == 0 {
		return fmt.Errorf("%w: profile_types must not be empty", ErrInvalidConfig)
	}
	if !slices.Contains(c.ProfileTypes, c.DefaultType) {
		return fmt.Errorf("%w: default_type %q is not one of %v", ErrInvalidConfig, c.DefaultType, c.ProfileTypes)
	}
	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("%w: search.min_query_length must be at least 1", ErrInvalidConfig)
	}
	if c.Search.ScrollThreshold < 0 {
		return fmt.Errorf("%w: search.scroll_threshold must not be negative", ErrInvalidConfig)
	}
	if c.Client.TimeoutSeconds < 0 || c.Client.CacheSize < 0 || c.Client.CacheTTLSeconds < 0 {
		return fmt.Errorf("%w: client timeouts and cache settings must not be negative", ErrInvalidConfig)
	}
	if c.Client.RequestsPerSecond > 0 && c.Client.BurstLimit < 1 {
		return fmt.Errorf("%w: client.burst_limit must be at least 1 when rate limiting", ErrInvalidConfig)
	}
	return nil
}

// SlogLevel parses the configured log level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}
