package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Reddit     RedditConfig     `toml:"reddit"`
	SoundCloud SoundCloudConfig `toml:"soundcloud"`
	Cache      CacheConfig      `toml:"cache"`
	Retry      RetryConfig      `toml:"retry"`
	Database   DatabaseConfig   `toml:"database"`
	Server     ServerConfig     `toml:"server"`
	Player     PlayerConfig     `toml:"player"`
	Log        LogConfig        `toml:"log"`
}

// RedditConfig contains feed source and OAuth client settings.
type RedditConfig struct {
	BaseURL           string `toml:"base_url"`
	AuthURL           string `toml:"auth_url"`
	UserAgent         string `toml:"user_agent"`
	ClientID          string `toml:"client_id"`
	RedirectURI       string `toml:"redirect_uri"`
	DefaultSubreddit  string `toml:"default_subreddit"`
	PageSize          int    `toml:"page_size"`
	CommentLimit      int    `toml:"comment_limit"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
}

// SoundCloudConfig contains media resolution settings.
type SoundCloudConfig struct {
	APIURL   string `toml:"api_url"`
	ClientID string `toml:"client_id"`
}

// CacheConfig contains response cache lifetimes in seconds.
//
// An empty RedisURL selects the in-process cache.
type CacheConfig struct {
	PostsTTL    int    `toml:"posts_ttl"`
	CommentsTTL int    `toml:"comments_ttl"`
	SearchTTL   int    `toml:"search_ttl"`
	RedisURL    string `toml:"redis_url"`
}

// RetryConfig controls the bounded retry applied to transient fetch failures.
type RetryConfig struct {
	Attempts  int `toml:"attempts"`
	BackoffMS int `toml:"backoff_ms"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// PlayerConfig controls the playback adapter used by the TUI.
type PlayerConfig struct {
	OpenBrowser bool `toml:"open_browser"`
	Volume      int  `toml:"volume"`
}

// LogConfig controls logger level and the TUI log file.
type LogConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// PostsTTLDuration returns the feed page cache lifetime.
func (c CacheConfig) PostsTTLDuration() time.Duration { return seconds(c.PostsTTL) }

// CommentsTTLDuration returns the comment thread cache lifetime.
func (c CacheConfig) CommentsTTLDuration() time.Duration { return seconds(c.CommentsTTL) }

// SearchTTLDuration returns the search result cache lifetime.
func (c CacheConfig) SearchTTLDuration() time.Duration { return seconds(c.SearchTTL) }

// Backoff returns the fixed delay between retry attempts.
func (c RetryConfig) Backoff() time.Duration {
	return time.Duration(c.BackoffMS) * time.Millisecond
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// Addr returns the host:port pair the HTTP server listens on.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Values missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnv reads KEY=VALUE pairs from the given dotenv files into the process environment.
//
// Missing files are ignored so a bare checkout still runs with config.toml alone.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("%w: failed to load %s: %v", ErrInvalidConfig, p, err)
		}
	}
	return nil
}

// ApplyEnv overrides credentials and connection strings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("REDDIT_CLIENT_ID"); v != "" {
		c.Reddit.ClientID = v
	}
	if v := os.Getenv("SOUNDCLOUD_CLIENT_ID"); v != "" {
		c.SoundCloud.ClientID = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		c.Cache.RedisURL = v
	}
	if v := os.Getenv("RMP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate reports settings the pipeline cannot run without.
func (c *Config) Validate() error {
	switch {
	case c.Reddit.BaseURL == "":
		return fmt.Errorf("%w: reddit.base_url is required", ErrInvalidConfig)
	case c.Reddit.PageSize <= 0 || c.Reddit.PageSize > 100:
		return fmt.Errorf("%w: reddit.page_size must be between 1 and 100", ErrInvalidConfig)
	case c.Retry.Attempts < 1:
		return fmt.Errorf("%w: retry.attempts must be at least 1", ErrInvalidConfig)
	}
	return nil
}
