package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./rmp.db" {
			t.Errorf("expected database path ./rmp.db, got %s", config.Database.Path)
		}
		if config.Server.Port != 3000 {
			t.Errorf("expected server port 3000, got %d", config.Server.Port)
		}
		if config.Reddit.UserAgent != "MusicPlayer/1.0 (by musicplayer-io)" {
			t.Errorf("unexpected user agent %q", config.Reddit.UserAgent)
		}
		if config.Cache.PostsTTLDuration() != time.Minute {
			t.Errorf("expected posts ttl 1m, got %v", config.Cache.PostsTTLDuration())
		}
		if config.Cache.CommentsTTLDuration() != 5*time.Minute {
			t.Errorf("expected comments ttl 5m, got %v", config.Cache.CommentsTTLDuration())
		}
		if config.Retry.Attempts != 3 || config.Retry.Backoff() != 5*time.Second {
			t.Errorf("unexpected retry policy %+v", config.Retry)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}
		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for omitted keys", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[reddit]
base_url = "http://localhost:9999"
default_subreddit = "idm"

[server]
host = "0.0.0.0"
port = 8080
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.Reddit.DefaultSubreddit != "idm" {
			t.Errorf("expected subreddit idm, got %s", config.Reddit.DefaultSubreddit)
		}
		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Server.Addr())
		}
		if config.Reddit.PageSize != 25 {
			t.Errorf("expected default page size 25, got %d", config.Reddit.PageSize)
		}
	})

	t.Run("LoadConfig rejects malformed toml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[reddit\nbase_url ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		config.Reddit.PageSize = 500
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestEnv(t *testing.T) {
	t.Run("LoadEnv and ApplyEnv", func(t *testing.T) {
		envPath := filepath.Join(t.TempDir(), ".env")
		content := "SOUNDCLOUD_CLIENT_ID=sc-from-file\n"
		if err := os.WriteFile(envPath, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write env file: %v", err)
		}
		t.Setenv("SOUNDCLOUD_CLIENT_ID", "")
		os.Unsetenv("SOUNDCLOUD_CLIENT_ID")
		t.Setenv("REDIS_URL", "redis://localhost:6379/0")

		if err := LoadEnv(envPath, filepath.Join(t.TempDir(), "missing.env")); err != nil {
			t.Fatalf("LoadEnv() error = %v", err)
		}

		config := DefaultConfig()
		config.ApplyEnv()
		if config.SoundCloud.ClientID != "sc-from-file" {
			t.Errorf("expected client id from env file, got %q", config.SoundCloud.ClientID)
		}
		if config.Cache.RedisURL != "redis://localhost:6379/0" {
			t.Errorf("expected redis url from env, got %q", config.Cache.RedisURL)
		}
	})
}
