package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/cache"
	"github.com/desertthunder/rmp/internal/feed"
	"github.com/desertthunder/rmp/internal/services"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/desertthunder/rmp/internal/tasks"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(".env"); err != nil {
		logger.Warn("ignoring .env", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	config.ApplyEnv()
	shared.SetLogLevel(logger, shared.ParseLogLevel(config.Log.Level))

	if err := config.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore := newCache(ctx, config.Cache, logger)
	defer closeStore()

	reddit := services.NewRedditService(config.Reddit, nil, services.PerMinute(config.Reddit.RequestsPerMinute))
	fetcher := feed.NewCachedFetcher(reddit, feed.FetcherOpts{
		Cache:       store,
		PostsTTL:    config.Cache.PostsTTLDuration(),
		CommentsTTL: config.Cache.CommentsTTLDuration(),
		Retry:       feed.RetryPolicy{Attempts: config.Retry.Attempts, Backoff: config.Retry.Backoff()},
		Logger:      shared.WithLogger(logger, "component", "fetcher"),
	})
	engine := tasks.NewFeedEngine(fetcher, tasks.EngineOpts{
		Cache:     store,
		SearchTTL: config.Cache.SearchTTLDuration(),
		Logger:    shared.WithLogger(logger, "component", "engine"),
	})

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Fetcher:    fetcher,
		Engine:     engine,
		SoundCloud: services.NewSoundCloudService(config.SoundCloud, nil, nil),
		Auth:       services.NewRedditAuth(config.Reddit),
		Logger:     logger,
	})
	defer runner.Close()

	app := &cli.Command{
		Name:     "rmp",
		Usage:    "Browse and play music shared on Reddit",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Fatalf("application error: %v", err)
	}
}

// newCache selects the shared Redis cache when configured and reachable, falling back to memory.
func newCache(ctx context.Context, cfg shared.CacheConfig, logger *log.Logger) (cache.Cache, func()) {
	if cfg.RedisURL == "" {
		return cache.NewMemory(), func() {}
	}

	rdb, err := cache.DialRedis(ctx, cfg.RedisURL, "rmp:")
	if err != nil {
		logger.Warn("redis unavailable, using in-process cache", "error", err)
		return cache.NewMemory(), func() {}
	}
	logger.Debug("using redis cache")
	return rdb, func() { rdb.Close() }
}
