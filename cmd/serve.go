package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/rmp/internal/server"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON API until the context is cancelled.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if r.fetcher == nil {
		return fmt.Errorf("%w: feed fetcher not initialized", shared.ErrServiceUnavailable)
	}

	cfg := r.config.Server
	cfg.Host = cmd.String("host")
	cfg.Port = int(cmd.Int("port"))

	opts := server.APIOpts{
		Fetcher:          r.fetcher,
		Engine:           r.engine,
		DefaultSubreddit: r.config.Reddit.DefaultSubreddit,
		DefaultLimit:     r.config.Reddit.PageSize,
		Logger:           shared.WithLogger(r.logger, "component", "server"),
	}
	if r.soundcloud != nil {
		opts.Resolver = r.soundcloud
	}

	return server.Serve(ctx, cfg.Addr(), server.NewAPIRouter(opts), r.logger)
}
