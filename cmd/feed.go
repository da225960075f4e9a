package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/rmp/internal/catalog"
	"github.com/desertthunder/rmp/internal/filter"
	"github.com/desertthunder/rmp/internal/formatter"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/repositories"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/desertthunder/rmp/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Feed collects one or more listing pages, filters them, and prints or exports the tracks.
func (r *Runner) Feed(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: feed engine not initialized", shared.ErrServiceUnavailable)
	}

	q, err := feedQuery(cmd)
	if err != nil {
		return err
	}
	spec, err := filterSpec(cmd)
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	r.logger.Info("collecting feed", "subreddit", q.Subreddit, "sort", q.Sort, "window", q.Window, "pages", cmd.Int("pages"))

	result, err := r.collect(ctx, tasks.CollectOpts{Query: q, Pages: int(cmd.Int("pages")), Filter: spec})
	if err != nil {
		return fmt.Errorf("failed to collect r/%s: %w", q.Subreddit, err)
	}
	if result.Skipped > 0 {
		r.logger.Warn("skipped posts that could not be read", "count", result.Skipped)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	data, err := formatter.Export(format, "r/"+q.Subreddit, result.Tracks)
	if err != nil {
		return err
	}

	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteExport(out, format, data)
		if err != nil {
			return err
		}
		r.logger.Info("export written", "path", path, "tracks", len(result.Tracks))
		return r.writePlain("✓ Exported %d tracks to %s\n", len(result.Tracks), path)
	}
	return r.writeBytes(data)
}

// collect runs the engine while logging its progress updates.
func (r *Runner) collect(ctx context.Context, opts tasks.CollectOpts) (*tasks.CollectResult, error) {
	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase.String(), "step", update.Step, "total", update.Total)
		}
	}()

	result, err := r.engine.Collect(ctx, progress, opts)
	close(progress)
	<-done
	return result, err
}

// Search prints the tracks of a subreddit that match a title query, highest score first.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: feed engine not initialized", shared.ErrServiceUnavailable)
	}

	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: search query is required", shared.ErrMissingArgument)
	}
	sort, err := models.ParseSort(cmd.String("sort"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	sortBy, err := filter.ParseSortKey(cmd.String("sort-by"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	subreddit := cmd.String("subreddit")
	r.logger.Infof("searching r/%s for %q", subreddit, query)

	result, err := r.engine.Search(ctx, nil, tasks.SearchOpts{Subreddit: subreddit, Sort: sort, Query: query, SortBy: sortBy})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if result.Cached {
		r.logger.Debug("search served from cache", "query", query)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}
	if len(result.Results) == 0 {
		return r.writePlain("No tracks in r/%s match %q\n", subreddit, query)
	}

	data, err := formatter.ExportToText(fmt.Sprintf("r/%s matching %q", subreddit, query), result.Results)
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}

// Comments prints the flattened comment thread of a post.
func (r *Runner) Comments(ctx context.Context, cmd *cli.Command) error {
	if r.engine == nil {
		return fmt.Errorf("%w: feed engine not initialized", shared.ErrServiceUnavailable)
	}

	postID := strings.TrimPrefix(cmd.StringArg("post-id"), "t3_")
	if postID == "" {
		return fmt.Errorf("%w: post id is required", shared.ErrMissingArgument)
	}

	track := models.Track{
		ID:        postID,
		Title:     fmt.Sprintf("r/%s post %s", cmd.String("subreddit"), postID),
		Subreddit: cmd.String("subreddit"),
		Permalink: fmt.Sprintf("/r/%s/comments/%s/", cmd.String("subreddit"), postID),
	}

	result, err := r.engine.Thread(ctx, nil, track, int(cmd.Int("limit")))
	if err != nil {
		return fmt.Errorf("failed to load comments: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, true)
	}

	data := formatter.ExportThread(result.Track, result.Entries, time.Now())
	if out := cmd.String("output"); out != "" {
		path, err := formatter.WriteExport(out, formatter.FormatText, data)
		if err != nil {
			return err
		}
		return r.writePlain("✓ Exported %d of %d comments to %s\n", len(result.Entries), result.Total, path)
	}
	return r.writeBytes(data)
}

// Resolve prints the SoundCloud metadata for a track URL.
func (r *Runner) Resolve(ctx context.Context, cmd *cli.Command) error {
	if r.soundcloud == nil {
		return fmt.Errorf("%w: SoundCloud service not initialized", shared.ErrServiceUnavailable)
	}

	trackURL := cmd.StringArg("url")
	if trackURL == "" {
		return fmt.Errorf("%w: track URL is required", shared.ErrMissingArgument)
	}

	info, err := r.soundcloud.Resolve(ctx, trackURL)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", trackURL, err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(info, true)
	}

	r.writePlainHeader(info.Title)
	r.writePlain("Artist:   %s\n", info.Artist)
	r.writePlain("Duration: %s\n", shared.FormatDuration(info.Duration))
	r.writePlain("URL:      %s\n", info.URL)
	if info.Artwork != "" {
		r.writePlain("Artwork:  %s\n", info.Artwork)
	}
	return nil
}

// Subreddits lists the curated catalog, optionally narrowed by a query.
func (r *Runner) Subreddits(ctx context.Context, cmd *cli.Command) error {
	categories := catalog.Find(cmd.StringArg("query"))

	if cmd.Bool("json") {
		return r.writeJSON(categories, true)
	}
	if len(categories) == 0 {
		return r.writePlain("No subreddits match %q\n", cmd.StringArg("query"))
	}

	for _, c := range categories {
		r.writePlain("%s\n", c.Name)
		for _, s := range c.Subreddits {
			if s.Custom() {
				r.writePlain("  %s (pass --subreddit to any command)\n", s.Name)
				continue
			}
			r.writePlain("  %s\n", s.Path)
		}
	}
	return nil
}

// History prints, or clears, the tracks played in the TUI.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	history := repositories.NewHistoryRepository(db)

	if cmd.Bool("clear") {
		if err := history.Clear(); err != nil {
			return err
		}
		return r.writePlain("✓ Play history cleared\n")
	}

	entries, err := history.Recent(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}
	if len(entries) == 0 {
		return r.writePlain("Nothing played yet\n")
	}

	now := time.Now()
	for i, e := range entries {
		r.writePlain("%d. %s (r/%s, %s)\n", i+1, e.Title, e.Subreddit, shared.FormatTimeAgo(e.PlayedAt, now))
	}
	return nil
}

func feedQuery(cmd *cli.Command) (models.FeedQuery, error) {
	sort, err := models.ParseSort(cmd.String("sort"))
	if err != nil {
		return models.FeedQuery{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	window, err := models.ParseWindow(cmd.String("time"))
	if err != nil {
		return models.FeedQuery{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}

	limit := int(cmd.Int("limit"))
	if limit < 1 || limit > 100 {
		return models.FeedQuery{}, fmt.Errorf("%w: limit must be between 1 and 100", shared.ErrInvalidArgument)
	}

	return models.FeedQuery{
		Subreddit: cmd.String("subreddit"),
		Sort:      sort,
		Window:    window,
		Limit:     limit,
	}, nil
}

// filterSpec builds the post-fetch filter from flags. It returns nil when no filter flag is set.
func filterSpec(cmd *cli.Command) (*filter.Spec, error) {
	spec, err := filter.FromParams(func(name string) string {
		if !cmd.IsSet(name) {
			return ""
		}
		return fmt.Sprint(cmd.Value(name))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	return spec, nil
}
