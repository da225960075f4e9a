package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/cache"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
	"golang.org/x/sync/singleflight"
)

// Fetcher reads listing pages and comment threads.
type Fetcher interface {
	FetchPage(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error)
	FetchThread(ctx context.Context, subreddit, postID string, limit int) ([]models.Comment, error)
}

// RetryPolicy bounds retries of transient failures.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// FetcherOpts configures a [CachedFetcher]. Zero TTLs disable caching for that kind of request.
type FetcherOpts struct {
	Cache       cache.Cache
	PostsTTL    time.Duration
	CommentsTTL time.Duration
	Retry       RetryPolicy
	Timeout     time.Duration // Bound on one shared upstream fetch, retries included
	Logger      *log.Logger
}

const defaultFetchTimeout = time.Minute

// DefaultFetcherOpts mirrors the values in the default configuration.
func DefaultFetcherOpts() FetcherOpts {
	return FetcherOpts{
		PostsTTL:    time.Minute,
		CommentsTTL: 5 * time.Minute,
		Retry:       RetryPolicy{Attempts: 3, Backoff: 5 * time.Second},
		Timeout:     defaultFetchTimeout,
	}
}

// CachedFetcher wraps a [Fetcher] with caching, request coalescing, and retries.
type CachedFetcher struct {
	src    Fetcher
	opts   FetcherOpts
	group  singleflight.Group
	logger *log.Logger
}

// NewCachedFetcher wraps src. A nil cache selects an in-process [cache.Memory].
func NewCachedFetcher(src Fetcher, opts FetcherOpts) *CachedFetcher {
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory()
	}
	if opts.Retry.Attempts < 1 {
		opts.Retry.Attempts = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &CachedFetcher{src: src, opts: opts, logger: opts.Logger}
}

// FetchPage returns a cached page when fresh, otherwise fetches it once for all concurrent callers.
func (f *CachedFetcher) FetchPage(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	key := q.Key()

	var cached models.FeedPage
	if ok, err := cache.GetJSON(ctx, f.opts.Cache, key, &cached); err != nil {
		f.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		f.logger.Debug("cache hit", "key", key)
		return &cached, nil
	}

	v, err := f.coalesce(ctx, key, func(ctx context.Context) (any, error) {
		var page *models.FeedPage
		err := f.retry(ctx, key, func() error {
			var err error
			page, err = f.src.FetchPage(ctx, q)
			return err
		})
		if err != nil {
			return nil, err
		}
		f.store(ctx, key, page, f.opts.PostsTTL)
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.FeedPage), nil
}

// FetchThread is the comment-thread counterpart of FetchPage.
func (f *CachedFetcher) FetchThread(ctx context.Context, subreddit, postID string, limit int) ([]models.Comment, error) {
	key := fmt.Sprintf("comments:%s:%s:%d", models.CanonicalSubreddit(subreddit), postID, limit)

	var cached []models.Comment
	if ok, err := cache.GetJSON(ctx, f.opts.Cache, key, &cached); err != nil {
		f.logger.Warn("cache read failed", "key", key, "error", err)
	} else if ok {
		return cached, nil
	}

	v, err := f.coalesce(ctx, key, func(ctx context.Context) (any, error) {
		var thread []models.Comment
		err := f.retry(ctx, key, func() error {
			var err error
			thread, err = f.src.FetchThread(ctx, subreddit, postID, limit)
			return err
		})
		if err != nil {
			return nil, err
		}
		f.store(ctx, key, thread, f.opts.CommentsTTL)
		return thread, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Comment), nil
}

// Invalidate drops a cached page so the next request goes upstream.
func (f *CachedFetcher) Invalidate(ctx context.Context, q models.FeedQuery) error {
	return f.opts.Cache.Delete(ctx, q.Key())
}

// coalesce runs fetch once for all concurrent callers of key.
//
// The shared fetch is detached from the caller that started it and bounded by the
// fetcher timeout, so one caller giving up does not fail the others. Each caller
// still returns as soon as its own ctx ends.
func (f *CachedFetcher) coalesce(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	ch := f.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), f.opts.Timeout)
		defer cancel()
		return fetch(fetchCtx)
	})

	select {
	case res := <-ch:
		if res.Shared {
			f.logger.Debug("coalesced request", "key", key)
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %w", shared.ErrFetchFailed, key, ctx.Err())
	}
}

func (f *CachedFetcher) store(ctx context.Context, key string, value any, ttl time.Duration) {
	if err := cache.SetJSON(ctx, f.opts.Cache, key, value, ttl); err != nil {
		f.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// retry runs op until it succeeds, fails permanently, or attempts run out.
func (f *CachedFetcher) retry(ctx context.Context, key string, op func() error) error {
	for attempt := 1; ; attempt++ {
		err := op()
		if err == nil || !shared.IsTransient(err) || attempt >= f.opts.Retry.Attempts {
			return err
		}

		f.logger.Warn("transient fetch failure, retrying", "key", key, "attempt", attempt, "error", err)
		timer := time.NewTimer(f.opts.Retry.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %v", shared.ErrFetchFailed, ctx.Err())
		case <-timer.C:
		}
	}
}
