package tasks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/cache"
	"github.com/desertthunder/rmp/internal/comments"
	"github.com/desertthunder/rmp/internal/feed"
	"github.com/desertthunder/rmp/internal/filter"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/services"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/desertthunder/rmp/internal/tracks"
)

// SearchLimit is the number of posts a search scans.
const SearchLimit = 100

// CollectOpts describes a multi-page collection run.
type CollectOpts struct {
	Query  models.FeedQuery // First page; After may resume a previous run
	Pages  int              // Maximum pages to walk; values below 1 mean one page
	Filter *filter.Spec     // Optional filter pass over the collected tracks
}

// CollectResult contains the tracks gathered by [Engine.Collect].
type CollectResult struct {
	Subreddit string         `json:"subreddit"`
	Tracks    []models.Track `json:"tracks"`
	Pages     int            `json:"pages"`   // Pages actually fetched
	Posts     int            `json:"posts"`   // Posts seen across all pages
	Skipped   int            `json:"skipped"` // Children rejected at the parse boundary
	Dropped   int            `json:"dropped"` // Posts that did not normalize into a track
	After     string         `json:"after,omitempty"`
}

// SearchOpts describes a subreddit search.
type SearchOpts struct {
	Subreddit string
	Sort      models.Sort
	Query     string
	SortBy    filter.SortKey // "" sorts by score, highest first
}

// SearchResult contains the tracks matching a query in the requested order.
type SearchResult struct {
	Query   string         `json:"query"`
	Results []models.Track `json:"results"`
	Cached  bool           `json:"-"`
}

// ThreadResult contains a post's flattened comment thread.
type ThreadResult struct {
	Track   models.Track     `json:"track"`
	Entries []comments.Entry `json:"entries"`
	Total   int              `json:"total"`
}

// Engine defines the long-running feed operations.
type Engine interface {
	// Collect walks a listing page by page and returns the de-duplicated tracks.
	Collect(ctx context.Context, progress chan<- ProgressUpdate, opts CollectOpts) (*CollectResult, error)

	// Search matches a subreddit's all-time listing against a text query.
	Search(ctx context.Context, progress chan<- ProgressUpdate, opts SearchOpts) (*SearchResult, error)

	// Thread fetches and flattens the comments of a track's post.
	Thread(ctx context.Context, progress chan<- ProgressUpdate, track models.Track, limit int) (*ThreadResult, error)
}

// EngineOpts configures a [FeedEngine].
type EngineOpts struct {
	Cache     cache.Cache   // Search result cache; nil selects an in-process cache
	SearchTTL time.Duration // Zero disables search caching
	Logger    *log.Logger
}

// FeedEngine implements [Engine] over a [feed.Fetcher].
type FeedEngine struct {
	fetcher   feed.Fetcher
	cache     cache.Cache
	searchTTL time.Duration
	logger    *log.Logger
}

// NewFeedEngine creates a new FeedEngine reading through fetcher.
func NewFeedEngine(fetcher feed.Fetcher, opts EngineOpts) *FeedEngine {
	if opts.Cache == nil {
		opts.Cache = cache.NewMemory()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &FeedEngine{
		fetcher:   fetcher,
		cache:     opts.Cache,
		searchTTL: opts.SearchTTL,
		logger:    opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *FeedEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Collect walks up to opts.Pages pages, stopping early when the listing runs out.
//
// Tracks already collected are not repeated when a later page returns them again.
// The custom sentinel yields an empty result without fetching.
func (e *FeedEngine) Collect(ctx context.Context, progress chan<- ProgressUpdate, opts CollectOpts) (*CollectResult, error) {
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: feed fetcher not initialized", shared.ErrServiceUnavailable)
	}

	q := opts.Query
	result := &CollectResult{Subreddit: q.Subreddit, Tracks: []models.Track{}}
	if services.IsCustom(q.Subreddit) {
		return result, nil
	}

	pages := max(opts.Pages, 1)
	seen := make(map[string]bool)

	for step := 1; step <= pages; step++ {
		e.sendProgress(progress, fetchingPageUpdate(step, pages, q.Subreddit))

		page, err := e.fetcher.FetchPage(ctx, q)
		if err != nil {
			return nil, fmt.Errorf("page %d of r/%s: %w", step, q.Subreddit, err)
		}

		normalized := tracks.NormalizeAll(page.Items)
		added := 0
		for _, t := range normalized {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			result.Tracks = append(result.Tracks, t)
			added++
		}

		result.Pages++
		result.Posts += len(page.Items)
		result.Skipped += page.Skipped
		result.Dropped += len(page.Items) - len(normalized)
		result.After = page.After

		e.sendProgress(progress, fetchedPageUpdate(step, pages, page, added))
		e.logger.Debug("collected page", "subreddit", q.Subreddit, "page", step, "posts", len(page.Items), "added", added)

		if page.After == "" {
			break
		}
		q.After = page.After
	}

	if opts.Filter != nil {
		before := len(result.Tracks)
		result.Tracks = filter.Apply(result.Tracks, *opts.Filter)
		e.sendProgress(progress, filterUpdate(before, len(result.Tracks)))
	}

	return result, nil
}

// Search fetches the subreddit's top posts of all time and keeps those matching the query.
//
// Matches come back highest score first unless opts.SortBy names another key.
// An empty query returns no results without fetching.
func (e *FeedEngine) Search(ctx context.Context, progress chan<- ProgressUpdate, opts SearchOpts) (*SearchResult, error) {
	query := strings.TrimSpace(opts.Query)
	result := &SearchResult{Query: query, Results: []models.Track{}}
	if query == "" {
		return result, nil
	}
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: feed fetcher not initialized", shared.ErrServiceUnavailable)
	}

	sort := opts.Sort
	if sort == "" {
		sort = models.SortHot
	}
	spec := filter.Spec{Query: query, SortBy: filter.SortScore, Order: filter.Desc}
	if opts.SortBy != "" {
		spec.SortBy = opts.SortBy
	}
	key := fmt.Sprintf("search:%s:%s:%s:%s", models.CanonicalSubreddit(opts.Subreddit), sort, spec.SortBy, strings.ToLower(query))

	var cached []models.Track
	if ok, err := cache.GetJSON(ctx, e.cache, key, &cached); err != nil {
		e.logger.Warn("search cache read failed", "key", key, "error", err)
	} else if ok {
		result.Results = cached
		result.Cached = true
		e.sendProgress(progress, searchResultUpdate(query, cached))
		return result, nil
	}

	e.sendProgress(progress, searchUpdate(1, 2, query))

	page, err := e.fetcher.FetchPage(ctx, models.FeedQuery{
		Subreddit: opts.Subreddit,
		Sort:      sort,
		Window:    models.WindowAll,
		Limit:     SearchLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("search r/%s: %w", opts.Subreddit, err)
	}

	result.Results = filter.Apply(tracks.NormalizeAll(page.Items), spec)

	if e.searchTTL > 0 {
		if err := cache.SetJSON(ctx, e.cache, key, result.Results, e.searchTTL); err != nil {
			e.logger.Warn("search cache write failed", "key", key, "error", err)
		}
	}

	e.sendProgress(progress, searchResultUpdate(query, result.Results))
	return result, nil
}

// Thread fetches the comment tree of track's post and flattens it for display.
func (e *FeedEngine) Thread(ctx context.Context, progress chan<- ProgressUpdate, track models.Track, limit int) (*ThreadResult, error) {
	if track.ID == "" || track.Subreddit == "" {
		return nil, fmt.Errorf("%w: track needs an id and subreddit", shared.ErrMissingArgument)
	}
	if e.fetcher == nil {
		return nil, fmt.Errorf("%w: feed fetcher not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchCommentsUpdate(1, 1, track.ID))

	tree, err := e.fetcher.FetchThread(ctx, track.Subreddit, track.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("comments for %s: %w", track.ID, err)
	}

	return &ThreadResult{
		Track:   track,
		Entries: comments.ForDisplay(tree),
		Total:   comments.Count(tree),
	}, nil
}
