package feed

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/rmp/internal/comments"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/desertthunder/rmp/internal/tracks"
)

// ErrStale reports a response superseded by a newer request.
var ErrStale = errors.New("stale response discarded")

// Result is one generation of loaded tracks.
type Result struct {
	Query      models.FeedQuery
	Tracks     []models.Track
	After      string
	Skipped    int
	Generation uint64
}

// Thread is a flattened comment thread for one track.
type Thread struct {
	TrackID string
	Entries []comments.Entry
	Total   int
}

// request tracks the newest call of one kind.
type request struct {
	gen    uint64
	key    string
	cancel context.CancelFunc
}

// begin starts a new generation, cancelling the previous call when its key differs.
func (r *request) begin(ctx context.Context, key string) (context.Context, context.CancelFunc, uint64) {
	if r.cancel != nil && r.key != key {
		r.cancel()
	}
	r.gen++
	r.key = key
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	return ctx, cancel, r.gen
}

// Loader loads feeds and threads for a single interactive view.
type Loader struct {
	fetcher      Fetcher
	commentLimit int

	mu      sync.Mutex
	feed    request
	thread  request
	current *Result
}

// NewLoader creates a loader over fetcher; commentLimit is the reply limit sent upstream.
func NewLoader(fetcher Fetcher, commentLimit int) *Loader {
	return &Loader{fetcher: fetcher, commentLimit: commentLimit}
}

// Load fetches the first page for q and makes it current.
//
// If another Load starts before this one returns, this call returns [ErrStale].
func (l *Loader) Load(ctx context.Context, q models.FeedQuery) (*Result, error) {
	q.After = ""
	return l.load(ctx, q, nil)
}

// LoadMore fetches the page after the current result and appends its tracks.
func (l *Loader) LoadMore(ctx context.Context) (*Result, error) {
	l.mu.Lock()
	cur := l.current
	l.mu.Unlock()

	if cur == nil {
		return nil, fmt.Errorf("%w: nothing loaded yet", shared.ErrInvalidInput)
	}
	if cur.After == "" {
		return cur, nil
	}
	q := cur.Query
	q.After = cur.After
	return l.load(ctx, q, cur)
}

func (l *Loader) load(ctx context.Context, q models.FeedQuery, base *Result) (*Result, error) {
	l.mu.Lock()
	key := q
	key.After = ""
	ctx, cancel, gen := l.feed.begin(ctx, key.Key())
	l.mu.Unlock()

	page, err := l.fetcher.FetchPage(ctx, q)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.feed.gen {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}

	res := &Result{
		Query:      q,
		Tracks:     tracks.NormalizeAll(page.Items),
		After:      page.After,
		Skipped:    page.Skipped,
		Generation: gen,
	}
	res.Query.After = ""
	if base != nil {
		res.Tracks = appendNew(base.Tracks, res.Tracks)
		res.Skipped += base.Skipped
	}
	l.current = res
	return res, nil
}

// Current returns the most recent successful result, or nil.
func (l *Loader) Current() *Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// LoadThread fetches and flattens the thread for track, superseding any earlier thread load.
func (l *Loader) LoadThread(ctx context.Context, track models.Track) (*Thread, error) {
	l.mu.Lock()
	ctx, cancel, gen := l.thread.begin(ctx, track.Subreddit+"/"+track.ID)
	l.mu.Unlock()

	nodes, err := l.fetcher.FetchThread(ctx, track.Subreddit, track.ID, l.commentLimit)
	cancel()

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.thread.gen {
		return nil, ErrStale
	}
	if err != nil {
		return nil, err
	}
	return &Thread{TrackID: track.ID, Entries: comments.ForDisplay(nodes), Total: comments.Count(nodes)}, nil
}

// Cancel abandons any in-flight loads; their results will be discarded.
func (l *Loader) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, r := range []*request{&l.feed, &l.thread} {
		if r.cancel != nil {
			r.cancel()
		}
		r.gen++
	}
}

func appendNew(existing, more []models.Track) []models.Track {
	seen := make(map[string]bool, len(existing))
	out := make([]models.Track, 0, len(existing)+len(more))
	for _, t := range existing {
		seen[t.ID] = true
		out = append(out, t)
	}
	for _, t := range more {
		if !seen[t.ID] {
			seen[t.ID] = true
			out = append(out, t)
		}
	}
	return out
}
