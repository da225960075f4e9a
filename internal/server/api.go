package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/feed"
	"github.com/desertthunder/rmp/internal/filter"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
	"github.com/desertthunder/rmp/internal/tasks"
	"github.com/desertthunder/rmp/internal/tracks"
)

const (
	defaultCommentLimit = 50
	maxCollectPages     = 10
)

// Resolver looks up metadata for an external media URL.
type Resolver interface {
	Resolve(ctx context.Context, trackURL string) (*models.MediaInfo, error)
}

// APIOpts wires an [APIHandler] to the pipeline.
type APIOpts struct {
	Fetcher          feed.Fetcher
	Engine           tasks.Engine
	Resolver         Resolver
	DefaultSubreddit string
	DefaultLimit     int
	Logger           *log.Logger
}

// APIHandler serves the JSON routes under /api.
type APIHandler struct {
	opts   APIOpts
	logger *log.Logger
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(opts APIOpts) *APIHandler {
	if opts.DefaultSubreddit == "" {
		opts.DefaultSubreddit = "listentothis"
	}
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = 25
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &APIHandler{opts: opts, logger: opts.Logger}
}

// Register mounts every API route on router.
func (h *APIHandler) Register(router Router) {
	router.Handler(HealthHandler{})
	router.Handle(http.MethodGet, "/api/reddit/posts", http.HandlerFunc(h.Posts))
	router.Handle(http.MethodGet, "/api/reddit/search", http.HandlerFunc(h.Search))
	router.Handle(http.MethodGet, "/api/reddit/comments", http.HandlerFunc(h.Comments))
	router.Handle(http.MethodGet, "/api/reddit/collect", http.HandlerFunc(h.Collect))
	router.Handle(http.MethodGet, "/api/soundcloud/track", http.HandlerFunc(h.SoundCloudTrack))
}

// NewAPIRouter builds the full middleware stack and routes.
func NewAPIRouter(opts APIOpts) *BasicRouter {
	h := NewAPIHandler(opts)
	router := NewBasicRouter()
	router.Use(RequestID, Logger(h.logger), Recoverer)
	h.Register(router)
	return router
}

// HealthHandler answers liveness checks.
type HealthHandler struct{}

func (HealthHandler) Routes() []string { return []string{"/health"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type postsResponse struct {
	Subreddit string         `json:"subreddit"`
	Tracks    []models.Track `json:"tracks"`
	After     string         `json:"after,omitempty"`
	Before    string         `json:"before,omitempty"`
	Skipped   int            `json:"skipped"`
}

// filterQueryNames maps filter parameters to their query-string spelling.
var filterQueryNames = map[string]string{
	filter.ParamPreset:       "preset",
	filter.ParamQuery:        "q",
	filter.ParamMinScore:     "minScore",
	filter.ParamMaxScore:     "maxScore",
	filter.ParamSortBy:       "sortBy",
	filter.ParamOrder:        "order",
	filter.ParamSource:       "source",
	filter.ParamHasThumbnail: "hasThumbnail",
	filter.ParamDate:         "date",
}

// Posts serves one normalized listing page.
//
// Query parameters: subreddit, sort (hot), time (week), limit, after. The
// optional filter parameters preset, q, minScore, maxScore, sortBy, order,
// source, hasThumbnail and date narrow and reorder the page's tracks.
func (h *APIHandler) Posts(w http.ResponseWriter, r *http.Request) {
	if h.opts.Fetcher == nil {
		h.fail(w, r, fmt.Errorf("%w: feed fetcher", shared.ErrServiceUnavailable))
		return
	}

	q, err := h.feedQuery(r, models.WindowWeek)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	spec, err := filterSpec(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	page, err := h.opts.Fetcher.FetchPage(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	normalized := tracks.NormalizeAll(page.Items)
	if spec != nil {
		normalized = filter.Apply(normalized, *spec)
	}

	writeJSON(w, http.StatusOK, postsResponse{
		Subreddit: q.Subreddit,
		Tracks:    normalized,
		After:     page.After,
		Before:    page.Before,
		Skipped:   page.Skipped,
	})
}

// Search matches the subreddit's all-time listing against q, highest score first.
// sortBy=relevance ranks by title match instead. A missing q yields no results.
func (h *APIHandler) Search(w http.ResponseWriter, r *http.Request) {
	if h.opts.Engine == nil {
		h.fail(w, r, fmt.Errorf("%w: search engine", shared.ErrServiceUnavailable))
		return
	}

	params := r.URL.Query()
	sort, err := models.ParseSort(params.Get("sort"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	sortBy, err := filter.ParseSortKey(params.Get("sortBy"))
	if err != nil {
		h.fail(w, r, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err))
		return
	}

	result, err := h.opts.Engine.Search(r.Context(), nil, tasks.SearchOpts{
		Subreddit: h.subreddit(r),
		Sort:      sort,
		Query:     params.Get("q"),
		SortBy:    sortBy,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Comments serves the comment tree of a post. Both subreddit and postId are required.
func (h *APIHandler) Comments(w http.ResponseWriter, r *http.Request) {
	if h.opts.Fetcher == nil {
		h.fail(w, r, fmt.Errorf("%w: feed fetcher", shared.ErrServiceUnavailable))
		return
	}

	params := r.URL.Query()
	subreddit, postID := params.Get("subreddit"), params.Get("postId")
	if subreddit == "" || postID == "" {
		h.fail(w, r, fmt.Errorf("%w: subreddit and postId", shared.ErrMissingArgument))
		return
	}

	limit, err := intParam(r, "limit", defaultCommentLimit)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	thread, err := h.opts.Fetcher.FetchThread(r.Context(), subreddit, postID, limit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if thread == nil {
		thread = []models.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": thread})
}

// Collect walks several listing pages and streams progress as server-sent events.
//
// Each [tasks.ProgressUpdate] is sent as a "progress" event; the run ends with a
// single "result" or "error" event.
func (h *APIHandler) Collect(w http.ResponseWriter, r *http.Request) {
	if h.opts.Engine == nil {
		h.fail(w, r, fmt.Errorf("%w: collect engine", shared.ErrServiceUnavailable))
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: streaming unsupported", shared.ErrServiceUnavailable))
		return
	}

	q, err := h.feedQuery(r, models.WindowWeek)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pages, err := intParam(r, "pages", 1)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	pages = min(max(pages, 1), maxCollectPages)
	spec, err := filterSpec(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	progress := make(chan tasks.ProgressUpdate, 16)
	type outcome struct {
		result *tasks.CollectResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := h.opts.Engine.Collect(r.Context(), progress, tasks.CollectOpts{Query: q, Pages: pages, Filter: spec})
		close(progress)
		done <- outcome{result, err}
	}()

	for update := range progress {
		writeEvent(w, "progress", map[string]any{
			"phase":   update.Phase.String(),
			"step":    update.Step,
			"total":   update.Total,
			"message": update.Message,
		})
		flusher.Flush()
	}

	out := <-done
	if out.err != nil {
		h.logger.Warn("collect failed", "subreddit", q.Subreddit, "error", out.err, "request_id", RequestIDFrom(r.Context()))
		writeEvent(w, "error", map[string]string{"error": PublicMessage(StatusFor(out.err), out.err)})
	} else {
		writeEvent(w, "result", out.result)
	}
	flusher.Flush()
}

// SoundCloudTrack resolves a SoundCloud URL to track metadata.
func (h *APIHandler) SoundCloudTrack(w http.ResponseWriter, r *http.Request) {
	trackURL := r.URL.Query().Get("url")
	if trackURL == "" {
		h.fail(w, r, fmt.Errorf("%w: track URL required", shared.ErrMissingArgument))
		return
	}
	if h.opts.Resolver == nil {
		h.fail(w, r, fmt.Errorf("%w: SoundCloud", shared.ErrConfigMissing))
		return
	}

	info, err := h.opts.Resolver.Resolve(r.Context(), trackURL)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"id":       info.ID,
		"title":    info.Title,
		"artist":   info.Artist,
		"artwork":  info.Artwork,
		"duration": info.Duration.Milliseconds(),
		"url":      info.URL,
	})
}

func (h *APIHandler) subreddit(r *http.Request) string {
	if s := r.URL.Query().Get("subreddit"); s != "" {
		return s
	}
	return h.opts.DefaultSubreddit
}

func (h *APIHandler) feedQuery(r *http.Request, defaultWindow models.Window) (models.FeedQuery, error) {
	params := r.URL.Query()

	sort, err := models.ParseSort(params.Get("sort"))
	if err != nil {
		return models.FeedQuery{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	window := defaultWindow
	if t := params.Get("time"); t != "" {
		if window, err = models.ParseWindow(t); err != nil {
			return models.FeedQuery{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
		}
	}

	limit, err := intParam(r, "limit", h.opts.DefaultLimit)
	if err != nil {
		return models.FeedQuery{}, err
	}

	return models.FeedQuery{
		Subreddit: h.subreddit(r),
		Sort:      sort,
		Window:    window,
		Limit:     limit,
		After:     params.Get("after"),
	}, nil
}

// fail logs and writes err with the status its sentinel maps to.
// Server-side failures answer with a generic message; the detail stays in the log.
func (h *APIHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	kv := []any{"path", r.URL.Path, "status", status, "error", err, "request_id", RequestIDFrom(r.Context())}
	if status >= 500 {
		h.logger.Error("request failed", kv...)
	} else {
		h.logger.Debug("request rejected", kv...)
	}
	writeError(w, status, PublicMessage(status, err))
}

// PublicMessage is the error text safe to return to API callers.
func PublicMessage(status int, err error) string {
	switch {
	case status < 500:
		return err.Error()
	case status == http.StatusBadGateway:
		return "upstream request failed"
	case errors.Is(err, shared.ErrConfigMissing):
		return "service not configured"
	default:
		return strings.ToLower(http.StatusText(status))
	}
}

// StatusFor maps pipeline errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, shared.ErrInvalidInput),
		errors.Is(err, shared.ErrMissingArgument),
		errors.Is(err, shared.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrConfigMissing), errors.Is(err, shared.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, shared.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// filterSpec reads the optional filter parameters; nil means none were given.
func filterSpec(r *http.Request) (*filter.Spec, error) {
	params := r.URL.Query()
	spec, err := filter.FromParams(func(name string) string {
		return params.Get(filterQueryNames[name])
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return spec, nil
}

func intParam(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", shared.ErrInvalidArgument, name)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeEvent(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		data = []byte(`{"error":"encode failed"}`)
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}
