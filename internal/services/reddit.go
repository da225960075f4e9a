// Reddit listing and comment thread client
//
// Response shapes follow https://www.reddit.com/dev/api
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
	"golang.org/x/time/rate"
)

const (
	kindPost    = "t3"
	kindComment = "t1"

	deletedAuthor = "[deleted]"

	// MaxPageSize is the largest page the listing endpoint serves.
	MaxPageSize = 100

	// DefaultCommentLimit is the reply limit used when the caller passes zero.
	DefaultCommentLimit = 50
)

var subredditPattern = regexp.MustCompile(`^[A-Za-z0-9_+]+$`)

// customSentinels name the "no collection selected" state.
var customSentinels = map[string]bool{"custom": true, "custom-reddit": true}

// Listing is the envelope returned by listing endpoints.
type Listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Before   string  `json:"before"`
		Children []Thing `json:"children"`
	} `json:"data"`
}

// Thing is a listing child; Data is decoded according to Kind.
type Thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// PostData is the subset of a t3 payload the player uses.
type PostData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Subreddit   string  `json:"subreddit"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	URL         string  `json:"url"`
	Domain      string  `json:"domain"`
	NumComments int     `json:"num_comments"`
	Permalink   string  `json:"permalink"`
	Preview     *struct {
		Images []struct {
			Source struct {
				URL string `json:"url"`
			} `json:"source"`
		} `json:"images"`
	} `json:"preview,omitempty"`
	Media *struct {
		OEmbed *struct {
			ThumbnailURL string `json:"thumbnail_url"`
		} `json:"oembed,omitempty"`
	} `json:"media,omitempty"`
}

// CommentData is the subset of a t1 payload the player uses.
//
// Replies is either an empty string or a nested [Listing].
type CommentData struct {
	ID         string          `json:"id"`
	Author     string          `json:"author"`
	Body       string          `json:"body"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

// RedditService reads listings and comment threads.
type RedditService struct {
	client
	pageSize int
}

// NewRedditService creates a client for the configured base URL.
//
// A nil httpClient uses [http.DefaultClient]; a nil limiter disables client-side limiting.
func NewRedditService(cfg shared.RedditConfig, httpClient *http.Client, limiter *rate.Limiter) *RedditService {
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 25
	}
	return &RedditService{
		client:   newClient(strings.TrimRight(cfg.BaseURL, "/"), cfg.UserAgent, httpClient, limiter),
		pageSize: pageSize,
	}
}

// Name returns the name of the service.
func (r *RedditService) Name() string { return "Reddit" }

// IsCustom reports whether name is the placeholder for "no collection selected".
func IsCustom(name string) bool {
	return customSentinels[strings.ToLower(strings.TrimSpace(name))]
}

// NormalizeSubreddit strips any leading namespace ("r/", "/r/") and validates the remaining name.
func NormalizeSubreddit(name string) (string, error) {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if _, rest, ok := strings.Cut(name, "/"); ok {
		name = strings.TrimSuffix(rest, "/")
	}
	if name == "" {
		return "", fmt.Errorf("%w: subreddit name is empty", shared.ErrInvalidInput)
	}
	if !subredditPattern.MatchString(name) {
		return "", fmt.Errorf("%w: invalid subreddit name %q", shared.ErrInvalidInput, name)
	}
	return name, nil
}

// FetchPage reads one listing page.
//
// The custom sentinel returns an empty page without a request. The time window
// is always sent even though the API only honors it for some sorts.
func (r *RedditService) FetchPage(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	if IsCustom(q.Subreddit) {
		return &models.FeedPage{}, nil
	}

	name, err := NormalizeSubreddit(q.Subreddit)
	if err != nil {
		return nil, err
	}

	sort, err := models.ParseSort(string(q.Sort))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	window, err := models.ParseWindow(string(q.Window))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = r.pageSize
	}
	limit = min(limit, MaxPageSize)

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")
	params.Set("t", string(window))
	if q.After != "" {
		params.Set("after", q.After)
	}

	var listing Listing
	endpoint := fmt.Sprintf("/r/%s/%s.json", name, sort)
	if err := r.getJSON(ctx, endpoint, params, &listing); err != nil {
		return nil, err
	}

	page := &models.FeedPage{
		Items:  make([]models.RawFeedItem, 0, len(listing.Data.Children)),
		After:  listing.Data.After,
		Before: listing.Data.Before,
	}
	for _, child := range listing.Data.Children {
		item, err := ParsePost(child)
		if err != nil {
			page.Skipped++
			continue
		}
		page.Items = append(page.Items, item)
	}
	return page, nil
}

// FetchThread reads the comment tree of a post.
//
// Deleted-author comments and their replies are excluded. A response without a
// comment listing is an empty thread, not an error.
func (r *RedditService) FetchThread(ctx context.Context, subreddit, postID string, limit int) ([]models.Comment, error) {
	name, err := NormalizeSubreddit(subreddit)
	if err != nil {
		return nil, err
	}
	postID = strings.TrimPrefix(strings.TrimSpace(postID), kindPost+"_")
	if postID == "" {
		return nil, fmt.Errorf("%w: post id is empty", shared.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = DefaultCommentLimit
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("raw_json", "1")

	var parts []json.RawMessage
	endpoint := fmt.Sprintf("/r/%s/comments/%s.json", name, url.PathEscape(postID))
	if err := r.getJSON(ctx, endpoint, params, &parts); err != nil {
		return nil, err
	}
	if len(parts) < 2 {
		return []models.Comment{}, nil
	}

	var listing Listing
	if err := json.Unmarshal(parts[1], &listing); err != nil {
		return nil, fmt.Errorf("%w: failed to decode comment listing: %v", shared.ErrFetchFailed, err)
	}
	return parseComments(listing.Data.Children), nil
}

// ParsePost decodes a listing child into a feed item, or returns [shared.ErrParseSkip].
func ParsePost(child Thing) (models.RawFeedItem, error) {
	if child.Kind != kindPost {
		return models.RawFeedItem{}, fmt.Errorf("%w: kind %q", shared.ErrParseSkip, child.Kind)
	}

	var d PostData
	if err := json.Unmarshal(child.Data, &d); err != nil {
		return models.RawFeedItem{}, fmt.Errorf("%w: %v", shared.ErrParseSkip, err)
	}
	if d.ID == "" || d.Title == "" {
		return models.RawFeedItem{}, fmt.Errorf("%w: missing id or title", shared.ErrParseSkip)
	}

	item := models.RawFeedItem{
		ID:          d.ID,
		Title:       d.Title,
		Author:      d.Author,
		Subreddit:   d.Subreddit,
		Score:       d.Score,
		CreatedUTC:  d.CreatedUTC,
		URL:         d.URL,
		Domain:      d.Domain,
		NumComments: d.NumComments,
		Permalink:   d.Permalink,
	}
	if d.Preview != nil && len(d.Preview.Images) > 0 {
		item.PreviewURL = d.Preview.Images[0].Source.URL
	}
	if d.Media != nil && d.Media.OEmbed != nil {
		item.OEmbedThumbnail = d.Media.OEmbed.ThumbnailURL
	}
	return item, nil
}

// ParseComment decodes a t1 child and its replies, or returns [shared.ErrParseSkip].
func ParseComment(child Thing) (models.Comment, error) {
	if child.Kind != kindComment {
		return models.Comment{}, fmt.Errorf("%w: kind %q", shared.ErrParseSkip, child.Kind)
	}

	var d CommentData
	if err := json.Unmarshal(child.Data, &d); err != nil {
		return models.Comment{}, fmt.Errorf("%w: %v", shared.ErrParseSkip, err)
	}
	if d.ID == "" || d.Author == "" || d.Author == deletedAuthor {
		return models.Comment{}, fmt.Errorf("%w: deleted or anonymous comment", shared.ErrParseSkip)
	}

	c := models.Comment{
		ID:        d.ID,
		Author:    d.Author,
		Body:      d.Body,
		Score:     d.Score,
		CreatedAt: time.Unix(int64(d.CreatedUTC), 0).UTC(),
	}

	// replies is "" when there are none
	if len(d.Replies) > 0 && d.Replies[0] == '{' {
		var replies Listing
		if err := json.Unmarshal(d.Replies, &replies); err == nil {
			c.Replies = parseComments(replies.Data.Children)
		}
	}
	return c, nil
}

func parseComments(children []Thing) []models.Comment {
	out := make([]models.Comment, 0, len(children))
	for _, child := range children {
		c, err := ParseComment(child)
		if errors.Is(err, shared.ErrParseSkip) {
			continue
		}
		out = append(out, c)
	}
	return out
}
