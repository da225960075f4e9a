// package models defines the data model for the music player pipeline
package models

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// Source identifies the provider hosting a track's media.
type Source string

const (
	SourceYouTube    Source = "youtube"
	SourceSoundCloud Source = "soundcloud"
	SourceSpotify    Source = "spotify"
	SourceBandcamp   Source = "bandcamp"
	SourceVimeo      Source = "vimeo"
)

// Sort is a feed ordering understood by the listing endpoint.
type Sort string

const (
	SortHot Sort = "hot"
	SortNew Sort = "new"
	SortTop Sort = "top"
)

// Window is a time window for top listings.
type Window string

const (
	WindowHour  Window = "hour"
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
	WindowAll   Window = "all"
)

// ParseSort validates a feed ordering.
func ParseSort(s string) (Sort, error) {
	switch v := Sort(strings.ToLower(s)); v {
	case SortHot, SortNew, SortTop:
		return v, nil
	case "":
		return SortHot, nil
	}
	return "", fmt.Errorf("unknown sort %q (want hot, new or top)", s)
}

// ParseWindow validates a listing time window.
func ParseWindow(s string) (Window, error) {
	switch v := Window(strings.ToLower(s)); v {
	case WindowHour, WindowDay, WindowWeek, WindowMonth, WindowYear, WindowAll:
		return v, nil
	case "":
		return WindowDay, nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// RawFeedItem is a post as returned by the listing endpoint, before normalization.
type RawFeedItem struct {
	ID              string
	Title           string
	Author          string
	Subreddit       string
	Score           int
	CreatedUTC      float64
	URL             string
	Domain          string
	NumComments     int
	Permalink       string
	PreviewURL      string // first preview image source; may contain HTML entities
	OEmbedThumbnail string
}

// FeedQuery describes one page request.
type FeedQuery struct {
	Subreddit string
	Sort      Sort
	Window    Window
	Limit     int
	After     string
}

// Key identifies the query for caching and request deduplication.
func (q FeedQuery) Key() string {
	return fmt.Sprintf("posts:%s:%s:%s:%d:%s", CanonicalSubreddit(q.Subreddit), q.Sort, q.Window, q.Limit, q.After)
}

// CanonicalSubreddit folds the spellings of one subreddit ("r/Music", "/r/music/", " music") into one name.
func CanonicalSubreddit(name string) string {
	name = strings.Trim(strings.TrimSpace(name), "/")
	if _, rest, ok := strings.Cut(name, "/"); ok {
		name = strings.Trim(rest, "/")
	}
	return strings.ToLower(name)
}

// FeedPage is one page of a listing.
//
// Skipped counts children dropped at the parse boundary.
type FeedPage struct {
	Items   []RawFeedItem `json:"items"`
	After   string        `json:"after,omitempty"`
	Before  string        `json:"before,omitempty"`
	Skipped int           `json:"skipped,omitempty"`
}

// Track is a post normalized into a playable (or browse-only) entry.
//
// An empty MediaID means the track can be selected and browsed but not played.
type Track struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Subreddit string    `json:"subreddit"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	MediaID   string    `json:"media_id,omitempty"`
	Source    Source    `json:"source"`
	Thumbnail string    `json:"thumbnail,omitempty"`
	URL       string    `json:"url"`
	Permalink string    `json:"permalink"`
	Comments  int       `json:"comments"`
	Domain    string    `json:"domain"`
	Artist    string    `json:"artist,omitempty"`
	Song      string    `json:"song,omitempty"`
}

// Playable reports whether the track carries a media id the embed player can load.
func (t Track) Playable() bool { return t.MediaID != "" }

// WatchURL returns the canonical media page for playable tracks, or the post URL otherwise.
func (t Track) WatchURL() string {
	if t.Source == SourceYouTube && t.MediaID != "" {
		return "https://www.youtube.com/watch?v=" + t.MediaID
	}
	return t.URL
}

// DiscussionURL returns the absolute URL of the post's comment page.
func (t Track) DiscussionURL() string {
	if strings.HasPrefix(t.Permalink, "http") {
		return t.Permalink
	}
	return "https://www.reddit.com" + t.Permalink
}

// Comment is one node of a discussion tree, children in API order.
type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Comment `json:"replies,omitempty"`
}

// MediaInfo is the result of resolving an external media URL.
type MediaInfo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Artist   string        `json:"artist"`
	Artwork  string        `json:"artwork,omitempty"`
	Duration time.Duration `json:"duration"`
	URL      string        `json:"url"`
}

// AuthToken is the persisted authorization token record.
type AuthToken struct {
	AccessToken  string `json:"accessToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
	Scope        string `json:"scope"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// OAuth2 converts the record into an [oauth2.Token] expiring relative to issued.
func (a AuthToken) OAuth2(issued time.Time) *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  a.AccessToken,
		TokenType:    a.TokenType,
		RefreshToken: a.RefreshToken,
		Expiry:       issued.Add(time.Duration(a.ExpiresIn) * time.Second),
	}
	return tok.WithExtra(map[string]any{"scope": a.Scope})
}

// AuthTokenFromOAuth2 builds a record from an [oauth2.Token] issued at now.
func AuthTokenFromOAuth2(tok *oauth2.Token, now time.Time) AuthToken {
	rec := AuthToken{
		AccessToken:  tok.AccessToken,
		TokenType:    tok.TokenType,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		rec.ExpiresIn = int64(tok.Expiry.Sub(now) / time.Second)
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		rec.Scope = scope
	}
	return rec
}

// HistoryEntry records a track selected in the player.
type HistoryEntry struct {
	ID        int64     `json:"id"`
	TrackID   string    `json:"track_id"`
	Title     string    `json:"title"`
	Subreddit string    `json:"subreddit"`
	MediaID   string    `json:"media_id,omitempty"`
	URL       string    `json:"url"`
	PlayedAt  time.Time `json:"played_at"`
}
