// Package tracks converts raw feed items into normalized [models.Track] records.
//
// Every function here is pure: it never panics on malformed input and never
// performs I/O. Items that carry no recognizable media are rejected.
package tracks

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/desertthunder/rmp/internal/models"
)

var (
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	shortLinkPattern = regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`)
	embedPattern     = regexp.MustCompile(`youtube\.com/embed/([A-Za-z0-9_-]{11})`)
	watchPattern     = regexp.MustCompile(`youtube\.com/watch\?(?:.*&)?v=([A-Za-z0-9_-]{11})`)
)

// secondary hosts are recognized but cannot be played by the embed player.
var secondary = []struct {
	host   string
	source models.Source
}{
	{"soundcloud.com", models.SourceSoundCloud},
	{"spotify.com", models.SourceSpotify},
	{"bandcamp.com", models.SourceBandcamp},
	{"vimeo.com", models.SourceVimeo},
}

var entityReplacer = strings.NewReplacer("&amp;", "&", "&lt;", "<", "&gt;", ">")

// Normalize converts a feed item into a track.
//
// The boolean is false when the item has no URL or title, or links to no known media host.
// A YouTube URL yields a playable track only when a video id can be extracted.
func Normalize(item models.RawFeedItem) (models.Track, bool) {
	if strings.TrimSpace(item.URL) == "" || strings.TrimSpace(item.Title) == "" {
		return models.Track{}, false
	}

	track := models.Track{
		ID:        item.ID,
		Title:     item.Title,
		Author:    item.Author,
		Subreddit: item.Subreddit,
		Score:     item.Score,
		CreatedAt: time.Unix(int64(item.CreatedUTC), 0).UTC(),
		Thumbnail: ResolveThumbnail(item),
		URL:       item.URL,
		Permalink: item.Permalink,
		Comments:  item.NumComments,
		Domain:    item.Domain,
	}
	track.Artist, track.Song = SplitArtistTitle(item.Title)

	if IsYouTube(item.URL) {
		id, ok := ExtractYouTubeID(item.URL)
		if !ok {
			return models.Track{}, false
		}
		track.MediaID = id
		track.Source = models.SourceYouTube
		return track, true
	}

	source, ok := ClassifySource(item.URL, item.Domain)
	if !ok || source == models.SourceYouTube {
		return models.Track{}, false
	}
	track.Source = source
	return track, true
}

// NormalizeAll maps a page of items, dropping rejected ones and preserving order.
func NormalizeAll(items []models.RawFeedItem) []models.Track {
	out := make([]models.Track, 0, len(items))
	for _, item := range items {
		if t, ok := Normalize(item); ok {
			out = append(out, t)
		}
	}
	return out
}

// IsYouTube reports whether raw points at a YouTube host.
func IsYouTube(raw string) bool {
	host := hostOf(raw)
	return host == "youtu.be" || host == "youtube.com" || strings.HasSuffix(host, ".youtube.com")
}

// ExtractYouTubeID finds the 11 character video id in watch, short-link, and embed URLs.
//
// The watch form accepts v in any position of the query string.
func ExtractYouTubeID(raw string) (string, bool) {
	if u, err := url.Parse(raw); err == nil && strings.HasSuffix(u.Path, "/watch") {
		if v := u.Query().Get("v"); youtubeIDPattern.MatchString(v) {
			return v, true
		}
	}
	for _, p := range []*regexp.Regexp{watchPattern, shortLinkPattern, embedPattern} {
		if m := p.FindStringSubmatch(raw); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ClassifySource matches the URL host, then the reported domain, against known media hosts.
func ClassifySource(raw, domain string) (models.Source, bool) {
	if IsYouTube(raw) {
		return models.SourceYouTube, true
	}
	for _, candidate := range []string{hostOf(raw), strings.ToLower(domain)} {
		if candidate == "" {
			continue
		}
		for _, s := range secondary {
			if candidate == s.host || strings.HasSuffix(candidate, "."+s.host) {
				return s.source, true
			}
		}
	}
	return "", false
}

// ResolveThumbnail prefers the first preview image, unescaped, then the oEmbed thumbnail.
func ResolveThumbnail(item models.RawFeedItem) string {
	if item.PreviewURL != "" {
		return entityReplacer.Replace(item.PreviewURL)
	}
	return item.OEmbedThumbnail
}

// SplitArtistTitle splits "Artist - Song [genre] (year)" style titles.
//
// Titles without a separator return an empty artist and the trimmed title.
func SplitArtistTitle(title string) (artist, song string) {
	for _, sep := range []string{" - ", " – ", " — "} {
		if a, s, ok := strings.Cut(title, sep); ok {
			return strings.TrimSpace(a), strings.TrimSpace(s)
		}
	}
	return "", strings.TrimSpace(title)
}

func hostOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
