package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/rmp/internal/catalog"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
)

var (
	_ list.Item = trackItem{}
	_ list.Item = subredditItem{}
)

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track   models.Track
	current bool
	playing bool
	now     time.Time
}

func (i trackItem) FilterValue() string { return i.track.Title }

func (i trackItem) Title() string {
	switch {
	case i.current && i.playing:
		return "▶ " + i.track.Title
	case i.current:
		return "❚❚ " + i.track.Title
	case !i.track.Playable():
		return "· " + i.track.Title
	default:
		return i.track.Title
	}
}

func (i trackItem) Description() string {
	parts := []string{
		"r/" + i.track.Subreddit,
		shared.FormatCount(i.track.Score) + " pts",
		fmt.Sprintf("%d comments", i.track.Comments),
		shared.FormatTimeAgo(i.track.CreatedAt, i.now),
	}
	if i.track.Source != "" {
		parts = append(parts, string(i.track.Source))
	}
	return strings.Join(parts, " • ")
}

// subredditItem wraps [catalog.Subreddit] to implement [list.Item].
type subredditItem struct {
	sub catalog.Subreddit
}

func (i subredditItem) FilterValue() string { return i.sub.Name + " " + i.sub.Category }
func (i subredditItem) Title() string       { return i.sub.Name }
func (i subredditItem) Description() string {
	if i.sub.Custom() {
		return i.sub.Category + " • enter any subreddit"
	}
	return i.sub.Category + " • " + i.sub.Path
}

func subredditItems(categories []catalog.Category) []list.Item {
	var items []list.Item
	for _, c := range categories {
		for _, s := range c.Subreddits {
			items = append(items, subredditItem{sub: s})
		}
	}
	return items
}
