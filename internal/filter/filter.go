// Package filter narrows and orders a set of tracks for display.
//
// Filters run in a fixed order: text query, score bounds, media source,
// thumbnail presence, and date window. The surviving tracks are then stably
// sorted. The input slice is never modified.
package filter

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/rmp/internal/models"
)

// SortKey selects the field tracks are ordered by.
type SortKey string

const (
	SortScore     SortKey = "score"
	SortDate      SortKey = "date"
	SortComments  SortKey = "comments"
	SortRelevance SortKey = "relevance"
)

// Order is the sort direction. Relevance ignores it.
type Order string

const (
	Desc Order = "desc"
	Asc  Order = "asc"
)

// Window restricts tracks to those created within a trailing period.
type Window string

const (
	WindowAll   Window = "all"
	WindowToday Window = "today"
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

var windowDurations = map[Window]time.Duration{
	WindowToday: 24 * time.Hour,
	WindowDay:   24 * time.Hour,
	WindowWeek:  7 * 24 * time.Hour,
	WindowMonth: 30 * 24 * time.Hour,
	WindowYear:  365 * 24 * time.Hour,
}

// Spec describes one filter-and-sort pass. The zero value keeps every track
// and sorts by score, highest first.
type Spec struct {
	Query        string
	MinScore     *int
	MaxScore     *int
	SortBy       SortKey
	Order        Order
	Source       string // substring of the track domain; "" or "all" disables
	HasThumbnail bool
	Window       Window
}

// Apply filters and sorts tracks relative to the current time.
func Apply(tracks []models.Track, spec Spec) []models.Track {
	return ApplyAt(tracks, spec, time.Now())
}

// ApplyAt filters and sorts tracks relative to now.
func ApplyAt(tracks []models.Track, spec Spec, now time.Time) []models.Track {
	query := strings.ToLower(strings.TrimSpace(spec.Query))
	source := strings.ToLower(strings.TrimSpace(spec.Source))
	if source == "all" {
		source = ""
	}

	var cutoff time.Time
	if d, ok := windowDurations[spec.Window]; ok {
		cutoff = now.Add(-d)
	}

	out := make([]models.Track, 0, len(tracks))
	for _, t := range tracks {
		switch {
		case query != "" && !matchesQuery(t, query):
		case spec.MinScore != nil && t.Score < *spec.MinScore:
		case spec.MaxScore != nil && t.Score > *spec.MaxScore:
		case source != "" && !strings.Contains(strings.ToLower(t.Domain), source):
		case spec.HasThumbnail && t.Thumbnail == "":
		case !cutoff.IsZero() && t.CreatedAt.Before(cutoff):
		default:
			out = append(out, t)
		}
	}

	sortTracks(out, spec.SortBy, spec.Order, query)
	return out
}

func matchesQuery(t models.Track, query string) bool {
	return strings.Contains(strings.ToLower(t.Title), query) ||
		strings.Contains(strings.ToLower(t.Author), query) ||
		strings.Contains(strings.ToLower(t.Subreddit), query)
}

func sortTracks(tracks []models.Track, by SortKey, order Order, query string) {
	if by == SortRelevance {
		if query == "" {
			return
		}
		slices.SortStableFunc(tracks, func(a, b models.Track) int {
			return cmp.Compare(titleRank(a, query), titleRank(b, query))
		})
		return
	}

	var less func(a, b models.Track) int
	switch by {
	case SortDate:
		less = func(a, b models.Track) int { return a.CreatedAt.Compare(b.CreatedAt) }
	case SortComments:
		less = func(a, b models.Track) int { return cmp.Compare(a.Comments, b.Comments) }
	default:
		less = func(a, b models.Track) int { return cmp.Compare(a.Score, b.Score) }
	}

	if order != Asc {
		asc := less
		less = func(a, b models.Track) int { return asc(b, a) }
	}
	slices.SortStableFunc(tracks, less)
}

// titleRank is the index of the query in the title; titles that only matched
// on author or subreddit rank after every title match.
func titleRank(t models.Track, query string) int {
	idx := strings.Index(strings.ToLower(t.Title), query)
	if idx < 0 {
		return math.MaxInt
	}
	return idx
}

// ParseSortKey validates a sort key; "" selects score.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(s)); k {
	case SortScore, SortDate, SortComments, SortRelevance:
		return k, nil
	case "":
		return SortScore, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// ParseOrder validates a direction; "" selects descending.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(s)); o {
	case Asc, Desc:
		return o, nil
	case "":
		return Desc, nil
	}
	return "", fmt.Errorf("unknown order %q", s)
}

// ParseWindow validates a date window; "" selects all.
func ParseWindow(s string) (Window, error) {
	w := Window(strings.ToLower(s))
	if w == "" || w == WindowAll {
		return WindowAll, nil
	}
	if _, ok := windowDurations[w]; ok {
		return w, nil
	}
	return "", fmt.Errorf("unknown window %q", s)
}

// Preset is a named filter combination.
type Preset struct {
	Name        string
	Description string
	Spec        Spec
}

// Presets returns the built-in filter combinations.
func Presets() []Preset {
	highScore := 50
	return []Preset{
		{Name: "trending", Description: "Highest scored this week", Spec: Spec{SortBy: SortScore, Order: Desc, Window: WindowWeek}},
		{Name: "newest", Description: "Most recent first", Spec: Spec{SortBy: SortDate, Order: Desc}},
		{Name: "mostCommented", Description: "Most discussed", Spec: Spec{SortBy: SortComments, Order: Desc}},
		{Name: "highScore", Description: "Score of 50 or more", Spec: Spec{SortBy: SortScore, Order: Desc, MinScore: &highScore}},
	}
}

// LookupPreset finds a preset by case-insensitive name.
func LookupPreset(name string) (Preset, bool) {
	for _, p := range Presets() {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Preset{}, false
}

// Parameter names understood by [FromParams].
const (
	ParamPreset       = "preset"
	ParamQuery        = "query"
	ParamMinScore     = "min-score"
	ParamMaxScore     = "max-score"
	ParamSortBy       = "sort-by"
	ParamOrder        = "order"
	ParamSource       = "source"
	ParamHasThumbnail = "has-thumbnail"
	ParamDate         = "date"
)

// Params lists every parameter name [FromParams] reads.
var Params = []string{
	ParamPreset, ParamQuery, ParamMinScore, ParamMaxScore, ParamSortBy,
	ParamOrder, ParamSource, ParamHasThumbnail, ParamDate,
}

// FromParams builds a Spec from textual parameters such as flags or query strings.
//
// get returns "" for a parameter that was not given. A preset supplies the base
// spec and explicit parameters override its fields. The result is nil when no
// parameter is given.
func FromParams(get func(name string) string) (*Spec, error) {
	var spec Spec
	set := false

	if name := get(ParamPreset); name != "" {
		preset, ok := LookupPreset(name)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", name)
		}
		spec, set = preset.Spec, true
	}
	if q := get(ParamQuery); q != "" {
		spec.Query, set = q, true
	}
	for _, bound := range []struct {
		name string
		dst  **int
	}{{ParamMinScore, &spec.MinScore}, {ParamMaxScore, &spec.MaxScore}} {
		raw := get(bound.name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer, got %q", bound.name, raw)
		}
		*bound.dst, set = &n, true
	}
	if raw := get(ParamSortBy); raw != "" {
		key, err := ParseSortKey(raw)
		if err != nil {
			return nil, err
		}
		spec.SortBy, set = key, true
	}
	if raw := get(ParamOrder); raw != "" {
		order, err := ParseOrder(raw)
		if err != nil {
			return nil, err
		}
		spec.Order, set = order, true
	}
	if src := get(ParamSource); src != "" {
		spec.Source, set = src, true
	}
	if raw := get(ParamHasThumbnail); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be true or false, got %q", ParamHasThumbnail, raw)
		}
		spec.HasThumbnail, set = b, true
	}
	if raw := get(ParamDate); raw != "" {
		w, err := ParseWindow(raw)
		if err != nil {
			return nil, err
		}
		spec.Window, set = w, true
	}

	if spec.MinScore != nil && spec.MaxScore != nil && *spec.MinScore > *spec.MaxScore {
		return nil, fmt.Errorf("min-score %d is greater than max-score %d", *spec.MinScore, *spec.MaxScore)
	}
	if !set {
		return nil, nil
	}
	return &spec, nil
}
