package filter

import (
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/rmp/internal/models"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func fixture() []models.Track {
	return []models.Track{
		{ID: "a", Title: "Radiohead - Reckoner", Author: "thom", Subreddit: "indieheads", Score: 120, Comments: 10, Domain: "youtube.com", Thumbnail: "t", CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "b", Title: "Aphex Twin - Xtal", Author: "rdj", Subreddit: "electronicmusic", Score: 30, Comments: 40, Domain: "youtu.be", CreatedAt: now.Add(-3 * 24 * time.Hour)},
		{ID: "c", Title: "Reckless Eric - Whole Wide World", Author: "user", Subreddit: "listentothis", Score: 75, Comments: 2, Domain: "soundcloud.com", Thumbnail: "t", CreatedAt: now.Add(-40 * 24 * time.Hour)},
		{ID: "d", Title: "Quiet Song", Author: "reckfan", Subreddit: "listentothis", Score: 75, Comments: 5, Domain: "bandcamp.com", CreatedAt: now.Add(-400 * 24 * time.Hour)},
	}
}

func ids(tracks []models.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func intPtr(n int) *int { return &n }

func TestApplyAt(t *testing.T) {
	tc := []struct {
		name string
		spec Spec
		want []string
	}{
		{name: "zero spec sorts by score desc, stable on ties", spec: Spec{}, want: []string{"a", "c", "d", "b"}},
		{name: "score ascending", spec: Spec{SortBy: SortScore, Order: Asc}, want: []string{"b", "c", "d", "a"}},
		{name: "query matches title author or subreddit", spec: Spec{Query: "RECK"}, want: []string{"a", "c", "d"}},
		{name: "query on subreddit", spec: Spec{Query: "electronic"}, want: []string{"b"}},
		{name: "min score", spec: Spec{MinScore: intPtr(75)}, want: []string{"a", "c", "d"}},
		{name: "max score", spec: Spec{MaxScore: intPtr(75)}, want: []string{"c", "d", "b"}},
		{name: "score range", spec: Spec{MinScore: intPtr(31), MaxScore: intPtr(100)}, want: []string{"c", "d"}},
		{name: "source substring", spec: Spec{Source: "YOUTU"}, want: []string{"a", "b"}},
		{name: "source all disables", spec: Spec{Source: "all"}, want: []string{"a", "c", "d", "b"}},
		{name: "has thumbnail", spec: Spec{HasThumbnail: true}, want: []string{"a", "c"}},
		{name: "window day", spec: Spec{Window: WindowDay}, want: []string{"a"}},
		{name: "window today", spec: Spec{Window: WindowToday}, want: []string{"a"}},
		{name: "window week", spec: Spec{Window: WindowWeek}, want: []string{"a", "b"}},
		{name: "window month", spec: Spec{Window: WindowMonth}, want: []string{"a", "b"}},
		{name: "window year", spec: Spec{Window: WindowYear}, want: []string{"a", "c", "b"}},
		{name: "sort by date desc", spec: Spec{SortBy: SortDate}, want: []string{"a", "b", "c", "d"}},
		{name: "sort by comments desc", spec: Spec{SortBy: SortComments}, want: []string{"b", "a", "d", "c"}},
		{name: "sort by comments asc", spec: Spec{SortBy: SortComments, Order: Asc}, want: []string{"c", "d", "a", "b"}},
		{name: "relevance orders by title position", spec: Spec{Query: "reck", SortBy: SortRelevance}, want: []string{"c", "a", "d"}},
		{name: "relevance ignores direction", spec: Spec{Query: "reck", SortBy: SortRelevance, Order: Asc}, want: []string{"c", "a", "d"}},
		{name: "relevance without query keeps input order", spec: Spec{SortBy: SortRelevance}, want: []string{"a", "b", "c", "d"}},
		{name: "combined", spec: Spec{Query: "reck", MinScore: intPtr(100), HasThumbnail: true}, want: []string{"a"}},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(ApplyAt(fixture(), tt.spec, now))
			if !slices.Equal(got, tt.want) {
				t.Errorf("ApplyAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyProperties(t *testing.T) {
	t.Run("does not mutate input", func(t *testing.T) {
		in := fixture()
		before := ids(in)
		_ = ApplyAt(in, Spec{SortBy: SortScore, Order: Asc}, now)
		if !slices.Equal(ids(in), before) {
			t.Errorf("input reordered: %v", ids(in))
		}
	})

	t.Run("output is a subset", func(t *testing.T) {
		in := fixture()
		out := ApplyAt(in, Spec{Query: "a"}, now)
		if len(out) > len(in) {
			t.Fatalf("output longer than input")
		}
		for _, o := range out {
			if !slices.Contains(ids(in), o.ID) {
				t.Errorf("unexpected track %s", o.ID)
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		spec := Spec{Query: "reck", SortBy: SortRelevance}
		once := ApplyAt(fixture(), spec, now)
		twice := ApplyAt(once, spec, now)
		if !slices.Equal(ids(once), ids(twice)) {
			t.Errorf("second pass changed result: %v vs %v", ids(once), ids(twice))
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if got := Apply(nil, Spec{Query: "x"}); len(got) != 0 {
			t.Errorf("expected empty result, got %d", len(got))
		}
	})
}

func TestParse(t *testing.T) {
	if k, err := ParseSortKey(""); err != nil || k != SortScore {
		t.Errorf("ParseSortKey(\"\") = %v, %v", k, err)
	}
	if _, err := ParseSortKey("hot"); err == nil {
		t.Error("expected error for unknown sort key")
	}
	if o, err := ParseOrder("ASC"); err != nil || o != Asc {
		t.Errorf("ParseOrder(ASC) = %v, %v", o, err)
	}
	if _, err := ParseOrder("sideways"); err == nil {
		t.Error("expected error for unknown order")
	}
	if w, err := ParseWindow("week"); err != nil || w != WindowWeek {
		t.Errorf("ParseWindow(week) = %v, %v", w, err)
	}
	if w, _ := ParseWindow(""); w != WindowAll {
		t.Errorf("expected default window all, got %v", w)
	}
	if _, err := ParseWindow("hour"); err == nil {
		t.Error("expected error for unsupported window")
	}
}

func TestPresets(t *testing.T) {
	p, ok := LookupPreset("highscore")
	if !ok {
		t.Fatal("expected highScore preset")
	}
	got := ids(ApplyAt(fixture(), p.Spec, now))
	if !slices.Equal(got, []string{"a", "c", "d"}) {
		t.Errorf("highScore preset = %v", got)
	}

	if _, ok := LookupPreset("nope"); ok {
		t.Error("expected unknown preset to be missing")
	}
	if len(Presets()) != 4 {
		t.Errorf("expected 4 presets, got %d", len(Presets()))
	}
}

func TestFromParams(t *testing.T) {
	params := func(kv map[string]string) func(string) string {
		return func(name string) string { return kv[name] }
	}

	t.Run("nothing set", func(t *testing.T) {
		spec, err := FromParams(params(nil))
		if err != nil || spec != nil {
			t.Errorf("FromParams() = %+v, %v", spec, err)
		}
	})

	t.Run("every axis", func(t *testing.T) {
		spec, err := FromParams(params(map[string]string{
			ParamQuery: "reck", ParamMinScore: "-5", ParamMaxScore: "200", ParamSortBy: "comments",
			ParamOrder: "asc", ParamSource: "youtube", ParamHasThumbnail: "true", ParamDate: "month",
		}))
		if err != nil {
			t.Fatalf("FromParams() error = %v", err)
		}
		if spec.Query != "reck" || *spec.MinScore != -5 || *spec.MaxScore != 200 || spec.SortBy != SortComments ||
			spec.Order != Asc || spec.Source != "youtube" || !spec.HasThumbnail || spec.Window != WindowMonth {
			t.Errorf("unexpected spec %+v", spec)
		}
		if got := ids(ApplyAt(fixture(), *spec, now)); !slices.Equal(got, []string{"a"}) {
			t.Errorf("ApplyAt() = %v", got)
		}
	})

	t.Run("explicit values override the preset", func(t *testing.T) {
		spec, err := FromParams(params(map[string]string{ParamPreset: "newest", ParamOrder: "asc"}))
		if err != nil {
			t.Fatalf("FromParams() error = %v", err)
		}
		if spec.SortBy != SortDate || spec.Order != Asc {
			t.Errorf("unexpected spec %+v", spec)
		}
	})

	t.Run("max score alone", func(t *testing.T) {
		spec, err := FromParams(params(map[string]string{ParamMaxScore: "75"}))
		if err != nil {
			t.Fatalf("FromParams() error = %v", err)
		}
		if got := ids(ApplyAt(fixture(), *spec, now)); !slices.Equal(got, []string{"c", "d", "b"}) {
			t.Errorf("ApplyAt() = %v", got)
		}
	})

	for _, tt := range []struct {
		name string
		kv   map[string]string
	}{
		{"unknown preset", map[string]string{ParamPreset: "loudest"}},
		{"bad min score", map[string]string{ParamMinScore: "lots"}},
		{"bad sort key", map[string]string{ParamSortBy: "hot"}},
		{"bad order", map[string]string{ParamOrder: "up"}},
		{"bad thumbnail flag", map[string]string{ParamHasThumbnail: "maybe"}},
		{"bad date", map[string]string{ParamDate: "decade"}},
		{"inverted bounds", map[string]string{ParamMinScore: "10", ParamMaxScore: "5"}},
	} {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromParams(params(tt.kv)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
