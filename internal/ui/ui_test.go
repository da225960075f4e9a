package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rmp/internal/comments"
	"github.com/desertthunder/rmp/internal/feed"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/playback"
	"github.com/desertthunder/rmp/internal/shared"
	th "github.com/desertthunder/rmp/internal/testing"
)

type stubFetcher struct {
	thread []models.Comment
}

func (s *stubFetcher) FetchPage(ctx context.Context, q models.FeedQuery) (*models.FeedPage, error) {
	return &models.FeedPage{}, nil
}

func (s *stubFetcher) FetchThread(ctx context.Context, subreddit, postID string, limit int) ([]models.Comment, error) {
	return s.thread, nil
}

var now = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func newTestModel(t *testing.T) (*Model, *playback.Session, *[]string) {
	t.Helper()
	session := playback.NewSession(playback.SessionOpts{})
	var opened []string
	m := NewModel(context.Background(), Opts{
		Loader:  feed.NewLoader(&stubFetcher{}, 50),
		Session: session,
		Query:   models.FeedQuery{Subreddit: "music", Sort: models.SortHot, Window: models.WindowDay, Limit: 25},
		Logger:  shared.NewLogger(nil),
		Open: func(url string) error {
			opened = append(opened, url)
			return nil
		},
		Now: func() time.Time { return now },
	})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, session, &opened
}

func fixtureTracks() []models.Track {
	one := th.Track("one", "Alpha - First", 10)
	two := th.Track("two", "Beta - Second", 300)
	three := th.Track("three", "Gamma - Third", 50)
	three.MediaID = ""
	return []models.Track{one, two, three}
}

func loaded(m *Model, tracks []models.Track) {
	m.Update(feedLoadedMsg(&feed.Result{Tracks: tracks, After: "t3_next"}, false, nil))
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func visibleIDs(m *Model) []string {
	ids := make([]string, len(m.visible))
	for i, t := range m.visible {
		ids[i] = t.ID
	}
	return ids
}

func TestFeedStates(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		if cmd := m.Init(); cmd == nil {
			t.Fatal("expected a load command")
		}
		if !strings.Contains(m.View(), "Loading r/music") {
			t.Errorf("expected loading view, got %q", m.View())
		}
	})

	t.Run("error", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		m.Update(feedLoadedMsg(nil, false, shared.ErrFetchFailed))
		if m.status != Failed {
			t.Fatalf("expected Failed, got %v", m.status)
		}
		if !strings.Contains(m.View(), "Press R to retry") {
			t.Errorf("expected retry hint, got %q", m.View())
		}
	})

	t.Run("empty", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, nil)
		if m.status != Empty {
			t.Fatalf("expected Empty, got %v", m.status)
		}
		if !strings.Contains(m.View(), "No tracks in r/music") {
			t.Errorf("expected empty view, got %q", m.View())
		}
	})

	t.Run("populated seeds an empty session", func(t *testing.T) {
		m, session, _ := newTestModel(t)
		loaded(m, fixtureTracks())
		if m.status != Ready {
			t.Fatalf("expected Ready, got %v", m.status)
		}
		if got := len(session.State().Playlist); got != 3 {
			t.Errorf("expected 3 queued tracks, got %d", got)
		}
		if got := visibleIDs(m); strings.Join(got, ",") != "one,two,three" {
			t.Errorf("expected listing order, got %v", got)
		}
		if !strings.Contains(m.View(), "Alpha - First") {
			t.Errorf("expected track in view")
		}
	})

	t.Run("stale responses are dropped", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())
		m.Update(feedLoadedMsg(nil, false, feed.ErrStale))
		if m.status != Ready || len(m.visible) != 3 {
			t.Errorf("stale response changed state: %v %d", m.status, len(m.visible))
		}
	})

	t.Run("failed load more keeps tracks", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())
		m.Update(feedLoadedMsg(nil, true, errors.New("boom")))
		if m.status != Ready || len(m.visible) != 3 {
			t.Errorf("expected tracks to survive, got %v %d", m.status, len(m.visible))
		}
		if !strings.Contains(m.notice, "boom") {
			t.Errorf("expected notice, got %q", m.notice)
		}
	})
}

func TestPlaybackKeys(t *testing.T) {
	m, session, _ := newTestModel(t)
	loaded(m, fixtureTracks())

	press(m, "down", "enter")
	st := session.State()
	if cur, _ := st.Current(); cur.ID != "two" || !st.Playing {
		t.Fatalf("expected two playing, got %+v", st)
	}
	if !strings.Contains(m.View(), "▶ Beta - Second") {
		t.Errorf("expected playing marker, got %q", m.View())
	}

	press(m, "space")
	if session.State().Playing {
		t.Errorf("expected paused after space")
	}

	press(m, "n")
	if cur, _ := session.State().Current(); cur.ID != "three" {
		t.Errorf("expected next to be three, got %s", cur.ID)
	}

	press(m, "p")
	if cur, _ := session.State().Current(); cur.ID != "two" {
		t.Errorf("expected previous to be two, got %s", cur.ID)
	}

	press(m, "r")
	if session.State().Repeat != playback.RepeatAll {
		t.Errorf("expected repeat all, got %s", session.State().Repeat)
	}

	press(m, "s")
	if !session.State().Shuffle {
		t.Errorf("expected shuffle on")
	}
	if cur, _ := session.State().Current(); cur.ID != "two" {
		t.Errorf("shuffle moved the current track to %s", cur.ID)
	}
}

func TestSelectUnplayable(t *testing.T) {
	m, session, _ := newTestModel(t)
	loaded(m, fixtureTracks())

	press(m, "down", "down", "enter")
	if cur, _ := session.State().Current(); cur.ID != "three" {
		t.Fatalf("expected three to be current, got %s", cur.ID)
	}
	if !strings.Contains(m.notice, "press o") {
		t.Errorf("expected open hint, got %q", m.notice)
	}
}

func TestSearchAndPresets(t *testing.T) {
	t.Run("search narrows and ranks", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())

		press(m, "/")
		if m.mode != inputSearch {
			t.Fatal("expected search input to open")
		}
		press(m, "b", "e", "t", "a", "enter")
		if got := visibleIDs(m); len(got) != 1 || got[0] != "two" {
			t.Errorf("expected only two, got %v", got)
		}

		press(m, "esc")
		if len(m.visible) != 3 {
			t.Errorf("expected esc to clear the search, got %v", visibleIDs(m))
		}
	})

	t.Run("no matches", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())
		press(m, "/", "z", "z", "enter")
		if m.status != Empty || !strings.Contains(m.View(), "No tracks match") {
			t.Errorf("expected filtered empty state, got %v", m.status)
		}
	})

	t.Run("presets cycle back to listing order", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())

		press(m, "f")
		if m.preset != 0 {
			t.Fatalf("expected first preset, got %d", m.preset)
		}
		if got := visibleIDs(m); strings.Join(got, ",") != "two,three,one" {
			t.Errorf("expected score order, got %v", got)
		}
		for range 4 {
			press(m, "f")
		}
		if m.preset != -1 {
			t.Fatalf("expected presets to wrap, got %d", m.preset)
		}
		if got := visibleIDs(m); strings.Join(got, ",") != "one,two,three" {
			t.Errorf("expected listing order, got %v", got)
		}
	})
}

func TestRefine(t *testing.T) {
	t.Run("applies name=value pairs", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())

		press(m, "F")
		if m.mode != inputRefine {
			t.Fatal("expected filter input to open")
		}
		press(m, "max-score=100  order=asc", "enter")
		if got := visibleIDs(m); strings.Join(got, ",") != "one,three" {
			t.Errorf("expected one,three, got %v", got)
		}
		if !strings.Contains(m.View(), "max-score=100 order=asc") {
			t.Errorf("expected the refinement in the title, got %q", m.View())
		}

		press(m, "F", "esc")
		if m.refine != "max-score=100 order=asc" {
			t.Errorf("esc should keep the refinement, got %q", m.refine)
		}
	})

	t.Run("combines with search", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())

		press(m, "/", "a", "enter")
		press(m, "F", "min-score=-5 sort-by=score", "enter")
		if got := visibleIDs(m); strings.Join(got, ",") != "two,three,one" {
			t.Errorf("expected score order within the search, got %v", got)
		}
		if m.spec.Query != "a" {
			t.Errorf("expected the search to survive, got %q", m.spec.Query)
		}
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())

		press(m, "F", "loudness=11", "enter")
		if !strings.Contains(m.notice, "unknown filter") {
			t.Errorf("expected a notice, got %q", m.notice)
		}
		if m.refine != "" || len(m.visible) != 3 {
			t.Errorf("invalid refinement changed the feed: %q %v", m.refine, visibleIDs(m))
		}
	})

	t.Run("presets and empty input clear it", func(t *testing.T) {
		m, _, _ := newTestModel(t)
		loaded(m, fixtureTracks())

		press(m, "F", "has-thumbnail", "enter")
		if m.status != Empty {
			t.Fatalf("expected no thumbnails in the fixtures, got %v", visibleIDs(m))
		}
		press(m, "f")
		if m.refine != "" || m.preset != 0 {
			t.Errorf("expected the preset to replace the refinement, got %q %d", m.refine, m.preset)
		}

		press(m, "F", "date=week", "enter")
		if m.preset != -1 {
			t.Errorf("expected the refinement to replace the preset")
		}
		press(m, "F")
		m.input.SetValue("")
		press(m, "enter")
		if m.refine != "" || strings.Join(visibleIDs(m), ",") != "one,two,three" {
			t.Errorf("expected listing order after clearing, got %q %v", m.refine, visibleIDs(m))
		}
	})
}

func TestComments(t *testing.T) {
	m, _, _ := newTestModel(t)
	loaded(m, fixtureTracks())

	if cmd := press(m, "c"); cmd == nil {
		t.Fatal("expected a thread load command")
	}
	if m.view != CommentsView || m.threadStatus != Loading {
		t.Fatalf("expected loading comments view, got %v %v", m.view, m.threadStatus)
	}

	t.Run("stale", func(t *testing.T) {
		m.Update(threadLoadedMsg(nil, feed.ErrStale))
		if m.threadStatus != Loading {
			t.Errorf("stale thread changed state")
		}
	})

	t.Run("empty", func(t *testing.T) {
		m.Update(threadLoadedMsg(&feed.Thread{TrackID: "one"}, nil))
		if m.threadStatus != Empty || !strings.Contains(m.View(), "No comments yet.") {
			t.Errorf("expected empty thread view")
		}
	})

	t.Run("populated", func(t *testing.T) {
		tree := []models.Comment{th.Comment("c1", "alice", "love this", th.Comment("c2", "bob", "same"))}
		m.Update(threadLoadedMsg(&feed.Thread{TrackID: "one", Total: 2, Entries: comments.ForDisplay(tree)}, nil))
		if m.threadStatus != Ready {
			t.Fatalf("expected Ready, got %v", m.threadStatus)
		}
		view := m.View()
		for _, want := range []string{"alice", "  love this", "  bob", "    same", "2 of 2 comments"} {
			if !strings.Contains(view, want) {
				t.Errorf("view missing %q:\n%s", want, view)
			}
		}
	})

	press(m, "esc")
	if m.view != FeedView {
		t.Errorf("expected esc to return to the feed")
	}
}

func TestOpenAndBrowse(t *testing.T) {
	m, _, opened := newTestModel(t)
	loaded(m, fixtureTracks())

	cmd := press(m, "o")
	if cmd == nil {
		t.Fatal("expected open command")
	}
	m.Update(cmd())
	if len(*opened) != 1 || !strings.Contains((*opened)[0], th.MediaID("one")) {
		t.Errorf("unexpected opened urls %v", *opened)
	}

	press(m, "b")
	if m.view != SubredditView {
		t.Fatalf("expected subreddit view")
	}
	if len(m.subList.Items()) == 0 {
		t.Errorf("expected catalog entries")
	}
	press(m, "esc")
	if m.view != FeedView {
		t.Errorf("expected esc to return to the feed")
	}
}

func TestCustomSubreddit(t *testing.T) {
	m, _, _ := newTestModel(t)
	m.query.Subreddit = "custom-reddit"
	m.Init()
	if m.view != SubredditView || m.mode != inputSubreddit {
		t.Fatalf("expected subreddit prompt, got view %v mode %v", m.view, m.mode)
	}

	cmd := press(m, "j", "a", "z", "z", "enter")
	if cmd == nil {
		t.Fatal("expected a load command")
	}
	if m.query.Subreddit != "jazz" || m.view != FeedView || m.status != Loading {
		t.Errorf("unexpected state %q %v %v", m.query.Subreddit, m.view, m.status)
	}
}
