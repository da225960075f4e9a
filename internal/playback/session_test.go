package playback

import (
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/models"
)

// fakePlayer records the commands it receives.
type fakePlayer struct {
	calls   []string
	loadErr error
}

func (f *fakePlayer) Load(id string) error {
	f.calls = append(f.calls, "load:"+id)
	return f.loadErr
}
func (f *fakePlayer) Play() error  { f.calls = append(f.calls, "play"); return nil }
func (f *fakePlayer) Pause() error { f.calls = append(f.calls, "pause"); return nil }
func (f *fakePlayer) Seek(d time.Duration) error {
	f.calls = append(f.calls, "seek:"+d.String())
	return nil
}
func (f *fakePlayer) SetVolume(int) error { f.calls = append(f.calls, "volume"); return nil }

func (f *fakePlayer) reset() { f.calls = nil }

func newTestSession(p Player) *Session {
	return NewSession(SessionOpts{Player: p, Logger: log.New(io.Discard), Volume: 50})
}

func TestSession(t *testing.T) {
	t.Run("select loads and plays", func(t *testing.T) {
		p := &fakePlayer{}
		s := newTestSession(p)
		if err := s.Select(track("a")); err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if !slices.Equal(p.calls, []string{"load:vid_a", "play"}) {
			t.Errorf("player calls = %v", p.calls)
		}
		if s.State().Status() != StatusPlaying {
			t.Errorf("expected playing, got %v", s.State().Status())
		}
	})

	t.Run("pause and resume do not reload", func(t *testing.T) {
		p := &fakePlayer{}
		s := newTestSession(p)
		_ = s.Select(track("a"))
		p.reset()

		_ = s.TogglePlay()
		_ = s.TogglePlay()
		if !slices.Equal(p.calls, []string{"pause", "play"}) {
			t.Errorf("player calls = %v", p.calls)
		}
	})

	t.Run("inert track idles player without error", func(t *testing.T) {
		p := &fakePlayer{}
		s := newTestSession(p)
		_ = s.Select(track("a"))
		p.reset()

		if err := s.Select(inert("b")); err != nil {
			t.Fatalf("Select(inert) error = %v", err)
		}
		if !slices.Equal(p.calls, []string{"pause"}) {
			t.Errorf("player calls = %v", p.calls)
		}
		cur, _ := s.State().Current()
		if cur.ID != "b" {
			t.Errorf("expected b current, got %s", cur.ID)
		}
		if !s.State().Playing {
			t.Error("selection keeps the session playing; only the player idles")
		}
		if err := s.Seek(time.Second); err != nil || len(p.calls) != 1 {
			t.Error("seek should be ignored with nothing loaded")
		}
	})

	t.Run("ended advances or replays", func(t *testing.T) {
		p := &fakePlayer{}
		s := newTestSession(p)
		_ = s.Enqueue(playlist("a", "b")...)
		_ = s.Play()
		p.reset()

		_ = s.HandleEvent(Event{Kind: EventEnded})
		if cur, _ := s.State().Current(); cur.ID != "b" {
			t.Fatalf("expected b after end, got %s", cur.ID)
		}
		if !slices.Equal(p.calls, []string{"load:vid_b", "play"}) {
			t.Errorf("player calls = %v", p.calls)
		}

		_ = s.ToggleRepeat()
		_ = s.ToggleRepeat()
		p.reset()
		_ = s.HandleEvent(Event{Kind: EventEnded})
		if cur, _ := s.State().Current(); cur.ID != "b" {
			t.Fatalf("repeat one should keep b, got %s", cur.ID)
		}
		if !slices.Equal(p.calls, []string{"seek:0s", "play"}) {
			t.Errorf("player calls = %v", p.calls)
		}
	})

	t.Run("state change events are mirrored", func(t *testing.T) {
		p := &fakePlayer{}
		s := newTestSession(p)
		_ = s.Select(track("a"))
		p.reset()

		var seen []bool
		s.Subscribe(func(st State) { seen = append(seen, st.Playing) })

		_ = s.HandleEvent(Event{Kind: EventStateChange, State: PlayerPaused})
		_ = s.HandleEvent(Event{Kind: EventStateChange, State: PlayerBuffering})
		_ = s.HandleEvent(Event{Kind: EventStateChange, State: PlayerPlaying})

		if len(p.calls) != 0 {
			t.Errorf("mirrored events should not command the player, got %v", p.calls)
		}
		if !slices.Equal(seen, []bool{false, true}) {
			t.Errorf("listener saw %v", seen)
		}
	})

	t.Run("ready applies volume and resumes", func(t *testing.T) {
		p := &fakePlayer{}
		s := newTestSession(p)
		_ = s.Select(track("a"))
		p.reset()

		_ = s.HandleEvent(Event{Kind: EventReady})
		if !slices.Equal(p.calls, []string{"volume", "play"}) {
			t.Errorf("player calls = %v", p.calls)
		}
	})

	t.Run("player error pauses", func(t *testing.T) {
		s := newTestSession(&fakePlayer{})
		_ = s.Select(track("a"))
		_ = s.HandleEvent(Event{Kind: EventError, Err: errors.New("embed blocked")})
		if s.State().Playing {
			t.Error("expected session paused after player error")
		}
	})

	t.Run("load failure is returned", func(t *testing.T) {
		s := newTestSession(&fakePlayer{loadErr: errors.New("boom")})
		if err := s.Select(track("a")); err == nil {
			t.Error("expected load error")
		}
	})

	t.Run("track change hook", func(t *testing.T) {
		var changed []string
		s := NewSession(SessionOpts{
			Logger:        log.New(io.Discard),
			OnTrackChange: func(tr models.Track) { changed = append(changed, tr.ID) },
		})
		_ = s.Select(track("a"))
		_ = s.TogglePlay()
		_ = s.Select(track("b"))
		_ = s.Previous()
		if !slices.Equal(changed, []string{"a", "b", "a"}) {
			t.Errorf("OnTrackChange saw %v", changed)
		}
	})

	t.Run("replace keeps current track", func(t *testing.T) {
		s := newTestSession(&fakePlayer{})
		_ = s.Enqueue(playlist("a", "b", "c")...)
		_ = s.JumpTo(1)
		_ = s.Replace(playlist("x", "b"))
		st := s.State()
		if cur, _ := st.Current(); cur.ID != "b" || !st.Playing {
			t.Errorf("expected b still playing, got %s playing=%v", cur.ID, st.Playing)
		}

		_ = s.Replace(playlist("y"))
		if st := s.State(); st.Playing || st.Index != 0 {
			t.Errorf("expected paused at 0 after current track dropped, got %+v", st)
		}
	})

	t.Run("volume is clamped", func(t *testing.T) {
		s := newTestSession(&fakePlayer{})
		_ = s.SetVolume(150)
		if s.Volume() != 100 {
			t.Errorf("Volume() = %d, want 100", s.Volume())
		}
	})
}

func TestBrowserPlayer(t *testing.T) {
	var opened string
	p := &BrowserPlayer{Open: func(url string) error { opened = url; return nil }}
	if err := p.Load("dQw4w9WgXcQ"); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if opened != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Errorf("opened %q", opened)
	}
}
