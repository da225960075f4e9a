package playback

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rmp/internal/models"
	"github.com/desertthunder/rmp/internal/shared"
)

// SessionOpts configures a [Session].
type SessionOpts struct {
	Player Player
	Logger *log.Logger
	Rand   *rand.Rand
	Volume int

	// OnTrackChange is called, outside the session lock, whenever a different track becomes current.
	OnTrackChange func(models.Track)
}

// Session is the single owner of playback state.
//
// Each method applies one [State] transition and then brings the player in line
// with the new state. Listeners registered with Subscribe see every new state.
type Session struct {
	mu        sync.Mutex
	state     State
	player    Player
	loaded    string
	volume    int
	rng       *rand.Rand
	logger    *log.Logger
	onChange  func(models.Track)
	listeners []func(State)
}

// NewSession creates an empty session.
func NewSession(opts SessionOpts) *Session {
	if opts.Player == nil {
		opts.Player = NopPlayer{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &Session{
		state:    NewState(nil),
		player:   opts.Player,
		volume:   opts.Volume,
		rng:      opts.Rand,
		logger:   opts.Logger,
		onChange: opts.OnTrackChange,
	}
}

// State returns a snapshot of the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn to receive each new state.
func (s *Session) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Replace swaps in a new playlist, keeping shuffle and repeat settings and
// the current track when it is still present.
func (s *Session) Replace(tracks []models.Track) error {
	return s.apply(func(st State) State {
		next := NewState(tracks)
		next.Shuffle, next.Repeat, next.Playing = st.Shuffle, st.Repeat, st.Playing
		if cur, ok := st.Current(); ok {
			if i := next.IndexOf(cur.ID); i >= 0 {
				next.Index = i
			} else {
				next.Playing = false
			}
		}
		if len(next.Playlist) == 0 {
			next.Playing = false
		}
		return next
	})
}

// Select makes track current, adding it to the playlist when absent, and starts playback.
func (s *Session) Select(track models.Track) error {
	return s.apply(func(st State) State { return st.Select(track) })
}

// Enqueue appends tracks that are not already queued.
func (s *Session) Enqueue(tracks ...models.Track) error {
	return s.apply(func(st State) State { return st.Enqueue(tracks...) })
}

// Next, Previous, Play, and Pause apply the matching [State] transition and
// drive the player to match.
func (s *Session) Next() error     { return s.apply(State.Next) }
func (s *Session) Previous() error { return s.apply(State.Previous) }
func (s *Session) Play() error     { return s.apply(State.Play) }
func (s *Session) Pause() error    { return s.apply(State.Pause) }

func (s *Session) TogglePlay() error { return s.apply(State.TogglePlay) }

// ToggleRepeat cycles the repeat mode.
func (s *Session) ToggleRepeat() error { return s.apply(State.ToggleRepeat) }

// Clear empties the playlist and idles the player.
func (s *Session) Clear() error { return s.apply(State.Clear) }

// ToggleShuffle flips shuffle using the session's random source.
func (s *Session) ToggleShuffle() error {
	return s.apply(func(st State) State { return st.ToggleShuffle(s.rng) })
}

// JumpTo plays the playlist entry at i. Out of range indexes are ignored.
func (s *Session) JumpTo(i int) error {
	return s.apply(func(st State) State { return st.JumpTo(i) })
}

// Remove drops the entry at i.
func (s *Session) Remove(i int) error {
	return s.apply(func(st State) State { return st.Remove(i) })
}

// Move reorders the playlist, keeping the current track current.
func (s *Session) Move(from, to int) error {
	return s.apply(func(st State) State { return st.Move(from, to) })
}

// Seek forwards a position change to the player when a playable track is loaded.
func (s *Session) Seek(position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded == "" {
		return nil
	}
	return s.player.Seek(position)
}

// SetVolume stores the volume, clamped to 0-100, and forwards it to the player.
func (s *Session) SetVolume(volume int) error {
	volume = max(0, min(100, volume))
	s.mu.Lock()
	defer s.mu.Unlock()
	s.volume = volume
	return s.player.SetVolume(volume)
}

// Volume returns the last volume set.
func (s *Session) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// HandleEvent consumes a notification from the player adapter.
func (s *Session) HandleEvent(ev Event) error {
	switch ev.Kind {
	case EventReady:
		s.mu.Lock()
		defer s.mu.Unlock()
		if err := s.player.SetVolume(s.volume); err != nil {
			return fmt.Errorf("set volume: %w", err)
		}
		if s.state.Playing && s.loaded != "" {
			return s.player.Play()
		}
		return nil
	case EventStateChange:
		switch ev.State {
		case PlayerPlaying:
			return s.mirror(true)
		case PlayerPaused:
			return s.mirror(false)
		}
		return nil
	case EventEnded:
		if s.State().Repeat == RepeatOne {
			return s.replay()
		}
		return s.apply(State.Ended)
	case EventError:
		s.logger.Warn("player error", "error", ev.Err)
		return s.mirror(false)
	}
	return nil
}

// mirror records a play state reported by the player without sending it back.
func (s *Session) mirror(playing bool) error {
	s.mu.Lock()
	if len(s.state.Playlist) == 0 || s.state.Playing == playing {
		s.mu.Unlock()
		return nil
	}
	s.state.Playing = playing
	st, listeners := s.state, slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, st)
	return nil
}

func (s *Session) replay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded == "" {
		return nil
	}
	if err := s.player.Seek(0); err != nil {
		return fmt.Errorf("replay: %w", err)
	}
	return s.player.Play()
}

// apply runs a transition and drives the player to match the result.
func (s *Session) apply(transition func(State) State) error {
	s.mu.Lock()
	prev := s.state
	next := transition(prev)
	s.state = next
	err := s.sync(prev, next)
	listeners := slices.Clone(s.listeners)
	onChange := s.onChange
	s.mu.Unlock()

	prevTrack, hadPrev := prev.Current()
	if cur, ok := next.Current(); ok && onChange != nil && (!hadPrev || prevTrack.ID != cur.ID) {
		onChange(cur)
	}
	notify(listeners, next)
	return err
}

func (s *Session) sync(prev, next State) error {
	cur, ok := next.Current()
	if !ok || !cur.Playable() {
		if s.loaded == "" {
			return nil
		}
		s.loaded = ""
		s.logger.Debug("current track is not playable, idling player")
		return s.player.Pause()
	}

	if cur.MediaID != s.loaded {
		if err := s.player.Load(cur.MediaID); err != nil {
			s.loaded = ""
			return fmt.Errorf("load %s: %w", cur.MediaID, err)
		}
		s.loaded = cur.MediaID
		s.logger.Debug("loaded track", "id", cur.ID, "media", cur.MediaID)
		if next.Playing {
			return s.player.Play()
		}
		return nil
	}

	switch {
	case next.Playing && !prev.Playing:
		return s.player.Play()
	case !next.Playing && prev.Playing:
		return s.player.Pause()
	}
	return nil
}

func notify(listeners []func(State), st State) {
	for _, fn := range listeners {
		fn(st)
	}
}
