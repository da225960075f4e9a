package playback

import (
	"math/rand/v2"
	"slices"

	"github.com/desertthunder/rmp/internal/models"
)

// RepeatMode controls what happens at the end of a track or of the playlist.
type RepeatMode string

const (
	RepeatOff RepeatMode = "off"
	RepeatAll RepeatMode = "all"
	RepeatOne RepeatMode = "one"
)

// Next cycles off, all, one, off.
func (r RepeatMode) Next() RepeatMode {
	switch r {
	case RepeatAll:
		return RepeatOne
	case RepeatOne:
		return RepeatOff
	default:
		return RepeatAll
	}
}

// Status is the coarse session state.
type Status int

const (
	StatusEmpty Status = iota
	StatusPaused
	StatusPlaying
)

func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	default:
		return "empty"
	}
}

// State is a snapshot of the playback session.
//
// Index is -1 when the playlist is empty and always a valid position otherwise.
type State struct {
	Playlist []models.Track
	Index    int
	Playing  bool
	Shuffle  bool
	Repeat   RepeatMode
}

// NewState builds a paused state over tracks, positioned at the first one.
func NewState(tracks []models.Track) State {
	s := State{Playlist: slices.Clone(tracks), Index: -1, Repeat: RepeatOff}
	if len(s.Playlist) > 0 {
		s.Index = 0
	}
	return s
}

// Current returns the track at Index.
func (s State) Current() (models.Track, bool) {
	if s.Index < 0 || s.Index >= len(s.Playlist) {
		return models.Track{}, false
	}
	return s.Playlist[s.Index], true
}

// Status reports whether the session is empty, paused, or playing.
func (s State) Status() Status {
	switch {
	case len(s.Playlist) == 0:
		return StatusEmpty
	case s.Playing:
		return StatusPlaying
	default:
		return StatusPaused
	}
}

// IndexOf returns the playlist position of the track with id, or -1.
func (s State) IndexOf(id string) int {
	return slices.IndexFunc(s.Playlist, func(t models.Track) bool { return t.ID == id })
}

// Select makes track current and starts playing, appending it when absent.
func (s State) Select(track models.Track) State {
	if i := s.IndexOf(track.ID); i >= 0 {
		s.Index = i
	} else {
		s.Playlist = append(slices.Clip(s.Playlist), track)
		s.Index = len(s.Playlist) - 1
	}
	s.Playing = true
	return s
}

// Enqueue appends tracks whose ids are not already present.
func (s State) Enqueue(tracks ...models.Track) State {
	s.Playlist = slices.Clip(s.Playlist)
	for _, t := range tracks {
		if s.IndexOf(t.ID) < 0 {
			s.Playlist = append(s.Playlist, t)
		}
	}
	if s.Index < 0 && len(s.Playlist) > 0 {
		s.Index = 0
	}
	return s
}

// Next advances one track. At the end it wraps only with [RepeatAll] and
// otherwise stays on the last track.
func (s State) Next() State {
	if len(s.Playlist) == 0 {
		return s
	}
	switch {
	case s.Index+1 < len(s.Playlist):
		s.Index++
	case s.Repeat == RepeatAll:
		s.Index = 0
	}
	s.Playing = true
	return s
}

// Previous steps back one track, wrapping from the first to the last.
func (s State) Previous() State {
	if len(s.Playlist) == 0 {
		return s
	}
	if s.Index <= 0 {
		s.Index = len(s.Playlist) - 1
	} else {
		s.Index--
	}
	s.Playing = true
	return s
}

// ToggleShuffle flips shuffle. Enabling it with more than one track permutes
// the playlist using rng and keeps the current track current. Disabling it keeps
// the shuffled order.
func (s State) ToggleShuffle(rng *rand.Rand) State {
	s.Shuffle = !s.Shuffle
	if !s.Shuffle || len(s.Playlist) < 2 {
		return s
	}

	current, hasCurrent := s.Current()
	s.Playlist = slices.Clone(s.Playlist)
	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(s.Playlist), func(i, j int) {
		s.Playlist[i], s.Playlist[j] = s.Playlist[j], s.Playlist[i]
	})
	if hasCurrent {
		s.Index = s.IndexOf(current.ID)
	}
	return s
}

// ToggleRepeat cycles the repeat mode.
func (s State) ToggleRepeat() State {
	s.Repeat = s.Repeat.Next()
	return s
}

// Play marks the session playing. It is a no-op on an empty playlist.
func (s State) Play() State {
	if len(s.Playlist) > 0 {
		s.Playing = true
	}
	return s
}

// Pause marks the session paused.
func (s State) Pause() State {
	s.Playing = false
	return s
}

// TogglePlay flips between playing and paused.
func (s State) TogglePlay() State {
	if s.Playing {
		return s.Pause()
	}
	return s.Play()
}

// Ended handles the end of the current track: [RepeatOne] keeps it, anything else advances.
func (s State) Ended() State {
	if len(s.Playlist) == 0 {
		return s
	}
	if s.Repeat == RepeatOne {
		s.Playing = true
		return s
	}
	return s.Next()
}

// JumpTo makes position i current and starts playing. Out of range positions are ignored.
func (s State) JumpTo(i int) State {
	if i < 0 || i >= len(s.Playlist) {
		return s
	}
	s.Index = i
	s.Playing = true
	return s
}

// Remove drops position i. Removing the current track keeps the same position
// (clamped to the new end); removing an earlier one shifts the index back.
func (s State) Remove(i int) State {
	if i < 0 || i >= len(s.Playlist) {
		return s
	}
	s.Playlist = slices.Delete(slices.Clone(s.Playlist), i, i+1)
	switch {
	case len(s.Playlist) == 0:
		s.Index = -1
		s.Playing = false
	case i < s.Index:
		s.Index--
	case s.Index >= len(s.Playlist):
		s.Index = len(s.Playlist) - 1
	}
	return s
}

// Move relocates the track at from to position to, keeping the current track current.
func (s State) Move(from, to int) State {
	n := len(s.Playlist)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return s
	}
	current, _ := s.Current()
	moved := s.Playlist[from]
	list := slices.Delete(slices.Clone(s.Playlist), from, from+1)
	s.Playlist = slices.Insert(list, to, moved)
	s.Index = s.IndexOf(current.ID)
	return s
}

// Clear empties the playlist and stops playback. Shuffle and repeat settings are kept.
func (s State) Clear() State {
	s.Playlist = nil
	s.Index = -1
	s.Playing = false
	return s
}
