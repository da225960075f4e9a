package playback

import (
	"time"

	"github.com/desertthunder/rmp/internal/shared"
)

// Player is the embed player adapter driven by a [Session].
type Player interface {
	Load(mediaID string) error
	Play() error
	Pause() error
	Seek(position time.Duration) error
	SetVolume(volume int) error
}

// EventKind identifies a notification from the player adapter.
type EventKind int

const (
	EventReady EventKind = iota
	EventStateChange
	EventEnded
	EventError
)

// PlayerState is the adapter's own playback state, reported with [EventStateChange].
type PlayerState int

const (
	PlayerPaused PlayerState = iota
	PlayerPlaying
	PlayerBuffering
)

// Event is a notification emitted by the player adapter.
type Event struct {
	Kind  EventKind
	State PlayerState
	Err   error
}

// NopPlayer accepts every command and does nothing.
type NopPlayer struct{}

func (NopPlayer) Load(string) error        { return nil }
func (NopPlayer) Play() error              { return nil }
func (NopPlayer) Pause() error             { return nil }
func (NopPlayer) Seek(time.Duration) error { return nil }
func (NopPlayer) SetVolume(int) error      { return nil }

// BrowserPlayer hands loaded media to the system browser.
//
// Transport controls are left to the browser tab, so only Load has an effect.
type BrowserPlayer struct {
	Open func(url string) error
}

// NewBrowserPlayer returns a [BrowserPlayer] that uses [shared.OpenBrowser].
func NewBrowserPlayer() *BrowserPlayer {
	return &BrowserPlayer{Open: shared.OpenBrowser}
}

func (b *BrowserPlayer) Load(mediaID string) error {
	return b.Open("https://www.youtube.com/watch?v=" + mediaID)
}

func (b *BrowserPlayer) Play() error              { return nil }
func (b *BrowserPlayer) Pause() error             { return nil }
func (b *BrowserPlayer) Seek(time.Duration) error { return nil }
func (b *BrowserPlayer) SetVolume(int) error      { return nil }
