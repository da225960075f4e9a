package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/rmp/internal/feed"
	"github.com/desertthunder/rmp/internal/playback"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgFeedLoaded MsgKind = iota
	MsgThreadLoaded
	MsgPlayback
	MsgOpened
)

type feedLoaded struct {
	result *feed.Result
	more   bool
	err    error
}

type threadLoaded struct {
	thread *feed.Thread
	err    error
}

// feedLoadedMsg is the constructor for [MsgFeedLoaded]
func feedLoadedMsg(result *feed.Result, more bool, err error) Msg {
	return Msg{kind: MsgFeedLoaded, data: feedLoaded{result, more, err}}
}

// threadLoadedMsg is the constructor for [MsgThreadLoaded]
func threadLoadedMsg(thread *feed.Thread, err error) Msg {
	return Msg{kind: MsgThreadLoaded, data: threadLoaded{thread, err}}
}

// playbackMsg is the constructor for [MsgPlayback]
func playbackMsg(state playback.State) Msg {
	return Msg{kind: MsgPlayback, data: state}
}

// openedMsg is the constructor for [MsgOpened]
func openedMsg(url string, err error) Msg {
	return Msg{kind: MsgOpened, data: struct {
		url string
		err error
	}{url, err}}
}
