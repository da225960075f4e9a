package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
//
// Bindings are matched before the focused list sees the key, so list
// navigation only receives keys that are not claimed here.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	enter    key.Binding
	back     key.Binding
	play     key.Binding
	next     key.Binding
	prev     key.Binding
	shuffle  key.Binding
	repeat   key.Binding
	comments key.Binding
	open     key.Binding
	search   key.Binding
	preset   key.Binding
	refine   key.Binding
	more     key.Binding
	reload   key.Binding
	browse   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "play")),
		back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		play:     key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "play/pause")),
		next:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next")),
		prev:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "previous")),
		shuffle:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "shuffle")),
		repeat:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "repeat")),
		comments: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "comments")),
		open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		preset:   key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "filter")),
		refine:   key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "refine")),
		more:     key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "more")),
		reload:   key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reload")),
		browse:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "subreddits")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.enter, k.play, k.next, k.comments, k.search, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.enter, k.play},
		{k.next, k.prev, k.shuffle, k.repeat},
		{k.comments, k.open, k.search, k.preset, k.refine},
		{k.more, k.reload, k.browse, k.back, k.quit},
	}
}
