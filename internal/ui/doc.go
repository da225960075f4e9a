// Package ui implements an interactive terminal player using bubbletea's Elm architecture.
//
// The TUI has three views:
//  1. [FeedView] : Browse the current subreddit's tracks and drive playback
//  2. [CommentsView] : Read the flattened discussion thread of a track
//  3. [SubredditView] : Pick a subreddit from the curated catalog or type one in
//
// Feed and thread loads run as tea.Cmds against a [feed.Loader]; responses the
// loader reports as stale are dropped so only the newest request updates the
// screen. Playback goes through a [playback.Session], which stays the single
// owner of queue state.
//
// Keyboard navigation uses vim-style bindings with contextual help displayed via charmbracelet/bubbles/help.
package ui
