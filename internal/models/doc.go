// Package models defines the records that flow through the player pipeline.
//
// The package contains three categories of types:
//
// 1. Source records: what the parse boundary extracts from the feed API
//   - [RawFeedItem] : a single post, before any media detection
//   - [FeedQuery] / [FeedPage] : one page request and its cursors
//   - [Comment] : a node of a discussion tree
//
// 2. Pipeline records: what the rest of the program consumes
//   - [Track] : a normalized, immutable post with an optional playable media id
//   - [MediaInfo] : metadata returned by the media resolution service
//
// 3. Local state
//   - [AuthToken] : the cached authorization token
//   - [HistoryEntry] : a track selected in the player
package models
