// Package tasks runs multi-page feed operations with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines three operations:
//
//  1. [Engine.Collect] : Walk a subreddit listing across several pages
//     - Fetches each page through the cached, retrying fetcher
//     - Normalizes posts into tracks, dropping duplicates across pages
//     - Applies an optional filter pass to the collected set
//
//  2. [Engine.Search] : Query a subreddit's all-time listing
//     - Fetches one large page (100 posts, window "all")
//     - Orders matches by score, highest first, unless a sort key asks for relevance
//     - Caches results for the configured search TTL
//
//  3. [Engine.Thread] : Fetch and flatten a post's comment thread
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default so a slow reader never stalls a fetch.
package tasks
