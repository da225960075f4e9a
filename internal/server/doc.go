// Package server exposes the feed pipeline as a small JSON HTTP API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses a chi mux internally, so method matching
// and 404/405 handling come from chi while handlers stay plain [http.Handler] values.
//
// # Routes
//
//	GET /health                → liveness check
//	GET /api/reddit/posts      → one normalized listing page
//	GET /api/reddit/search     → all-time listing ranked against ?q=
//	GET /api/reddit/comments   → comment tree for ?subreddit=&postId=
//	GET /api/reddit/collect    → multi-page collection streamed as server-sent events
//	GET /api/soundcloud/track  → SoundCloud metadata for ?url=
//
// # Errors
//
// Handlers map sentinel errors from the shared package onto status codes:
// invalid input is 400, not found is 404, missing configuration is 503, and
// upstream fetch failures are 502. Bodies are always {"error": "..."}.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
