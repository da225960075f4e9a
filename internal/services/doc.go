// Package services implements the HTTP clients for the external APIs the player reads from.
//
// # Feed source
//
// [RedditService] reads listing pages and comment threads from the public JSON
// endpoints. Every request carries the configured User-Agent and waits on a
// client-side [rate.Limiter]. Responses pass through a parse boundary: each
// listing child is decoded on its own, and children that do not have the
// expected shape are dropped and counted instead of failing the whole page.
//
// # Media resolution
//
// [SoundCloudService] resolves a track URL to [models.MediaInfo] when a client
// id is configured. Without one it reports [shared.ErrConfigMissing].
//
// # Authorization
//
// [RedditAuth] builds the authorization URL for the login flow. Code exchange is
// not implemented; tokens obtained elsewhere are cached by the repositories package.
//
// # Error Handling
//
// Services use typed errors from the shared package:
//   - [shared.FetchError] : non-2xx status or transport failure, matches [shared.ErrFetchFailed]
//   - [shared.ErrConfigMissing] : a required credential is absent
//   - [shared.ErrNotFound] : the resolved resource does not exist
//   - [shared.ErrInvalidInput] : the caller passed an unusable argument
package services
