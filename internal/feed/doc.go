// Package feed sits between callers and the upstream client.
//
// [CachedFetcher] serves repeated requests from a [cache.Cache], collapses
// identical in-flight requests with singleflight, and retries transient
// failures a bounded number of times with a fixed backoff.
//
// [Loader] is for interactive callers that change their query while requests
// are running. Each load is tagged with a generation; changing the query
// cancels the previous request, and any response that arrives for an older
// generation is discarded with [ErrStale] instead of replacing newer results.
package feed
