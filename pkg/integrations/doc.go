// Package integrations provides the HTTP client shared by the upstream API
// clients ([lastfm], [discogs]) and the image loader.
//
// [Client] layers three concerns over net/http:
//   - default headers (API keys, user agents)
//   - response caching through a [cache.Cache], keyed per namespace
//   - retry with exponential backoff for transport failures and 5xx responses
//
// Non-200 responses come back as [*StatusError], which unwraps to
// [ErrNotFound] or [ErrNetwork] and keeps the start of the body for APIs
// that report their own error codes.
//
// [lastfm]: github.com/matzehuels/collagefm/pkg/lastfm
// [discogs]: github.com/matzehuels/collagefm/pkg/discogs
// [cache.Cache]: github.com/matzehuels/collagefm/pkg/cache.Cache
package integrations
