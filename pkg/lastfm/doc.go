// Package lastfm fetches a user's top charts from the Last.fm API and turns
// them into collage items.
//
// Three chart types are supported:
//
//   - [Albums]: user.gettopalbums, one item per album with its cover art
//   - [Tracks]: user.gettoptracks, with the cover of each track's album
//     looked up through track.getInfo in rate-limited batches
//   - [Artists]: user.gettopartists, with images from an [ArtistImageFinder]
//     (Last.fm no longer serves artist pictures)
//
// Responses are cached through [integrations.Client]; charts for an hour,
// track details for a week.
//
// [integrations.Client]: github.com/matzehuels/collagefm/pkg/integrations.Client
package lastfm
