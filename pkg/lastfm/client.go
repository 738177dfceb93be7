package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/collagefm/pkg/cache"
	"github.com/matzehuels/collagefm/pkg/collage"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/integrations"
)

// DefaultBaseURL is the Last.fm API root.
const DefaultBaseURL = "https://ws.audioscrobbler.com/2.0/"

// Track info lookups are sent in batches with a pause in between to stay
// under the API rate limit.
const (
	DefaultBatchSize  = 40
	DefaultBatchPause = 2 * time.Second
)

const artistLookupLimit = 8

// ArtistImageFinder resolves an artist name to an image URL. It returns ""
// when the artist has no picture.
type ArtistImageFinder interface {
	ArtistImage(ctx context.Context, name string) (string, error)
}

// Request describes one chart fetch.
type Request struct {
	Username string
	Period   string
	Type     ItemType
	Limit    int
	Refresh  bool // bypass the response cache
}

// Client fetches charts from Last.fm.
type Client struct {
	charts *integrations.Client
	info   *integrations.Client

	apiKey     string
	baseURL    string
	batchSize  int
	batchPause time.Duration
	sleep      func(context.Context, time.Duration) error
	artists    ArtistImageFinder
}

type config struct {
	cache    cache.Cache
	http     *http.Client
	attempts int
	delay    time.Duration
}

// Option configures a [Client].
type Option func(*Client, *config)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client, _ *config) { c.baseURL = u }
}

// WithCache stores API responses in cc.
func WithCache(cc cache.Cache) Option {
	return func(_ *Client, cfg *config) { cfg.cache = cc }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(_ *Client, cfg *config) { cfg.http = h }
}

// WithRetry overrides the retry schedule for transient failures.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(_ *Client, cfg *config) { cfg.attempts, cfg.delay = attempts, delay }
}

// WithBatching sets the track.getInfo batch size and the pause between batches.
func WithBatching(size int, pause time.Duration) Option {
	return func(c *Client, _ *config) {
		if size > 0 {
			c.batchSize = size
		}
		c.batchPause = pause
	}
}

// WithArtistImages sets the image source for artist charts.
func WithArtistImages(f ArtistImageFinder) Option {
	return func(c *Client, _ *config) { c.artists = f }
}

// NewClient creates a Last.fm client using apiKey.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		batchSize:  DefaultBatchSize,
		batchPause: DefaultBatchPause,
		sleep:      sleepContext,
	}
	cfg := &config{}
	for _, opt := range opts {
		opt(c, cfg)
	}

	c.charts = integrations.NewClient(cfg.cache, "lastfm", cache.TTLChart, nil).WithHTTPClient(cfg.http)
	c.info = integrations.NewClient(cfg.cache, "lastfm.info", cache.TTLTrackInfo, nil).WithHTTPClient(cfg.http)
	if cfg.attempts > 0 {
		c.charts.WithRetry(cfg.attempts, cfg.delay)
		c.info.WithRetry(cfg.attempts, cfg.delay)
	}
	return c
}

// TopItems fetches the chart described by req and converts it to collage
// items in rank order.
func (c *Client) TopItems(ctx context.Context, req Request) ([]collage.Item, error) {
	if err := errs.ValidateUsername(req.Username); err != nil {
		return nil, err
	}
	if c.apiKey == "" {
		return nil, errs.New(errs.ErrCodeUnauthorized, "last.fm API key is not configured")
	}
	if req.Limit < 1 {
		return nil, errs.New(errs.ErrCodeInvalidInput, "limit must be positive, got %d", req.Limit)
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Period == "" {
		req.Period = DefaultPeriod
	}

	switch req.Type {
	case Albums, "":
		return c.TopAlbums(ctx, req)
	case Tracks:
		return c.TopTracks(ctx, req)
	case Artists:
		return c.TopArtists(ctx, req)
	default:
		return nil, errs.New(errs.ErrCodeInvalidItemType, "invalid item type: %s (must be albums, tracks or artists)", req.Type)
	}
}

// TopAlbums fetches user.gettopalbums. Each item shows the album cover and
// an "artist – album" label.
func (c *Client) TopAlbums(ctx context.Context, req Request) ([]collage.Item, error) {
	var resp topAlbumsResponse
	if err := c.chart(ctx, "user.gettopalbums", req, &resp); err != nil {
		return nil, err
	}

	items := make([]collage.Item, 0, len(resp.TopAlbums.Album))
	for _, a := range resp.TopAlbums.Album {
		items = append(items, collage.Item{
			DisplayLink: a.Image.best(),
			Label:       albumLabel(a.Artist.Name, a.Name),
		})
	}
	return items, nil
}

// TopTracks fetches user.gettoptracks and resolves each track's album cover.
// Tracks without an album keep an empty locator.
func (c *Client) TopTracks(ctx context.Context, req Request) ([]collage.Item, error) {
	var resp topTracksResponse
	if err := c.chart(ctx, "user.gettoptracks", req, &resp); err != nil {
		return nil, err
	}

	tracks := make([]Track, 0, len(resp.TopTracks.Track))
	for _, t := range resp.TopTracks.Track {
		tracks = append(tracks, Track{Title: t.Name, Artist: t.Artist.Name, MBID: t.MBID})
	}

	links, err := c.TrackImages(ctx, tracks, req.Refresh)
	if err != nil {
		return nil, err
	}
	items := make([]collage.Item, len(tracks))
	for i, t := range tracks {
		items[i] = collage.Item{DisplayLink: links[i], Label: t.Title}
	}
	return items, nil
}

// TrackImages looks up the album cover of each track via track.getInfo.
// Lookups run concurrently within a batch; batches are separated by the
// configured pause. The result is index-aligned with tracks.
func (c *Client) TrackImages(ctx context.Context, tracks []Track, refresh bool) ([]string, error) {
	links := make([]string, len(tracks))
	for start := 0; start < len(tracks); start += c.batchSize {
		end := min(start+c.batchSize, len(tracks))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				link, err := c.trackImage(gctx, tracks[i], refresh)
				if err != nil {
					return err
				}
				links[i] = link
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if end < len(tracks) {
			if err := c.sleep(ctx, c.batchPause); err != nil {
				return nil, err
			}
		}
	}
	return links, nil
}

func (c *Client) trackImage(ctx context.Context, t Track, refresh bool) (string, error) {
	q := url.Values{
		"method": {"track.getInfo"},
		"artist": {t.Artist},
		"track":  {t.Title},
	}
	key := "track.getinfo:" + strings.ToLower(t.Artist) + ":" + strings.ToLower(t.Title)

	var resp trackInfoResponse
	err := c.info.Cached(ctx, key, refresh, &resp, func() error {
		if err := c.info.Get(ctx, c.url(q), &resp); err != nil {
			return err
		}
		return resp.failure()
	})
	if err != nil {
		if ae, ok := apiFailure(err); ok && ae.Code == apiErrNotFound {
			return "", nil
		}
		return "", classify(err, t.Artist)
	}
	if resp.Track.Album == nil {
		return "", nil
	}
	return resp.Track.Album.Image.best(), nil
}

// TopArtists fetches user.gettopartists and resolves pictures through the
// configured [ArtistImageFinder]. Artists without a picture are dropped.
func (c *Client) TopArtists(ctx context.Context, req Request) ([]collage.Item, error) {
	if c.artists == nil {
		return nil, errs.New(errs.ErrCodeInvalidItemType, "artist charts need an artist image source (configure a Discogs token)")
	}

	var resp topArtistsResponse
	if err := c.chart(ctx, "user.gettopartists", req, &resp); err != nil {
		return nil, err
	}

	artists := resp.TopArtists.Artist
	links := make([]string, len(artists))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(artistLookupLimit)
	for i, a := range artists {
		g.Go(func() error {
			link, err := c.artists.ArtistImage(gctx, a.Name)
			if err != nil {
				return err
			}
			links[i] = link
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := make([]collage.Item, 0, len(artists))
	for i, a := range artists {
		if links[i] == "" {
			continue
		}
		items = append(items, collage.Item{DisplayLink: links[i], Label: a.Name})
	}
	return items, nil
}

// chart performs a cached user.* chart call.
func (c *Client) chart(ctx context.Context, method string, req Request, v any) error {
	q := url.Values{
		"method": {method},
		"user":   {req.Username},
		"period": {req.Period},
		"limit":  {strconv.Itoa(req.Limit)},
	}
	key := fmt.Sprintf("%s:%s:%s:%d", method, strings.ToLower(req.Username), req.Period, req.Limit)

	err := c.charts.Cached(ctx, key, req.Refresh, v, func() error {
		if err := c.charts.Get(ctx, c.url(q), v); err != nil {
			return err
		}
		if f, ok := v.(failer); ok {
			return f.failure()
		}
		return nil
	})
	return classify(err, req.Username)
}

func (c *Client) url(q url.Values) string {
	q.Set("api_key", c.apiKey)
	q.Set("format", "json")
	return c.baseURL + "?" + q.Encode()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
