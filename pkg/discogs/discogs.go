// Package discogs looks up artist pictures in the Discogs database.
//
// Last.fm stopped serving artist images, so artist collages take the first
// Discogs search hit for each name instead.
package discogs

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/matzehuels/collagefm/pkg/buildinfo"
	"github.com/matzehuels/collagefm/pkg/cache"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/integrations"
)

// DefaultBaseURL is the Discogs API root.
const DefaultBaseURL = "https://api.discogs.com"

// userAgent is required by the Discogs API.
var userAgent = buildinfo.UserAgent() + " +https://github.com/matzehuels/collagefm"

type searchResponse struct {
	Results []struct {
		Title      string `json:"title"`
		CoverImage string `json:"cover_image"`
		Thumb      string `json:"thumb"`
	} `json:"results"`
}

// Client searches the Discogs database.
type Client struct {
	api     *integrations.Client
	token   string
	baseURL string
}

// NewClient creates a Discogs client authenticated with a personal access
// token. Results are cached in c (nil disables caching).
func NewClient(token string, c cache.Cache) *Client {
	return &Client{
		api: integrations.NewClient(c, "discogs", cache.TTLArtist, map[string]string{
			"User-Agent": userAgent,
		}),
		token:   token,
		baseURL: DefaultBaseURL,
	}
}

// WithBaseURL points the client at another API root.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimSuffix(u, "/")
	return c
}

// Integration exposes the underlying HTTP client for tuning (retry, keyer).
func (c *Client) Integration() *integrations.Client { return c.api }

// ArtistImage returns the cover image of the best artist match for name,
// falling back to its thumbnail. It returns "" when nothing matches.
func (c *Client) ArtistImage(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil
	}
	if c.token == "" {
		return "", errs.New(errs.ErrCodeUnauthorized, "discogs token is not configured")
	}

	q := url.Values{
		"q":     {name},
		"type":  {"artist"},
		"token": {c.token},
	}
	key := "artist:" + strings.ToLower(name)

	var resp searchResponse
	err := c.api.Cached(ctx, key, false, &resp, func() error {
		return c.api.Get(ctx, c.baseURL+"/database/search?"+q.Encode(), &resp)
	})
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return "", nil
	case err != nil:
		var se *integrations.StatusError
		if errors.As(err, &se) && se.StatusCode == 401 {
			return "", errs.Wrap(errs.ErrCodeUnauthorized, err, "discogs rejected the token")
		}
		if errors.As(err, &se) && se.StatusCode == 429 {
			return "", errs.Wrap(errs.ErrCodeRateLimited, err, "discogs rate limit exceeded")
		}
		return "", errs.Wrap(errs.ErrCodeUpstream, err, "discogs search for %q failed", name)
	}

	if len(resp.Results) == 0 {
		return "", nil
	}
	best := resp.Results[0]
	if best.CoverImage != "" {
		return best.CoverImage, nil
	}
	return best.Thumb, nil
}
