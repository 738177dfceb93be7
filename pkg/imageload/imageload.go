// Package imageload resolves image locators to decoded images.
//
// A locator is an http(s) URL or a local file path. Remote bytes are fetched
// with retry and kept in a [cache.Cache]; PNG, JPEG, GIF and WebP are decoded.
// [Loader.LoadAll] fans out with a concurrency bound and reports failures
// per locator, so one broken cover never sinks a whole collage.
package imageload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"strings"
	"time"

	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/collagefm/pkg/cache"
	"github.com/matzehuels/collagefm/pkg/httputil"
	"github.com/matzehuels/collagefm/pkg/integrations"
	"github.com/matzehuels/collagefm/pkg/observability"
)

// DefaultConcurrency bounds parallel fetches in [Loader.LoadAll].
const DefaultConcurrency = 8

var (
	// ErrEmptyLocator is returned for items without an image.
	ErrEmptyLocator = errors.New("empty image locator")

	// ErrLocalDisabled is returned for a filesystem path when the loader
	// was not created with [WithLocalFiles].
	ErrLocalDisabled = errors.New("local image paths are disabled")
)

// Loader fetches and decodes images.
type Loader struct {
	http     *integrations.Client
	cache    cache.Cache
	keyer    cache.Keyer
	limit    int
	attempts int
	delay    time.Duration
	local    bool
}

// Option configures a [Loader].
type Option func(*Loader)

// WithCache stores fetched bytes in c.
func WithCache(c cache.Cache) Option {
	return func(l *Loader) {
		if c != nil {
			l.cache = c
		}
	}
}

// WithKeyer sets the cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(l *Loader) {
		if k != nil {
			l.keyer = k
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(l *Loader) { l.http.WithHTTPClient(h) }
}

// WithConcurrency bounds parallel fetches.
func WithConcurrency(n int) Option {
	return func(l *Loader) {
		if n > 0 {
			l.limit = n
		}
	}
}

// WithRetry overrides the retry schedule for transient failures.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(l *Loader) { l.attempts, l.delay = attempts, delay }
}

// WithLocalFiles lets locators that are not http(s) URLs be read from the
// filesystem. Only loaders fed with user-supplied plans should enable it;
// locators from Last.fm or Discogs are always URLs.
func WithLocalFiles() Option {
	return func(l *Loader) { l.local = true }
}

// New creates a Loader.
func New(opts ...Option) *Loader {
	l := &Loader{
		http:     integrations.NewClient(nil, "image", cache.TTLImage, nil),
		cache:    cache.NewNullCache(),
		keyer:    cache.NewDefaultKeyer(),
		limit:    DefaultConcurrency,
		attempts: httputil.DefaultAttempts,
		delay:    httputil.DefaultDelay,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fetch returns the raw bytes behind locator.
func (l *Loader) Fetch(ctx context.Context, locator string) ([]byte, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return nil, ErrEmptyLocator
	}
	if !isRemote(locator) {
		if !l.local {
			return nil, fmt.Errorf("read image %s: %w", locator, ErrLocalDisabled)
		}
		data, err := os.ReadFile(locator)
		if err != nil {
			return nil, fmt.Errorf("read image %s: %w", locator, err)
		}
		return data, nil
	}

	key := l.keyer.ImageKey(locator)
	if data, ok, err := l.cache.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "image")
		return data, nil
	}
	observability.Cache().OnCacheMiss(ctx, "image")

	var data []byte
	err := httputil.Retry(ctx, l.attempts, l.delay, func() error {
		var err error
		data, err = l.http.GetBytes(ctx, locator)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch image %s: %w", locator, err)
	}
	if l.cache.Set(ctx, key, data, cache.TTLImage) == nil {
		observability.Cache().OnCacheSet(ctx, "image", len(data))
	}
	return data, nil
}

// Load fetches and decodes the image behind locator.
func (l *Loader) Load(ctx context.Context, locator string) (image.Image, error) {
	data, err := l.Fetch(ctx, locator)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Decode decodes PNG, JPEG, GIF or WebP bytes.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// Result is the outcome of loading one locator.
type Result struct {
	Locator string
	Image   image.Image
	Err     error
}

// LoadAll loads every locator with at most the configured number of
// fetches in flight. Results are index-aligned with locators; a failed
// item only sets its own Err. The returned error is non-nil only when ctx
// is cancelled.
func (l *Loader) LoadAll(ctx context.Context, locators []string) ([]Result, error) {
	results := make([]Result, len(locators))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.limit)
	for i, loc := range locators {
		results[i].Locator = loc
		g.Go(func() error {
			img, err := l.Load(gctx, loc)
			results[i].Image, results[i].Err = img, err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func isRemote(locator string) bool {
	return strings.HasPrefix(locator, "http://") || strings.HasPrefix(locator, "https://")
}
