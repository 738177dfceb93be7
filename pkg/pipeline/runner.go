package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collagefm/pkg/arrange"
	"github.com/matzehuels/collagefm/pkg/cache"
	"github.com/matzehuels/collagefm/pkg/collage"
	"github.com/matzehuels/collagefm/pkg/imageload"
	"github.com/matzehuels/collagefm/pkg/lastfm"
	"github.com/matzehuels/collagefm/pkg/observability"
	"github.com/matzehuels/collagefm/pkg/render"
)

// ItemSource yields a user's ranked chart.
type ItemSource interface {
	TopItems(ctx context.Context, req lastfm.Request) ([]collage.Item, error)
}

// ImageLoader loads a batch of image locators.
type ImageLoader interface {
	LoadAll(ctx context.Context, locators []string) ([]imageload.Result, error)
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner holds no per-run state, so multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Source ItemSource
	Images ImageLoader
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching and a nil
// logger uses the default logger.
func NewRunner(src ItemSource, images ImageLoader, c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Images: images,
		Cache:  c,
		Keyer:  cache.NewDefaultKeyer(),
		Logger: logger,
	}
}

// Execute runs fetch → load → arrange → plan → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	fetchStart := time.Now()
	items, hit, err := r.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, err
	}
	fetchTime := time.Since(fetchStart)
	opts.Logger.Info("fetched chart",
		"user", opts.Username,
		"type", opts.ItemType,
		"period", opts.Period,
		"items", len(items),
		"cached", hit,
		"duration", fetchTime)

	result, err := r.Compose(ctx, items, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.Fetched = len(items)
	result.Stats.FetchTime = fetchTime
	result.CacheInfo.ChartHit = hit
	return result, nil
}

// FetchWithCacheInfo reads the chart, from cache unless a refresh is
// requested, and reports whether it was a cache hit.
func (r *Runner) FetchWithCacheInfo(ctx context.Context, opts Options) ([]collage.Item, bool, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, false, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	if r.Source == nil {
		return nil, false, fmt.Errorf("pipeline: no item source configured")
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, "lastfm", opts.Username)
	start := time.Now()

	key := r.Keyer.ChartKey(opts.ChartKeyOpts())
	if !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			var items []collage.Item
			if err := json.Unmarshal(data, &items); err == nil {
				hooks.OnFetchComplete(ctx, "lastfm", opts.Username, len(items), time.Since(start), nil)
				return items, true, nil
			}
		}
	}

	items, err := r.Source.TopItems(ctx, opts.Request())
	hooks.OnFetchComplete(ctx, "lastfm", opts.Username, len(items), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(items); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLChart)
	}
	return items, false, nil
}

// Fetch is a convenience wrapper that discards the cache hit info.
func (r *Runner) Fetch(ctx context.Context, opts Options) ([]collage.Item, error) {
	items, _, err := r.FetchWithCacheInfo(ctx, opts)
	return items, err
}

// cachedCollage is the cache envelope for a rendered collage.
type cachedCollage struct {
	Items  []collage.Item `json:"items"`
	Plan   collage.Plan   `json:"plan"`
	Failed []string       `json:"failed,omitempty"`
	Data   []byte         `json:"data"`
}

// Compose builds a collage from an item list that is already in rank
// order. It needs no username, so items may come from any source.
func (r *Runner) Compose(ctx context.Context, items []collage.Item, opts Options) (*Result, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Filename:    opts.Filename(),
		ContentType: render.Format(opts.Format).ContentType(),
	}

	// Random variant choice must stay random, so only pinned runs are
	// served from cache.
	var key string
	if opts.Deterministic() {
		if data, err := json.Marshal(items); err == nil {
			key = r.Keyer.CollageKey(opts.CollageKeyOpts(cache.Hash(data)))
		}
	}
	if key != "" && !opts.Refresh {
		if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
			var cc cachedCollage
			if err := json.Unmarshal(data, &cc); err == nil {
				result.Items, result.Plan, result.Failed, result.Data = cc.Items, cc.Plan, cc.Failed, cc.Data
				result.Stats.Arranged = len(cc.Items)
				result.Stats.Placed = len(cc.Plan.Placements)
				result.Stats.Dropped = cc.Plan.Shortfall()
				result.CacheInfo.CollageHit = true
				opts.Logger.Debug("collage cache hit", "key", key)
				return result, nil
			}
		}
	}

	// Load
	loadStart := time.Now()
	images, failed, err := r.loadImages(ctx, items)
	if err != nil {
		return nil, err
	}
	result.Failed = failed
	result.Stats.LoadTime = time.Since(loadStart)
	opts.Logger.Info("loaded images",
		"loaded", len(images),
		"failed", len(failed),
		"duration", result.Stats.LoadTime)
	for _, loc := range failed {
		opts.Logger.Warn("image unavailable", "locator", loc)
	}

	// Arrange
	hooks := observability.Pipeline()
	arrangeStart := time.Now()
	arranged, err := arrange.Arrange(ctx, items, arrange.Metric(opts.Arrange), arrange.ImageSet(images))
	result.Stats.ArrangeTime = time.Since(arrangeStart)
	hooks.OnArrangeComplete(ctx, opts.Arrange, len(arranged), len(items)-len(arranged), result.Stats.ArrangeTime, err)
	if err != nil {
		return nil, err
	}
	result.Items = arranged
	result.Stats.Arranged = len(arranged)
	if n := len(items) - len(arranged); n > 0 {
		opts.Logger.Warn("items without a usable image were left out", "arrange", opts.Arrange, "count", n)
	}

	// Plan
	planStart := time.Now()
	result.Plan = r.plan(opts, arranged)
	result.Stats.PlanTime = time.Since(planStart)
	result.Stats.Placed = len(result.Plan.Placements)
	result.Stats.Dropped = result.Plan.Shortfall()
	hooks.OnPlanComplete(ctx, result.Plan.Variant, result.Stats.Placed, result.Stats.Dropped, result.Stats.PlanTime)
	opts.Logger.Info("planned layout",
		"grid", fmt.Sprintf("%dx%d", opts.Rows, opts.Cols),
		"variant", result.Plan.Variant,
		"placed", result.Stats.Placed,
		"dropped", result.Stats.Dropped)

	// Render
	hooks.OnRenderStart(ctx, opts.Format, len(result.Plan.Placements))
	renderStart := time.Now()
	data, err := r.render(result.Plan, images, opts)
	result.Stats.RenderTime = time.Since(renderStart)
	hooks.OnRenderComplete(ctx, opts.Format, len(data), result.Stats.RenderTime, err)
	if err != nil {
		return nil, err
	}
	result.Data = data
	opts.Logger.Info("rendered collage",
		"format", opts.Format,
		"bytes", len(data),
		"duration", result.Stats.RenderTime)

	if key != "" {
		cc := cachedCollage{Items: result.Items, Plan: result.Plan, Failed: result.Failed, Data: data}
		if blob, err := json.Marshal(cc); err == nil {
			_ = r.Cache.Set(ctx, key, blob, cache.TTLChart)
		}
	}
	return result, nil
}

// PlanOnly runs arrange-free planning for a preview. It loads no images.
func (r *Runner) PlanOnly(items []collage.Item, opts Options) (collage.Plan, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return collage.Plan{}, err
	}
	return r.plan(opts, items), nil
}

func (r *Runner) plan(opts Options, items []collage.Item) collage.Plan {
	l := opts.CollageLayout()
	if opts.Variant != "" {
		return collage.PlanVariant(l, opts.Variant, items)
	}
	var planner *collage.Planner
	if opts.Seed != 0 {
		planner = collage.NewPlanner(collage.WithSeed(opts.Seed))
	} else {
		planner = collage.NewPlanner()
	}
	return planner.Plan(l, items)
}

// loadImages loads each distinct non-empty locator once. It returns the
// decoded images by locator and the locators that failed.
func (r *Runner) loadImages(ctx context.Context, items []collage.Item) (map[string]image.Image, []string, error) {
	seen := make(map[string]bool, len(items))
	var locators []string
	for _, it := range items {
		if it.DisplayLink == "" || seen[it.DisplayLink] {
			continue
		}
		seen[it.DisplayLink] = true
		locators = append(locators, it.DisplayLink)
	}

	images := make(map[string]image.Image, len(locators))
	if len(locators) == 0 || r.Images == nil {
		return images, locators, nil
	}
	results, err := r.Images.LoadAll(ctx, locators)
	if err != nil {
		return nil, nil, err
	}
	var failed []string
	for _, res := range results {
		if res.Err != nil || res.Image == nil {
			failed = append(failed, res.Locator)
			continue
		}
		images[res.Locator] = res.Image
	}
	return images, failed, nil
}

func (r *Runner) render(plan collage.Plan, images map[string]image.Image, opts Options) ([]byte, error) {
	img, stats, err := render.Render(plan, opts.Rows, opts.Cols, images, opts.RenderOptions())
	if err != nil {
		return nil, err
	}
	opts.Logger.Debug("drew tiles", "drawn", stats.Drawn, "placeholder", stats.Placeholder, "skipped", stats.Skipped)
	return render.EncodeBytes(img, render.Format(opts.Format))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil || opts.Logger == discard {
		opts.Logger = r.Logger
	}
}
