// Package pipeline provides the collage pipeline shared by the CLI, the HTTP
// API and scheduled jobs.
//
// # Architecture
//
// A run has five stages:
//
//  1. Fetch: read the ranked chart from an [ItemSource] (Last.fm)
//  2. Load: fetch and decode every image locator, bounded in parallel
//  3. Arrange: optionally reorder items by brightness or hue
//  4. Plan: assign items to template positions on the grid
//  5. Render: paint the plan and encode PNG or JPEG
//
// Images are loaded once, before arranging, so colour sampling and drawing
// share the same pixels.
//
// # Usage
//
//	runner := pipeline.NewRunner(lastfmClient, imageload.New(), c, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Username: "rj",
//	    Period:   "1 month",
//	    GridSize: 5,
//	    Arrange:  "brightness",
//	})
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(result.Filename, result.Data, 0o644)
//
// [Options] is a value: it is validated once and copied down the call
// chain, so concurrent runs never share settings.
package pipeline

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/collagefm/pkg/arrange"
	"github.com/matzehuels/collagefm/pkg/cache"
	"github.com/matzehuels/collagefm/pkg/collage"
	errs "github.com/matzehuels/collagefm/pkg/errors"
	"github.com/matzehuels/collagefm/pkg/lastfm"
	"github.com/matzehuels/collagefm/pkg/render"
	"github.com/matzehuels/collagefm/pkg/store"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Scheduler
// =============================================================================

const (
	// DefaultGridSize is the varying template used when none is given.
	DefaultGridSize = 5

	// DefaultItemType is the chart fetched when none is given.
	DefaultItemType = lastfm.Albums
)

// Layout modes.
const (
	LayoutVarying = "varying"
	LayoutFixed   = "fixed"
)

// ValidLayouts is the set of supported layout modes.
var ValidLayouts = map[string]bool{
	LayoutVarying: true,
	LayoutFixed:   true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one collage.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options
	Username string `json:"username"`
	Period   string `json:"period,omitempty"`
	ItemType string `json:"item_type,omitempty"`
	Refresh  bool   `json:"refresh,omitempty"`

	// Layout options. Rows and Cols select a fixed grid; GridSize selects
	// a varying template.
	Layout   string `json:"layout,omitempty"`
	GridSize int    `json:"grid_size,omitempty"`
	Rows     int    `json:"rows,omitempty"`
	Cols     int    `json:"cols,omitempty"`
	Variant  string `json:"variant,omitempty"`
	Seed     uint64 `json:"seed,omitempty"`
	Arrange  string `json:"arrange,omitempty"`

	// Render options
	Labels      bool   `json:"labels,omitempty"`
	Placeholder bool   `json:"placeholder,omitempty"`
	CellSize    int    `json:"cell_size,omitempty"`
	Format      string `json:"format,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	layout    collage.CollageLayout
	validated bool
}

// ValidateAndSetDefaults checks every field and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForFetch(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForFetch checks the chart request fields.
func (o *Options) ValidateForFetch() error {
	o.Username = strings.TrimSpace(o.Username)
	if err := errs.ValidateUsername(o.Username); err != nil {
		return err
	}
	o.Period = lastfm.NormalizePeriod(o.Period)
	if err := errs.ValidatePeriod(o.Period); err != nil {
		return err
	}
	if o.ItemType == "" {
		o.ItemType = string(DefaultItemType)
	}
	if !lastfm.ValidItemTypes[lastfm.ItemType(o.ItemType)] {
		return errs.New(errs.ErrCodeInvalidItemType, "invalid item type: %q (must be albums, tracks or artists)", o.ItemType)
	}
	o.setLogger()
	return nil
}

// ValidateForLayout resolves the grid. It does not need a username, so
// offline previews can use it alone.
func (o *Options) ValidateForLayout() error {
	if o.Layout == "" {
		o.Layout = LayoutVarying
		if o.Rows != 0 || o.Cols != 0 {
			o.Layout = LayoutFixed
		}
	}
	if !ValidLayouts[o.Layout] {
		return errs.New(errs.ErrCodeInvalidInput, "invalid layout: %q (must be varying or fixed)", o.Layout)
	}

	var (
		l   collage.CollageLayout
		err error
	)
	switch o.Layout {
	case LayoutFixed:
		if l, err = collage.FixedLayout(o.Rows, o.Cols); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidGrid, err, "fixed grid %dx%d", o.Rows, o.Cols)
		}
		if o.Variant != "" {
			return errs.New(errs.ErrCodeInvalidTemplate, "fixed grids have no variants")
		}
	default:
		if o.GridSize == 0 {
			o.GridSize = DefaultGridSize
		}
		if l, err = collage.Lookup(o.GridSize); err != nil {
			return errs.Wrap(errs.ErrCodeUnsupportedGrid, err, "grid size %d (must be one of %v)", o.GridSize, collage.GridSizes())
		}
		if o.Variant != "" && !slices.Contains(l.Variants(), o.Variant) {
			return errs.New(errs.ErrCodeInvalidTemplate, "grid size %d has no variant %q (have %v)", o.GridSize, o.Variant, l.Variants())
		}
		o.Rows, o.Cols = l.Rows, l.Cols
	}
	o.layout = l

	metric, err := arrange.ParseMetric(o.Arrange)
	if err != nil {
		return err
	}
	o.Arrange = string(metric)
	o.setLogger()
	return nil
}

// ValidateForRender checks the output fields.
func (o *Options) ValidateForRender() error {
	format, err := render.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	o.Format = string(format)

	ro := o.RenderOptions()
	if err := ro.Validate(); err != nil {
		return err
	}
	o.CellSize = ro.CellSize
	o.setLogger()
	return nil
}

// discard is the logger of options that were validated without one.
var discard = log.NewWithOptions(io.Discard, log.Options{})

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = discard
	}
}

// CollageLayout returns the layout resolved by [Options.ValidateForLayout].
func (o *Options) CollageLayout() collage.CollageLayout {
	return o.layout
}

// Limit is the number of items requested from the source: the template's
// item slots, or rows × cols for a fixed grid.
func (o *Options) Limit() int {
	return o.layout.TotalItemSlots
}

// IsFixed reports whether a uniform grid was requested.
func (o *Options) IsFixed() bool {
	return o.Layout == LayoutFixed
}

// Deterministic reports whether repeated runs on the same items produce
// the same plan.
func (o *Options) Deterministic() bool {
	return o.Variant != "" || o.Seed != 0 || len(o.layout.Variants()) == 0
}

// Filename returns the export name,
// collage_<user>_<type>_<rows>x<cols>_<period>.<ext>.
func (o *Options) Filename() string {
	return fmt.Sprintf("collage_%s_%s_%dx%d_%s%s",
		o.Username, o.ItemType, o.Rows, o.Cols, o.Period, render.Format(o.Format).Ext())
}

// Request returns the chart request for the source.
func (o *Options) Request() lastfm.Request {
	return lastfm.Request{
		Username: o.Username,
		Period:   o.Period,
		Type:     lastfm.ItemType(o.ItemType),
		Limit:    o.Limit(),
		Refresh:  o.Refresh,
	}
}

// RenderOptions returns the renderer settings.
func (o *Options) RenderOptions() render.Options {
	return render.Options{
		CellSize:    o.CellSize,
		Labels:      o.Labels,
		Placeholder: o.Placeholder,
	}
}

// ChartKeyOpts returns cache key options for the fetched chart.
func (o *Options) ChartKeyOpts() cache.ChartKeyOpts {
	return cache.ChartKeyOpts{
		Source:   "lastfm",
		Username: o.Username,
		ItemType: o.ItemType,
		Period:   o.Period,
		Limit:    o.Limit(),
	}
}

// CollageKeyOpts returns cache key options for a rendered collage.
func (o *Options) CollageKeyOpts(itemsHash string) cache.CollageKeyOpts {
	k := cache.CollageKeyOpts{
		ItemsHash:   itemsHash,
		Layout:      o.Layout,
		Rows:        o.Rows,
		Cols:        o.Cols,
		Variant:     o.Variant,
		Seed:        o.Seed,
		Arrange:     o.Arrange,
		Labels:      o.Labels,
		Placeholder: o.Placeholder,
		CellSize:    o.CellSize,
		Format:      o.Format,
	}
	if !o.IsFixed() {
		k.GridSize = o.GridSize
	}
	return k
}

// StoreParams returns the parameters recorded with a stored collage.
func (o *Options) StoreParams(variant string) store.Params {
	return store.Params{
		Username: o.Username,
		ItemType: o.ItemType,
		Period:   o.Period,
		Rows:     o.Rows,
		Cols:     o.Cols,
		Variant:  variant,
		Arrange:  o.Arrange,
	}
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	// Items are the fetched items after arranging.
	Items []collage.Item

	// Plan is the resolved placement.
	Plan collage.Plan

	// Data is the encoded image.
	Data []byte

	// Filename and ContentType describe Data.
	Filename    string
	ContentType string

	// Failed lists locators whose image could not be loaded.
	Failed []string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Fetched     int
	Arranged    int
	Placed      int
	Dropped     int
	FetchTime   time.Duration
	LoadTime    time.Duration
	ArrangeTime time.Duration
	PlanTime    time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ChartHit   bool
	CollageHit bool
}
