package cache

import "strings"

// Keyer builds cache keys for each kind of cached entry.
type Keyer interface {
	// HTTPKey keys a raw HTTP response body from an API namespace.
	HTTPKey(namespace, key string) string

	// ImageKey keys the bytes behind an image locator.
	ImageKey(locator string) string

	// ChartKey keys a fetched chart (an ordered item list).
	ChartKey(opts ChartKeyOpts) string

	// CollageKey keys a rendered collage.
	CollageKey(opts CollageKeyOpts) string
}

// ChartKeyOpts identifies a chart request.
type ChartKeyOpts struct {
	Source   string `json:"source"`
	Username string `json:"username"`
	ItemType string `json:"item_type"`
	Period   string `json:"period"`
	Limit    int    `json:"limit"`
}

// CollageKeyOpts identifies a rendered collage. ItemsHash is the [Hash] of
// the item list it was built from. Every field that changes the plan or the
// pixels is part of the key.
type CollageKeyOpts struct {
	ItemsHash   string `json:"items_hash"`
	Layout      string `json:"layout"`
	GridSize    int    `json:"grid_size"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Variant     string `json:"variant"`
	Seed        uint64 `json:"seed"`
	Arrange     string `json:"arrange"`
	Labels      bool   `json:"labels"`
	Placeholder bool   `json:"placeholder"`
	CellSize    int    `json:"cell_size"`
	Format      string `json:"format"`
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

func (DefaultKeyer) ImageKey(locator string) string {
	return "image:" + Hash([]byte(locator))
}

func (DefaultKeyer) ChartKey(opts ChartKeyOpts) string {
	opts.Username = strings.ToLower(opts.Username)
	return hashKey("chart", opts)
}

func (DefaultKeyer) CollageKey(opts CollageKeyOpts) string {
	return hashKey("collage", opts)
}
