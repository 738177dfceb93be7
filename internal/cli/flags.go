package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/pkg/config"
	"github.com/matzehuels/collagefm/pkg/pipeline"
)

// collageFlags are the collage settings shared by generate, fetch and plan.
// Flags the user did not set fall back to the [defaults] config section.
type collageFlags struct {
	period   string
	itemType string
	gridSize int
	rows     int
	cols     int
	variant  string
	seed     uint64
	arrange  string
	labels   bool
	holder   bool
	cellSize int
	format   string
	refresh  bool
}

func (f *collageFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.period, "period", "p", "", "chart period: 7day, 1month, 3month, 6month, 12month, overall")
	fs.StringVarP(&f.itemType, "type", "t", "", "chart type: albums (default), tracks, artists")
	fs.IntVarP(&f.gridSize, "grid", "g", 0, "varying template size: 4, 5 (default) or 6")
	fs.IntVar(&f.rows, "rows", 0, "rows of a fixed grid (1-10)")
	fs.IntVar(&f.cols, "cols", 0, "columns of a fixed grid (1-10)")
	fs.StringVar(&f.variant, "variant", "", "template variant (random if empty)")
	fs.Uint64Var(&f.seed, "seed", 0, "seed for variant selection")
	fs.StringVarP(&f.arrange, "arrange", "a", "", "ordering: rank (default), brightness, hue")
	fs.BoolVar(&f.labels, "labels", false, "draw item labels")
	fs.BoolVar(&f.holder, "placeholder", false, "draw a placeholder for items without artwork")
	fs.IntVar(&f.cellSize, "cell-size", 0, "pixel size of one grid cell")
	fs.StringVarP(&f.format, "format", "f", "", "image format: png (default), jpeg")
	fs.BoolVar(&f.refresh, "refresh", false, "bypass cached charts and collages")
	registerFlagCompletions(cmd)
}

// options merges the flags over the configured defaults.
func (f *collageFlags) options(cmd *cobra.Command, d config.Defaults, username string) pipeline.Options {
	opts := d.Options()
	changed := cmd.Flags().Changed

	if username != "" {
		opts.Username = username
	}
	if changed("period") {
		opts.Period = f.period
	}
	if changed("type") {
		opts.ItemType = f.itemType
	}
	if changed("rows") || changed("cols") {
		opts.Layout = pipeline.LayoutFixed
		opts.Rows, opts.Cols = f.rows, f.cols
		opts.GridSize = 0
	}
	if changed("grid") {
		opts.GridSize = f.gridSize
	}
	if changed("variant") {
		opts.Variant = f.variant
	}
	if changed("seed") {
		opts.Seed = f.seed
	}
	if changed("arrange") {
		opts.Arrange = f.arrange
	}
	if changed("labels") {
		opts.Labels = f.labels
	}
	if changed("placeholder") {
		opts.Placeholder = f.holder
	}
	if changed("cell-size") {
		opts.CellSize = f.cellSize
	}
	if changed("format") {
		opts.Format = f.format
	}
	opts.Refresh = f.refresh
	return opts
}
