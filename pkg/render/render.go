package render

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/matzehuels/collagefm/pkg/collage"
	errs "github.com/matzehuels/collagefm/pkg/errors"
)

// Default rendering settings.
const (
	DefaultCellSize = 300
	MinCellSize     = 16
	MaxCellSize     = 1000
)

var (
	// DefaultBackground fills cells nothing was drawn on.
	DefaultBackground = color.RGBA{0, 0, 0, 255}

	placeholderColor = color.RGBA{58, 58, 58, 255}
)

// Options controls how a plan is painted.
type Options struct {
	CellSize    int
	Labels      bool
	Placeholder bool
	Background  color.Color
}

// Validate checks the options and fills in defaults.
func (o *Options) Validate() error {
	if o.CellSize == 0 {
		o.CellSize = DefaultCellSize
	}
	if o.CellSize < MinCellSize || o.CellSize > MaxCellSize {
		return errs.New(errs.ErrCodeInvalidInput, "cell size %d out of range [%d, %d]", o.CellSize, MinCellSize, MaxCellSize)
	}
	if o.Background == nil {
		o.Background = DefaultBackground
	}
	return nil
}

// Stats counts what happened to each placement.
type Stats struct {
	Drawn       int
	Placeholder int
	Skipped     int
}

// Render paints plan onto a rows×cols grid of cells. images maps each
// item's locator to its decoded image; absent or nil entries count as
// failed loads.
func Render(plan collage.Plan, rows, cols int, images map[string]image.Image, opts Options) (*image.RGBA, Stats, error) {
	if err := opts.Validate(); err != nil {
		return nil, Stats{}, err
	}
	if rows < 1 || cols < 1 {
		return nil, Stats{}, errs.New(errs.ErrCodeInvalidGrid, "grid %dx%d has no cells", rows, cols)
	}

	side := opts.CellSize
	canvas := image.NewRGBA(image.Rect(0, 0, cols*side, rows*side))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	var stats Stats
	for _, p := range plan.Placements {
		rect := tileRect(p, side)
		img := images[p.Item.DisplayLink]
		switch {
		case img != nil:
			tile := imaging.Fill(img, rect.Dx(), rect.Dy(), imaging.Center, imaging.Lanczos)
			draw.Draw(canvas, rect, tile, image.Point{}, draw.Over)
			stats.Drawn++
		case opts.Placeholder:
			draw.Draw(canvas, rect, image.NewUniform(placeholderColor), image.Point{}, draw.Src)
			stats.Placeholder++
		default:
			stats.Skipped++
			continue
		}
		if opts.Labels {
			if err := drawLabel(canvas, rect, p.Item.Label); err != nil {
				return nil, stats, err
			}
		}
	}
	return canvas, stats, nil
}

// tileRect returns the pixel rectangle of a placement.
func tileRect(p collage.Placement, side int) image.Rectangle {
	x := p.Position.Col * side
	y := p.Position.Row * side
	size := p.Footprint * side
	return image.Rect(x, y, x+size, y+size)
}
