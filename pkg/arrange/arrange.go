// Package arrange reorders collage items by the colour of their artwork.
//
// Each item's image is reduced to one average colour, the colour to a
// scalar key, and the items are stably sorted by that key:
//
//   - [Brightness]: R+G+B of the average colour, darkest first
//   - [Hue]: HSV hue in [0,1), achromatic colours count as 0
//
// [Rank] (the default) and any unrecognised metric keep the input order
// and sample nothing. Items whose colour cannot be sampled are dropped,
// never placed with a made-up key.
package arrange

import (
	"context"
	"image"
	"image/color"
	"slices"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/collagefm/pkg/collage"
	errs "github.com/matzehuels/collagefm/pkg/errors"
)

// Metric selects the sort key.
type Metric string

const (
	Rank       Metric = "rank"
	Brightness Metric = "brightness"
	Hue        Metric = "hue"
)

// ValidMetrics lists the accepted metric names.
var ValidMetrics = map[Metric]bool{Rank: true, Brightness: true, Hue: true}

// ParseMetric validates a metric name. Empty means [Rank].
func ParseMetric(s string) (Metric, error) {
	if s == "" {
		return Rank, nil
	}
	m := Metric(s)
	if !ValidMetrics[m] {
		return "", errs.New(errs.ErrCodeInvalidArrangement, "invalid arrangement: %s (must be rank, brightness or hue)", s)
	}
	return m, nil
}

// sampleLimit bounds concurrent colour sampling.
const sampleLimit = 8

// Sampler yields the average colour of the image behind a locator.
type Sampler interface {
	AverageColor(ctx context.Context, locator string) (color.RGBA, error)
}

// Arrange returns items reordered by m. Ties keep their input order.
// The only error is cancellation of ctx.
func Arrange(ctx context.Context, items []collage.Item, m Metric, s Sampler) ([]collage.Item, error) {
	var key func(color.RGBA) float64
	switch m {
	case Brightness:
		key = func(c color.RGBA) float64 { return float64(BrightnessOf(c)) }
	case Hue:
		key = HueOf
	default:
		return slices.Clone(items), nil
	}

	type keyed struct {
		item collage.Item
		key  float64
		ok   bool
	}
	samples := make([]keyed, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(sampleLimit)
	for i, it := range items {
		g.Go(func() error {
			c, err := s.AverageColor(gctx, it.DisplayLink)
			if err == nil {
				samples[i] = keyed{item: it, key: key(c), ok: true}
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := slices.DeleteFunc(samples, func(k keyed) bool { return !k.ok })
	slices.SortStableFunc(kept, func(a, b keyed) int {
		switch {
		case a.key < b.key:
			return -1
		case a.key > b.key:
			return 1
		}
		return 0
	})

	out := make([]collage.Item, len(kept))
	for i, k := range kept {
		out[i] = k.item
	}
	return out, nil
}

// BrightnessOf returns R+G+B.
func BrightnessOf(c color.RGBA) int {
	return int(c.R) + int(c.G) + int(c.B)
}

// HueOf returns the HSV hue of c scaled to [0,1). Greys, black and white
// return 0.
func HueOf(c color.RGBA) float64 {
	h, _, _ := colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hsv()
	h /= 360
	if h >= 1 {
		h = 0
	}
	return h
}

// sampleSide is the largest side an image is reduced to before averaging.
const sampleSide = 64

// AverageColor returns the mean colour over all pixels of img. Large
// images are box-filtered down first, which keeps the mean.
func AverageColor(img image.Image) color.RGBA {
	b := img.Bounds()
	var px *image.NRGBA
	if b.Dx() > sampleSide || b.Dy() > sampleSide {
		px = imaging.Fit(img, sampleSide, sampleSide, imaging.Box)
	} else {
		px = imaging.Clone(img)
	}

	var r, g, bl, n uint64
	for i := 0; i+3 < len(px.Pix); i += 4 {
		r += uint64(px.Pix[i])
		g += uint64(px.Pix[i+1])
		bl += uint64(px.Pix[i+2])
		n++
	}
	if n == 0 {
		return color.RGBA{}
	}
	return color.RGBA{
		R: uint8((r + n/2) / n),
		G: uint8((g + n/2) / n),
		B: uint8((bl + n/2) / n),
		A: 255,
	}
}
