package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"unicode/utf8"

	"github.com/golang/freetype"
	"golang.org/x/image/font"

	"github.com/matzehuels/collagefm/pkg/fonts"
)

// labelStrip is rgba(0,0,0,0.6).
var labelStrip = color.NRGBA{0, 0, 0, 153}

// LabelFontSize returns the font size in pixels for a caption on a tile of
// the given side: inversely proportional to the caption length, capped at
// side/15.
func LabelFontSize(side int, label string) float64 {
	n := utf8.RuneCountInString(label)
	if n == 0 {
		return 0
	}
	return math.Min(float64(side)*1.3/float64(n), float64(side)/15)
}

// labelStripHeight is the height of the backing strip.
func labelStripHeight(side int) int { return side / 8 }

func drawLabel(dst *image.RGBA, tile image.Rectangle, label string) error {
	side := tile.Dx()
	size := LabelFontSize(side, label)
	if size < 1 {
		return nil
	}

	strip := image.Rect(tile.Min.X, tile.Max.Y-labelStripHeight(side), tile.Max.X, tile.Max.Y)
	draw.Draw(dst, strip, image.NewUniform(labelStrip), image.Point{}, draw.Over)

	f, err := fonts.Regular()
	if err != nil {
		return err
	}
	face := fonts.Face(f, size)
	defer face.Close()

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: face,
	}
	bounds, _ := d.BoundString(label)
	textWidth := (bounds.Max.X - bounds.Min.X).Ceil()
	textHeight := (bounds.Max.Y - bounds.Min.Y).Ceil()

	x := tile.Min.X + (side-textWidth)/2
	baseline := strip.Min.Y + (strip.Dy()+textHeight)/2 - bounds.Max.Y.Ceil()
	d.Dot = freetype.Pt(x, baseline)
	d.DrawString(label)
	return nil
}
