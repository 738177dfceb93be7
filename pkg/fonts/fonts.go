// Package fonts provides the label fonts embedded in the binary.
//
// The Go font family ships with golang.org/x/image, so labels render the
// same on every machine without font files on disk. Parsed fonts are cached
// after first use.
package fonts

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// DPI used for all faces; sizes are therefore in pixels.
const DPI = 72

var (
	regular, bold         *truetype.Font
	regularErr, boldErr   error
	regularOnce, boldOnce sync.Once
)

// Regular returns the parsed Go Regular font.
func Regular() (*truetype.Font, error) {
	regularOnce.Do(func() {
		regular, regularErr = truetype.Parse(goregular.TTF)
	})
	return regular, regularErr
}

// Bold returns the parsed Go Bold font.
func Bold() (*truetype.Font, error) {
	boldOnce.Do(func() {
		bold, boldErr = truetype.Parse(gobold.TTF)
	})
	return bold, boldErr
}

// Face returns a face of f at size pixels.
func Face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     DPI,
		Hinting: font.HintingFull,
	})
}
