package arrange

import (
	"context"
	"fmt"
	"image"
	"image/color"
)

// ImageLoader resolves a locator to a decoded image.
type ImageLoader interface {
	Load(ctx context.Context, locator string) (image.Image, error)
}

// LoaderSampler samples colours by loading each image on demand.
type LoaderSampler struct {
	Loader ImageLoader
}

func (s LoaderSampler) AverageColor(ctx context.Context, locator string) (color.RGBA, error) {
	img, err := s.Loader.Load(ctx, locator)
	if err != nil {
		return color.RGBA{}, err
	}
	return AverageColor(img), nil
}

// ImageSet samples colours from images that are already decoded, keyed by
// locator. Missing locators fail.
type ImageSet map[string]image.Image

func (s ImageSet) AverageColor(_ context.Context, locator string) (color.RGBA, error) {
	img, ok := s[locator]
	if !ok || img == nil {
		return color.RGBA{}, fmt.Errorf("no image for %q", locator)
	}
	return AverageColor(img), nil
}
