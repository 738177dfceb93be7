package arrange

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/collagefm/pkg/collage"
	errs "github.com/matzehuels/collagefm/pkg/errors"
)

type fakeSampler map[string]color.RGBA

func (f fakeSampler) AverageColor(_ context.Context, locator string) (color.RGBA, error) {
	c, ok := f[locator]
	if !ok {
		return color.RGBA{}, errors.New("unreachable image")
	}
	return c, nil
}

func items(links ...string) []collage.Item {
	out := make([]collage.Item, len(links))
	for i, l := range links {
		out[i] = collage.Item{DisplayLink: l, Label: "label " + l}
	}
	return out
}

func links(items []collage.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.DisplayLink
	}
	return out
}

var palette = fakeSampler{
	"white":   {255, 255, 255, 255},
	"black":   {0, 0, 0, 255},
	"grey":    {128, 128, 128, 255},
	"red":     {255, 0, 0, 255},
	"yellow":  {255, 255, 0, 255},
	"green":   {0, 255, 0, 255},
	"cyan":    {0, 255, 255, 255},
	"blue":    {0, 0, 255, 255},
	"magenta": {255, 0, 255, 255},
}

func TestArrangeRankIsIdentity(t *testing.T) {
	in := items("white", "", "missing", "black")
	for _, m := range []Metric{Rank, "", "saturation"} {
		got, err := Arrange(context.Background(), in, m, palette)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(in, got); diff != "" {
			t.Errorf("metric %q reordered items (-want +got):\n%s", m, diff)
		}
	}
}

func TestArrangeBrightness(t *testing.T) {
	in := items("white", "red", "black", "grey", "yellow")
	got, err := Arrange(context.Background(), in, Brightness, palette)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"black", "red", "grey", "yellow", "white"}
	if diff := cmp.Diff(want, links(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestArrangeHue(t *testing.T) {
	in := items("magenta", "blue", "grey", "cyan", "green", "yellow", "red")
	got, err := Arrange(context.Background(), in, Hue, palette)
	if err != nil {
		t.Fatal(err)
	}
	// grey and red both have hue 0; grey came first in the input.
	want := []string{"grey", "red", "yellow", "green", "cyan", "blue", "magenta"}
	if diff := cmp.Diff(want, links(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestArrangeDropsUnsampleable(t *testing.T) {
	in := items("white", "broken", "", "black")
	got, err := Arrange(context.Background(), in, Brightness, palette)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"black", "white"}, links(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestArrangeStableOnTies(t *testing.T) {
	s := fakeSampler{"a": {10, 10, 10, 255}, "b": {30, 0, 0, 255}, "c": {0, 0, 30, 255}, "d": {1, 1, 1, 255}}
	got, err := Arrange(context.Background(), items("a", "b", "c", "d"), Brightness, s)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"d", "a", "b", "c"}, links(got)); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestArrangeIdempotentPermutation(t *testing.T) {
	in := items("cyan", "white", "red", "black", "magenta", "grey", "green")
	for _, m := range []Metric{Brightness, Hue} {
		once, err := Arrange(context.Background(), in, m, palette)
		if err != nil {
			t.Fatal(err)
		}
		twice, err := Arrange(context.Background(), once, m, palette)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(once, twice); diff != "" {
			t.Errorf("%s: not idempotent (-once +twice):\n%s", m, diff)
		}

		seen := map[string]int{}
		for _, it := range in {
			seen[it.DisplayLink]++
		}
		for _, it := range once {
			seen[it.DisplayLink]--
		}
		for l, n := range seen {
			if n != 0 {
				t.Errorf("%s: item %q count changed by %d", m, l, -n)
			}
		}
	}
}

func TestArrangeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Arrange(ctx, items("white"), Hue, palette); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestHueOf(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want float64
	}{
		{"red", color.RGBA{255, 0, 0, 255}, 0},
		{"yellow", color.RGBA{255, 255, 0, 255}, 1.0 / 6},
		{"green", color.RGBA{0, 255, 0, 255}, 2.0 / 6},
		{"cyan", color.RGBA{0, 255, 255, 255}, 3.0 / 6},
		{"blue", color.RGBA{0, 0, 255, 255}, 4.0 / 6},
		{"magenta", color.RGBA{255, 0, 255, 255}, 5.0 / 6},
		{"rose", color.RGBA{255, 0, 128, 255}, 1 - 128.0/255/6},
		{"black", color.RGBA{0, 0, 0, 255}, 0},
		{"grey", color.RGBA{77, 77, 77, 255}, 0},
		{"white", color.RGBA{255, 255, 255, 255}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HueOf(tt.c)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("HueOf(%v) = %v, want %v", tt.c, got, tt.want)
			}
			if got < 0 || got >= 1 {
				t.Errorf("HueOf(%v) = %v outside [0,1)", tt.c, got)
			}
		})
	}
}

func TestBrightnessOf(t *testing.T) {
	if got := BrightnessOf(color.RGBA{255, 255, 255, 255}); got != 765 {
		t.Errorf("white = %d, want 765", got)
	}
	if got := BrightnessOf(color.RGBA{10, 20, 30, 0}); got != 60 {
		t.Errorf("dark = %d, want 60", got)
	}
}

func fill(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestAverageColor(t *testing.T) {
	small := image.NewRGBA(image.Rect(0, 0, 2, 1))
	small.SetRGBA(0, 0, color.RGBA{200, 0, 0, 255})
	small.SetRGBA(1, 0, color.RGBA{0, 0, 100, 255})
	if got, want := AverageColor(small), (color.RGBA{100, 0, 50, 255}); got != want {
		t.Errorf("AverageColor(small) = %v, want %v", got, want)
	}

	large := image.NewRGBA(image.Rect(0, 0, 256, 256))
	fill(large, image.Rect(0, 0, 256, 128), color.RGBA{255, 255, 255, 255})
	fill(large, image.Rect(0, 128, 256, 256), color.RGBA{0, 0, 0, 255})
	got := AverageColor(large)
	for _, ch := range []uint8{got.R, got.G, got.B} {
		if ch < 126 || ch > 129 {
			t.Errorf("AverageColor(large) = %v, want mid grey", got)
			break
		}
	}
}

func TestParseMetric(t *testing.T) {
	for in, want := range map[string]Metric{"": Rank, "rank": Rank, "hue": Hue, "brightness": Brightness} {
		got, err := ParseMetric(in)
		if err != nil || got != want {
			t.Errorf("ParseMetric(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseMetric("saturation"); !errs.Is(err, errs.ErrCodeInvalidArrangement) {
		t.Errorf("ParseMetric(saturation) err = %v", err)
	}
}

type fakeLoader map[string]image.Image

func (f fakeLoader) Load(_ context.Context, locator string) (image.Image, error) {
	img, ok := f[locator]
	if !ok {
		return nil, errors.New("404")
	}
	return img, nil
}

func TestSamplers(t *testing.T) {
	red := image.NewRGBA(image.Rect(0, 0, 3, 3))
	fill(red, red.Bounds(), color.RGBA{255, 0, 0, 255})
	imgs := map[string]image.Image{"red": red}
	ctx := context.Background()

	for name, s := range map[string]Sampler{
		"loader": LoaderSampler{Loader: fakeLoader(imgs)},
		"set":    ImageSet(imgs),
	} {
		c, err := s.AverageColor(ctx, "red")
		if err != nil || c != (color.RGBA{255, 0, 0, 255}) {
			t.Errorf("%s: AverageColor(red) = %v, %v", name, c, err)
		}
		if _, err := s.AverageColor(ctx, "missing"); err == nil {
			t.Errorf("%s: AverageColor(missing) should fail", name)
		}
	}
}
