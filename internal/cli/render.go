package cli

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/pkg/collage"
	"github.com/matzehuels/collagefm/pkg/imageload"
	pkgio "github.com/matzehuels/collagefm/pkg/io"
	"github.com/matzehuels/collagefm/pkg/render"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output  string
	format  string
	noCache bool
	render.Options
}

// renderCommand paints a plan saved by 'plan --output' or
// 'generate --export-plan'.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [plan.json]",
		Short: "Render a saved placement plan",
		Long: `Render a saved placement plan to PNG or JPEG.

The plan fixes every tile, so rendering only loads the artwork. Use it to
re-render a collage with other labels, cell size or format.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: plan name with the image extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "image format: png (default), jpeg")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Labels, "labels", false, "draw item labels")
	cmd.Flags().BoolVar(&opts.Placeholder, "placeholder", false, "draw a placeholder for items without artwork")
	cmd.Flags().IntVar(&opts.CellSize, "cell-size", 0, "pixel size of one grid cell")
	registerFlagCompletions(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if err := opts.Options.Validate(); err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	plan, rows, cols, err := pkgio.ReadPlan(f)
	f.Close()
	if err != nil {
		return err
	}
	logger.Debug("loaded plan", "path", input, "rows", rows, "cols", cols, "tiles", len(plan.Placements))

	cc, err := c.newCache(opts.noCache)
	if err != nil {
		return err
	}
	defer cc.Close()

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Loading artwork...")
	spinner.Start()
	images, failed, err := loadPlanImages(ctx, imageload.New(imageload.WithCache(cc), imageload.WithLocalFiles()), plan)
	if err != nil {
		spinner.StopWithError("Loading failed")
		return err
	}

	spinner.Update("Rendering...")
	img, stats, err := render.Render(plan, rows, cols, images, opts.Options)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	data, err := render.EncodeBytes(img, format)
	spinner.Stop()
	if err != nil {
		return err
	}

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + format.Ext()
	}
	if err := writeOutput(path, data); err != nil {
		return err
	}
	prog.done("Rendered plan", "path", path, "drawn", stats.Drawn, "placeholders", stats.Placeholder)

	printSuccess("Rendered %s", input)
	printFile(path)
	printStats(stats.Drawn+stats.Placeholder, plan.Shortfall(), failed, false)
	return nil
}

// loadPlanImages loads the artwork of every placement once and reports how
// many locators failed.
func loadPlanImages(ctx context.Context, loader *imageload.Loader, plan collage.Plan) (map[string]image.Image, int, error) {
	seen := make(map[string]bool)
	var locators []string
	for _, p := range plan.Placements {
		if loc := p.Item.DisplayLink; loc != "" && !seen[loc] {
			seen[loc] = true
			locators = append(locators, loc)
		}
	}

	results, err := loader.LoadAll(ctx, locators)
	if err != nil {
		return nil, 0, err
	}
	images := make(map[string]image.Image, len(results))
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			loggerFromContext(ctx).Warn("image unavailable", "locator", r.Locator, "err", r.Err)
			failed++
			continue
		}
		images[r.Locator] = r.Image
	}
	return images, failed, nil
}
