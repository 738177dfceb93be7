package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	errs "github.com/matzehuels/collagefm/pkg/errors"
	pkgio "github.com/matzehuels/collagefm/pkg/io"
	"github.com/matzehuels/collagefm/pkg/pipeline"
	"github.com/matzehuels/collagefm/pkg/store"
)

// generateCommand creates the generate command, the one-shot path from a
// username to a collage image.
func (c *CLI) generateCommand() *cobra.Command {
	var (
		flags       collageFlags
		output      string
		planOut     string
		noCache     bool
		interactive bool
		save        bool
	)

	cmd := &cobra.Command{
		Use:   "generate [username]",
		Short: "Render a collage from a Last.fm chart",
		Long: `Render a collage from a Last.fm user's top chart.

The chart is fetched, optionally reordered by brightness or hue, placed on
a template and rendered to PNG or JPEG. Charts and pinned collages (fixed
grids, or a given --variant or --seed) are cached locally.

Examples:
  collagefm generate rj
  collagefm generate rj --period 1month --grid 6 --arrange hue
  collagefm generate rj --rows 3 --cols 4 --labels -o top.png
  collagefm generate rj --interactive`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var username string
			if len(args) == 1 {
				username = args[0]
			}
			opts := flags.options(cmd, c.Config.Defaults, username)

			if interactive {
				picked, err := runPicker()
				if err != nil {
					return err
				}
				if picked.Aborted {
					return context.Canceled
				}
				opts.Period = picked.Period
				opts.Layout, opts.Rows, opts.Cols = pipeline.LayoutVarying, 0, 0
				opts.GridSize, opts.Variant = picked.Layout.GridSize, picked.Layout.Variant
			}
			return c.runGenerate(cmd.Context(), opts, generateOutput{
				path:    output,
				plan:    planOut,
				noCache: noCache,
				save:    save,
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file or directory (default: derived name in the current directory)")
	cmd.Flags().StringVar(&planOut, "export-plan", "", "also write the placement plan as JSON")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick period and layout interactively")
	cmd.Flags().BoolVar(&save, "save", false, "keep the collage in the record store")

	return cmd
}

type generateOutput struct {
	path    string
	plan    string
	noCache bool
	save    bool
}

func (c *CLI) runGenerate(ctx context.Context, opts pipeline.Options, out generateOutput) error {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}
	if err := c.requireAPIKey(); err != nil {
		return err
	}
	opts.Logger = c.stageLogger()

	runner, err := c.newRunner(out.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	spinner := newSpinnerWithContext(ctx, "Fetching "+opts.Username+"'s top "+opts.ItemType+"...")
	spinner.Start()

	items, chartHit, err := runner.FetchWithCacheInfo(ctx, opts)
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}
	if len(items) == 0 {
		spinner.StopWithError("Empty chart")
		return errs.New(errs.ErrCodeNotFound, "%s has no %s for period %s", opts.Username, opts.ItemType, opts.Period)
	}

	spinner.Update("Rendering collage...")
	result, err := runner.Compose(ctx, items, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	path := outputPath(out.path, result.Filename)
	if err := writeOutput(path, result.Data); err != nil {
		return err
	}
	prog.done("Generated collage", "path", path, "bytes", len(result.Data))

	printSuccess("Collage ready")
	printFile(path)
	printStats(result.Stats.Placed, result.Stats.Dropped, len(result.Failed), chartHit || result.CacheInfo.CollageHit)
	if result.Plan.Variant != "" {
		printKeyValue("Variant", result.Plan.Variant)
	}

	if out.plan != "" {
		if err := pkgio.ExportPlan(result.Plan, opts.Rows, opts.Cols, out.plan); err != nil {
			return err
		}
		printFile(out.plan)
	}

	if out.save {
		st, err := c.openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()
		rec := store.NewRecord(opts.StoreParams(result.Plan.Variant), result.Filename, result.ContentType, result.Data, store.DefaultTTL)
		rec.Dropped, rec.Failed = result.Stats.Dropped, len(result.Failed)
		if err := st.Put(ctx, rec); err != nil {
			return err
		}
		printKeyValue("Record", rec.ID)
	}
	return nil
}

// stageLogger is the logger handed to the pipeline. Stage logs would fight
// with the spinner, so they only show in verbose mode.
func (c *CLI) stageLogger() *log.Logger {
	if c.verbose {
		return c.Logger
	}
	l := c.Logger.With()
	l.SetLevel(log.WarnLevel)
	return l
}

// outputPath resolves -o: empty means the derived name, an existing
// directory receives the derived name.
func outputPath(flag, derived string) string {
	if flag == "" {
		return derived
	}
	if info, err := os.Stat(flag); err == nil && info.IsDir() {
		return filepath.Join(flag, derived)
	}
	return flag
}

func writeOutput(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
