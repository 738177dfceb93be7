package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/pkg/collage"
	pkgio "github.com/matzehuels/collagefm/pkg/io"
	"github.com/matzehuels/collagefm/pkg/pipeline"
)

// planCommand previews a placement without touching the network.
func (c *CLI) planCommand() *cobra.Command {
	var (
		flags  collageFlags
		count  int
		output string
	)

	cmd := &cobra.Command{
		Use:   "plan [items.json]",
		Short: "Preview a collage placement offline",
		Long: `Preview where each item lands on a template.

Items come from a JSON item list (as written by 'fetch'); without one,
numbered stand-ins fill every slot. The placement table and a character
map of the grid are printed; --output saves the plan for 'render'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, c.Config.Defaults, "")
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}

			var items []collage.Item
			if len(args) == 1 {
				loaded, err := pkgio.ImportItems(args[0])
				if err != nil {
					return err
				}
				items = loaded
			} else {
				n := count
				if n <= 0 {
					n = opts.Limit()
				}
				items = standInItems(n)
			}

			runner := pipeline.NewRunner(nil, nil, nil, c.Logger)
			plan, err := runner.PlanOnly(items, opts)
			if err != nil {
				return err
			}

			printPlan(plan, opts.Rows, opts.Cols)
			if output != "" {
				if err := pkgio.ExportPlan(plan, opts.Rows, opts.Cols, output); err != nil {
					return err
				}
				printFile(output)
				printNextStep("Render it", "collagefm render "+output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of stand-in items (default: the template's slots)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the plan as JSON")

	return cmd
}

func standInItems(n int) []collage.Item {
	items := make([]collage.Item, n)
	for i := range items {
		items[i] = collage.Item{Label: fmt.Sprintf("#%d", i+1)}
	}
	return items
}

func printPlan(plan collage.Plan, rows, cols int) {
	title := fmt.Sprintf("%d×%d grid", rows, cols)
	if plan.Variant != "" {
		title += " · variant " + plan.Variant
	}
	fmt.Fprintln(stdout, StyleTitle.Render(title))

	tableRows := make([][]string, len(plan.Placements))
	for i, p := range plan.Placements {
		tableRows[i] = []string{
			string(tileRune(i)),
			p.Item.Label,
			fmt.Sprintf("%d×%d", p.Footprint, p.Footprint),
			fmt.Sprintf("%d,%d", p.Position.Row, p.Position.Col),
		}
	}
	fmt.Fprintln(stdout, renderTable([]string{"Tile", "Item", "Size", "Row,Col"}, tableRows))
	fmt.Fprintln(stdout, previewGrid(plan, rows, cols))

	if n := plan.Shortfall(); n > 0 {
		printWarning("%d items did not fit", n)
	}
}

// tileAlphabet names tiles in draw order in the grid preview.
const tileAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func tileRune(i int) rune {
	if i < len(tileAlphabet) {
		return rune(tileAlphabet[i])
	}
	return '*'
}

// previewGrid draws the plan as a character map: every cell shows the
// letter of the tile covering it, or '.' when empty.
func previewGrid(plan collage.Plan, rows, cols int) string {
	cells := make([][]rune, rows)
	for r := range cells {
		cells[r] = []rune(strings.Repeat(".", cols))
	}
	for i, p := range plan.Placements {
		for r := p.Position.Row; r < p.Position.Row+p.Footprint && r < rows; r++ {
			for c := p.Position.Col; c < p.Position.Col+p.Footprint && c < cols; c++ {
				if r >= 0 && c >= 0 {
					cells[r][c] = tileRune(i)
				}
			}
		}
	}

	var b strings.Builder
	for r, row := range cells {
		if r > 0 {
			b.WriteByte('\n')
		}
		for c, ch := range row {
			if c > 0 {
				b.WriteByte(' ')
			}
			b.WriteRune(ch)
		}
	}
	return b.String()
}
