package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/pkg/collage"
)

// layoutsCommand lists the collage templates.
func (c *CLI) layoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts",
		Short: "List the collage templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := layoutRows()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, renderTable([]string{"Grid", "Items", "Tiles", "Variants"}, rows))
			printDetail("Fixed grids: --rows and --cols from %d to %d, one item per cell", collage.MinFixedDim, collage.MaxFixedDim)
			printNextStep("Preview one", "collagefm plan --grid 6 --variant 2")
			return nil
		},
	}
}

// layoutRows describes each template as grid, item count, tile mix and
// variants, e.g. "5×5", "11", "1 large, 2 medium, 8 small", "1, 2".
func layoutRows() ([][]string, error) {
	var rows [][]string
	for _, size := range collage.GridSizes() {
		l, err := collage.Lookup(size)
		if err != nil {
			return nil, err
		}
		mix := make([]string, len(l.SizeClasses))
		for i, sc := range l.SizeClasses {
			mix[i] = fmt.Sprintf("%d %s", sc.Count, sc.Kind)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d×%d", l.Rows, l.Cols),
			strconv.Itoa(l.TotalItemSlots),
			strings.Join(mix, ", "),
			strings.Join(l.Variants(), ", "),
		})
	}
	return rows, nil
}
