package cli

import (
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/collagefm/pkg/arrange"
	"github.com/matzehuels/collagefm/pkg/collage"
	"github.com/matzehuels/collagefm/pkg/lastfm"
	"github.com/matzehuels/collagefm/pkg/render"
)

// completionCommand prints shell completion scripts. Flag values such as
// --grid and --period complete from the layout catalog and Last.fm periods.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for collagefm.

  $ source <(collagefm completion bash)
  $ collagefm completion zsh > "${fpath[1]}/_collagefm"
  $ collagefm completion fish | source
  PS> collagefm completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, true)
			case "zsh":
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
		},
	}
}

// Completion values for collage flags.
var (
	periodValues = []string{
		lastfm.PeriodWeek, lastfm.PeriodMonth, lastfm.Period3Months,
		lastfm.Period6Months, lastfm.Period12Months, lastfm.PeriodOverall,
	}
	itemTypeValues = []string{string(lastfm.Albums), string(lastfm.Tracks), string(lastfm.Artists)}
	arrangeValues  = sortedKeys(arrange.ValidMetrics)
	formatValues   = sortedKeys(render.ValidFormats)
)

func gridValues() []string {
	var out []string
	for _, size := range collage.GridSizes() {
		out = append(out, strconv.Itoa(size))
	}
	return out
}

func variantValues() []string {
	var out []string
	for _, size := range collage.GridSizes() {
		l, _ := collage.Lookup(size)
		for _, v := range l.Variants() {
			if !slices.Contains(out, v) {
				out = append(out, v)
			}
		}
	}
	return out
}

func sortedKeys[K ~string](m map[K]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	slices.Sort(out)
	return out
}

func fixedValues(values []string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerFlagCompletions attaches value completion to every flag of cmd
// that has a closed set of values. Flags the command lacks are skipped.
func registerFlagCompletions(cmd *cobra.Command) {
	values := map[string][]string{
		"period":  periodValues,
		"type":    itemTypeValues,
		"grid":    gridValues(),
		"variant": variantValues(),
		"arrange": arrangeValues,
		"format":  formatValues,
	}
	for name, vals := range values {
		if cmd.Flags().Lookup(name) == nil {
			continue
		}
		_ = cmd.RegisterFlagCompletionFunc(name, fixedValues(vals))
	}
}
