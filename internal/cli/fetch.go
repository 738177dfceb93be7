package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/collagefm/pkg/io"
)

// fetchCommand writes a user's chart as a JSON item list, the input of
// 'plan'.
func (c *CLI) fetchCommand() *cobra.Command {
	var (
		flags   collageFlags
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "fetch [username]",
		Short: "Fetch a Last.fm chart as a JSON item list",
		Long: `Fetch a Last.fm chart as a JSON item list.

As many items are fetched as the chosen layout has slots. The list can be
edited and handed to 'plan'.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var username string
			if len(args) == 1 {
				username = args[0]
			}
			opts := flags.options(cmd, c.Config.Defaults, username)
			if err := opts.ValidateForFetch(); err != nil {
				return err
			}
			if err := opts.ValidateForLayout(); err != nil {
				return err
			}
			if err := c.requireAPIKey(); err != nil {
				return err
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			prog := newProgress(loggerFromContext(cmd.Context()))
			items, hit, err := runner.FetchWithCacheInfo(cmd.Context(), opts)
			if err != nil {
				return err
			}
			prog.done("Fetched chart", "user", opts.Username, "items", len(items), "cached", hit)

			var w io.Writer = stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := pkgio.WriteItems(items, w); err != nil {
				return err
			}
			if output != "" {
				printFile(output)
				printNextStep("Preview a layout", "collagefm plan "+output)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}
