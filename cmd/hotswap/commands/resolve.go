package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.trai.ch/hotswap/internal/app"
)

func (c *CLI) newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <library>...",
		Short: "Print the dependency closure of built libraries",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				// Display command usage help without returning an error
				_ = cmd.Help()
				return nil
			}
			dirs, _ := cmd.Flags().GetStringSlice("search")
			records, err := c.app.Resolve(cmd.Context(), app.ResolveOptions{
				Libraries:  args,
				SearchDirs: dirs,
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, rec := range records {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", rec.Name, rec.Hash, rec.LocalPath)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringSliceP("search", "L", nil, "Extra directories to search for dependencies")
	return cmd
}
