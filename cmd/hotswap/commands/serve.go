package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/hotswap/internal/app"
)

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch, build and stream updates to remote runners",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			addr, _ := cmd.Flags().GetString("address")
			dashboard, _ := cmd.Flags().GetBool("tui")
			return c.app.Serve(cmd.Context(), app.ServeOptions{
				Dir:       dirFlag(cmd),
				Address:   addr,
				Dashboard: dashboard,
			})
		},
	}
	cmd.Flags().StringP("address", "a", "", "Address to listen on (default from hotswap.yaml)")
	cmd.Flags().Bool("tui", false, "Show builds and logs in a terminal dashboard")
	return cmd
}

func (c *CLI) newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Watch, build and run the project in this process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.app.Run(cmd.Context(), app.RunOptions{Dir: dirFlag(cmd)})
		},
	}
}

func (c *CLI) newRunnerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runner",
		Short: "Connect to a hotswap server and run the builds it streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			server, _ := cmd.Flags().GetString("server")
			libDir, _ := cmd.Flags().GetString("library-dir")
			workDir, _ := cmd.Flags().GetString("working-dir")
			return c.app.Runner(cmd.Context(), app.RunnerOptions{
				Dir:        dirFlag(cmd),
				Server:     server,
				LibraryDir: libDir,
				WorkingDir: workDir,
			})
		},
	}
	cmd.Flags().StringP("server", "s", "", "Server URL, http(s) or ws(s)")
	cmd.Flags().StringP("library-dir", "l", "", "Directory downloaded libraries are stored in")
	cmd.Flags().StringP("working-dir", "w", "", "Directory the library runs in")
	return cmd
}
