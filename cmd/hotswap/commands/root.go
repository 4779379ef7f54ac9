// Package commands implements the CLI commands for hotswap.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/hotswap/internal/app"
	"go.trai.ch/hotswap/internal/build"
	"go.trai.ch/hotswap/internal/core/domain"
)

// CLI represents the command line interface for hotswap.
type CLI struct {
	app     Application
	log     LogSettings
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Serve(ctx context.Context, opts app.ServeOptions) error
	Run(ctx context.Context, opts app.RunOptions) error
	Runner(ctx context.Context, opts app.RunnerOptions) error
	Resolve(ctx context.Context, opts app.ResolveOptions) ([]domain.HashedFileRecord, error)
}

// LogSettings switches the logger between output modes.
type LogSettings interface {
	SetJSON(enable bool)
	SetVerbose(enable bool)
}

// New creates a new CLI instance with the given app.
func New(a Application, log LogSettings) *CLI {
	rootCmd := &cobra.Command{
		Use:           "hotswap",
		Short:         "Rebuild native libraries on change and reload them into running programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().Bool("verbose", false, "Show debug output")
	rootCmd.PersistentFlags().Bool("json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().StringP("dir", "C", "", "Directory to look for hotswap.yaml in")

	c := &CLI{
		app:     a,
		log:     log,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		jsonLogs, _ := cmd.Flags().GetBool("json")
		if c.log != nil {
			c.log.SetVerbose(verbose)
			c.log.SetJSON(jsonLogs)
		}
	}

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newRunCmd())
	rootCmd.AddCommand(c.newRunnerCmd())
	rootCmd.AddCommand(c.newResolveCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func dirFlag(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("dir")
	return dir
}
