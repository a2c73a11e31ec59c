// File: cmd/stowage/root.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"stowage/internal/config"
	"stowage/internal/flags"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	envFiles   []string
	debug      bool
}

// cli owns the root command and the application built for the running command
type cli struct {
	opts      rootOptions
	app       *appContainer
	logOutput io.Writer
}

func (c *cli) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stowage",
		Short: "stowage stores objects across several storage backends.",
		Long: `A unified CLI over object storage backends (local disk, GCS, S3, Redis, memory).
Backends can be combined into a mirror that replicates every write, or a
primary/secondary fallback pair, and objects can be migrated between them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(c.opts.envFiles...); err != nil {
				return err
			}
			app, err := newApp(c.opts, c.logOutput)
			if err != nil {
				return err
			}
			c.app = app
			cmd.SetContext(context.WithValue(cmd.Context(), appContextKey{}, app))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&c.opts.configPath, flags.Config, flags.ConfigShort, "", "Path of the configuration file (default ~/.config/stowage/config.yaml)")
	rootCmd.PersistentFlags().StringSliceVar(&c.opts.envFiles, flags.EnvFile, nil, "Dotenv files to load before reading the configuration (default .env)")
	rootCmd.PersistentFlags().BoolVarP(&c.opts.debug, flags.Debug, flags.DebugShort, false, "Enable debug logging")

	rootCmd.AddCommand(newObjectCmd(), newBackendsCmd(), newMigrateCmd(), newConfigCmd())
	return rootCmd
}

// Runs the command line and returns the process exit code
func Execute(ctx context.Context, args []string) int {
	return execute(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) int {
	c := &cli{logOutput: errOut}
	rootCmd := c.newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(in)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	err := rootCmd.ExecuteContext(ctx)

	if c.app != nil {
		if ferr := c.app.flushMetrics(); ferr != nil {
			c.app.Logger.Warn("Failed to write metrics", "error", ferr)
		}
	}
	if err != nil {
		if c.app != nil {
			if details, ok := c.app.describeFailure(err); ok {
				fmt.Fprintln(errOut, details)
			}
		}
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
	return 0
}
