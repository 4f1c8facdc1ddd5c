// Package commands implements the docqa CLI.
package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/spherical/docqa/cmd/docqa/ui"
	"github.com/spherical/docqa/internal/app"
	"github.com/spherical/docqa/internal/config"
	"github.com/spherical/docqa/internal/domain"
	"github.com/spherical/docqa/internal/observability"
)

// options are the persistent flags plus test hooks.
type options struct {
	cfgFile string
	verbose bool
	noColor bool

	// completer, when set, replaces the configured provider.
	completer domain.Completer
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "docqa",
		Short: "Ask questions about documents",
		Long: `docqa extracts text from PDF, Word, Excel, PowerPoint and plain text
files and answers natural language questions about their content using a
language model.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(
		newExtractCmd(opts),
		newAskCmd(opts),
		newFormatsCmd(opts),
	)
	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setup loads configuration and wires the components. needModel is false
// for commands that never call a language model.
func setup(cmd *cobra.Command, opts *options, needModel bool) (*app.App, *ui.UI, error) {
	u := ui.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts.noColor, opts.verbose)

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load(opts.cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		Output:      cmd.ErrOrStderr(),
		ServiceName: cfg.Observability.ServiceName,
	})

	a, err := app.Build(cmdContext(cmd), cfg, logger, nil, app.Options{
		SkipModel: !needModel,
		Completer: opts.completer,
	})
	if err != nil {
		return nil, nil, err
	}
	return a, u, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
