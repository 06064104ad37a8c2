// Package commands implements the ssotgen CLI.
package commands

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	flagConfig  string
	flagVerbose bool
)

// NewRootCommand creates the root ssotgen command.
func NewRootCommand(version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "ssotgen",
		Short: "Schema-driven API source generator",
		Long: `ssotgen generates typed API source code from a single schema file:
DTOs, input validators, HTTP handlers, and a client SDK, plus whatever
enabled feature plugins contribute. Every run emits a deterministic
manifest of the produced artifacts.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to ssotgen.yml (default: search working directory)")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(NewGenerateCommand())
	root.AddCommand(NewValidateCommand())
	root.AddCommand(NewInspectCommand())
	root.AddCommand(NewWatchCommand())
	root.AddCommand(NewNewCommand())
	root.AddCommand(NewVersionCommand(version))

	return root
}

// newLogger builds the CLI logger. Verbose runs log debug output;
// normal runs stay quiet below warn.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if flagVerbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return cfg.Build()
}
