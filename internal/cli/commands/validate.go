package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/pipeline"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the schema and plugin requirements without generating",
		Long: `Resolve all relations, run the relationship analyzer, and check every
enabled plugin's requirements. All problems are collected and reported
together in one pass.`,
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, s, err := loadProject()
	if err != nil {
		return err
	}

	// Relation resolution first; a SchemaError already carries every
	// unresolved target.
	analyses, err := analyzer.New(cfg.Policy(), logger).Analyze(s)
	if err != nil {
		return err
	}

	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}

	// Requirements are checked against the schema directly; the
	// context only carries the logger for plugin-specific hooks.
	gc := pipeline.NewContext(logger)
	diags := registry.Validate(s, gc)
	printDiagnostics(diags)

	if diags.HasFatal() {
		return fmt.Errorf("validation failed with %d error(s)", len(diags.Errors()))
	}

	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ ")
	fmt.Printf("schema valid: %d entities analyzed, %d warning(s)\n",
		len(analyses), len(diags.Warnings()))
	return nil
}
