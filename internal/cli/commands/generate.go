package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nick227/ssot-codegen/internal/plugin"
	"github.com/nick227/ssot-codegen/internal/writer"
)

var generateDryRun bool

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Run the full generation pipeline and write output",
		Long: `Load the schema, analyze relationships, run all generation phases and
enabled plugins, and write the generated files plus the manifest to the
configured output directory.`,
		RunE: runGenerate,
	}
	cmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Run the pipeline but write nothing")
	return cmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	start := time.Now()

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, s, err := loadProject()
	if err != nil {
		return err
	}

	result, err := runEngine(cmd.Context(), cfg, s, logger)
	if result != nil {
		printDiagnostics(result.Diagnostics)
	}
	if err != nil {
		var verr *plugin.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("generation blocked by %d validation error(s)", len(verr.Diagnostics.Errors()))
		}
		return err
	}

	if generateDryRun {
		fmt.Printf("dry run: %d file(s), %d route(s), nothing written\n",
			len(result.Manifest.Files), len(result.Manifest.Routes))
		return nil
	}

	w := writer.New(cfg.Output.Dir, cfg.Output.Concurrency, logger)
	if err := w.WriteAll(cmd.Context(), result.Aggregate); err != nil {
		return err
	}

	encoded, err := result.Manifest.Encode()
	if err != nil {
		return err
	}
	if err := writer.WriteManifest(cfg.Output.Manifest, encoded); err != nil {
		return err
	}

	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ ")
	fmt.Printf("generated %d file(s), %d route(s) in %s\n",
		len(result.Manifest.Files), len(result.Manifest.Routes),
		time.Since(start).Round(time.Millisecond))
	return nil
}
