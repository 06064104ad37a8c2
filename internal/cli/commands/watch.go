package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nick227/ssot-codegen/internal/config"
	"github.com/nick227/ssot-codegen/internal/schema"
	"github.com/nick227/ssot-codegen/internal/watch"
	"github.com/nick227/ssot-codegen/internal/writer"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Regenerate whenever the schema or config changes",
		RunE:  runWatch,
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, _, err := loadProject()
	if err != nil {
		return err
	}

	baseDir := "."
	configFile := "ssotgen.yml"
	if flagConfig != "" {
		baseDir = filepath.Dir(flagConfig)
		configFile = flagConfig
	}
	schemaFile := cfg.SchemaPath(baseDir)

	regenerate := func(changed []string) error {
		fmt.Printf("change detected (%d file(s)), regenerating...\n", len(changed))

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		s, err := schema.Load(cfg.SchemaPath(baseDir))
		if err != nil {
			return err
		}
		result, err := runEngine(cmd.Context(), cfg, s, logger)
		if result != nil {
			printDiagnostics(result.Diagnostics)
		}
		if err != nil {
			return err
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
		fmt.Printf("regenerated %d file(s)\n", len(result.Manifest.Files))
		return nil
	}

	w, err := watch.New([]string{schemaFile, configFile}, regenerate, logger)
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	// Run once up front so the output exists before the first edit.
	if err := regenerate(nil); err != nil {
		fmt.Fprintf(os.Stderr, "initial generation failed: %v\n", err)
	}

	fmt.Println("watching for changes, press Ctrl+C to stop")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	return nil
}
