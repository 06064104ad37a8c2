package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/nick227/ssot-codegen/internal/config"
	"github.com/nick227/ssot-codegen/internal/engine"
	"github.com/nick227/ssot-codegen/internal/plugin"
	"github.com/nick227/ssot-codegen/internal/plugin/contrib"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// pluginConstructors maps configured plugin names to their
// constructors. The list is fixed at compile time; plugins are never
// resolved via reflection or dynamic loading.
var pluginConstructors = map[string]func(options map[string]any) plugin.Plugin{
	"auth":    func(o map[string]any) plugin.Plugin { return contrib.NewAuth(o) },
	"openapi": func(o map[string]any) plugin.Plugin { return contrib.NewOpenAPI(o) },
	"docker":  func(o map[string]any) plugin.Plugin { return contrib.NewDocker(o) },
}

// loadProject loads configuration and schema for a command invocation.
func loadProject() (*config.Config, *schema.Schema, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, err
	}

	baseDir := "."
	if flagConfig != "" {
		baseDir = filepath.Dir(flagConfig)
	}

	s, err := schema.Load(cfg.SchemaPath(baseDir))
	if err != nil {
		return nil, nil, err
	}
	return cfg, s, nil
}

// buildRegistry registers configured plugins in file order.
func buildRegistry(cfg *config.Config, logger *zap.Logger) (*plugin.Registry, error) {
	registry := plugin.NewRegistry(logger)
	for _, pc := range cfg.Plugins {
		ctor, ok := pluginConstructors[pc.Name]
		if !ok {
			return nil, fmt.Errorf("unknown plugin: %s", pc.Name)
		}
		err := registry.Register(ctor(pc.Options), plugin.Config{
			Enabled: pc.IsEnabled(),
			Options: pc.Options,
		})
		if err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// runEngine executes a full generation run for the loaded project.
func runEngine(ctx context.Context, cfg *config.Config, s *schema.Schema, logger *zap.Logger) (*engine.Result, error) {
	registry, err := buildRegistry(cfg, logger)
	if err != nil {
		return nil, err
	}
	return engine.Run(ctx, engine.Options{
		Schema:     s,
		Registry:   registry,
		Policy:     cfg.Policy(),
		ModulePath: cfg.ProjectName,
		SkipSDK:    cfg.Output.SkipSDK,
		Logger:     logger,
	})
}

// printDiagnostics renders collected diagnostics for humans.
func printDiagnostics(diags plugin.Diagnostics) {
	red := color.New(color.FgRed, color.Bold)
	yellow := color.New(color.FgYellow)

	for _, d := range diags {
		switch d.Severity {
		case plugin.SeverityError:
			red.Fprintf(os.Stderr, "error: ")
			fmt.Fprintf(os.Stderr, "plugin %s: %s\n", d.Plugin, d.Message)
		case plugin.SeverityWarning:
			yellow.Fprintf(os.Stderr, "warning: ")
			fmt.Fprintf(os.Stderr, "plugin %s: %s", d.Plugin, d.Message)
			if d.Fallback != "" {
				fmt.Fprintf(os.Stderr, " (fallback: %s)", d.Fallback)
			}
			fmt.Fprintln(os.Stderr)
		}
	}
}
