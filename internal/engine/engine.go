// Package engine orchestrates a full generation run: relationship
// analysis, the phase pipeline, plugin validation and generation, the
// output merge, and the final manifest. The engine itself performs no
// I/O; callers feed it a loaded schema and write the result wherever
// they want.
package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/generator"
	"github.com/nick227/ssot-codegen/internal/manifest"
	"github.com/nick227/ssot-codegen/internal/pipeline"
	"github.com/nick227/ssot-codegen/internal/plugin"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// CoreOwner attributes core phase output in the aggregate and the
// manifest, distinguishing it from plugin contributions.
const CoreOwner = "core"

// Options configures one generation run.
type Options struct {
	Schema   *schema.Schema
	Registry *plugin.Registry
	Policy   analyzer.Policy

	// ModulePath is the module path written into the generated
	// application's go.mod. Empty defaults to "app".
	ModulePath string

	// SkipSDK disables the client SDK phase.
	SkipSDK bool

	Logger *zap.Logger
}

// Result is everything a run produced, handed read-only to callers.
type Result struct {
	Analyses    map[string]*analyzer.EntityAnalysis
	Context     *pipeline.Context
	Aggregate   *plugin.Aggregate
	Manifest    *manifest.Manifest
	Diagnostics plugin.Diagnostics
}

// Run executes the full pipeline. Validation problems (schema, plugin
// requirements) are collected exhaustively and reported in one batch;
// execution problems (phase, merge) fail fast.
func Run(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Schema == nil {
		return nil, fmt.Errorf("engine: no schema provided")
	}
	registry := opts.Registry
	if registry == nil {
		registry = plugin.NewRegistry(logger)
	}

	// Relationship analysis runs before any phase or plugin; an
	// unresolved relation aborts the run here.
	analyses, err := analyzer.New(opts.Policy, logger).Analyze(opts.Schema)
	if err != nil {
		return nil, err
	}

	runner, err := pipeline.NewRunner(corePhases(opts, analyses), logger)
	if err != nil {
		return nil, err
	}

	gc := pipeline.NewContext(logger)
	if err := runner.Run(ctx, gc); err != nil {
		return nil, err
	}

	result := &Result{
		Analyses: analyses,
		Context:  gc,
	}

	// Plugin validation never stops at the first plugin; fatal
	// diagnostics block generation as one batch.
	diags := registry.Validate(opts.Schema, gc)
	result.Diagnostics = diags
	if diags.HasFatal() {
		return result, &plugin.ValidationError{Diagnostics: diags}
	}

	pluginOutputs, err := registry.Generate(gc, diags)
	if err != nil {
		return result, err
	}

	core, err := coreOutput(gc, opts.SkipSDK)
	if err != nil {
		return result, err
	}

	all := append([]*plugin.OwnedOutput{core}, pluginOutputs...)
	merged, err := plugin.Merge(all)
	if err != nil {
		return result, err
	}

	// The generated app's go.mod needs the merged dependency set, so it
	// is rendered after the first merge and folded in through a second
	// one, keeping conflict detection over its path too.
	modulePath := opts.ModulePath
	if modulePath == "" {
		modulePath = "app"
	}
	gomod := plugin.NewOutput()
	gomod.Files["go.mod"] = generator.GenerateGoMod(modulePath, merged.Dependencies)
	merged, err = plugin.Merge(append(all, &plugin.OwnedOutput{Plugin: CoreOwner, Output: gomod}))
	if err != nil {
		return result, err
	}

	result.Aggregate = merged
	result.Manifest = manifest.Build(merged)

	logger.Info("generation run completed",
		zap.Int("entities", len(opts.Schema.Entities)),
		zap.Int("files", len(merged.Files)),
		zap.Int("routes", len(merged.Routes)),
		zap.Int("warnings", len(diags.Warnings())))

	return result, nil
}

// corePhases builds the fixed phase list. The analyze phase publishes
// the precomputed model and analysis into the context; the rest render
// source artifacts from them.
func corePhases(opts Options, analyses map[string]*analyzer.EntityAnalysis) []*pipeline.Phase {
	return []*pipeline.Phase{
		{
			ID:      PhaseAnalyze,
			Outputs: []string{KeySchema, KeyAnalysis},
			Run: func(ctx context.Context, gc *pipeline.Context) (map[string]any, error) {
				return map[string]any{
					KeySchema:   opts.Schema,
					KeyAnalysis: analyses,
				}, nil
			},
		},
		{
			ID:      PhaseDTO,
			Deps:    []string{PhaseAnalyze},
			Outputs: []string{KeyDTOFiles},
			Run: func(ctx context.Context, gc *pipeline.Context) (map[string]any, error) {
				files, err := generator.GenerateDTOs(opts.Schema, analyses)
				if err != nil {
					return nil, err
				}
				return map[string]any{KeyDTOFiles: files}, nil
			},
		},
		{
			ID:      PhaseValidators,
			Deps:    []string{PhaseDTO},
			Outputs: []string{KeyValidatorFiles},
			Run: func(ctx context.Context, gc *pipeline.Context) (map[string]any, error) {
				files, err := generator.GenerateValidators(opts.Schema, analyses)
				if err != nil {
					return nil, err
				}
				return map[string]any{KeyValidatorFiles: files}, nil
			},
		},
		{
			ID:      PhaseHandlers,
			Deps:    []string{PhaseAnalyze},
			Outputs: []string{KeyHandlerFiles, KeyCoreRoutes},
			Run: func(ctx context.Context, gc *pipeline.Context) (map[string]any, error) {
				out, err := generator.GenerateHandlers(opts.Schema, analyses)
				if err != nil {
					return nil, err
				}
				return map[string]any{
					KeyHandlerFiles: out.Files,
					KeyCoreRoutes:   out.Routes,
				}, nil
			},
		},
		{
			ID:        PhaseSDK,
			Deps:      []string{PhaseHandlers},
			Outputs:   []string{KeySDKFiles},
			ShouldRun: func(gc *pipeline.Context) bool { return !opts.SkipSDK },
			Run: func(ctx context.Context, gc *pipeline.Context) (map[string]any, error) {
				files, err := generator.GenerateSDK(opts.Schema, analyses)
				if err != nil {
					return nil, err
				}
				return map[string]any{KeySDKFiles: files}, nil
			},
		},
	}
}

// coreOutput folds the phase outputs into one owned output so the core
// surface goes through the same merge and conflict detection as the
// plugins.
func coreOutput(gc *pipeline.Context, skipSDK bool) (*plugin.OwnedOutput, error) {
	out := plugin.NewOutput()

	fileKeys := []string{KeyDTOFiles, KeyValidatorFiles, KeyHandlerFiles}
	if !skipSDK {
		fileKeys = append(fileKeys, KeySDKFiles)
	}
	for _, key := range fileKeys {
		files, err := pipeline.Value[map[string]string](gc, key)
		if err != nil {
			return nil, err
		}
		for path, content := range files {
			out.Files[path] = content
		}
	}

	routes, err := pipeline.Value[[]plugin.Route](gc, KeyCoreRoutes)
	if err != nil {
		return nil, err
	}
	out.Routes = routes

	return &plugin.OwnedOutput{Plugin: CoreOwner, Output: out}, nil
}
