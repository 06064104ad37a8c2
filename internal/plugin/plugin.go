// Package plugin implements the feature-plugin system: registration,
// requirement validation against the entity model, generation, and the
// merge of all plugin outputs into one aggregate with conflict
// detection.
package plugin

import (
	"github.com/nick227/ssot-codegen/internal/pipeline"
)

// FieldRef names a field on a specific entity.
type FieldRef struct {
	Entity string
	Field  string
}

func (f FieldRef) String() string {
	return f.Entity + "." + f.Field
}

// Requirements declares what a plugin needs from the entity model.
// Missing required items block generation; missing optional items
// degrade the plugin's output with a documented fallback.
type Requirements struct {
	RequiredEntities []string
	OptionalEntities []string
	RequiredFields   []FieldRef
	OptionalFields   []FieldRef

	// RuntimeDeps are dependency constraints the generated application
	// needs when this plugin is enabled. They flow into the merge step
	// unconditionally.
	RuntimeDeps map[string]string
}

// Route describes one HTTP route a plugin contributes to the generated
// application.
type Route struct {
	Method  string
	Path    string
	Handler string
}

// Middleware describes one middleware a plugin contributes.
type Middleware struct {
	Name        string
	Description string
}

// EnvVar describes an environment variable the generated application
// will read.
type EnvVar struct {
	Description string
	Required    bool
}

// Output is everything one plugin produced for a run. File paths are
// unique within a single plugin's output by construction (map keys);
// cross-plugin uniqueness is the merge step's job.
type Output struct {
	Files        map[string]string
	Routes       []Route
	Middleware   []Middleware
	EnvVars      map[string]EnvVar
	Dependencies map[string]string
}

// NewOutput creates an empty plugin output.
func NewOutput() *Output {
	return &Output{
		Files:        make(map[string]string),
		EnvVars:      make(map[string]EnvVar),
		Dependencies: make(map[string]string),
	}
}

// Plugin is an independently enableable unit contributing generated
// artifacts beyond the core CRUD output. Implementations must be
// deterministic: same context in, same output out.
type Plugin interface {
	// ID is the stable plugin identifier used in configuration,
	// diagnostics, and the manifest.
	ID() string

	// Version is the plugin's semantic version.
	Version() string

	// Requirements declares needed entities, fields, and runtime deps.
	Requirements() Requirements

	// Validate runs plugin-specific checks beyond the declared
	// requirements, which the registry verifies itself. May return nil.
	Validate(gc *pipeline.Context) []Diagnostic

	// Generate produces the plugin's artifacts. The context is
	// read-only; only plugins without fatal diagnostics are invoked.
	Generate(gc *pipeline.Context) (*Output, error)
}
