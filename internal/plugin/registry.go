package plugin

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/nick227/ssot-codegen/internal/pipeline"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// Config is the per-plugin configuration from the project file.
type Config struct {
	Enabled bool
	Options map[string]any
}

// registration pairs a plugin with its configuration.
type registration struct {
	plugin Plugin
	config Config
}

// Registry holds the fixed plugin list for a run. Plugins are added
// through explicit constructors in configuration order; there is no
// reflection or dynamic loading, so merge ordering is deterministic.
type Registry struct {
	regs   []registration
	byID   map[string]int
	logger *zap.Logger
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		byID:   make(map[string]int),
		logger: logger,
	}
}

// Register adds a plugin with its configuration. Registration order is
// the merge order for routes and middleware.
func (r *Registry) Register(p Plugin, cfg Config) error {
	if _, dup := r.byID[p.ID()]; dup {
		return fmt.Errorf("plugin %s registered twice", p.ID())
	}
	r.byID[p.ID()] = len(r.regs)
	r.regs = append(r.regs, registration{plugin: p, config: cfg})
	return nil
}

// Enabled returns enabled plugins in registration order. Disabled
// plugins are excluded from every subsequent step.
func (r *Registry) Enabled() []Plugin {
	var out []Plugin
	for _, reg := range r.regs {
		if reg.config.Enabled {
			out = append(out, reg.plugin)
		}
	}
	return out
}

// Options returns the configured options for a plugin.
func (r *Registry) Options(id string) map[string]any {
	if i, ok := r.byID[id]; ok {
		return r.regs[i].config.Options
	}
	return nil
}

// Validate checks every enabled plugin's declared requirements against
// the entity model and runs its own validation hook. Diagnostics from
// all plugins are collected together so the caller sees the complete
// picture in one pass; validation never stops at the first plugin.
func (r *Registry) Validate(s *schema.Schema, gc *pipeline.Context) Diagnostics {
	var diags Diagnostics

	for _, p := range r.Enabled() {
		req := p.Requirements()

		for _, name := range req.RequiredEntities {
			if _, ok := s.Entity(name); !ok {
				diags = append(diags, Diagnostic{
					Plugin:   p.ID(),
					Severity: SeverityError,
					Subject:  name,
					Message:  fmt.Sprintf("required entity %s is missing from the schema", name),
				})
			}
		}
		for _, name := range req.OptionalEntities {
			if _, ok := s.Entity(name); !ok {
				diags = append(diags, Diagnostic{
					Plugin:   p.ID(),
					Severity: SeverityWarning,
					Subject:  name,
					Message:  fmt.Sprintf("optional entity %s is missing from the schema", name),
					Fallback: fallbackFor(p, name),
				})
			}
		}
		for _, ref := range req.RequiredFields {
			if !hasField(s, ref) {
				diags = append(diags, Diagnostic{
					Plugin:   p.ID(),
					Severity: SeverityError,
					Subject:  ref.String(),
					Message:  fmt.Sprintf("required field %s is missing from the schema", ref),
				})
			}
		}
		for _, ref := range req.OptionalFields {
			if !hasField(s, ref) {
				diags = append(diags, Diagnostic{
					Plugin:   p.ID(),
					Severity: SeverityWarning,
					Subject:  ref.String(),
					Message:  fmt.Sprintf("optional field %s is missing from the schema", ref),
					Fallback: fallbackFor(p, ref.String()),
				})
			}
		}

		diags = append(diags, p.Validate(gc)...)
	}

	for _, d := range diags {
		r.logger.Debug("plugin diagnostic",
			zap.String("plugin", d.Plugin),
			zap.String("severity", d.Severity.String()),
			zap.String("subject", d.Subject),
			zap.String("message", d.Message))
	}

	return diags
}

// OwnedOutput attributes one plugin's output to its contributor.
type OwnedOutput struct {
	Plugin  string
	Version string
	Output  *Output
}

// Generate invokes Generate on every enabled plugin that validated
// without fatal diagnostics, in registration order.
func (r *Registry) Generate(gc *pipeline.Context, diags Diagnostics) ([]*OwnedOutput, error) {
	var outputs []*OwnedOutput
	for _, p := range r.Enabled() {
		if diags.FatalFor(p.ID()) {
			continue
		}
		out, err := p.Generate(gc)
		if err != nil {
			return nil, fmt.Errorf("plugin %s generation failed: %w", p.ID(), err)
		}

		// Declared runtime deps merge in alongside whatever the plugin
		// emitted explicitly.
		for name, constraint := range p.Requirements().RuntimeDeps {
			if _, ok := out.Dependencies[name]; !ok {
				out.Dependencies[name] = constraint
			}
		}

		outputs = append(outputs, &OwnedOutput{
			Plugin:  p.ID(),
			Version: p.Version(),
			Output:  out,
		})
		r.logger.Debug("plugin generated",
			zap.String("plugin", p.ID()),
			zap.Int("files", len(out.Files)),
			zap.Int("routes", len(out.Routes)))
	}
	return outputs, nil
}

func hasField(s *schema.Schema, ref FieldRef) bool {
	e, ok := s.Entity(ref.Entity)
	if !ok {
		return false
	}
	_, ok = e.Field(ref.Field)
	return ok
}

// fallbackFor asks the plugin for a fallback description when it
// implements the optional Fallbacker interface.
func fallbackFor(p Plugin, subject string) string {
	if f, ok := p.(Fallbacker); ok {
		return f.Fallback(subject)
	}
	return ""
}

// Fallbacker is implemented by plugins that can describe the reduced
// functionality used when an optional requirement is missing.
type Fallbacker interface {
	Fallback(subject string) string
}
