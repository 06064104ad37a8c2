// Package analyzer derives per-entity generation metadata from the
// entity model: which relations to eagerly include, which entities are
// pure junction tables, and which scalar fields imply extra generated
// behavior. The analysis is recomputed on every run and is immutable
// once built.
package analyzer

import (
	"strings"

	"go.uber.org/zap"

	"github.com/nick227/ssot-codegen/internal/schema"
)

// SpecialField pairs a detected tag with the field that triggered it.
type SpecialField struct {
	Tag   SpecialTag
	Field string
}

// EntityAnalysis is the derived metadata for one entity.
type EntityAnalysis struct {
	Entity *schema.Entity

	// AutoInclude lists relations that generated read APIs should
	// eagerly fetch, in the entity's declaration order.
	AutoInclude []*schema.Relation

	IsJunctionTable bool

	SpecialFields []SpecialField
}

// HasTag reports whether the analysis detected the given tag.
func (a *EntityAnalysis) HasTag(tag SpecialTag) bool {
	for _, sf := range a.SpecialFields {
		if sf.Tag == tag {
			return true
		}
	}
	return false
}

// TagField returns the field name the tag was detected on.
func (a *EntityAnalysis) TagField(tag SpecialTag) (string, bool) {
	for _, sf := range a.SpecialFields {
		if sf.Tag == tag {
			return sf.Field, true
		}
	}
	return "", false
}

// Analyzer classifies entities under a fixed policy.
type Analyzer struct {
	policy Policy
	logger *zap.Logger
}

// New creates an analyzer. A nil logger disables logging.
func New(policy Policy, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{policy: policy, logger: logger}
}

// Analyze computes the per-entity analysis map for the whole schema.
// If any relation target cannot be resolved the whole analysis aborts
// with a *SchemaError listing every unresolved relation.
func (a *Analyzer) Analyze(s *schema.Schema) (map[string]*EntityAnalysis, error) {
	if err := a.resolveTargets(s); err != nil {
		return nil, err
	}

	analyses := make(map[string]*EntityAnalysis, len(s.Entities))

	// First pass: junction classification. It only needs local entity
	// shape, and the auto-include pass depends on it.
	for _, e := range s.Entities {
		analyses[e.Name] = &EntityAnalysis{
			Entity:          e,
			IsJunctionTable: a.isJunctionTable(e),
		}
	}

	// Second pass: auto-include and special fields. Junction tables get
	// no auto-includes of their own; their read shape is never expanded.
	for _, e := range s.Entities {
		an := analyses[e.Name]
		if !an.IsJunctionTable {
			for _, r := range e.Relations {
				if r.Kind != schema.ToOne {
					continue
				}
				if analyses[r.Target].IsJunctionTable {
					continue
				}
				an.AutoInclude = append(an.AutoInclude, r)
			}
		}
		an.SpecialFields = a.detectSpecialFields(e)

		a.logger.Debug("analyzed entity",
			zap.String("entity", e.Name),
			zap.Bool("junction", an.IsJunctionTable),
			zap.Int("auto_include", len(an.AutoInclude)),
			zap.Int("special_fields", len(an.SpecialFields)))
	}

	return analyses, nil
}

// resolveTargets validates that every relation points at a known
// entity. All failures are collected before returning.
func (a *Analyzer) resolveTargets(s *schema.Schema) error {
	var unresolved []UnresolvedRelation
	for _, e := range s.Entities {
		for _, r := range e.Relations {
			if _, ok := s.Entity(r.Target); !ok {
				unresolved = append(unresolved, UnresolvedRelation{
					Entity:     e.Name,
					Relation:   r.Name,
					ForeignKey: r.ForeignKey,
					Target:     r.Target,
				})
			}
		}
	}
	if len(unresolved) > 0 {
		return &SchemaError{Unresolved: unresolved}
	}
	return nil
}

// isJunctionTable applies the junction policy to one entity.
func (a *Analyzer) isJunctionTable(e *schema.Entity) bool {
	if forced, ok := a.policy.Junction.Overrides[e.Name]; ok {
		return forced
	}

	toOne := 0
	for _, r := range e.Relations {
		if r.Kind == schema.ToOne {
			toOne++
		}
	}
	if toOne < a.policy.Junction.MinToOneRelations {
		return false
	}

	return a.scalarFieldCount(e) <= a.policy.Junction.MaxScalarFields
}

// scalarFieldCount counts fields that are neither identifiers nor
// foreign keys of a to-one relation.
func (a *Analyzer) scalarFieldCount(e *schema.Entity) int {
	fks := e.ForeignKeyFields()
	n := 0
	for _, f := range e.Fields {
		if f.IsID || fks[f.Name] {
			continue
		}
		n++
	}
	return n
}

// detectSpecialFields matches the policy's field rules against the
// entity's fields, plus the relation-shaped parentReference rule.
func (a *Analyzer) detectSpecialFields(e *schema.Entity) []SpecialField {
	var detected []SpecialField

	for _, f := range e.Fields {
		for _, rule := range a.policy.Match.Rules {
			if a.matches(f, rule) {
				detected = append(detected, SpecialField{Tag: rule.Tag, Field: f.Name})
				break
			}
		}
	}

	// A nullable self-referential foreign key marks a tree-shaped
	// entity (threaded comments, nested categories).
	for _, r := range e.Relations {
		if r.Kind != schema.ToOne || r.Target != e.Name {
			continue
		}
		fk, ok := e.Field(r.ForeignKey)
		if !ok || !fk.Nullable {
			continue
		}
		detected = append(detected, SpecialField{Tag: TagParentReference, Field: fk.Name})
	}

	return detected
}

// matches reports whether a single field satisfies a rule. Matching is
// name+type based, never semantic.
func (a *Analyzer) matches(f *schema.Field, rule FieldRule) bool {
	if f.Type != rule.Type {
		return false
	}
	if rule.RequireUnique && !f.Unique {
		return false
	}
	if rule.RequireNullable && !f.Nullable {
		return false
	}
	for _, name := range rule.Names {
		if a.policy.Match.CaseSensitive {
			if f.Name == name {
				return true
			}
		} else if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}
