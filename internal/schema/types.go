// Package schema defines the in-memory entity model consumed by the
// analyzer and the generation pipeline. The model is produced by the
// loader from a single schema file (the project's source of truth) and
// is treated as read-only by everything downstream.
package schema

import "fmt"

// FieldType represents the scalar type of a field.
type FieldType int

const (
	TypeString FieldType = iota
	TypeInt
	TypeFloat
	TypeBoolean
	TypeDateTime
	TypeJSON
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeInt:
		return "Int"
	case TypeFloat:
		return "Float"
	case TypeBoolean:
		return "Boolean"
	case TypeDateTime:
		return "DateTime"
	case TypeJSON:
		return "Json"
	default:
		return "unknown"
	}
}

// ParseFieldType converts a string to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "String":
		return TypeString, nil
	case "Int":
		return TypeInt, nil
	case "Float":
		return TypeFloat, nil
	case "Boolean":
		return TypeBoolean, nil
	case "DateTime":
		return TypeDateTime, nil
	case "Json":
		return TypeJSON, nil
	default:
		return 0, fmt.Errorf("unknown field type: %s", s)
	}
}

// RelationKind represents the direction of a relation.
type RelationKind int

const (
	// ToOne means this entity holds the foreign key to the target.
	ToOne RelationKind = iota
	// ToMany is the inverse side: the target holds the foreign key.
	ToMany
)

// String returns the string representation of the relation kind.
func (k RelationKind) String() string {
	switch k {
	case ToOne:
		return "to-one"
	case ToMany:
		return "to-many"
	default:
		return "unknown"
	}
}

// ParseRelationKind converts a string to a RelationKind.
func ParseRelationKind(s string) (RelationKind, error) {
	switch s {
	case "to-one":
		return ToOne, nil
	case "to-many":
		return ToMany, nil
	default:
		return 0, fmt.Errorf("unknown relation kind: %s", s)
	}
}

// Field is a scalar field owned by exactly one entity.
type Field struct {
	Name       string
	Type       FieldType
	Nullable   bool
	Unique     bool
	HasDefault bool
	IsID       bool
}

// Relation is a typed reference from one entity to another.
type Relation struct {
	Name   string
	Kind   RelationKind
	Target string

	// ForeignKey names the scalar field on the owning entity that holds
	// the key. Only set for to-one relations.
	ForeignKey string
}

// Entity is a named record type with ordered fields and relations.
type Entity struct {
	Name      string
	Fields    []*Field
	Relations []*Relation
}

// Field returns the field with the given name, if present.
func (e *Entity) Field(name string) (*Field, bool) {
	for _, f := range e.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// Relation returns the relation with the given name, if present.
func (e *Entity) Relation(name string) (*Relation, bool) {
	for _, r := range e.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}

// ForeignKeyFields returns the set of field names used as foreign keys
// by this entity's to-one relations.
func (e *Entity) ForeignKeyFields() map[string]bool {
	fks := make(map[string]bool)
	for _, r := range e.Relations {
		if r.Kind == ToOne && r.ForeignKey != "" {
			fks[r.ForeignKey] = true
		}
	}
	return fks
}

// Schema is the complete entity model for one generation run.
type Schema struct {
	Entities []*Entity

	byName map[string]*Entity
}

// NewSchema builds a Schema from an ordered entity list. Entity names
// are assumed unique; the loader enforces that before construction.
func NewSchema(entities []*Entity) *Schema {
	s := &Schema{
		Entities: entities,
		byName:   make(map[string]*Entity, len(entities)),
	}
	for _, e := range entities {
		s.byName[e.Name] = e
	}
	return s
}

// Entity returns the entity with the given name, if present.
func (s *Schema) Entity(name string) (*Entity, bool) {
	e, ok := s.byName[name]
	return e, ok
}

// EntityNames returns entity names in declaration order.
func (s *Schema) EntityNames() []string {
	names := make([]string, len(s.Entities))
	for i, e := range s.Entities {
		names[i] = e.Name
	}
	return names
}
