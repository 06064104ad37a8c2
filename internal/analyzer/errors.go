package analyzer

import (
	"fmt"
	"strings"
)

// UnresolvedRelation records one relation whose target entity does not
// exist in the schema.
type UnresolvedRelation struct {
	Entity     string
	Relation   string
	ForeignKey string
	Target     string
}

func (u UnresolvedRelation) String() string {
	if u.ForeignKey != "" {
		return fmt.Sprintf("entity %s: relation %s (foreign key %s) references unknown entity %s",
			u.Entity, u.Relation, u.ForeignKey, u.Target)
	}
	return fmt.Sprintf("entity %s: relation %s references unknown entity %s",
		u.Entity, u.Relation, u.Target)
}

// SchemaError aborts analysis before any phase or plugin runs. All
// unresolved relations across the whole schema are collected into one
// error so the caller sees the complete picture in a single pass.
type SchemaError struct {
	Unresolved []UnresolvedRelation
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "schema has %d unresolved relation(s):", len(e.Unresolved))
	for _, u := range e.Unresolved {
		b.WriteString("\n  ")
		b.WriteString(u.String())
	}
	return b.String()
}
