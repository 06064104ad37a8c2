package generator

import (
	"fmt"
	"strings"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// GenerateDTOs renders one DTO source file per entity, keyed by output
// path. Each file carries the read DTO, the create/update inputs, and,
// when the analyzer marked relations auto-include, an expanded read
// shape embedding the related DTOs.
func GenerateDTOs(s *schema.Schema, analyses map[string]*analyzer.EntityAnalysis) (map[string]string, error) {
	files := make(map[string]string, len(s.Entities))
	g := New()

	for _, e := range s.Entities {
		code, err := g.generateEntityDTO(e, analyses[e.Name])
		if err != nil {
			return nil, fmt.Errorf("failed to generate DTOs for %s: %w", e.Name, err)
		}
		files[fmt.Sprintf("gen/dto/%s.go", strings.ToLower(e.Name))] = code
	}

	return files, nil
}

func (g *Generator) generateEntityDTO(e *schema.Entity, an *analyzer.EntityAnalysis) (string, error) {
	g.reset()

	name := fieldName(e.Name)

	g.header("dto")
	g.collectDTOImports(e)
	g.writeImports()

	// Read DTO: every scalar field.
	g.writeLine("// %sDTO is the read shape for %s records.", name, e.Name)
	g.writeLine("type %sDTO struct {", name)
	g.indent++
	for _, f := range e.Fields {
		g.writeLine("%s %s %s", fieldName(f.Name), g.goType(f), jsonTag(f))
	}
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	// Expanded read shape with auto-included relations.
	if an != nil && len(an.AutoInclude) > 0 {
		g.writeLine("// %sWithIncludes embeds the eagerly fetched relations.", name)
		g.writeLine("type %sWithIncludes struct {", name)
		g.indent++
		g.writeLine("%sDTO", name)
		for _, r := range an.AutoInclude {
			g.writeLine("%s *%sDTO `json:%q`", fieldName(r.Name), fieldName(r.Target), r.Name+",omitempty")
		}
		g.indent--
		g.writeLine("}")
		g.writeLine("")
	}

	// Create input: identifiers and defaulted fields are omitted.
	g.writeLine("// Create%sInput carries the writable fields for creation.", name)
	g.writeLine("type Create%sInput struct {", name)
	g.indent++
	for _, f := range e.Fields {
		if f.IsID || f.HasDefault {
			continue
		}
		g.writeLine("%s %s %s", fieldName(f.Name), g.goType(f), jsonTag(f))
	}
	g.indent--
	g.writeLine("}")
	g.writeLine("")

	// Update input: everything optional.
	g.writeLine("// Update%sInput carries a partial update; nil fields are untouched.", name)
	g.writeLine("type Update%sInput struct {", name)
	g.indent++
	for _, f := range e.Fields {
		if f.IsID {
			continue
		}
		t := g.goType(f)
		if !strings.HasPrefix(t, "*") {
			t = "*" + t
		}
		g.writeLine("%s %s `json:%q`", fieldName(f.Name), t, f.Name+",omitempty")
	}
	g.indent--
	g.writeLine("}")

	return g.buf.String(), nil
}

// collectDTOImports pre-scans fields so the import block is complete
// before any type is rendered.
func (g *Generator) collectDTOImports(e *schema.Entity) {
	for _, f := range e.Fields {
		switch f.Type {
		case schema.TypeDateTime:
			g.imports["time"] = true
		case schema.TypeJSON:
			g.imports["encoding/json"] = true
		}
	}
}
