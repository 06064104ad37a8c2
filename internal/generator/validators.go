package generator

import (
	"fmt"
	"strings"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// GenerateValidators renders one input-validator source file per
// entity. Validators check required scalar fields on create inputs and
// add shape checks for detected special fields (slug format).
func GenerateValidators(s *schema.Schema, analyses map[string]*analyzer.EntityAnalysis) (map[string]string, error) {
	files := make(map[string]string, len(s.Entities))
	g := New()

	for _, e := range s.Entities {
		code, err := g.generateEntityValidator(e, analyses[e.Name])
		if err != nil {
			return nil, fmt.Errorf("failed to generate validator for %s: %w", e.Name, err)
		}
		files[fmt.Sprintf("gen/validate/%s.go", strings.ToLower(e.Name))] = code
	}

	return files, nil
}

func (g *Generator) generateEntityValidator(e *schema.Entity, an *analyzer.EntityAnalysis) (string, error) {
	g.reset()

	name := fieldName(e.Name)

	// The slug format check references the create input, so it is only
	// emitted when the slug field actually survives into it as a plain
	// string: defaulted fields are dropped from the input and nullable
	// ones become pointers.
	slugField := ""
	if an != nil {
		if fname, ok := an.TagField(analyzer.TagSlug); ok {
			if f, ok := e.Field(fname); ok && !f.IsID && !f.HasDefault && !f.Nullable {
				slugField = fname
			}
		}
	}

	g.header("validate")
	g.imports["fmt"] = true
	if slugField != "" {
		g.imports["regexp"] = true
	}
	g.imports["github.com/nick227/ssot-codegen/gen/dto"] = true
	g.writeImports()

	if slugField != "" {
		g.writeLine("var %sSlugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)", strings.ToLower(name))
		g.writeLine("")
	}

	g.writeLine("// Validate%sInput checks a create input before persistence.", name)
	g.writeLine("func Validate%sInput(in *dto.Create%sInput) error {", name, name)
	g.indent++
	for _, f := range e.Fields {
		if f.IsID || f.HasDefault || f.Nullable {
			continue
		}
		if f.Type == schema.TypeString {
			g.writeLine("if in.%s == \"\" {", fieldName(f.Name))
			g.indent++
			g.writeLine("return fmt.Errorf(\"%s is required\")", f.Name)
			g.indent--
			g.writeLine("}")
		}
	}
	if slugField != "" {
		g.writeLine("if !%sSlugPattern.MatchString(in.%s) {", strings.ToLower(name), fieldName(slugField))
		g.indent++
		g.writeLine("return fmt.Errorf(\"%s must be a lowercase hyphenated slug\")", slugField)
		g.indent--
		g.writeLine("}")
	}
	g.writeLine("return nil")
	g.indent--
	g.writeLine("}")

	return g.buf.String(), nil
}
