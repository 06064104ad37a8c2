// Package generator renders Go source artifacts for the generated
// application: DTO structs, input validators, HTTP handlers, and a
// client SDK stub. Generators are pure string builders over the entity
// model and its analysis; they never touch the filesystem.
package generator

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/nick227/ssot-codegen/internal/schema"
	utilstrings "github.com/nick227/ssot-codegen/internal/util/strings"
)

// Generator holds shared buffer state for one output file.
type Generator struct {
	buf     *bytes.Buffer
	indent  int
	imports map[string]bool
}

// New creates a code generator.
func New() *Generator {
	return &Generator{
		buf:     &bytes.Buffer{},
		imports: make(map[string]bool),
	}
}

// reset clears the generator state between files.
func (g *Generator) reset() {
	g.buf.Reset()
	g.indent = 0
	g.imports = make(map[string]bool)
}

// writeLine writes a formatted line with proper indentation.
func (g *Generator) writeLine(format string, args ...interface{}) {
	if format == "" {
		g.buf.WriteString("\n")
		return
	}
	for i := 0; i < g.indent; i++ {
		g.buf.WriteString("\t")
	}
	if len(args) > 0 {
		g.buf.WriteString(fmt.Sprintf(format, args...))
	} else {
		g.buf.WriteString(format)
	}
	g.buf.WriteString("\n")
}

// writeImports writes the import block, stdlib first.
func (g *Generator) writeImports() {
	if len(g.imports) == 0 {
		return
	}
	var stdlib, external []string
	for imp := range g.imports {
		if strings.Contains(imp, ".") {
			external = append(external, imp)
		} else {
			stdlib = append(stdlib, imp)
		}
	}
	sort.Strings(stdlib)
	sort.Strings(external)

	g.writeLine("import (")
	g.indent++
	for _, imp := range stdlib {
		g.writeLine("%q", imp)
	}
	if len(stdlib) > 0 && len(external) > 0 {
		g.writeLine("")
	}
	for _, imp := range external {
		g.writeLine("%q", imp)
	}
	g.indent--
	g.writeLine(")")
	g.writeLine("")
}

// goType maps a schema field to the Go type used in generated DTOs.
// Nullable fields become pointers so absent values round-trip through
// JSON cleanly.
func (g *Generator) goType(f *schema.Field) string {
	var t string
	switch f.Type {
	case schema.TypeString:
		t = "string"
	case schema.TypeInt:
		t = "int64"
	case schema.TypeFloat:
		t = "float64"
	case schema.TypeBoolean:
		t = "bool"
	case schema.TypeDateTime:
		g.imports["time"] = true
		t = "time.Time"
	case schema.TypeJSON:
		g.imports["encoding/json"] = true
		t = "json.RawMessage"
	default:
		t = "string"
	}
	if f.Nullable {
		return "*" + t
	}
	return t
}

// fieldName maps a schema field name to an exported Go identifier.
func fieldName(name string) string {
	return utilstrings.ToPascalCase(name)
}

// jsonTag builds the struct tag for a DTO field.
func jsonTag(f *schema.Field) string {
	tag := f.Name
	if f.Nullable {
		tag += ",omitempty"
	}
	return fmt.Sprintf("`json:%q`", tag)
}

// routeBase returns the URL segment for an entity, pluralized and
// kebab-cased (BlogPost -> /blog-posts).
func routeBase(entity string) string {
	return "/" + inflect.Pluralize(utilstrings.ToKebabCase(entity))
}

// header writes the shared file preamble for generated sources.
func (g *Generator) header(pkg string) {
	g.writeLine("// Code generated by ssotgen. DO NOT EDIT.")
	g.writeLine("")
	g.writeLine("package %s", pkg)
	g.writeLine("")
}
