package generator

import (
	"fmt"
	"strings"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/plugin"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// HandlerOutput is the handler generator's result: one source file per
// exposed entity plus the route descriptors those files register.
type HandlerOutput struct {
	Files  map[string]string
	Routes []plugin.Route
}

// GenerateHandlers renders chi HTTP handlers for every non-junction
// entity. Junction tables get no handlers of their own; their rows are
// managed through the entities they associate. Detected special fields
// add routes beyond plain CRUD: slug lookup, publish/unpublish, view
// counting, approval, soft delete with restore, and child listing for
// tree-shaped entities.
func GenerateHandlers(s *schema.Schema, analyses map[string]*analyzer.EntityAnalysis) (*HandlerOutput, error) {
	out := &HandlerOutput{Files: make(map[string]string)}
	g := New()

	for _, e := range s.Entities {
		an := analyses[e.Name]
		if an != nil && an.IsJunctionTable {
			continue
		}
		code, routes, err := g.generateEntityHandlers(e, an)
		if err != nil {
			return nil, fmt.Errorf("failed to generate handlers for %s: %w", e.Name, err)
		}
		out.Files[fmt.Sprintf("gen/http/%s_handlers.go", strings.ToLower(e.Name))] = code
		out.Routes = append(out.Routes, routes...)
	}

	return out, nil
}

// entityRoutes derives the route set for one entity from its analysis.
func entityRoutes(e *schema.Entity, an *analyzer.EntityAnalysis) []plugin.Route {
	name := fieldName(e.Name)
	base := routeBase(e.Name)

	routes := []plugin.Route{
		{Method: "GET", Path: base, Handler: "List" + name},
		{Method: "POST", Path: base, Handler: "Create" + name},
		{Method: "GET", Path: base + "/{id}", Handler: "Get" + name},
		{Method: "PATCH", Path: base + "/{id}", Handler: "Update" + name},
		{Method: "DELETE", Path: base + "/{id}", Handler: "Delete" + name},
	}

	if an == nil {
		return routes
	}
	if _, ok := an.TagField(analyzer.TagSlug); ok {
		routes = append(routes, plugin.Route{Method: "GET", Path: base + "/slug/{slug}", Handler: "Get" + name + "BySlug"})
	}
	if _, ok := an.TagField(analyzer.TagPublishedFlag); ok {
		routes = append(routes,
			plugin.Route{Method: "GET", Path: base + "/published", Handler: "ListPublished" + name},
			plugin.Route{Method: "POST", Path: base + "/{id}/publish", Handler: "Publish" + name},
			plugin.Route{Method: "POST", Path: base + "/{id}/unpublish", Handler: "Unpublish" + name})
	}
	if _, ok := an.TagField(analyzer.TagViewCounter); ok {
		routes = append(routes, plugin.Route{Method: "POST", Path: base + "/{id}/views", Handler: "Increment" + name + "Views"})
	}
	if _, ok := an.TagField(analyzer.TagApprovalFlag); ok {
		routes = append(routes, plugin.Route{Method: "POST", Path: base + "/{id}/approve", Handler: "Approve" + name})
	}
	if _, ok := an.TagField(analyzer.TagSoftDeleteMarker); ok {
		routes = append(routes, plugin.Route{Method: "POST", Path: base + "/{id}/restore", Handler: "Restore" + name})
	}
	if _, ok := an.TagField(analyzer.TagParentReference); ok {
		routes = append(routes, plugin.Route{Method: "GET", Path: base + "/{id}/children", Handler: "List" + name + "Children"})
	}

	return routes
}

func (g *Generator) generateEntityHandlers(e *schema.Entity, an *analyzer.EntityAnalysis) (string, []plugin.Route, error) {
	g.reset()

	name := fieldName(e.Name)
	routes := entityRoutes(e, an)

	g.header("http")
	g.imports["net/http"] = true
	g.imports["encoding/json"] = true
	g.imports["github.com/go-chi/chi/v5"] = true
	g.writeImports()

	// One stub per route handler. The store wiring is filled in by the
	// application; the generated surface is the contract.
	for _, r := range routes {
		g.writeLine("// %s handles %s %s.", r.Handler, r.Method, r.Path)
		g.writeLine("func %s(w http.ResponseWriter, r *http.Request) {", r.Handler)
		g.indent++
		g.writeLine("w.Header().Set(\"Content-Type\", \"application/json\")")
		g.writeLine("json.NewEncoder(w).Encode(map[string]string{\"handler\": %q})", r.Handler)
		g.indent--
		g.writeLine("}")
		g.writeLine("")
	}

	g.writeLine("// Register%sRoutes mounts all %s routes on the router.", name, e.Name)
	g.writeLine("func Register%sRoutes(r chi.Router) {", name)
	g.indent++
	for _, route := range routes {
		g.writeLine("r.%s(%q, %s)", methodFunc(route.Method), route.Path, route.Handler)
	}
	g.indent--
	g.writeLine("}")

	return g.buf.String(), routes, nil
}

// methodFunc maps an HTTP method to the chi registration method.
func methodFunc(method string) string {
	switch method {
	case "GET":
		return "Get"
	case "POST":
		return "Post"
	case "PUT":
		return "Put"
	case "PATCH":
		return "Patch"
	case "DELETE":
		return "Delete"
	default:
		return "Handle"
	}
}
