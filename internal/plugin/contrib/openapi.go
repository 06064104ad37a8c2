package contrib

import (
	"encoding/json"
	"fmt"

	"github.com/nick227/ssot-codegen/internal/engine"
	"github.com/nick227/ssot-codegen/internal/pipeline"
	"github.com/nick227/ssot-codegen/internal/plugin"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// OpenAPIPlugin emits an OpenAPI document covering the core route
// surface plus a docs route serving it. It has no schema requirements.
type OpenAPIPlugin struct {
	options map[string]any
}

// NewOpenAPI creates the openapi plugin.
func NewOpenAPI(options map[string]any) *OpenAPIPlugin {
	return &OpenAPIPlugin{options: options}
}

// ID implements Plugin.
func (p *OpenAPIPlugin) ID() string { return "openapi" }

// Version implements Plugin.
func (p *OpenAPIPlugin) Version() string { return "1.0.1" }

// Requirements implements Plugin.
func (p *OpenAPIPlugin) Requirements() plugin.Requirements {
	return plugin.Requirements{}
}

// Validate implements Plugin.
func (p *OpenAPIPlugin) Validate(gc *pipeline.Context) []plugin.Diagnostic {
	return nil
}

// Generate implements Plugin. The document is built from the core
// route list so it always matches what the handler phase registered.
func (p *OpenAPIPlugin) Generate(gc *pipeline.Context) (*plugin.Output, error) {
	routes, err := pipeline.Value[[]plugin.Route](gc, engine.KeyCoreRoutes)
	if err != nil {
		return nil, err
	}
	s, err := pipeline.Value[*schema.Schema](gc, engine.KeySchema)
	if err != nil {
		return nil, err
	}

	doc, err := p.buildDocument(s, routes)
	if err != nil {
		return nil, fmt.Errorf("failed to build openapi document: %w", err)
	}

	out := plugin.NewOutput()
	out.Files["gen/openapi/openapi.json"] = doc
	out.Routes = []plugin.Route{
		{Method: "GET", Path: "/docs/openapi.json", Handler: "ServeOpenAPI"},
	}
	return out, nil
}

// buildDocument renders a minimal OpenAPI 3 document. Maps marshal
// with sorted keys, so the output is deterministic.
func (p *OpenAPIPlugin) buildDocument(s *schema.Schema, routes []plugin.Route) (string, error) {
	type operation struct {
		OperationID string `json:"operationId"`
	}

	paths := make(map[string]map[string]operation)
	for _, r := range routes {
		path := chiToOpenAPIPath(r.Path)
		if paths[path] == nil {
			paths[path] = make(map[string]operation)
		}
		paths[path][lowerMethod(r.Method)] = operation{OperationID: r.Handler}
	}

	doc := map[string]any{
		"openapi": "3.0.3",
		"info": map[string]any{
			"title":   "Generated API",
			"version": "1.0.0",
		},
		"paths": paths,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data) + "\n", nil
}

// chiToOpenAPIPath keeps chi's {param} syntax, which OpenAPI shares.
func chiToOpenAPIPath(path string) string {
	return path
}

func lowerMethod(method string) string {
	switch method {
	case "GET":
		return "get"
	case "POST":
		return "post"
	case "PUT":
		return "put"
	case "PATCH":
		return "patch"
	case "DELETE":
		return "delete"
	default:
		return "get"
	}
}
