package plugin

import (
	"fmt"
	"sort"
)

// FileEntry is one generated file with its contributor.
type FileEntry struct {
	Path    string
	Content string
	Owner   string
}

// RouteEntry is one contributed route with its contributor.
type RouteEntry struct {
	Method  string
	Path    string
	Handler string
	Owner   string
}

// MiddlewareEntry is one contributed middleware with its contributor.
type MiddlewareEntry struct {
	Name        string
	Description string
	Owner       string
}

// EnvEntry is one contributed environment variable.
type EnvEntry struct {
	Name        string
	Description string
	Required    bool
	Owner       string
}

// DepEntry is one contributed runtime dependency constraint.
type DepEntry struct {
	Name       string
	Constraint string
	Owner      string
}

// Aggregate is the union of all contributors' outputs for one run. It
// is created once per run and discarded after the manifest is emitted.
type Aggregate struct {
	Files        []FileEntry
	Routes       []RouteEntry
	Middleware   []MiddlewareEntry
	EnvVars      []EnvEntry
	Dependencies []DepEntry
}

// ConflictError reports two contributors claiming the same artifact
// with differing content. It names both so the user can resolve the
// collision without inspecting internals.
type ConflictError struct {
	Kind   string // "file", "route", "env", "dependency"
	Key    string
	First  string
	Second string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s conflict on %q between %s and %s", e.Kind, e.Key, e.First, e.Second)
}

// Merge combines plugin outputs into one aggregate, in contributor
// order. File paths must be globally unique unless the contents are
// identical; routes conflict on duplicate method+path; env vars and
// dependency constraints conflict on differing values and deduplicate
// silently on identical ones. Merging fails fast on the first
// conflict, since by this point inputs are assumed valid.
func Merge(outputs []*OwnedOutput) (*Aggregate, error) {
	agg := &Aggregate{}

	fileOwner := make(map[string]FileEntry)
	routeOwner := make(map[string]RouteEntry)
	envOwner := make(map[string]EnvEntry)
	depOwner := make(map[string]DepEntry)

	for _, out := range outputs {
		for _, path := range sortedKeys(out.Output.Files) {
			content := out.Output.Files[path]
			if prev, exists := fileOwner[path]; exists {
				if prev.Content != content {
					return nil, &ConflictError{Kind: "file", Key: path, First: prev.Owner, Second: out.Plugin}
				}
				continue // identical content deduplicates silently
			}
			entry := FileEntry{Path: path, Content: content, Owner: out.Plugin}
			agg.Files = append(agg.Files, entry)
			fileOwner[path] = entry
		}

		for _, route := range out.Output.Routes {
			key := route.Method + " " + route.Path
			if prev, exists := routeOwner[key]; exists {
				return nil, &ConflictError{Kind: "route", Key: key, First: prev.Owner, Second: out.Plugin}
			}
			entry := RouteEntry{
				Method:  route.Method,
				Path:    route.Path,
				Handler: route.Handler,
				Owner:   out.Plugin,
			}
			agg.Routes = append(agg.Routes, entry)
			routeOwner[key] = entry
		}

		for _, mw := range out.Output.Middleware {
			agg.Middleware = append(agg.Middleware, MiddlewareEntry{
				Name:        mw.Name,
				Description: mw.Description,
				Owner:       out.Plugin,
			})
		}

		for _, name := range sortedKeys(out.Output.EnvVars) {
			ev := out.Output.EnvVars[name]
			if prev, exists := envOwner[name]; exists {
				if prev.Description != ev.Description || prev.Required != ev.Required {
					return nil, &ConflictError{Kind: "env", Key: name, First: prev.Owner, Second: out.Plugin}
				}
				continue
			}
			entry := EnvEntry{
				Name:        name,
				Description: ev.Description,
				Required:    ev.Required,
				Owner:       out.Plugin,
			}
			agg.EnvVars = append(agg.EnvVars, entry)
			envOwner[name] = entry
		}

		for _, name := range sortedKeys(out.Output.Dependencies) {
			constraint := out.Output.Dependencies[name]
			if prev, exists := depOwner[name]; exists {
				if prev.Constraint != constraint {
					return nil, &ConflictError{Kind: "dependency", Key: name, First: prev.Owner, Second: out.Plugin}
				}
				continue
			}
			entry := DepEntry{
				Name:       name,
				Constraint: constraint,
				Owner:      out.Plugin,
			}
			agg.Dependencies = append(agg.Dependencies, entry)
			depOwner[name] = entry
		}
	}

	return agg, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
