// Package manifest serializes the final aggregate of a generation run:
// every output file with a content hash, every contributed route,
// environment variable, and runtime dependency. The manifest is the
// system's only persisted artifact; identical inputs must produce a
// byte-identical manifest so downstream tooling can diff and skip
// unchanged regenerations.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/nick227/ssot-codegen/internal/plugin"
)

// FormatVersion identifies the manifest layout for downstream readers.
const FormatVersion = 1

// File records one generated file.
type File struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int    `json:"size"`
	Owner  string `json:"owner"`
}

// Route records one contributed route.
type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Handler string `json:"handler"`
	Owner   string `json:"owner"`
}

// Middleware records one contributed middleware.
type Middleware struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Owner       string `json:"owner"`
}

// EnvVar records one environment variable the generated app reads.
type EnvVar struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
	Owner       string `json:"owner"`
}

// Dependency records one runtime dependency constraint.
type Dependency struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint"`
	Owner      string `json:"owner"`
}

// Manifest is the serialized record of everything a run produced.
type Manifest struct {
	Version      int          `json:"version"`
	Files        []File       `json:"files"`
	Routes       []Route      `json:"routes"`
	Middleware   []Middleware `json:"middleware,omitempty"`
	EnvVars      []EnvVar     `json:"env_vars,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// Build derives a manifest from the merged aggregate. Every slice is
// sorted deterministically so the output is stable across runs.
func Build(agg *plugin.Aggregate) *Manifest {
	m := &Manifest{Version: FormatVersion}

	for _, f := range agg.Files {
		sum := sha256.Sum256([]byte(f.Content))
		m.Files = append(m.Files, File{
			Path:   f.Path,
			SHA256: hex.EncodeToString(sum[:]),
			Size:   len(f.Content),
			Owner:  f.Owner,
		})
	}
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })

	for _, r := range agg.Routes {
		m.Routes = append(m.Routes, Route{Method: r.Method, Path: r.Path, Handler: r.Handler, Owner: r.Owner})
	}
	sort.Slice(m.Routes, func(i, j int) bool {
		if m.Routes[i].Path != m.Routes[j].Path {
			return m.Routes[i].Path < m.Routes[j].Path
		}
		return m.Routes[i].Method < m.Routes[j].Method
	})

	for _, mw := range agg.Middleware {
		m.Middleware = append(m.Middleware, Middleware{Name: mw.Name, Description: mw.Description, Owner: mw.Owner})
	}

	for _, ev := range agg.EnvVars {
		m.EnvVars = append(m.EnvVars, EnvVar{Name: ev.Name, Description: ev.Description, Required: ev.Required, Owner: ev.Owner})
	}
	sort.Slice(m.EnvVars, func(i, j int) bool { return m.EnvVars[i].Name < m.EnvVars[j].Name })

	for _, d := range agg.Dependencies {
		m.Dependencies = append(m.Dependencies, Dependency{Name: d.Name, Constraint: d.Constraint, Owner: d.Owner})
	}
	sort.Slice(m.Dependencies, func(i, j int) bool { return m.Dependencies[i].Name < m.Dependencies[j].Name })

	return m
}

// Encode renders the manifest as indented JSON with a trailing
// newline. encoding/json emits struct fields in declaration order and
// the slices are pre-sorted, so the bytes are stable.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileHashes returns path → sha256, for idempotence checks.
func (m *Manifest) FileHashes() map[string]string {
	hashes := make(map[string]string, len(m.Files))
	for _, f := range m.Files {
		hashes[f.Path] = f.SHA256
	}
	return hashes
}
