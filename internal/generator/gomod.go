package generator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nick227/ssot-codegen/internal/plugin"
)

// GenerateGoMod renders the go.mod for the generated application from
// the merged dependency constraints. The core HTTP surface always needs
// chi; plugin contributions come in through the aggregate.
func GenerateGoMod(modulePath string, deps []plugin.DepEntry) string {
	constraints := map[string]string{
		"github.com/go-chi/chi/v5": "v5.2.3",
	}
	for _, d := range deps {
		constraints[d.Name] = d.Constraint
	}

	names := make([]string, 0, len(constraints))
	for name := range constraints {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "module %s\n\ngo 1.23\n\nrequire (\n", modulePath)
	for _, name := range names {
		fmt.Fprintf(&b, "\t%s %s\n", name, constraints[name])
	}
	b.WriteString(")\n")
	return b.String()
}
