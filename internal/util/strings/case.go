// Package strings provides the case conversions used by the source
// generators when mapping entity and field names to identifiers,
// columns, and route segments.
package strings

import (
	"strings"
	"unicode"
)

// commonInitialisms are uppercased as a unit in PascalCase output so
// generated Go identifiers read idiomatically (authorId -> AuthorID).
var commonInitialisms = map[string]string{
	"id":   "ID",
	"url":  "URL",
	"uri":  "URI",
	"uuid": "UUID",
	"api":  "API",
	"http": "HTTP",
	"json": "JSON",
	"html": "HTML",
	"sql":  "SQL",
}

// ToSnakeCase converts CamelCase to snake_case.
// Handles acronyms properly (HTTPRequest -> http_request).
func ToSnakeCase(s string) string {
	var result strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				// Add underscore before uppercase letter if:
				// 1. Previous char is lowercase
				// 2. Next char is lowercase (for acronyms like HTTPRequest -> http_request)
				if unicode.IsLower(prev) {
					result.WriteRune('_')
				} else if i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
					result.WriteRune('_')
				}
			}
			result.WriteRune(unicode.ToLower(r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// ToPascalCase converts snake_case or camelCase to PascalCase, mapping
// known initialisms to their uppercase form.
func ToPascalCase(s string) string {
	parts := strings.Split(ToSnakeCase(s), "_")
	var b strings.Builder
	for _, part := range parts {
		if part == "" {
			continue
		}
		if upper, ok := commonInitialisms[strings.ToLower(part)]; ok {
			b.WriteString(upper)
			continue
		}
		b.WriteString(strings.ToUpper(part[:1]))
		b.WriteString(part[1:])
	}
	return b.String()
}

// ToCamelCase converts a name to lowerCamelCase.
func ToCamelCase(s string) string {
	pascal := ToPascalCase(s)
	if pascal == "" {
		return ""
	}
	// Lowercase the leading run of uppercase letters as a unit so
	// initialisms stay intact (IDCard -> idCard).
	runes := []rune(pascal)
	i := 0
	for i < len(runes) && unicode.IsUpper(runes[i]) {
		i++
	}
	if i == 0 {
		return pascal
	}
	if i > 1 && i < len(runes) {
		i--
	}
	return strings.ToLower(string(runes[:i])) + string(runes[i:])
}

// ToKebabCase converts a name to kebab-case for route segments.
func ToKebabCase(s string) string {
	return strings.ReplaceAll(ToSnakeCase(s), "_", "-")
}
