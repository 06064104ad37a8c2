package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"BlogPost", "blog_post"},
		{"authorId", "author_id"},
		{"HTTPRequest", "http_request"},
		{"simple", "simple"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToSnakeCase(tt.in))
	}
}

func TestToPascalCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"authorId", "AuthorID"},
		{"blog_post", "BlogPost"},
		{"id", "ID"},
		{"url", "URL"},
		{"title", "Title"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToPascalCase(tt.in))
	}
}

func TestToCamelCase(t *testing.T) {
	tests := []struct{ in, want string }{
		{"BlogPost", "blogPost"},
		{"author_id", "authorID"},
		{"Title", "title"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToCamelCase(tt.in))
	}
}

func TestToKebabCase(t *testing.T) {
	assert.Equal(t, "blog-post", ToKebabCase("BlogPost"))
	assert.Equal(t, "author", ToKebabCase("Author"))
}
