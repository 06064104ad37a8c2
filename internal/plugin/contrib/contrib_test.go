package contrib

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/engine"
	"github.com/nick227/ssot-codegen/internal/pipeline"
	"github.com/nick227/ssot-codegen/internal/plugin"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// contextWithSchema runs the core pipeline so the context carries the
// published schema and route keys plugins read.
func contextWithSchema(t *testing.T, src string) *pipeline.Context {
	t.Helper()
	s, err := schema.Parse([]byte(src))
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), engine.Options{
		Schema: s,
		Policy: analyzer.DefaultPolicy(),
	})
	require.NoError(t, err)
	return result.Context
}

const userSchema = `
entities:
  - name: User
    fields:
      - {name: id, type: Int, id: true}
      - {name: email, type: String, unique: true}
      - {name: password, type: String}
`

func TestAuthGenerateWithoutSessionEntity(t *testing.T) {
	gc := contextWithSchema(t, userSchema)

	p := NewAuth(nil)
	out, err := p.Generate(gc)
	require.NoError(t, err)

	mw := out.Files["gen/auth/middleware.go"]
	require.NotEmpty(t, mw)
	assert.Contains(t, mw, "newMemorySessionStore()")
	assert.Contains(t, mw, `"github.com/golang-jwt/jwt/v5"`)

	assert.Contains(t, out.Files, "gen/auth/handlers.go")
	require.Len(t, out.Routes, 3)
	assert.True(t, out.EnvVars["JWT_SECRET"].Required)
	assert.False(t, out.EnvVars["TOKEN_TTL"].Required)
}

func TestAuthGenerateWithSessionEntity(t *testing.T) {
	gc := contextWithSchema(t, userSchema+`
  - name: Session
    fields:
      - {name: id, type: Int, id: true}
      - {name: token, type: String, unique: true}
      - {name: userId, type: Int}
    relations:
      - {name: user, kind: to-one, target: User, foreignKey: userId}
`)

	out, err := NewAuth(nil).Generate(gc)
	require.NoError(t, err)
	assert.Contains(t, out.Files["gen/auth/middleware.go"], "newEntitySessionStore()")
}

func TestAuthFallbackText(t *testing.T) {
	p := NewAuth(nil)
	assert.NotEmpty(t, p.Fallback("Session"))
	assert.Empty(t, p.Fallback("Other"))
}

func TestOpenAPIGenerate(t *testing.T) {
	gc := contextWithSchema(t, userSchema)

	out, err := NewOpenAPI(nil).Generate(gc)
	require.NoError(t, err)

	doc := out.Files["gen/openapi/openapi.json"]
	require.NotEmpty(t, doc)

	var parsed struct {
		OpenAPI string                                `json:"openapi"`
		Paths   map[string]map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(doc), &parsed))
	assert.Equal(t, "3.0.3", parsed.OpenAPI)

	users, ok := parsed.Paths["/users"]
	require.True(t, ok)
	assert.Contains(t, users, "get")
	assert.Contains(t, users, "post")
	assert.Contains(t, parsed.Paths, "/users/{id}")

	require.Len(t, out.Routes, 1)
	assert.Equal(t, "/docs/openapi.json", out.Routes[0].Path)
}

func TestOpenAPIGenerateIsDeterministic(t *testing.T) {
	gc := contextWithSchema(t, userSchema)
	p := NewOpenAPI(nil)

	first, err := p.Generate(gc)
	require.NoError(t, err)
	second, err := p.Generate(gc)
	require.NoError(t, err)
	assert.Equal(t, first.Files, second.Files)
}

func TestDockerGenerate(t *testing.T) {
	out, err := NewDocker(nil).Generate(pipeline.NewContext(nil))
	require.NoError(t, err)

	assert.Contains(t, out.Files["Dockerfile"], "FROM golang:")
	assert.Contains(t, out.Files["docker-compose.yml"], "postgres:")
	assert.True(t, out.EnvVars["DATABASE_URL"].Required)
	assert.Equal(t, "v5.7.2", NewDocker(nil).Requirements().RuntimeDeps["github.com/jackc/pgx/v5"])
}

func TestContribPluginsSatisfyInterface(t *testing.T) {
	var _ plugin.Plugin = NewAuth(nil)
	var _ plugin.Plugin = NewOpenAPI(nil)
	var _ plugin.Plugin = NewDocker(nil)
	var _ plugin.Fallbacker = NewAuth(nil)
}
