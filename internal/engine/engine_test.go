package engine_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/engine"
	"github.com/nick227/ssot-codegen/internal/pipeline"
	"github.com/nick227/ssot-codegen/internal/plugin"
	"github.com/nick227/ssot-codegen/internal/plugin/contrib"
	"github.com/nick227/ssot-codegen/internal/schema"
)

const blogSchema = `
entities:
  - name: User
    fields:
      - {name: id, type: Int, id: true}
      - {name: email, type: String, unique: true}
      - {name: password, type: String}
  - name: Post
    fields:
      - {name: id, type: Int, id: true}
      - {name: title, type: String}
      - {name: slug, type: String, unique: true}
      - {name: published, type: Boolean, default: true}
      - {name: authorId, type: Int}
    relations:
      - {name: author, kind: to-one, target: User, foreignKey: authorId}
  - name: Tag
    fields:
      - {name: id, type: Int, id: true}
      - {name: name, type: String, unique: true}
  - name: PostTag
    fields:
      - {name: id, type: Int, id: true}
      - {name: postId, type: Int}
      - {name: tagId, type: Int}
    relations:
      - {name: post, kind: to-one, target: Post, foreignKey: postId}
      - {name: tag, kind: to-one, target: Tag, foreignKey: tagId}
`

func loadBlog(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.Parse([]byte(blogSchema))
	require.NoError(t, err)
	return s
}

func TestRunCoreOnly(t *testing.T) {
	result, err := engine.Run(context.Background(), engine.Options{
		Schema: loadBlog(t),
		Policy: analyzer.DefaultPolicy(),
	})
	require.NoError(t, err)
	require.NotNil(t, result.Manifest)

	assert.True(t, result.Analyses["PostTag"].IsJunctionTable)

	// Every file in the aggregate is core-owned.
	for _, f := range result.Aggregate.Files {
		assert.Equal(t, engine.CoreOwner, f.Owner)
	}

	hashes := result.Manifest.FileHashes()
	assert.Contains(t, hashes, "gen/dto/post.go")
	assert.Contains(t, hashes, "gen/validate/post.go")
	assert.Contains(t, hashes, "gen/http/post_handlers.go")
	assert.Contains(t, hashes, "gen/client/client.go")

	// Junction tables produce DTOs but no handlers.
	assert.Contains(t, hashes, "gen/dto/posttag.go")
	assert.NotContains(t, hashes, "gen/http/posttag_handlers.go")

	// The generated app gets its own go.mod.
	assert.Contains(t, hashes, "go.mod")

	// The context carries the published phase outputs.
	assert.True(t, result.Context.Has(engine.KeySchema))
	routes, err := pipeline.Value[[]plugin.Route](result.Context, engine.KeyCoreRoutes)
	require.NoError(t, err)
	assert.NotEmpty(t, routes)
}

func TestRunSkipSDK(t *testing.T) {
	result, err := engine.Run(context.Background(), engine.Options{
		Schema:  loadBlog(t),
		Policy:  analyzer.DefaultPolicy(),
		SkipSDK: true,
	})
	require.NoError(t, err)

	assert.NotContains(t, result.Manifest.FileHashes(), "gen/client/client.go")
	assert.False(t, result.Context.Has(engine.KeySDKFiles))
}

func TestRunWithPlugins(t *testing.T) {
	registry := plugin.NewRegistry(nil)
	require.NoError(t, registry.Register(contrib.NewAuth(nil), plugin.Config{Enabled: true}))
	require.NoError(t, registry.Register(contrib.NewOpenAPI(nil), plugin.Config{Enabled: true}))

	result, err := engine.Run(context.Background(), engine.Options{
		Schema:   loadBlog(t),
		Registry: registry,
		Policy:   analyzer.DefaultPolicy(),
	})
	require.NoError(t, err)

	// Auth lacks the optional Session entity: warning with fallback, not
	// an error.
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, plugin.SeverityWarning, result.Diagnostics[0].Severity)
	assert.NotEmpty(t, result.Diagnostics[0].Fallback)

	hashes := result.Manifest.FileHashes()
	assert.Contains(t, hashes, "gen/auth/middleware.go")
	assert.Contains(t, hashes, "gen/auth/handlers.go")
	assert.Contains(t, hashes, "gen/openapi/openapi.json")

	owners := make(map[string]string)
	for _, f := range result.Manifest.Files {
		owners[f.Path] = f.Owner
	}
	assert.Equal(t, "auth", owners["gen/auth/middleware.go"])
	assert.Equal(t, "openapi", owners["gen/openapi/openapi.json"])

	// Auth's runtime dependency flows into the manifest.
	var foundJWT bool
	for _, d := range result.Manifest.Dependencies {
		if d.Name == "github.com/golang-jwt/jwt/v5" {
			foundJWT = true
			assert.Equal(t, "auth", d.Owner)
		}
	}
	assert.True(t, foundJWT)
}

func TestRunFatalValidationBlocksGeneration(t *testing.T) {
	s, err := schema.Parse([]byte(`
entities:
  - name: Widget
    fields: [{name: id, type: Int, id: true}]
`))
	require.NoError(t, err)

	registry := plugin.NewRegistry(nil)
	require.NoError(t, registry.Register(contrib.NewAuth(nil), plugin.Config{Enabled: true}))

	result, err := engine.Run(context.Background(), engine.Options{
		Schema:   s,
		Registry: registry,
		Policy:   analyzer.DefaultPolicy(),
	})
	require.Error(t, err)

	var vErr *plugin.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.True(t, vErr.Diagnostics.HasFatal())

	// The partial result still carries the diagnostics but no output.
	require.NotNil(t, result)
	assert.Nil(t, result.Aggregate)
	assert.Nil(t, result.Manifest)
}

func TestRunUnresolvedSchemaAborts(t *testing.T) {
	s, err := schema.Parse([]byte(`
entities:
  - name: Post
    fields:
      - {name: id, type: Int, id: true}
      - {name: authorId, type: Int}
    relations:
      - {name: author, kind: to-one, target: Author, foreignKey: authorId}
`))
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), engine.Options{Schema: s, Policy: analyzer.DefaultPolicy()})
	require.Error(t, err)
	assert.Nil(t, result)

	var schemaErr *analyzer.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestRunDisabledPluginLeavesOthersIntact(t *testing.T) {
	run := func(withDisabledDocker bool) []byte {
		registry := plugin.NewRegistry(nil)
		require.NoError(t, registry.Register(contrib.NewAuth(nil), plugin.Config{Enabled: true}))
		require.NoError(t, registry.Register(contrib.NewOpenAPI(nil), plugin.Config{Enabled: true}))
		if withDisabledDocker {
			require.NoError(t, registry.Register(contrib.NewDocker(nil), plugin.Config{Enabled: false}))
		}

		result, err := engine.Run(context.Background(), engine.Options{
			Schema:   loadBlog(t),
			Registry: registry,
			Policy:   analyzer.DefaultPolicy(),
		})
		require.NoError(t, err)

		data, err := result.Manifest.Encode()
		require.NoError(t, err)
		return data
	}

	// A disabled plugin contributes nothing and does not disturb the
	// other contributors' bytes.
	without := run(false)
	withDisabled := run(true)
	assert.Equal(t, string(without), string(withDisabled))
	assert.NotContains(t, string(withDisabled), "Dockerfile")
	assert.NotContains(t, string(withDisabled), "DATABASE_URL")
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() []byte {
		registry := plugin.NewRegistry(nil)
		require.NoError(t, registry.Register(contrib.NewAuth(nil), plugin.Config{Enabled: true}))
		require.NoError(t, registry.Register(contrib.NewOpenAPI(nil), plugin.Config{Enabled: true}))

		result, err := engine.Run(context.Background(), engine.Options{
			Schema:   loadBlog(t),
			Registry: registry,
			Policy:   analyzer.DefaultPolicy(),
		})
		require.NoError(t, err)

		data, err := result.Manifest.Encode()
		require.NoError(t, err)
		return data
	}

	first := run()
	second := run()
	if diff := cmp.Diff(string(first), string(second)); diff != "" {
		t.Fatalf("manifest differs between identical runs:\n%s", diff)
	}
}
