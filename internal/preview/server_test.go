package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nick227/ssot-codegen/internal/analyzer"
	"github.com/nick227/ssot-codegen/internal/engine"
	"github.com/nick227/ssot-codegen/internal/schema"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	s, err := schema.Parse([]byte(`
entities:
  - name: Post
    fields:
      - {name: id, type: Int, id: true}
      - {name: title, type: String}
      - {name: slug, type: String, unique: true}
`))
	require.NoError(t, err)

	result, err := engine.Run(context.Background(), engine.Options{
		Schema: s,
		Policy: analyzer.DefaultPolicy(),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewServer(result, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestServerManifest(t *testing.T) {
	srv := testServer(t)

	var m struct {
		Version int `json:"version"`
		Files   []struct {
			Path string `json:"path"`
		} `json:"files"`
	}
	resp := getJSON(t, srv.URL+"/manifest", &m)

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, 1, m.Version)
	assert.NotEmpty(t, m.Files)
}

func TestServerRoutes(t *testing.T) {
	srv := testServer(t)

	var routes []struct {
		Method string `json:"method"`
		Path   string `json:"path"`
	}
	getJSON(t, srv.URL+"/routes", &routes)
	require.NotEmpty(t, routes)

	found := false
	for _, r := range routes {
		if r.Method == "GET" && r.Path == "/posts/slug/{slug}" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestServerEntityAnalysis(t *testing.T) {
	srv := testServer(t)

	var view struct {
		Entity          string            `json:"entity"`
		IsJunctionTable bool              `json:"is_junction_table"`
		SpecialFields   map[string]string `json:"special_fields"`
	}
	getJSON(t, srv.URL+"/analysis/Post", &view)

	assert.Equal(t, "Post", view.Entity)
	assert.False(t, view.IsJunctionTable)
	assert.Equal(t, "slug", view.SpecialFields["slug"])

	resp := getJSON(t, srv.URL+"/analysis/Nope", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServerDiagnosticsEmpty(t *testing.T) {
	srv := testServer(t)

	var diags []any
	getJSON(t, srv.URL+"/diagnostics", &diags)
	assert.Empty(t, diags)
}
