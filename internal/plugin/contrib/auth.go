// Package contrib holds the built-in feature plugins shipped with
// ssotgen: auth, openapi, and docker. Each is an ordinary Plugin wired
// through the same registry as third-party ones.
package contrib

import (
	"fmt"

	"github.com/nick227/ssot-codegen/internal/engine"
	"github.com/nick227/ssot-codegen/internal/pipeline"
	"github.com/nick227/ssot-codegen/internal/plugin"
	"github.com/nick227/ssot-codegen/internal/schema"
)

// AuthPlugin contributes JWT session auth: middleware, login/logout
// routes, and the env vars and dependencies the generated app needs.
type AuthPlugin struct {
	options map[string]any
}

// NewAuth creates the auth plugin.
func NewAuth(options map[string]any) *AuthPlugin {
	return &AuthPlugin{options: options}
}

// ID implements Plugin.
func (p *AuthPlugin) ID() string { return "auth" }

// Version implements Plugin.
func (p *AuthPlugin) Version() string { return "1.2.0" }

// Requirements implements Plugin. A User entity with credentials is
// mandatory; a Session entity is optional with an in-memory fallback.
func (p *AuthPlugin) Requirements() plugin.Requirements {
	return plugin.Requirements{
		RequiredEntities: []string{"User"},
		RequiredFields: []plugin.FieldRef{
			{Entity: "User", Field: "email"},
			{Entity: "User", Field: "password"},
		},
		OptionalEntities: []string{"Session"},
		RuntimeDeps: map[string]string{
			"github.com/golang-jwt/jwt/v5": "v5.3.0",
		},
	}
}

// Fallback implements plugin.Fallbacker.
func (p *AuthPlugin) Fallback(subject string) string {
	if subject == "Session" {
		return "sessions will use an in-memory store instead of a persisted one"
	}
	return ""
}

// Validate implements Plugin.
func (p *AuthPlugin) Validate(gc *pipeline.Context) []plugin.Diagnostic {
	return nil
}

// Generate implements Plugin.
func (p *AuthPlugin) Generate(gc *pipeline.Context) (*plugin.Output, error) {
	s, err := pipeline.Value[*schema.Schema](gc, engine.KeySchema)
	if err != nil {
		return nil, err
	}
	_, persisted := s.Entity("Session")

	out := plugin.NewOutput()
	out.Files["gen/auth/middleware.go"] = authMiddlewareSource(persisted)
	out.Files["gen/auth/handlers.go"] = authHandlerSource

	out.Routes = []plugin.Route{
		{Method: "POST", Path: "/auth/register", Handler: "Register"},
		{Method: "POST", Path: "/auth/login", Handler: "Login"},
		{Method: "POST", Path: "/auth/logout", Handler: "Logout"},
	}
	out.Middleware = []plugin.Middleware{
		{Name: "requireAuth", Description: "rejects requests without a valid bearer token"},
	}
	out.EnvVars["JWT_SECRET"] = plugin.EnvVar{
		Description: "signing secret for issued tokens",
		Required:    true,
	}
	out.EnvVars["TOKEN_TTL"] = plugin.EnvVar{
		Description: "token lifetime, defaults to 24h",
	}

	return out, nil
}

func authMiddlewareSource(persistedSessions bool) string {
	store := "newMemorySessionStore()"
	if persistedSessions {
		store = "newEntitySessionStore()"
	}
	return fmt.Sprintf(`// Code generated by ssotgen. DO NOT EDIT.

package auth

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var sessions = %s

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}
		_, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
`, store)
}

const authHandlerSource = `// Code generated by ssotgen. DO NOT EDIT.

package auth

import (
	"encoding/json"
	"net/http"
)

// Register creates a new user account.
func Register(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"handler": "Register"})
}

// Login exchanges credentials for a signed token.
func Login(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"handler": "Login"})
}

// Logout revokes the caller's session.
func Logout(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"handler": "Logout"})
}
`
