package contrib

import (
	"github.com/nick227/ssot-codegen/internal/pipeline"
	"github.com/nick227/ssot-codegen/internal/plugin"
)

// DockerPlugin contributes container packaging for the generated app:
// a Dockerfile, a compose file with a postgres service, and the
// DATABASE_URL contract.
type DockerPlugin struct {
	options map[string]any
}

// NewDocker creates the docker plugin.
func NewDocker(options map[string]any) *DockerPlugin {
	return &DockerPlugin{options: options}
}

// ID implements Plugin.
func (p *DockerPlugin) ID() string { return "docker" }

// Version implements Plugin.
func (p *DockerPlugin) Version() string { return "1.1.0" }

// Requirements implements Plugin.
func (p *DockerPlugin) Requirements() plugin.Requirements {
	return plugin.Requirements{
		RuntimeDeps: map[string]string{
			"github.com/jackc/pgx/v5": "v5.7.2",
		},
	}
}

// Validate implements Plugin.
func (p *DockerPlugin) Validate(gc *pipeline.Context) []plugin.Diagnostic {
	return nil
}

// Generate implements Plugin.
func (p *DockerPlugin) Generate(gc *pipeline.Context) (*plugin.Output, error) {
	out := plugin.NewOutput()
	out.Files["Dockerfile"] = dockerfileSource
	out.Files["docker-compose.yml"] = composeSource
	out.EnvVars["DATABASE_URL"] = plugin.EnvVar{
		Description: "postgres connection string",
		Required:    true,
	}
	return out, nil
}

const dockerfileSource = `FROM golang:1.23-alpine AS build
WORKDIR /src
COPY . .
RUN go build -o /out/app .

FROM alpine:3.20
COPY --from=build /out/app /usr/local/bin/app
EXPOSE 3000
ENTRYPOINT ["app"]
`

const composeSource = `services:
  app:
    build: .
    ports:
      - "3000:3000"
    environment:
      DATABASE_URL: postgres://app:app@db:5432/app?sslmode=disable
    depends_on:
      - db
  db:
    image: postgres:16-alpine
    environment:
      POSTGRES_USER: app
      POSTGRES_PASSWORD: app
      POSTGRES_DB: app
`
