// Package config loads the project configuration from ssotgen.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/nick227/ssot-codegen/internal/analyzer"
)

// Config is the ssotgen project configuration.
type Config struct {
	ProjectName string         `mapstructure:"project_name"`
	Schema      string         `mapstructure:"schema"`
	Output      OutputConfig   `mapstructure:"output"`
	Plugins     []PluginConfig `mapstructure:"plugins"`
	Analyzer    AnalyzerConfig `mapstructure:"analyzer"`
}

// OutputConfig controls where and how artifacts are written.
type OutputConfig struct {
	Dir         string `mapstructure:"dir"`
	Manifest    string `mapstructure:"manifest"`
	Concurrency int    `mapstructure:"concurrency"`
	SkipSDK     bool   `mapstructure:"skip_sdk"`
}

// PluginConfig enables one plugin with its options. Order in the file
// is registration order, which fixes merge ordering.
type PluginConfig struct {
	Name    string         `mapstructure:"name"`
	Enabled *bool          `mapstructure:"enabled"`
	Options map[string]any `mapstructure:"options"`
}

// IsEnabled defaults to true when the flag is omitted.
func (p PluginConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// AnalyzerConfig tunes the analysis policy.
type AnalyzerConfig struct {
	CaseSensitive bool           `mapstructure:"case_sensitive"`
	Junction      JunctionConfig `mapstructure:"junction"`
}

// JunctionConfig overrides junction-table detection thresholds.
type JunctionConfig struct {
	MinRelations    int             `mapstructure:"min_relations"`
	MaxScalarFields int             `mapstructure:"max_scalar_fields"`
	Overrides       map[string]bool `mapstructure:"overrides"`
}

// Load reads ssotgen.yml from the given path, or from the working
// directory when path is empty. Missing file falls back to defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("schema", "schema.yml")
	v.SetDefault("output.dir", "generated")
	v.SetDefault("output.manifest", "generated/manifest.json")
	v.SetDefault("output.concurrency", 8)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ssotgen")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if path != "" || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Output.Concurrency < 1 {
		return fmt.Errorf("output.concurrency must be at least 1")
	}
	seen := make(map[string]bool)
	for _, p := range cfg.Plugins {
		if p.Name == "" {
			return fmt.Errorf("plugin entry with empty name")
		}
		if seen[p.Name] {
			return fmt.Errorf("plugin %s listed twice", p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}

// Policy builds the analyzer policy: the stock defaults with this
// project's overrides applied on top.
func (c *Config) Policy() analyzer.Policy {
	p := analyzer.DefaultPolicy()
	p.Match.CaseSensitive = c.Analyzer.CaseSensitive
	if c.Analyzer.Junction.MinRelations > 0 {
		p.Junction.MinToOneRelations = c.Analyzer.Junction.MinRelations
	}
	if c.Analyzer.Junction.MaxScalarFields > 0 {
		p.Junction.MaxScalarFields = c.Analyzer.Junction.MaxScalarFields
	}
	if len(c.Analyzer.Junction.Overrides) > 0 {
		p.Junction.Overrides = c.Analyzer.Junction.Overrides
	}
	return p
}

// SchemaPath resolves the schema file relative to the config location.
func (c *Config) SchemaPath(baseDir string) string {
	if filepath.IsAbs(c.Schema) {
		return c.Schema
	}
	return filepath.Join(baseDir, c.Schema)
}
