package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	newInteractive bool
	newPlugins     []string
)

var projectNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NewNewCommand creates the new command.
func NewNewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "new [project-name]",
		Short: "Create a new ssotgen project",
		Long: `Create a project directory with a starter ssotgen.yml and a sample
schema. With --interactive the plugin selection is prompted.`,
		RunE: runNew,
	}
	cmd.Flags().BoolVarP(&newInteractive, "interactive", "i", false, "Prompt for project options")
	cmd.Flags().StringSliceVar(&newPlugins, "plugins", nil, "Plugins to enable (auth, openapi, docker)")
	return cmd
}

func runNew(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) > 0 {
		name = args[0]
	}

	if name == "" {
		prompt := &survey.Input{Message: "Project name:"}
		if err := survey.AskOne(prompt, &name, survey.WithValidator(survey.Required)); err != nil {
			return err
		}
	}
	if err := validateProjectName(name); err != nil {
		return err
	}

	plugins := newPlugins
	if newInteractive {
		prompt := &survey.MultiSelect{
			Message: "Enable plugins:",
			Options: []string{"auth", "openapi", "docker"},
		}
		if err := survey.AskOne(prompt, &plugins); err != nil {
			return err
		}
	}
	for _, p := range plugins {
		if _, ok := pluginConstructors[p]; !ok {
			return fmt.Errorf("unknown plugin: %s", p)
		}
	}

	if _, err := os.Stat(name); err == nil {
		return fmt.Errorf("directory %s already exists", name)
	}
	if err := os.MkdirAll(name, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	if err := os.WriteFile(filepath.Join(name, "ssotgen.yml"), []byte(projectConfig(name, plugins)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(name, "schema.yml"), []byte(sampleSchema), 0o644); err != nil {
		return err
	}

	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ ")
	fmt.Printf("created project %s\n", name)
	fmt.Println("next steps:")
	fmt.Printf("  cd %s\n", name)
	fmt.Println("  ssotgen generate")
	return nil
}

// validateProjectName rejects names that could escape the working
// directory or break downstream tooling.
func validateProjectName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 100 {
		return fmt.Errorf("project name must be 1-100 characters")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("project name cannot be an absolute path")
	}
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("project name can only contain letters, numbers, dashes, and underscores")
	}
	return nil
}

func projectConfig(name string, plugins []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "project_name: %s\n", name)
	b.WriteString("schema: schema.yml\n")
	b.WriteString("output:\n")
	b.WriteString("  dir: generated\n")
	b.WriteString("  manifest: generated/manifest.json\n")
	if len(plugins) > 0 {
		b.WriteString("plugins:\n")
		for _, p := range plugins {
			fmt.Fprintf(&b, "  - name: %s\n", p)
		}
	}
	return b.String()
}

const sampleSchema = `entities:
  - name: User
    fields:
      - {name: id, type: Int, id: true}
      - {name: email, type: String, unique: true}
      - {name: password, type: String}
      - {name: name, type: String, nullable: true}
  - name: Post
    fields:
      - {name: id, type: Int, id: true}
      - {name: title, type: String}
      - {name: slug, type: String, unique: true}
      - {name: published, type: Boolean, default: true}
      - {name: views, type: Int, default: true}
      - {name: authorId, type: Int}
    relations:
      - {name: author, kind: to-one, target: User, foreignKey: authorId}
      - {name: comments, kind: to-many, target: Comment}
  - name: Comment
    fields:
      - {name: id, type: Int, id: true}
      - {name: body, type: String}
      - {name: approved, type: Boolean, default: true}
      - {name: postId, type: Int}
      - {name: parentId, type: Int, nullable: true}
    relations:
      - {name: post, kind: to-one, target: Post, foreignKey: postId}
      - {name: parent, kind: to-one, target: Comment, foreignKey: parentId}
`
