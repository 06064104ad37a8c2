package commands

import (
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nick227/ssot-codegen/internal/cli/ui"
	"github.com/nick227/ssot-codegen/internal/preview"
)

var (
	inspectServe bool
	inspectAddr  string
)

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the per-entity analysis and planned output",
		Long: `Run the pipeline without writing anything and print what the analyzer
detected per entity. With --serve the result is exposed as JSON over
HTTP for browsing.`,
		RunE: runInspect,
	}
	cmd.Flags().BoolVar(&inspectServe, "serve", false, "Serve the run result over HTTP")
	cmd.Flags().StringVar(&inspectAddr, "addr", "localhost:7070", "Preview server listen address")
	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, s, err := loadProject()
	if err != nil {
		return err
	}

	result, err := runEngine(cmd.Context(), cfg, s, logger)
	if result != nil {
		printDiagnostics(result.Diagnostics)
	}
	if err != nil {
		return err
	}

	names := make([]string, 0, len(result.Analyses))
	for name := range result.Analyses {
		names = append(names, name)
	}
	sort.Strings(names)

	tbl := ui.NewTable(os.Stdout, "ENTITY", "JUNCTION", "INCLUDES", "SPECIAL FIELDS")
	for _, name := range names {
		an := result.Analyses[name]
		junction := ""
		if an.IsJunctionTable {
			junction = "yes"
		}
		var includes []string
		for _, rel := range an.AutoInclude {
			includes = append(includes, rel.Name+" -> "+rel.Target)
		}
		var specials []string
		for _, sf := range an.SpecialFields {
			specials = append(specials, fmt.Sprintf("%s(%s)", sf.Tag, sf.Field))
		}
		tbl.AddRow(name, junction, strings.Join(includes, ", "), strings.Join(specials, ", "))
	}
	tbl.Render()

	fmt.Println()
	summary := ui.NewKeyValueTable(os.Stdout)
	summary.AddRow("files planned", fmt.Sprintf("%d", len(result.Manifest.Files)))
	summary.AddRow("routes planned", fmt.Sprintf("%d", len(result.Manifest.Routes)))
	summary.Render()

	if !inspectServe {
		return nil
	}

	srv := preview.NewServer(result, logger)
	fmt.Printf("preview server listening on http://%s\n", inspectAddr)
	return http.ListenAndServe(inspectAddr, srv.Router())
}
