package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casync/internal/ca"
	"casync/internal/display"
)

var diagramFlags struct {
	format string
	name   string
}

var diagramCmd = &cobra.Command{
	Use:   "diagram TYPE ID",
	Short: "Save the diagram of one instance into the diagrams folder",
	Long: `Save the diagram of one artifact instance. The file is named after the
instance's first element unless --name is given, and replaces any file
of the same name.`,
	Args: cobra.ExactArgs(2),
	RunE: runDiagram,
}

func init() {
	f := diagramCmd.Flags()
	f.StringVar(&diagramFlags.format, "format", "", "svg or png (default diagram_format)")
	f.StringVar(&diagramFlags.name, "name", "", "File name without extension")
}

func runDiagram(cmd *cobra.Command, args []string) error {
	t, err := parseArtifactArg(args[0])
	if err != nil {
		return err
	}
	if !ca.HasDiagram(t) {
		return fmt.Errorf("%w: %s", ca.ErrNotDiagram, display.ArtifactLabel(t))
	}
	var f ca.DiagramFormat
	if diagramFlags.format != "" {
		if f, err = ca.ParseDiagramFormat(diagramFlags.format); err != nil {
			return err
		}
	}

	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	file, err := ws.SaveDiagram(cmd.Context(), t, args[1], f, diagramFlags.name)
	if err != nil {
		return err
	}
	layout, err := ws.Layout(cmd.Context())
	if err != nil {
		return err
	}
	success(cmd, "Saved %s/%s", layout.DiagramFolder(), file)
	return nil
}
