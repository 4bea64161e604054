package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casync/internal/ca"
	"casync/internal/display"
	"casync/internal/format"
)

var previewFlags struct {
	format string
}

var previewCmd = &cobra.Command{
	Use:   "preview TYPE ID",
	Short: "Show the elements and diagram of one instance without writing anything",
	Args:  cobra.ExactArgs(2),
	RunE:  runPreview,
}

func init() {
	previewCmd.Flags().StringVar(&previewFlags.format, "format", "", "svg or png (default diagram_format)")
}

func runPreview(cmd *cobra.Command, args []string) error {
	t, err := parseArtifactArg(args[0])
	if err != nil {
		return err
	}
	var f ca.DiagramFormat
	if previewFlags.format != "" {
		if f, err = ca.ParseDiagramFormat(previewFlags.format); err != nil {
			return err
		}
	}

	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	r, err := ws.Preview(cmd.Context(), t, args[1], f)
	if err != nil {
		return err
	}

	tbl := newTable()
	tbl.Title(display.ArtifactLabel(t) + " " + r.InstanceID)
	tbl.Header("ID", "Model", "Label", "Owned")
	tbl.Columns(format.ColumnConfig{Number: 3, MaxWidth: 60}, format.ColumnConfig{Number: 4, Align: format.AlignCenter})
	for _, el := range r.Elements {
		tbl.Row(el.ID(), format.OrDash(el.ModelType()), format.OrDash(el.Label()), format.BoolMark(el.Owned()))
	}
	tbl.Footer("", "", format.Count(len(r.Elements), "element"), "")
	if err := tbl.Render(cmd.OutOrStdout()); err != nil {
		return err
	}

	if f == "" {
		f = ca.DiagramFormat(ws.Settings().DiagramFormat)
	}
	switch {
	case r.DiagramErr != nil:
		warn(cmd.ErrOrStderr(), fmt.Sprintf("Diagram unavailable: %v", r.DiagramErr))
	case r.Diagram != nil:
		fmt.Fprintf(cmd.OutOrStdout(), "Diagram: %s, %s\n", f, format.Bytes(int64(len(r.Diagram))))
	default:
		fmt.Fprintln(cmd.OutOrStdout(), "Diagram: none")
	}
	return nil
}
