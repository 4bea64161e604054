package main

import (
	"github.com/spf13/cobra"

	"casync/internal/ca"
	"casync/internal/display"
	"casync/internal/format"
)

var artifactsFlags struct {
	refresh bool
}

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "List the artifact types with content in the selected architecture",
	Args:  cobra.NoArgs,
	RunE:  runArtifacts,
}

func init() {
	artifactsCmd.Flags().BoolVar(&artifactsFlags.refresh, "refresh", false, "Fetch the catalog again instead of using the cache")
}

func runArtifacts(cmd *cobra.Command, _ []string) error {
	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	nodes, err := ws.Artifacts(cmd.Context(), artifactsFlags.refresh)
	if err != nil {
		return err
	}

	tbl := newTable()
	tbl.Header("Artifact", "Type", "Type ID", "Diagram")
	tbl.Columns(format.ColumnConfig{Number: 4, Align: format.AlignCenter})
	for _, n := range nodes {
		name := display.ArtifactName(n.ArtifactType)
		if name == "" {
			name = format.OrDash(n.Name)
		}
		tbl.Row(name, string(n.ArtifactType), format.OrDash(n.ArtifactTypeID), format.BoolMark(ca.HasDiagram(n.ArtifactType)))
	}
	tbl.Footer(format.Count(len(nodes), "artifact type"), "", "", "")
	return tbl.Render(cmd.OutOrStdout())
}
