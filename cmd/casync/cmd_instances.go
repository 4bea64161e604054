package main

import (
	"github.com/spf13/cobra"

	"casync/internal/ca"
	"casync/internal/display"
	"casync/internal/format"
)

var instancesFlags struct {
	typeID  string
	refresh bool
}

var instancesCmd = &cobra.Command{
	Use:   "instances TYPE",
	Short: "List the instances of an artifact type",
	Long: `List the instances of an artifact type in the selected architecture.
TYPE is the artifact code (assetartifact_risk), the code without its
prefix (risk) or the display name ("Risk").

Notes, RACI and Sizing instances share one artifact type; narrow them
with --type-id.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstances,
}

func init() {
	f := instancesCmd.Flags()
	f.StringVar(&instancesFlags.typeID, "type-id", "", "Only instances with this artifact type ID")
	f.BoolVar(&instancesFlags.refresh, "refresh", false, "Fetch the list again instead of using the cache")
}

func runInstances(cmd *cobra.Command, args []string) error {
	t, err := parseArtifactArg(args[0])
	if err != nil {
		return err
	}
	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	list, err := ws.Instances(cmd.Context(), t, instancesFlags.typeID, instancesFlags.refresh)
	if err != nil {
		return err
	}
	if nodes, err := ws.Artifacts(cmd.Context(), false); err == nil {
		if _, ok := ca.FindArtifact(nodes, t); !ok {
			warn(cmd.ErrOrStderr(), display.ArtifactLabel(t)+" has no content in this architecture")
		}
	}

	tbl := newTable()
	tbl.Title(display.ArtifactWithCode(t))
	tbl.Header("ID", "Title", "Modified")
	tbl.Columns(format.ColumnConfig{Number: 2, MaxWidth: 60})
	for _, inst := range list {
		tbl.Row(inst.ID, inst.Title(), format.OrDash(inst.LastModified))
	}
	tbl.Footer("", format.Count(len(list), "instance"), "")
	return tbl.Render(cmd.OutOrStdout())
}
