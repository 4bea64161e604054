package main

import (
	"github.com/spf13/cobra"

	"casync/internal/display"
	"casync/internal/format"
)

var architecturesFlags struct {
	refresh bool
}

var architecturesCmd = &cobra.Command{
	Use:     "architectures",
	Aliases: []string{"archs"},
	Short:   "List the architectures visible to the configured token",
	Args:    cobra.NoArgs,
	RunE:    runArchitectures,
}

func init() {
	architecturesCmd.Flags().BoolVar(&architecturesFlags.refresh, "refresh", false, "Fetch the list again instead of using the cache")
}

func runArchitectures(cmd *cobra.Command, _ []string) error {
	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	list, err := ws.Architectures(cmd.Context(), architecturesFlags.refresh)
	if err != nil {
		return err
	}
	selected, err := ws.Selected()
	if err != nil {
		return err
	}

	tbl := newTable()
	tbl.Header("", "ID", "Name", "Visibility", "Modified")
	tbl.Columns(format.ColumnConfig{Number: 3, MaxWidth: 48})
	for _, a := range list {
		mark := ""
		if a.ID == selected {
			mark = "*"
		}
		tbl.Row(mark, a.ID, a.Name, display.Visibility(a.Visibility), format.OrDash(a.LastModified))
	}
	tbl.Footer("", "", format.Count(len(list), "architecture"), "", "")
	return tbl.Render(cmd.OutOrStdout())
}
