package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"casync/internal/format"
)

var infoFlags struct {
	refresh bool
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the metadata of the selected architecture",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoFlags.refresh, "refresh", false, "Fetch the metadata again instead of using the cache")
}

func runInfo(cmd *cobra.Command, _ []string) error {
	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	info, err := ws.Info(cmd.Context(), infoFlags.refresh)
	if err != nil {
		return err
	}
	layout, err := ws.Layout(cmd.Context())
	if err != nil {
		return err
	}

	tbl := newTable()
	tbl.Header("Field", "Value")
	tbl.Columns(format.ColumnConfig{Number: 2, MaxWidth: 72})
	tbl.Row("ID", info.ArchID)
	tbl.Row("Name", info.Name)
	tbl.Row("Description", format.OrDash(info.Description))
	tbl.Row("Owner", format.OrDash(info.Owner))
	tbl.Row("Modified", format.OrDash(info.LastModified))
	tbl.Row("Folder", layout.ArchitectureFolder())

	keys := make([]string, 0, len(info.Extra))
	for k := range info.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tbl.Row(k, format.Truncate(fmt.Sprint(info.Extra[k]), 72))
	}
	return tbl.Render(cmd.OutOrStdout())
}
