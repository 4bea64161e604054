package main

import (
	"github.com/spf13/cobra"

	"casync/internal/format"
)

var logFlags struct {
	clear bool
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the sync error log",
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().BoolVar(&logFlags.clear, "clear", false, "Empty the log after printing it")
}

func runLog(cmd *cobra.Command, _ []string) error {
	s, path, err := loadSettings()
	if err != nil {
		return err
	}
	st, err := openState(s, path)
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.Errors()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		success(cmd, "Error log is empty")
		return nil
	}

	tbl := newTable()
	tbl.Header("When", "Error")
	tbl.Columns(format.ColumnConfig{Number: 2, MaxWidth: 96})
	for _, e := range entries {
		tbl.Row(format.Age(e.At), e.Message)
	}
	if err := tbl.Render(cmd.OutOrStdout()); err != nil {
		return err
	}
	if logFlags.clear {
		if err := st.ClearErrors(); err != nil {
			return err
		}
		success(cmd, "Cleared %s", format.Count(len(entries), "entry"))
	}
	return nil
}
