package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casync/internal/ca"
	"casync/internal/display"
	"casync/internal/format"
	"casync/internal/state"
	"casync/internal/workspace"
)

var selectCmd = &cobra.Command{
	Use:   "select [ID|none]",
	Short: "Select the architecture later commands operate on",
	Long: `Select an architecture by ID, or "none" to clear the selection.
Without an ID an interactive picker is shown when running in a terminal.

Selecting fetches the architecture metadata and its artifact list and
caches both.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSelect,
}

func runSelect(cmd *cobra.Command, args []string) error {
	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	var id string
	if len(args) == 1 {
		id = args[0]
		if id != state.SelectNone {
			checkListed(cmd, ws, id)
		}
	} else {
		if !interactive() {
			return fmt.Errorf("%w: pass an architecture ID", errNeedsTerminal)
		}
		list, err := ws.Architectures(cmd.Context(), false)
		if err != nil {
			return err
		}
		current, err := ws.Selected()
		if err != nil {
			return err
		}
		if id, err = pickArchitecture(list, current); err != nil {
			return err
		}
	}

	sel, err := ws.Select(cmd.Context(), id)
	if err != nil {
		return err
	}
	if sel.ID == state.SelectNone {
		success(cmd, "Selection cleared")
		return nil
	}
	name := sel.ID
	if sel.Info != nil && sel.Info.Name != "" {
		name = sel.Info.Name
	}
	success(cmd, "Selected %s (%s), %s with content", name, display.Selection(sel.ID, state.SelectNone),
		format.Count(len(sel.Artifacts), "artifact type"))
	return nil
}

// checkListed warns when id is missing from the architectures visible with
// the configured sources. The service may still serve it, so selection goes on.
func checkListed(cmd *cobra.Command, ws *workspace.Workspace, id string) {
	list, err := ws.Architectures(cmd.Context(), false)
	if err != nil {
		return
	}
	if _, err := ca.FindArchitecture(list, id); err != nil {
		warn(cmd.ErrOrStderr(), fmt.Sprintf("%v; try 'casync architectures --refresh'", err))
	}
}
