package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"casync/internal/console"
	"casync/internal/display"
	"casync/internal/format"
	"casync/internal/mirror"
)

var syncFlags struct {
	all    bool
	typeID string
}

var syncCmd = &cobra.Command{
	Use:   "sync TYPE [ID...]",
	Short: "Write artifact instances into the vault",
	Long: `Fetch artifact instances of the selected architecture and write one
note per element into the vault, plus the instance diagram when the
artifact type has one.

Existing notes are not overwritten; they only gain the new ownership
links. Failures are collected in the error log ('casync log') and in
the architecture's Log.md.

Without IDs, --all syncs every instance; in a terminal a picker is shown
otherwise.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSync,
}

func init() {
	f := syncCmd.Flags()
	f.BoolVar(&syncFlags.all, "all", false, "Sync every instance of TYPE")
	f.StringVar(&syncFlags.typeID, "type-id", "", "With --all, only instances with this artifact type ID")
}

func runSync(cmd *cobra.Command, args []string) error {
	t, err := parseArtifactArg(args[0])
	if err != nil {
		return err
	}
	ids := args[1:]
	if len(ids) > 0 && syncFlags.all {
		return fmt.Errorf("pass instance IDs or --all, not both")
	}

	ws, done, err := openWorkspace()
	if err != nil {
		return err
	}
	defer done()

	if len(ids) == 0 && !syncFlags.all {
		if !interactive() {
			return fmt.Errorf("%w: pass instance IDs or --all", errNeedsTerminal)
		}
		list, err := ws.Instances(cmd.Context(), t, syncFlags.typeID, false)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			warn(cmd.ErrOrStderr(), "No instances of "+display.ArtifactLabel(t))
			return nil
		}
		if ids, err = pickInstances(t, list); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
	}

	var opts []mirror.Option
	if interactive() {
		w := cmd.ErrOrStderr()
		opts = append(opts, mirror.WithProgress(func(fraction float64, step string) {
			fmt.Fprintf(w, "\r\033[K%3.0f%% %s", fraction*100, console.Faint(format.Truncate(step, 48)))
			if fraction >= 1 {
				fmt.Fprintln(w)
			}
		}))
	}

	report, err := ws.Sync(cmd.Context(), t, ids, syncFlags.typeID, opts...)
	if err != nil {
		return err
	}

	out := cmd.ErrOrStderr()
	if report.Requested == 0 {
		warn(out, "No instances of "+display.ArtifactLabel(t))
		return nil
	}
	success(cmd, "%s: %d of %d retrieved, %d created, %d updated, %d unchanged, %s (%s) in %s",
		display.ArtifactLabel(t), report.Retrieved, report.Requested,
		report.Created, report.Updated, report.Unchanged,
		format.Count(report.Diagrams, "diagram"), format.Bytes(report.DiagramBytes),
		format.Duration(report.Duration))
	if n := len(report.Errors); n > 0 {
		warn(out, fmt.Sprintf("%s, see 'casync log'", format.Count(n, "error")))
		for _, e := range report.Errors {
			fmt.Fprintln(out, "  "+e)
		}
	}
	return nil
}
