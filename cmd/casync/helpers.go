package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"casync/internal/ca"
	"casync/internal/config"
	"casync/internal/console"
	"casync/internal/display"
	"casync/internal/format"
	"casync/internal/logging"
	"casync/internal/mirror"
	"casync/internal/state"
	"casync/internal/workspace"
)

// configPath returns --config or the default settings location.
func configPath() (string, error) {
	if rootFlags.config != "" {
		return rootFlags.config, nil
	}
	return config.DefaultPath()
}

// loadSettings reads the settings file and applies --vault.
func loadSettings() (config.Settings, string, error) {
	path, err := configPath()
	if err != nil {
		return config.Settings{}, "", err
	}
	s, err := config.LoadFromPath(path)
	if err != nil {
		return s, path, err
	}
	if rootFlags.vault != "" {
		s.VaultPath = rootFlags.vault
		s.Normalize()
	}
	return s, path, nil
}

// openState opens the state database that belongs to the settings at path.
func openState(s config.Settings, path string) (*state.SqlStore, error) {
	st, err := state.Open(s.ResolveStatePath(path))
	if err != nil {
		return nil, fmt.Errorf("open state: %w", err)
	}
	return st, nil
}

// openWorkspace loads the settings, builds the API client and opens the
// state. The returned func closes the state.
func openWorkspace() (*workspace.Workspace, func(), error) {
	s, path, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, nil, err
	}
	timeout, err := s.TimeoutDuration()
	if err != nil {
		return nil, nil, err
	}
	client, err := ca.New(s.BaseURL, s.PersonalToken,
		ca.WithTimeout(timeout),
		ca.WithLogger(logging.New("ca")),
	)
	if err != nil {
		return nil, nil, err
	}
	st, err := openState(s, path)
	if err != nil {
		return nil, nil, err
	}
	ws, err := workspace.New(s, client, st)
	if err != nil {
		_ = st.Close()
		return nil, nil, err
	}
	return ws, func() { _ = st.Close() }, nil
}

func newTable() *format.Table {
	return format.NewTable(format.ModeFor(rootFlags.markdown))
}

func parseArtifactArg(s string) (ca.ArtifactType, error) {
	t, ok := display.ParseArtifact(s)
	if !ok {
		return "", fmt.Errorf("unknown artifact type %q (see 'casync artifacts')", s)
	}
	return t, nil
}

// interactive reports whether prompts can be shown.
func interactive() bool {
	return console.IsTerminal(os.Stdin) && console.IsTerminal(os.Stderr)
}

var errNeedsTerminal = errors.New("no terminal for interactive prompt")

func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintln(cmd.ErrOrStderr(), console.FormatSuccessMessage(fmt.Sprintf(format, args...)))
}

func warn(w io.Writer, msg string) {
	fmt.Fprintln(w, console.FormatWarningMessage(msg))
}

// pickArchitecture asks for one of list, with "none" as the first option.
func pickArchitecture(list []ca.Architecture, selected string) (string, error) {
	opts := []huh.Option[string]{huh.NewOption("(none)", state.SelectNone)}
	for _, a := range list {
		label := fmt.Sprintf("%s  [%s]", a.Name, display.Visibility(a.Visibility))
		opts = append(opts, huh.NewOption(label, a.ID).Selected(a.ID == selected))
	}
	choice := selected
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Select an architecture").
				Options(opts...).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("select architecture: %w", err)
	}
	return choice, nil
}

// pickInstances asks for a subset of list.
func pickInstances(t ca.ArtifactType, list []ca.InstanceSummary) ([]string, error) {
	opts := make([]huh.Option[string], 0, len(list))
	for _, inst := range list {
		opts = append(opts, huh.NewOption(inst.Title(), inst.ID))
	}
	var ids []string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Instances of " + display.ArtifactLabel(t)).
				Description("space to toggle, enter to sync").
				Options(opts...).
				Value(&ids),
		),
	)
	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("select instances: %w", err)
	}
	return ids, nil
}

// hint suggests a next step for errors the user can fix.
func hint(err error) string {
	switch {
	case errors.Is(err, config.ErrNotConfigured):
		return "Run 'casync config init' or set " + config.EnvBaseURL + " and " + config.EnvToken
	case ca.IsUnauthorized(err):
		return "The personal token was rejected; update it with 'casync config set personal_token <token>'"
	case ca.IsForbidden(err):
		return "The token has no access to this architecture; check 'casync architectures'"
	case errors.Is(err, mirror.ErrNoArchitecture):
		return "Select one with 'casync select'"
	}
	return ""
}
