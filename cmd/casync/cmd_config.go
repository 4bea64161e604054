package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"casync/internal/config"
	"casync/internal/console"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the settings",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings (token masked)",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings and state file locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting",
	Long: `Change one setting and save the file. Changing base_url,
personal_token or an architecture source clears the cached listings
and the selection.

Keys: ` + strings.Join(config.Keys, ", "),
	Args: cobra.ExactArgs(2),
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) == 0 {
			return config.SortedKeys(), cobra.ShellCompDirectiveNoFileComp
		}
		return nil, cobra.ShellCompDirectiveNoFileComp
	},
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create or update the settings interactively",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s, _, err := loadSettings()
	if err != nil {
		return err
	}
	tbl := newTable()
	tbl.Header("Key", "Value")
	for _, kv := range s.Entries() {
		tbl.Row(kv[0], kv[1])
	}
	return tbl.Render(cmd.OutOrStdout())
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	s, path, err := loadSettings()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "config: %s\n", path)
	fmt.Fprintf(out, "state:  %s\n", s.ResolveStatePath(path))
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	file, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	remote, err := file.Set(args[0], args[1])
	if err != nil {
		return err
	}
	if err := config.Save(path, file); err != nil {
		return err
	}
	if remote {
		if err := invalidateState(file.WithEnv(), path); err != nil {
			return err
		}
	}
	success(cmd, "Set %s", args[0])
	return nil
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	if !interactive() {
		return fmt.Errorf("%w: use 'casync config set KEY VALUE'", errNeedsTerminal)
	}
	path, err := configPath()
	if err != nil {
		return err
	}
	before, err := config.LoadFromPath(path)
	if err != nil {
		return err
	}
	s, err := config.LoadFile(path)
	if err != nil {
		return err
	}

	parallel := fmt.Sprint(s.Parallel)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Cognitive Architect URL").
				Description("For example: https://example.com/tools/cogarch").
				Value(&s.BaseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Personal token").
				EchoMode(huh.EchoModePassword).
				Value(&s.PersonalToken).
				Description("Leave empty to use "+config.EnvToken).
				Validate(func(v string) error {
					if strings.TrimSpace(v) == "" && before.PersonalToken == "" {
						return fmt.Errorf("token is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Vault folder").
				Value(&s.VaultPath),
			huh.NewInput().
				Title("Base folder inside the vault").
				Value(&s.BaseFolder),
			huh.NewInput().
				Title("Diagrams subfolder").
				Value(&s.DiagramsFolder),
			huh.NewConfirm().
				Title("Append the architecture ID to its folder?").
				Value(&s.AddIdentifierToFolder),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Retrieve private architectures?").
				Value(&s.RetrievePrivateArchitectures),
			huh.NewConfirm().
				Title("Retrieve collaboration architectures?").
				Value(&s.RetrieveCollaborationArchitectures),
			huh.NewSelect[string]().
				Title("Diagram format").
				Options(huh.NewOptions("svg", "png")...).
				Value(&s.DiagramFormat),
			huh.NewInput().
				Title("Parallel retrievals").
				Value(&parallel).
				Validate(func(v string) error {
					_, err := (&config.Settings{}).Set("parallel", v)
					return err
				}),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("config init: %w", err)
	}
	if _, err := s.Set("parallel", parallel); err != nil {
		return err
	}
	s.Normalize()
	after := s.WithEnv()
	if err := after.Validate(); err != nil {
		return err
	}
	if err := config.Save(path, s); err != nil {
		return err
	}
	if after.Fingerprint() != before.Fingerprint() ||
		after.RetrievePrivateArchitectures != before.RetrievePrivateArchitectures ||
		after.RetrieveCollaborationArchitectures != before.RetrieveCollaborationArchitectures {
		if err := invalidateState(after, path); err != nil {
			return err
		}
	}
	success(cmd, "Saved %s", path)
	fmt.Fprintln(cmd.ErrOrStderr(), console.FormatInfoMessage("Next: casync select"))
	return nil
}

func validateURL(v string) error {
	u, err := url.Parse(strings.TrimSpace(v))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("enter an absolute URL")
	}
	return nil
}

// invalidateState drops cached listings fetched under the previous account.
// s holds the effective settings, environment overrides included.
func invalidateState(s config.Settings, path string) error {
	st, err := openState(s, path)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Invalidate(); err != nil {
		return err
	}
	return st.SetFingerprint(s.Fingerprint())
}
