package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Keys lists the settable keys in file order.
var Keys = []string{
	"base_url",
	"personal_token",
	"vault_path",
	"base_folder",
	"diagrams_folder",
	"add_identifier_to_folder",
	"retrieve_private_architectures",
	"retrieve_collaboration_architectures",
	"diagram_format",
	"parallel",
	"timeout",
	"state_path",
}

// Set assigns a value by key and normalizes. It reports whether the change
// affects the remote account (and therefore invalidates cached state).
func (s *Settings) Set(key, value string) (remote bool, err error) {
	switch key {
	case "base_url":
		s.BaseURL, remote = value, true
	case "personal_token":
		s.PersonalToken, remote = value, true
	case "vault_path":
		s.VaultPath = value
	case "base_folder":
		s.BaseFolder = value
	case "diagrams_folder":
		s.DiagramsFolder = value
	case "add_identifier_to_folder":
		s.AddIdentifierToFolder, err = strconv.ParseBool(value)
	case "retrieve_private_architectures":
		s.RetrievePrivateArchitectures, err = strconv.ParseBool(value)
		remote = true
	case "retrieve_collaboration_architectures":
		s.RetrieveCollaborationArchitectures, err = strconv.ParseBool(value)
		remote = true
	case "diagram_format":
		v := strings.ToLower(value)
		if v != "svg" && v != "png" {
			return false, fmt.Errorf("diagram_format %q: want svg or png", value)
		}
		s.DiagramFormat = v
	case "parallel":
		s.Parallel, err = strconv.Atoi(value)
	case "timeout":
		s.Timeout = value
		_, err = s.TimeoutDuration()
	case "state_path":
		s.StatePath = value
	default:
		return false, fmt.Errorf("unknown key %q (known: %s)", key, strings.Join(Keys, ", "))
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	s.Normalize()
	return remote, nil
}

// Entries returns key/value pairs for display, with the token masked.
func (s Settings) Entries() [][2]string {
	token := ""
	if s.PersonalToken != "" {
		token = Mask(s.PersonalToken)
	}
	m := map[string]string{
		"base_url":                             s.BaseURL,
		"personal_token":                       token,
		"vault_path":                           s.VaultPath,
		"base_folder":                          s.BaseFolder,
		"diagrams_folder":                      s.DiagramsFolder,
		"add_identifier_to_folder":             strconv.FormatBool(s.AddIdentifierToFolder),
		"retrieve_private_architectures":       strconv.FormatBool(s.RetrievePrivateArchitectures),
		"retrieve_collaboration_architectures": strconv.FormatBool(s.RetrieveCollaborationArchitectures),
		"diagram_format":                       s.DiagramFormat,
		"parallel":                             strconv.Itoa(s.Parallel),
		"timeout":                              s.Timeout,
		"state_path":                           s.StatePath,
	}
	out := make([][2]string, 0, len(Keys))
	for _, k := range Keys {
		out = append(out, [2]string{k, m[k]})
	}
	return out
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

// SortedKeys returns Keys sorted alphabetically, for shell completion.
func SortedKeys() []string {
	out := append([]string(nil), Keys...)
	sort.Strings(out)
	return out
}
