// Package config loads and saves casync settings.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

// ErrNotConfigured is returned by Validate when the remote service cannot be reached
// because the base URL or personal token is missing.
var ErrNotConfigured = errors.New("casync is not configured")

// Environment variables that override the settings file.
const (
	EnvBaseURL = "CASYNC_BASE_URL"
	EnvToken   = "CASYNC_TOKEN"
	EnvVault   = "CASYNC_VAULT"
)

// Settings is the persisted configuration.
type Settings struct {
	BaseURL       string `json:"base_url" yaml:"base_url"`
	PersonalToken string `json:"personal_token" yaml:"personal_token"`

	VaultPath             string `json:"vault_path" yaml:"vault_path"`
	BaseFolder            string `json:"base_folder" yaml:"base_folder"`
	DiagramsFolder        string `json:"diagrams_folder" yaml:"diagrams_folder"`
	AddIdentifierToFolder bool   `json:"add_identifier_to_folder" yaml:"add_identifier_to_folder"`

	RetrievePrivateArchitectures       bool `json:"retrieve_private_architectures" yaml:"retrieve_private_architectures"`
	RetrieveCollaborationArchitectures bool `json:"retrieve_collaboration_architectures" yaml:"retrieve_collaboration_architectures"`

	DiagramFormat string `json:"diagram_format" yaml:"diagram_format"`
	Parallel      int    `json:"parallel" yaml:"parallel"`
	Timeout       string `json:"timeout" yaml:"timeout"`
	StatePath     string `json:"state_path,omitempty" yaml:"state_path,omitempty"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		VaultPath:                    ".",
		BaseFolder:                   "CA Import",
		DiagramsFolder:               "Diagrams",
		RetrievePrivateArchitectures: true,
		DiagramFormat:                "svg",
		Parallel:                     4,
		Timeout:                      "60s",
	}
}

// DefaultPath returns <user config dir>/casync/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "casync", "config.yaml"), nil
}

// LoadFromPath reads a settings file (YAML or JSON) over the defaults,
// applies environment overrides and normalizes the result.
// A missing file is not an error.
func LoadFromPath(path string) (Settings, error) {
	s, err := LoadFile(path)
	if err != nil {
		return s, err
	}
	return s.WithEnv(), nil
}

// WithEnv returns a copy of s with the environment overrides applied.
func (s Settings) WithEnv() Settings {
	s.applyEnv(os.LookupEnv)
	s.Normalize()
	return s
}

// LoadFile reads a settings file over the defaults without environment
// overrides. Edits that are saved back start from LoadFile so that values
// coming from the environment never end up in the file.
func LoadFile(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return s, fmt.Errorf("read config: %w", err)
	default:
		if err := decode(data, filepath.Ext(path), &s); err != nil {
			return s, err
		}
	}
	s.Normalize()
	return s, nil
}

// Load parses settings from bytes over the defaults. ext is the file
// extension (e.g. ".json", ".yaml") for format hint; empty = detect from content.
func Load(data []byte, ext string) (Settings, error) {
	s := Default()
	if err := decode(data, ext, &s); err != nil {
		return s, err
	}
	s.Normalize()
	return s, nil
}

func decode(data []byte, ext string, s *Settings) error {
	ext = strings.ToLower(ext)
	if ext == ".yml" {
		ext = ".yaml"
	}
	if ext == "" {
		// Detect: JSON starts with {, else YAML
		if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
			ext = ".json"
		} else {
			ext = ".yaml"
		}
	}
	if ext == ".json" {
		if err := json.Unmarshal(data, s); err != nil {
			return fmt.Errorf("parse config json: %w", err)
		}
		return nil
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("parse config yaml: %w", err)
	}
	return nil
}

func (s *Settings) applyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		s.BaseURL = v
	}
	if v, ok := lookup(EnvToken); ok && v != "" {
		s.PersonalToken = v
	}
	if v, ok := lookup(EnvVault); ok && v != "" {
		s.VaultPath = v
	}
}

// Normalize trims separators that would otherwise produce empty path
// segments further down.
func (s *Settings) Normalize() {
	s.BaseURL = strings.TrimSuffix(strings.TrimSpace(s.BaseURL), "/")
	s.PersonalToken = strings.TrimSpace(s.PersonalToken)
	s.BaseFolder = trimSeparators(s.BaseFolder)
	s.DiagramsFolder = trimSeparators(s.DiagramsFolder)
	s.DiagramFormat = strings.ToLower(s.DiagramFormat)
	if s.DiagramFormat == "" {
		s.DiagramFormat = "svg"
	}
	if s.Parallel < 1 {
		s.Parallel = 1
	}
	if s.VaultPath == "" {
		s.VaultPath = "."
	}
}

// trimSeparators removes one leading and one trailing path divider.
func trimSeparators(p string) string {
	if strings.HasPrefix(p, "/") || strings.HasPrefix(p, `\`) {
		p = p[1:]
	}
	if strings.HasSuffix(p, "/") || strings.HasSuffix(p, `\`) {
		p = p[:len(p)-1]
	}
	return p
}

// Validate checks that the remote service can be addressed.
func (s Settings) Validate() error {
	var missing []string
	if s.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if s.PersonalToken == "" {
		missing = append(missing, "personal_token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s (run 'casync config init' or set %s/%s)",
			ErrNotConfigured, strings.Join(missing, ", "), EnvBaseURL, EnvToken)
	}
	if s.DiagramFormat != "svg" && s.DiagramFormat != "png" {
		return fmt.Errorf("diagram_format %q: want svg or png", s.DiagramFormat)
	}
	if _, err := s.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// TimeoutDuration parses Timeout; empty means no timeout.
func (s Settings) TimeoutDuration() (time.Duration, error) {
	if s.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.Timeout)
	if err != nil {
		return 0, fmt.Errorf("timeout %q: %w", s.Timeout, err)
	}
	return d, nil
}

// Fingerprint identifies the remote account. Cached state is only valid
// for the fingerprint it was fetched under.
func (s Settings) Fingerprint() string {
	sum := sha256.Sum256([]byte(s.BaseURL + "\x00" + s.PersonalToken))
	return hex.EncodeToString(sum[:])
}

// ResolveStatePath returns StatePath or <dir of config>/state.db.
func (s Settings) ResolveStatePath(configPath string) string {
	if s.StatePath != "" {
		return s.StatePath
	}
	return filepath.Join(filepath.Dir(configPath), "state.db")
}

// Save writes the settings as YAML. The file holds the token, so it is
// created with mode 0600.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
