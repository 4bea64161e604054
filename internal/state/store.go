// Package state persists casync's mutable state between runs: the selected
// architecture, cached listings, the settings fingerprint and the error log.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"casync/internal/ca"
)

// SelectNone is the selection value when no architecture is selected.
const SelectNone = "none"

// ErrNotFound is returned when a cached value has never been stored or was
// invalidated.
var ErrNotFound = errors.New("state: not found")

// ErrorEntry is one line of the persistent error log.
type ErrorEntry struct {
	ID      int64
	Message string
	At      time.Time
}

// Store is the persistence facade used by the CLI, the mirror and the MCP
// server. Implementations are SQLite (SqlStore) or in-memory (MemStore).
type Store interface {
	// Selected returns the selected architecture ID, or SelectNone.
	Selected() (string, error)
	// SetSelected changes the selection. Selecting a different architecture
	// drops the cached info, artifacts and instances of the previous one.
	SetSelected(id string) error

	Architectures() ([]ca.Architecture, error)
	SetArchitectures(list []ca.Architecture) error
	Info() (*ca.ArchitectureInfo, error)
	SetInfo(info *ca.ArchitectureInfo) error
	Artifacts() ([]ca.CatalogNode, error)
	SetArtifacts(nodes []ca.CatalogNode) error
	Instances(t ca.ArtifactType) ([]ca.InstanceSummary, error)
	SetInstances(t ca.ArtifactType, list []ca.InstanceSummary) error

	AppendErrors(messages ...string) error
	Errors() ([]ErrorEntry, error)
	ClearErrors() error

	Fingerprint() (string, error)
	SetFingerprint(fp string) error
	// Invalidate drops every cached listing and resets the selection.
	// The error log is kept.
	Invalidate() error

	Close() error
}

// Keys of the key/value table.
const (
	keySelected      = "selected"
	keyFingerprint   = "fingerprint"
	keyArchitectures = "architectures"
	keyInfo          = "info"
	keyArtifacts     = "artifacts"
	instancesPrefix  = "instances/"
)

func instancesKey(t ca.ArtifactType) string { return instancesPrefix + string(t) }

// architectureScoped reports whether a key belongs to the selected
// architecture and must be dropped when the selection changes.
func architectureScoped(key string) bool {
	return key == keyInfo || key == keyArtifacts || strings.HasPrefix(key, instancesPrefix)
}

// cached reports whether a key is dropped by Invalidate.
func cached(key string) bool {
	return key == keyArchitectures || architectureScoped(key)
}

func encode(key string, v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return data, nil
}

func decode(key string, data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

// cleanMessages drops blank lines so the log never holds empty entries.
func cleanMessages(messages []string) []string {
	out := make([]string, 0, len(messages))
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			out = append(out, m)
		}
	}
	return out
}

var (
	_ Store = (*SqlStore)(nil)
	_ Store = (*MemStore)(nil)
)

// Reconcile invalidates s when the stored fingerprint differs from fp and
// then records fp. It reports whether the cached state was dropped.
// An empty stored fingerprint (fresh store) never invalidates.
func Reconcile(s Store, fp string) (bool, error) {
	prev, err := s.Fingerprint()
	if err != nil {
		return false, err
	}
	if prev == fp {
		return false, nil
	}
	invalidated := false
	if prev != "" {
		if err := s.Invalidate(); err != nil {
			return false, err
		}
		invalidated = true
	}
	return invalidated, s.SetFingerprint(fp)
}
