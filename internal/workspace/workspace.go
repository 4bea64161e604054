// Package workspace ties the settings, the API client, the cached state and
// the vault together. The CLI and the MCP server both operate on a Workspace.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"casync/internal/ca"
	"casync/internal/config"
	"casync/internal/logging"
	"casync/internal/mirror"
	"casync/internal/state"
	"casync/internal/vault"
)

// API is the part of the Cognitive Architect client a Workspace uses.
type API interface {
	ListArchitectures(ctx context.Context, src ca.Sources) ([]ca.Architecture, error)
	GetArchitecture(ctx context.Context, archID string) (*ca.ArchitectureInfo, error)
	ListArtifacts(ctx context.Context, archID string) ([]ca.CatalogNode, error)
	ListInstances(ctx context.Context, archID string, t ca.ArtifactType, artifactTypeID string) ([]ca.InstanceSummary, error)
	mirror.Source
}

var _ API = (*ca.Client)(nil)

// Workspace is an opened casync configuration.
type Workspace struct {
	settings config.Settings
	api      API
	state    state.Store
	vault    *vault.Vault
	logger   *slog.Logger
}

// New returns a Workspace. It reconciles the state with the settings
// fingerprint, dropping cached listings fetched under another account.
func New(settings config.Settings, api API, st state.Store) (*Workspace, error) {
	w := &Workspace{
		settings: settings,
		api:      api,
		state:    st,
		vault:    vault.New(settings.VaultPath),
		logger:   logging.New("workspace"),
	}
	dropped, err := state.Reconcile(st, settings.Fingerprint())
	if err != nil {
		return nil, fmt.Errorf("reconcile state: %w", err)
	}
	if dropped {
		w.logger.Info("account changed, cached state cleared")
	}
	return w, nil
}

// Settings returns the settings the workspace was opened with.
func (w *Workspace) Settings() config.Settings { return w.settings }

// State returns the state store.
func (w *Workspace) State() state.Store { return w.state }

// Vault returns the vault.
func (w *Workspace) Vault() *vault.Vault { return w.vault }

func (w *Workspace) sources() ca.Sources {
	return ca.Sources{
		Private:       w.settings.RetrievePrivateArchitectures,
		Collaboration: w.settings.RetrieveCollaborationArchitectures,
	}
}

// Architectures returns the cached architecture list, fetching it when
// there is none or refresh is set.
func (w *Workspace) Architectures(ctx context.Context, refresh bool) ([]ca.Architecture, error) {
	if !refresh {
		list, err := w.state.Architectures()
		if err == nil {
			return list, nil
		}
		if !errors.Is(err, state.ErrNotFound) {
			return nil, err
		}
	}
	list, err := w.api.ListArchitectures(ctx, w.sources())
	if err != nil {
		return nil, err
	}
	if err := w.state.SetArchitectures(list); err != nil {
		return nil, err
	}
	return list, nil
}

// Selected returns the selected architecture ID or state.SelectNone.
func (w *Workspace) Selected() (string, error) { return w.state.Selected() }

// Selection is the outcome of Select.
type Selection struct {
	ID        string
	Info      *ca.ArchitectureInfo
	Artifacts []ca.CatalogNode
}

// Select makes id the selected architecture and caches its metadata and
// artifact list. Selecting state.SelectNone clears the selection. The
// selection only changes when the metadata could be fetched.
func (w *Workspace) Select(ctx context.Context, id string) (*Selection, error) {
	if id == "" || id == state.SelectNone {
		return &Selection{ID: state.SelectNone}, w.state.SetSelected(state.SelectNone)
	}
	info, err := w.api.GetArchitecture(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", id, err)
	}
	if err := w.state.SetSelected(id); err != nil {
		return nil, err
	}
	if err := w.state.SetInfo(info); err != nil {
		return nil, err
	}
	sel := &Selection{ID: id, Info: info}
	artifacts, err := w.api.ListArtifacts(ctx, id)
	if err != nil {
		w.logger.Warn("artifact list unavailable", "architecture", id, "error", err)
		return sel, nil
	}
	if err := w.state.SetArtifacts(artifacts); err != nil {
		return nil, err
	}
	sel.Artifacts = artifacts
	return sel, nil
}

func (w *Workspace) selected() (string, error) {
	id, err := w.state.Selected()
	if err != nil {
		return "", err
	}
	if id == state.SelectNone {
		return "", mirror.ErrNoArchitecture
	}
	return id, nil
}

// Info returns the metadata of the selected architecture.
func (w *Workspace) Info(ctx context.Context, refresh bool) (*ca.ArchitectureInfo, error) {
	id, err := w.selected()
	if err != nil {
		return nil, err
	}
	if !refresh {
		info, err := w.state.Info()
		if err == nil {
			return info, nil
		}
		if !errors.Is(err, state.ErrNotFound) {
			return nil, err
		}
	}
	info, err := w.api.GetArchitecture(ctx, id)
	if err != nil {
		return nil, err
	}
	return info, w.state.SetInfo(info)
}

// Artifacts returns the artifact types with content of the selected
// architecture.
func (w *Workspace) Artifacts(ctx context.Context, refresh bool) ([]ca.CatalogNode, error) {
	id, err := w.selected()
	if err != nil {
		return nil, err
	}
	if !refresh {
		nodes, err := w.state.Artifacts()
		if err == nil {
			return nodes, nil
		}
		if !errors.Is(err, state.ErrNotFound) {
			return nil, err
		}
	}
	nodes, err := w.api.ListArtifacts(ctx, id)
	if err != nil {
		return nil, err
	}
	return nodes, w.state.SetArtifacts(nodes)
}

// Instances returns the instances of t in the selected architecture,
// narrowed to artifactTypeID when set. The unfiltered list is cached per
// artifact type.
func (w *Workspace) Instances(ctx context.Context, t ca.ArtifactType, artifactTypeID string, refresh bool) ([]ca.InstanceSummary, error) {
	id, err := w.selected()
	if err != nil {
		return nil, err
	}
	if !refresh {
		list, err := w.state.Instances(t)
		if err == nil {
			return ca.FilterInstances(list, artifactTypeID), nil
		}
		if !errors.Is(err, state.ErrNotFound) {
			return nil, err
		}
	}
	list, err := w.api.ListInstances(ctx, id, t, "")
	if err != nil {
		return nil, err
	}
	if err := w.state.SetInstances(t, list); err != nil {
		return nil, err
	}
	return ca.FilterInstances(list, artifactTypeID), nil
}

// Layout returns the vault layout of the selected architecture.
func (w *Workspace) Layout(ctx context.Context) (vault.Layout, error) {
	id, err := w.selected()
	if err != nil {
		return vault.Layout{}, err
	}
	info, err := w.Info(ctx, false)
	if err != nil {
		return vault.Layout{}, err
	}
	return vault.Layout{
		BaseFolder:     w.settings.BaseFolder,
		DiagramsFolder: w.settings.DiagramsFolder,
		AddIdentifier:  w.settings.AddIdentifierToFolder,
		ArchName:       info.Name,
		ArchID:         id,
	}, nil
}

// Mirror returns a Mirror for the selected architecture that records its
// failures in the state error log.
func (w *Workspace) Mirror(ctx context.Context, opts ...mirror.Option) (*mirror.Mirror, error) {
	layout, err := w.Layout(ctx)
	if err != nil {
		return nil, err
	}
	base := []mirror.Option{
		mirror.WithErrorLog(w.state),
		mirror.WithFormat(ca.DiagramFormat(w.settings.DiagramFormat)),
		mirror.WithParallel(w.settings.Parallel),
	}
	return mirror.New(w.api, w.vault, layout, append(base, opts...)...), nil
}

// Sync mirrors the given instances of t. With no IDs every instance of t
// (narrowed to artifactTypeID) is synced.
func (w *Workspace) Sync(ctx context.Context, t ca.ArtifactType, ids []string, artifactTypeID string, opts ...mirror.Option) (*mirror.Report, error) {
	if len(ids) == 0 {
		list, err := w.Instances(ctx, t, artifactTypeID, false)
		if err != nil {
			return nil, err
		}
		for _, inst := range list {
			ids = append(ids, inst.ID)
		}
	}
	m, err := w.Mirror(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return m.Sync(ctx, t, ids)
}

// SaveDiagram saves one diagram of the selected architecture.
func (w *Workspace) SaveDiagram(ctx context.Context, t ca.ArtifactType, instanceID string, format ca.DiagramFormat, name string) (string, error) {
	m, err := w.Mirror(ctx)
	if err != nil {
		return "", err
	}
	return m.SaveDiagram(ctx, t, instanceID, format, name)
}

// Preview fetches one instance and, when its type has one, its diagram in
// format (the configured format when empty). Nothing is written to the vault.
func (w *Workspace) Preview(ctx context.Context, t ca.ArtifactType, instanceID string, format ca.DiagramFormat) (*mirror.Retrieved, error) {
	var opts []mirror.Option
	if format != "" {
		opts = append(opts, mirror.WithFormat(format))
	}
	m, err := w.Mirror(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return m.Retrieve(ctx, t, instanceID)
}

// Errors returns the persistent error log.
func (w *Workspace) Errors() ([]state.ErrorEntry, error) { return w.state.Errors() }

// ClearErrors empties the persistent error log.
func (w *Workspace) ClearErrors() error { return w.state.ClearErrors() }
