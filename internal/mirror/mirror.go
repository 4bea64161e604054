// Package mirror retrieves artifact instances from Cognitive Architect and
// materializes them into a vault.
package mirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"casync/internal/ca"
	"casync/internal/display"
	"casync/internal/logging"
	"casync/internal/state"
	"casync/internal/vault"
)

// ErrNoArchitecture is returned when no architecture is selected.
var ErrNoArchitecture = errors.New("mirror: no architecture selected")

// Source is the part of the API client the mirror needs.
type Source interface {
	GetInstanceElements(ctx context.Context, archID string, t ca.ArtifactType, instanceID string) ([]ca.Element, error)
	GetDiagram(ctx context.Context, archID string, t ca.ArtifactType, instanceID string, format ca.DiagramFormat) ([]byte, error)
}

// ErrorLog receives the non-fatal failures of a sync.
type ErrorLog interface {
	AppendErrors(messages ...string) error
}

var _ ErrorLog = (state.Store)(nil)

// Mirror syncs the instances of one architecture into a vault.
type Mirror struct {
	src      Source
	vault    *vault.Vault
	layout   vault.Layout
	errlog   ErrorLog
	format   ca.DiagramFormat
	parallel int
	progress ProgressFunc
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Mirror.
type Option func(*Mirror)

// WithErrorLog appends sync failures to log.
func WithErrorLog(log ErrorLog) Option { return func(m *Mirror) { m.errlog = log } }

// WithFormat sets the diagram format (default svg).
func WithFormat(f ca.DiagramFormat) Option { return func(m *Mirror) { m.format = f } }

// WithParallel bounds concurrent retrievals (default 4).
func WithParallel(n int) Option {
	return func(m *Mirror) {
		if n > 0 {
			m.parallel = n
		}
	}
}

// WithProgress reports progress through fn: one step per retrieved instance,
// then the end of the sync. fn is called from the retrieval workers, one call
// at a time.
func WithProgress(fn ProgressFunc) Option { return func(m *Mirror) { m.progress = fn } }

// WithClock overrides the time source used for Log.md headings.
func WithClock(now func() time.Time) Option { return func(m *Mirror) { m.now = now } }

// New returns a Mirror for the architecture described by layout
// (layout.ArchID is the selected architecture).
func New(src Source, v *vault.Vault, layout vault.Layout, opts ...Option) *Mirror {
	m := &Mirror{
		src:      src,
		vault:    v,
		layout:   layout,
		format:   ca.FormatSVG,
		parallel: 4,
		now:      time.Now,
		logger:   logging.New("mirror"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Mirror) archID() (string, error) {
	id := m.layout.ArchID
	if id == "" || id == state.SelectNone {
		return "", ErrNoArchitecture
	}
	return id, nil
}

// Retrieved is the fetched content of one instance.
type Retrieved struct {
	InstanceID string
	Elements   []ca.Element
	Diagram    []byte // nil when the artifact type has no diagram
	DiagramErr error  // diagram fetch failure; the elements are still usable
}

// Retrieve fetches the elements of one instance and, when the artifact type
// has one, its diagram. Nothing is written.
func (m *Mirror) Retrieve(ctx context.Context, t ca.ArtifactType, instanceID string) (*Retrieved, error) {
	archID, err := m.archID()
	if err != nil {
		return nil, err
	}
	if instanceID == "" {
		return nil, fmt.Errorf("%w: instance ID is required", ca.ErrInvalidArgument)
	}
	elements, err := m.src.GetInstanceElements(ctx, archID, t, instanceID)
	if err != nil {
		return nil, err
	}
	r := &Retrieved{InstanceID: instanceID, Elements: elements}
	if ca.HasDiagram(t) {
		r.Diagram, r.DiagramErr = m.src.GetDiagram(ctx, archID, t, instanceID, m.format)
	}
	return r, nil
}

// Report summarizes a Sync.
type Report struct {
	Artifact     ca.ArtifactType
	Requested    int
	Retrieved    int
	Created      int
	Updated      int
	Unchanged    int
	Diagrams     int
	DiagramBytes int64
	Errors       []string
	Duration     time.Duration
}

// Sync retrieves the instances concurrently and then writes diagrams and
// notes one instance at a time, in the order given. Per-instance failures
// end up in Report.Errors, the error log and the architecture's Log.md;
// the returned error is reserved for failures that stop the whole run.
func (m *Mirror) Sync(ctx context.Context, t ca.ArtifactType, instanceIDs []string) (*Report, error) {
	archID, err := m.archID()
	if err != nil {
		return nil, err
	}
	if t == "" {
		return nil, fmt.Errorf("%w: artifact type is required", ca.ErrInvalidArgument)
	}
	start := m.now()
	report := &Report{Artifact: t, Requested: len(instanceIDs)}
	prog := NewProgress(0, 1, len(instanceIDs))

	results := make([]*Retrieved, len(instanceIDs))
	failures := make([]error, len(instanceIDs))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(m.parallel)
	for i, id := range instanceIDs {
		i, id := i, id
		g.Go(func() error {
			results[i], failures[i] = m.Retrieve(gCtx, t, id)

			mu.Lock()
			defer mu.Unlock()
			m.report(prog.Next(), "retrieved "+id)
			m.logger.Debug("instance retrieved", "instance", id, "fraction", prog.Actual())
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var errs []string
	instances := make([]vault.Instance, 0, len(results))
	for i, r := range results {
		if failures[i] != nil {
			errs = append(errs, fmt.Sprintf("%v %s", failures[i], instanceIDs[i]))
			continue
		}
		report.Retrieved++
		inst := vault.Instance{Elements: r.Elements}
		switch {
		case r.DiagramErr != nil:
			errs = append(errs, fmt.Sprintf("%v %s", r.DiagramErr, instanceIDs[i]))
		case r.Diagram != nil:
			name := m.diagramName(r.InstanceID, archID, r.Elements)
			file, err := m.vault.WriteDiagram(m.layout.DiagramFolder(), name, m.format, r.Diagram)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%v %s", err, name))
				break
			}
			inst.DiagramFile = file
			report.Diagrams++
			report.DiagramBytes += int64(len(r.Diagram))
		}
		instances = append(instances, inst)
	}

	saved := vault.NewWriter(m.vault, m.layout).SaveInstances(instances)
	report.Created = saved.Created
	report.Updated = saved.Updated
	report.Unchanged = saved.Unchanged
	errs = append(errs, saved.Errors...)
	report.Errors = errs

	if err := m.recordErrors(t, errs); err != nil {
		return report, err
	}
	report.Duration = m.now().Sub(start)
	m.report(prog.Done(), "done")
	m.logger.Info("sync finished",
		"artifact", t, "requested", report.Requested, "retrieved", report.Retrieved,
		"created", report.Created, "updated", report.Updated, "errors", len(errs))
	return report, nil
}

func (m *Mirror) recordErrors(t ca.ArtifactType, errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	if m.errlog != nil {
		if err := m.errlog.AppendErrors(errs...); err != nil {
			return fmt.Errorf("append error log: %w", err)
		}
	}
	title := "Sync " + display.ArtifactLabel(t)
	if err := m.vault.SaveLog(m.layout.ArchitectureFolder(), title, errs, m.now()); err != nil {
		return fmt.Errorf("save log: %w", err)
	}
	return nil
}

func (m *Mirror) report(fraction float64, step string) {
	if m.progress != nil {
		m.progress(fraction, step)
	}
}

func (m *Mirror) diagramName(instanceID, archID string, elements []ca.Element) string {
	if len(elements) > 0 {
		return vault.Filename(elements[0])
	}
	return instanceID + "-" + archID
}

// SaveDiagram fetches one diagram and writes it to the diagrams folder.
// Without a name the instance details are fetched to derive one; if that
// fails the file is named <instanceID>-<archID>. It returns the file name.
func (m *Mirror) SaveDiagram(ctx context.Context, t ca.ArtifactType, instanceID string, format ca.DiagramFormat, name string) (string, error) {
	archID, err := m.archID()
	if err != nil {
		return "", err
	}
	if instanceID == "" {
		return "", fmt.Errorf("%w: instance ID is required", ca.ErrInvalidArgument)
	}
	if format == "" {
		format = m.format
	}
	data, err := m.src.GetDiagram(ctx, archID, t, instanceID, format)
	if err != nil {
		return "", err
	}
	if name == "" {
		elements, err := m.src.GetInstanceElements(ctx, archID, t, instanceID)
		if err != nil {
			m.logger.Warn("instance details unavailable, using fallback name", "instance", instanceID, "error", err)
		}
		name = m.diagramName(instanceID, archID, elements)
	}
	return m.vault.WriteDiagram(m.layout.DiagramFolder(), name, format, data)
}
