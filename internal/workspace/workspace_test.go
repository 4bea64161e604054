package workspace

import (
	"context"
	"errors"
	"sync"
	"testing"

	"casync/internal/ca"
	"casync/internal/config"
	"casync/internal/mirror"
	"casync/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	calls    map[string]int
	sources  []ca.Sources
	infoErr  error
	listErr  error
	elements map[string][]ca.Element
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		calls: map[string]int{},
		elements: map[string][]ca.Element{
			"r1": {{"_id": "RISK_1", "label": "Lock-in", "modelType": "Risk", "owned": "0"}},
			"r2": {{"_id": "RISK_2", "label": "Latency", "modelType": "Risk", "owned": "0"}},
		},
	}
}

func (f *fakeAPI) hit(name string) {
	f.mu.Lock()
	f.calls[name]++
	f.mu.Unlock()
}

func (f *fakeAPI) ListArchitectures(_ context.Context, src ca.Sources) ([]ca.Architecture, error) {
	f.hit("architectures")
	f.sources = append(f.sources, src)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return []ca.Architecture{{ID: "A1", Name: "Payments"}}, nil
}

func (f *fakeAPI) GetArchitecture(_ context.Context, id string) (*ca.ArchitectureInfo, error) {
	f.hit("info")
	if f.infoErr != nil {
		return nil, f.infoErr
	}
	return &ca.ArchitectureInfo{ArchID: id, Name: "Payments"}, nil
}

func (f *fakeAPI) ListArtifacts(context.Context, string) ([]ca.CatalogNode, error) {
	f.hit("artifacts")
	return []ca.CatalogNode{{ID: "n1", ArtifactType: ca.Risk, HasContent: true}}, nil
}

func (f *fakeAPI) ListInstances(_ context.Context, _ string, _ ca.ArtifactType, typeID string) ([]ca.InstanceSummary, error) {
	f.hit("instances")
	if typeID != "" {
		return nil, errors.New("workspace must cache the unfiltered list")
	}
	return []ca.InstanceSummary{
		{ID: "r1", Label: "Lock-in", ArtifactTypeID: "t1"},
		{ID: "r2", Label: "Latency", ArtifactTypeID: "t2"},
	}, nil
}

func (f *fakeAPI) GetInstanceElements(_ context.Context, _ string, _ ca.ArtifactType, id string) ([]ca.Element, error) {
	f.hit("elements")
	return f.elements[id], nil
}

func (f *fakeAPI) GetDiagram(context.Context, string, ca.ArtifactType, string, ca.DiagramFormat) ([]byte, error) {
	f.hit("diagram")
	return []byte("<svg/>"), nil
}

func testSettings(t *testing.T) config.Settings {
	s := config.Default()
	s.BaseURL = "https://ca.example.com"
	s.PersonalToken = "pat"
	s.VaultPath = t.TempDir()
	s.Normalize()
	return s
}

func open(t *testing.T, api API, st state.Store) *Workspace {
	t.Helper()
	w, err := New(testSettings(t), api, st)
	require.NoError(t, err)
	return w
}

func TestArchitectures_Cached(t *testing.T) {
	api := newFakeAPI()
	w := open(t, api, state.NewMemStore())

	list, err := w.Architectures(context.Background(), false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	_, err = w.Architectures(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls["architectures"])

	_, err = w.Architectures(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, api.calls["architectures"])
	assert.Equal(t, ca.Sources{Private: true}, api.sources[0])
}

func TestArchitectures_Error(t *testing.T) {
	api := newFakeAPI()
	api.listErr = errors.New("down")
	w := open(t, api, state.NewMemStore())
	_, err := w.Architectures(context.Background(), false)
	assert.EqualError(t, err, "down")
}

func TestSelect(t *testing.T) {
	api := newFakeAPI()
	st := state.NewMemStore()
	w := open(t, api, st)

	sel, err := w.Select(context.Background(), "A1")
	require.NoError(t, err)
	assert.Equal(t, "Payments", sel.Info.Name)
	assert.Len(t, sel.Artifacts, 1)
	id, _ := w.Selected()
	assert.Equal(t, "A1", id)

	// Cached afterwards.
	_, err = w.Info(context.Background(), false)
	require.NoError(t, err)
	_, err = w.Artifacts(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, api.calls["info"])
	assert.Equal(t, 1, api.calls["artifacts"])

	sel, err = w.Select(context.Background(), state.SelectNone)
	require.NoError(t, err)
	assert.Equal(t, state.SelectNone, sel.ID)
	_, err = w.Info(context.Background(), false)
	assert.ErrorIs(t, err, mirror.ErrNoArchitecture)
}

func TestSelect_FailureKeepsPreviousSelection(t *testing.T) {
	api := newFakeAPI()
	w := open(t, api, state.NewMemStore())
	_, err := w.Select(context.Background(), "A1")
	require.NoError(t, err)

	api.infoErr = errors.New("forbidden")
	_, err = w.Select(context.Background(), "A2")
	assert.Error(t, err)
	id, _ := w.Selected()
	assert.Equal(t, "A1", id)
}

func TestInstances_FilteredFromCache(t *testing.T) {
	api := newFakeAPI()
	w := open(t, api, state.NewMemStore())
	_, err := w.Select(context.Background(), "A1")
	require.NoError(t, err)

	all, err := w.Instances(context.Background(), ca.Notes, "", false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := w.Instances(context.Background(), ca.Notes, "t2", false)
	require.NoError(t, err)
	require.Len(t, some, 1)
	assert.Equal(t, "r2", some[0].ID)
	assert.Equal(t, 1, api.calls["instances"])
}

func TestSync_AllInstances(t *testing.T) {
	api := newFakeAPI()
	w := open(t, api, state.NewMemStore())
	_, err := w.Select(context.Background(), "A1")
	require.NoError(t, err)

	report, err := w.Sync(context.Background(), ca.Risk, nil, "")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Requested)
	assert.Equal(t, 2, report.Created)
	assert.Zero(t, api.calls["diagram"])
	assert.True(t, w.Vault().Exists("CA Import/Payments/Risk/Lock-in_1.md"))
	assert.True(t, w.Vault().Exists("CA Import/Payments/Risk/Latency_2.md"))
}

func TestSync_NoSelection(t *testing.T) {
	w := open(t, newFakeAPI(), state.NewMemStore())
	_, err := w.Sync(context.Background(), ca.Risk, []string{"r1"}, "")
	assert.ErrorIs(t, err, mirror.ErrNoArchitecture)
}

func TestSaveDiagram(t *testing.T) {
	api := newFakeAPI()
	api.elements["sc"] = []ca.Element{{"_id": "SC_9", "label": "Context", "modelType": "SystemContext"}}
	w := open(t, api, state.NewMemStore())
	_, err := w.Select(context.Background(), "A1")
	require.NoError(t, err)

	name, err := w.SaveDiagram(context.Background(), ca.SystemContext, "sc", ca.FormatSVG, "")
	require.NoError(t, err)
	assert.Equal(t, "Context_9.svg", name)
	assert.True(t, w.Vault().Exists("CA Import/Payments/Diagrams/Context_9.svg"))
}

func TestNew_AccountChangeClearsCache(t *testing.T) {
	st := state.NewMemStore()
	api := newFakeAPI()
	w := open(t, api, st)
	_, err := w.Select(context.Background(), "A1")
	require.NoError(t, err)

	other := testSettings(t)
	other.PersonalToken = "someone-else"
	_, err = New(other, api, st)
	require.NoError(t, err)
	id, _ := st.Selected()
	assert.Equal(t, state.SelectNone, id)
}

func TestErrors(t *testing.T) {
	st := state.NewMemStore()
	w := open(t, newFakeAPI(), st)
	require.NoError(t, st.AppendErrors("boom"))
	entries, err := w.Errors()
	require.NoError(t, err)
	assert.Len(t, entries, 1)
	require.NoError(t, w.ClearErrors())
	entries, _ = w.Errors()
	assert.Empty(t, entries)
}

func TestPreview_WritesNothing(t *testing.T) {
	api := newFakeAPI()
	api.elements["sc"] = []ca.Element{{"_id": "SC_9", "label": "Context", "modelType": "SystemContext"}}
	w := open(t, api, state.NewMemStore())
	_, err := w.Select(context.Background(), "A1")
	require.NoError(t, err)

	got, err := w.Preview(context.Background(), ca.SystemContext, "sc", ca.FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, "sc", got.InstanceID)
	require.Len(t, got.Elements, 1)
	assert.Equal(t, "Context", got.Elements[0].Label())
	assert.Equal(t, []byte("<svg/>"), got.Diagram)
	assert.NoError(t, got.DiagramErr)
	assert.False(t, w.Vault().Exists("CA Import"))

	got, err = w.Preview(context.Background(), ca.Risk, "r1", "")
	require.NoError(t, err)
	assert.Nil(t, got.Diagram)
	assert.Equal(t, 1, api.calls["diagram"])
}
