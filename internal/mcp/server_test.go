package mcp_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"testing"

	"casync/internal/ca"
	"casync/internal/config"
	mcpserver "casync/internal/mcp"
	"casync/internal/state"
	"casync/internal/workspace"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

func TestMain(m *testing.M) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	})))
	os.Exit(m.Run())
}

// fakeCA serves a single architecture with two risks.
func fakeCA(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/aggregatesvc/WorkspaceFacadeAPIs/owned/architectures", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"totalNum": 1, "data": []map[string]any{
			{"_id": "A1", "name": "Payments"},
		}})
	})
	mux.HandleFunc("/api/architectures/A1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"archId": "A1", "name": "Payments"})
	})
	mux.HandleFunc("/api/architecturesvc/ArchitectureAPIs/architectures/A1/artifacts/catalog", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"_id": "root", "name": "Risks and issues", "hasContent": false, "child": []map[string]any{
				{"_id": "n1", "artifactType": "assetartifact_risk", "hasContent": true},
			}},
		})
	})
	mux.HandleFunc("/api/architectures/A1/artifacts/instances", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"_id": "r1", "label": "Lock-in"},
			{"_id": "r2", "label": "Latency"},
		})
	})
	mux.HandleFunc("/api/architectures/A1/artifacts/instances/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/architectures/A1/artifacts/instances/")
		if id == "missing" {
			http.Error(w, `{"message":"instance not found"}`, http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"coreInfo": []map[string]any{
			{"_id": "RISK_" + id, "label": "Risk " + id, "modelType": "Risk", "owned": "0"},
		}})
	})
	mux.HandleFunc("/api/architectures/A1/instances/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<svg/>"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T) (*mcpserver.Server, *workspace.Workspace) {
	t.Helper()
	backend := fakeCA(t)
	settings := config.Default()
	settings.BaseURL = backend.URL
	settings.PersonalToken = "pat"
	settings.VaultPath = t.TempDir()
	settings.Normalize()

	client, err := ca.New(settings.BaseURL, settings.PersonalToken, ca.WithHTTPClient(backend.Client()))
	if err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.New(settings, client, state.NewMemStore())
	if err != nil {
		t.Fatal(err)
	}
	return mcpserver.NewServer(ws, "test"), ws
}

func connectInMemory(t *testing.T, ctx context.Context, srv *mcpserver.Server) *sdkmcp.ClientSession {
	t.Helper()
	t1, t2 := sdkmcp.NewInMemoryTransports()
	serverSession, err := srv.MCPServer.Connect(ctx, t1, nil)
	if err != nil {
		t.Fatalf("server.Connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, t2, nil)
	if err != nil {
		t.Fatalf("client.Connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func callTool(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if res.IsError {
		for _, c := range res.Content {
			if tc, ok := c.(*sdkmcp.TextContent); ok {
				t.Fatalf("CallTool(%s) returned error: %s", name, tc.Text)
			}
		}
		t.Fatalf("CallTool(%s) returned error", name)
	}
	result := make(map[string]any)
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			if err := json.Unmarshal([]byte(tc.Text), &result); err != nil {
				t.Fatalf("unmarshal tool result: %v (text: %s)", err, tc.Text)
			}
			return result
		}
	}
	t.Fatalf("no text content in tool result")
	return nil
}

func callToolError(t *testing.T, ctx context.Context, session *sdkmcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if !res.IsError {
		t.Fatalf("CallTool(%s): expected IsError", name)
	}
	for _, c := range res.Content {
		if tc, ok := c.(*sdkmcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestServer_ToolDiscovery(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestServer(t)
	session := connectInMemory(t, ctx, srv)

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	sort.Strings(names)
	want := []string{"get_error_log", "get_instance", "list_architectures", "list_artifacts", "list_instances", "select_architecture", "sync_instances"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("tools = %v, want %v", names, want)
	}
}

func TestServer_SelectListSync(t *testing.T) {
	ctx := context.Background()
	srv, ws := newTestServer(t)
	session := connectInMemory(t, ctx, srv)

	archs := callTool(t, ctx, session, "list_architectures", map[string]any{})
	if archs["total"].(float64) != 1 {
		t.Fatalf("list_architectures = %v", archs)
	}

	sel := callTool(t, ctx, session, "select_architecture", map[string]any{"architecture_id": "A1"})
	if sel["name"] != "Payments" {
		t.Errorf("select_architecture = %v", sel)
	}
	artifacts := sel["artifacts"].([]any)
	if len(artifacts) != 1 || artifacts[0].(map[string]any)["name"] != "Risk" {
		t.Errorf("artifacts = %v", artifacts)
	}

	archs = callTool(t, ctx, session, "list_architectures", map[string]any{})
	first := archs["architectures"].([]any)[0].(map[string]any)
	if first["selected"] != true {
		t.Errorf("selected flag missing: %v", first)
	}

	inst := callTool(t, ctx, session, "list_instances", map[string]any{"artifact_type": "Risk"})
	if got := len(inst["instances"].([]any)); got != 2 {
		t.Fatalf("list_instances returned %d instances", got)
	}

	report := callTool(t, ctx, session, "sync_instances", map[string]any{"artifact_type": "assetartifact_risk"})
	if report["created"].(float64) != 2 {
		t.Errorf("sync_instances = %v", report)
	}
	if !ws.Vault().Exists("CA Import/Payments/Risk/Risk r1_r1.md") {
		t.Error("expected note for r1 in the vault")
	}
}

func TestServer_SyncFailureReachesErrorLog(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestServer(t)
	session := connectInMemory(t, ctx, srv)
	callTool(t, ctx, session, "select_architecture", map[string]any{"architecture_id": "A1"})

	report := callTool(t, ctx, session, "sync_instances", map[string]any{
		"artifact_type": "Risk",
		"instance_ids":  []string{"r1", "missing"},
	})
	if errs, _ := report["errors"].([]any); len(errs) != 1 {
		t.Fatalf("errors = %v", report["errors"])
	}

	log := callTool(t, ctx, session, "get_error_log", map[string]any{"clear": true})
	entries := log["errors"].([]any)
	if len(entries) != 1 || !strings.Contains(entries[0].(map[string]any)["message"].(string), "instance not found") {
		t.Errorf("error log = %v", entries)
	}
	if log["cleared"] != true {
		t.Error("expected cleared=true")
	}
	log = callTool(t, ctx, session, "get_error_log", map[string]any{})
	if len(log["errors"].([]any)) != 0 {
		t.Errorf("log not cleared: %v", log)
	}
}

func TestServer_Errors(t *testing.T) {
	ctx := context.Background()
	srv, _ := newTestServer(t)
	session := connectInMemory(t, ctx, srv)

	if msg := callToolError(t, ctx, session, "list_artifacts", map[string]any{}); !strings.Contains(msg, "no architecture selected") {
		t.Errorf("list_artifacts without selection: %q", msg)
	}
	if msg := callToolError(t, ctx, session, "list_instances", map[string]any{"artifact_type": "Bogus"}); !strings.Contains(msg, "unknown artifact_type") {
		t.Errorf("unknown artifact type: %q", msg)
	}
	if msg := callToolError(t, ctx, session, "select_architecture", map[string]any{"architecture_id": ""}); !strings.Contains(msg, "architecture_id is required") {
		t.Errorf("missing architecture id: %q", msg)
	}
}

func TestServer_GetInstance(t *testing.T) {
	ctx := context.Background()
	srv, ws := newTestServer(t)
	session := connectInMemory(t, ctx, srv)
	callTool(t, ctx, session, "select_architecture", map[string]any{"architecture_id": "A1"})

	got := callTool(t, ctx, session, "get_instance", map[string]any{
		"artifact_type":   "systemcontext",
		"instance_id":     "sc1",
		"include_diagram": true,
	})
	elements := got["elements"].([]any)
	if len(elements) != 1 || elements[0].(map[string]any)["_id"] != "RISK_sc1" {
		t.Errorf("elements = %v", elements)
	}
	if got["diagram_format"] != "svg" || got["diagram_bytes"].(float64) != 6 || got["diagram"] != "<svg/>" {
		t.Errorf("diagram fields = %v", got)
	}
	if ws.Vault().Exists("CA Import") {
		t.Error("get_instance wrote into the vault")
	}

	got = callTool(t, ctx, session, "get_instance", map[string]any{"artifact_type": "Risk", "instance_id": "r1"})
	if _, ok := got["diagram_format"]; ok {
		t.Errorf("risk has no diagram: %v", got)
	}
	if msg := callToolError(t, ctx, session, "get_instance", map[string]any{"artifact_type": "Risk", "instance_id": "missing"}); !strings.Contains(msg, "instance not found") {
		t.Errorf("missing instance: %q", msg)
	}
	if msg := callToolError(t, ctx, session, "get_instance", map[string]any{"artifact_type": "Risk", "instance_id": "r1", "format": "gif"}); !strings.Contains(msg, "gif") {
		t.Errorf("bad format: %q", msg)
	}
}
