// Package mcp exposes a workspace as Model Context Protocol tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"sync"
	"time"

	"casync/internal/ca"
	"casync/internal/display"
	"casync/internal/logging"
	"casync/internal/workspace"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP SDK server. Tool calls are serialized: they share
// one state store and write into one vault.
type Server struct {
	MCPServer *sdkmcp.Server

	mu sync.Mutex
	ws *workspace.Workspace
}

// NewServer creates an MCP server operating on ws.
func NewServer(ws *workspace.Workspace, version string) *Server {
	if version == "" {
		version = "dev"
	}
	s := &Server{ws: ws}
	s.MCPServer = sdkmcp.NewServer(
		&sdkmcp.Implementation{Name: "casync", Version: version},
		nil,
	)
	s.registerTools()
	return s
}

// Run serves on stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_architectures",
		Description: "List the Cognitive Architect architectures visible to the configured token. Cached; pass refresh to fetch again.",
	}, s.handleListArchitectures)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "select_architecture",
		Description: "Select the architecture that later tools operate on. Use \"none\" to clear the selection.",
	}, s.handleSelectArchitecture)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_artifacts",
		Description: "List the artifact types that have content in the selected architecture.",
	}, s.handleListArtifacts)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "list_instances",
		Description: "List the instances of one artifact type in the selected architecture.",
	}, s.handleListInstances)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_instance",
		Description: "Fetch the elements and diagram of one instance without writing to the vault.",
	}, s.handleGetInstance)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "sync_instances",
		Description: "Write artifact instances (notes and diagrams) into the vault. Without instance_ids every instance of the type is synced.",
	}, s.handleSyncInstances)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "get_error_log",
		Description: "Return the persistent sync error log; pass clear to empty it afterwards.",
	}, s.handleGetErrorLog)
}

// --- Tool input/output types ---

type listArchitecturesInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"fetch the list again instead of using the cache"`
}

type architectureOut struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Visibility string `json:"visibility"`
	Selected   bool   `json:"selected,omitempty"`
}

type listArchitecturesOutput struct {
	Architectures []architectureOut `json:"architectures"`
	Total         int               `json:"total"`
}

type selectArchitectureInput struct {
	ArchitectureID string `json:"architecture_id" jsonschema:"architecture ID from list_architectures, or none"`
}

type selectArchitectureOutput struct {
	ArchitectureID string        `json:"architecture_id"`
	Name           string        `json:"name,omitempty"`
	Artifacts      []artifactOut `json:"artifacts,omitempty"`
}

type listArtifactsInput struct {
	Refresh bool `json:"refresh,omitempty" jsonschema:"fetch the catalog again instead of using the cache"`
}

type artifactOut struct {
	ArtifactType   string `json:"artifact_type"`
	Name           string `json:"name"`
	ArtifactTypeID string `json:"artifact_type_id,omitempty"`
	HasDiagram     bool   `json:"has_diagram"`
}

type listArtifactsOutput struct {
	Artifacts []artifactOut `json:"artifacts"`
}

type listInstancesInput struct {
	ArtifactType   string `json:"artifact_type" jsonschema:"artifact type code (assetartifact_risk) or name (Risk)"`
	ArtifactTypeID string `json:"artifact_type_id,omitempty" jsonschema:"narrow Notes/RACI/Sizing instances to one artifact type ID"`
	Refresh        bool   `json:"refresh,omitempty" jsonschema:"fetch the list again instead of using the cache"`
}

type instanceOut struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type listInstancesOutput struct {
	ArtifactType string        `json:"artifact_type"`
	Instances    []instanceOut `json:"instances"`
}

type getInstanceInput struct {
	ArtifactType   string `json:"artifact_type" jsonschema:"artifact type code or name"`
	InstanceID     string `json:"instance_id" jsonschema:"instance ID from list_instances"`
	Format         string `json:"format,omitempty" jsonschema:"diagram format, svg or png; defaults to the configured format"`
	IncludeDiagram bool   `json:"include_diagram,omitempty" jsonschema:"return the SVG text of the diagram"`
}

type getInstanceOutput struct {
	ArtifactType  string       `json:"artifact_type"`
	InstanceID    string       `json:"instance_id"`
	Elements      []ca.Element `json:"elements"`
	DiagramFormat string       `json:"diagram_format,omitempty"`
	DiagramBytes  int          `json:"diagram_bytes,omitempty"`
	Diagram       string       `json:"diagram,omitempty"`
	DiagramError  string       `json:"diagram_error,omitempty"`
}

type syncInstancesInput struct {
	ArtifactType   string   `json:"artifact_type" jsonschema:"artifact type code or name"`
	InstanceIDs    []string `json:"instance_ids,omitempty" jsonschema:"instances to sync; empty syncs all"`
	ArtifactTypeID string   `json:"artifact_type_id,omitempty" jsonschema:"when syncing all, narrow to this artifact type ID"`
}

type syncInstancesOutput struct {
	ArtifactType string   `json:"artifact_type"`
	Requested    int      `json:"requested"`
	Retrieved    int      `json:"retrieved"`
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	Unchanged    int      `json:"unchanged"`
	Diagrams     int      `json:"diagrams"`
	Errors       []string `json:"errors,omitempty"`
}

type getErrorLogInput struct {
	Clear bool `json:"clear,omitempty" jsonschema:"empty the log after reading it"`
}

type errorOut struct {
	Message string `json:"message"`
	At      string `json:"at"`
}

type getErrorLogOutput struct {
	Errors  []errorOut `json:"errors"`
	Cleared bool       `json:"cleared,omitempty"`
}

// --- Tool handlers ---

func (s *Server) handleListArchitectures(ctx context.Context, _ *sdkmcp.CallToolRequest, input listArchitecturesInput) (*sdkmcp.CallToolResult, listArchitecturesOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.ws.Architectures(ctx, input.Refresh)
	if err != nil {
		return nil, listArchitecturesOutput{}, fmt.Errorf("list_architectures: %w", err)
	}
	selected, _ := s.ws.Selected()
	out := listArchitecturesOutput{Architectures: make([]architectureOut, 0, len(list)), Total: len(list)}
	for _, a := range list {
		out.Architectures = append(out.Architectures, architectureOut{
			ID:         a.ID,
			Name:       a.Name,
			Visibility: display.Visibility(a.Visibility),
			Selected:   a.ID == selected,
		})
	}
	return nil, out, nil
}

func (s *Server) handleSelectArchitecture(ctx context.Context, _ *sdkmcp.CallToolRequest, input selectArchitectureInput) (*sdkmcp.CallToolResult, selectArchitectureOutput, error) {
	if input.ArchitectureID == "" {
		return nil, selectArchitectureOutput{}, fmt.Errorf("architecture_id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sel, err := s.ws.Select(ctx, input.ArchitectureID)
	if err != nil {
		return nil, selectArchitectureOutput{}, fmt.Errorf("select_architecture: %w", err)
	}
	out := selectArchitectureOutput{ArchitectureID: sel.ID, Artifacts: artifactsOut(sel.Artifacts)}
	if sel.Info != nil {
		out.Name = sel.Info.Name
	}
	logging.New("mcp").Info("architecture selected", "id", sel.ID)
	return nil, out, nil
}

func (s *Server) handleListArtifacts(ctx context.Context, _ *sdkmcp.CallToolRequest, input listArtifactsInput) (*sdkmcp.CallToolResult, listArtifactsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nodes, err := s.ws.Artifacts(ctx, input.Refresh)
	if err != nil {
		return nil, listArtifactsOutput{}, fmt.Errorf("list_artifacts: %w", err)
	}
	return nil, listArtifactsOutput{Artifacts: artifactsOut(nodes)}, nil
}

func (s *Server) handleListInstances(ctx context.Context, _ *sdkmcp.CallToolRequest, input listInstancesInput) (*sdkmcp.CallToolResult, listInstancesOutput, error) {
	t, err := parseArtifact(input.ArtifactType)
	if err != nil {
		return nil, listInstancesOutput{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.ws.Instances(ctx, t, input.ArtifactTypeID, input.Refresh)
	if err != nil {
		return nil, listInstancesOutput{}, fmt.Errorf("list_instances: %w", err)
	}
	out := listInstancesOutput{ArtifactType: string(t), Instances: make([]instanceOut, 0, len(list))}
	for _, inst := range list {
		out.Instances = append(out.Instances, instanceOut{ID: inst.ID, Title: inst.Title()})
	}
	return nil, out, nil
}

func (s *Server) handleGetInstance(ctx context.Context, _ *sdkmcp.CallToolRequest, input getInstanceInput) (*sdkmcp.CallToolResult, getInstanceOutput, error) {
	t, err := parseArtifact(input.ArtifactType)
	if err != nil {
		return nil, getInstanceOutput{}, err
	}
	if input.InstanceID == "" {
		return nil, getInstanceOutput{}, fmt.Errorf("instance_id is required")
	}
	var format ca.DiagramFormat
	if input.Format != "" {
		if format, err = ca.ParseDiagramFormat(input.Format); err != nil {
			return nil, getInstanceOutput{}, err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if format == "" {
		format = ca.DiagramFormat(s.ws.Settings().DiagramFormat)
	}
	r, err := s.ws.Preview(ctx, t, input.InstanceID, format)
	if err != nil {
		return nil, getInstanceOutput{}, fmt.Errorf("get_instance: %w", err)
	}
	out := getInstanceOutput{ArtifactType: string(t), InstanceID: r.InstanceID, Elements: r.Elements}
	if out.Elements == nil {
		out.Elements = []ca.Element{}
	}
	switch {
	case r.DiagramErr != nil:
		out.DiagramError = r.DiagramErr.Error()
	case r.Diagram != nil:
		out.DiagramFormat = string(format)
		out.DiagramBytes = len(r.Diagram)
		if input.IncludeDiagram && format == ca.FormatSVG {
			out.Diagram = string(r.Diagram)
		}
	}
	return nil, out, nil
}

func (s *Server) handleSyncInstances(ctx context.Context, _ *sdkmcp.CallToolRequest, input syncInstancesInput) (*sdkmcp.CallToolResult, syncInstancesOutput, error) {
	t, err := parseArtifact(input.ArtifactType)
	if err != nil {
		return nil, syncInstancesOutput{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.ws.Sync(ctx, t, input.InstanceIDs, input.ArtifactTypeID)
	if err != nil {
		return nil, syncInstancesOutput{}, fmt.Errorf("sync_instances: %w", err)
	}
	return nil, syncInstancesOutput{
		ArtifactType: string(t),
		Requested:    report.Requested,
		Retrieved:    report.Retrieved,
		Created:      report.Created,
		Updated:      report.Updated,
		Unchanged:    report.Unchanged,
		Diagrams:     report.Diagrams,
		Errors:       report.Errors,
	}, nil
}

func (s *Server) handleGetErrorLog(_ context.Context, _ *sdkmcp.CallToolRequest, input getErrorLogInput) (*sdkmcp.CallToolResult, getErrorLogOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.ws.Errors()
	if err != nil {
		return nil, getErrorLogOutput{}, fmt.Errorf("get_error_log: %w", err)
	}
	out := getErrorLogOutput{Errors: make([]errorOut, 0, len(entries))}
	for _, e := range entries {
		out.Errors = append(out.Errors, errorOut{Message: e.Message, At: e.At.Format(time.RFC3339)})
	}
	if input.Clear {
		if err := s.ws.ClearErrors(); err != nil {
			return nil, getErrorLogOutput{}, fmt.Errorf("get_error_log: %w", err)
		}
		out.Cleared = true
	}
	return nil, out, nil
}

func parseArtifact(s string) (ca.ArtifactType, error) {
	if s == "" {
		return "", fmt.Errorf("artifact_type is required")
	}
	t, ok := display.ParseArtifact(s)
	if !ok {
		return "", fmt.Errorf("unknown artifact_type %q", s)
	}
	return t, nil
}

func artifactsOut(nodes []ca.CatalogNode) []artifactOut {
	out := make([]artifactOut, 0, len(nodes))
	for _, n := range nodes {
		name := display.ArtifactName(n.ArtifactType)
		if name == "" {
			name = n.Name
		}
		out = append(out, artifactOut{
			ArtifactType:   string(n.ArtifactType),
			Name:           name,
			ArtifactTypeID: n.ArtifactTypeID,
			HasDiagram:     ca.HasDiagram(n.ArtifactType),
		})
	}
	return out
}
