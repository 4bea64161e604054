package ca

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// GetDiagram returns the diagram of an artifact instance as SVG text or PNG
// bytes. Artifact types without a diagram are refused with ErrNotDiagram.
func (c *Client) GetDiagram(ctx context.Context, archID string, t ArtifactType, instanceID string, format DiagramFormat) ([]byte, error) {
	const op = "get diagram"
	if err := required(op, "archID", archID, "artifactType", string(t), "instanceID", instanceID); err != nil {
		return nil, err
	}
	if !HasDiagram(t) {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrNotDiagram, t)
	}
	if _, err := ParseDiagramFormat(string(format)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	q := url.Values{"artifactType": {string(t)}, "format": {string(format)}}
	u := c.endpoint("/api/architectures/"+url.PathEscape(archID)+"/instances/"+url.PathEscape(instanceID)+"/diagram", q)

	return c.do(ctx, http.MethodGet, u, op, false)
}
