package ca

import (
	"context"
	"net/http"
	"net/url"
)

// GetCatalog returns the full artifact catalog tree of an architecture,
// including artifact types that have no content yet.
func (c *Client) GetCatalog(ctx context.Context, archID string) ([]CatalogNode, error) {
	const op = "get artifact catalog"
	if err := required(op, "archID", archID); err != nil {
		return nil, err
	}
	u := c.endpoint("/api/architecturesvc/ArchitectureAPIs/architectures/"+url.PathEscape(archID)+"/artifacts/catalog", nil)

	var nodes []CatalogNode
	if err := c.doJSON(ctx, http.MethodGet, u, op, &nodes); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ListArtifacts returns the artifact types of an architecture that have
// content, flattened from the catalog tree.
func (c *Client) ListArtifacts(ctx context.Context, archID string) ([]CatalogNode, error) {
	nodes, err := c.GetCatalog(ctx, archID)
	if err != nil {
		return nil, err
	}
	return FilterWithContent(nodes), nil
}
