package ca

import (
	"context"
	"net/http"
	"net/url"
)

// ListInstances returns the instances of an artifact type.
//
// Notes, RACI and Sizing instances all share the Notes artifact type and are
// told apart by artifactTypeId. When artifactTypeID is set and the response
// carries that field, only matching instances are returned.
func (c *Client) ListInstances(ctx context.Context, archID string, t ArtifactType, artifactTypeID string) ([]InstanceSummary, error) {
	const op = "list artifact instances"
	if err := required(op, "archID", archID, "artifactType", string(t)); err != nil {
		return nil, err
	}
	q := url.Values{"artifactType": {string(t)}}
	u := c.endpoint("/api/architectures/"+url.PathEscape(archID)+"/artifacts/instances", q)

	var list []InstanceSummary
	if err := c.doJSON(ctx, http.MethodGet, u, op, &list); err != nil {
		return nil, err
	}
	return FilterInstances(list, artifactTypeID), nil
}

// FilterInstances keeps the instances with the given artifactTypeId. The
// first instance is representative: when it lacks the field, or
// artifactTypeID is empty, list is returned unfiltered. The result is
// never nil.
func FilterInstances(list []InstanceSummary, artifactTypeID string) []InstanceSummary {
	if len(list) == 0 {
		return []InstanceSummary{}
	}
	if artifactTypeID == "" || list[0].ArtifactTypeID == "" {
		return list
	}
	filtered := make([]InstanceSummary, 0, len(list))
	for _, inst := range list {
		if inst.ArtifactTypeID == artifactTypeID {
			filtered = append(filtered, inst)
		}
	}
	return filtered
}

// GetInstanceElements returns the model elements of one artifact instance.
// The first element describes the instance itself.
func (c *Client) GetInstanceElements(ctx context.Context, archID string, t ArtifactType, instanceID string) ([]Element, error) {
	const op = "get artifact instance"
	if err := required(op, "archID", archID, "artifactType", string(t), "instanceID", instanceID); err != nil {
		return nil, err
	}
	q := url.Values{"artifactType": {string(t)}}
	u := c.endpoint("/api/architectures/"+url.PathEscape(archID)+"/artifacts/instances/"+url.PathEscape(instanceID), q)

	var resp instanceResponse
	if err := c.doJSON(ctx, http.MethodPost, u, op, &resp); err != nil {
		return nil, err
	}
	if resp.CoreInfo == nil {
		return []Element{}, nil
	}
	return resp.CoreInfo, nil
}
