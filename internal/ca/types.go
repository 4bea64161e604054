package ca

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// --- Response types (hand-written; the published OpenAPI document is incomplete) ---

// NamedRef is the {name, _id} pair used for tags, clients, industries and technologies.
type NamedRef struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

// Architecture is one entry of the architecture list.
type Architecture struct {
	ID               string     `json:"_id"`
	Name             string     `json:"name"`
	Type             string     `json:"type,omitempty"`
	Status           string     `json:"status,omitempty"`
	Visibility       string     `json:"archVisibility,omitempty"`
	IsAsIs           bool       `json:"isAsIs,omitempty"`
	IsDiscoverable   bool       `json:"isDiscoverable,omitempty"`
	Created          string     `json:"created,omitempty"`
	LastModified     string     `json:"lastModified,omitempty"`
	ExecutiveSummary string     `json:"executiveSummary,omitempty"`
	Tags             []NamedRef `json:"tag,omitempty"`
	Industries       []NamedRef `json:"industry,omitempty"`
	Technologies     []NamedRef `json:"technology,omitempty"`
	Clients          []NamedRef `json:"client,omitempty"`
	Team             any        `json:"team,omitempty"`
}

// architectureList is the envelope returned by both list endpoints.
type architectureList struct {
	TotalNum int            `json:"totalNum"`
	Data     []Architecture `json:"data"`
}

// ArchitectureInfo is the metadata of a single architecture.
// Fields the client does not model are kept in Extra.
type ArchitectureInfo struct {
	ArchID       string         `json:"archId"`
	Name         string         `json:"name"`
	Description  string         `json:"description,omitempty"`
	Owner        string         `json:"owner,omitempty"`
	LastModified string         `json:"lastModified,omitempty"`
	Extra        map[string]any `json:"-"`
}

// UnmarshalJSON decodes the modelled fields and keeps the rest in Extra.
func (a *ArchitectureInfo) UnmarshalJSON(data []byte) error {
	type plain ArchitectureInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range []string{"archId", "name", "description", "owner", "lastModified"} {
		delete(all, k)
	}
	if len(all) > 0 {
		p.Extra = all
	}
	*a = ArchitectureInfo(p)
	return nil
}

// MarshalJSON writes the modelled fields and Extra side by side.
func (a ArchitectureInfo) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(a.Extra)+5)
	for k, v := range a.Extra {
		out[k] = v
	}
	out["archId"] = a.ArchID
	out["name"] = a.Name
	if a.Description != "" {
		out["description"] = a.Description
	}
	if a.Owner != "" {
		out["owner"] = a.Owner
	}
	if a.LastModified != "" {
		out["lastModified"] = a.LastModified
	}
	return json.Marshal(out)
}

// Flag is a boolean that also accepts the strings "true" and "false".
// The catalog endpoint is documented with hasContent as a string but
// usually sends a JSON boolean.
type Flag bool

// UnmarshalJSON accepts true, false, "true", "false" and null.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = false
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		*f = false
		return nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("unmarshal flag %s: %w", data, err)
	}
	*f = Flag(v)
	return nil
}

// CatalogNode is one artifact-type node of the nested catalog tree.
type CatalogNode struct {
	ID             string        `json:"_id"`
	ArchID         string        `json:"archId,omitempty"`
	ArtifactType   ArtifactType  `json:"artifactType,omitempty"`
	ArtifactTypeID string        `json:"artifactTypeId,omitempty"`
	Name           string        `json:"name,omitempty"`
	HasContent     Flag          `json:"hasContent,omitempty"`
	Child          []CatalogNode `json:"child,omitempty"`
}

// InstanceSummary is one entry of the instance list of an artifact type.
type InstanceSummary struct {
	ID             string       `json:"_id"`
	Label          string       `json:"label,omitempty"`
	Name           string       `json:"name,omitempty"`
	ArtifactType   ArtifactType `json:"artifactType,omitempty"`
	ArtifactTypeID string       `json:"artifactTypeId,omitempty"`
	LastModified   string       `json:"lastModified,omitempty"`
}

// Title returns the label, the name, or the ID, whichever is set first.
func (s InstanceSummary) Title() string {
	switch {
	case s.Label != "":
		return s.Label
	case s.Name != "":
		return s.Name
	default:
		return s.ID
	}
}

// instanceResponse is the body of the instance details endpoint.
type instanceResponse struct {
	CoreInfo []Element `json:"coreInfo"`
}

// Element is one model element of an artifact instance. The service sends
// a flat object whose keys depend on the model type, so it is kept as a map.
type Element map[string]any

// Well-known element keys.
const (
	KeyID        = "_id"
	KeyModelType = "modelType"
	KeyLabel     = "label"
	KeyOwned     = "owned"
)

// String returns the value for key rendered as a string, or "" if absent.
func (e Element) String(key string) string {
	v, ok := e[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// ID returns the element's _id.
func (e Element) ID() string { return e.String(KeyID) }

// ModelType returns the element's modelType.
func (e Element) ModelType() string { return e.String(KeyModelType) }

// Label returns the element's label.
func (e Element) Label() string { return e.String(KeyLabel) }

// Owned reports whether the element is used by the artifact it was fetched
// with. The service marks unused elements with owned "-1".
func (e Element) Owned() bool { return e.String(KeyOwned) != "-1" }

// Has reports whether key is present.
func (e Element) Has(key string) bool {
	_, ok := e[key]
	return ok
}

// DiagramFormat is the image format of a diagram.
type DiagramFormat string

const (
	FormatSVG DiagramFormat = "svg"
	FormatPNG DiagramFormat = "png"
)

// ParseDiagramFormat validates a format name.
func ParseDiagramFormat(s string) (DiagramFormat, error) {
	switch DiagramFormat(strings.ToLower(s)) {
	case FormatSVG:
		return FormatSVG, nil
	case FormatPNG:
		return FormatPNG, nil
	}
	return "", fmt.Errorf("%w: diagram format %q (want svg or png)", ErrInvalidArgument, s)
}
