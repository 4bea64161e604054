package ca

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func ids(nodes []CatalogNode) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestFilterWithContent(t *testing.T) {
	tests := []struct {
		name string
		in   []CatalogNode
		want []string
	}{
		{"nil", nil, []string{}},
		{"flat", []CatalogNode{{ID: "a", HasContent: true}, {ID: "b"}, {ID: "c", HasContent: true}}, []string{"a", "c"}},
		{
			"children before parent",
			[]CatalogNode{{
				ID: "p", HasContent: true,
				Child: []CatalogNode{{ID: "c1", HasContent: true}, {ID: "c2", HasContent: true}},
			}},
			[]string{"c1", "c2", "p"},
		},
		{
			"deep nesting",
			[]CatalogNode{
				{ID: "root", Child: []CatalogNode{
					{ID: "mid", Child: []CatalogNode{{ID: "leaf", HasContent: true}}},
					{ID: "mid2", HasContent: true},
				}},
				{ID: "last", HasContent: true},
			},
			[]string{"leaf", "mid2", "last"},
		},
		{"nothing flagged", []CatalogNode{{ID: "a", Child: []CatalogNode{{ID: "b"}}}}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(FilterWithContent(tc.in))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilterWithContent_KeepsChildren(t *testing.T) {
	in := []CatalogNode{{ID: "p", HasContent: true, Child: []CatalogNode{{ID: "c"}}}}
	got := FilterWithContent(in)
	if len(got) != 1 || len(got[0].Child) != 1 {
		t.Errorf("parent must keep its children: %+v", got)
	}
}

func TestFlag_Unmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`"true"`, true, false},
		{`"false"`, false, false},
		{`null`, false, false},
		{`""`, false, false},
		{`"maybe"`, false, true},
	}
	for _, tc := range tests {
		var f Flag
		err := json.Unmarshal([]byte(tc.in), &f)
		if (err != nil) != tc.wantErr {
			t.Errorf("Unmarshal(%s) err = %v, wantErr %v", tc.in, err, tc.wantErr)
			continue
		}
		if bool(f) != tc.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tc.in, f, tc.want)
		}
	}
}

func TestHasDiagram(t *testing.T) {
	if !HasDiagram(SystemContext) || !HasDiagram(LogicalDataModel) {
		t.Error("diagram artifacts not recognised")
	}
	if HasDiagram(FunctionalRequirement) || HasDiagram(Notes) {
		t.Error("text-only artifacts reported as diagrams")
	}
	for _, d := range DiagramArtifacts {
		if !HasText(d) {
			t.Errorf("diagram artifact %s should also carry text", d)
		}
	}
}

func TestElement_String(t *testing.T) {
	e := Element{"_id": "x_1", "count": float64(3), "flag": true, "owned": "-1"}
	if e.ID() != "x_1" || e.String("count") != "3" || e.String("flag") != "true" || e.String("missing") != "" {
		t.Errorf("unexpected accessors: %q %q %q", e.ID(), e.String("count"), e.String("flag"))
	}
	if e.Owned() {
		t.Error("owned -1 must report not owned")
	}
}

func TestFilterInstances(t *testing.T) {
	tagged := []InstanceSummary{
		{ID: "n1", ArtifactTypeID: "raci"},
		{ID: "n2", ArtifactTypeID: "notes"},
		{ID: "n3", ArtifactTypeID: "raci"},
	}
	got := FilterInstances(tagged, "raci")
	if len(got) != 2 || got[0].ID != "n1" || got[1].ID != "n3" {
		t.Errorf("FilterInstances(raci) = %+v", got)
	}
	if got := FilterInstances(tagged, ""); len(got) != 3 {
		t.Errorf("empty type id must not filter, got %d", len(got))
	}
	untagged := []InstanceSummary{{ID: "r1"}, {ID: "r2", ArtifactTypeID: "x"}}
	if got := FilterInstances(untagged, "x"); len(got) != 2 {
		t.Errorf("first instance without the field disables filtering, got %d", len(got))
	}
	if got := FilterInstances(nil, "x"); got == nil || len(got) != 0 {
		t.Errorf("nil input = %#v, want empty slice", got)
	}
}

func TestFindArtifact(t *testing.T) {
	nodes := []CatalogNode{{ID: "n1", ArtifactType: Risk}, {ID: "n2", ArtifactType: SystemContext}}
	n, ok := FindArtifact(nodes, SystemContext)
	if !ok || n.ID != "n2" {
		t.Errorf("FindArtifact(SystemContext) = %+v, %v", n, ok)
	}
	if _, ok := FindArtifact(nodes, Assumption); ok {
		t.Error("FindArtifact(Assumption) found a node")
	}
}

func TestFindArchitecture(t *testing.T) {
	list := []Architecture{{ID: "A1", Name: "Payments"}, {ID: "A2", Name: "Ledger"}}
	a, err := FindArchitecture(list, "A2")
	if err != nil || a.Name != "Ledger" {
		t.Errorf("FindArchitecture(A2) = %+v, %v", a, err)
	}
	if _, err := FindArchitecture(list, "A9"); err == nil || !strings.Contains(err.Error(), `"A9"`) {
		t.Errorf("FindArchitecture(A9) error = %v", err)
	}
}

func TestErrorPredicates(t *testing.T) {
	unauthorized := fmt.Errorf("listing: %w", newAPIError("list architectures", http.StatusUnauthorized, "bad token"))
	forbidden := newAPIError("get architecture", http.StatusForbidden, "no access")
	if !IsUnauthorized(unauthorized) || IsForbidden(unauthorized) {
		t.Error("wrapped 401 not recognised")
	}
	if !IsForbidden(forbidden) || IsUnauthorized(forbidden) || IsNotFound(forbidden) {
		t.Error("403 not recognised")
	}
	if IsForbidden(errors.New("plain")) {
		t.Error("plain error matched")
	}
}
