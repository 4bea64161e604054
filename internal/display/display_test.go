package display

import (
	"testing"

	"casync/internal/ca"
)

func TestArtifactName(t *testing.T) {
	cases := []struct {
		code ca.ArtifactType
		want string
	}{
		{ca.SystemContext, "System Context"},
		{ca.FunctionalRequirement, "Functional Requirement"},
		{ca.PhysicalOperational, "Prescribed Operational View"},
		{ca.OverviewServices, "Services View"},
		{"assetartifact_unknown", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ArtifactName(tc.code); got != tc.want {
			t.Errorf("ArtifactName(%q) = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestArtifactName_CoversAllTextArtifacts(t *testing.T) {
	for _, a := range ca.TextArtifacts {
		if ArtifactName(a) == "" {
			t.Errorf("no display name for %s", a)
		}
	}
}

func TestArtifactLabel(t *testing.T) {
	if got := ArtifactLabel(ca.Risk); got != "Risk" {
		t.Errorf("got %q", got)
	}
	if got := ArtifactLabel("custom"); got != "custom" {
		t.Errorf("got %q", got)
	}
}

func TestArtifactWithCode(t *testing.T) {
	if got := ArtifactWithCode(ca.Issue); got != "Issue (assetartifact_issue)" {
		t.Errorf("got %q", got)
	}
	if got := ArtifactWithCode("x"); got != "x" {
		t.Errorf("got %q", got)
	}
}

func TestParseArtifact(t *testing.T) {
	cases := []struct {
		in     string
		want   ca.ArtifactType
		wantOK bool
	}{
		{"assetartifact_systemcontext", ca.SystemContext, true},
		{"systemcontext", ca.SystemContext, true},
		{"SystemContext", ca.SystemContext, true},
		{"system context", ca.SystemContext, true},
		{"Use Case Text", ca.UseCaseText, true},
		{"nope", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseArtifact(tc.in)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("ParseArtifact(%q) = %q, %v; want %q, %v", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestVisibility(t *testing.T) {
	if got := Visibility(""); got != "Private" {
		t.Errorf("got %q", got)
	}
	if got := Visibility("COLLABORATION"); got != "Collaboration" {
		t.Errorf("got %q", got)
	}
	if got := Visibility("team"); got != "team" {
		t.Errorf("got %q", got)
	}
}

func TestSelection(t *testing.T) {
	if got := Selection("none", "none"); got != "(none)" {
		t.Errorf("got %q", got)
	}
	if got := Selection("arch_1", "none"); got != "arch_1" {
		t.Errorf("got %q", got)
	}
}
