// Package display provides human-readable names for machine codes.
//
// Rule: code is for machines, words are for humans.
// Use these functions in CLI output, markdown notes, logs, and docs.
// Keep raw codes for JSON fields, front matter, and equality comparisons.
package display

import (
	"strings"

	"casync/internal/ca"
)

// --- Artifact Types ---

var artifactNames = map[ca.ArtifactType]string{
	ca.ArchitecturePrinciples:   "Architectural Principles",
	ca.ArchitectureDecision:     "Architectural Decision",
	ca.OverviewServices:         "Services View",
	ca.OverviewITSystem:         "IT System View",
	ca.OverviewEnterprise:       "Architecture Overview - Enterprise View",
	ca.OverviewUsageScenario:    "Architecture Overview - Usage Scenario",
	ca.Assumption:               "Assumption",
	ca.BusinessChallenge:        "Business Challenge",
	ca.ComponentDynamicView:     "Component Model - Dynamic View",
	ca.ComponentStaticView:      "Component Model - Static View",
	ca.Dependency:               "Dependency",
	ca.ExecutiveSummary:         "Executive Summary",
	ca.FunctionalRequirement:    "Functional Requirement",
	ca.Issue:                    "Issue",
	ca.LogicalDataModel:         "Logical Data Model",
	ca.NonFunctionalRequirement: "Non Functional Requirement",
	ca.Notes:                    "Notes",
	ca.LogicalOperational:       "Logical Operational View",
	ca.PhysicalOperational:      "Prescribed Operational View",
	ca.Risk:                     "Risk",
	ca.SystemContext:            "System Context",
	ca.UseCaseDiagram:           "Use Case Diagram",
	ca.UseCaseText:              "Use Case Text",
}

// ArtifactName returns the human-readable name for an artifact type.
// Unknown types return "".
func ArtifactName(t ca.ArtifactType) string {
	return artifactNames[t]
}

// ArtifactLabel returns the human-readable name, falling back to the raw code.
func ArtifactLabel(t ca.ArtifactType) string {
	if name, ok := artifactNames[t]; ok {
		return name
	}
	return string(t)
}

// ArtifactWithCode returns "System Context (assetartifact_systemcontext)" format.
func ArtifactWithCode(t ca.ArtifactType) string {
	if name, ok := artifactNames[t]; ok {
		return name + " (" + string(t) + ")"
	}
	return string(t)
}

// ParseArtifact resolves user input to an artifact type. It accepts the raw
// code, the code without the "assetartifact_" prefix, or the human name
// (case-insensitive).
func ParseArtifact(s string) (ca.ArtifactType, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if _, ok := artifactNames[ca.ArtifactType(s)]; ok {
		return ca.ArtifactType(s), true
	}
	if t := ca.ArtifactType("assetartifact_" + strings.ToLower(s)); artifactNames[t] != "" {
		return t, true
	}
	for t, name := range artifactNames {
		if strings.EqualFold(name, s) {
			return t, true
		}
	}
	return "", false
}

// --- Architecture visibility ---

var visibility = map[string]string{
	"private":       "Private",
	"collaboration": "Collaboration",
	"public":        "Public",
}

// Visibility returns the human-readable visibility of an architecture.
// Unknown values are returned as-is; empty means private.
func Visibility(v string) string {
	if v == "" {
		return visibility["private"]
	}
	if name, ok := visibility[strings.ToLower(v)]; ok {
		return name
	}
	return v
}

// Selection renders the selected architecture ID for humans.
func Selection(id, none string) string {
	if id == "" || id == none {
		return "(none)"
	}
	return id
}
