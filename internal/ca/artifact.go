package ca

// ArtifactType identifies a kind of artifact, e.g. "assetartifact_systemcontext".
type ArtifactType string

const (
	ArchitecturePrinciples   ArtifactType = "assetartifact_architecture_principles"
	ArchitectureDecision     ArtifactType = "assetartifact_architecturedecision"
	OverviewServices         ArtifactType = "assetartifact_architectureoverview_aodservice"
	OverviewITSystem         ArtifactType = "assetartifact_architectureoverview_itsystem"
	OverviewEnterprise       ArtifactType = "assetartifact_architectureoverview_enterprise"
	OverviewUsageScenario    ArtifactType = "assetartifact_architectureoverview_usagescenario"
	Assumption               ArtifactType = "assetartifact_assumption"
	BusinessChallenge        ArtifactType = "assetartifact_businesschallenge"
	ComponentDynamicView     ArtifactType = "assetartifact_componentmodel_dynamicview"
	ComponentStaticView      ArtifactType = "assetartifact_componentmodel_staticview"
	Dependency               ArtifactType = "assetartifact_dependency"
	ExecutiveSummary         ArtifactType = "assetartifact_executivesummary"
	FunctionalRequirement    ArtifactType = "assetartifact_functionalrequirement"
	Issue                    ArtifactType = "assetartifact_issue"
	LogicalDataModel         ArtifactType = "assetartifact_logical_datamodel"
	NonFunctionalRequirement ArtifactType = "assetartifact_nonfunctionalrequirement"
	Notes                    ArtifactType = "assetartifact_notes"
	LogicalOperational       ArtifactType = "assetartifact_operationalmodel_logicaloperational"
	PhysicalOperational      ArtifactType = "assetartifact_operationalmodel_physicaloperational"
	Risk                     ArtifactType = "assetartifact_risk"
	SystemContext            ArtifactType = "assetartifact_systemcontext"
	UseCaseDiagram           ArtifactType = "assetartifact_usecase_ucdiagram"
	UseCaseText              ArtifactType = "assetartifact_usecase_uctext"
)

// DiagramArtifacts lists the artifact types that have a diagram.
var DiagramArtifacts = []ArtifactType{
	SystemContext,
	UseCaseDiagram,
	OverviewServices,
	OverviewEnterprise,
	OverviewITSystem,
	OverviewUsageScenario,
	ComponentStaticView,
	ComponentDynamicView,
	LogicalOperational,
	PhysicalOperational,
	LogicalDataModel,
}

// TextArtifacts lists the artifact types that carry text. Every diagram
// artifact also carries text.
var TextArtifacts = append([]ArtifactType{
	ExecutiveSummary,
	BusinessChallenge,
	UseCaseText,
	FunctionalRequirement,
	NonFunctionalRequirement,
	ArchitectureDecision,
	Risk,
	Assumption,
	Issue,
	Dependency,
	ArchitecturePrinciples,
	Notes,
}, DiagramArtifacts...)

// HasDiagram reports whether instances of t have a diagram.
func HasDiagram(t ArtifactType) bool { return contains(DiagramArtifacts, t) }

// HasText reports whether instances of t carry text.
func HasText(t ArtifactType) bool { return contains(TextArtifacts, t) }

func contains(set []ArtifactType, t ArtifactType) bool {
	for _, s := range set {
		if s == t {
			return true
		}
	}
	return false
}
