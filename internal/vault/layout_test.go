package vault

import (
	"testing"

	"casync/internal/ca"

	"github.com/stretchr/testify/assert"
)

func TestLayout_Folders(t *testing.T) {
	l := Layout{BaseFolder: "CA Import", DiagramsFolder: "Diagrams", ArchName: "Payments", ArchID: "A1"}
	assert.Equal(t, "CA Import/Payments", l.ArchitectureFolder())
	assert.Equal(t, "CA Import/Payments/Diagrams", l.DiagramFolder())
	assert.Equal(t, "CA Import/Payments/Actor", l.ElementFolder(ca.Element{"modelType": "Actor"}))
	assert.Equal(t, "CA Import/Payments", l.ElementFolder(ca.Element{}))
	assert.Equal(t, "CA Import/Payments/Log.md", l.LogPath())

	l.AddIdentifier = true
	assert.Equal(t, "CA Import/Payments - A1", l.ArchitectureFolder())

	l = Layout{ArchName: "Solo"}
	assert.Equal(t, "Solo", l.ArchitectureFolder())
	assert.Equal(t, "Solo", l.DiagramFolder())
}

func TestLayout_NotePath(t *testing.T) {
	l := Layout{BaseFolder: "Base", ArchName: "Arch"}
	el := ca.Element{"_id": "ACT_7", "label": "Customer", "modelType": "Actor"}
	assert.Equal(t, "Base/Arch/Actor/Customer_7.md", l.NotePath(el))
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		el   ca.Element
		want string
	}{
		{
			name: "label with html",
			el:   ca.Element{"_id": "SC_abc_123", "label": "Payment &amp; <b>Gateway</b>!", "modelType": "SystemContext"},
			want: "Payment  Gateway_123",
		},
		{
			name: "functional requirement prefix",
			el:   ca.Element{"_id": "FR_9", "fr_id": "FR-001", "label": "Login", "modelType": "FunctionalRequirement"},
			want: "FR-001 Login_9",
		},
		{
			name: "numeric non-functional id",
			el:   ca.Element{"_id": "NFR_4", "nfr_id": float64(12), "label": "Latency (p99)", "modelType": "NonFunctionalRequirement"},
			want: "12 Latency (p99)_4",
		},
		{
			name: "requirement without id has no prefix",
			el:   ca.Element{"_id": "FR_7", "label": "Logout", "modelType": "FunctionalRequirement"},
			want: "Logout_7",
		},
		{
			name: "requirement id is sanitized",
			el:   ca.Element{"_id": "FR_8", "fr_id": "../x/1", "label": "Audit", "modelType": "FunctionalRequirement"},
			want: "x1 Audit_8",
		},
		{
			name: "no label uses model type",
			el:   ca.Element{"_id": "x_1", "modelType": "Actor"},
			want: "Actor",
		},
		{
			name: "leading period stripped",
			el:   ca.Element{"_id": "a_b", "label": ".hidden"},
			want: "hidden_b",
		},
		{
			name: "id without underscore",
			el:   ca.Element{"_id": "plain", "label": "Thing"},
			want: "Thing_plain",
		},
		{
			name: "falls back to sanitized id",
			el:   ca.Element{"_id": "weird/id"},
			want: "weirdid",
		},
		{
			name: "empty element",
			el:   ca.Element{},
			want: "element",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.el))
		})
	}
}
