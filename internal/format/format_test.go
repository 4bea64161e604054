package format_test

import (
	"strings"
	"testing"
	"time"

	"casync/internal/format"
)

func TestASCII_ArchitectureTable(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("ID", "Name", "Visibility")
	tb.Row("a1", "Payments", "Private")
	tb.Row("a2", "Ledger", "Collaboration")
	out := tb.String()

	for _, want := range []string{"ID", "Payments", "Collaboration"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if !strings.Contains(out, "───") {
		t.Errorf("expected box-drawing characters in ASCII output:\n%s", out)
	}
	if tb.Len() != 2 {
		t.Errorf("Len = %d", tb.Len())
	}
}

func TestMarkdown_InstanceTable(t *testing.T) {
	tb := format.NewTable(format.ModeFor(true))
	tb.Header("ID", "Label")
	tb.Row("i1", "Checkout")
	tb.Footer("TOTAL", 1)
	out := tb.String()

	if !strings.Contains(out, "| ID") || !strings.Contains(out, "---") {
		t.Errorf("expected a markdown table:\n%s", out)
	}
	if !strings.Contains(out, "TOTAL") {
		t.Errorf("expected footer in output:\n%s", out)
	}
}

func TestFooterKeepsCase(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("Name")
	tb.Row("Payments")
	tb.Footer(format.Count(1, "architecture"))
	if out := tb.String(); !strings.Contains(out, "1 architecture") {
		t.Errorf("footer lost its case:\n%s", out)
	}
}

func TestTitleAndColumns(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Title("Sync report")
	tb.Header("Metric", "Value")
	tb.Row("notes created", 12345)
	tb.Columns(format.ColumnConfig{Number: 2, Align: format.AlignRight})
	out := tb.String()

	if !strings.Contains(out, "Sync report") || !strings.Contains(out, "12345") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestRender(t *testing.T) {
	tb := format.NewTable(format.ASCII)
	tb.Header("A")
	tb.Row("x")
	var b strings.Builder
	if err := tb.Render(&b); err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(b.String(), "\n") || !strings.Contains(b.String(), "x") {
		t.Errorf("unexpected render:\n%q", b.String())
	}
}

func TestModes_Differ(t *testing.T) {
	build := func(m format.Mode) string {
		tb := format.NewTable(m)
		tb.Header("A", "B")
		tb.Row("x", "y")
		return tb.String()
	}
	if build(format.ASCII) == build(format.Markdown) {
		t.Error("ASCII and Markdown output should differ")
	}
}

func TestBytes(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{-5, "0 B"},
		{999, "999 B"},
		{12000, "12 kB"},
		{2500000, "2.5 MB"},
	}
	for _, tc := range tests {
		if got := format.Bytes(tc.in); got != tc.want {
			t.Errorf("Bytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestAge(t *testing.T) {
	if got := format.Age(time.Time{}); got != "-" {
		t.Errorf("Age(zero) = %q", got)
	}
	if got := format.Age(time.Now().Add(-3 * time.Hour)); got != "3 hours ago" {
		t.Errorf("Age(-3h) = %q", got)
	}
}

func TestCount(t *testing.T) {
	if got := format.Count(1, "note"); got != "1 note" {
		t.Errorf("got %q", got)
	}
	if got := format.Count(3, "diagram"); got != "3 diagrams" {
		t.Errorf("got %q", got)
	}
}

func TestDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{5 * time.Second, "5s"},
		{90 * time.Second, "1m 30s"},
	}
	for _, tc := range tests {
		if got := format.Duration(tc.in); got != tc.want {
			t.Errorf("Duration(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"abcdef", 3, "abc"},
		{"Über-Architektur", 6, "Übe..."},
	}
	for _, tc := range tests {
		if got := format.Truncate(tc.in, tc.maxLen); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

func TestMarks(t *testing.T) {
	if format.BoolMark(true) != "✓" || format.BoolMark(false) != "✗" {
		t.Error("BoolMark")
	}
	if format.OrDash("") != "-" || format.OrDash("x") != "x" {
		t.Error("OrDash")
	}
}
