package report

import (
	"strings"
	"testing"

	"github.com/meshackyaro/Sanctifier/internal/model"
)

func TestWriteTextCleanRun(t *testing.T) {
	var b strings.Builder
	WriteText(&b, nil)
	out := b.String()

	for _, want := range []string{
		"✅ No authentication gaps found.",
		"✅ No explicit Panics/Unwraps found.",
		"✅ No ledger size issues found.",
		"✨ Static analysis complete.",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "⚠️") {
		t.Fatalf("clean run should have no warning sections:\n%s", out)
	}
}

func TestWriteTextFindings(t *testing.T) {
	findings := []model.Finding{
		{
			ID: "auth-0", Severity: model.SeverityCritical, Category: "auth",
			Title:    "Exported function transfer writes storage without require_auth",
			Location: "lib.rs:transfer", Suggestion: "Call require_auth first.",
		},
		{
			ID: "engine-1", Severity: model.SeverityLow, Category: "engine",
			Title: "Analyzer events failed",
		},
		{
			ID: "gas-2", Severity: model.SeverityLow, Category: "gas",
			Title: "transfer estimated at ~1600 instructions, ~32 bytes of memory",
		},
	}
	var b strings.Builder
	WriteText(&b, findings)
	out := b.String()

	if !strings.Contains(out, "⚠️  Found potential Authentication Gaps!") {
		t.Fatalf("missing auth section header:\n%s", out)
	}
	if !strings.Contains(out, "[critical]") || !strings.Contains(out, "(auth-0)") {
		t.Fatalf("missing severity or id:\n%s", out)
	}
	if !strings.Contains(out, "Location: lib.rs:transfer") {
		t.Fatalf("missing location:\n%s", out)
	}
	if !strings.Contains(out, "Analyzer events failed") {
		t.Fatalf("missing failure note:\n%s", out)
	}
	if !strings.Contains(out, "Resource estimates:") || !strings.Contains(out, "(gas-2)") {
		t.Fatalf("missing resource estimate list:\n%s", out)
	}
	// categories without findings still render their clean line
	if !strings.Contains(out, "✅ No unchecked Arithmetic Operations found.") {
		t.Fatalf("missing clean line:\n%s", out)
	}
}

func TestToSARIFLevels(t *testing.T) {
	findings := []model.Finding{
		{ID: "auth-0", Severity: model.SeverityCritical, Category: "auth", Title: "t", Location: "lib.rs:1"},
		{ID: "ledger-1", Severity: model.SeverityMedium, Category: "ledger", Title: "t", Location: "lib.rs:2"},
		{ID: "custom-2", Severity: model.SeverityLow, Category: "custom", Title: "t", Location: "lib.rs:3"},
	}
	data, err := ToSARIF(findings)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"2.1.0"`, `"sanctify"`, `"error"`, `"warning"`, `"note"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in sarif output:\n%s", want, out)
		}
	}
}
