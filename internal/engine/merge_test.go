package engine

import (
	"testing"

	"github.com/meshackyaro/Sanctifier/internal/model"
)

func TestMergeOrdersAndDedupes(t *testing.T) {
	results := [][]model.Finding{
		{
			{Severity: model.SeverityLow, Category: "gas", Title: "a", Fingerprint: "fp-a"},
			{Severity: model.SeverityHigh, Category: "panic", Title: "b", Fingerprint: "fp-b"},
		},
		{
			{Severity: model.SeverityCritical, Category: "auth", Title: "c", Fingerprint: "fp-c"},
			{Severity: model.SeverityHigh, Category: "panic", Title: "dup", Fingerprint: "fp-b"},
		},
	}

	merged := merge(results, nil)
	if len(merged) != 3 {
		t.Fatalf("expected 3 findings after dedupe, got %d: %+v", len(merged), merged)
	}
	wantIDs := []string{"auth-0", "panic-1", "gas-2"}
	for i, f := range merged {
		if f.ID != wantIDs[i] {
			t.Fatalf("position %d id = %q, want %q", i, f.ID, wantIDs[i])
		}
	}
}

func TestMergeEmptyResults(t *testing.T) {
	if got := merge(nil, nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if got := merge([][]model.Finding{nil, {}}, nil); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
}
