package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/meshackyaro/Sanctifier/internal/model"
)

func TestToJSONEmptyReportKeepsContractFields(t *testing.T) {
	data, err := ToJSON(nil)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{
		"size_warnings", "unsafe_patterns", "auth_gaps",
		"panic_issues", "arithmetic_issues", "custom_rule_matches", "findings",
	} {
		raw, ok := decoded[key]
		if !ok {
			t.Fatalf("missing field %q", key)
		}
		if string(raw) != "[]" {
			t.Fatalf("field %q = %s, want []", key, raw)
		}
	}
	// extended sections stay absent until they have content
	if _, ok := decoded["event_issues"]; ok {
		t.Fatalf("empty extended section serialized")
	}
}

func TestToJSONGroupsByPayload(t *testing.T) {
	findings := []model.Finding{
		{
			ID: "auth-0", Severity: model.SeverityCritical, Category: "auth",
			Raw: "transfer",
		},
		{
			ID: "panic-1", Severity: model.SeverityHigh, Category: "panic",
			Raw: model.PanicSite{
				Issue:   model.PanicIssue{FunctionName: "take", IssueType: "unwrap", Location: "lib.rs:2"},
				Pattern: model.UnsafePattern{PatternType: "Unwrap", Line: 2, Snippet: "x.unwrap()"},
			},
		},
		{
			ID: "ledger-2", Severity: model.SeverityMedium, Category: "ledger",
			Raw: model.SizeWarning{StructName: "Big", EstimatedSize: 57600, Limit: 64000, Level: "ApproachingLimit"},
		},
		{
			ID: "event-3", Severity: model.SeverityMedium, Category: "event",
			Raw: model.EventIssue{EventName: "transfer", TopicCounts: []int{2, 3}, Location: "lib.rs:5"},
		},
		{
			ID: "gas-4", Severity: model.SeverityLow, Category: "gas",
			Raw: model.GasEstimationReport{FunctionName: "transfer", EstimatedInstructions: 1600, EstimatedMemoryBytes: 32},
		},
	}

	data, err := ToJSON(findings)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		SizeWarnings   []model.SizeWarning         `json:"size_warnings"`
		UnsafePatterns []model.UnsafePattern       `json:"unsafe_patterns"`
		AuthGaps       []string                    `json:"auth_gaps"`
		PanicIssues    []model.PanicIssue          `json:"panic_issues"`
		EventIssues    []model.EventIssue          `json:"event_issues"`
		GasEstimates   []model.GasEstimationReport `json:"gas_estimates"`
		Findings       []model.Finding             `json:"findings"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if len(decoded.AuthGaps) != 1 || decoded.AuthGaps[0] != "transfer" {
		t.Fatalf("auth_gaps = %v", decoded.AuthGaps)
	}
	// one abort site feeds both the issue and the pattern lists
	if len(decoded.PanicIssues) != 1 || len(decoded.UnsafePatterns) != 1 {
		t.Fatalf("panic split wrong: %v / %v", decoded.PanicIssues, decoded.UnsafePatterns)
	}
	if decoded.PanicIssues[0].IssueType != "unwrap" || decoded.UnsafePatterns[0].Line != 2 {
		t.Fatalf("panic payloads: %+v %+v", decoded.PanicIssues[0], decoded.UnsafePatterns[0])
	}
	if len(decoded.SizeWarnings) != 1 || decoded.SizeWarnings[0].Level != "ApproachingLimit" {
		t.Fatalf("size_warnings = %+v", decoded.SizeWarnings)
	}
	if len(decoded.EventIssues) != 1 {
		t.Fatalf("event_issues = %+v", decoded.EventIssues)
	}
	if len(decoded.GasEstimates) != 1 || decoded.GasEstimates[0].EstimatedInstructions != 1600 {
		t.Fatalf("gas_estimates = %+v", decoded.GasEstimates)
	}
	if len(decoded.Findings) != 5 {
		t.Fatalf("findings = %d", len(decoded.Findings))
	}

	// external field names are the contract
	for _, key := range []string{"struct_name", "estimated_size", "pattern_type", "function_name", "issue_type"} {
		if !strings.Contains(string(data), `"`+key+`"`) {
			t.Fatalf("expected key %q in output", key)
		}
	}
}
