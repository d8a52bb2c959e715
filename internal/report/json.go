// Package report renders the engine's ordered findings for external
// consumers. Every formatter is a pure read-only view over the result.
package report

import (
	"encoding/json"

	"github.com/meshackyaro/Sanctifier/internal/model"
)

// jsonReport is the stable machine-readable shape. The first six field
// names are the interoperability contract; the remaining sections cover
// analyzers whose sub-schema is still settling and may grow.
type jsonReport struct {
	SizeWarnings      []model.SizeWarning     `json:"size_warnings"`
	UnsafePatterns    []model.UnsafePattern   `json:"unsafe_patterns"`
	AuthGaps          []string                `json:"auth_gaps"`
	PanicIssues       []model.PanicIssue      `json:"panic_issues"`
	ArithmeticIssues  []model.ArithmeticIssue `json:"arithmetic_issues"`
	CustomRuleMatches []model.CustomRuleMatch `json:"custom_rule_matches"`

	EventIssues       []model.EventIssue            `json:"event_issues,omitempty"`
	UpgradeFindings   []model.UpgradeFinding        `json:"upgrade_findings,omitempty"`
	StorageCollisions []model.StorageCollisionIssue `json:"storage_collisions,omitempty"`
	ComplexityIssues  []model.ComplexityIssue       `json:"complexity_issues,omitempty"`
	GasEstimates      []model.GasEstimationReport   `json:"gas_estimates,omitempty"`
	AnalyzerFailures  []model.AnalyzerFailure       `json:"analyzer_failures,omitempty"`

	Findings []model.Finding `json:"findings"`
}

// ToJSON renders the ordered findings grouped by category.
func ToJSON(findings []model.Finding) ([]byte, error) {
	r := jsonReport{
		SizeWarnings:      []model.SizeWarning{},
		UnsafePatterns:    []model.UnsafePattern{},
		AuthGaps:          []string{},
		PanicIssues:       []model.PanicIssue{},
		ArithmeticIssues:  []model.ArithmeticIssue{},
		CustomRuleMatches: []model.CustomRuleMatch{},
		Findings:          findings,
	}
	if r.Findings == nil {
		r.Findings = []model.Finding{}
	}
	for _, f := range findings {
		switch raw := f.Raw.(type) {
		case model.SizeWarning:
			r.SizeWarnings = append(r.SizeWarnings, raw)
		case model.PanicSite:
			r.PanicIssues = append(r.PanicIssues, raw.Issue)
			r.UnsafePatterns = append(r.UnsafePatterns, raw.Pattern)
		case model.ArithmeticIssue:
			r.ArithmeticIssues = append(r.ArithmeticIssues, raw)
		case model.CustomRuleMatch:
			r.CustomRuleMatches = append(r.CustomRuleMatches, raw)
		case model.EventIssue:
			r.EventIssues = append(r.EventIssues, raw)
		case model.UpgradeFinding:
			r.UpgradeFindings = append(r.UpgradeFindings, raw)
		case model.StorageCollisionIssue:
			r.StorageCollisions = append(r.StorageCollisions, raw)
		case model.ComplexityIssue:
			r.ComplexityIssues = append(r.ComplexityIssues, raw)
		case model.GasEstimationReport:
			r.GasEstimates = append(r.GasEstimates, raw)
		case model.AnalyzerFailure:
			r.AnalyzerFailures = append(r.AnalyzerFailures, raw)
		case string:
			if f.Category == "auth" {
				r.AuthGaps = append(r.AuthGaps, raw)
			}
		}
	}
	return json.MarshalIndent(r, "", "  ")
}
