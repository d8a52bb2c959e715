package model

import "time"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

func ParseSeverity(s string) Severity {
	switch s {
	case string(SeverityCritical):
		return SeverityCritical
	case string(SeverityHigh):
		return SeverityHigh
	case string(SeverityMedium):
		return SeverityMedium
	default:
		return SeverityLow
	}
}

func SeverityRank(s Severity) int {
	order := map[Severity]int{SeverityLow: 1, SeverityMedium: 2, SeverityHigh: 3, SeverityCritical: 4}
	return order[s]
}

func SeverityGTE(a, b Severity) bool {
	return SeverityRank(a) >= SeverityRank(b)
}

// RuleMeta describes a registered analyzer.
type RuleMeta struct {
	Name           string   `json:"name"`
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	DefaultEnabled bool     `json:"defaultEnabled"`
	Tags           []string `json:"tags,omitempty"`
}

// Finding is the unified output unit shared by every analyzer. Findings are
// immutable once emitted; the engine owns the merged, ordered sequence.
// ID is assigned by the engine at merge time, not by analyzers.
type Finding struct {
	ID          string   `json:"id"`
	Severity    Severity `json:"severity"`
	Category    string   `json:"category"`
	Title       string   `json:"title"`
	Location    string   `json:"location"`
	Snippet     string   `json:"snippet,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Fingerprint string   `json:"fingerprint,omitempty"`
	// Raw carries the analyzer-specific structured payload. Its field names
	// match the external report schema exactly (SizeWarning, PanicIssue, ...).
	Raw any `json:"raw,omitempty"`
}

// Raw payload shapes. Formatters group findings by category and marshal
// these directly, so the json tags are the interchange contract.

type SizeWarning struct {
	StructName    string `json:"struct_name"`
	EstimatedSize int    `json:"estimated_size"`
	Limit         int    `json:"limit"`
	Level         string `json:"level"` // "ExceedsLimit" | "ApproachingLimit"
}

type UnsafePattern struct {
	PatternType string `json:"pattern_type"` // "Panic" | "Unwrap" | "Expect"
	Line        int    `json:"line"`
	Snippet     string `json:"snippet"`
}

type PanicIssue struct {
	FunctionName string `json:"function_name"`
	IssueType    string `json:"issue_type"` // "panic!", "unwrap", "expect"
	Location     string `json:"location"`
}

// PanicSite pairs the two external views of one abort site: the
// panic_issues entry and the unsafe_patterns entry.
type PanicSite struct {
	Issue   PanicIssue    `json:"issue"`
	Pattern UnsafePattern `json:"pattern"`
}

type ArithmeticIssue struct {
	FunctionName string `json:"function_name"`
	Operation    string `json:"operation"`
	Suggestion   string `json:"suggestion"`
	Location     string `json:"location"`
}

type CustomRuleMatch struct {
	RuleName string `json:"rule_name"`
	Line     int    `json:"line"`
	Snippet  string `json:"snippet"`
}

type EventIssue struct {
	EventName   string `json:"event_name"`
	TopicCounts []int  `json:"topic_counts"`
	Location    string `json:"location"`
}

type UpgradeFinding struct {
	Category     string `json:"category"` // "init_pattern" | "admin_control"
	FunctionName string `json:"function_name,omitempty"`
	Location     string `json:"location"`
	Message      string `json:"message"`
	Suggestion   string `json:"suggestion"`
}

type StorageCollisionIssue struct {
	KeyValue string `json:"key_value"`
	KeyType  string `json:"key_type"`
	Location string `json:"location"`
	Message  string `json:"message"`
}

type GasEstimationReport struct {
	FunctionName          string `json:"function_name"`
	EstimatedInstructions int    `json:"estimated_instructions"`
	EstimatedMemoryBytes  int    `json:"estimated_memory_bytes"`
}

type ComplexityIssue struct {
	FunctionName string `json:"function_name"`
	Metric       string `json:"metric"`
	Value        int    `json:"value"`
	Threshold    int    `json:"threshold"`
}

type AnalyzerFailure struct {
	Analyzer string `json:"analyzer"`
	Reason   string `json:"reason"`
}

// Result is a completed run: the merged ordered findings plus timing.
type Result struct {
	Findings []Finding     `json:"findings"`
	Elapsed  time.Duration `json:"elapsed"`
}
