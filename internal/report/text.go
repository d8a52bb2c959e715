package report

import (
	"fmt"
	"io"

	"github.com/meshackyaro/Sanctifier/internal/model"
)

type section struct {
	category string
	found    string
	clean    string
}

// Section order and phrasing mirror the report layout users already know.
var sections = []section{
	{"collision", "Found potential Storage Key Collisions!", "No storage key collisions found."},
	{"auth", "Found potential Authentication Gaps!", "No authentication gaps found."},
	{"panic", "Found explicit Panics/Unwraps!", "No explicit Panics/Unwraps found."},
	{"arith", "Found unchecked Arithmetic Operations!", "No unchecked Arithmetic Operations found."},
	{"ledger", "Found Ledger Size Warnings!", "No ledger size issues found."},
	{"event", "Found Event Consistency Issues!", "No event consistency issues found."},
	{"upgrade", "Found Upgrade Pattern Issues!", "No upgrade pattern issues found."},
	{"custom", "Found Custom Rule Matches!", "No custom rule matches found."},
	{"complexity", "Found Complexity Warnings!", "No complexity warnings found."},
}

// WriteText renders the human-readable report: one emoji-prefixed section
// per category, then any analyzer failure notes.
func WriteText(w io.Writer, findings []model.Finding) {
	byCategory := map[string][]model.Finding{}
	for _, f := range findings {
		byCategory[f.Category] = append(byCategory[f.Category], f)
	}

	for _, s := range sections {
		group := byCategory[s.category]
		if len(group) == 0 {
			fmt.Fprintf(w, "✅ %s\n", s.clean)
			continue
		}
		fmt.Fprintf(w, "\n⚠️  %s\n", s.found)
		for _, f := range group {
			fmt.Fprintf(w, "   -> [%s] %s (%s)\n", f.Severity, f.Title, f.ID)
			fmt.Fprintf(w, "      Location: %s\n", f.Location)
			if f.Snippet != "" {
				fmt.Fprintf(w, "      Snippet: %s\n", f.Snippet)
			}
			if f.Suggestion != "" {
				fmt.Fprintf(w, "      Suggestion: %s\n", f.Suggestion)
			}
		}
	}

	// Gas estimates are informational, so they render as a flat list
	// rather than a warning section.
	if gas := byCategory["gas"]; len(gas) > 0 {
		fmt.Fprintf(w, "\n⛽ Resource estimates:\n")
		for _, f := range gas {
			fmt.Fprintf(w, "   -> %s (%s)\n", f.Title, f.ID)
		}
	}

	for _, f := range byCategory["engine"] {
		fmt.Fprintf(w, "\n🛈 %s\n", f.Title)
	}

	fmt.Fprintf(w, "\n✨ Static analysis complete.\n")
}
