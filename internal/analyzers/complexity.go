package analyzers

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
	"github.com/meshackyaro/Sanctifier/internal/util"
)

// Thresholds a contract function may exceed before being reported.
const (
	thresholdCyclomatic = 10
	thresholdParams     = 5
	thresholdNesting    = 4
	thresholdLOC        = 50
)

// complexity reports oversized public functions: entry points that are hard
// to audit are where the other rules' findings hide.
type complexity struct{}

func (c *complexity) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "complexity",
		Title:          "Function complexity",
		Category:       "complexity",
		DefaultEnabled: true,
	}
}

var branchRe = regexp.MustCompile(`\bif\b|\bmatch\b|\bwhile\b|\bfor\b|&&|\|\|`)

func (c *complexity) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if src.Empty() {
		return nil, nil
	}
	var findings []model.Finding
	for _, fn := range src.Functions() {
		if !fn.Pub {
			continue
		}
		metrics := []struct {
			metric    string
			value     int
			threshold int
		}{
			{"cyclomatic_complexity", cyclomatic(fn.Body), thresholdCyclomatic},
			{"param_count", paramCount(fn.Body), thresholdParams},
			{"max_nesting_depth", maxNesting(fn.Body), thresholdNesting},
			{"loc", fn.EndLine - fn.StartLine + 1, thresholdLOC},
		}
		for _, m := range metrics {
			if m.value <= m.threshold {
				continue
			}
			loc := fmt.Sprintf("%s:%d", fn.File, fn.StartLine)
			findings = append(findings, model.Finding{
				Severity:    model.SeverityLow,
				Category:    "complexity",
				Title:       fmt.Sprintf("%s of %s is %d (threshold %d)", m.metric, fn.Name, m.value, m.threshold),
				Location:    loc,
				Suggestion:  "Split the function; smaller entry points are easier to audit.",
				Fingerprint: util.Fingerprint("complexity", loc, m.value, m.metric),
				Raw: model.ComplexityIssue{
					FunctionName: fn.Name,
					Metric:       m.metric,
					Value:        m.value,
					Threshold:    m.threshold,
				},
			})
		}
	}
	return findings, nil
}

func cyclomatic(body string) int {
	count := 1
	for _, line := range strings.Split(body, "\n") {
		count += len(branchRe.FindAllString(stripLineComment(line), -1))
	}
	return count
}

func paramCount(body string) int {
	open := strings.Index(body, "(")
	if open < 0 {
		return 0
	}
	args := balancedArgs(body, open)
	if strings.TrimSpace(args) == "" {
		return 0
	}
	n := 0
	for _, p := range splitTopLevel(args, ',') {
		p = strings.TrimSpace(p)
		if p == "" || p == "env: Env" || strings.HasPrefix(p, "&") || p == "self" {
			continue
		}
		n++
	}
	return n
}

func maxNesting(body string) int {
	depth, maxDepth := 0, 0
	for i := 0; i < len(body); i++ {
		switch body[i] {
		case '{':
			depth++
			maxDepth = max(maxDepth, depth)
		case '}':
			depth--
		}
	}
	// The function body brace itself is not a nesting level.
	return max(maxDepth-1, 0)
}
