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

// panics reports abort sites: panic! style aborts are critical, unwrap and
// expect style early-aborts are high. One finding per site.
type panics struct{}

func (p *panics) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "panics",
		Title:          "Explicit panic or unwrap",
		Category:       "panic",
		DefaultEnabled: true,
	}
}

var panicSiteRe = regexp.MustCompile(`panic!\s*\(|\.unwrap\s*\(\s*\)|\.expect\s*\(`)

func (p *panics) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if !src.Empty() {
		return p.analyzeSource(src), nil
	}
	return p.analyzeModule(mod), nil
}

func (p *panics) analyzeSource(src *ir.SourceSet) []model.Finding {
	var findings []model.Finding
	for _, fn := range src.Functions() {
		bodyLines := strings.Split(fn.Body, "\n")
		for i, line := range bodyLines {
			m := panicSiteRe.FindString(line)
			if m == "" {
				continue
			}
			issueType, patternType, severity := classifyAbort(m)
			lineNo := fn.StartLine + i
			loc := fmt.Sprintf("%s:%d", fn.File, lineNo)
			snippet := strings.TrimSpace(line)
			findings = append(findings, model.Finding{
				Severity:    severity,
				Category:    "panic",
				Title:       fmt.Sprintf("%s in %s", issueType, fn.Name),
				Location:    loc,
				Snippet:     snippet,
				Suggestion:  "Return a Result and surface a contract error instead of aborting.",
				Fingerprint: util.Fingerprint("panic", loc, lineNo, issueType),
				Raw: model.PanicSite{
					Issue:   model.PanicIssue{FunctionName: fn.Name, IssueType: issueType, Location: loc},
					Pattern: model.UnsafePattern{PatternType: patternType, Line: lineNo, Snippet: snippet},
				},
			})
		}
	}
	return findings
}

func classifyAbort(match string) (issueType, patternType string, severity model.Severity) {
	switch {
	case strings.HasPrefix(match, "panic!"):
		return "panic!", "Panic", model.SeverityCritical
	case strings.Contains(match, "unwrap"):
		return "unwrap", "Unwrap", model.SeverityHigh
	default:
		return "expect", "Expect", model.SeverityHigh
	}
}

// analyzeModule is the binary-only path: compiled panics surface as trap
// instructions, which cannot be told apart from unwrap aborts, so every
// abort site reports as a panic-equivalent.
func (p *panics) analyzeModule(mod *ir.Module) []model.Finding {
	if mod == nil {
		return nil
	}
	var findings []model.Finding
	for i := mod.NumImported; i < len(mod.Functions); i++ {
		fn := &mod.Functions[i]
		for j := range fn.Instructions {
			ins := &fn.Instructions[j]
			if ins.Class != ir.OpAbort {
				continue
			}
			site := ir.InstrSite{Fn: fn, Instr: ins}
			loc := site.Location()
			findings = append(findings, model.Finding{
				Severity:    model.SeverityCritical,
				Category:    "panic",
				Title:       fmt.Sprintf("abort in %s", fn.DisplayName()),
				Location:    loc,
				Suggestion:  "Return a Result and surface a contract error instead of aborting.",
				Fingerprint: util.Fingerprint("panic", loc, ins.Offset, "abort"),
				Raw: model.PanicSite{
					Issue:   model.PanicIssue{FunctionName: fn.DisplayName(), IssueType: "panic!", Location: loc},
					Pattern: model.UnsafePattern{PatternType: "Panic", Line: ins.SrcLine, Snippet: ins.Mnemonic},
				},
			})
		}
	}
	return findings
}
