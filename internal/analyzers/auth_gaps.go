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

// maxCallDepth bounds the reachability walk on adversarial call chains.
const maxCallDepth = 64

// authGaps flags exported functions that reach a storage write without any
// reachable call to the host authorization primitive.
type authGaps struct{}

func (a *authGaps) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "auth_gaps",
		Title:          "Storage write without authorization",
		Category:       "auth",
		DefaultEnabled: true,
	}
}

func (a *authGaps) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if mod != nil {
		return a.analyzeModule(mod, src), nil
	}
	return a.analyzeSource(src), nil
}

func (a *authGaps) analyzeModule(mod *ir.Module, src *ir.SourceSet) []model.Finding {
	var findings []model.Finding
	for _, fn := range mod.ExportedFunctions() {
		if fn.Imported {
			continue
		}
		writeSite, hasAuth := walkReachable(mod, fn.Index)
		if writeSite == nil || hasAuth {
			continue
		}
		loc := writeSite.Location()
		f := model.Finding{
			Severity:    model.SeverityCritical,
			Category:    "auth",
			Title:       fmt.Sprintf("Exported function %s writes storage without require_auth", fn.DisplayName()),
			Location:    loc,
			Suggestion:  "Call require_auth on the invoking address before any storage mutation.",
			Fingerprint: util.Fingerprint("auth", loc, 0, fn.DisplayName()),
			Raw:         fn.DisplayName(),
		}
		if fn.SrcFile != "" {
			if content, ok := src.FileContent(fn.SrcFile); ok {
				f.Snippet = util.ExtractSnippet(content, fn.SrcStart, fn.SrcStart, 6)
			}
		}
		findings = append(findings, f)
	}
	return findings
}

// walkReachable scans the function and everything reachable from it through
// direct calls. It returns the first storage-write site found and whether
// any reachable instruction invokes the auth primitive. Indirect calls and
// unrecognized imports never count as authorization.
func walkReachable(mod *ir.Module, root int) (write *ir.InstrSite, hasAuth bool) {
	visited := map[int]bool{}
	var visit func(idx, depth int)
	visit = func(idx, depth int) {
		if visited[idx] || depth > maxCallDepth || idx >= len(mod.Functions) {
			return
		}
		visited[idx] = true
		fn := &mod.Functions[idx]
		for i := range fn.Instructions {
			ins := &fn.Instructions[i]
			if ins.Host == ir.HostAuth {
				hasAuth = true
			}
			if ins.Class == ir.OpStorageWrite && write == nil {
				write = &ir.InstrSite{Fn: fn, Instr: ins}
			}
		}
		for _, callee := range mod.CalleesOf(idx) {
			visit(callee, depth+1)
		}
	}
	visit(root, 0)
	return write, hasAuth
}

var (
	storageMutationRe = regexp.MustCompile(`\.storage\(\)[\s\S]{0,80}?\.(set|update|remove)\(`)
	requireAuthRe     = regexp.MustCompile(`\brequire_auth(_for_args)?\b`)
)

// analyzeSource is the fallback for source-only runs, mirroring the module
// walk with a per-function body scan.
func (a *authGaps) analyzeSource(src *ir.SourceSet) []model.Finding {
	var findings []model.Finding
	for _, fn := range src.Functions() {
		if !fn.Pub {
			continue
		}
		if !storageMutationRe.MatchString(fn.Body) || requireAuthRe.MatchString(fn.Body) {
			continue
		}
		loc := fmt.Sprintf("%s:%s", fn.File, fn.Name)
		findings = append(findings, model.Finding{
			Severity:    model.SeverityCritical,
			Category:    "auth",
			Title:       fmt.Sprintf("Function %s writes storage without require_auth", fn.Name),
			Location:    loc,
			Snippet:     firstLines(fn.Body, 4),
			Suggestion:  "Call require_auth on the invoking address before any storage mutation.",
			Fingerprint: util.Fingerprint("auth", loc, fn.StartLine, fn.Name),
			Raw:         loc,
		})
	}
	return findings
}

func firstLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
