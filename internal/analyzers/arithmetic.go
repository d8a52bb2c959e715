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

// arithmetic flags raw +, -, * (and compound forms) in contract functions.
// Compiled modules erase the checked/unchecked distinction, so this rule
// reads source text only; without source it stays silent rather than guess.
type arithmetic struct{}

func (a *arithmetic) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "arithmetic",
		Title:          "Unchecked arithmetic operation",
		Category:       "arith",
		DefaultEnabled: true,
	}
}

type arithOp struct {
	op         string
	re         *regexp.Regexp
	suggestion string
}

// Compound assignments match before their binary forms. The operand guards
// keep comments, paths (::), references (&x) and returns (->) from matching.
var arithOps = []arithOp{
	{"+=", regexp.MustCompile(`[\w\)\]]\s*\+=\s*[\w&(]`), "Replace `a += b` with `a = a.checked_add(b).expect(\"overflow\")`"},
	{"-=", regexp.MustCompile(`[\w\)\]]\s*-=\s*[\w&(]`), "Replace `a -= b` with `a = a.checked_sub(b).expect(\"underflow\")`"},
	{"*=", regexp.MustCompile(`[\w\)\]]\s*\*=\s*[\w&(]`), "Replace `a *= b` with `a = a.checked_mul(b).expect(\"overflow\")`"},
	{"+", regexp.MustCompile(`[\w\)\]]\s*\+\s*[\w(]`), "Use `.checked_add(rhs)` or `.saturating_add(rhs)` to handle overflow"},
	{"-", regexp.MustCompile(`[\w\)\]]\s*-\s*[\w(]`), "Use `.checked_sub(rhs)` or `.saturating_sub(rhs)` to handle underflow"},
	{"*", regexp.MustCompile(`[\w\)\]]\s*\*\s*[\w(]`), "Use `.checked_mul(rhs)` or `.saturating_mul(rhs)` to handle overflow"},
}

var safeArithRe = regexp.MustCompile(`\b(checked|saturating|wrapping|overflowing)_(add|sub|mul|div|pow)\b`)

func (a *arithmetic) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if src.Empty() {
		return nil, nil
	}
	var findings []model.Finding
	for _, fn := range src.Functions() {
		seen := map[string]bool{}
		for i, line := range strings.Split(fn.Body, "\n") {
			code := stripLineComment(line)
			if safeArithRe.MatchString(code) {
				continue
			}
			for _, op := range arithOps {
				if seen[op.op] || !op.re.MatchString(code) {
					continue
				}
				// binary forms must not shadow a compound on the same line
				if len(op.op) == 1 && strings.Contains(code, op.op+"=") {
					continue
				}
				seen[op.op] = true
				lineNo := fn.StartLine + i
				loc := fmt.Sprintf("%s:%d", fn.Name, lineNo)
				findings = append(findings, model.Finding{
					Severity:    model.SeverityHigh,
					Category:    "arith",
					Title:       fmt.Sprintf("Unchecked `%s` in %s", op.op, fn.Name),
					Location:    loc,
					Snippet:     strings.TrimSpace(line),
					Suggestion:  op.suggestion,
					Fingerprint: util.Fingerprint("arith", loc, lineNo, op.op),
					Raw: model.ArithmeticIssue{
						FunctionName: fn.Name,
						Operation:    op.op,
						Suggestion:   op.suggestion,
						Location:     loc,
					},
				})
			}
		}
	}
	return findings, nil
}

func stripLineComment(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		return line[:i]
	}
	return line
}
