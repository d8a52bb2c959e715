package analyzers

import (
	"context"
	"strings"
	"testing"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

func TestArithmeticDetectsRawOps(t *testing.T) {
	src := srcSet(`pub fn settle(env: Env, a: u64, b: u64) -> u64 {
    let sum = a + b;
    let double = sum * 2;
    sum
}
`)
	a := &arithmetic{}
	findings, err := a.Analyze(context.Background(), nil, src, config.Default())
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d: %+v", len(findings), findings)
	}
	first := findings[0].Raw.(model.ArithmeticIssue)
	if first.Operation != "+" || !strings.Contains(first.Suggestion, "checked_add") {
		t.Fatalf("unexpected first issue: %+v", first)
	}
	if findings[1].Raw.(model.ArithmeticIssue).Operation != "*" {
		t.Fatalf("unexpected second issue: %+v", findings[1].Raw)
	}
}

func TestArithmeticCompoundBeforeBinary(t *testing.T) {
	src := srcSet(`pub fn accrue(env: Env, amount: u64) {
    total += amount;
}
`)
	a := &arithmetic{}
	findings, _ := a.Analyze(context.Background(), nil, src, config.Default())
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	issue := findings[0].Raw.(model.ArithmeticIssue)
	if issue.Operation != "+=" {
		t.Fatalf("compound shadowed by binary form: %+v", issue)
	}
	if !strings.Contains(issue.Suggestion, `a = a.checked_add(b)`) {
		t.Fatalf("unexpected suggestion: %q", issue.Suggestion)
	}
}

func TestArithmeticSkipsCheckedAndComments(t *testing.T) {
	src := srcSet(`pub fn careful(env: Env, a: u64, b: u64) -> u64 {
    // total = a + b  (explanatory comment)
    a.checked_add(b).unwrap_or(0)
}
`)
	a := &arithmetic{}
	findings, _ := a.Analyze(context.Background(), nil, src, config.Default())
	if len(findings) != 0 {
		t.Fatalf("checked arithmetic flagged: %+v", findings)
	}
}

func TestArithmeticDedupesPerFunction(t *testing.T) {
	src := srcSet(`pub fn twice(env: Env, a: u64, b: u64) -> u64 {
    let x = a + b;
    let y = b + a;
    x
}
`)
	a := &arithmetic{}
	findings, _ := a.Analyze(context.Background(), nil, src, config.Default())
	if len(findings) != 1 {
		t.Fatalf("same op should report once per function, got %d", len(findings))
	}
}

func TestArithmeticSilentWithoutSource(t *testing.T) {
	a := &arithmetic{}
	findings, err := a.Analyze(context.Background(), moduleWith(), nil, config.Default())
	if err != nil || len(findings) != 0 {
		t.Fatalf("binary-only input should be silent: %v %v", findings, err)
	}
}
