package engine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/meshackyaro/Sanctifier/internal/analyzers"
	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

type fakeAnalyzer struct {
	name     string
	findings []model.Finding
	err      error
	fn       func(ctx context.Context) ([]model.Finding, error)
}

func (f *fakeAnalyzer) Meta() model.RuleMeta {
	return model.RuleMeta{Name: f.name, Category: f.name, DefaultEnabled: true}
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if f.fn != nil {
		return f.fn(ctx)
	}
	return f.findings, f.err
}

func finding(severity model.Severity, category, title string) model.Finding {
	return model.Finding{Severity: severity, Category: category, Title: title}
}

func registryOf(fakes ...*fakeAnalyzer) *analyzers.Registry {
	reg := analyzers.NewRegistry()
	for _, f := range fakes {
		reg.Register(f)
	}
	return reg
}

func TestRunOrdersBySeverityAndAssignsIDs(t *testing.T) {
	reg := registryOf(
		&fakeAnalyzer{name: "alpha", findings: []model.Finding{
			finding(model.SeverityLow, "alpha", "minor"),
			finding(model.SeverityCritical, "alpha", "major"),
		}},
		&fakeAnalyzer{name: "beta", findings: []model.Finding{
			finding(model.SeverityMedium, "beta", "middling"),
		}},
	)

	result, err := New(reg).Run(context.Background(), nil, &ir.SourceSet{}, config.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	got := result.Findings
	if len(got) != 3 {
		t.Fatalf("expected 3 findings, got %d", len(got))
	}
	if got[0].Title != "major" || got[1].Title != "middling" || got[2].Title != "minor" {
		t.Fatalf("severity order wrong: %s, %s, %s", got[0].Title, got[1].Title, got[2].Title)
	}
	if got[0].ID != "alpha-0" || got[1].ID != "beta-1" || got[2].ID != "alpha-2" {
		t.Fatalf("ids = %s, %s, %s", got[0].ID, got[1].ID, got[2].ID)
	}
}

func TestRunDeterministic(t *testing.T) {
	reg := registryOf(
		&fakeAnalyzer{name: "a", findings: []model.Finding{
			finding(model.SeverityHigh, "a", "h1"),
			finding(model.SeverityHigh, "a", "h2"),
		}},
		&fakeAnalyzer{name: "b", findings: []model.Finding{
			finding(model.SeverityHigh, "b", "h3"),
			finding(model.SeverityLow, "b", "l1"),
		}},
		&fakeAnalyzer{name: "c", findings: []model.Finding{
			finding(model.SeverityCritical, "c", "c1"),
		}},
	)
	eng := New(reg)

	first, err := eng.Run(context.Background(), nil, &ir.SourceSet{}, config.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := eng.Run(context.Background(), nil, &ir.SourceSet{}, config.Default())
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first.Findings, again.Findings) {
			t.Fatalf("run %d diverged:\n%+v\n%+v", i, first.Findings, again.Findings)
		}
	}
	// equal severities keep registration order
	titles := make([]string, 0, len(first.Findings))
	for _, f := range first.Findings {
		titles = append(titles, f.Title)
	}
	want := []string{"c1", "h1", "h2", "h3", "l1"}
	if !reflect.DeepEqual(titles, want) {
		t.Fatalf("order = %v, want %v", titles, want)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	reg := registryOf(
		&fakeAnalyzer{name: "ok", findings: []model.Finding{
			finding(model.SeverityHigh, "ok", "real"),
		}},
		&fakeAnalyzer{name: "broken", err: errors.New("boom")},
		&fakeAnalyzer{name: "panicky", fn: func(ctx context.Context) ([]model.Finding, error) {
			panic("blew up")
		}},
	)

	result, err := New(reg).Run(context.Background(), nil, &ir.SourceSet{}, config.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var real, failures int
	for _, f := range result.Findings {
		switch f.Category {
		case "ok":
			real++
		case "engine":
			failures++
			if f.Severity != model.SeverityLow {
				t.Fatalf("failure finding severity = %s", f.Severity)
			}
		}
	}
	if real != 1 || failures != 2 {
		t.Fatalf("real=%d failures=%d: %+v", real, failures, result.Findings)
	}
}

func TestRunAnalyzerTimeout(t *testing.T) {
	reg := registryOf(&fakeAnalyzer{name: "slow", fn: func(ctx context.Context) ([]model.Finding, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}})
	eng := New(reg)
	eng.AnalyzerBudget = 20 * time.Millisecond

	result, err := eng.Run(context.Background(), nil, &ir.SourceSet{}, config.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].Category != "engine" {
		t.Fatalf("expected a single failure finding, got %+v", result.Findings)
	}
	raw := result.Findings[0].Raw.(model.AnalyzerFailure)
	if raw.Analyzer != "slow" || !strings.Contains(raw.Reason, "deadline") {
		t.Fatalf("unexpected failure payload: %+v", raw)
	}
}

func TestRunDedupesByFingerprint(t *testing.T) {
	dup := model.Finding{Severity: model.SeverityHigh, Category: "x", Title: "same site", Fingerprint: "abc"}
	reg := registryOf(
		&fakeAnalyzer{name: "x", findings: []model.Finding{dup}},
		&fakeAnalyzer{name: "y", findings: []model.Finding{dup}},
	)
	result, err := New(reg).Run(context.Background(), nil, &ir.SourceSet{}, config.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding after dedupe, got %d", len(result.Findings))
	}
}

func TestRunAppliesSuppressions(t *testing.T) {
	src := &ir.SourceSet{Files: []ir.SourceFile{{Path: "lib.rs", Content: `pub fn f(env: Env) {
    // sanctify:ignore test
    let x = risky();
}
`}}}
	reg := registryOf(&fakeAnalyzer{name: "test", findings: []model.Finding{
		{Severity: model.SeverityHigh, Category: "test", Title: "suppressed", Location: "lib.rs:3"},
		{Severity: model.SeverityHigh, Category: "test", Title: "kept", Location: "lib.rs:1"},
	}})

	result, err := New(reg).Run(context.Background(), nil, src, config.Default())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(result.Findings) != 1 || result.Findings[0].Title != "kept" {
		t.Fatalf("suppression not applied: %+v", result.Findings)
	}
}
