// Package engine runs the registered analyzers over a contract artifact and
// merges their findings into one ordered, reproducible result.
package engine

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/meshackyaro/Sanctifier/internal/analyzers"
	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

// DefaultAnalyzerBudget bounds one analyzer's wall clock on adversarial
// input; a timeout surfaces as the same synthetic failure finding as a
// panic.
const DefaultAnalyzerBudget = 5 * time.Second

const maxParallelAnalyzers = 4

type Engine struct {
	registry       *analyzers.Registry
	AnalyzerBudget time.Duration
}

// New builds an engine around an explicit registry; no global state.
func New(reg *analyzers.Registry) *Engine {
	return &Engine{registry: reg, AnalyzerBudget: DefaultAnalyzerBudget}
}

// Scan loads the artifact at path and analyzes it under cfg.
func (e *Engine) Scan(ctx context.Context, path string, cfg config.Config) (*model.Result, error) {
	mod, src, err := LoadArtifacts(path, cfg)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx, mod, src, cfg)
}

// Run invokes every active analyzer over the shared read-only inputs.
// Analyzers execute in parallel; correctness does not depend on completion
// order because results are collected into a slice indexed by registration
// order and merged only after every analyzer finishes. A panicking, failing,
// or timed-out analyzer contributes a single low-severity failure note and
// never suppresses the others.
func (e *Engine) Run(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) (*model.Result, error) {
	start := time.Now()
	active := e.registry.Active(cfg)
	results := make([][]model.Finding, len(active))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelAnalyzers)
	for i, a := range active {
		i, a := i, a
		g.Go(func() error {
			results[i] = e.invoke(gctx, a, mod, src, cfg)
			return nil
		})
	}
	_ = g.Wait()

	findings := merge(results, src)
	return &model.Result{Findings: findings, Elapsed: time.Since(start)}, nil
}

// invoke runs one analyzer under its budget, converting panics, errors, and
// timeouts into a synthetic finding.
func (e *Engine) invoke(ctx context.Context, a analyzers.Analyzer, mod *ir.Module, src *ir.SourceSet, cfg config.Config) []model.Finding {
	budget := e.AnalyzerBudget
	if budget <= 0 {
		budget = DefaultAnalyzerBudget
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	type outcome struct {
		findings []model.Finding
		err      error
	}
	ch := make(chan outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- outcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		fs, err := a.Analyze(ctx, mod, src, cfg)
		ch <- outcome{findings: fs, err: err}
	}()

	select {
	case out := <-ch:
		if out.err != nil {
			return []model.Finding{failureFinding(a, out.err)}
		}
		return out.findings
	case <-ctx.Done():
		return []model.Finding{failureFinding(a, ctx.Err())}
	}
}

func failureFinding(a analyzers.Analyzer, err error) model.Finding {
	meta := a.Meta()
	return model.Finding{
		Severity: model.SeverityLow,
		Category: "engine",
		Title:    fmt.Sprintf("Analyzer %s failed", meta.Name),
		Location: meta.Name,
		Raw:      model.AnalyzerFailure{Analyzer: meta.Name, Reason: err.Error()},
	}
}
