// Package analyzers holds the compiled-in analyzer rules. Registration is
// static and ordered; the registry is constructor-injected into the engine
// so tests can run with a subset.
package analyzers

import (
	"context"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

// Analyzer is one independent rule. Analyzers only read the module, source
// set, and config, and return their own findings; they never see each
// other's output.
type Analyzer interface {
	Meta() model.RuleMeta
	Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error)
}

type Registry struct{ analyzers []Analyzer }

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Register(a Analyzer) { r.analyzers = append(r.analyzers, a) }

// RegisterBuiltin installs every built-in rule in its fixed order. The
// order is part of the output contract: merge and id assignment follow it.
func (r *Registry) RegisterBuiltin() {
	r.Register(&authGaps{})
	r.Register(&panics{})
	r.Register(&arithmetic{})
	r.Register(&ledgerSize{})
	r.Register(&customRules{})
	r.Register(&events{})
	r.Register(&upgradePatterns{})
	r.Register(&storageCollisions{})
	r.Register(&complexity{})
	r.Register(&gasEstimation{})
}

// Active returns the registration-ordered subset enabled by cfg.
func (r *Registry) Active(cfg config.Config) []Analyzer {
	var out []Analyzer
	for _, a := range r.analyzers {
		meta := a.Meta()
		if cfg.RuleEnabled(meta.Name, meta.DefaultEnabled) {
			out = append(out, a)
		}
	}
	return out
}

func (r *Registry) Analyzers() []Analyzer { return r.analyzers }
