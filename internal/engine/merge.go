package engine

import (
	"fmt"
	"sort"

	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

// merge produces the final ordered sequence: concatenation in registration
// order, suppression and duplicate removal, a stable severity sort, then
// sequential category-prefixed ids. Deterministic for identical input.
func merge(results [][]model.Finding, src *ir.SourceSet) []model.Finding {
	var all []model.Finding
	for _, fs := range results {
		all = append(all, fs...)
	}

	all = applySuppressions(all, src)
	all = dedupe(all)

	sort.SliceStable(all, func(i, j int) bool {
		return model.SeverityRank(all[i].Severity) > model.SeverityRank(all[j].Severity)
	})

	for i := range all {
		all[i].ID = fmt.Sprintf("%s-%d", all[i].Category, i)
	}
	return all
}

// dedupe drops findings sharing a fingerprint with an earlier one; two
// analyzers corroborating the same site should not double-count it.
func dedupe(in []model.Finding) []model.Finding {
	seen := map[string]bool{}
	var out []model.Finding
	for _, f := range in {
		if f.Fingerprint != "" && seen[f.Fingerprint] {
			continue
		}
		if f.Fingerprint != "" {
			seen[f.Fingerprint] = true
		}
		out = append(out, f)
	}
	return out
}
