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

// storageCollisions flags storage key literals defined more than once:
// two symbols with the same short value silently address the same entry.
type storageCollisions struct{}

func (s *storageCollisions) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "storage_collisions",
		Title:          "Storage key collision",
		Category:       "collision",
		DefaultEnabled: true,
	}
}

var (
	constKeyRe    = regexp.MustCompile(`const\s+([A-Z0-9_]+)\s*:[^=]*=\s*"([^"]+)"`)
	symbolNewRe   = regexp.MustCompile(`Symbol::new\s*\([^,]+,\s*"([^"]+)"\s*\)`)
	symbolShortRe = regexp.MustCompile(`symbol_short!\s*\(\s*"([^"]+)"\s*\)`)
)

type keySite struct {
	value    string
	keyType  string
	location string
	line     int
}

func (s *storageCollisions) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if src.Empty() {
		return nil, nil
	}
	var sites []keySite
	for _, file := range src.Files {
		collect := func(re *regexp.Regexp, keyType string, valueGroup int) {
			for _, m := range re.FindAllStringSubmatchIndex(file.Content, -1) {
				value := file.Content[m[2*valueGroup]:m[2*valueGroup+1]]
				line := strings.Count(file.Content[:m[0]], "\n") + 1
				sites = append(sites, keySite{
					value:    value,
					keyType:  keyType,
					location: fmt.Sprintf("%s:%d", file.Path, line),
					line:     line,
				})
			}
		}
		collect(constKeyRe, "const", 2)
		collect(symbolNewRe, "Symbol::new", 1)
		collect(symbolShortRe, "symbol_short!", 1)
	}

	grouped := map[string][]keySite{}
	var order []string
	for _, site := range sites {
		if _, seen := grouped[site.value]; !seen {
			order = append(order, site.value)
		}
		grouped[site.value] = append(grouped[site.value], site)
	}

	var findings []model.Finding
	for _, value := range order {
		group := grouped[value]
		if len(group) < 2 {
			continue
		}
		for i, site := range group {
			var others []string
			for j, other := range group {
				if j != i {
					others = append(others, other.location)
				}
			}
			msg := fmt.Sprintf("Potential storage key collision: value %q is also used in: %s", value, strings.Join(others, ", "))
			findings = append(findings, model.Finding{
				Severity:    model.SeverityMedium,
				Category:    "collision",
				Title:       fmt.Sprintf("Storage key %q defined at %d sites", value, len(group)),
				Location:    site.location,
				Suggestion:  "Give each storage entry a unique key, or centralize keys in one DataKey enum.",
				Fingerprint: util.Fingerprint("collision", site.location, site.line, value),
				Raw: model.StorageCollisionIssue{
					KeyValue: value,
					KeyType:  site.keyType,
					Location: site.location,
					Message:  msg,
				},
			})
		}
	}
	return findings, nil
}
