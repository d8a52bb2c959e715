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

// customRules matches user-supplied regex patterns against source lines.
// It is independent of the binary IR entirely.
type customRules struct{}

func (c *customRules) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "custom_rules",
		Title:          "Custom rule match",
		Category:       "custom",
		DefaultEnabled: true,
	}
}

func (c *customRules) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if src.Empty() || len(cfg.CustomRules) == 0 {
		return nil, nil
	}
	var findings []model.Finding
	for _, rule := range cfg.CustomRules {
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			// Validate rejects these up front; an unloadable pattern at this
			// point yields no evidence, not a crash.
			continue
		}
		for _, file := range src.Files {
			if cfg.Ignored(file.Path) {
				continue
			}
			for i, line := range strings.Split(file.Content, "\n") {
				if !re.MatchString(line) {
					continue
				}
				lineNo := i + 1
				loc := fmt.Sprintf("%s:%d", file.Path, lineNo)
				snippet := strings.TrimSpace(line)
				findings = append(findings, model.Finding{
					Severity:    model.SeverityLow,
					Category:    "custom",
					Title:       fmt.Sprintf("Custom rule %s matched", rule.Name),
					Location:    loc,
					Snippet:     snippet,
					Fingerprint: util.Fingerprint("custom", loc, lineNo, rule.Name),
					Raw: model.CustomRuleMatch{
						RuleName: rule.Name,
						Line:     lineNo,
						Snippet:  snippet,
					},
				})
			}
		}
	}
	return findings, nil
}
