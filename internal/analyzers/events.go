package analyzers

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
	"github.com/meshackyaro/Sanctifier/internal/util"
)

// events groups event publish sites by event name and flags topic-count
// mismatches between sites of the same event.
type events struct{}

func (e *events) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "events",
		Title:          "Event topic consistency",
		Category:       "event",
		DefaultEnabled: true,
	}
}

var (
	publishRe   = regexp.MustCompile(`\.events\(\)\s*\.publish\s*\(`)
	eventNameRe = regexp.MustCompile(`symbol_short!\s*\(\s*"([^"]+)"\s*\)|Symbol::new\s*\([^,]+,\s*"([^"]+)"\s*\)`)
)

type publishSite struct {
	name     string
	topics   int
	location string
}

func (e *events) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if src.Empty() {
		return nil, nil
	}
	sites := collectPublishSites(src)

	byName := map[string][]publishSite{}
	var order []string
	for _, s := range sites {
		if s.name == "" {
			continue
		}
		if _, seen := byName[s.name]; !seen {
			order = append(order, s.name)
		}
		byName[s.name] = append(byName[s.name], s)
	}

	var findings []model.Finding
	for _, name := range order {
		group := byName[name]
		counts := map[int]bool{}
		var topicCounts []int
		for _, s := range group {
			if !counts[s.topics] {
				counts[s.topics] = true
				topicCounts = append(topicCounts, s.topics)
			}
		}
		if len(counts) <= 1 {
			continue
		}
		sort.Ints(topicCounts)
		loc := group[0].location
		findings = append(findings, model.Finding{
			Severity:    model.SeverityMedium,
			Category:    "event",
			Title:       fmt.Sprintf("Event %q published with inconsistent topic counts", name),
			Location:    loc,
			Suggestion:  "Emit the same topic tuple shape at every publish site for this event.",
			Fingerprint: util.Fingerprint("event", loc, len(group), name),
			Raw: model.EventIssue{
				EventName:   name,
				TopicCounts: topicCounts,
				Location:    loc,
			},
		})
	}
	return findings, nil
}

// collectPublishSites finds env.events().publish((topics...), data) call
// sites and derives the event name from the leading topic symbol.
func collectPublishSites(src *ir.SourceSet) []publishSite {
	var sites []publishSite
	for _, file := range src.Files {
		for _, loc := range publishRe.FindAllStringIndex(file.Content, -1) {
			args := balancedArgs(file.Content, loc[1]-1)
			line := strings.Count(file.Content[:loc[0]], "\n") + 1
			sites = append(sites, publishSite{
				name:     leadingEventName(args),
				topics:   topicCount(args),
				location: fmt.Sprintf("%s:%d", file.Path, line),
			})
		}
	}
	return sites
}

// balancedArgs returns the argument text of the call whose opening paren is
// at openIdx.
func balancedArgs(content string, openIdx int) string {
	depth := 0
	for i := openIdx; i < len(content); i++ {
		switch content[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return content[openIdx+1 : i]
			}
		}
	}
	return content[openIdx+1:]
}

func leadingEventName(args string) string {
	m := eventNameRe.FindStringSubmatch(args)
	if m == nil {
		return ""
	}
	if m[1] != "" {
		return m[1]
	}
	return m[2]
}

// topicCount is the arity of the first argument: a tuple's top-level comma
// count plus one, or 1 for a bare topic.
func topicCount(args string) int {
	args = strings.TrimSpace(args)
	if !strings.HasPrefix(args, "(") {
		return 1
	}
	tuple := balancedArgs(args, 0)
	// (a, b) is 2 topics; (a,) is the single-element tuple form
	n := 0
	for _, part := range splitTopLevel(tuple, ',') {
		if strings.TrimSpace(part) != "" {
			n++
		}
	}
	return n
}
