package analyzers

import (
	"context"
	"fmt"
	"strings"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
	"github.com/meshackyaro/Sanctifier/internal/util"
)

// upgradePatterns inspects the module's upgrade surface: an upgrade
// mechanism without an initializer, and upgrade entry points that are not
// gated by authorization.
type upgradePatterns struct{}

func (u *upgradePatterns) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "upgrade",
		Title:          "Upgrade pattern safety",
		Category:       "upgrade",
		DefaultEnabled: true,
	}
}

var adminFnNames = map[string]bool{
	"set_admin":      true,
	"upgrade":        true,
	"set_authorized": true,
	"deploy":         true,
	"update_admin":   true,
	"transfer_admin": true,
	"change_admin":   true,
}

func isUpgradeOrAdminFn(name string) bool {
	lower := strings.ToLower(name)
	if adminFnNames[lower] {
		return true
	}
	return strings.Contains(lower, "upgrade") && (strings.Contains(lower, "contract") || strings.Contains(lower, "wasm"))
}

func isInitFn(name string) bool {
	switch strings.ToLower(name) {
	case "initialize", "init", "initialise":
		return true
	}
	return false
}

type upgradeEntry struct {
	name     string
	location string
	hasAuth  bool
}

func (u *upgradePatterns) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	var entries []upgradeEntry
	hasInit := false

	if mod != nil {
		for _, fn := range mod.ExportedFunctions() {
			if isInitFn(fn.Name) {
				hasInit = true
			}
			_, auth := walkReachable(mod, fn.Index)
			reachesUpgrade := reachesHost(mod, fn.Index, ir.HostUpgrade)
			if isUpgradeOrAdminFn(fn.Name) || reachesUpgrade {
				entries = append(entries, upgradeEntry{name: fn.DisplayName(), location: fn.DisplayName(), hasAuth: auth})
			}
		}
	} else if !src.Empty() {
		for _, fn := range src.Functions() {
			if isInitFn(fn.Name) {
				hasInit = true
			}
			upgradeCall := strings.Contains(fn.Body, "update_current_contract_wasm")
			if !fn.Pub || (!isUpgradeOrAdminFn(fn.Name) && !upgradeCall) {
				continue
			}
			entries = append(entries, upgradeEntry{
				name:     fn.Name,
				location: fmt.Sprintf("%s:%d", fn.File, fn.StartLine),
				hasAuth:  requireAuthRe.MatchString(fn.Body),
			})
		}
	}

	var findings []model.Finding
	if len(entries) > 0 && !hasInit {
		loc := entries[0].location
		findings = append(findings, model.Finding{
			Severity:    model.SeverityMedium,
			Category:    "upgrade",
			Title:       "Upgrade mechanism without an initializer function",
			Location:    loc,
			Suggestion:  "Add an initialize entry point that records the admin before any upgrade can run.",
			Fingerprint: util.Fingerprint("upgrade", loc, 0, "init_pattern"),
			Raw: model.UpgradeFinding{
				Category:   "init_pattern",
				Location:   loc,
				Message:    "Contract exposes an upgrade mechanism but no initializer was found.",
				Suggestion: "Add an initialize entry point that records the admin before any upgrade can run.",
			},
		})
	}
	for _, e := range entries {
		if e.hasAuth {
			continue
		}
		findings = append(findings, model.Finding{
			Severity:    model.SeverityHigh,
			Category:    "upgrade",
			Title:       fmt.Sprintf("Upgrade entry point %s lacks authorization", e.name),
			Location:    e.location,
			Suggestion:  "Ensure this function is protected by proper authentication.",
			Fingerprint: util.Fingerprint("upgrade", e.location, 0, e.name),
			Raw: model.UpgradeFinding{
				Category:     "admin_control",
				FunctionName: e.name,
				Location:     e.location,
				Message:      "Potential upgrade or administrative function without authorization gating.",
				Suggestion:   "Ensure this function is protected by proper authentication.",
			},
		})
	}
	return findings, nil
}

// reachesHost reports whether any instruction reachable from root calls a
// host function of the given class. Visited-set guarded like walkReachable.
func reachesHost(mod *ir.Module, root int, class ir.HostClass) bool {
	visited := map[int]bool{}
	found := false
	var visit func(idx, depth int)
	visit = func(idx, depth int) {
		if found || visited[idx] || depth > maxCallDepth || idx >= len(mod.Functions) {
			return
		}
		visited[idx] = true
		fn := &mod.Functions[idx]
		for i := range fn.Instructions {
			if fn.Instructions[i].Host == class {
				found = true
				return
			}
		}
		for _, callee := range mod.CalleesOf(idx) {
			visit(callee, depth+1)
		}
	}
	visit(root, 0)
	return found
}
