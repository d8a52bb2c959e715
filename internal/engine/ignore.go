package engine

import (
	"strconv"
	"strings"

	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
)

// suppressionMarker is the inline opt-out comment.
// Format: // sanctify:ignore <category>
const suppressionMarker = "sanctify:ignore "

// applySuppressions drops findings whose source location carries an inline
// suppression comment on the finding line or the few lines above it.
func applySuppressions(findings []model.Finding, src *ir.SourceSet) []model.Finding {
	if src.Empty() {
		return findings
	}
	var out []model.Finding
	for _, f := range findings {
		if isSuppressed(f, src) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isSuppressed(f model.Finding, src *ir.SourceSet) bool {
	path, line, ok := splitLocation(f.Location)
	if !ok {
		return false
	}
	content, ok := src.FileContent(path)
	if !ok {
		return false
	}
	lines := strings.Split(content, "\n")
	from := max(0, line-1-3)
	to := min(len(lines)-1, line-1)
	needle := suppressionMarker + f.Category
	for i := from; i <= to; i++ {
		if strings.Contains(lines[i], needle) {
			return true
		}
	}
	return false
}

// splitLocation parses "path:line" locations; function-name locations
// cannot be suppressed inline.
func splitLocation(loc string) (string, int, bool) {
	i := strings.LastIndex(loc, ":")
	if i < 0 {
		return "", 0, false
	}
	n, err := strconv.Atoi(loc[i+1:])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return loc[:i], n, true
}
