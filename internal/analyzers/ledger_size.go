package analyzers

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/meshackyaro/Sanctifier/internal/config"
	"github.com/meshackyaro/Sanctifier/internal/ir"
	"github.com/meshackyaro/Sanctifier/internal/model"
	"github.com/meshackyaro/Sanctifier/internal/util"
)

const enumDiscriminantSize = 4

// ledgerSize estimates the serialized size of every contract storage type
// and warns when it approaches or exceeds the ledger entry limit.
type ledgerSize struct{}

func (l *ledgerSize) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "ledger_size",
		Title:          "Ledger entry size",
		Category:       "ledger",
		DefaultEnabled: true,
	}
}

var contractTypeRe = regexp.MustCompile(`#\[contracttype\][^{]*?\b(struct|enum)\s+([A-Za-z0-9_]+)[^{]*\{`)

func (l *ledgerSize) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if src.Empty() {
		return nil, nil
	}
	limit := cfg.LedgerLimit
	if limit == 0 {
		limit = config.DefaultLedgerLimit
	}
	approaching := int(float64(limit) * cfg.SizeRatio())

	var findings []model.Finding
	for _, file := range src.Files {
		for _, loc := range contractTypeRe.FindAllStringSubmatchIndex(file.Content, -1) {
			kind := file.Content[loc[2]:loc[3]]
			name := file.Content[loc[4]:loc[5]]
			body := balancedBody(file.Content, loc[1]-1)
			var size int
			if kind == "struct" {
				size = estimateStructSize(body)
			} else {
				size = estimateEnumSize(body)
			}

			var level string
			var severity model.Severity
			switch {
			case size >= limit:
				level, severity = "ExceedsLimit", model.SeverityHigh
			case size >= approaching:
				level, severity = "ApproachingLimit", model.SeverityMedium
			default:
				continue
			}

			line, _ := util.FindLineRange(file.Content, file.Content[loc[0]:loc[1]])
			location := fmt.Sprintf("%s:%d", file.Path, line)
			findings = append(findings, model.Finding{
				Severity:    severity,
				Category:    "ledger",
				Title:       fmt.Sprintf("Contract type %s estimated at %d bytes (limit %d)", name, size, limit),
				Location:    location,
				Suggestion:  "Split large aggregates across multiple ledger entries or store variable-width data off the hot path.",
				Fingerprint: util.Fingerprint("ledger", location, line, name),
				Raw: model.SizeWarning{
					StructName:    name,
					EstimatedSize: size,
					Limit:         limit,
					Level:         level,
				},
			})
		}
	}
	return findings, nil
}

// balancedBody returns the brace-delimited body starting at openIdx.
func balancedBody(content string, openIdx int) string {
	depth := 0
	for i := openIdx; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return content[openIdx+1 : i]
			}
		}
	}
	return content[openIdx+1:]
}

func estimateStructSize(body string) int {
	total := 0
	for _, field := range splitTopLevel(body, ',') {
		field = strings.TrimSpace(field)
		if field == "" || strings.HasPrefix(field, "//") {
			continue
		}
		colon := strings.Index(field, ":")
		if colon < 0 {
			continue
		}
		total += estimateTypeSize(strings.TrimSpace(field[colon+1:]))
	}
	return total
}

// estimateEnumSize is the discriminant plus the widest variant payload.
func estimateEnumSize(body string) int {
	maxVariant := 0
	for _, variant := range splitTopLevel(body, ',') {
		variant = strings.TrimSpace(variant)
		if variant == "" || strings.HasPrefix(variant, "//") {
			continue
		}
		size := 0
		if open := strings.IndexAny(variant, "({"); open >= 0 {
			inner := balancedVariant(variant, open)
			for _, part := range splitTopLevel(inner, ',') {
				part = strings.TrimSpace(part)
				if part == "" {
					continue
				}
				if colon := strings.Index(part, ":"); colon >= 0 {
					part = strings.TrimSpace(part[colon+1:])
				}
				size += estimateTypeSize(part)
			}
		}
		maxVariant = max(maxVariant, size)
	}
	return enumDiscriminantSize + maxVariant
}

func balancedVariant(variant string, open int) string {
	closer := byte(')')
	if variant[open] == '{' {
		closer = '}'
	}
	if end := strings.LastIndexByte(variant, closer); end > open {
		return variant[open+1 : end]
	}
	return variant[open+1:]
}

// estimateTypeSize is the fixed worst-case size table. Fixed-width
// primitives at their width, variable-width host types at an estimate,
// unknown names at 32.
func estimateTypeSize(typ string) int {
	typ = strings.TrimSpace(strings.TrimSuffix(typ, ","))
	typ = strings.TrimPrefix(typ, "pub ")

	// [T; N]
	if strings.HasPrefix(typ, "[") {
		inner := strings.TrimSuffix(strings.TrimPrefix(typ, "["), "]")
		if semi := strings.LastIndex(inner, ";"); semi >= 0 {
			elem := estimateTypeSize(inner[:semi])
			if n, err := strconv.Atoi(strings.TrimSpace(inner[semi+1:])); err == nil {
				return n * elem
			}
		}
		return 64
	}

	base := typ
	var args []string
	if lt := strings.Index(typ, "<"); lt >= 0 && strings.HasSuffix(typ, ">") {
		base = strings.TrimSpace(typ[:lt])
		args = splitTopLevel(typ[lt+1:len(typ)-1], ',')
	}
	if dot := strings.LastIndex(base, "::"); dot >= 0 {
		base = base[dot+2:]
	}

	switch base {
	case "u8", "i8":
		return 1
	case "u32", "i32", "bool":
		return 4
	case "u64", "i64":
		return 8
	case "u128", "i128", "U128", "I128":
		return 16
	case "Address":
		return 32
	case "Bytes", "BytesN", "String", "Symbol":
		return 64
	case "Vec":
		if len(args) == 1 {
			return 8 + estimateTypeSize(args[0])
		}
		return 128
	case "Map":
		if len(args) == 2 {
			return 16 + 2*(estimateTypeSize(args[0])+estimateTypeSize(args[1]))
		}
		return 128
	case "Option":
		if len(args) == 1 {
			return 1 + estimateTypeSize(args[0])
		}
		return 32
	default:
		return 32
	}
}

// splitTopLevel splits on sep outside any <>, (), [], {} nesting.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(', '[', '{':
			depth++
		case '>', ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}
