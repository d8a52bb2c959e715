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

// Per-construct cost weights. Storage host calls dominate everything else;
// the loop multiplier stands in for an unknown iteration count.
const (
	gasBaseInstructions = 50
	gasBaseMemory       = 32
	gasBinaryOp         = 5
	gasFnCall           = 20
	gasStorageCall      = 1000
	gasAuthCall         = 500
	gasMethodCall       = 25
	gasAllocMacroInstr  = 50
	gasAllocMacroMemory = 128
	gasSymbolMacroInstr = 10
	gasSymbolMacroMem   = 32
	gasOtherMacroInstr  = 10
	gasLoopOverhead     = 50
	gasLoopMultiplier   = 10
	gasLetInstructions  = 2
	gasLetDefaultMemory = 8
)

// gasEstimation reports a rough instruction and memory budget for every
// public entry point. Findings are informational; the numbers order the
// functions relative to each other rather than predict real metering.
type gasEstimation struct{}

func (g *gasEstimation) Meta() model.RuleMeta {
	return model.RuleMeta{
		Name:           "gas_estimation",
		Title:          "Gas and resource estimation",
		Category:       "gas",
		DefaultEnabled: true,
	}
}

var (
	loopHeaderRe = regexp.MustCompile(`\b(for|while|loop)\b`)
	methodCallRe = regexp.MustCompile(`\.([a-z_][A-Za-z0-9_]*)\s*\(`)
	freeCallRe   = regexp.MustCompile(`(^|[^.\w!])([a-z_][A-Za-z0-9_]*)\(`)
	macroCallRe  = regexp.MustCompile(`\b([A-Za-z_][A-Za-z0-9_]*)![(\[{]`)
	binaryOpRe   = regexp.MustCompile(`==|!=|<=|>=|&&|\|\||[+\-*/%]`)
	letBindRe    = regexp.MustCompile(`^\s*let\s+(?:mut\s+)?[A-Za-z0-9_]+\s*:\s*([^=;]+)`)
)

var storageMethods = map[string]bool{
	"get": true, "set": true, "has": true, "update": true, "remove": true,
}

var callKeywords = map[string]bool{
	"if": true, "while": true, "for": true, "match": true, "loop": true, "return": true, "fn": true,
}

func (g *gasEstimation) Analyze(ctx context.Context, mod *ir.Module, src *ir.SourceSet, cfg config.Config) ([]model.Finding, error) {
	if src.Empty() {
		return nil, nil
	}
	var findings []model.Finding
	for _, fn := range src.Functions() {
		if !fn.Pub {
			continue
		}
		instr, mem := estimateFunction(fn.Body)
		loc := fmt.Sprintf("%s:%d", fn.File, fn.StartLine)
		findings = append(findings, model.Finding{
			Severity:    model.SeverityLow,
			Category:    "gas",
			Title:       fmt.Sprintf("%s estimated at ~%d instructions, ~%d bytes of memory", fn.Name, instr, mem),
			Location:    loc,
			Fingerprint: util.Fingerprint("gas", loc, fn.StartLine, fn.Name),
			Raw: model.GasEstimationReport{
				FunctionName:          fn.Name,
				EstimatedInstructions: instr,
				EstimatedMemoryBytes:  mem,
			},
		})
	}
	return findings, nil
}

// estimateFunction walks the body line by line, weighting every cost by
// gasLoopMultiplier per enclosing loop level. Loop headers themselves are
// charged at the level of the enclosing block.
func estimateFunction(body string) (instr, mem int) {
	instr, mem = gasBaseInstructions, gasBaseMemory
	open := strings.Index(body, "{")
	if open < 0 {
		return instr, mem
	}

	depth := 0
	var loopStack []int
	for _, line := range strings.Split(body[open:], "\n") {
		line = stripLineComment(line)
		mult := loopWeight(len(loopStack))

		isLoop := loopHeaderRe.MatchString(line)
		if isLoop {
			instr += gasLoopOverhead * mult
		}

		li, lm := lineCost(line)
		instr += li * mult
		mem += lm * mult

		for i := 0; i < len(line); i++ {
			switch line[i] {
			case '{':
				depth++
				if isLoop {
					loopStack = append(loopStack, depth)
					isLoop = false
				}
			case '}':
				depth--
				for len(loopStack) > 0 && loopStack[len(loopStack)-1] > depth {
					loopStack = loopStack[:len(loopStack)-1]
				}
			}
		}
	}
	return instr, mem
}

func loopWeight(levels int) int {
	w := 1
	if levels > 6 {
		levels = 6
	}
	for i := 0; i < levels; i++ {
		w *= gasLoopMultiplier
	}
	return w
}

// lineCost is the unweighted cost of one statement line.
func lineCost(line string) (instr, mem int) {
	// "->" is a return-type arrow, not a subtraction.
	ops := strings.ReplaceAll(line, "->", "")
	instr += gasBinaryOp * len(binaryOpRe.FindAllString(ops, -1))

	for _, m := range methodCallRe.FindAllStringSubmatch(line, -1) {
		switch {
		case storageMethods[m[1]]:
			instr += gasStorageCall
		case m[1] == "require_auth":
			instr += gasAuthCall
		default:
			instr += gasMethodCall
		}
	}

	for _, m := range freeCallRe.FindAllStringSubmatch(line, -1) {
		if !callKeywords[m[2]] {
			instr += gasFnCall
		}
	}

	for _, m := range macroCallRe.FindAllStringSubmatch(line, -1) {
		switch m[1] {
		case "vec", "map":
			instr += gasAllocMacroInstr
			mem += gasAllocMacroMemory
		case "symbol_short":
			instr += gasSymbolMacroInstr
			mem += gasSymbolMacroMem
		default:
			instr += gasOtherMacroInstr
		}
	}

	if bind := letBindRe.FindStringSubmatch(line); bind != nil {
		instr += gasLetInstructions
		mem += gasTypeSize(bind[1])
	} else if strings.HasPrefix(strings.TrimSpace(line), "let ") {
		instr += gasLetInstructions
		mem += gasLetDefaultMemory
	}
	return instr, mem
}

// gasTypeSize is the flat per-binding size table. Container types count a
// fixed allocation rather than recursing into their element types.
func gasTypeSize(typ string) int {
	base := strings.TrimSpace(typ)
	if lt := strings.Index(base, "<"); lt >= 0 {
		base = strings.TrimSpace(base[:lt])
	}
	if dot := strings.LastIndex(base, "::"); dot >= 0 {
		base = base[dot+2:]
	}
	switch base {
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
	case "Vec", "Map":
		return 128
	default:
		return 32
	}
}
