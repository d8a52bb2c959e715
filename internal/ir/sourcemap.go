package ir

import (
	"regexp"
	"strings"
)

// SourceFile is one contract source file kept in memory for the run.
type SourceFile struct {
	Path    string
	Content string
}

// SourceSet is the ordered collection of source files handed to analyzers.
// Order is the loader's discovery order, so runs are reproducible.
type SourceSet struct {
	Files []SourceFile
}

func (s *SourceSet) Empty() bool { return s == nil || len(s.Files) == 0 }

var fnHeaderRe = regexp.MustCompile(`(?m)^[ \t]*(pub[ \t]+)?fn[ \t]+([A-Za-z0-9_]+)[ \t]*\(`)

// SourceFunc is a function extracted from source text: the fallback shape
// analyzers walk when no binary module is available, and the span provider
// for snippet extraction when one is.
type SourceFunc struct {
	Name      string
	File      string
	StartLine int
	EndLine   int
	Body      string
	Pub       bool
}

// Functions extracts every function definition across the set, in file then
// line order. Extraction is best-effort: unbalanced braces end the span at
// end-of-file instead of failing.
func (s *SourceSet) Functions() []SourceFunc {
	if s.Empty() {
		return nil
	}
	var out []SourceFunc
	for _, f := range s.Files {
		locs := fnHeaderRe.FindAllStringSubmatchIndex(f.Content, -1)
		for _, loc := range locs {
			name := f.Content[loc[4]:loc[5]]
			start := strings.Count(f.Content[:loc[0]], "\n") + 1
			body, endLine := functionBody(f.Content, loc[0], start)
			out = append(out, SourceFunc{
				Name:      name,
				File:      f.Path,
				StartLine: start,
				EndLine:   endLine,
				Body:      body,
				Pub:       loc[2] >= 0,
			})
		}
	}
	return out
}

// functionBody returns the text from the header through the matching
// closing brace, plus the 1-based end line.
func functionBody(content string, headerIdx, startLine int) (string, int) {
	open := strings.Index(content[headerIdx:], "{")
	if open < 0 {
		return content[headerIdx:], startLine
	}
	depth := 0
	for i := headerIdx + open; i < len(content); i++ {
		switch content[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				body := content[headerIdx : i+1]
				return body, startLine + strings.Count(body, "\n")
			}
		}
	}
	body := content[headerIdx:]
	return body, startLine + strings.Count(body, "\n")
}

// FunctionSpan locates the named function in the set.
func (s *SourceSet) FunctionSpan(name string) (SourceFunc, bool) {
	for _, fn := range s.Functions() {
		if fn.Name == name {
			return fn, true
		}
	}
	return SourceFunc{}, false
}

// FileContent returns the content of the file at path.
func (s *SourceSet) FileContent(path string) (string, bool) {
	if s == nil {
		return "", false
	}
	for _, f := range s.Files {
		if f.Path == path {
			return f.Content, true
		}
	}
	return "", false
}

// AlignSource attaches best-effort source spans to module functions by
// export name. Misalignment is silent: a function that cannot be located
// simply reports no snippet.
func AlignSource(m *Module, src *SourceSet) {
	if m == nil || src.Empty() {
		return
	}
	spans := map[string]SourceFunc{}
	for _, fn := range src.Functions() {
		if _, seen := spans[fn.Name]; !seen {
			spans[fn.Name] = fn
		}
	}
	for i := range m.Functions {
		fn := &m.Functions[i]
		if fn.Imported || fn.Name == "" {
			continue
		}
		if span, ok := spans[fn.Name]; ok {
			fn.SrcFile = span.File
			fn.SrcStart = span.StartLine
			fn.SrcEnd = span.EndLine
		}
	}
}
