package parser

import "regexp"

// BashExtractor extracts function definitions, sourced scripts, and top-level
// variable assignments from shell scripts. Shell is regex-first: the grammar
// gains little over line patterns for these constructs, so no tree-sitter
// binding is used and no fallback diagnostic is emitted.
type BashExtractor struct{}

// NewBashExtractor returns a Bash extractor.
func NewBashExtractor() *BashExtractor {
	return &BashExtractor{}
}

func (e *BashExtractor) Language() string { return "bash" }

func (e *BashExtractor) Ontology() Ontology {
	return Ontology{
		Language:    "bash",
		NodeTypes:   []string{"function", "variable"},
		EdgeTypes:   []string{EdgeSources},
		Description: "Shell ontology with sourced script tracking",
	}
}

var (
	bashBraceFnRe   = regexp.MustCompile(`(?m)^\s*([A-Za-z_]\w*)\s*\(\)\s*\{`)
	bashKeywordFnRe = regexp.MustCompile(`(?m)^\s*function\s+([A-Za-z_]\w*)\b`)
	bashSourceRe    = regexp.MustCompile(`(?m)^\s*(?:source|\.)\s+(\S+)`)
	bashAssignRe    = regexp.MustCompile(`(?m)^([A-Za-z_]\w*)=`)
)

func (e *BashExtractor) Parse(content []byte, path string) Result {
	res := newResult("bash", path)
	src := string(content)
	origin := sourcePath(path)

	seen := map[string]bool{}
	for _, re := range []*regexp.Regexp{bashBraceFnRe, bashKeywordFnRe} {
		for _, m := range re.FindAllStringSubmatch(src, -1) {
			name := m[1]
			if seen[name] {
				continue
			}
			seen[name] = true
			sym := NewSymbol("function", name, "bash", nil)
			sym.ID = origin + "::" + name
			sym.File = path
			res.Symbols = append(res.Symbols, sym)
		}
	}

	for _, m := range bashSourceRe.FindAllStringSubmatch(src, -1) {
		res.Relations = append(res.Relations, NewRelation(EdgeSources, origin, m[1], nil))
	}

	// Top-level assignments only: indented ones are usually locals.
	for _, m := range bashAssignRe.FindAllStringSubmatch(src, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		sym := NewSymbol("variable", name, "bash", nil)
		sym.ID = origin + "::" + name
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}

	return res
}
