package parser

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// RustExtractor extracts use declarations and function/struct/enum/trait
// items from Rust source, tracking public/private visibility.
type RustExtractor struct {
	lang *sitter.Language
}

// NewRustExtractor returns a Rust extractor. A nil grammar selects the regex
// fallback strategy.
func NewRustExtractor(lang *sitter.Language) *RustExtractor {
	return &RustExtractor{lang: lang}
}

func (e *RustExtractor) Language() string { return "rust" }

func (e *RustExtractor) Ontology() Ontology {
	return Ontology{
		Language:    "rust",
		NodeTypes:   []string{"function", "struct", "enum", "trait"},
		EdgeTypes:   []string{EdgeImports},
		Description: "Rust ontology with visibility tracking and use imports",
	}
}

// rustItemKinds maps grammar item nodes to symbol types.
var rustItemKinds = map[string]string{
	"function_item": "function",
	"struct_item":   "struct",
	"enum_item":     "enum",
	"trait_item":    "trait",
}

func (e *RustExtractor) Parse(content []byte, path string) Result {
	res := newResult("rust", path)
	if e.lang == nil {
		e.parseFallback(content, path, &res)
		return res
	}

	p := sitter.NewParser()
	p.SetLanguage(e.lang)
	tree, err := p.ParseCtx(context.Background(), nil, content)
	if err != nil {
		res.Diagnostics = append(res.Diagnostics,
			NewDiagnostic("warning", "tree-sitter parse failed; using regex fallback", nil))
		e.parseFallback(content, path, &res)
		return res
	}
	defer tree.Close()

	origin := sourcePath(path)
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		nt := n.Type()
		if nt == "use_declaration" {
			target := strings.TrimSuffix(strings.TrimSpace(strings.TrimPrefix(n.Content(content), "use")), ";")
			res.Relations = append(res.Relations,
				NewRelation(EdgeImports, origin, strings.TrimSpace(target), nil))
		} else if kind, ok := rustItemKinds[nt]; ok {
			if nameNode := n.ChildByFieldName("name"); nameNode != nil {
				name := nameNode.Content(content)
				sym := NewSymbol(kind, name, "rust", map[string]any{
					"visibility": rustVisibility(n),
				})
				sym.ID = origin + "::" + name
				sym.File = path
				res.Symbols = append(res.Symbols, sym)
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return res
}

var (
	rustUseRe    = regexp.MustCompile(`(?m)^\s*use\s+([A-Za-z0-9_:{}\*,\s]+);`)
	rustFnRe     = regexp.MustCompile(`(?m)^\s*(pub\s+)?fn\s+([A-Za-z_]\w*)\s*[\(<]`)
	rustStructRe = regexp.MustCompile(`(?m)^\s*(pub\s+)?struct\s+([A-Za-z_]\w*)`)
	rustEnumRe   = regexp.MustCompile(`(?m)^\s*(pub\s+)?enum\s+([A-Za-z_]\w*)`)
	rustTraitRe  = regexp.MustCompile(`(?m)^\s*(pub\s+)?trait\s+([A-Za-z_]\w*)`)
)

func (e *RustExtractor) parseFallback(content []byte, path string, res *Result) {
	res.Diagnostics = append(res.Diagnostics,
		NewDiagnostic("warning", "tree-sitter not available; using regex fallback", nil))
	src := string(content)
	origin := sourcePath(path)
	for _, m := range rustUseRe.FindAllStringSubmatch(src, -1) {
		res.Relations = append(res.Relations,
			NewRelation(EdgeImports, origin, strings.TrimSpace(m[1]), nil))
	}
	for _, it := range []struct {
		re   *regexp.Regexp
		kind string
	}{
		{rustFnRe, "function"},
		{rustStructRe, "struct"},
		{rustEnumRe, "enum"},
		{rustTraitRe, "trait"},
	} {
		for _, m := range it.re.FindAllStringSubmatch(src, -1) {
			visibility := "private"
			if m[1] != "" {
				visibility = "public"
			}
			sym := NewSymbol(it.kind, m[2], "rust", map[string]any{"visibility": visibility})
			sym.File = path
			res.Symbols = append(res.Symbols, sym)
		}
	}
}

// rustVisibility returns "public" when the item carries a visibility
// modifier, "private" otherwise.
func rustVisibility(n *sitter.Node) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "visibility_modifier" {
			return "public"
		}
	}
	return "private"
}
