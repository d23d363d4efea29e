package parser

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// JavaScriptExtractor extracts symbols and relations from JavaScript and
// TypeScript source (both are parsed with the JavaScript grammar). It covers
// function and class declarations, ES-module imports, and CommonJS require
// calls. The Vue extractor delegates its script block here.
type JavaScriptExtractor struct {
	lang *sitter.Language
}

// NewJavaScriptExtractor returns a JavaScript extractor. A nil grammar
// selects the regex fallback strategy.
func NewJavaScriptExtractor(lang *sitter.Language) *JavaScriptExtractor {
	return &JavaScriptExtractor{lang: lang}
}

func (e *JavaScriptExtractor) Language() string { return "javascript" }

func (e *JavaScriptExtractor) Ontology() Ontology {
	return Ontology{
		Language:    "javascript",
		NodeTypes:   []string{"function", "class"},
		EdgeTypes:   []string{EdgeImports, EdgeRequires},
		Description: "JavaScript/TypeScript ontology with ES-module and CommonJS imports",
	}
}

var jsRequireRe = regexp.MustCompile(`require\((['"])(.+?)['"]\)`)

func (e *JavaScriptExtractor) Parse(content []byte, path string) Result {
	res := newResult("javascript", path)
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
		switch n.Type() {
		case "function_declaration", "generator_function_declaration":
			if name := firstChildOfType(n, content, "identifier"); name != "" {
				sym := NewSymbol("function", name, "javascript", nil)
				sym.ID = origin + "::" + name
				sym.File = path
				res.Symbols = append(res.Symbols, sym)
			}
		case "class_declaration":
			if name := firstChildOfType(n, content, "identifier"); name != "" {
				sym := NewSymbol("class", name, "javascript", nil)
				sym.ID = origin + "::" + name
				sym.File = path
				res.Symbols = append(res.Symbols, sym)
			}
		case "import_statement":
			res.Relations = append(res.Relations,
				NewRelation(EdgeImports, origin, strings.TrimSpace(n.Content(content)), nil))
		case "call_expression":
			if m := jsRequireRe.FindStringSubmatch(n.Content(content)); m != nil {
				res.Relations = append(res.Relations,
					NewRelation(EdgeRequires, origin, m[2], nil))
				return // avoid re-matching the same require in nested nodes
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
	jsFuncRe   = regexp.MustCompile(`function\s+([A-Za-z_$]\w*)\s*\(`)
	jsClassRe  = regexp.MustCompile(`class\s+([A-Za-z_$]\w*)`)
	jsImportRe = regexp.MustCompile(`(?m)^\s*import\s+.+?from\s+['"](.+?)['"]`)
)

func (e *JavaScriptExtractor) parseFallback(content []byte, path string, res *Result) {
	res.Diagnostics = append(res.Diagnostics,
		NewDiagnostic("warning", "tree-sitter not available; using regex fallback", nil))
	src := string(content)
	origin := sourcePath(path)
	for _, m := range jsFuncRe.FindAllStringSubmatch(src, -1) {
		sym := NewSymbol("function", m[1], "javascript", nil)
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}
	for _, m := range jsClassRe.FindAllStringSubmatch(src, -1) {
		sym := NewSymbol("class", m[1], "javascript", nil)
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}
	for _, m := range jsImportRe.FindAllStringSubmatch(src, -1) {
		res.Relations = append(res.Relations, NewRelation(EdgeImports, origin, m[1], nil))
	}
	for _, m := range jsRequireRe.FindAllStringSubmatch(src, -1) {
		res.Relations = append(res.Relations, NewRelation(EdgeRequires, origin, m[2], nil))
	}
}

// firstChildOfType returns the text of the first direct child with the given
// node type, or "" when absent.
func firstChildOfType(n *sitter.Node, content []byte, nodeType string) string {
	for i := 0; i < int(n.ChildCount()); i++ {
		if ch := n.Child(i); ch.Type() == nodeType {
			return ch.Content(content)
		}
	}
	return ""
}
