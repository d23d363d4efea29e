package parser

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// CExtractor extracts preprocessor includes, function definitions, and struct
// declarations from C source. Coverage is intentionally naive: no macro
// expansion, no declaration-only prototypes.
type CExtractor struct {
	lang *sitter.Language
}

// NewCExtractor returns a C extractor. A nil grammar selects the regex
// fallback strategy.
func NewCExtractor(lang *sitter.Language) *CExtractor {
	return &CExtractor{lang: lang}
}

func (e *CExtractor) Language() string { return "c" }

func (e *CExtractor) Ontology() Ontology {
	return Ontology{
		Language:    "c",
		NodeTypes:   []string{"function", "struct"},
		EdgeTypes:   []string{EdgeIncludes},
		Description: "C ontology with preprocessor include tracking",
	}
}

func (e *CExtractor) Parse(content []byte, path string) Result {
	res := newResult("c", path)
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
		case "preproc_include":
			if pathNode := n.ChildByFieldName("path"); pathNode != nil {
				target := strings.Trim(pathNode.Content(content), `<>"`)
				res.Relations = append(res.Relations,
					NewRelation(EdgeIncludes, origin, target, nil))
			}
		case "function_definition":
			if name := cFunctionName(n, content); name != "" {
				sym := NewSymbol("function", name, "c", nil)
				sym.ID = origin + "::" + name
				sym.File = path
				res.Symbols = append(res.Symbols, sym)
			}
		case "struct_specifier":
			// Only named struct definitions; bare references have no body.
			nameNode := n.ChildByFieldName("name")
			if nameNode != nil && n.ChildByFieldName("body") != nil {
				sym := NewSymbol("struct", nameNode.Content(content), "c", nil)
				sym.ID = origin + "::" + nameNode.Content(content)
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
	cIncludeRe = regexp.MustCompile(`(?m)^\s*#\s*include\s+[<"](.+?)[>"]`)
	cFuncRe    = regexp.MustCompile(`(?m)^\s*[A-Za-z_][\w\s\*\(\),]*\s+([A-Za-z_]\w*)\s*\([^\)]*\)\s*\{`)
	cStructRe  = regexp.MustCompile(`(?m)^\s*struct\s+([A-Za-z_]\w*)\s*\{`)
)

func (e *CExtractor) parseFallback(content []byte, path string, res *Result) {
	res.Diagnostics = append(res.Diagnostics,
		NewDiagnostic("warning", "tree-sitter not available; using regex fallback", nil))
	src := string(content)
	origin := sourcePath(path)
	for _, m := range cIncludeRe.FindAllStringSubmatch(src, -1) {
		res.Relations = append(res.Relations, NewRelation(EdgeIncludes, origin, m[1], nil))
	}
	for _, m := range cFuncRe.FindAllStringSubmatch(src, -1) {
		sym := NewSymbol("function", m[1], "c", nil)
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}
	for _, m := range cStructRe.FindAllStringSubmatch(src, -1) {
		sym := NewSymbol("struct", m[1], "c", nil)
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}
}

// cFunctionName digs the declarator chain of a function_definition down to
// its identifier, skipping pointer declarators.
func cFunctionName(n *sitter.Node, content []byte) string {
	decl := n.ChildByFieldName("declarator")
	for decl != nil {
		switch decl.Type() {
		case "function_declarator":
			decl = decl.ChildByFieldName("declarator")
		case "pointer_declarator":
			decl = decl.ChildByFieldName("declarator")
		case "identifier":
			return decl.Content(content)
		default:
			return ""
		}
	}
	return ""
}
