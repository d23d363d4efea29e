package parser

import (
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// PHPExtractor extracts function and class declarations and the
// include/require family from PHP source.
type PHPExtractor struct {
	lang *sitter.Language
}

// NewPHPExtractor returns a PHP extractor. A nil grammar selects the regex
// fallback strategy.
func NewPHPExtractor(lang *sitter.Language) *PHPExtractor {
	return &PHPExtractor{lang: lang}
}

func (e *PHPExtractor) Language() string { return "php" }

func (e *PHPExtractor) Ontology() Ontology {
	return Ontology{
		Language:    "php",
		NodeTypes:   []string{"function", "class"},
		EdgeTypes:   []string{EdgeIncludes},
		Description: "PHP ontology with OOP and include support",
	}
}

func (e *PHPExtractor) Parse(content []byte, path string) Result {
	res := newResult("php", path)
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
		case "function_definition", "method_declaration":
			if name := phpDeclName(n, content); name != "" {
				sym := NewSymbol("function", name, "php", nil)
				sym.ID = origin + "::" + name
				sym.File = path
				res.Symbols = append(res.Symbols, sym)
			}
		case "class_declaration":
			if name := phpDeclName(n, content); name != "" {
				sym := NewSymbol("class", name, "php", nil)
				sym.ID = origin + "::" + name
				sym.File = path
				res.Symbols = append(res.Symbols, sym)
			}
		case "include_expression", "require_expression",
			"include_once_expression", "require_once_expression":
			res.Relations = append(res.Relations,
				NewRelation(EdgeIncludes, origin, strings.TrimSpace(n.Content(content)), nil))
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return res
}

var (
	phpFuncRe    = regexp.MustCompile(`function\s+([A-Za-z_]\w*)\s*\(`)
	phpClassRe   = regexp.MustCompile(`class\s+([A-Za-z_]\w*)\b`)
	phpIncludeRe = regexp.MustCompile(`\b(include|include_once|require|require_once)\s*\(?\s*['"](.+?)['"]\s*\)?`)
)

func (e *PHPExtractor) parseFallback(content []byte, path string, res *Result) {
	res.Diagnostics = append(res.Diagnostics,
		NewDiagnostic("warning", "tree-sitter not available; using regex fallback", nil))
	src := string(content)
	origin := sourcePath(path)
	for _, m := range phpFuncRe.FindAllStringSubmatch(src, -1) {
		sym := NewSymbol("function", m[1], "php", nil)
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}
	for _, m := range phpClassRe.FindAllStringSubmatch(src, -1) {
		sym := NewSymbol("class", m[1], "php", nil)
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}
	for _, m := range phpIncludeRe.FindAllStringSubmatch(src, -1) {
		res.Relations = append(res.Relations, NewRelation(EdgeIncludes, origin, m[2], nil))
	}
}

// phpDeclName returns the declared name of a PHP function or class node.
// The PHP grammar uses "name" nodes where most grammars use "identifier".
func phpDeclName(n *sitter.Node, content []byte) string {
	if nameNode := n.ChildByFieldName("name"); nameNode != nil {
		return nameNode.Content(content)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if t := ch.Type(); t == "name" || t == "identifier" {
			return ch.Content(content)
		}
	}
	return ""
}
