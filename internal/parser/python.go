package parser

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// PythonExtractor extracts symbols and relations from Python source. The
// grammar path performs a full scope-tracked walk covering decorators,
// inheritance, overrides, calls, exception flow, data flow, and context
// managers; the fallback covers functions, classes, and imports only.
type PythonExtractor struct {
	lang *sitter.Language
}

// NewPythonExtractor returns a Python extractor. A nil grammar selects the
// regex fallback strategy.
func NewPythonExtractor(lang *sitter.Language) *PythonExtractor {
	return &PythonExtractor{lang: lang}
}

func (e *PythonExtractor) Language() string { return "python" }

func (e *PythonExtractor) Ontology() Ontology {
	return Ontology{
		Language:  "python",
		NodeTypes: []string{"function", "class", "variable", "module"},
		EdgeTypes: []string{
			EdgeCalls, EdgeInstantiates, EdgeExtends, EdgeImplements,
			EdgeOverrides, EdgeDecorates, EdgeImports, EdgeRaises, EdgeCatches,
			EdgeYields, EdgeReturns, EdgeAsyncAwaits, EdgeWithContext,
			EdgeDefines, EdgeReads, EdgeWrites,
		},
		Description: "Python ontology with lexical scope tracking, exception flow, and data flow",
	}
}

func (e *PythonExtractor) Parse(content []byte, path string) Result {
	res := newResult("python", path)
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

	w := &pyWalk{
		content:       content,
		path:          path,
		scopes:        newScopeStack(sourcePath(path)),
		res:           &res,
		classMethods:  map[string]map[string]bool{},
		classBases:    map[string][]string{},
		classIDByName: map[string]string{},
	}
	w.walk(tree.RootNode())
	return res
}

var (
	pyDefRe    = regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)\s*\(`)
	pyClassRe  = regexp.MustCompile(`(?m)^\s*class\s+([A-Za-z_]\w*)\s*[:\(]`)
	pyImportRe = regexp.MustCompile(`(?m)^\s*(from\s+[.\w]+\s+import\s+[^\n]+|import\s+[^\n]+)`)
)

func (e *PythonExtractor) parseFallback(content []byte, path string, res *Result) {
	res.Diagnostics = append(res.Diagnostics,
		NewDiagnostic("warning", "tree-sitter not available; using regex fallback", nil))
	src := string(content)
	origin := sourcePath(path)
	for _, m := range pyDefRe.FindAllStringSubmatch(src, -1) {
		sym := NewSymbol("function", m[1], "python", nil)
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}
	for _, m := range pyClassRe.FindAllStringSubmatch(src, -1) {
		sym := NewSymbol("class", m[1], "python", nil)
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}
	for _, m := range pyImportRe.FindAllStringSubmatch(src, -1) {
		res.Relations = append(res.Relations,
			NewRelation(EdgeImports, origin, strings.TrimSpace(m[1]), nil))
	}
}

// pyWalk carries the state of one grammar-path extraction. The scope stack is
// seeded with the file path; class method/base records drive OVERRIDES
// detection within the file.
type pyWalk struct {
	content []byte
	path    string
	scopes  *scopeStack
	res     *Result

	classStack    []string                   // qualified ids of enclosing classes
	classMethods  map[string]map[string]bool // class id -> locally declared method names
	classBases    map[string][]string        // class id -> base names
	classIDByName map[string]string          // short class name -> qualified id
}

func (w *pyWalk) text(n *sitter.Node) string {
	return n.Content(w.content)
}

func (w *pyWalk) rel(relType, target string, props map[string]any) {
	w.res.Relations = append(w.res.Relations,
		NewRelation(relType, w.scopes.top(), target, props))
}

func (w *pyWalk) walk(n *sitter.Node) {
	switch n.Type() {
	case "decorated_definition":
		w.walkDecorated(n)
	case "function_definition":
		w.walkFunction(n)
	case "class_definition":
		w.walkClass(n)
	case "import_statement", "import_from_statement":
		w.rel(EdgeImports, strings.TrimSpace(w.text(n)), nil)
	case "call":
		w.walkCall(n)
	case "raise_statement":
		w.walkRaise(n)
	case "except_clause":
		w.walkExcept(n)
	case "return_statement":
		w.walkReturn(n)
	case "yield":
		target := ""
		if n.NamedChildCount() > 0 {
			target = w.text(n.NamedChild(0))
		}
		w.rel(EdgeYields, target, nil)
		w.walkChildren(n)
	case "await":
		if n.NamedChildCount() > 0 {
			w.rel(EdgeAsyncAwaits, w.text(n.NamedChild(0)), nil)
		}
		w.walkChildren(n)
	case "with_item":
		target := n
		if v := n.ChildByFieldName("value"); v != nil {
			target = v
		}
		w.rel(EdgeWithContext, w.text(target), nil)
		w.walkChildren(n)
	case "assignment", "augmented_assignment":
		w.walkAssignment(n)
	case "attribute":
		if attr := n.ChildByFieldName("attribute"); attr != nil {
			w.rel(EdgeReads, w.text(attr), nil)
		}
		if obj := n.ChildByFieldName("object"); obj != nil {
			w.walk(obj)
		}
	default:
		w.walkChildren(n)
	}
}

func (w *pyWalk) walkChildren(n *sitter.Node) {
	for i := 0; i < int(n.ChildCount()); i++ {
		w.walk(n.Child(i))
	}
}

// walkDecorated emits DECORATES edges from the decorated definition's
// qualified id to each decorator expression, then walks the definition.
func (w *pyWalk) walkDecorated(n *sitter.Node) {
	def := n.ChildByFieldName("definition")
	if def == nil {
		w.walkChildren(n)
		return
	}
	name := ""
	if nameNode := def.ChildByFieldName("name"); nameNode != nil {
		name = w.text(nameNode)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch.Type() != "decorator" {
			continue
		}
		dec := strings.TrimSpace(strings.TrimPrefix(w.text(ch), "@"))
		if name != "" {
			w.res.Relations = append(w.res.Relations,
				NewRelation(EdgeDecorates, w.scopes.top()+"::"+name, dec, nil))
		}
	}
	w.walk(def)
}

func (w *pyWalk) walkFunction(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	qualified := w.scopes.top() + "::" + name

	isAsync := false
	for i := 0; i < int(n.ChildCount()); i++ {
		if n.Child(i).Type() == "async" {
			isAsync = true
			break
		}
	}

	sym := NewSymbol("function", name, "python", map[string]any{"is_async": isAsync})
	sym.ID = qualified
	sym.File = w.path
	w.res.Symbols = append(w.res.Symbols, sym)

	// Method bookkeeping: record the declaration and emit OVERRIDES when a
	// base class declared a method of the same name earlier in the file.
	if len(w.classStack) > 0 {
		classID := w.classStack[len(w.classStack)-1]
		for _, base := range w.classBases[classID] {
			baseID, ok := w.classIDByName[base]
			if ok && w.classMethods[baseID][name] {
				w.res.Relations = append(w.res.Relations,
					NewRelation(EdgeOverrides, qualified, baseID+"::"+name, nil))
			}
		}
		if w.classMethods[classID] == nil {
			w.classMethods[classID] = map[string]bool{}
		}
		w.classMethods[classID][name] = true
	}

	w.scopes.push(name)
	if body := n.ChildByFieldName("body"); body != nil {
		w.walk(body)
	}
	w.scopes.pop()
}

func (w *pyWalk) walkClass(n *sitter.Node) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := w.text(nameNode)
	qualified := w.scopes.top() + "::" + name

	sym := NewSymbol("class", name, "python", nil)
	sym.ID = qualified
	sym.File = w.path
	w.res.Symbols = append(w.res.Symbols, sym)

	var bases []string
	if supers := n.ChildByFieldName("superclasses"); supers != nil {
		for i := 0; i < int(supers.NamedChildCount()); i++ {
			base := strings.TrimSpace(w.text(supers.NamedChild(i)))
			if base == "" {
				continue
			}
			bases = append(bases, base)
			relType := EdgeExtends
			if interfaceLikeBase(base) {
				relType = EdgeImplements
			}
			w.res.Relations = append(w.res.Relations,
				NewRelation(relType, qualified, base, nil))
		}
	}

	w.classIDByName[name] = qualified
	w.classBases[qualified] = bases
	if w.classMethods[qualified] == nil {
		w.classMethods[qualified] = map[string]bool{}
	}

	w.classStack = append(w.classStack, qualified)
	w.scopes.push(name)
	if body := n.ChildByFieldName("body"); body != nil {
		w.walk(body)
	}
	w.scopes.pop()
	w.classStack = w.classStack[:len(w.classStack)-1]
}

// walkCall classifies a call expression: a callee whose final segment starts
// with an uppercase letter is treated as a constructor (INSTANTIATES), every
// other callee is a plain CALLS.
func (w *pyWalk) walkCall(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn != nil {
		callee := w.text(fn)
		target := lastDottedSegment(callee)
		if target != "" {
			relType := EdgeCalls
			if startsUpper(target) {
				relType = EdgeInstantiates
			}
			props := map[string]any{}
			if callee != target {
				props["callee"] = callee
			}
			if len(props) == 0 {
				props = nil
			}
			w.rel(relType, target, props)
		}
	}
	if args := n.ChildByFieldName("arguments"); args != nil {
		w.walkChildren(args)
	}
}

func (w *pyWalk) walkRaise(n *sitter.Node) {
	if n.NamedChildCount() == 0 {
		w.rel(EdgeRaises, "", nil)
		return
	}
	expr := n.NamedChild(0)
	target := w.text(expr)
	if expr.Type() == "call" {
		if fn := expr.ChildByFieldName("function"); fn != nil {
			target = w.text(fn)
		}
	}
	w.rel(EdgeRaises, target, nil)
}

func (w *pyWalk) walkExcept(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		ch := n.NamedChild(i)
		if ch.Type() == "block" {
			w.walk(ch)
			continue
		}
		target := ch
		// except E as e binds via as_pattern; the exception type is its
		// first child.
		if ch.Type() == "as_pattern" && ch.NamedChildCount() > 0 {
			target = ch.NamedChild(0)
		}
		w.rel(EdgeCatches, w.text(target), nil)
	}
}

func (w *pyWalk) walkReturn(n *sitter.Node) {
	target := "None"
	if n.NamedChildCount() > 0 {
		target = w.text(n.NamedChild(0))
	}
	w.rel(EdgeReturns, target, nil)
	w.walkChildren(n)
}

// walkAssignment disambiguates data flow: a plain identifier target DEFINES a
// new variable, an attribute target WRITES the attribute. Attribute reads are
// handled by the generic attribute case, which this function bypasses for the
// left-hand side.
func (w *pyWalk) walkAssignment(n *sitter.Node) {
	left := n.ChildByFieldName("left")
	if left != nil {
		switch left.Type() {
		case "identifier":
			w.rel(EdgeDefines, w.text(left), nil)
		case "attribute":
			if attr := left.ChildByFieldName("attribute"); attr != nil {
				w.rel(EdgeWrites, w.text(attr), nil)
			}
		case "pattern_list", "tuple_pattern":
			for i := 0; i < int(left.NamedChildCount()); i++ {
				el := left.NamedChild(i)
				if el.Type() == "identifier" {
					w.rel(EdgeDefines, w.text(el), nil)
				}
			}
		}
	}
	if right := n.ChildByFieldName("right"); right != nil {
		w.walk(right)
	}
}

// interfaceLikeBase reports whether a base class name looks like an
// interface-style contract rather than structural inheritance.
func interfaceLikeBase(name string) bool {
	short := lastDottedSegment(name)
	if strings.Contains(short, "Interface") || strings.Contains(short, "Protocol") ||
		strings.Contains(short, "Mixin") || strings.Contains(short, "ABC") ||
		strings.HasPrefix(short, "Abstract") {
		return true
	}
	return len(short) >= 2 && short[0] == 'I' && short[1] >= 'A' && short[1] <= 'Z'
}

// lastDottedSegment returns the final component of a dotted expression such
// as self.helper.run, stripping any call parentheses remnants.
func lastDottedSegment(expr string) string {
	expr = strings.TrimSpace(expr)
	if i := strings.LastIndex(expr, "."); i >= 0 {
		expr = expr[i+1:]
	}
	return expr
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}
