// Package parser defines the language-agnostic extraction contract and the
// seven language extractors that implement it. Each extractor walks a
// tree-sitter concrete syntax tree when a grammar is bound, or falls back to
// line/regex pattern extraction (with a warning diagnostic) when it is not.
// Both strategies satisfy the same output contract.
package parser

// Symbol is a named code entity extracted from a source file. Symbols are
// ephemeral: they exist only between a Parse call and graph materialization.
type Symbol struct {
	Type     string         `json:"type"`
	Name     string         `json:"name"`
	Language string         `json:"language"`
	ID       string         `json:"id,omitempty"`
	File     string         `json:"file,omitempty"`
	Props    map[string]any `json:"properties,omitempty"`
}

// Relation is a typed, directed fact connecting two identifiers. Source and
// Target are either scope-qualified symbol ids or raw textual references;
// raw references are best-effort and not guaranteed to resolve to a node.
type Relation struct {
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Target string         `json:"target"`
	Props  map[string]any `json:"properties,omitempty"`
}

// Diagnostic reports a non-fatal condition encountered during extraction,
// such as degraded fallback coverage.
type Diagnostic struct {
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Props   map[string]any `json:"properties,omitempty"`
}

// Result is the uniform output of every extractor. Slices are always
// non-nil so API responses marshal as empty arrays rather than null.
type Result struct {
	Language    string       `json:"language"`
	Path        string       `json:"path,omitempty"`
	Symbols     []Symbol     `json:"symbols"`
	Relations   []Relation   `json:"relations"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Ontology declares the node and edge vocabulary valid for one language.
// It is a soft contract used for introspection and query-schema purposes;
// extractors are not validated against it at runtime.
type Ontology struct {
	Language    string   `json:"language"`
	NodeTypes   []string `json:"node_types"`
	EdgeTypes   []string `json:"edge_types"`
	Description string   `json:"description"`
}

// Extractor is the uniform per-language extraction interface. Parse must be
// pure with respect to its inputs (identical content, path, and grammar
// availability produce identical ordered output) and must never panic on
// malformed input: malformed constructs are skipped, not fatal.
type Extractor interface {
	Language() string
	Ontology() Ontology
	Parse(content []byte, path string) Result
}

// Relation edge kinds emitted by the extractors.
const (
	EdgeCalls          = "CALLS"
	EdgeExtends        = "EXTENDS"
	EdgeImplements     = "IMPLEMENTS"
	EdgeImports        = "IMPORTS"
	EdgeRequires       = "REQUIRES"
	EdgeIncludes       = "INCLUDES"
	EdgeSources        = "SOURCES"
	EdgeRaises         = "RAISES"
	EdgeCatches        = "CATCHES"
	EdgeYields         = "YIELDS"
	EdgeReturns        = "RETURNS"
	EdgeAsyncAwaits    = "ASYNC_AWAITS"
	EdgeInstantiates   = "INSTANTIATES"
	EdgeDefines        = "DEFINES"
	EdgeReads          = "READS"
	EdgeWrites         = "WRITES"
	EdgeWithContext    = "WITH_CONTEXT"
	EdgeDecorates      = "DECORATES"
	EdgeOverrides      = "OVERRIDES"
	EdgeChildComponent = "CHILD_COMPONENT"
)

// memoryPath stands in for the file path when content is parsed without one.
const memoryPath = "<memory>"

// NewSymbol builds a symbol record. Extra properties are free-form.
func NewSymbol(symbolType, name, language string, props map[string]any) Symbol {
	return Symbol{Type: symbolType, Name: name, Language: language, Props: props}
}

// NewRelation builds a relation record. Extra properties are free-form.
func NewRelation(relationType, source, target string, props map[string]any) Relation {
	return Relation{Type: relationType, Source: source, Target: target, Props: props}
}

// NewDiagnostic builds a diagnostic record. Extra properties are free-form.
func NewDiagnostic(level, message string, props map[string]any) Diagnostic {
	return Diagnostic{Level: level, Message: message, Props: props}
}

// newResult returns a Result with initialized (non-nil) slices.
func newResult(language, path string) Result {
	return Result{
		Language:    language,
		Path:        path,
		Symbols:     []Symbol{},
		Relations:   []Relation{},
		Diagnostics: []Diagnostic{},
	}
}

// sourcePath returns path, or the in-memory placeholder when empty. The
// returned value seeds the scope stack and serves as the default relation
// source.
func sourcePath(path string) string {
	if path == "" {
		return memoryPath
	}
	return path
}

// scopeStack tracks the enclosing lexical scopes during a tree walk. It is
// seeded with the file path and is strictly LIFO; the stack is never empty.
type scopeStack struct {
	frames []string
}

func newScopeStack(root string) *scopeStack {
	return &scopeStack{frames: []string{root}}
}

// push enters a nested scope, qualifying name with the current top.
func (s *scopeStack) push(name string) {
	s.frames = append(s.frames, s.top()+"::"+name)
}

// pop leaves the current scope. The root frame is never popped.
func (s *scopeStack) pop() {
	if len(s.frames) > 1 {
		s.frames = s.frames[:len(s.frames)-1]
	}
}

// top returns the current scope identifier.
func (s *scopeStack) top() string {
	return s.frames[len(s.frames)-1]
}
