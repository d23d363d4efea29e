package parser

import "sort"

// Registry maps language identifiers to extractor instances. It is an
// explicitly constructed value passed to consumers (orchestrator, resolver,
// API layer); there is no package-level singleton. Grammar bindings are
// resolved once at construction.
type Registry struct {
	extractors map[string]Extractor
}

// NewRegistry builds a registry with all built-in extractors, binding each
// grammar-capable extractor to its compiled tree-sitter grammar.
func NewRegistry() *Registry {
	js := NewJavaScriptExtractor(grammarFor("javascript"))
	r := &Registry{extractors: map[string]Extractor{
		"python":     NewPythonExtractor(grammarFor("python")),
		"javascript": js,
		"vue":        NewVueExtractor(js),
		"php":        NewPHPExtractor(grammarFor("php")),
		"bash":       NewBashExtractor(),
		"c":          NewCExtractor(grammarFor("c")),
		"rust":       NewRustExtractor(grammarFor("rust")),
	}}
	// nodejs is an accepted alias for javascript on the parse API.
	r.extractors["nodejs"] = js
	return r
}

// NewFallbackRegistry builds a registry with no grammar bindings, forcing
// every extractor onto its pattern-based fallback strategy. Used in tests and
// when the grammar engine must be excluded.
func NewFallbackRegistry() *Registry {
	js := NewJavaScriptExtractor(nil)
	r := &Registry{extractors: map[string]Extractor{
		"python":     NewPythonExtractor(nil),
		"javascript": js,
		"vue":        NewVueExtractor(js),
		"php":        NewPHPExtractor(nil),
		"bash":       NewBashExtractor(),
		"c":          NewCExtractor(nil),
		"rust":       NewRustExtractor(nil),
	}}
	r.extractors["nodejs"] = js
	return r
}

// Get returns the extractor for a language name (case-insensitive via the
// caller lowering; names are stored lowercase).
func (r *Registry) Get(language string) (Extractor, bool) {
	e, ok := r.extractors[language]
	return e, ok
}

// Supported reports whether a language has a registered extractor.
func (r *Registry) Supported(language string) bool {
	_, ok := r.extractors[language]
	return ok
}

// Languages returns the sorted canonical language names. Aliases that map to
// another language's extractor are excluded.
func (r *Registry) Languages() []string {
	var langs []string
	for name, e := range r.extractors {
		if name == e.Language() {
			langs = append(langs, name)
		}
	}
	sort.Strings(langs)
	return langs
}

// Ontologies returns the declared ontology for every registered language.
func (r *Registry) Ontologies() map[string]Ontology {
	out := make(map[string]Ontology, len(r.extractors))
	for name, e := range r.extractors {
		if name == e.Language() {
			out[name] = e.Ontology()
		}
	}
	return out
}

// LanguageForFile resolves a file path to its language via the fixed
// extension table.
func (r *Registry) LanguageForFile(path string) (string, bool) {
	return LanguageForFile(path)
}
