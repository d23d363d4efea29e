package parser

import (
	"path/filepath"
	"regexp"
	"strings"
)

// VueExtractor extracts component structure from single-file components. The
// embedded script block is delegated to the JavaScript extractor; the
// template markup is scanned for custom (non-standard-HTML) tags and the
// options-style components map for explicit child registrations. The file
// itself is registered as a component symbol.
type VueExtractor struct {
	js *JavaScriptExtractor
}

// NewVueExtractor returns a Vue extractor delegating script parsing to js.
func NewVueExtractor(js *JavaScriptExtractor) *VueExtractor {
	return &VueExtractor{js: js}
}

func (e *VueExtractor) Language() string { return "vue" }

func (e *VueExtractor) Ontology() Ontology {
	return Ontology{
		Language:    "vue",
		NodeTypes:   []string{"component", "function", "class"},
		EdgeTypes:   []string{EdgeChildComponent, EdgeImports, EdgeRequires},
		Description: "Vue single-file component ontology with child component detection",
	}
}

var (
	vueScriptRe     = regexp.MustCompile(`(?is)<script[^>]*>([\s\S]*?)</script>`)
	vueTemplateRe   = regexp.MustCompile(`(?is)<template[^>]*>([\s\S]*?)</template>`)
	vueTagRe        = regexp.MustCompile(`<\s*([A-Za-z][A-Za-z0-9\-]*)\b`)
	vueComponentsRe = regexp.MustCompile(`(?m)components\s*:\s*\{([\s\S]*?)\}`)
	vueCompEntryRe  = regexp.MustCompile(`([A-Za-z_]\w*|'[^']+'|"[^"]+")\s*:`)
	vueNameRe       = regexp.MustCompile(`name\s*:\s*['"]([A-Za-z0-9_\-]+)['"]`)
	vueBuiltinRe    = regexp.MustCompile(`^(router|keep-alive|transition)`)
)

// standard HTML tags excluded from child component detection.
var htmlStdTags = map[string]bool{
	"div": true, "span": true, "a": true, "p": true, "img": true, "ul": true,
	"li": true, "ol": true, "section": true, "header": true, "footer": true,
	"main": true, "nav": true, "button": true, "input": true, "textarea": true,
	"select": true, "option": true, "table": true, "thead": true, "tbody": true,
	"tr": true, "td": true, "th": true, "form": true, "label": true,
	"small": true, "strong": true, "em": true,
}

func (e *VueExtractor) Parse(content []byte, path string) Result {
	res := newResult("vue", path)
	src := string(content)
	origin := sourcePath(path)

	scriptCode := ""
	if m := vueScriptRe.FindStringSubmatch(src); m != nil {
		scriptCode = m[1]
	}
	templateHTML := ""
	if m := vueTemplateRe.FindStringSubmatch(src); m != nil {
		templateHTML = m[1]
	}

	if scriptCode != "" {
		jsRes := e.js.Parse([]byte(scriptCode), path)
		res.Symbols = append(res.Symbols, jsRes.Symbols...)
		res.Relations = append(res.Relations, jsRes.Relations...)
		res.Diagnostics = append(res.Diagnostics, jsRes.Diagnostics...)

		// Options-API registrations: components: { Foo, 'bar-baz': Comp }.
		for _, block := range vueComponentsRe.FindAllStringSubmatch(scriptCode, -1) {
			for _, entry := range vueCompEntryRe.FindAllStringSubmatch(block[1], -1) {
				name := strings.Trim(strings.TrimSpace(entry[1]), `'"`)
				res.Relations = append(res.Relations,
					NewRelation(EdgeChildComponent, origin, name, nil))
			}
		}
	}

	// Template-only discovered components: custom tags not in the standard
	// HTML set. Ordered by first appearance for deterministic output.
	seen := map[string]bool{}
	for _, m := range vueTagRe.FindAllStringSubmatch(templateHTML, -1) {
		tag := m[1]
		if seen[tag] || htmlStdTags[tag] || vueBuiltinRe.MatchString(tag) {
			continue
		}
		seen[tag] = true
		res.Relations = append(res.Relations,
			NewRelation(EdgeChildComponent, origin, tag, nil))
	}

	// Register the file itself as a component, named from an explicit name
	// field or the filename.
	compName := ""
	if m := vueNameRe.FindStringSubmatch(scriptCode); m != nil {
		compName = m[1]
	} else if strings.HasSuffix(path, ".vue") {
		compName = strings.TrimSuffix(filepath.Base(path), ".vue")
	}
	if compName != "" {
		sym := NewSymbol("component", compName, "vue", nil)
		sym.ID = origin + "::" + compName
		sym.File = path
		res.Symbols = append(res.Symbols, sym)
	}

	return res
}
