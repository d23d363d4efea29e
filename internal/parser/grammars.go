package parser

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
)

// extToLanguage maps file extensions to canonical language names. The table
// is fixed: the supported-language set is known at build time.
var extToLanguage = map[string]string{
	".py":  "python",
	".js":  "javascript",
	".ts":  "javascript",
	".vue": "vue",
	".php": "php",
	".sh":  "bash",
	".c":   "c",
	".h":   "c",
	".rs":  "rust",
}

// langToGrammar maps language names to tree-sitter Language objects for the
// grammar-backed extractors. Bash and Vue have no entry: bash extraction is
// pattern-based and Vue delegates its script block to the JavaScript
// extractor. Lazily initialized on first call via sync.Once.
var (
	langToGrammar map[string]*sitter.Language
	grammarsOnce  sync.Once
)

func initGrammars() {
	grammarsOnce.Do(func() {
		langToGrammar = map[string]*sitter.Language{
			"python":     python.GetLanguage(),
			"javascript": javascript.GetLanguage(),
			"php":        php.GetLanguage(),
			"c":          c.GetLanguage(),
			"rust":       rust.GetLanguage(),
		}
	})
}

// LanguageForFile returns the canonical language name for a file path based
// on its extension. Returns ("", false) if the extension is not recognized.
func LanguageForFile(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extToLanguage[ext]
	return lang, ok
}

// grammarFor returns the tree-sitter Language bound to a canonical language
// name, or nil when the language has no grammar binding.
func grammarFor(lang string) *sitter.Language {
	initGrammars()
	return langToGrammar[lang]
}
