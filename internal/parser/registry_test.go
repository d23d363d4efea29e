package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LanguagesSortedWithoutAliases(t *testing.T) {
	t.Parallel()
	reg := NewFallbackRegistry()

	langs := reg.Languages()
	assert.Equal(t, []string{"bash", "c", "javascript", "php", "python", "rust", "vue"}, langs)
}

func TestRegistry_NodejsAlias(t *testing.T) {
	t.Parallel()
	reg := NewFallbackRegistry()

	alias, ok := reg.Get("nodejs")
	require.True(t, ok)
	direct, ok := reg.Get("javascript")
	require.True(t, ok)
	assert.Equal(t, direct.Language(), alias.Language())
}

func TestRegistry_UnknownLanguage(t *testing.T) {
	t.Parallel()
	reg := NewFallbackRegistry()

	_, ok := reg.Get("cobol")
	assert.False(t, ok)
}

func TestRegistry_LanguageForFile(t *testing.T) {
	t.Parallel()
	reg := NewFallbackRegistry()

	cases := map[string]string{
		"app.py":     "python",
		"app.js":     "javascript",
		"app.ts":     "javascript",
		"App.vue":    "vue",
		"index.php":  "php",
		"run.sh":     "bash",
		"main.c":     "c",
		"defs.h":     "c",
		"lib.rs":     "rust",
	}
	for file, want := range cases {
		got, ok := reg.LanguageForFile(file)
		require.True(t, ok, file)
		assert.Equal(t, want, got, file)
	}

	_, ok := reg.LanguageForFile("README.md")
	assert.False(t, ok)
}

func TestRegistry_OntologiesCoverAllLanguages(t *testing.T) {
	t.Parallel()
	reg := NewFallbackRegistry()

	onts := reg.Ontologies()
	require.Len(t, onts, len(reg.Languages()))
	for _, o := range onts {
		assert.NotEmpty(t, o.NodeTypes, o.Language)
	}
}
