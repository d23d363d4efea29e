package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPHP_FunctionsClassesIncludes(t *testing.T) {
	t.Parallel()
	lang := grammarFor("php")
	require.NotNil(t, lang)
	e := NewPHPExtractor(lang)

	src := "<?php\nrequire_once 'config.php';\n\nclass Router {\n    public function dispatch($req) {}\n}\n\nfunction handle($req) {}\n"
	res := e.Parse([]byte(src), "index.php")

	cls, ok := symbolByName(res, "Router")
	require.True(t, ok)
	assert.Equal(t, "class", cls.Type)

	_, ok = symbolByName(res, "dispatch")
	assert.True(t, ok)
	_, ok = symbolByName(res, "handle")
	assert.True(t, ok)

	includes := relationsOfType(res, EdgeIncludes)
	require.NotEmpty(t, includes)
	assert.Equal(t, "index.php", includes[0].Source)
}

func TestPHP_Fallback(t *testing.T) {
	t.Parallel()
	e := NewPHPExtractor(nil)

	src := "<?php\ninclude('lib.php');\nclass A {}\nfunction f() {}\n"
	res := e.Parse([]byte(src), "a.php")

	require.NotEmpty(t, res.Diagnostics)
	assert.Equal(t, "warning", res.Diagnostics[0].Level)

	_, haveCls := symbolByName(res, "A")
	_, haveFn := symbolByName(res, "f")
	assert.True(t, haveCls)
	assert.True(t, haveFn)

	includes := relationsOfType(res, EdgeIncludes)
	require.Len(t, includes, 1)
	assert.Equal(t, "lib.php", includes[0].Target)
}
