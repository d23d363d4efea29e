package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBash_FunctionsBothForms(t *testing.T) {
	t.Parallel()
	e := NewBashExtractor()

	src := "#!/bin/bash\n\nsetup() {\n  true\n}\n\nfunction teardown {\n  true\n}\n"
	res := e.Parse([]byte(src), "run.sh")

	setup, ok := symbolByName(res, "setup")
	require.True(t, ok)
	assert.Equal(t, "function", setup.Type)
	assert.Equal(t, "run.sh::setup", setup.ID)

	_, ok = symbolByName(res, "teardown")
	assert.True(t, ok)

	// Shell is regex-first on purpose; no degraded-mode warning.
	assert.Empty(t, res.Diagnostics)
}

func TestBash_SourcesAndVariables(t *testing.T) {
	t.Parallel()
	e := NewBashExtractor()

	src := "source ./lib.sh\n. /etc/profile\n\nLOG_LEVEL=debug\nRETRIES=3\n"
	res := e.Parse([]byte(src), "env.sh")

	sources := relationsOfType(res, EdgeSources)
	require.Len(t, sources, 2)
	assert.Equal(t, "./lib.sh", sources[0].Target)
	assert.Equal(t, "/etc/profile", sources[1].Target)

	lv, ok := symbolByName(res, "LOG_LEVEL")
	require.True(t, ok)
	assert.Equal(t, "variable", lv.Type)
	_, ok = symbolByName(res, "RETRIES")
	assert.True(t, ok)
}

func TestBash_IndentedAssignmentsIgnored(t *testing.T) {
	t.Parallel()
	e := NewBashExtractor()

	src := "deploy() {\n  local target=prod\n  count=1\n}\n"
	res := e.Parse([]byte(src), "d.sh")

	_, ok := symbolByName(res, "count")
	assert.False(t, ok, "indented assignments are locals, not top-level variables")
}
