package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVue(t *testing.T) *VueExtractor {
	t.Helper()
	return NewVueExtractor(NewJavaScriptExtractor(grammarFor("javascript")))
}

const sampleSFC = `<template>
  <div>
    <UserCard :user="user" />
    <nav-bar />
    <span>{{ user.name }}</span>
  </div>
</template>

<script>
import UserCard from './UserCard.vue';

export default {
  name: 'UserList',
  components: { UserCard },
};
</script>
`

func TestVue_ChildComponentsFromTemplateAndRegistration(t *testing.T) {
	t.Parallel()
	e := newVue(t)

	res := e.Parse([]byte(sampleSFC), "UserList.vue")

	children := relationsOfType(res, EdgeChildComponent)
	targets := map[string]bool{}
	for _, r := range children {
		targets[r.Target] = true
		assert.Equal(t, "UserList.vue", r.Source)
	}
	assert.True(t, targets["UserCard"])
	assert.True(t, targets["nav-bar"])
	// Standard HTML never becomes a child component.
	assert.False(t, targets["div"])
	assert.False(t, targets["span"])
}

func TestVue_ComponentSymbolFromNameField(t *testing.T) {
	t.Parallel()
	e := newVue(t)

	res := e.Parse([]byte(sampleSFC), "UserList.vue")

	comp, ok := symbolByName(res, "UserList")
	require.True(t, ok)
	assert.Equal(t, "component", comp.Type)
}

func TestVue_ComponentNameFallsBackToFilename(t *testing.T) {
	t.Parallel()
	e := newVue(t)

	res := e.Parse([]byte("<template><div /></template>\n"), "widgets/Chart.vue")

	comp, ok := symbolByName(res, "Chart")
	require.True(t, ok)
	assert.Equal(t, "component", comp.Type)
}

func TestVue_ScriptDelegatesToJavaScript(t *testing.T) {
	t.Parallel()
	e := newVue(t)

	res := e.Parse([]byte(sampleSFC), "UserList.vue")
	assert.NotEmpty(t, relationsOfType(res, EdgeImports))
}

func TestVue_BuiltinsExcluded(t *testing.T) {
	t.Parallel()
	e := newVue(t)

	src := "<template>\n  <transition>\n    <router-view />\n    <keep-alive />\n  </transition>\n</template>\n"
	res := e.Parse([]byte(src), "App.vue")

	for _, r := range relationsOfType(res, EdgeChildComponent) {
		assert.NotContains(t, []string{"transition", "router-view", "keep-alive"}, r.Target)
	}
}
