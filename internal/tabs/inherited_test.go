package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eliptic23/borja/internal/core"
	"github.com/Eliptic23/borja/internal/tree"
)

func newInheritanceTree(t *testing.T) *core.Collection {
	t.Helper()
	root := core.NewCollection("Workspace")
	root.SetAuth(core.AuthConfig{Type: core.AuthBasic, Active: true, Username: "root", Password: "pw"})
	root.SetHeaders([]core.Header{
		{Key: "X-Env", Value: "prod", Active: true},
		{Key: "X-Off", Value: "nope", Active: false},
	})

	api := root.AddFolder("API")
	api.SetHeaders([]core.Header{{Key: "X-Api", Value: "v1", Active: true}})

	v2 := api.AddFolder("V2")
	v2.SetAuth(core.AuthConfig{Type: core.AuthBearer, Active: true, Token: "tok"})
	v2.SetHeaders([]core.Header{{Key: "X-Env", Value: "staging", Active: true}})

	return root
}

func TestComputeInherited(t *testing.T) {
	root := newInheritanceTree(t)

	props, ok := ComputeInherited(root, tree.MustParsePath("0/0"))
	require.True(t, ok)

	assert.Equal(t, core.AuthBearer, props.Auth.Type)
	assert.Equal(t, "0/0", props.AuthSource.String())

	require.Len(t, props.Headers, 2)
	assert.Equal(t, "X-Env", props.Headers[0].Key)
	assert.Equal(t, "staging", props.Headers[0].Value, "deeper ancestor overrides key")
	assert.Equal(t, "0/0", props.Headers[0].SourcePath.String())
	assert.Equal(t, "X-Api", props.Headers[1].Key)
	assert.Equal(t, "0", props.Headers[1].SourcePath.String())
}

func TestComputeInheritedAuthFallsBackToNone(t *testing.T) {
	root := core.NewCollection("Workspace")
	folder := root.AddFolder("A")
	folder.AddFolder("B")

	props, ok := ComputeInherited(root, tree.MustParsePath("0/0"))
	require.True(t, ok)
	assert.Equal(t, core.AuthNone, props.Auth.Type)
	assert.Empty(t, props.Headers)

	_, ok = ComputeInherited(root, tree.MustParsePath("0/4"))
	assert.False(t, ok)
}

func TestPropagateClosenessCheck(t *testing.T) {
	// Tab saved under "0/1" with auth cached from "0/1". An edit at "0"
	// (farther ancestor) must not clobber it; an edit at "0/1" must.
	reg := NewRegistry()
	tab := openRequestTab(t, reg, "0/1", 0)
	tab.Inherited = &InheritedProperties{
		Auth:       core.AuthConfig{Type: core.AuthBearer, Active: true, Token: "near"},
		AuthSource: tree.MustParsePath("0/1"),
	}

	far := InheritedProperties{
		Auth:       core.AuthConfig{Type: core.AuthBasic, Active: true, Username: "far"},
		AuthSource: tree.MustParsePath("0"),
	}
	PropagateInherited(reg, tree.MustParsePath("0"), far, KindREST, WorkspacePersonal)
	assert.Equal(t, core.AuthBearer, tab.Inherited.Auth.Type, "farther ancestor must not override")

	near := InheritedProperties{
		Auth:       core.AuthConfig{Type: core.AuthBasic, Active: true, Username: "renamed"},
		AuthSource: tree.MustParsePath("0/1"),
	}
	PropagateInherited(reg, tree.MustParsePath("0/1"), near, KindREST, WorkspacePersonal)
	assert.Equal(t, core.AuthBasic, tab.Inherited.Auth.Type, "equally close path wins the tie")
	assert.Equal(t, "renamed", tab.Inherited.Auth.Username)
}

func TestPropagateDescendantDoesNotMatch(t *testing.T) {
	// Mutating "0/1/2" must not touch a tab saved at "0/1" - the tab is
	// not nested under the mutated path.
	reg := NewRegistry()
	tab := openRequestTab(t, reg, "0/1", 0)
	tab.Inherited = &InheritedProperties{
		Auth:       core.AuthConfig{Type: core.AuthBearer, Active: true},
		AuthSource: tree.MustParsePath("0/1"),
	}

	snapshot := InheritedProperties{
		Auth:       core.AuthConfig{Type: core.AuthBasic, Active: true},
		AuthSource: tree.MustParsePath("0/1/2"),
	}
	PropagateInherited(reg, tree.MustParsePath("0/1/2"), snapshot, KindREST, WorkspacePersonal)

	assert.Equal(t, core.AuthBearer, tab.Inherited.Auth.Type)
}

func TestPropagateHeaderRefresh(t *testing.T) {
	// Header refresh keys off the source-path tag, independent of the
	// auth closeness rule. Entries from other ancestors stay untouched.
	reg := NewRegistry()
	tab := openRequestTab(t, reg, "0/1", 0)
	tab.Inherited = &InheritedProperties{
		Auth:       core.AuthConfig{Type: core.AuthBearer, Active: true},
		AuthSource: tree.MustParsePath("0/1"),
		Headers: []InheritedHeader{
			{Key: "X-Env", Value: "prod", SourcePath: tree.MustParsePath("0")},
			{Key: "X-Api", Value: "v1", SourcePath: tree.MustParsePath("0/1")},
			{Key: "X-Gone", Value: "bye", SourcePath: tree.MustParsePath("0/1")},
		},
	}

	snapshot := InheritedProperties{
		Auth:       core.AuthConfig{Type: core.AuthBearer, Active: true},
		AuthSource: tree.MustParsePath("0/1"),
		Headers: []InheritedHeader{
			{Key: "X-Env", Value: "prod", SourcePath: tree.MustParsePath("0")},
			{Key: "X-Api", Value: "v2", SourcePath: tree.MustParsePath("0/1")},
			{Key: "X-New", Value: "fresh", SourcePath: tree.MustParsePath("0/1")},
		},
	}
	PropagateInherited(reg, tree.MustParsePath("0/1"), snapshot, KindREST, WorkspacePersonal)

	headers := tab.Inherited.Headers
	require.Len(t, headers, 3)
	assert.Equal(t, "prod", headers[0].Value, "other ancestor untouched")
	assert.Equal(t, "v2", headers[1].Value, "tagged entry refreshed by key")
	assert.Equal(t, "X-New", headers[2].Key, "new header from mutated ancestor appended")
}

func TestPropagateKindAndWorkspaceFilter(t *testing.T) {
	reg := NewRegistry()
	rest := openRequestTab(t, reg, "0", 0)
	gql := openRequestTab(t, reg, "0", 1)
	gql.Kind = KindGraphQL
	scratch := NewTab(KindREST, nil, nil)
	reg.Open(scratch)

	snapshot := InheritedProperties{
		Auth:       core.AuthConfig{Type: core.AuthBasic, Active: true},
		AuthSource: tree.MustParsePath("0"),
	}
	PropagateInherited(reg, tree.MustParsePath("0"), snapshot, KindREST, WorkspacePersonal)

	assert.NotNil(t, rest.Inherited)
	assert.Nil(t, gql.Inherited, "other document kind skipped")
	assert.Nil(t, scratch.Inherited, "unsaved tab skipped")
}
