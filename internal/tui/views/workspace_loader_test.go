package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eliptic23/borja/internal/core"
	"github.com/Eliptic23/borja/internal/storage/filesystem"
	"github.com/Eliptic23/borja/internal/tui/components"
)

func newTestStore(t *testing.T) *filesystem.CollectionStore {
	t.Helper()
	store, err := filesystem.NewCollectionStore(t.TempDir())
	require.NoError(t, err)
	return store
}

// seedWorkspace stores an API collection holding three requests and an
// Admin subfolder, then an empty Misc collection.
func seedWorkspace(t *testing.T, store *filesystem.CollectionStore) {
	t.Helper()

	api := core.NewCollection("API")
	api.AddRequest(core.NewRequest("List Users", "GET", "https://api.example.com/users"))
	api.AddRequest(core.NewRequest("Create User", "POST", "https://api.example.com/users"))
	api.AddRequest(core.NewRequest("Delete User", "DELETE", "https://api.example.com/users/1"))
	admin := api.AddFolder("Admin")
	admin.AddRequest(core.NewRequest("Stats", "GET", "https://api.example.com/stats"))

	require.NoError(t, store.Save(t.Context(), api))
	require.NoError(t, store.Save(t.Context(), core.NewCollection("Misc")))
}

func TestWorkspaceLoaderBeforeReload(t *testing.T) {
	loader := NewWorkspaceLoader(newTestStore(t))
	res := loader.GetChildren("")
	assert.Equal(t, components.StatusLoading, res.Status)
}

func TestWorkspaceLoaderRoots(t *testing.T) {
	store := newTestStore(t)
	seedWorkspace(t, store)

	loader := NewWorkspaceLoader(store)
	require.NoError(t, loader.Reload(t.Context()))

	res := loader.GetChildren("")
	require.Equal(t, components.StatusLoaded, res.Status)
	require.Len(t, res.Nodes, 2)
	assert.Equal(t, "API", res.Nodes[0].Name)
	assert.Equal(t, components.NodeCollection, res.Nodes[0].Kind)
	assert.Equal(t, "Misc", res.Nodes[1].Name)
}

func TestWorkspaceLoaderChildren(t *testing.T) {
	store := newTestStore(t)
	seedWorkspace(t, store)

	loader := NewWorkspaceLoader(store)
	require.NoError(t, loader.Reload(t.Context()))

	roots := loader.GetChildren("")
	children := loader.GetChildren(roots.Nodes[0].ID)
	require.Len(t, children.Nodes, 4)

	// Folders come first, then requests.
	assert.Equal(t, "Admin", children.Nodes[0].Name)
	assert.Equal(t, components.NodeFolder, children.Nodes[0].Kind)
	assert.Equal(t, "List Users", children.Nodes[1].Name)
	assert.Equal(t, "GET", children.Nodes[1].Method)

	nested := loader.GetChildren(children.Nodes[0].ID)
	require.Len(t, nested.Nodes, 1)
	assert.Equal(t, "Stats", nested.Nodes[0].Name)
}

func TestWorkspaceLoaderUnknownParent(t *testing.T) {
	store := newTestStore(t)
	seedWorkspace(t, store)

	loader := NewWorkspaceLoader(store)
	require.NoError(t, loader.Reload(t.Context()))

	res := loader.GetChildren("nope")
	assert.Equal(t, components.StatusLoaded, res.Status)
	assert.Empty(t, res.Nodes)
}

func TestWorkspaceRoot(t *testing.T) {
	store := newTestStore(t)
	seedWorkspace(t, store)

	loader := NewWorkspaceLoader(store)
	require.NoError(t, loader.Reload(t.Context()))

	root := loader.WorkspaceRoot()
	require.Len(t, root.Folders(), 2)
	assert.Equal(t, "API", root.Folders()[0].Name())

	// The synthetic root shares nodes with the loader snapshot.
	api, ok := loader.Root(0)
	require.True(t, ok)
	assert.Same(t, api, root.Folders()[0])
}
