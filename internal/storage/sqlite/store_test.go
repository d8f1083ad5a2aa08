package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eliptic23/borja/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func teamCollection(t *testing.T, name string, requestNames ...string) *core.Collection {
	t.Helper()
	coll := core.NewCollection(name)
	coll.SetAuth(core.AuthConfig{Type: core.AuthBasic, Active: true, Username: "team"})
	for _, reqName := range requestNames {
		coll.AddRequest(core.NewRequest(reqName, "GET", "https://example.com/"+reqName))
	}
	return coll
}

func TestSaveAndGetCollection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	coll := teamCollection(t, "Team API", "a", "b")
	sub := coll.AddFolder("Nested")
	sub.AddRequest(core.NewRequest("deep", "POST", "https://example.com/deep"))

	require.NoError(t, store.SaveCollection(ctx, coll))

	loaded, err := store.GetCollection(ctx, coll.ID())
	require.NoError(t, err)
	assert.Equal(t, "Team API", loaded.Name())
	assert.Equal(t, core.AuthBasic, loaded.Auth().Type)
	require.Len(t, loaded.Requests(), 2)
	assert.Equal(t, "a", loaded.Requests()[0].Name())

	require.Len(t, loaded.Folders(), 1)
	assert.Equal(t, "deep", loaded.Folders()[0].Requests()[0].Name())
}

func TestGetRequestByIdentifier(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	coll := teamCollection(t, "Team API", "a", "b", "c")
	require.NoError(t, store.SaveCollection(ctx, coll))

	req, err := store.GetRequest(ctx, coll.ID()+"/1")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "b", req.Name())

	// A missing request is a nil result, not an error.
	req, err = store.GetRequest(ctx, coll.ID()+"/9")
	require.NoError(t, err)
	assert.Nil(t, req)

	_, err = store.GetRequest(ctx, "garbage")
	assert.Error(t, err)
}

func TestMoveRequestRewritesOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	coll := teamCollection(t, "Team API", "r0", "r1", "r2", "r3")
	require.NoError(t, store.SaveCollection(ctx, coll))

	// Move position 3 to position 1.
	require.NoError(t, store.MoveRequest(ctx, coll.ID(), 3, 1))

	loaded, err := store.GetCollection(ctx, coll.ID())
	require.NoError(t, err)
	var names []string
	for _, r := range loaded.Requests() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"r0", "r3", "r1", "r2"}, names)

	assert.Error(t, store.MoveRequest(ctx, coll.ID(), 9, 0))
}

func TestDeleteRequestClosesGap(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	coll := teamCollection(t, "Team API", "r0", "r1", "r2")
	require.NoError(t, store.SaveCollection(ctx, coll))

	require.NoError(t, store.DeleteRequest(ctx, coll.ID()+"/1"))

	loaded, err := store.GetCollection(ctx, coll.ID())
	require.NoError(t, err)
	require.Len(t, loaded.Requests(), 2)
	assert.Equal(t, "r0", loaded.Requests()[0].Name())
	assert.Equal(t, "r2", loaded.Requests()[1].Name())

	// Identifiers stay dense: position 1 is now r2.
	req, err := store.GetRequest(ctx, coll.ID()+"/1")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "r2", req.Name())

	assert.Error(t, store.DeleteRequest(ctx, coll.ID()+"/9"))
}

func TestDeleteCollectionCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	coll := teamCollection(t, "Team API", "a")
	sub := coll.AddFolder("Nested")
	sub.AddRequest(core.NewRequest("deep", "GET", "https://example.com/deep"))
	require.NoError(t, store.SaveCollection(ctx, coll))

	require.NoError(t, store.DeleteCollection(ctx, coll.ID()))

	_, err := store.GetCollection(ctx, coll.ID())
	assert.Error(t, err)

	req, err := store.GetRequest(ctx, sub.ID()+"/0")
	require.NoError(t, err)
	assert.Nil(t, req, "nested requests removed with the subtree")
}

func TestListCollectionsOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := teamCollection(t, "First")
	second := teamCollection(t, "Second")
	require.NoError(t, store.SaveCollection(ctx, first))
	require.NoError(t, store.SaveCollection(ctx, second))

	colls, err := store.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, colls, 2)
	assert.Equal(t, "First", colls[0].Name())
	assert.Equal(t, "Second", colls[1].Name())

	// Re-saving keeps the position.
	require.NoError(t, store.SaveCollection(ctx, first))
	colls, err = store.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, "First", colls[0].Name())
}

func TestClosedStore(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Close())

	_, err := store.GetRequest(context.Background(), "c/0")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, store.SaveCollection(context.Background(), core.NewCollection("x")), ErrClosed)
}

func TestParseTeamRequestID(t *testing.T) {
	coll, order, ok := parseTeamRequestID("coll-1/4")
	require.True(t, ok)
	assert.Equal(t, "coll-1", coll)
	assert.Equal(t, 4, order)

	for _, bad := range []string{"", "coll-1", "coll-1/", "/4", "coll-1/x", "coll-1/-2"} {
		_, _, ok := parseTeamRequestID(bad)
		assert.False(t, ok, bad)
	}
}
