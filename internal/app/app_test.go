package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Eliptic23/borja/internal/storage/filesystem"
	"github.com/Eliptic23/borja/internal/storage/sqlite"
)

func TestNewApp(t *testing.T) {
	a := New()
	assert.Equal(t, DefaultConfig(), a.Config())
	assert.NotNil(t, a.Tabs())
	assert.Nil(t, a.Team())
	assert.NoError(t, a.Close())
}

func TestAppOptions(t *testing.T) {
	store, err := filesystem.NewCollectionStore(t.TempDir())
	require.NoError(t, err)
	team, err := sqlite.NewInMemory()
	require.NoError(t, err)

	cfg := Config{DataDir: "/tmp/ws", TeamDBPath: "/tmp/ws/team.db"}
	a := New(
		WithConfig(cfg),
		WithCollectionStore(store),
		WithTeamStore(team),
	)

	assert.Equal(t, cfg, a.Config())
	assert.Same(t, store, a.Collections())
	assert.Same(t, team, a.Team())
	assert.Equal(t, 0, a.Tabs().Len())
	assert.NoError(t, a.Close())
}
