package views

import (
	"context"

	"github.com/Eliptic23/borja/internal/core"
	"github.com/Eliptic23/borja/internal/storage/filesystem"
	"github.com/Eliptic23/borja/internal/tui/components"
)

// WorkspaceLoader answers tree child queries from an in-memory snapshot
// of the personal workspace. Reload rebuilds the snapshot from the
// collection store; until the first reload completes every query reports
// a loading state.
type WorkspaceLoader struct {
	store  *filesystem.CollectionStore
	loaded bool
	roots  []*core.Collection
	byID   map[string]*core.Collection
}

func NewWorkspaceLoader(store *filesystem.CollectionStore) *WorkspaceLoader {
	return &WorkspaceLoader{
		store: store,
		byID:  make(map[string]*core.Collection),
	}
}

// Reload replaces the snapshot with the store's current contents,
// preserving the workspace ordering.
func (l *WorkspaceLoader) Reload(ctx context.Context) error {
	order, err := l.store.Order(ctx)
	if err != nil {
		return err
	}

	roots := make([]*core.Collection, 0, len(order))
	byID := make(map[string]*core.Collection, len(order))
	for _, id := range order {
		c, err := l.store.Get(ctx, id)
		if err != nil {
			return err
		}
		roots = append(roots, c)
		indexCollection(byID, c)
	}

	l.roots = roots
	l.byID = byID
	l.loaded = true
	return nil
}

func indexCollection(byID map[string]*core.Collection, c *core.Collection) {
	byID[c.ID()] = c
	for _, f := range c.Folders() {
		indexCollection(byID, f)
	}
}

// Root returns the root collection at the given workspace position.
func (l *WorkspaceLoader) Root(index int) (*core.Collection, bool) {
	if index < 0 || index >= len(l.roots) {
		return nil, false
	}
	return l.roots[index], true
}

// WorkspaceRoot assembles a synthetic collection whose folders are the
// workspace roots, so positional paths whose first segment addresses a
// root collection resolve against a single tree.
func (l *WorkspaceLoader) WorkspaceRoot() *core.Collection {
	root := core.NewCollectionWithID("workspace", "Workspace")
	for _, c := range l.roots {
		root.AddExistingFolder(c)
	}
	return root
}

// GetChildren implements components.ChildrenLoader. parentID "" queries
// the workspace roots.
func (l *WorkspaceLoader) GetChildren(parentID string) components.ChildrenResult {
	if !l.loaded {
		return components.ChildrenResult{Status: components.StatusLoading}
	}

	if parentID == "" {
		nodes := make([]components.ChildNode, 0, len(l.roots))
		for _, c := range l.roots {
			nodes = append(nodes, components.ChildNode{
				ID:   c.ID(),
				Name: c.Name(),
				Kind: components.NodeCollection,
			})
		}
		return components.ChildrenResult{Status: components.StatusLoaded, Nodes: nodes}
	}

	parent, ok := l.byID[parentID]
	if !ok {
		return components.ChildrenResult{Status: components.StatusLoaded}
	}

	nodes := make([]components.ChildNode, 0, len(parent.Folders())+len(parent.Requests()))
	for _, f := range parent.Folders() {
		nodes = append(nodes, components.ChildNode{
			ID:   f.ID(),
			Name: f.Name(),
			Kind: components.NodeFolder,
		})
	}
	for _, r := range parent.Requests() {
		nodes = append(nodes, components.ChildNode{
			ID:     r.ID(),
			Name:   r.Name(),
			Kind:   components.NodeRequest,
			Method: r.Method(),
		})
	}
	return components.ChildrenResult{Status: components.StatusLoaded, Nodes: nodes}
}
