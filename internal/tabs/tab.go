package tabs

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Eliptic23/borja/internal/core"
	"github.com/Eliptic23/borja/internal/tree"
)

// DocumentKind distinguishes what a tab edits.
type DocumentKind int

const (
	KindREST DocumentKind = iota
	KindGraphQL
)

// WorkspaceKind distinguishes where a tab's document persists.
type WorkspaceKind int

const (
	WorkspacePersonal WorkspaceKind = iota
	WorkspaceTeam
)

// SaveContext identifies where a tab's content persists. The variant set
// is closed: a nil SaveContext means the tab is unsaved scratch.
type SaveContext interface {
	saveContext()
	Workspace() WorkspaceKind
}

// PersonalFolderContext locates a request saved at a positional index
// inside a folder of the personal workspace.
type PersonalFolderContext struct {
	FolderPath   tree.Path
	RequestIndex int
}

func (PersonalFolderContext) saveContext()             {}
func (PersonalFolderContext) Workspace() WorkspaceKind { return WorkspacePersonal }

// PersonalCollectionContext locates a collection or folder of the personal
// workspace edited in its own tab.
type PersonalCollectionContext struct {
	Path tree.Path
}

func (PersonalCollectionContext) saveContext()             {}
func (PersonalCollectionContext) Workspace() WorkspaceKind { return WorkspacePersonal }

// TeamCollectionContext locates a request in a synced team collection.
// RequestID is "<collectionID>/<localIndex>": a stable collection
// identifier carrying a positional trailing segment.
type TeamCollectionContext struct {
	CollectionID string
	RequestID    string
}

func (TeamCollectionContext) saveContext()             {}
func (TeamCollectionContext) Workspace() WorkspaceKind { return WorkspaceTeam }

// TeamRequestID builds the identifier-path form of a team request address.
func TeamRequestID(collectionID string, index int) string {
	return fmt.Sprintf("%s/%d", collectionID, index)
}

// splitTeamRequestID extracts the trailing positional segment of a team
// request identifier, relative to the given collection prefix.
func splitTeamRequestID(collectionID, requestID string) (int, bool) {
	rest, ok := strings.CutPrefix(requestID, collectionID+"/")
	if !ok {
		return 0, false
	}
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

// Tab is one open editor tab.
type Tab struct {
	ID        string
	Kind      DocumentKind
	Dirty     bool
	Save      SaveContext
	Inherited *InheritedProperties
	Request   *core.Request
}

// NewTab opens a tab over a working copy of a request.
func NewTab(kind DocumentKind, req *core.Request, save SaveContext) *Tab {
	return &Tab{
		ID:      uuid.New().String(),
		Kind:    kind,
		Save:    save,
		Request: req,
	}
}

// ClearSave detaches the tab from its persisted counterpart and marks it
// dirty. Clearing an already-cleared tab is a no-op.
func (t *Tab) ClearSave() {
	if t.Save == nil {
		return
	}
	t.Save = nil
	t.Dirty = true
}

// ContextPath returns the tree location of the tab's save context: the
// folder path for personal contexts, the collection-identifier path for
// team contexts. ok is false for unsaved tabs.
func (t *Tab) ContextPath() (tree.Path, bool) {
	switch sc := t.Save.(type) {
	case PersonalFolderContext:
		return sc.FolderPath, true
	case PersonalCollectionContext:
		return sc.Path, true
	case TeamCollectionContext:
		return tree.NewPath(tree.ID(sc.CollectionID)), true
	default:
		return tree.Path{}, false
	}
}

// Registry is the in-memory set of open tabs. It is mutated only from the
// UI event loop; operations that rewrite save contexts take it as an
// explicit parameter.
type Registry struct {
	tabs []*Tab
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Open adds a tab.
func (r *Registry) Open(t *Tab) {
	r.tabs = append(r.tabs, t)
}

// Close removes a tab by ID.
func (r *Registry) Close(id string) bool {
	for i, t := range r.tabs {
		if t.ID == id {
			r.tabs = append(r.tabs[:i], r.tabs[i+1:]...)
			return true
		}
	}
	return false
}

// Get returns a tab by ID.
func (r *Registry) Get(id string) (*Tab, bool) {
	for _, t := range r.tabs {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}

// Tabs returns the open tabs in order.
func (r *Registry) Tabs() []*Tab { return r.tabs }

// Len returns the number of open tabs.
func (r *Registry) Len() int { return len(r.tabs) }
