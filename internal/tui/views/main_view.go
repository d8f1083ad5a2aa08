package views

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Eliptic23/borja/internal/core"
	"github.com/Eliptic23/borja/internal/storage/filesystem"
	"github.com/Eliptic23/borja/internal/tabs"
	"github.com/Eliptic23/borja/internal/tree"
	"github.com/Eliptic23/borja/internal/tui/components"
)

// TeamStore is the slice of the team workspace store the view drives:
// the lookup consumed by the reconciliation sweep plus the request-level
// mutations whose fallout must reach open tabs.
type TeamStore interface {
	tabs.RequestLookup
	RequestCount(ctx context.Context, collectionID string) (int, error)
	MoveRequest(ctx context.Context, collectionID string, from, to int) error
	DeleteRequest(ctx context.Context, requestID string) error
	DeleteCollection(ctx context.Context, id string) error
}

// ErrNoTeamStore is returned by team operations when the view was built
// without a team workspace.
var ErrNoTeamStore = errors.New("views: no team store configured")

// ErrTeamRequestGone is returned when a team request identifier no longer
// resolves to a live request.
var ErrTeamRequestGone = errors.New("views: team request not found")

// reconcileInterval paces the background sweep over team-backed tabs.
const reconcileInterval = 30 * time.Second

type reconcileTickMsg time.Time

func scheduleReconcile() tea.Cmd {
	return tea.Tick(reconcileInterval, func(t time.Time) tea.Msg {
		return reconcileTickMsg(t)
	})
}

// MainView composes the collection tree with the open-tab registry and
// keeps tab save contexts consistent with every tree mutation.
type MainView struct {
	store  *filesystem.CollectionStore
	team   TeamStore
	loader *WorkspaceLoader
	tree   *components.CollectionTree
	reg    *tabs.Registry
	root   *core.Collection

	width  int
	height int
	status string
}

// NewMainView creates the view. team may be nil when no team workspace
// is configured; the reconciliation sweep then never runs.
func NewMainView(store *filesystem.CollectionStore, team TeamStore) *MainView {
	loader := NewWorkspaceLoader(store)
	v := &MainView{
		store:  store,
		team:   team,
		loader: loader,
		tree:   components.NewCollectionTree(loader),
		reg:    tabs.NewRegistry(),
	}
	v.tree.Focus()
	return v
}

// Registry exposes the open tabs.
func (v *MainView) Registry() *tabs.Registry { return v.reg }

// Init loads the workspace, initializes the tree and, when a team store
// is attached, starts the periodic reconciliation sweep.
func (v *MainView) Init() tea.Cmd {
	v.reload()
	if v.team != nil {
		return tea.Batch(v.tree.Init(), scheduleReconcile())
	}
	return v.tree.Init()
}

func (v *MainView) reload() {
	if err := v.loader.Reload(context.Background()); err != nil {
		v.status = "load failed: " + err.Error()
		return
	}
	v.root = v.loader.WorkspaceRoot()
	v.tree.Refresh()
}

// Update handles messages.
func (v *MainView) Update(msg tea.Msg) (*MainView, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.tree.SetSize(msg.Width/3, msg.Height-1)
		return v, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			return v, tea.Quit
		}
	case components.SelectRequestMsg:
		v.openRequest(msg.Item)
		return v, nil
	case components.MoveNodeMsg:
		v.moveNode(msg)
		return v, nil
	case components.RemoveNodeMsg:
		v.removeNode(msg.Item)
		return v, nil
	case reconcileTickMsg:
		if v.team != nil {
			_ = tabs.ReconcileTeam(context.Background(), v.reg, v.team)
			return v, scheduleReconcile()
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.tree, cmd = v.tree.Update(msg)
	return v, cmd
}

func (v *MainView) openRequest(item components.TreeItem) {
	ctx := tabs.PersonalFolderContext{FolderPath: item.FolderPath, RequestIndex: item.Index}

	// Re-focus an already open tab for this slot instead of opening a
	// second one.
	for _, t := range v.reg.Tabs() {
		if sc, ok := t.Save.(tabs.PersonalFolderContext); ok &&
			sc.FolderPath.Equal(item.FolderPath) && sc.RequestIndex == item.Index {
			v.status = "switched to " + t.Request.Name()
			return
		}
	}

	req, ok := v.root.RequestAt(item.FolderPath, item.Index)
	if !ok {
		v.status = "request not found"
		return
	}

	tab := tabs.NewTab(tabs.KindREST, req.Clone(), ctx)
	if props, ok := tabs.ComputeInherited(v.root, item.FolderPath); ok {
		tab.Inherited = props
	}
	v.reg.Open(tab)
	v.status = "opened " + req.Name()
}

func (v *MainView) moveNode(msg components.MoveNodeMsg) {
	ctx := context.Background()
	item := msg.Item

	switch item.Kind {
	case components.NodeRequest:
		folder, ok := v.root.FolderAt(item.FolderPath)
		if !ok {
			return
		}
		count := len(folder.Requests())
		if !v.root.MoveRequest(item.FolderPath, msg.From, msg.To) {
			return
		}
		v.persistRoot(ctx, item.FolderPath)
		if err := tabs.HandleRequestMove(v.reg, item.FolderPath, msg.From, msg.To, count); err != nil {
			v.status = err.Error()
		}

	case components.NodeCollection, components.NodeFolder:
		parent := item.FolderPath.Parent()
		if parent.IsRoot() {
			order, err := v.store.Order(ctx)
			if err != nil {
				v.status = err.Error()
				return
			}
			if err := v.store.Reorder(ctx, msg.From, msg.To); err != nil {
				return
			}
			if err := tabs.HandleFolderMove(v.reg, parent, msg.From, msg.To, len(order)); err != nil {
				v.status = err.Error()
			}
		} else {
			pf, ok := v.root.FolderAt(parent)
			if !ok {
				return
			}
			count := len(pf.Folders())
			if !v.root.MoveFolder(parent, msg.From, msg.To) {
				return
			}
			v.persistRoot(ctx, parent)
			if err := tabs.HandleFolderMove(v.reg, parent, msg.From, msg.To, count); err != nil {
				v.status = err.Error()
			}
		}
	}

	v.reload()
}

func (v *MainView) removeNode(item components.TreeItem) {
	ctx := context.Background()

	switch item.Kind {
	case components.NodeRequest:
		folder, ok := v.root.FolderAt(item.FolderPath)
		if !ok {
			return
		}
		count := len(folder.Requests())
		if !v.root.RemoveRequestAt(item.FolderPath, item.Index) {
			return
		}
		v.persistRoot(ctx, item.FolderPath)
		if err := tabs.HandleRequestRemoval(v.reg, item.FolderPath, item.Index, count); err != nil {
			v.status = err.Error()
		}

	case components.NodeCollection, components.NodeFolder:
		parent := item.FolderPath.Parent()
		if parent.IsRoot() {
			order, err := v.store.Order(ctx)
			if err != nil {
				v.status = err.Error()
				return
			}
			if err := v.store.Delete(ctx, item.ID); err != nil {
				v.status = err.Error()
				return
			}
			if err := tabs.HandleFolderRemoval(v.reg, parent, item.Index, len(order)); err != nil {
				v.status = err.Error()
			}
		} else {
			pf, ok := v.root.FolderAt(parent)
			if !ok {
				return
			}
			count := len(pf.Folders())
			if !v.root.RemoveFolderAt(item.FolderPath) {
				return
			}
			v.persistRoot(ctx, parent)
			if err := tabs.HandleFolderRemoval(v.reg, parent, item.Index, count); err != nil {
				v.status = err.Error()
			}
		}
	}

	v.reload()
}

// persistRoot saves the root collection containing the given workspace
// path back to the store.
func (v *MainView) persistRoot(ctx context.Context, path tree.Path) {
	if path.IsRoot() {
		return
	}
	idx, ok := path.Segment(0).Idx()
	if !ok {
		return
	}
	root, ok := v.loader.Root(idx)
	if !ok {
		return
	}
	if err := v.store.Save(ctx, root); err != nil {
		v.status = "save failed: " + err.Error()
	}
}

// UpdateCollectionProperties mutates auth and headers on the folder at
// path, persists the change and pushes the recomputed inherited snapshot
// to every affected open tab.
func (v *MainView) UpdateCollectionProperties(path tree.Path, auth core.AuthConfig, headers []core.Header) bool {
	folder, ok := v.root.FolderAt(path)
	if !ok {
		return false
	}
	folder.SetAuth(auth)
	folder.SetHeaders(headers)
	v.persistRoot(context.Background(), path)

	props, ok := tabs.ComputeInherited(v.root, path)
	if !ok {
		return false
	}
	tabs.PropagateInherited(v.reg, path, *props, tabs.KindREST, tabs.WorkspacePersonal)
	return true
}

// OpenTeamRequest opens a tab over a team-collection request, addressed
// by its stable collection ID and position. Selecting an already open
// slot focuses the existing tab.
func (v *MainView) OpenTeamRequest(ctx context.Context, collectionID string, index int) error {
	if v.team == nil {
		return ErrNoTeamStore
	}
	requestID := tabs.TeamRequestID(collectionID, index)
	for _, t := range v.reg.Tabs() {
		if sc, ok := t.Save.(tabs.TeamCollectionContext); ok && sc.RequestID == requestID {
			v.status = "switched to " + t.Request.Name()
			return nil
		}
	}

	req, err := v.team.GetRequest(ctx, requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrTeamRequestGone
	}

	tab := tabs.NewTab(tabs.KindREST, req.Clone(), tabs.TeamCollectionContext{
		CollectionID: collectionID,
		RequestID:    requestID,
	})
	v.reg.Open(tab)
	v.status = "opened " + req.Name()
	return nil
}

// MoveTeamRequest relocates a request inside a team collection and
// rewrites the save contexts of affected open tabs.
func (v *MainView) MoveTeamRequest(ctx context.Context, collectionID string, from, to int) error {
	if v.team == nil {
		return ErrNoTeamStore
	}
	count, err := v.team.RequestCount(ctx, collectionID)
	if err != nil {
		return err
	}
	if err := v.team.MoveRequest(ctx, collectionID, from, to); err != nil {
		return err
	}
	return tabs.HandleTeamRequestMove(v.reg, collectionID, from, to, count)
}

// DeleteTeamRequest removes a request from a team collection, detaching
// the tab that held it and reindexing its open siblings.
func (v *MainView) DeleteTeamRequest(ctx context.Context, collectionID string, index int) error {
	if v.team == nil {
		return ErrNoTeamStore
	}
	count, err := v.team.RequestCount(ctx, collectionID)
	if err != nil {
		return err
	}
	if err := v.team.DeleteRequest(ctx, tabs.TeamRequestID(collectionID, index)); err != nil {
		return err
	}
	return tabs.HandleTeamRequestRemoval(v.reg, collectionID, index, count)
}

// DeleteTeamCollection removes a whole team collection and clears every
// tab saved inside it.
func (v *MainView) DeleteTeamCollection(ctx context.Context, collectionID string) error {
	if v.team == nil {
		return ErrNoTeamStore
	}
	if err := v.team.DeleteCollection(ctx, collectionID); err != nil {
		return err
	}
	tabs.ClearTeamCollection(v.reg, collectionID)
	return nil
}

var (
	tabStyle      = lipgloss.NewStyle().Padding(0, 1)
	dirtyTabStyle = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("203"))
	barStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the tree pane and the tab bar.
func (v *MainView) View() string {
	var bar strings.Builder
	for _, t := range v.reg.Tabs() {
		name := "untitled"
		if t.Request != nil {
			name = t.Request.Name()
		}
		if t.Dirty {
			bar.WriteString(dirtyTabStyle.Render(name + "*"))
		} else {
			bar.WriteString(tabStyle.Render(name))
		}
	}
	if v.status != "" {
		bar.WriteString(barStyle.Render("  " + v.status))
	}

	return lipgloss.JoinVertical(lipgloss.Left, v.tree.View(), bar.String())
}
