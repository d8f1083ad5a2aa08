package components

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Eliptic23/borja/internal/tree"
)

// LoadStatus is the state of a lazily fetched child list.
type LoadStatus int

const (
	StatusLoading LoadStatus = iota
	StatusLoaded
)

// NodeKind identifies what a tree row represents.
type NodeKind int

const (
	NodeCollection NodeKind = iota
	NodeFolder
	NodeRequest
)

// ChildNode is one child of an expanded tree node.
type ChildNode struct {
	ID     string
	Name   string
	Kind   NodeKind
	Method string
}

// ChildrenResult is the reactive result of a child query: while the
// backing store is still answering, Status is StatusLoading and Nodes is
// empty. Re-invoking the query with the same parent restarts it.
type ChildrenResult struct {
	Status LoadStatus
	Nodes  []ChildNode
}

// ChildrenLoader materializes collection subtrees on demand. parentID ""
// queries the workspace roots.
type ChildrenLoader interface {
	GetChildren(parentID string) ChildrenResult
}

// TreeItem is one visible row of the flattened tree.
type TreeItem struct {
	ID         string
	Name       string
	Kind       NodeKind
	Method     string
	Level      int
	Expanded   bool
	Loading    bool
	FolderPath tree.Path // folders: own path; requests: containing folder
	Index      int       // requests: position among sibling requests
}

// SelectRequestMsg is sent when a request row is chosen.
type SelectRequestMsg struct {
	Item TreeItem
}

// MoveNodeMsg is sent when a row is moved among its siblings. The host
// applies the move to the store and resolves open-tab save contexts.
type MoveNodeMsg struct {
	Item TreeItem
	From int
	To   int
}

// RemoveNodeMsg is sent when a row is deleted.
type RemoveNodeMsg struct {
	Item TreeItem
}

// CollectionTree displays the workspace collections as a lazily loaded,
// reorderable tree.
type CollectionTree struct {
	title    string
	focused  bool
	width    int
	height   int
	cursor   int
	offset   int
	expanded map[string]bool
	loader   ChildrenLoader
	items    []TreeItem
	status   string
}

// NewCollectionTree creates the component.
func NewCollectionTree(loader ChildrenLoader) *CollectionTree {
	return &CollectionTree{
		title:    "Collections",
		expanded: make(map[string]bool),
		loader:   loader,
	}
}

// Init initializes the component.
func (c *CollectionTree) Init() tea.Cmd {
	c.Refresh()
	return nil
}

// SetSize sets the viewport dimensions.
func (c *CollectionTree) SetSize(width, height int) {
	c.width = width
	c.height = height
}

// Focus gives the component keyboard focus.
func (c *CollectionTree) Focus() { c.focused = true }

// Blur removes keyboard focus.
func (c *CollectionTree) Blur() { c.focused = false }

// Items returns the currently visible rows.
func (c *CollectionTree) Items() []TreeItem { return c.items }

// Cursor returns the cursor position.
func (c *CollectionTree) Cursor() int { return c.cursor }

// Selected returns the row under the cursor.
func (c *CollectionTree) Selected() (TreeItem, bool) {
	if c.cursor < 0 || c.cursor >= len(c.items) {
		return TreeItem{}, false
	}
	return c.items[c.cursor], true
}

// Refresh re-flattens the tree from the loader. Call after any store
// mutation so positional paths match the new sibling order.
func (c *CollectionTree) Refresh() {
	c.items = c.flatten("", tree.Path{}, 0)
	c.cursor = ClampCursor(c.cursor, len(c.items))
	c.offset = AdjustOffset(c.cursor, c.offset, c.visibleHeight())
}

func (c *CollectionTree) flatten(parentID string, parentPath tree.Path, level int) []TreeItem {
	result := c.loader.GetChildren(parentID)
	if result.Status == StatusLoading {
		return []TreeItem{{Name: "loading…", Kind: NodeFolder, Level: level, Loading: true, FolderPath: parentPath}}
	}

	var items []TreeItem
	folderIdx := 0
	requestIdx := 0
	for _, node := range result.Nodes {
		switch node.Kind {
		case NodeCollection, NodeFolder:
			path := parentPath.Child(tree.Index(folderIdx))
			item := TreeItem{
				ID:         node.ID,
				Name:       node.Name,
				Kind:       node.Kind,
				Level:      level,
				Expanded:   c.expanded[node.ID],
				FolderPath: path,
				Index:      folderIdx,
			}
			items = append(items, item)
			if item.Expanded {
				items = append(items, c.flatten(node.ID, path, level+1)...)
			}
			folderIdx++
		case NodeRequest:
			items = append(items, TreeItem{
				ID:         node.ID,
				Name:       node.Name,
				Kind:       NodeRequest,
				Method:     node.Method,
				Level:      level,
				FolderPath: parentPath,
				Index:      requestIdx,
			})
			requestIdx++
		}
	}
	return items
}

// Update handles messages.
func (c *CollectionTree) Update(msg tea.Msg) (*CollectionTree, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		c.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if c.focused {
			return c.handleKey(msg)
		}
	}
	return c, nil
}

func (c *CollectionTree) handleKey(msg tea.KeyMsg) (*CollectionTree, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		c.cursor = MoveCursor(c.cursor, 1, len(c.items))
	case "k", "up":
		c.cursor = MoveCursor(c.cursor, -1, len(c.items))
	case "g":
		c.cursor = 0
	case "G":
		c.cursor = MoveCursor(c.cursor, len(c.items), len(c.items))
	case "enter", " ":
		return c.activate()
	case "J":
		return c.moveSelected(1)
	case "K":
		return c.moveSelected(-1)
	case "d":
		if item, ok := c.Selected(); ok && !item.Loading {
			return c, func() tea.Msg { return RemoveNodeMsg{Item: item} }
		}
	case "y":
		c.yankPath()
	}
	c.offset = AdjustOffset(c.cursor, c.offset, c.visibleHeight())
	return c, nil
}

func (c *CollectionTree) activate() (*CollectionTree, tea.Cmd) {
	item, ok := c.Selected()
	if !ok || item.Loading {
		return c, nil
	}
	if item.Kind == NodeRequest {
		return c, func() tea.Msg { return SelectRequestMsg{Item: item} }
	}
	c.expanded = ToggleExpand(c.expanded, item.ID, !item.Expanded)
	c.Refresh()
	return c, nil
}

// moveSelected emits a MoveNodeMsg for the row under the cursor. The To
// value uses the same insert-after semantics as tree.AffectedIndexes.
func (c *CollectionTree) moveSelected(delta int) (*CollectionTree, tea.Cmd) {
	item, ok := c.Selected()
	if !ok || item.Loading {
		return c, nil
	}
	to := item.Index + delta
	if delta > 0 {
		// Insert after the next sibling.
		to = item.Index + 2
	}
	if to < 0 {
		return c, nil
	}
	return c, func() tea.Msg { return MoveNodeMsg{Item: item, From: item.Index, To: to} }
}

func (c *CollectionTree) yankPath() {
	item, ok := c.Selected()
	if !ok || item.Loading {
		return
	}
	path := item.FolderPath.String()
	if item.Kind == NodeRequest {
		path = fmt.Sprintf("%s#%d", path, item.Index)
	}
	if err := clipboard.WriteAll(path); err != nil {
		c.status = "clipboard unavailable"
		return
	}
	c.status = "copied " + path
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	cursorStyle  = lipgloss.NewStyle().Reverse(true)
	methodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	folderStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("178"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View renders the component.
func (c *CollectionTree) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(c.title))
	b.WriteString("\n")

	height := c.visibleHeight()
	end := c.offset + height
	if end > len(c.items) {
		end = len(c.items)
	}
	for i := c.offset; i < end; i++ {
		b.WriteString(c.renderItem(i))
		b.WriteString("\n")
	}
	if c.status != "" {
		b.WriteString(statusStyle.Render(c.status))
	}
	return b.String()
}

func (c *CollectionTree) renderItem(i int) string {
	item := c.items[i]
	indent := strings.Repeat("  ", item.Level)

	var label string
	switch {
	case item.Loading:
		label = loadingStyle.Render(item.Name)
	case item.Kind == NodeRequest:
		label = fmt.Sprintf("%s %s", methodStyle.Render(item.Method), item.Name)
	default:
		marker := "▸"
		if item.Expanded {
			marker = "▾"
		}
		label = folderStyle.Render(fmt.Sprintf("%s %s", marker, item.Name))
	}

	line := indent + label
	if i == c.cursor && c.focused {
		return cursorStyle.Render(line)
	}
	return line
}

func (c *CollectionTree) visibleHeight() int {
	h := c.height - 2
	if h < 1 {
		h = 1
	}
	return h
}
