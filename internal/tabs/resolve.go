package tabs

import (
	"github.com/Eliptic23/borja/internal/tree"
)

// Reorder resolution. After a drag-and-drop move or a deletion inside the
// collection tree, positional save contexts at or below the affected range
// go stale. The functions here consume the old→new index mapping produced
// by tree.AffectedIndexes and rewrite every matching tab in place. An
// empty mapping mutates nothing.
//
// The Handle* entry points are the only place the decrement/range/delete
// sequencing lives; callers never build index mappings by hand.

// ResolveRequestReorder rewrites personal-folder save contexts after a
// request-level reorder inside the folder at folderPath.
func ResolveRequestReorder(reg *Registry, folderPath tree.Path, indexMap map[int]int) {
	if len(indexMap) == 0 {
		return
	}
	for _, t := range reg.Tabs() {
		sc, ok := t.Save.(PersonalFolderContext)
		if !ok || !sc.FolderPath.Equal(folderPath) {
			continue
		}
		if to, ok := indexMap[sc.RequestIndex]; ok {
			sc.RequestIndex = to
			t.Save = sc
		}
	}
}

// ResolveTeamRequestReorder rewrites team save contexts after a
// request-level reorder inside the collection with the given stable ID.
// Matching compares the collection-identifier prefix of the stored request
// identifier; only the trailing positional segment is rewritten.
func ResolveTeamRequestReorder(reg *Registry, collectionID string, indexMap map[int]int) {
	if len(indexMap) == 0 {
		return
	}
	for _, t := range reg.Tabs() {
		sc, ok := t.Save.(TeamCollectionContext)
		if !ok || sc.CollectionID != collectionID {
			continue
		}
		idx, ok := splitTeamRequestID(sc.CollectionID, sc.RequestID)
		if !ok {
			continue
		}
		if to, ok := indexMap[idx]; ok {
			sc.RequestID = TeamRequestID(sc.CollectionID, to)
			t.Save = sc
		}
	}
}

// ResolveFolderReorder rewrites save contexts after a folder-level reorder
// among the children of parentPath. Every tab whose context path passes
// through an affected child has the segment at depth len(parentPath)
// rewritten; deeper segments and request indices are untouched.
func ResolveFolderReorder(reg *Registry, parentPath tree.Path, indexMap map[int]int) {
	if len(indexMap) == 0 {
		return
	}
	depth := parentPath.Len()
	for _, t := range reg.Tabs() {
		path, ok := t.ContextPath()
		if !ok || t.Save.Workspace() != WorkspacePersonal {
			continue
		}
		if path.Len() <= depth || !path.HasPrefix(parentPath) {
			continue
		}
		idx, isIdx := path.Segment(depth).Idx()
		if !isIdx {
			continue
		}
		to, affected := indexMap[idx]
		if !affected {
			continue
		}
		rewritten := rewriteSegment(path, depth, to)
		switch sc := t.Save.(type) {
		case PersonalFolderContext:
			sc.FolderPath = rewritten
			t.Save = sc
		case PersonalCollectionContext:
			sc.Path = rewritten
			t.Save = sc
		}
	}
}

func rewriteSegment(p tree.Path, depth, newIndex int) tree.Path {
	segments := make([]tree.Segment, p.Len())
	for i := 0; i < p.Len(); i++ {
		segments[i] = p.Segment(i)
	}
	segments[depth] = tree.Index(newIndex)
	return tree.NewPath(segments...)
}

// ClearUnder clears the save context (and marks dirty) of every tab whose
// context path is equal to or nested under deletedPath. Personal
// workspaces only; team deletions go through ClearTeamCollection or the
// reconciliation sweep.
func ClearUnder(reg *Registry, deletedPath tree.Path) {
	for _, t := range reg.Tabs() {
		path, ok := t.ContextPath()
		if !ok || t.Save.Workspace() != WorkspacePersonal {
			continue
		}
		if path.HasPrefix(deletedPath) {
			t.ClearSave()
		}
	}
}

// ClearTeamCollection clears every tab saved in the team collection with
// the given stable ID.
func ClearTeamCollection(reg *Registry, collectionID string) {
	for _, t := range reg.Tabs() {
		if sc, ok := t.Save.(TeamCollectionContext); ok && sc.CollectionID == collectionID {
			t.ClearSave()
		}
	}
}

// HandleRequestMove resolves saved-tab state after the request at position
// from inside folderPath moved to position to among count siblings.
func HandleRequestMove(reg *Registry, folderPath tree.Path, from, to, count int) error {
	mapping, err := tree.AffectedIndexes(from, to, count)
	if err != nil {
		return err
	}
	ResolveRequestReorder(reg, folderPath, mapping)
	return nil
}

// HandleRequestRemoval resolves saved-tab state after the request at
// position index inside folderPath was deleted from count siblings. The
// tab holding the deleted request (if open) is detached and marked dirty
// before the remaining siblings are reindexed.
func HandleRequestRemoval(reg *Registry, folderPath tree.Path, index, count int) error {
	mapping, err := tree.AffectedIndexes(index, tree.Removed, count)
	if err != nil {
		return err
	}
	for _, t := range reg.Tabs() {
		if sc, ok := t.Save.(PersonalFolderContext); ok &&
			sc.FolderPath.Equal(folderPath) && sc.RequestIndex == index {
			t.ClearSave()
		}
	}
	ResolveRequestReorder(reg, folderPath, mapping)
	return nil
}

// HandleFolderMove resolves saved-tab state after the folder at child
// position from under parentPath moved to position to among count
// siblings.
func HandleFolderMove(reg *Registry, parentPath tree.Path, from, to, count int) error {
	mapping, err := tree.AffectedIndexes(from, to, count)
	if err != nil {
		return err
	}
	ResolveFolderReorder(reg, parentPath, mapping)
	return nil
}

// HandleFolderRemoval resolves saved-tab state after the folder at child
// position index under parentPath was deleted from count siblings:
// teardown of everything at or under the deleted path first, then
// reindexing of the surviving siblings.
func HandleFolderRemoval(reg *Registry, parentPath tree.Path, index, count int) error {
	mapping, err := tree.AffectedIndexes(index, tree.Removed, count)
	if err != nil {
		return err
	}
	ClearUnder(reg, parentPath.Child(tree.Index(index)))
	ResolveFolderReorder(reg, parentPath, mapping)
	return nil
}

// HandleTeamRequestMove resolves saved-tab state after the request at
// position from inside the team collection moved to position to among
// count siblings.
func HandleTeamRequestMove(reg *Registry, collectionID string, from, to, count int) error {
	mapping, err := tree.AffectedIndexes(from, to, count)
	if err != nil {
		return err
	}
	ResolveTeamRequestReorder(reg, collectionID, mapping)
	return nil
}

// HandleTeamRequestRemoval resolves saved-tab state after the request at
// position index inside the team collection was deleted from count
// siblings. The tab holding the deleted request is detached and marked
// dirty before the survivors are reindexed.
func HandleTeamRequestRemoval(reg *Registry, collectionID string, index, count int) error {
	mapping, err := tree.AffectedIndexes(index, tree.Removed, count)
	if err != nil {
		return err
	}
	deleted := TeamRequestID(collectionID, index)
	for _, t := range reg.Tabs() {
		if sc, ok := t.Save.(TeamCollectionContext); ok &&
			sc.CollectionID == collectionID && sc.RequestID == deleted {
			t.ClearSave()
		}
	}
	ResolveTeamRequestReorder(reg, collectionID, mapping)
	return nil
}
