package tabs

import (
	"github.com/Eliptic23/borja/internal/core"
	"github.com/Eliptic23/borja/internal/tree"
)

// InheritedHeader is a header resolved from an ancestor collection,
// annotated with the path of the ancestor that contributed it.
type InheritedHeader struct {
	Key        string
	Value      string
	SourcePath tree.Path
}

// InheritedProperties is the cached snapshot of everything a document
// inherits from its ancestor collections: the effective auth (from the
// nearest ancestor whose auth is not "inherit") and the merged active
// header list.
type InheritedProperties struct {
	Auth       core.AuthConfig
	AuthSource tree.Path
	Headers    []InheritedHeader
}

// ComputeInherited walks the ancestor chain of the node at path, starting
// at root (path "" addresses root itself), and resolves the inherited
// snapshot. Auth comes from the deepest non-inherit ancestor; headers
// accumulate from every ancestor, a deeper ancestor overriding a
// shallower one key by key.
func ComputeInherited(root *core.Collection, path tree.Path) (*InheritedProperties, bool) {
	props := &InheritedProperties{
		Auth: core.AuthConfig{Type: core.AuthNone, Active: true},
	}

	node := root
	current := tree.Path{}
	for depth := 0; ; depth++ {
		if !node.Auth().IsInherit() {
			props.Auth = node.Auth()
			props.AuthSource = current
		}
		mergeHeaders(props, node.Headers(), current)

		if depth == path.Len() {
			break
		}
		idx, ok := path.Segment(depth).Idx()
		if !ok || idx < 0 || idx >= len(node.Folders()) {
			return nil, false
		}
		node = node.Folders()[idx]
		current = current.Child(path.Segment(depth))
	}
	return props, true
}

func mergeHeaders(props *InheritedProperties, headers []core.Header, source tree.Path) {
	for _, h := range headers {
		if !h.Active {
			continue
		}
		replaced := false
		for i, existing := range props.Headers {
			if existing.Key == h.Key {
				props.Headers[i] = InheritedHeader{Key: h.Key, Value: h.Value, SourcePath: source}
				replaced = true
				break
			}
		}
		if !replaced {
			props.Headers = append(props.Headers, InheritedHeader{Key: h.Key, Value: h.Value, SourcePath: source})
		}
	}
}

// PropagateInherited pushes a freshly computed snapshot for the mutated
// subtree at mutatedPath to every open tab of the given document and
// workspace kind whose context path is at or under it.
//
// Auth is only replaced on tabs whose currently cached auth source is not
// strictly closer to the tab than the mutated path, closeness being the
// count of matching segments against the tab's own context path; ties
// favor the new path. Header refresh is independent of that check: only
// entries tagged with the mutated path are rewritten, entries contributed
// by other ancestors stay untouched.
func PropagateInherited(reg *Registry, mutatedPath tree.Path, snapshot InheritedProperties, kind DocumentKind, ws WorkspaceKind) {
	for _, t := range reg.Tabs() {
		if t.Kind != kind || t.Save == nil || t.Save.Workspace() != ws {
			continue
		}
		path, ok := t.ContextPath()
		if !ok || !path.HasPrefix(mutatedPath) {
			continue
		}

		if t.Inherited == nil {
			snap := snapshot
			snap.Headers = append([]InheritedHeader(nil), snapshot.Headers...)
			t.Inherited = &snap
			continue
		}

		if mutatedPath.MatchingSegments(path) >= t.Inherited.AuthSource.MatchingSegments(path) {
			t.Inherited.Auth = snapshot.Auth
			t.Inherited.AuthSource = snapshot.AuthSource
		}

		t.Inherited.Headers = refreshHeaders(t.Inherited.Headers, snapshot.Headers, mutatedPath)
	}
}

// refreshHeaders rewrites the entries tagged with mutatedPath by
// key-matching against the fresh list: changed values are replaced,
// vanished keys dropped, new keys from the mutated ancestor appended.
func refreshHeaders(cached, fresh []InheritedHeader, mutatedPath tree.Path) []InheritedHeader {
	freshAt := make(map[string]InheritedHeader)
	for _, h := range fresh {
		if h.SourcePath.Equal(mutatedPath) {
			freshAt[h.Key] = h
		}
	}

	out := make([]InheritedHeader, 0, len(cached))
	seen := make(map[string]bool)
	for _, h := range cached {
		if !h.SourcePath.Equal(mutatedPath) {
			out = append(out, h)
			continue
		}
		if updated, ok := freshAt[h.Key]; ok {
			out = append(out, updated)
			seen[h.Key] = true
		}
	}
	for _, h := range fresh {
		if h.SourcePath.Equal(mutatedPath) && !seen[h.Key] {
			found := false
			for _, existing := range out {
				if existing.Key == h.Key {
					found = true
					break
				}
			}
			if !found {
				out = append(out, h)
			}
		}
	}
	return out
}
