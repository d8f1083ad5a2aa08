package tree

import (
	"fmt"
	"strconv"
	"strings"
)

// Segment is one step of a tree path: either a 0-based sibling index
// (personal workspaces) or a stable opaque identifier (team workspaces).
type Segment struct {
	index int
	id    string
	isID  bool
}

// Index creates an index segment.
func Index(i int) Segment {
	return Segment{index: i}
}

// ID creates an identifier segment.
func ID(id string) Segment {
	return Segment{id: id, isID: true}
}

// IsID reports whether the segment is an identifier segment.
func (s Segment) IsID() bool { return s.isID }

// Idx returns the sibling index of an index segment and false for an
// identifier segment.
func (s Segment) Idx() (int, bool) {
	if s.isID {
		return 0, false
	}
	return s.index, true
}

// Value returns the identifier of an identifier segment.
func (s Segment) Value() string { return s.id }

func (s Segment) String() string {
	if s.isID {
		return s.id
	}
	return strconv.Itoa(s.index)
}

// Equal reports whether two segments are the same kind and value.
func (s Segment) Equal(o Segment) bool {
	if s.isID != o.isID {
		return false
	}
	if s.isID {
		return s.id == o.id
	}
	return s.index == o.index
}

// Path addresses a node in an ordered collection tree as a sequence of
// segments from the root. The empty path addresses the root itself.
type Path struct {
	segments []Segment
}

// NewPath builds a path from segments.
func NewPath(segments ...Segment) Path {
	return Path{segments: segments}
}

// ParsePath parses a slash-joined positional path such as "0/2/1".
// Every segment must be a non-negative integer.
func ParsePath(raw string) (Path, error) {
	if raw == "" {
		return Path{}, nil
	}
	parts := strings.Split(raw, "/")
	segments := make([]Segment, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Path{}, fmt.Errorf("invalid path segment %q in %q", part, raw)
		}
		segments = append(segments, Index(n))
	}
	return Path{segments: segments}, nil
}

// MustParsePath is ParsePath that panics on malformed input. Intended for
// literals in tests and constants.
func MustParsePath(raw string) Path {
	p, err := ParsePath(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String renders the path slash-joined.
func (p Path) String() string {
	parts := make([]string, len(p.segments))
	for i, s := range p.segments {
		parts[i] = s.String()
	}
	return strings.Join(parts, "/")
}

// Len returns the number of segments.
func (p Path) Len() int { return len(p.segments) }

// IsRoot reports whether the path has no segments.
func (p Path) IsRoot() bool { return len(p.segments) == 0 }

// Segment returns the i-th segment.
func (p Path) Segment(i int) Segment { return p.segments[i] }

// Last returns the final segment. Panics on the root path.
func (p Path) Last() Segment {
	return p.segments[len(p.segments)-1]
}

// Parent returns the path minus its final segment. The root path is its
// own parent.
func (p Path) Parent() Path {
	if len(p.segments) == 0 {
		return p
	}
	parent := make([]Segment, len(p.segments)-1)
	copy(parent, p.segments)
	return Path{segments: parent}
}

// Child returns the path extended by one segment.
func (p Path) Child(s Segment) Path {
	child := make([]Segment, len(p.segments)+1)
	copy(child, p.segments)
	child[len(p.segments)] = s
	return Path{segments: child}
}

// WithLast returns a copy of the path with its final segment replaced.
// Panics on the root path.
func (p Path) WithLast(s Segment) Path {
	if len(p.segments) == 0 {
		panic("tree: WithLast on root path")
	}
	out := make([]Segment, len(p.segments))
	copy(out, p.segments)
	out[len(out)-1] = s
	return Path{segments: out}
}

// Equal reports segment-wise equality.
func (p Path) Equal(o Path) bool {
	if len(p.segments) != len(o.segments) {
		return false
	}
	for i := range p.segments {
		if !p.segments[i].Equal(o.segments[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix addresses p itself or an ancestor of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for i := range prefix.segments {
		if !p.segments[i].Equal(prefix.segments[i]) {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether p is a strict ancestor of o.
func (p Path) IsAncestorOf(o Path) bool {
	return len(p.segments) < len(o.segments) && o.HasPrefix(p)
}

// MatchingSegments counts segments that agree position-by-position from
// the root. This is the closeness measure used when deciding whether a
// newly edited ancestor should replace a tab's cached inheritance source:
// the path with more matching segments against the tab's own path wins.
func (p Path) MatchingSegments(o Path) int {
	n := len(p.segments)
	if len(o.segments) < n {
		n = len(o.segments)
	}
	count := 0
	for i := 0; i < n; i++ {
		if !p.segments[i].Equal(o.segments[i]) {
			break
		}
		count++
	}
	return count
}
