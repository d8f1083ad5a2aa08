package tree

import "errors"

// This file contains pure functions for sibling reindexing.
// These functions take values and return values - no mutation, no side effects.

// Removed is the destination value meaning the moved sibling was deleted
// rather than relocated.
const Removed = -1

// ErrLengthRequired is returned when a removal is computed without the
// total sibling count.
var ErrLengthRequired = errors.New("tree: sibling count required for removal")

// ErrIndexRange is returned when a move's source or destination falls
// outside the sibling list.
var ErrIndexRange = errors.New("tree: move index out of range")

// AffectedIndexes computes the old→new position mapping produced by moving
// one sibling from lastIndex to newIndex within an ordered sibling list.
//
// newIndex uses insert-after semantics: when the destination lies beyond
// the source, it is decremented by one first, because removing the sibling
// from its old slot shifts everything above it down before reinsertion.
// A move that lands where it started yields an empty map. A source or
// post-decrement destination outside [0, length) is ErrIndexRange; no
// partial mapping is ever produced for it.
//
// newIndex == Removed means the sibling was deleted. length (the total
// sibling count before deletion) is then required; every sibling above
// lastIndex shifts down by one, and lastIndex itself is absent from the
// map - the caller must treat it as gone, not remapped.
func AffectedIndexes(lastIndex, newIndex, length int) (map[int]int, error) {
	if newIndex == Removed {
		if length <= lastIndex {
			return nil, ErrLengthRequired
		}
		mapping := make(map[int]int, length-lastIndex-1)
		for i := lastIndex + 1; i < length; i++ {
			mapping[i] = i - 1
		}
		return mapping, nil
	}

	if newIndex > lastIndex {
		newIndex--
	}
	if lastIndex < 0 || lastIndex >= length || newIndex < 0 || newIndex >= length {
		return nil, ErrIndexRange
	}
	if newIndex == lastIndex {
		return map[int]int{}, nil
	}

	mapping := make(map[int]int)
	if newIndex > lastIndex {
		// Moved down: everything between the vacated slot and the
		// destination slides up by one.
		for i := lastIndex + 1; i <= newIndex; i++ {
			mapping[i] = i - 1
		}
	} else {
		// Moved up: everything between the destination and the vacated
		// slot slides down by one.
		for i := newIndex; i < lastIndex; i++ {
			mapping[i] = i + 1
		}
	}
	mapping[lastIndex] = newIndex
	return mapping, nil
}

// ApplyIndexMap returns a copy of items with the positions permuted per
// the mapping. Positions absent from the mapping keep their place.
func ApplyIndexMap[T any](items []T, mapping map[int]int) []T {
	out := make([]T, len(items))
	copy(out, items)
	for from, to := range mapping {
		if from < len(items) && to < len(out) {
			out[to] = items[from]
		}
	}
	return out
}
