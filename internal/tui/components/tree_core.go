package components

// Pure functions for tree navigation state. They take values and
// return values, no mutation.

// MoveCursor computes a new cursor position within bounds.
func MoveCursor(cursor, delta, itemCount int) int {
	if itemCount == 0 {
		return 0
	}
	newCursor := cursor + delta
	if newCursor < 0 {
		return 0
	}
	if newCursor >= itemCount {
		return itemCount - 1
	}
	return newCursor
}

// AdjustOffset ensures the cursor stays visible within the viewport.
func AdjustOffset(cursor, offset, visibleHeight int) int {
	if visibleHeight < 1 {
		visibleHeight = 1
	}
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+visibleHeight {
		return cursor - visibleHeight + 1
	}
	return offset
}

// ToggleExpand returns a new expanded map with the specified node set.
// Never mutates the input map.
func ToggleExpand(expanded map[string]bool, id string, expand bool) map[string]bool {
	result := make(map[string]bool, len(expanded)+1)
	for k, v := range expanded {
		result[k] = v
	}
	result[id] = expand
	return result
}

// ClampCursor keeps the cursor inside a shrunken item list.
func ClampCursor(cursor, itemCount int) int {
	if itemCount == 0 {
		return 0
	}
	if cursor >= itemCount {
		return itemCount - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}
