package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffectedIndexesMoveUp(t *testing.T) {
	// Four siblings [0,1,2,3]; move position 3 to position 1.
	mapping, err := AffectedIndexes(3, 1, 4)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 2, 2: 3, 3: 1}, mapping)
}

func TestAffectedIndexesMoveDown(t *testing.T) {
	// Insert-after semantics: destination 3 becomes 2 once the source
	// vacates position 0.
	mapping, err := AffectedIndexes(0, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 2, 1: 0, 2: 1}, mapping)
}

func TestAffectedIndexesNoOp(t *testing.T) {
	mapping, err := AffectedIndexes(2, 2, 5)
	require.NoError(t, err)
	assert.Empty(t, mapping)

	// Moving to the slot immediately after the source is also a no-op
	// once the destination is decremented.
	mapping, err = AffectedIndexes(2, 3, 5)
	require.NoError(t, err)
	assert.Empty(t, mapping)
}

func TestAffectedIndexesRemoval(t *testing.T) {
	mapping, err := AffectedIndexes(1, Removed, 5)
	require.NoError(t, err)

	assert.Equal(t, map[int]int{2: 1, 3: 2, 4: 3}, mapping)
	_, ok := mapping[1]
	assert.False(t, ok, "deleted index must be absent from the mapping")
}

func TestAffectedIndexesRemovalNeedsLength(t *testing.T) {
	_, err := AffectedIndexes(2, Removed, 0)
	assert.ErrorIs(t, err, ErrLengthRequired)

	_, err = AffectedIndexes(2, Removed, 2)
	assert.ErrorIs(t, err, ErrLengthRequired)
}

func TestAffectedIndexesRange(t *testing.T) {
	// Insert-after on the last of three siblings targets position 4;
	// after the decrement that lands past the end of the list.
	_, err := AffectedIndexes(2, 4, 3)
	assert.ErrorIs(t, err, ErrIndexRange)

	// One past the end is fine: it is "insert after the last sibling".
	mapping, err := AffectedIndexes(0, 3, 3)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 2, 1: 0, 2: 1}, mapping)

	_, err = AffectedIndexes(5, 1, 3)
	assert.ErrorIs(t, err, ErrIndexRange)

	_, err = AffectedIndexes(-1, 1, 3)
	assert.ErrorIs(t, err, ErrIndexRange)
}

func TestAffectedIndexesBijection(t *testing.T) {
	// For every move within a 6-element list the mapping must be a
	// bijection over the inclusive affected range, and applying it must
	// land the moved element at the destination.
	// dest == length is the furthest legal target: insert after the
	// last sibling.
	const length = 6
	for last := 0; last < length; last++ {
		for dest := 0; dest <= length; dest++ {
			mapping, err := AffectedIndexes(last, dest, length)
			require.NoError(t, err)

			seen := make(map[int]bool)
			for from, to := range mapping {
				assert.False(t, seen[to], "duplicate destination %d for move %d→%d", to, last, dest)
				seen[to] = true
				assert.Contains(t, mapping, to, "range must map onto itself (%d→%d)", from, to)
			}

			items := []int{0, 1, 2, 3, 4, 5}
			moved := ApplyIndexMap(items, mapping)
			effective := dest
			if effective > last {
				effective--
			}
			assert.Equal(t, last, moved[effective], "move %d→%d", last, dest)
		}
	}
}

func TestApplyIndexMap(t *testing.T) {
	mapping, err := AffectedIndexes(3, 1, 4)
	require.NoError(t, err)

	out := ApplyIndexMap([]string{"a", "b", "c", "d"}, mapping)
	assert.Equal(t, []string{"a", "d", "b", "c"}, out)
}
