package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePath(t *testing.T) {
	t.Run("normalizes case and whitespace", func(t *testing.T) {
		path, err := ParsePath("United States/ Texas /Austin")
		require.NoError(t, err)
		assert.Equal(t, "united_states/texas/austin", path.String())
		assert.Equal(t, 3, path.Depth())
	})

	t.Run("empty input is a zero-depth path", func(t *testing.T) {
		path, err := ParsePath("")
		require.NoError(t, err)
		assert.True(t, path.IsZero())
		assert.Equal(t, 0, path.Depth())

		path, err = ParsePath("   ")
		require.NoError(t, err)
		assert.True(t, path.IsZero())
	})

	t.Run("empty interior segment is malformed", func(t *testing.T) {
		_, err := ParsePath("united_states//austin")
		assert.ErrorIs(t, err, ErrMalformedPath)

		_, err = ParsePath("united_states/texas/")
		assert.ErrorIs(t, err, ErrMalformedPath)
	})

	t.Run("round-trips through String", func(t *testing.T) {
		for _, raw := range []string{
			"united_states",
			"united_states/texas",
			"united_states/texas/austin",
			"litigation/commercial/expert_witnesses",
		} {
			path, err := ParsePath(raw)
			require.NoError(t, err)
			reparsed, err := ParsePath(path.String())
			require.NoError(t, err)
			assert.True(t, path.Equal(reparsed), "round trip of %q", raw)
		}
	})
}

func TestParsePathWithAliases(t *testing.T) {
	aliases := DefaultJurisdictionAliases()

	path, err := ParsePathWithAliases("US/TX/Austin", aliases)
	require.NoError(t, err)
	assert.Equal(t, "united_states/texas/austin", path.String())

	// Segments without an alias pass through untouched.
	path, err = ParsePathWithAliases("canada/ontario", aliases)
	require.NoError(t, err)
	assert.Equal(t, "canada/ontario", path.String())
}

func TestHierarchyPathRelations(t *testing.T) {
	us := MustParsePath("united_states")
	tx := MustParsePath("united_states/texas")
	austin := MustParsePath("united_states/texas/austin")
	houston := MustParsePath("united_states/texas/houston")
	ca := MustParsePath("united_states/california")
	sf := MustParsePath("united_states/california/san_francisco")
	canada := MustParsePath("canada")

	t.Run("ancestor is strict", func(t *testing.T) {
		assert.False(t, tx.IsAncestorOf(tx), "path is never its own ancestor")
		assert.True(t, us.IsAncestorOf(tx))
		assert.True(t, us.IsAncestorOf(austin))
		assert.True(t, tx.IsAncestorOf(austin))
		assert.False(t, tx.IsAncestorOf(us))
		assert.False(t, tx.IsAncestorOf(sf))
	})

	t.Run("descendant inverts ancestor", func(t *testing.T) {
		assert.True(t, austin.IsDescendantOf(tx))
		assert.True(t, austin.IsDescendantOf(us))
		assert.False(t, austin.IsDescendantOf(austin))
		assert.False(t, us.IsDescendantOf(tx))
	})

	t.Run("siblings share a parent", func(t *testing.T) {
		assert.True(t, austin.IsSiblingOf(houston))
		assert.True(t, tx.IsSiblingOf(ca))
		assert.False(t, austin.IsSiblingOf(austin))
		assert.False(t, austin.IsSiblingOf(sf), "different parents")
		assert.False(t, us.IsSiblingOf(canada), "depth 1 paths have no siblings")
	})

	t.Run("cousins share only the top level", func(t *testing.T) {
		assert.True(t, austin.IsCousinOf(sf))
		assert.True(t, austin.IsCousinOf(ca), "different depths, shared root, unrelated")
		assert.False(t, austin.IsCousinOf(houston), "siblings are not cousins")
		assert.False(t, austin.IsCousinOf(tx), "descendants are not cousins")
		assert.False(t, austin.IsCousinOf(canada))
		assert.False(t, us.IsCousinOf(canada))
	})

	t.Run("zero-depth path relates to nothing", func(t *testing.T) {
		zero := HierarchyPath{}
		assert.True(t, zero.IsAncestorOf(us), "empty prefix is a strict prefix of any non-empty path")
		assert.False(t, zero.IsSiblingOf(zero))
		assert.False(t, zero.IsCousinOf(us))
	})
}

func TestHierarchyPathDerivation(t *testing.T) {
	austin := MustParsePath("united_states/texas/austin")

	assert.Equal(t, "united_states/texas", austin.Parent().String())
	assert.Equal(t, "united_states", austin.Truncate(1).String())
	assert.True(t, austin.Truncate(0).IsZero())
	assert.Equal(t, austin.String(), austin.Truncate(5).String())

	child, err := MustParsePath("united_states/texas").Child("Austin")
	require.NoError(t, err)
	assert.True(t, child.Equal(austin))

	// Derivations never mutate the source.
	assert.Equal(t, 3, austin.Depth())
	assert.Equal(t, "texas", austin.Segment(1))
}
