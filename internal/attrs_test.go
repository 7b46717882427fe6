package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCombineAttrs(t *testing.T) {
	t.Run("accepts the five policy selectors", func(t *testing.T) {
		for _, value := range []string{"override", "drop", "identical", "no_conflicts", "overwrite_conflicts"} {
			policy, err := NewCombineAttrs(value)
			require.NoError(t, err)
			assert.Equal(t, value, policy.String())
		}
	})

	t.Run("empty selects override", func(t *testing.T) {
		policy, err := NewCombineAttrs("")
		require.NoError(t, err)
		assert.Equal(t, CombineAttrsOverride, policy)
	})

	t.Run("rejects unknown selectors", func(t *testing.T) {
		_, err := NewCombineAttrs("merge-somehow")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid combine attrs policy")
	})
}

func TestMergeAttrs(t *testing.T) {
	t.Run("override copies the first mapping verbatim", func(t *testing.T) {
		merged, err := MergeAttrs(CombineAttrsOverride, []Attrs{
			{"a": 1, "b": "x"},
			{"a": 2, "c": "y"},
		})

		require.NoError(t, err)
		assert.Equal(t, Attrs{"a": 1, "b": "x"}, merged)
	})

	t.Run("drop yields an empty mapping", func(t *testing.T) {
		merged, err := MergeAttrs(CombineAttrsDrop, []Attrs{
			{"a": 1},
			{"b": 2},
		})

		require.NoError(t, err)
		assert.Empty(t, merged)
	})

	t.Run("identical succeeds when all mappings are equal", func(t *testing.T) {
		merged, err := MergeAttrs(CombineAttrsIdentical, []Attrs{
			{"a": 1, "b": "x"},
			{"a": 1, "b": "x"},
		})

		require.NoError(t, err)
		assert.Equal(t, Attrs{"a": 1, "b": "x"}, merged)
	})

	t.Run("identical fails on any difference", func(t *testing.T) {
		_, err := MergeAttrs(CombineAttrsIdentical, []Attrs{
			{"a": 1},
			{"a": 1, "b": 2},
		})

		require.Error(t, err)
		assert.True(t, IsAttributeConflictError(err))
	})

	t.Run("no_conflicts unions disjoint keys", func(t *testing.T) {
		merged, err := MergeAttrs(CombineAttrsNoConflicts, []Attrs{
			{"a": 1},
			{"b": 2},
		})

		require.NoError(t, err)
		assert.Equal(t, Attrs{"a": 1, "b": 2}, merged)
	})

	t.Run("no_conflicts fails when a shared key has two distinct values", func(t *testing.T) {
		_, err := MergeAttrs(CombineAttrsNoConflicts, []Attrs{
			{"a": 1},
			{"a": 2},
		})

		require.Error(t, err)
		assert.True(t, IsAttributeConflictError(err))
		assert.Contains(t, err.Error(), `"a"`)
	})

	t.Run("no_conflicts allows a shared key with one value", func(t *testing.T) {
		merged, err := MergeAttrs(CombineAttrsNoConflicts, []Attrs{
			{"a": 1, "b": "x"},
			{"a": 1, "c": "y"},
		})

		require.NoError(t, err)
		assert.Equal(t, Attrs{"a": 1, "b": "x", "c": "y"}, merged)
	})

	t.Run("overwrite_conflicts keeps the last value by input order", func(t *testing.T) {
		merged, err := MergeAttrs(CombineAttrsOverwriteConflicts, []Attrs{
			{"a": 1},
			{"a": 2},
		})

		require.NoError(t, err)
		assert.Equal(t, Attrs{"a": 2}, merged)
	})

	t.Run("override with conflicting mappings keeps the first value", func(t *testing.T) {
		merged, err := MergeAttrs(CombineAttrsOverride, []Attrs{
			{"a": 1},
			{"a": 2},
		})

		require.NoError(t, err)
		assert.Equal(t, Attrs{"a": 1}, merged)
	})

	t.Run("numeric values compare by value, not representation", func(t *testing.T) {
		merged, err := MergeAttrs(CombineAttrsNoConflicts, []Attrs{
			{"water_level": 1},
			{"water_level": 1.0},
		})

		require.NoError(t, err)
		assert.Len(t, merged, 1)

		_, err = MergeAttrs(CombineAttrsIdentical, []Attrs{
			{"water_level": int64(3)},
			{"water_level": 3.0},
		})
		require.NoError(t, err)
	})

	t.Run("empty input yields empty mapping under every policy", func(t *testing.T) {
		for _, policy := range []CombineAttrs{
			CombineAttrsOverride,
			CombineAttrsDrop,
			CombineAttrsIdentical,
			CombineAttrsNoConflicts,
			CombineAttrsOverwriteConflicts,
		} {
			merged, err := MergeAttrs(policy, nil)
			require.NoError(t, err, policy.String())
			assert.Empty(t, merged, policy.String())
		}
	})

	t.Run("result is detached from the inputs", func(t *testing.T) {
		first := Attrs{"a": 1}
		merged, err := MergeAttrs(CombineAttrsOverride, []Attrs{first})
		require.NoError(t, err)

		merged["a"] = 99

		assert.Equal(t, 1, first["a"])
	})
}
