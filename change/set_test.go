package change_test

import (
	"testing"

	"github.com/attaswift/GlueKit-sub000/change"
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/stretchr/testify/assert"
)

func TestSetChangeMerge(t *testing.T) {
	a := change.NewSetOf([]int{1, 2}, []int{3})
	b := change.NewSetOf([]int{3}, []int{4})

	merged := a.Merged(b)
	assert.True(t, merged.Removed().Equal(mapset.NewThreadUnsafeSet(1, 2, 3)))
	assert.True(t, merged.Inserted().Equal(mapset.NewThreadUnsafeSet(4)))
}

func TestSetChangeMergeMatchesSequentialApply(t *testing.T) {
	start := []int{1, 2, 5}
	a := change.NewSetOf([]int{1}, []int{3, 6})
	b := change.NewSetOf([]int{6, 2}, []int{1, 7})

	sequential := mapset.NewThreadUnsafeSet(start...)
	a.Apply(sequential)
	b.Apply(sequential)

	merged := mapset.NewThreadUnsafeSet(start...)
	a.Merged(b).Apply(merged)

	assert.True(t, sequential.Equal(merged), "%v != %v", sequential, merged)
	assert.True(t, merged.Equal(mapset.NewThreadUnsafeSet(1, 3, 5, 7)))
}

func TestSetChangeRemovingEqualChanges(t *testing.T) {
	c := change.NewSetOf([]string{"a", "b"}, []string{"b", "c"})
	once := c.RemovingEqualChanges()
	twice := once.RemovingEqualChanges()

	assert.True(t, once.Removed().Equal(mapset.NewThreadUnsafeSet("a")))
	assert.True(t, once.Inserted().Equal(mapset.NewThreadUnsafeSet("c")))
	assert.Equal(t, 0, once.Removed().Intersect(once.Inserted()).Cardinality())
	assert.True(t, twice.Removed().Equal(once.Removed()))
	assert.True(t, twice.Inserted().Equal(once.Inserted()))

	assert.True(t, change.NewSetOf([]string{"x"}, []string{"x"}).RemovingEqualChanges().IsEmpty())
}

func TestSetChangeReversedAndMap(t *testing.T) {
	c := change.NewSet[int](mapset.NewThreadUnsafeSet(1), nil)
	assert.False(t, c.IsEmpty())
	assert.True(t, c.Reversed().Inserted().Equal(mapset.NewThreadUnsafeSet(1)))
	assert.Equal(t, 0, c.Reversed().Removed().Cardinality())

	doubled := change.MapSet(c, func(i int) int { return i * 2 })
	assert.True(t, doubled.Removed().Contains(2))

	var zero change.Set[int]
	assert.True(t, zero.IsEmpty())
	assert.True(t, zero.Merged(c).Removed().Equal(mapset.NewThreadUnsafeSet(1)))
}

func TestValueChange(t *testing.T) {
	a := change.NewValue(1, 2)
	b := change.NewValue(2, 5)
	assert.Equal(t, change.NewValue(1, 5), a.Merged(b))
	assert.Equal(t, change.NewValue(2, 1), a.Reversed())
	assert.False(t, a.IsEmpty())
	assert.Equal(t, change.NewValue("1", "2"), change.MapValue(a, func(i int) string {
		return string(rune('0' + i))
	}))
}
