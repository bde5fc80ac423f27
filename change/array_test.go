package change_test

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertThenRemoveCancelsOut(t *testing.T) {
	c := change.NewArray[string](3)
	c.Add(change.Insert("x", 1))
	c.Add(change.Remove("x", 1))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, 3, c.FinalCount())
}

func TestReplaceSliceApply(t *testing.T) {
	c := change.NewArray(5, change.ReplaceSlice([]int{2, 3}, 1, []int{9}))
	assert.Equal(t, 4, c.FinalCount())
	assert.Equal(t, []int{1, 9, 4, 5}, c.Apply([]int{1, 2, 3, 4, 5}))
}

func TestModificationMergeCollapsesToNoChange(t *testing.T) {
	a := change.Insert("10", 2)
	b := change.Remove("10", 2)
	r := a.Merged(b)
	assert.Equal(t, change.CollapsedToNoChange, r.Outcome)

	c := change.NewArray(3, a, b)
	assert.Equal(t, []string{"a", "b", "c"}, c.Apply([]string{"a", "b", "c"}))
}

func TestModificationMergeOutcomes(t *testing.T) {
	a := change.Replace("b", 1, "B")

	r := a.Merged(change.Insert("x", 4))
	assert.Equal(t, change.DisjunctOrderedAfter, r.Outcome)

	// touching on the right
	r = a.Merged(change.Insert("x", 2))
	require.Equal(t, change.CollapsedTo, r.Outcome)
	assert.Equal(t, change.KindReplaceSlice, r.Modification.Kind())
	assert.Equal(t, []string{"b"}, r.Modification.OldElements())
	assert.Equal(t, []string{"B", "x"}, r.Modification.NewElements())

	// touching on the left: remove "a" right before the replaced element
	r = a.Merged(change.Remove("a", 0))
	require.Equal(t, change.CollapsedTo, r.Outcome)
	assert.Equal(t, 0, r.Modification.StartIndex())
	assert.Equal(t, []string{"a", "b"}, r.Modification.OldElements())
	assert.Equal(t, []string{"B"}, r.Modification.NewElements())

	r = change.Replace("d", 3, "D").Merged(change.Remove("a", 0))
	assert.Equal(t, change.DisjunctOrderedBefore, r.Outcome)
}

func TestModificationKinds(t *testing.T) {
	m, ok := change.NewModification([]int{}, 0, []int{})
	assert.False(t, ok)
	assert.True(t, m.IsEmpty())

	m, ok = change.NewModification([]int{1}, 2, []int{2})
	require.True(t, ok)
	assert.Equal(t, change.KindReplace, m.Kind())
	assert.Equal(t, "replace(1, at: 2, with: 2)", m.String())
	assert.Equal(t, change.KindRemove, change.ReplaceSlice([]int{1}, 0, nil).Kind())
	assert.Equal(t, change.KindInsert, change.ReplaceSlice(nil, 0, []int{1}).Kind())
	assert.Equal(t, change.Range{Lower: 1, Upper: 3}, change.ReplaceSlice([]int{1, 2}, 1, []int{3}).InputRange())
	assert.Equal(t, change.Range{Lower: 1, Upper: 2}, change.ReplaceSlice([]int{1, 2}, 1, []int{3}).OutputRange())
	assert.Panics(t, func() { change.ReplaceSlice[int](nil, 0, nil) })
}

// allModifications lists every modification legal against elements with at
// most two old and two new elements. New elements are drawn from fresh.
func allModifications(elements []string, fresh []string) []change.Modification[string] {
	var mods []change.Modification[string]
	for start := 0; start <= len(elements); start++ {
		for oldLen := 0; oldLen <= 2 && start+oldLen <= len(elements); oldLen++ {
			for newLen := 0; newLen <= 2; newLen++ {
				m, ok := change.NewModification(elements[start:start+oldLen], start, fresh[:newLen])
				if ok {
					mods = append(mods, m)
				}
			}
		}
	}
	return mods
}

func TestMergeExhaustiveSmallCases(t *testing.T) {
	//  every pair of modifications over arrays of 0 to 3 elements must
	//  compose to the same result as applying them one after the other
	for n := 0; n <= 3; n++ {
		initial := []string{"a", "b", "c"}[:n]
		for _, first := range allModifications(initial, []string{"x", "y"}) {
			middle := first.Apply(initial)
			for _, second := range allModifications(middle, []string{"p", "q"}) {
				expected := second.Apply(middle)

				c := change.NewArray(n, first, second)
				assert.Equal(t, expected, c.Apply(initial), "%v then %v", first, second)
				assert.Equal(t, len(expected), c.FinalCount())
				assert.Equal(t, initial, c.Reversed().Apply(expected), "reversed %v", c)
			}
		}
	}
}

func randomModification(rng *rand.Rand, elements []int, next *int) change.Modification[int] {
	for {
		start := rng.Intn(len(elements) + 1)
		oldLen := rng.Intn(min(3, len(elements)-start) + 1)
		newLen := rng.Intn(4)
		new := make([]int, newLen)
		for i := range new {
			*next++
			new[i] = *next
		}
		if m, ok := change.NewModification(elements[start:start+oldLen], start, new); ok {
			return m
		}
	}
}

func TestAddMatchesBruteForceApply(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	next := 1000
	for round := 0; round < 500; round++ {
		initial := make([]int, rng.Intn(12))
		for i := range initial {
			initial[i] = i
		}
		current := initial
		c := change.NewArray[int](len(initial))
		for step := 0; step < 1+rng.Intn(8); step++ {
			m := randomModification(rng, current, &next)
			current = m.Apply(current)
			c.Add(m)
		}
		require.Equal(t, current, c.Apply(initial), "round %d: %v", round, c)
		require.Equal(t, len(current), c.FinalCount())
		require.Equal(t, initial, c.Reversed().Apply(current), "round %d reversed", round)

		mods := c.Modifications()
		for i := 1; i < len(mods); i++ {
			assert.Greater(t, mods[i].StartIndex(), mods[i-1].OutputRange().Upper, "modifications must not touch")
		}
	}
}

func TestMergeChanges(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	next := 100
	initial := []int{0, 1, 2, 3, 4, 5}

	first := change.NewArray[int](len(initial))
	middle := initial
	for i := 0; i < 4; i++ {
		m := randomModification(rng, middle, &next)
		middle = m.Apply(middle)
		first.Add(m)
	}
	second := change.NewArray[int](len(middle))
	final := middle
	for i := 0; i < 4; i++ {
		m := randomModification(rng, final, &next)
		final = m.Apply(final)
		second.Add(m)
	}

	merged := first.Merged(second)
	assert.Equal(t, final, merged.Apply(initial))
	assert.Equal(t, middle, first.Apply(initial), "Merged must not modify the receiver")

	assert.Panics(t, func() {
		first.Merged(change.NewArray[int](len(middle) + 1))
	})
}

func TestCopiesAreIndependent(t *testing.T) {
	elements := []int{0, 1, 2, 3, 9}
	a := change.NewArray(5, change.Replace(9, 4, 10))
	want := a.Apply(elements)

	b := a
	b.Add(change.Insert(7, 0))
	assert.Equal(t, want, a.Apply(elements))
	assert.Equal(t, []int{7, 0, 1, 2, 3, 10}, b.Apply(elements))

	c := a
	c.Merge(change.NewArray(5, change.Remove(0, 0), change.Remove(10, 3)))
	assert.Equal(t, want, a.Apply(elements))
	assert.Equal(t, []int{1, 2, 3}, c.Apply(elements))
	assert.Len(t, a.Modifications(), 1)
}

func TestApplyPreconditions(t *testing.T) {
	c := change.NewArray(2, change.Insert(1, 0))
	assert.Panics(t, func() { c.Apply([]int{1, 2, 3}) })
	assert.Panics(t, func() { c.Add(change.Remove(9, 3)) })
}

func TestWiden(t *testing.T) {
	inner := change.NewArray(2, change.Replace("b", 1, "B"), change.Insert("c", 2))
	outer := []string{"x", "a", "b", "y"}

	widened := inner.Widen(1, len(outer))
	assert.Equal(t, 4, widened.InitialCount())
	assert.Equal(t, 5, widened.FinalCount())
	assert.Equal(t, []string{"x", "a", "B", "c", "y"}, widened.Apply(outer))

	assert.Panics(t, func() { inner.Widen(3, 4) })
}

func TestMapArray(t *testing.T) {
	c := change.NewArray(3, change.ReplaceSlice([]int{1, 2}, 0, []int{7}))
	mapped := change.MapArray(c, func(i int) int { return i * 10 })
	assert.Equal(t, []int{70, 30}, mapped.Apply([]int{10, 20, 30}))

	var olds, news []int
	c.ForEachOld(func(e int) { olds = append(olds, e) })
	c.ForEachNew(func(e int) { news = append(news, e) })
	assert.Equal(t, []int{1, 2}, olds)
	assert.Equal(t, []int{7}, news)
}

func TestRemovingEqualChanges(t *testing.T) {
	initial := []int{1, 2, 3, 4, 5, 6}
	c := change.NewArray(6, change.ReplaceSlice([]int{1, 2, 3, 4, 5, 6}, 0, []int{1, 9, 3, 8, 7, 6}))

	trimmed := change.RemovingEqualChanges(c)
	require.Len(t, trimmed.Modifications(), 2)
	assert.Equal(t, change.Replace(2, 1, 9), trimmed.Modifications()[0])
	assert.Equal(t, change.ReplaceSlice([]int{4, 5}, 3, []int{8, 7}), trimmed.Modifications()[1])
	assert.Equal(t, c.Apply(initial), trimmed.Apply(initial))

	again := change.RemovingEqualChanges(trimmed)
	assert.Equal(t, trimmed, again)

	noop := change.NewArray(3, change.Replace(2, 1, 2))
	assert.True(t, change.RemovingEqualChanges(noop).IsEmpty())
}

func TestRemovingEqualChangesRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 300; round++ {
		initial := make([]int, 1+rng.Intn(8))
		for i := range initial {
			initial[i] = rng.Intn(3)
		}
		start := rng.Intn(len(initial))
		end := start + rng.Intn(len(initial)-start) + 1
		replacement := make([]int, rng.Intn(5))
		for i := range replacement {
			replacement[i] = rng.Intn(3)
		}
		m, ok := change.NewModification(initial[start:end], start, replacement)
		require.True(t, ok)
		c := change.NewArray(len(initial), m)

		trimmed := change.RemovingEqualChanges(c)
		assert.Equal(t, c.Apply(initial), trimmed.Apply(initial))
		assert.Equal(t, trimmed, change.RemovingEqualChanges(trimmed))
		for _, mod := range trimmed.Modifications() {
			old, new := mod.OldElements(), mod.NewElements()
			if len(old) > 0 && len(new) > 0 {
				assert.NotEqual(t, old[0], new[0])
				assert.NotEqual(t, old[len(old)-1], new[len(new)-1])
			}
		}
	}
}

func TestModificationMapAndShift(t *testing.T) {
	m := change.ReplaceSlice([]int{1, 2}, 2, []int{3})
	assert.Equal(t, 4, m.Shifted(2).StartIndex())
	assert.Panics(t, func() { m.Shifted(-3) })
	assert.Equal(t, -1, m.DeltaCount())
	assert.Equal(t, change.ReplaceSlice([]int{3}, 2, []int{1, 2}), m.Reversed())
	assert.True(t, slices.Equal([]string{"3"}, change.MapModification(m, func(i int) string {
		return string(rune('0' + i))
	}).NewElements()))
}
