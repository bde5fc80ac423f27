package change

import (
	"fmt"
	"slices"
)

// Array describes the transformation of an array of InitialCount elements
// into an array of FinalCount elements. Its modifications are sorted,
// non-overlapping and non-touching; each one's indices are relative to the
// array produced by the modifications before it.
type Array[E any] struct {
	initialCount int
	deltaCount   int
	mods         []Modification[E]
}

func NewArray[E any](initialCount int, mods ...Modification[E]) Array[E] {
	if initialCount < 0 {
		panic(fmt.Sprintf("change: negative initial count %d", initialCount))
	}
	c := Array[E]{initialCount: initialCount}
	for _, m := range mods {
		c.Add(m)
	}
	return c
}

func (c Array[E]) InitialCount() int {
	return c.initialCount
}

func (c Array[E]) FinalCount() int {
	return c.initialCount + c.deltaCount
}

func (c Array[E]) DeltaCount() int {
	return c.deltaCount
}

func (c Array[E]) IsEmpty() bool {
	return len(c.mods) == 0
}

// Modifications must not be modified by the caller.
func (c Array[E]) Modifications() []Modification[E] {
	return c.mods
}

// Add appends m, whose indices are relative to the array after every
// modification already in c. Neighbouring modifications are merged so the
// list stays canonical. Other copies of c are not affected.
func (c *Array[E]) Add(m Modification[E]) {
	if m.IsEmpty() {
		return
	}
	if final := c.FinalCount(); m.InputRange().Upper > final {
		panic(fmt.Sprintf("change: %v out of bounds for array of %d elements", m, final))
	}
	c.deltaCount += m.DeltaCount()
	// Copies of c share the backing array.
	c.mods = slices.Clone(c.mods)

	pending := m
	for i := len(c.mods) - 1; i >= 0; i-- {
		r := c.mods[i].Merged(pending)
		switch r.Outcome {
		case DisjunctOrderedAfter:
			c.mods = slices.Insert(c.mods, i+1, pending)
			return
		case DisjunctOrderedBefore:
			c.mods[i] = c.mods[i].Shifted(pending.DeltaCount())
		case CollapsedToNoChange:
			c.mods = slices.Delete(c.mods, i, i+1)
			return
		case CollapsedTo:
			c.mods = slices.Delete(c.mods, i, i+1)
			pending = r.Modification
		}
	}
	c.mods = slices.Insert(c.mods, 0, pending)
}

// Merge appends every modification of other. other must start from the
// array c produces.
func (c *Array[E]) Merge(other Array[E]) {
	if c.FinalCount() != other.initialCount {
		panic(fmt.Sprintf("change: cannot merge change of %d initial elements into change producing %d",
			other.initialCount, c.FinalCount()))
	}
	for _, m := range other.mods {
		c.Add(m)
	}
}

func (c Array[E]) Merged(other Array[E]) Array[E] {
	r := c.clone()
	r.Merge(other)
	return r
}

func (c Array[E]) clone() Array[E] {
	return Array[E]{
		initialCount: c.initialCount,
		deltaCount:   c.deltaCount,
		mods:         slices.Clone(c.mods),
	}
}

// Reversed returns the change turning the result of c back into its input.
func (c Array[E]) Reversed() Array[E] {
	r := Array[E]{
		initialCount: c.FinalCount(),
		deltaCount:   -c.deltaCount,
		mods:         make([]Modification[E], 0, len(c.mods)),
	}
	drift := 0
	for _, m := range c.mods {
		r.mods = append(r.mods, m.Reversed().Shifted(-drift))
		drift += m.DeltaCount()
	}
	return r
}

// Widen rebases c onto a containing array of initialCount elements in which
// the changed array starts at startIndex.
func (c Array[E]) Widen(startIndex, initialCount int) Array[E] {
	if startIndex < 0 || startIndex+c.initialCount > initialCount {
		panic(fmt.Sprintf("change: cannot widen change of %d elements to start %d in %d elements",
			c.initialCount, startIndex, initialCount))
	}
	r := Array[E]{
		initialCount: initialCount,
		deltaCount:   c.deltaCount,
		mods:         make([]Modification[E], len(c.mods)),
	}
	for i, m := range c.mods {
		r.mods[i] = m.Shifted(startIndex)
	}
	return r
}

// Apply returns a copy of elements with the change applied.
func (c Array[E]) Apply(elements []E) []E {
	if len(elements) != c.initialCount {
		panic(fmt.Sprintf("change: applying change of %d initial elements to array of %d",
			c.initialCount, len(elements)))
	}
	result := slices.Clone(elements)
	for _, m := range c.mods {
		result = slices.Replace(result, m.start, m.start+len(m.oldElements), m.newElements...)
	}
	return result
}

func (c Array[E]) ForEachOld(fn func(E)) {
	for _, m := range c.mods {
		for _, e := range m.oldElements {
			fn(e)
		}
	}
}

func (c Array[E]) ForEachNew(fn func(E)) {
	for _, m := range c.mods {
		for _, e := range m.newElements {
			fn(e)
		}
	}
}

func (c Array[E]) String() string {
	return fmt.Sprintf("ArrayChange(%d→%d, %v)", c.initialCount, c.FinalCount(), c.mods)
}

func MapArray[E, R any](c Array[E], fn func(E) R) Array[R] {
	r := Array[R]{
		initialCount: c.initialCount,
		deltaCount:   c.deltaCount,
		mods:         make([]Modification[R], len(c.mods)),
	}
	for i, m := range c.mods {
		r.mods[i] = MapModification(m, fn)
	}
	return r
}

func RemovingEqualChanges[E comparable](c Array[E]) Array[E] {
	return RemovingEqualChangesFunc(c, func(a, b E) bool { return a == b })
}

// RemovingEqualChangesFunc drops the parts of each modification that replace
// an element with an equal one. Equal-length replacements are split into the
// runs that actually differ.
func RemovingEqualChangesFunc[E any](c Array[E], eq func(a, b E) bool) Array[E] {
	r := Array[E]{initialCount: c.initialCount}
	for _, m := range c.mods {
		old, new := m.oldElements, m.newElements
		p := 0
		for p < len(old) && p < len(new) && eq(old[p], new[p]) {
			p++
		}
		s := 0
		for s < len(old)-p && s < len(new)-p && eq(old[len(old)-1-s], new[len(new)-1-s]) {
			s++
		}
		old, new = old[p:len(old)-s], new[p:len(new)-s]
		start := m.start + p

		if len(old) != len(new) {
			if mod, ok := NewModification(old, start, new); ok {
				r.Add(mod)
			}
			continue
		}
		for i := 0; i < len(old); {
			if eq(old[i], new[i]) {
				i++
				continue
			}
			j := i + 1
			for j < len(old) && !eq(old[j], new[j]) {
				j++
			}
			r.Add(ReplaceSlice(old[i:j], start+i, new[i:j]))
			i = j
		}
	}
	return r
}
