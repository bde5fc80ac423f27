package change

import (
	"fmt"

	mapset "github.com/deckarep/golang-set/v2"
)

// Set describes a set edit: Removed elements leave, then Inserted elements
// join. The zero value is an empty change.
type Set[E comparable] struct {
	removed  mapset.Set[E]
	inserted mapset.Set[E]
}

// NewSet copies the given sets; nil means empty.
func NewSet[E comparable](removed, inserted mapset.Set[E]) Set[E] {
	return Set[E]{removed: unsafeCopy(removed), inserted: unsafeCopy(inserted)}
}

// Set algebra in mapset requires both operands to share an implementation,
// so every set held by a change is a thread-unsafe one.
func unsafeCopy[E comparable](s mapset.Set[E]) mapset.Set[E] {
	if s == nil {
		return nil
	}
	return mapset.NewThreadUnsafeSet(s.ToSlice()...)
}

func NewSetOf[E comparable](removed, inserted []E) Set[E] {
	return Set[E]{
		removed:  mapset.NewThreadUnsafeSet(removed...),
		inserted: mapset.NewThreadUnsafeSet(inserted...),
	}
}

func orEmpty[E comparable](s mapset.Set[E]) mapset.Set[E] {
	if s == nil {
		return mapset.NewThreadUnsafeSet[E]()
	}
	return s
}

// Removed must not be modified by the caller.
func (c Set[E]) Removed() mapset.Set[E] {
	return orEmpty(c.removed)
}

// Inserted must not be modified by the caller.
func (c Set[E]) Inserted() mapset.Set[E] {
	return orEmpty(c.inserted)
}

func (c Set[E]) IsEmpty() bool {
	return (c.removed == nil || c.removed.Cardinality() == 0) &&
		(c.inserted == nil || c.inserted.Cardinality() == 0)
}

// Merged returns the change equivalent to applying c and then next.
// Elements c inserted that next removes disappear from the inserted side.
func (c Set[E]) Merged(next Set[E]) Set[E] {
	return Set[E]{
		removed:  c.Removed().Union(next.Removed()),
		inserted: next.Inserted().Union(c.Inserted().Difference(next.Removed())),
	}
}

func (c Set[E]) Reversed() Set[E] {
	return Set[E]{removed: c.inserted, inserted: c.removed}
}

// RemovingEqualChanges drops elements that are both removed and inserted.
func (c Set[E]) RemovingEqualChanges() Set[E] {
	common := c.Removed().Intersect(c.Inserted())
	if common.Cardinality() == 0 {
		return c
	}
	return Set[E]{
		removed:  c.Removed().Difference(common),
		inserted: c.Inserted().Difference(common),
	}
}

// Apply edits target in place.
func (c Set[E]) Apply(target mapset.Set[E]) {
	c.Removed().Each(func(e E) bool {
		target.Remove(e)
		return false
	})
	c.Inserted().Each(func(e E) bool {
		target.Add(e)
		return false
	})
}

func (c Set[E]) String() string {
	return fmt.Sprintf("SetChange(removed: %v, inserted: %v)", c.Removed(), c.Inserted())
}

func MapSet[E, R comparable](c Set[E], fn func(E) R) Set[R] {
	mapped := func(s mapset.Set[E]) mapset.Set[R] {
		r := mapset.NewThreadUnsafeSet[R]()
		s.Each(func(e E) bool {
			r.Add(fn(e))
			return false
		})
		return r
	}
	return Set[R]{removed: mapped(c.Removed()), inserted: mapped(c.Inserted())}
}
