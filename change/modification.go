// Package change holds the value types that describe an edit from one
// collection state to the next: array modifications and changes, set changes
// and scalar value changes. They are plain values with no synchronization.
package change

import (
	"fmt"
	"slices"
)

type ModificationKind uint8

const (
	KindInsert ModificationKind = iota
	KindRemove
	KindReplace
	KindReplaceSlice
)

func (k ModificationKind) String() string {
	switch k {
	case KindInsert:
		return "insert"
	case KindRemove:
		return "remove"
	case KindReplace:
		return "replace"
	case KindReplaceSlice:
		return "replaceSlice"
	default:
		return fmt.Sprintf("ModificationKind(%d)", uint8(k))
	}
}

// Range is a half-open span of array indices.
type Range struct {
	Lower, Upper int
}

func (r Range) Len() int {
	return r.Upper - r.Lower
}

func (r Range) String() string {
	return fmt.Sprintf("%d..<%d", r.Lower, r.Upper)
}

// Modification replaces a contiguous run of elements with another run.
// Every kind is stored in its replaceSlice form; the kind only records the
// shape of that form.
type Modification[E any] struct {
	kind        ModificationKind
	start       int
	oldElements []E
	newElements []E
}

// NewModification builds the modification replacing old at the given index
// with new, collapsing it to the narrowest kind. It reports false when both
// slices are empty.
func NewModification[E any](old []E, at int, new []E) (Modification[E], bool) {
	return collapse(slices.Clone(old), at, slices.Clone(new))
}

func collapse[E any](old []E, at int, new []E) (Modification[E], bool) {
	if at < 0 {
		panic(fmt.Sprintf("change: negative modification index %d", at))
	}
	m := Modification[E]{start: at, oldElements: old, newElements: new}
	switch {
	case len(old) == 0 && len(new) == 0:
		return Modification[E]{}, false
	case len(old) == 0 && len(new) == 1:
		m.kind = KindInsert
	case len(old) == 1 && len(new) == 0:
		m.kind = KindRemove
	case len(old) == 1 && len(new) == 1:
		m.kind = KindReplace
	default:
		m.kind = KindReplaceSlice
	}
	return m, true
}

func Insert[E any](e E, at int) Modification[E] {
	m, _ := collapse(nil, at, []E{e})
	return m
}

func Remove[E any](e E, at int) Modification[E] {
	m, _ := collapse([]E{e}, at, nil)
	return m
}

func Replace[E any](old E, at int, new E) Modification[E] {
	m, _ := collapse([]E{old}, at, []E{new})
	return m
}

// ReplaceSlice panics when both slices are empty.
func ReplaceSlice[E any](old []E, at int, new []E) Modification[E] {
	m, ok := NewModification(old, at, new)
	if !ok {
		panic("change: empty slice replacement")
	}
	return m
}

func (m Modification[E]) Kind() ModificationKind {
	return m.kind
}

func (m Modification[E]) StartIndex() int {
	return m.start
}

// OldElements must not be modified by the caller.
func (m Modification[E]) OldElements() []E {
	return m.oldElements
}

// NewElements must not be modified by the caller.
func (m Modification[E]) NewElements() []E {
	return m.newElements
}

func (m Modification[E]) IsEmpty() bool {
	return len(m.oldElements) == 0 && len(m.newElements) == 0
}

// InputRange is the span replaced in the array before the modification.
func (m Modification[E]) InputRange() Range {
	return Range{m.start, m.start + len(m.oldElements)}
}

// OutputRange is the span holding the new elements after the modification.
func (m Modification[E]) OutputRange() Range {
	return Range{m.start, m.start + len(m.newElements)}
}

func (m Modification[E]) DeltaCount() int {
	return len(m.newElements) - len(m.oldElements)
}

func (m Modification[E]) Shifted(delta int) Modification[E] {
	if m.start+delta < 0 {
		panic(fmt.Sprintf("change: shifting %v by %d moves it before the array start", m, delta))
	}
	m.start += delta
	return m
}

func (m Modification[E]) Reversed() Modification[E] {
	r, _ := collapse(m.newElements, m.start, m.oldElements)
	return r
}

// Apply returns a copy of elements with the modification applied.
func (m Modification[E]) Apply(elements []E) []E {
	if m.InputRange().Upper > len(elements) {
		panic(fmt.Sprintf("change: %v out of bounds for array of %d elements", m, len(elements)))
	}
	result := slices.Clone(elements)
	return slices.Replace(result, m.start, m.start+len(m.oldElements), m.newElements...)
}

func (m Modification[E]) String() string {
	switch m.kind {
	case KindInsert:
		return fmt.Sprintf("insert(%v, at: %d)", m.newElements[0], m.start)
	case KindRemove:
		return fmt.Sprintf("remove(%v, at: %d)", m.oldElements[0], m.start)
	case KindReplace:
		return fmt.Sprintf("replace(%v, at: %d, with: %v)", m.oldElements[0], m.start, m.newElements[0])
	default:
		return fmt.Sprintf("replaceSlice(%v, at: %d, with: %v)", m.oldElements, m.start, m.newElements)
	}
}

func MapModification[E, R any](m Modification[E], fn func(E) R) Modification[R] {
	r, _ := collapse(mapSlice(m.oldElements, fn), m.start, mapSlice(m.newElements, fn))
	return r
}

func mapSlice[E, R any](elements []E, fn func(E) R) []R {
	if len(elements) == 0 {
		return nil
	}
	result := make([]R, len(elements))
	for i, e := range elements {
		result[i] = fn(e)
	}
	return result
}

type MergeOutcome uint8

const (
	// DisjunctOrderedBefore means the later modification lies entirely before
	// the earlier one; the earlier one must be shifted by the later one's delta.
	DisjunctOrderedBefore MergeOutcome = iota
	// DisjunctOrderedAfter means the later modification lies entirely after
	// the earlier one's output.
	DisjunctOrderedAfter
	CollapsedToNoChange
	CollapsedTo
)

type MergeResult[E any] struct {
	Outcome MergeOutcome
	// Set only when Outcome is CollapsedTo.
	Modification Modification[E]
}

// Merged combines m with next, whose indices are relative to the array after
// m has been applied. Overlapping or touching modifications collapse into one
// expressed relative to the array before m.
func (m Modification[E]) Merged(next Modification[E]) MergeResult[E] {
	out := m.OutputRange()
	in := next.InputRange()
	if in.Upper < out.Lower {
		return MergeResult[E]{Outcome: DisjunctOrderedBefore}
	}
	if in.Lower > out.Upper {
		return MergeResult[E]{Outcome: DisjunctOrderedAfter}
	}

	// Elements of next's input outside m's output were never touched by m,
	// so they are part of the combined old run.
	var old []E
	if in.Lower < out.Lower {
		old = append(old, next.oldElements[:out.Lower-in.Lower]...)
	}
	old = append(old, m.oldElements...)
	if in.Upper > out.Upper {
		old = append(old, next.oldElements[out.Upper-in.Lower:]...)
	}

	// Elements of m's output outside next's input survive into the result.
	var new []E
	if in.Lower > out.Lower {
		new = append(new, m.newElements[:in.Lower-out.Lower]...)
	}
	new = append(new, next.newElements...)
	if in.Upper < out.Upper {
		new = append(new, m.newElements[in.Upper-out.Lower:]...)
	}

	merged, ok := collapse(old, min(in.Lower, out.Lower), new)
	if !ok {
		return MergeResult[E]{Outcome: CollapsedToNoChange}
	}
	return MergeResult[E]{Outcome: CollapsedTo, Modification: merged}
}
