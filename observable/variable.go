package observable

import (
	"slices"

	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/attaswift/GlueKit-sub000/signal"
	"github.com/attaswift/GlueKit-sub000/update"
)

// Variable is a mutable observable value.
type Variable[T any] struct {
	state *update.State[change.Value[T]]
	value T
}

func NewVariable[T any](initial T, opts ...update.Option) *Variable[T] {
	return &Variable[T]{
		state: update.NewState[change.Value[T]](nil, opts...),
		value: initial,
	}
}

func (v *Variable[T]) Value() T {
	return v.value
}

func (v *Variable[T]) Set(value T) {
	v.state.Begin()
	defer v.state.End()
	old := v.value
	v.value = value
	v.state.Send(change.NewValue(old, value))
}

func (v *Variable[T]) Update(fn func(T) T) {
	v.Set(fn(v.value))
}

// Batch runs fn in one transaction, so sinks see every Set made by fn
// inside a single begin/end pair.
func (v *Variable[T]) Batch(fn func()) {
	v.state.Batch(fn)
}

func (v *Variable[T]) Add(sink signal.Sink[update.Update[change.Value[T]]]) {
	v.state.Add(sink)
}

func (v *Variable[T]) Remove(sink signal.Sink[update.Update[change.Value[T]]]) {
	v.state.Remove(sink)
}

// ArrayVariable is a mutable observable array.
type ArrayVariable[E any] struct {
	state    *update.State[change.Array[E]]
	elements []E
}

func NewArrayVariable[E any](elements []E, opts ...update.Option) *ArrayVariable[E] {
	return &ArrayVariable[E]{
		state:    update.NewState[change.Array[E]](nil, opts...),
		elements: slices.Clone(elements),
	}
}

func (a *ArrayVariable[E]) Len() int {
	return len(a.elements)
}

func (a *ArrayVariable[E]) At(index int) E {
	return a.elements[index]
}

func (a *ArrayVariable[E]) Value() []E {
	return slices.Clone(a.elements)
}

// Apply applies c, whose initial count must match the current length.
func (a *ArrayVariable[E]) Apply(c change.Array[E]) {
	elements := c.Apply(a.elements)
	if c.IsEmpty() {
		return
	}
	a.state.Begin()
	defer a.state.End()
	a.elements = elements
	a.state.Send(c)
}

func (a *ArrayVariable[E]) Modify(m change.Modification[E]) {
	a.Apply(change.NewArray(len(a.elements), m))
}

func (a *ArrayVariable[E]) Append(elements ...E) {
	a.ReplaceRange(len(a.elements), len(a.elements), elements...)
}

func (a *ArrayVariable[E]) Insert(e E, at int) {
	a.Modify(change.Insert(e, at))
}

func (a *ArrayVariable[E]) RemoveAt(at int) E {
	old := a.elements[at]
	a.Modify(change.Remove(old, at))
	return old
}

// Replace sets the element at the given index and returns the previous one.
func (a *ArrayVariable[E]) Replace(at int, e E) E {
	old := a.elements[at]
	a.Modify(change.Replace(old, at, e))
	return old
}

// ReplaceRange replaces elements[start:end] with elements.
func (a *ArrayVariable[E]) ReplaceRange(start, end int, elements ...E) {
	m, ok := change.NewModification(a.elements[start:end], start, elements)
	if ok {
		a.Modify(m)
	}
}

func (a *ArrayVariable[E]) SetValue(elements []E) {
	a.ReplaceRange(0, len(a.elements), elements...)
}

func (a *ArrayVariable[E]) Batch(fn func()) {
	a.state.Batch(fn)
}

func (a *ArrayVariable[E]) Add(sink signal.Sink[update.Update[change.Array[E]]]) {
	a.state.Add(sink)
}

func (a *ArrayVariable[E]) Remove(sink signal.Sink[update.Update[change.Array[E]]]) {
	a.state.Remove(sink)
}
