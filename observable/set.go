package observable

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/attaswift/GlueKit-sub000/signal"
	"github.com/attaswift/GlueKit-sub000/update"
)

// SetVariable is a mutable observable set.
type SetVariable[E comparable] struct {
	state    *update.State[change.Set[E]]
	elements mapset.Set[E]
}

func NewSetVariable[E comparable](elements []E, opts ...update.Option) *SetVariable[E] {
	return &SetVariable[E]{
		state:    update.NewState[change.Set[E]](nil, opts...),
		elements: mapset.NewThreadUnsafeSet(elements...),
	}
}

func (s *SetVariable[E]) Len() int {
	return s.elements.Cardinality()
}

func (s *SetVariable[E]) Contains(e E) bool {
	return s.elements.Contains(e)
}

// Value returns a copy of the current contents.
func (s *SetVariable[E]) Value() mapset.Set[E] {
	return s.elements.Clone()
}

// Apply applies c after dropping removals of absent elements and insertions
// of present ones.
func (s *SetVariable[E]) Apply(c change.Set[E]) {
	removed := c.Removed().Intersect(s.elements)
	inserted := c.Inserted().Difference(s.elements.Difference(removed))
	c = change.NewSet(removed, inserted).RemovingEqualChanges()
	if c.IsEmpty() {
		return
	}
	s.state.Begin()
	defer s.state.End()
	c.Apply(s.elements)
	s.state.Send(c)
}

func (s *SetVariable[E]) Insert(elements ...E) {
	s.Apply(change.NewSetOf(nil, elements))
}

func (s *SetVariable[E]) Delete(elements ...E) {
	s.Apply(change.NewSetOf(elements, nil))
}

func (s *SetVariable[E]) Batch(fn func()) {
	s.state.Batch(fn)
}

func (s *SetVariable[E]) Add(sink signal.Sink[update.Update[change.Set[E]]]) {
	s.state.Add(sink)
}

func (s *SetVariable[E]) Remove(sink signal.Sink[update.Update[change.Set[E]]]) {
	s.state.Remove(sink)
}
