// Package observable provides observable values, arrays and sets built on
// the transaction protocol, plus a few derived nodes that keep themselves
// up to date incrementally.
//
// Derived nodes subscribe to their upstreams only while they have sinks of
// their own. Nodes are safe for concurrent notification but not for
// concurrent mutation; callers serialize writes.
package observable

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/attaswift/GlueKit-sub000/signal"
	"github.com/attaswift/GlueKit-sub000/update"
)

type Value[T any] interface {
	signal.Source[update.Update[change.Value[T]]]
	Value() T
}

type Array[E any] interface {
	signal.Source[update.Update[change.Array[E]]]
	Len() int
	Value() []E
}

type Set[E comparable] interface {
	signal.Source[update.Update[change.Set[E]]]
	Value() mapset.Set[E]
}

// hooks adapts a pair of functions to signal.Delegate.
type hooks struct {
	activate   func()
	deactivate func()
}

func (h hooks) Activate() {
	h.activate()
}

func (h hooks) Deactivate() {
	h.deactivate()
}

type transactor interface {
	Begin()
	End()
}

// forward relays the envelope of an upstream transaction to target, handing
// changes to fn.
func forward[C any](u update.Update[C], target transactor, fn func(C)) {
	switch u.Kind {
	case update.KindBegin:
		target.Begin()
	case update.KindChange:
		fn(u.Change)
	case update.KindEnd:
		target.End()
	}
}
