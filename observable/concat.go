package observable

import (
	"slices"

	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/attaswift/GlueKit-sub000/signal"
	"github.com/attaswift/GlueKit-sub000/update"
)

// Concat is the concatenation of two observable arrays. Changes to the
// second array are widened by the current length of the first.
type Concat[E any] struct {
	first, second Array[E]

	state       *update.State[change.Array[E]]
	connector   signal.Connector
	firstCount  int
	secondCount int
}

func NewConcat[E any](first, second Array[E], opts ...update.Option) *Concat[E] {
	c := &Concat[E]{first: first, second: second}
	c.state = update.NewState[change.Array[E]](hooks{c.activate, c.deactivate}, opts...)
	return c
}

func (c *Concat[E]) Len() int {
	if c.state.IsConnected() {
		return c.firstCount + c.secondCount
	}
	return c.first.Len() + c.second.Len()
}

func (c *Concat[E]) Value() []E {
	return slices.Concat(c.first.Value(), c.second.Value())
}

func (c *Concat[E]) Add(sink signal.Sink[update.Update[change.Array[E]]]) {
	c.state.Add(sink)
}

func (c *Concat[E]) Remove(sink signal.Sink[update.Update[change.Array[E]]]) {
	c.state.Remove(sink)
}

func (c *Concat[E]) activate() {
	c.firstCount, c.secondCount = c.first.Len(), c.second.Len()
	c.connector.Keep(signal.Connect(c.first, c.applyFirst))
	c.connector.Keep(signal.Connect(c.second, c.applySecond))
}

func (c *Concat[E]) deactivate() {
	c.connector.Disconnect()
	c.firstCount, c.secondCount = 0, 0
}

func (c *Concat[E]) applyFirst(u update.Update[change.Array[E]]) {
	forward(u, c.state, func(ch change.Array[E]) {
		widened := ch.Widen(0, c.firstCount+c.secondCount)
		c.firstCount = ch.FinalCount()
		c.state.Send(widened)
	})
}

func (c *Concat[E]) applySecond(u update.Update[change.Array[E]]) {
	forward(u, c.state, func(ch change.Array[E]) {
		widened := ch.Widen(c.firstCount, c.firstCount+c.secondCount)
		c.secondCount = ch.FinalCount()
		c.state.Send(widened)
	})
}
