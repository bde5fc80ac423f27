package observable

import (
	"github.com/attaswift/GlueKit-sub000/change"
	"github.com/attaswift/GlueKit-sub000/signal"
	"github.com/attaswift/GlueKit-sub000/update"
)

// Combine derives a value from two observable values. When both upstreams
// change within overlapping transactions, sinks receive a single merged
// change.
type Combine[A, B, R any] struct {
	a  Value[A]
	b  Value[B]
	fn func(A, B) R

	merger    *update.Merger[change.Value[R]]
	connector signal.Connector
	left      A
	right     B
}

func NewCombine[A, B, R any](a Value[A], b Value[B], fn func(A, B) R, opts ...update.Option) *Combine[A, B, R] {
	c := &Combine[A, B, R]{a: a, b: b, fn: fn}
	c.merger = update.NewMerger[change.Value[R]](hooks{c.activate, c.deactivate}, opts...)
	return c
}

func (c *Combine[A, B, R]) Value() R {
	if c.merger.IsConnected() {
		return c.fn(c.left, c.right)
	}
	return c.fn(c.a.Value(), c.b.Value())
}

func (c *Combine[A, B, R]) Add(sink signal.Sink[update.Update[change.Value[R]]]) {
	c.merger.Add(sink)
}

func (c *Combine[A, B, R]) Remove(sink signal.Sink[update.Update[change.Value[R]]]) {
	c.merger.Remove(sink)
}

func (c *Combine[A, B, R]) activate() {
	c.left, c.right = c.a.Value(), c.b.Value()
	c.connector.Keep(signal.Connect(c.a, c.applyLeft))
	c.connector.Keep(signal.Connect(c.b, c.applyRight))
}

func (c *Combine[A, B, R]) deactivate() {
	c.connector.Disconnect()
	var left A
	var right B
	c.left, c.right = left, right
}

func (c *Combine[A, B, R]) applyLeft(u update.Update[change.Value[A]]) {
	forward(u, c.merger, func(ch change.Value[A]) {
		old := c.fn(c.left, c.right)
		c.left = ch.New
		c.merger.Send(change.NewValue(old, c.fn(c.left, c.right)))
	})
}

func (c *Combine[A, B, R]) applyRight(u update.Update[change.Value[B]]) {
	forward(u, c.merger, func(ch change.Value[B]) {
		old := c.fn(c.left, c.right)
		c.right = ch.New
		c.merger.Send(change.NewValue(old, c.fn(c.left, c.right)))
	})
}
