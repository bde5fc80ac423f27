// Package reflist implements a B-tree backed sequence whose elements carry a
// link back to the node holding them, so an element's current index can be
// found in O(log n) without searching.
//
// A List is not safe for concurrent use.
package reflist

import (
	"fmt"
)

const DefaultOrder = 65

// Element is implemented by the values stored in a List. E is normally a
// pointer type whose pointee embeds a Link.
type Element[E any] interface {
	comparable
	RefListLink() *Link[E]
}

// Link is the back-pointer from an element to the node currently holding
// it. It does not own the node.
type Link[E any] struct {
	node *node[E]
}

// IsLinked reports whether the element is currently stored in a list.
func (l *Link[E]) IsLinked() bool {
	return l.node != nil
}

type Option func(*options)

type options struct {
	order int
}

// WithOrder sets the maximum number of children per node.
func WithOrder(order int) Option {
	return func(o *options) {
		o.order = order
	}
}

type List[E Element[E]] struct {
	order int
	root  *node[E]
}

func New[E Element[E]](opts ...Option) *List[E] {
	o := options{order: DefaultOrder}
	for _, opt := range opts {
		opt(&o)
	}
	if o.order < 3 {
		panic(fmt.Sprintf("reflist: order %d is too small", o.order))
	}
	return &List[E]{order: o.order, root: &node[E]{}}
}

func (l *List[E]) Len() int {
	return l.root.count
}

func (l *List[E]) maxElements() int {
	return l.order - 1
}

// minElements is the least number of elements a non-root node may hold:
// one less than ⌈order/2⌉ children.
func (l *List[E]) minElements() int {
	return (l.order+1)/2 - 1
}

func (l *List[E]) checkIndex(index, limit int) {
	if index < 0 || index >= limit {
		panic(fmt.Sprintf("reflist: index %d out of bounds [0, %d)", index, limit))
	}
}

func (l *List[E]) At(index int) E {
	l.checkIndex(index, l.Len())
	n, slot := l.root.locate(index)
	return n.elements[slot]
}

// Set replaces the element at index and returns the previous one, which is
// unlinked.
func (l *List[E]) Set(index int, e E) E {
	l.checkIndex(index, l.Len())
	n, slot := l.root.locate(index)
	old := n.elements[slot]
	if old == e {
		return old
	}
	mustBeUnlinked(e)
	old.RefListLink().node = nil
	n.elements[slot] = e
	setLink(e, n)
	return old
}

func mustBeUnlinked[E Element[E]](e E) {
	if e.RefListLink().node != nil {
		panic(fmt.Sprintf("reflist: element %v is already in a list", e))
	}
}

func setLink[E Element[E]](e E, n *node[E]) {
	e.RefListLink().node = n
}

func (l *List[E]) Insert(index int, e E) {
	l.checkIndex(index, l.Len()+1)
	mustBeUnlinked(e)
	l.insert(l.root, index, e)
	if len(l.root.elements) > l.maxElements() {
		left := l.root
		sep, right := l.split(left)
		l.root = &node[E]{
			elements: []E{sep},
			children: []*node[E]{left, right},
			count:    left.count + right.count + 1,
			depth:    left.depth + 1,
		}
		left.parent, right.parent = l.root, l.root
		setLink(sep, l.root)
	}
}

func (l *List[E]) Append(elements ...E) {
	for _, e := range elements {
		l.Insert(l.Len(), e)
	}
}

// Remove unlinks and returns the element at index.
func (l *List[E]) Remove(index int) E {
	l.checkIndex(index, l.Len())
	e := l.remove(l.root, index)
	e.RefListLink().node = nil
	if len(l.root.elements) == 0 && len(l.root.children) == 1 {
		l.root = l.root.children[0]
		l.root.parent = nil
	}
	return e
}

func (l *List[E]) RemoveAll() {
	l.root.each(func(e E) bool {
		e.RefListLink().node = nil
		return true
	})
	l.root = &node[E]{}
}

// IndexOf returns the current index of e, or -1 if e is not in this list.
func (l *List[E]) IndexOf(e E) int {
	n := e.RefListLink().node
	if n == nil {
		return -1
	}
	index := l.offsetOf(n, e)
	for n.parent != nil {
		p := n.parent
		index += p.offsetOfChild(n)
		n = p
	}
	if n != l.root {
		return -1
	}
	return index
}

func (l *List[E]) Contains(e E) bool {
	return l.IndexOf(e) >= 0
}

// ForEach calls fn for every element in order until fn returns false.
func (l *List[E]) ForEach(fn func(E) bool) {
	l.root.each(fn)
}

// All is a range-over-func iterator over the elements.
func (l *List[E]) All(yield func(int, E) bool) {
	i := 0
	l.root.each(func(e E) bool {
		ok := yield(i, e)
		i++
		return ok
	})
}

func (l *List[E]) Elements() []E {
	result := make([]E, 0, l.Len())
	l.root.each(func(e E) bool {
		result = append(result, e)
		return true
	})
	return result
}

// Depth is the number of levels below the root; zero for a single leaf.
func (l *List[E]) Depth() int {
	return l.root.depth
}
