package reflist

import (
	"fmt"
	"slices"
)

// node is a B-tree node. Internal nodes interleave children and elements:
// children[i] holds everything before elements[i].
type node[E any] struct {
	parent   *node[E]
	elements []E
	children []*node[E]
	count    int
	depth    int
}

func (n *node[E]) isLeaf() bool {
	return len(n.children) == 0
}

// find maps an index within n's subtree to a slot of n. If hit is true the
// index names elements[slot]; otherwise it falls at offset inside
// children[slot]. When inserting, an index equal to a child's count stays in
// that child. The scan starts from whichever end of the node is nearer.
func (n *node[E]) find(index int, inserting bool) (slot, offset int, hit bool) {
	if index < n.count/2 {
		for i := range n.elements {
			c := n.children[i].count
			if index < c || (inserting && index == c) {
				return i, index, false
			}
			if index == c {
				return i, 0, true
			}
			index -= c + 1
		}
		return len(n.elements), index, false
	}
	r := n.count - index
	for i := len(n.elements); i > 0; i-- {
		c := n.children[i].count
		if r <= c {
			return i, c - r, false
		}
		r -= c
		if r == 1 {
			if inserting {
				return i - 1, n.children[i-1].count, false
			}
			return i - 1, 0, true
		}
		r--
	}
	return 0, n.children[0].count - r, false
}

func (n *node[E]) locate(index int) (*node[E], int) {
	for !n.isLeaf() {
		slot, offset, hit := n.find(index, false)
		if hit {
			return n, slot
		}
		n, index = n.children[slot], offset
	}
	return n, index
}

// offsetOfChild is the number of elements in n's subtree preceding child.
func (n *node[E]) offsetOfChild(child *node[E]) int {
	offset := 0
	for i, c := range n.children {
		if c == child {
			return offset + i
		}
		offset += c.count
	}
	panic("reflist: node is not a child of its parent")
}

func (n *node[E]) each(fn func(E) bool) bool {
	for i, e := range n.elements {
		if !n.isLeaf() && !n.children[i].each(fn) {
			return false
		}
		if !fn(e) {
			return false
		}
	}
	if !n.isLeaf() {
		return n.children[len(n.elements)].each(fn)
	}
	return true
}

func (l *List[E]) offsetOf(n *node[E], e E) int {
	slot := slices.Index(n.elements, e)
	if slot < 0 {
		panic(fmt.Sprintf("reflist: element %v is not in its linked node", e))
	}
	offset := slot
	if !n.isLeaf() {
		for _, c := range n.children[:slot+1] {
			offset += c.count
		}
	}
	return offset
}

func (l *List[E]) insert(n *node[E], index int, e E) {
	if n.isLeaf() {
		n.elements = slices.Insert(n.elements, index, e)
		n.count++
		setLink(e, n)
		return
	}
	slot, offset, _ := n.find(index, true)
	n.count++
	child := n.children[slot]
	l.insert(child, offset, e)
	if len(child.elements) > l.maxElements() {
		sep, right := l.split(child)
		n.elements = slices.Insert(n.elements, slot, sep)
		n.children = slices.Insert(n.children, slot+1, right)
		right.parent = n
		setLink(sep, n)
	}
}

// split moves the upper half of n into a new sibling and returns the
// separator element that must be promoted to the parent.
func (l *List[E]) split(n *node[E]) (E, *node[E]) {
	mid := len(n.elements) / 2
	sep := n.elements[mid]
	right := &node[E]{
		elements: slices.Clone(n.elements[mid+1:]),
		depth:    n.depth,
	}
	clear(n.elements[mid:])
	n.elements = n.elements[:mid]
	right.count = len(right.elements)
	if !n.isLeaf() {
		right.children = slices.Clone(n.children[mid+1:])
		clear(n.children[mid+1:])
		n.children = n.children[:mid+1]
		for _, c := range right.children {
			c.parent = right
			right.count += c.count
		}
	}
	for _, e := range right.elements {
		setLink(e, right)
	}
	n.count -= right.count + 1
	return sep, right
}

func (l *List[E]) remove(n *node[E], index int) E {
	if n.isLeaf() {
		e := n.elements[index]
		n.elements = slices.Delete(n.elements, index, index+1)
		n.count--
		return e
	}
	slot, offset, hit := n.find(index, false)
	n.count--
	var e E
	if hit {
		// Replace the removed separator with its predecessor.
		e = n.elements[slot]
		child := n.children[slot]
		pred := l.remove(child, child.count-1)
		n.elements[slot] = pred
		setLink(pred, n)
	} else {
		e = l.remove(n.children[slot], offset)
	}
	l.fixDeficiency(n, slot)
	return e
}

// fixDeficiency restores the minimum size of n.children[slot] by rotating
// from the left sibling, rotating from the right sibling, or collapsing
// with a neighbour, in that order of preference.
func (l *List[E]) fixDeficiency(n *node[E], slot int) {
	child := n.children[slot]
	if len(child.elements) >= l.minElements() {
		return
	}
	switch {
	case slot > 0 && len(n.children[slot-1].elements) > l.minElements():
		l.rotateRight(n, slot-1)
	case slot < len(n.elements) && len(n.children[slot+1].elements) > l.minElements():
		l.rotateLeft(n, slot)
	case slot > 0:
		l.collapse(n, slot-1)
	default:
		l.collapse(n, slot)
	}
}

// rotateRight moves the separator elements[slot] down into the front of
// children[slot+1] and the last element of children[slot] up in its place.
func (l *List[E]) rotateRight(n *node[E], slot int) {
	left, right := n.children[slot], n.children[slot+1]
	last := len(left.elements) - 1

	right.elements = slices.Insert(right.elements, 0, n.elements[slot])
	setLink(n.elements[slot], right)
	n.elements[slot] = left.elements[last]
	setLink(n.elements[slot], n)
	left.elements = slices.Delete(left.elements, last, last+1)

	moved := 1
	if !left.isLeaf() {
		c := left.children[last+1]
		left.children = slices.Delete(left.children, last+1, last+2)
		right.children = slices.Insert(right.children, 0, c)
		c.parent = right
		moved += c.count
	}
	left.count -= moved
	right.count += moved
}

// rotateLeft moves the separator elements[slot] down onto the end of
// children[slot] and the first element of children[slot+1] up in its place.
func (l *List[E]) rotateLeft(n *node[E], slot int) {
	left, right := n.children[slot], n.children[slot+1]

	left.elements = append(left.elements, n.elements[slot])
	setLink(n.elements[slot], left)
	n.elements[slot] = right.elements[0]
	setLink(n.elements[slot], n)
	right.elements = slices.Delete(right.elements, 0, 1)

	moved := 1
	if !right.isLeaf() {
		c := right.children[0]
		right.children = slices.Delete(right.children, 0, 1)
		left.children = append(left.children, c)
		c.parent = left
		moved += c.count
	}
	left.count += moved
	right.count -= moved
}

// collapse merges children[slot], elements[slot] and children[slot+1] into
// children[slot].
func (l *List[E]) collapse(n *node[E], slot int) {
	left, right := n.children[slot], n.children[slot+1]
	sep := n.elements[slot]

	left.elements = append(left.elements, sep)
	left.elements = append(left.elements, right.elements...)
	setLink(sep, left)
	for _, e := range right.elements {
		setLink(e, left)
	}
	for _, c := range right.children {
		c.parent = left
	}
	left.children = append(left.children, right.children...)
	left.count += right.count + 1

	n.elements = slices.Delete(n.elements, slot, slot+1)
	n.children = slices.Delete(n.children, slot+1, slot+2)
}
