package reflist

import "fmt"

// Validate checks the structural invariants of l and returns the first
// violation found.
func (l *List[E]) Validate() error {
	if l.root.parent != nil {
		return fmt.Errorf("root has a parent")
	}
	return l.validate(l.root, true, l.root.depth)
}

func (l *List[E]) validate(n *node[E], isRoot bool, depth int) error {
	if n.depth != depth {
		return fmt.Errorf("node depth %d, expected %d", n.depth, depth)
	}
	if len(n.elements) > l.maxElements() {
		return fmt.Errorf("node holds %d elements, max %d", len(n.elements), l.maxElements())
	}
	if !isRoot && len(n.elements) < l.minElements() {
		return fmt.Errorf("node holds %d elements, min %d", len(n.elements), l.minElements())
	}
	for _, e := range n.elements {
		if e.RefListLink().node != n {
			return fmt.Errorf("element %v links to the wrong node", e)
		}
	}
	count := len(n.elements)
	if n.isLeaf() {
		if depth != 0 {
			return fmt.Errorf("leaf at depth %d", depth)
		}
	} else {
		if len(n.children) != len(n.elements)+1 {
			return fmt.Errorf("%d children for %d elements", len(n.children), len(n.elements))
		}
		for _, c := range n.children {
			if c.parent != n {
				return fmt.Errorf("child has the wrong parent")
			}
			if err := l.validate(c, false, depth-1); err != nil {
				return err
			}
			count += c.count
		}
	}
	if count != n.count {
		return fmt.Errorf("node count %d, expected %d", n.count, count)
	}
	return nil
}
