// Package update implements the transaction protocol layered on top of
// signal delivery.
//
// Every observable node reports its mutations as a begin/change/end
// envelope. Transactions nest: only the outermost begin and end reach the
// node's sinks, while the changes in between are forwarded as they happen.
package update

import "fmt"

type Kind int

const (
	KindBegin Kind = iota
	KindChange
	KindEnd
)

func (k Kind) String() string {
	switch k {
	case KindBegin:
		return "beginTransaction"
	case KindChange:
		return "change"
	case KindEnd:
		return "endTransaction"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Change is the constraint satisfied by every change type carried in an
// Update, such as change.Value, change.Array and change.Set.
type Change[C any] interface {
	IsEmpty() bool
	Merged(next C) C
	Reversed() C
}

// Update is one event of the transaction protocol. Change is only
// meaningful when Kind is KindChange.
type Update[C any] struct {
	Kind   Kind
	Change C
}

func Begin[C any]() Update[C] {
	return Update[C]{Kind: KindBegin}
}

func Delta[C any](c C) Update[C] {
	return Update[C]{Kind: KindChange, Change: c}
}

func End[C any]() Update[C] {
	return Update[C]{Kind: KindEnd}
}

func (u Update[C]) String() string {
	if u.Kind == KindChange {
		return fmt.Sprintf("change(%v)", u.Change)
	}
	return u.Kind.String()
}

// Map converts the change carried by u, leaving begin and end untouched.
func Map[C, R any](u Update[C], fn func(C) R) Update[R] {
	if u.Kind == KindChange {
		return Delta(fn(u.Change))
	}
	return Update[R]{Kind: u.Kind}
}
