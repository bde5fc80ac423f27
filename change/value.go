package change

import "fmt"

// Value is the change of a scalar observable from Old to New.
type Value[T any] struct {
	Old T
	New T
}

func NewValue[T any](old, new T) Value[T] {
	return Value[T]{Old: old, New: new}
}

// IsEmpty is always false; value changes are not compared.
func (c Value[T]) IsEmpty() bool {
	return false
}

func (c Value[T]) Merged(next Value[T]) Value[T] {
	return Value[T]{Old: c.Old, New: next.New}
}

func (c Value[T]) Reversed() Value[T] {
	return Value[T]{Old: c.New, New: c.Old}
}

func (c Value[T]) String() string {
	return fmt.Sprintf("ValueChange(%v → %v)", c.Old, c.New)
}

func MapValue[T, R any](c Value[T], fn func(T) R) Value[R] {
	return Value[R]{Old: fn(c.Old), New: fn(c.New)}
}
