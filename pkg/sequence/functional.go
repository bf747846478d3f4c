package sequence

import "iter"

// Iterator is a lazy, chainable iterator over T.
type Iterator[T any] struct {
	seq iter.Seq[T]
}

// From creates an Iterator over a slice. The slice is read lazily, so it must
// not be mutated while the iterator is in use.
func From[T any](data []T) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for _, v := range data {
				if !yield(v) {
					return
				}
			}
		},
	}
}

// Seq returns the underlying sequence function.
func (i *Iterator[T]) Seq() iter.Seq[T] {
	return i.seq
}

// Pull converts the iterator into a pull-style next/stop pair.
func (i *Iterator[T]) Pull() (next func() (T, bool), stop func()) {
	return iter.Pull(i.seq)
}

// Collect exhausts the iterator into a new slice. The result is never nil.
func (i *Iterator[T]) Collect() []T {
	out := make([]T, 0)
	for v := range i.seq {
		out = append(out, v)
	}
	return out
}

// Filter keeps only elements satisfying pred.
func (i *Iterator[T]) Filter(pred func(T) bool) *Iterator[T] {
	return &Iterator[T]{
		seq: func(yield func(T) bool) {
			for v := range i.seq {
				if pred(v) && !yield(v) {
					return
				}
			}
		},
	}
}

// ForEach runs action on every element immediately.
func (i *Iterator[T]) ForEach(action func(T)) {
	for v := range i.seq {
		action(v)
	}
}

// Any reports whether some element satisfies pred.
func (i *Iterator[T]) Any(pred func(T) bool) bool {
	for v := range i.seq {
		if pred(v) {
			return true
		}
	}
	return false
}

// Count returns the number of elements.
func (i *Iterator[T]) Count() int {
	n := 0
	for range i.seq {
		n++
	}
	return n
}

// Map transforms each element with fn.
func Map[T, R any](i *Iterator[T], fn func(T) R) *Iterator[R] {
	return &Iterator[R]{
		seq: func(yield func(R) bool) {
			for v := range i.seq {
				if !yield(fn(v)) {
					return
				}
			}
		},
	}
}
