package cursor

import "iter"

// Cursor is a lazy forward sequence. Ranging over a Cursor restarts the
// underlying production from the beginning, so a Cursor value may be
// reused as long as the container it was produced from has not changed.
type Cursor[T any] func(yield func(T) bool)

// Seq returns c as an iter.Seq.
func (c Cursor[T]) Seq() iter.Seq[T] {
	if c == nil {
		return func(func(T) bool) {}
	}
	return iter.Seq[T](c)
}

// Empty returns a cursor which yields nothing.
func Empty[T any]() Cursor[T] {
	return func(func(T) bool) {}
}

// FromSeq wraps a standard library iterator.
func FromSeq[T any](seq iter.Seq[T]) Cursor[T] {
	if seq == nil {
		return Empty[T]()
	}
	return Cursor[T](seq)
}

// FromSlice yields the elements of vs in order. The slice is not copied.
func FromSlice[T any](vs []T) Cursor[T] {
	return func(yield func(T) bool) {
		for _, v := range vs {
			if !yield(v) {
				return
			}
		}
	}
}

// Single yields exactly v.
func Single[T any](v T) Cursor[T] {
	return func(yield func(T) bool) {
		yield(v)
	}
}

// Map projects each element of c through f.
func Map[T, U any](c Cursor[T], f func(T) U) Cursor[U] {
	return func(yield func(U) bool) {
		for v := range c.Seq() {
			if !yield(f(v)) {
				return
			}
		}
	}
}

// Filter yields the elements of c for which keep returns true.
func Filter[T any](c Cursor[T], keep func(T) bool) Cursor[T] {
	return func(yield func(T) bool) {
		for v := range c.Seq() {
			if !keep(v) {
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Concat yields the elements of each cursor in turn.
func Concat[T any](cs ...Cursor[T]) Cursor[T] {
	return func(yield func(T) bool) {
		for _, c := range cs {
			for v := range c.Seq() {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// Take yields at most n elements of c.
func Take[T any](c Cursor[T], n int) Cursor[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		i := 0
		for v := range c.Seq() {
			if !yield(v) {
				return
			}
			i++
			if i == n {
				return
			}
		}
	}
}

// Collect drains c into a slice.
func Collect[T any](c Cursor[T]) []T {
	var res []T
	for v := range c.Seq() {
		res = append(res, v)
	}
	return res
}

// Count drains c and returns the number of elements.
func Count[T any](c Cursor[T]) int {
	n := 0
	for range c.Seq() {
		n++
	}
	return n
}

// First returns the first element of c, if any.
func First[T any](c Cursor[T]) (T, bool) {
	for v := range c.Seq() {
		return v, true
	}
	var zero T
	return zero, false
}
