package entry

import (
	"fmt"

	"github.com/signadot/spdb/cursor"
)

// Array is an indexed container owning its elements. It grows and shrinks
// at the tail only.
type Array interface {
	// Self returns the entry holding this array.
	Self() *Entry
	Size() int
	// Clear removes and releases all elements.
	Clear()
	// Resize grows the array with Empty elements or truncates it,
	// releasing the removed elements.
	Resize(n int)
	// PushBack appends an Empty element and returns it.
	PushBack() *Entry
	// PopBack removes the last element. It returns ErrOutOfRange on an
	// empty array.
	PopBack() error
	// At returns ErrOutOfRange unless 0 <= i < Size().
	At(i int) (*Entry, error)
	// Item returns a cursor over the single element at i.
	Item(i int) (cursor.Cursor[*Entry], error)
	Children() cursor.Cursor[*Entry]
}

// MemArray is the in-memory Array.
type MemArray struct {
	self  *Entry
	elems []*Entry
}

func NewArray(self *Entry) *MemArray {
	return &MemArray{self: self}
}

func (a *MemArray) Self() *Entry { return a.self }

func (a *MemArray) Bind(self *Entry) {
	a.self = self
	for _, c := range a.elems {
		c.parent = self
	}
}

func (a *MemArray) Size() int { return len(a.elems) }

func (a *MemArray) Clear() {
	a.Resize(0)
}

func (a *MemArray) Resize(n int) {
	n = max(n, 0)
	if n < len(a.elems) {
		for i := n; i < len(a.elems); i++ {
			Release(a.elems[i])
			a.elems[i] = nil
		}
		a.elems = a.elems[:n]
		return
	}
	for i := len(a.elems); i < n; i++ {
		a.elems = append(a.elems, NewElement(a.self, i))
	}
}

func (a *MemArray) PushBack() *Entry {
	c := NewElement(a.self, len(a.elems))
	a.elems = append(a.elems, c)
	return c
}

func (a *MemArray) PopBack() error {
	n := len(a.elems)
	if n == 0 {
		return fmt.Errorf("%w: pop on empty array", ErrOutOfRange)
	}
	a.Resize(n - 1)
	return nil
}

func (a *MemArray) At(i int) (*Entry, error) {
	if i < 0 || i >= len(a.elems) {
		return nil, fmt.Errorf("%w: index %d (size %d)", ErrOutOfRange, i, len(a.elems))
	}
	return a.elems[i], nil
}

func (a *MemArray) Item(i int) (cursor.Cursor[*Entry], error) {
	c, err := a.At(i)
	if err != nil {
		return nil, err
	}
	return cursor.Single(c), nil
}

func (a *MemArray) Children() cursor.Cursor[*Entry] {
	return func(yield func(*Entry) bool) {
		for i := 0; i < len(a.elems); i++ {
			if !yield(a.elems[i]) {
				return
			}
		}
	}
}
