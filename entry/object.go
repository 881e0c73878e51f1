package entry

import (
	"fmt"
	"maps"
	"slices"

	"github.com/signadot/spdb/cursor"
)

// Object is a keyed container owning its child entries. Backends provide
// their own implementations; MemObject is the default.
type Object interface {
	// Self returns the entry holding this object.
	Self() *Entry
	Size() int
	// Clear removes and releases all children.
	Clear()
	// Insert returns the child under key, creating an Empty child if
	// there is none. It never overwrites an existing child.
	Insert(key string) *Entry
	// At returns ErrNotFound if key is absent.
	At(key string) (*Entry, error)
	// Erase removes and releases the child under key. It returns
	// ErrNotFound if key is absent.
	Erase(key string) error
	Children() cursor.Cursor[*Entry]
	Items() cursor.Cursor[Item]
}

// Item is a key and the child stored under it.
type Item struct {
	Key   string
	Entry *Entry
}

// Binder is implemented by containers which can be moved to a new owning
// entry, see Entry.Replace.
type Binder interface {
	Bind(self *Entry)
}

// Refresher is implemented by containers keeping derived state which must
// be recomputed after a mutation made through a reference.
type Refresher interface {
	Refresh()
}

// MemObject is the in-memory Object. Iteration is in ascending key order.
type MemObject struct {
	self     *Entry
	children map[string]*Entry
}

func NewObject(self *Entry) *MemObject {
	return &MemObject{self: self, children: map[string]*Entry{}}
}

func (o *MemObject) Self() *Entry { return o.self }

func (o *MemObject) Bind(self *Entry) {
	o.self = self
	for _, c := range o.children {
		c.parent = self
	}
}

func (o *MemObject) Size() int { return len(o.children) }

func (o *MemObject) Clear() {
	for _, c := range o.children {
		Release(c)
	}
	o.children = map[string]*Entry{}
}

func (o *MemObject) Insert(key string) *Entry {
	if c, ok := o.children[key]; ok {
		return c
	}
	c := NewChild(o.self, key)
	o.children[key] = c
	return c
}

func (o *MemObject) At(key string) (*Entry, error) {
	c, ok := o.children[key]
	if !ok {
		return nil, fmt.Errorf("%w: key %q", ErrNotFound, key)
	}
	return c, nil
}

func (o *MemObject) Erase(key string) error {
	c, ok := o.children[key]
	if !ok {
		return fmt.Errorf("%w: key %q", ErrNotFound, key)
	}
	delete(o.children, key)
	Release(c)
	return nil
}

// Keys returns the keys in iteration order.
func (o *MemObject) Keys() []string {
	return slices.Sorted(maps.Keys(o.children))
}

func (o *MemObject) Children() cursor.Cursor[*Entry] {
	return cursor.Map(o.Items(), func(it Item) *Entry { return it.Entry })
}

func (o *MemObject) Items() cursor.Cursor[Item] {
	return func(yield func(Item) bool) {
		for _, k := range o.Keys() {
			c, ok := o.children[k]
			if !ok {
				continue
			}
			if !yield(Item{Key: k, Entry: c}) {
				return
			}
		}
	}
}
