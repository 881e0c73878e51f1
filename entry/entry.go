package entry

import (
	"errors"
	"fmt"

	"github.com/signadot/spdb/debug"
	"github.com/signadot/spdb/entry/xpath"
)

// MaxReferenceHops bounds reference resolution. A chain longer than this
// is reported as ErrCyclicReference.
const MaxReferenceHops = 32

// Entry is a handle to one node of a tree. The zero value is an Empty
// root entry.
//
// An entry owns the children of its Object or Array value. The parent
// pointer is informational: it is used for Path, Depth and Root and never
// for ownership.
type Entry struct {
	value    Value
	parent   *Entry
	key      string
	index    int
	released bool
}

// New returns an Empty root entry.
func New() *Entry {
	return &Entry{index: -1}
}

// NewChild returns an Empty entry which will be stored under key in an
// object held by parent. Object implementations use it to create
// children.
func NewChild(parent *Entry, key string) *Entry {
	return &Entry{parent: parent, key: key, index: -1}
}

// NewElement returns an Empty entry which will be stored at index i in an
// array held by parent.
func NewElement(parent *Entry, i int) *Entry {
	return &Entry{parent: parent, index: i}
}

// Release marks e and everything it owns as removed from its tree.
// References to released entries resolve to ErrNotFound. Containers call
// Release on the children they erase.
func Release(e *Entry) {
	if e == nil {
		return
	}
	_ = e.Visit(func(n *Entry, isPost bool) (bool, error) {
		if !isPost {
			n.released = true
		}
		return true, nil
	})
}

// Released reports whether e was removed from its tree.
func (e *Entry) Released() bool { return e.released }

// Value returns the entry's own value without resolving references.
func (e *Entry) Value() Value {
	if e.value == nil {
		return Empty{}
	}
	return e.value
}

// Kind returns the tag of the entry's own value. Unlike Type it does not
// resolve references.
func (e *Entry) Kind() Tag {
	return e.Value().Tag()
}

// Type returns the tag of the value e resolves to. It returns ReferenceTag
// only when e is a reference which cannot be resolved.
func (e *Entry) Type() Tag {
	t, err := e.Fetch()
	if err != nil {
		return ReferenceTag
	}
	return t.Kind()
}

// Fetch resolves references. A concrete entry fetches to itself.
func (e *Entry) Fetch() (*Entry, error) {
	cur := e
	for hops := 0; ; hops++ {
		ref, ok := cur.value.(Reference)
		if !ok {
			return cur, nil
		}
		if hops == MaxReferenceHops {
			return nil, fmt.Errorf("%w: more than %d hops from %q", ErrCyclicReference, MaxReferenceHops, e.Path())
		}
		next := ref.target
		if next == nil || next.released {
			return nil, fmt.Errorf("%w: dangling reference at %q", ErrNotFound, cur.Path())
		}
		if debug.Resolve() {
			debug.Logf("resolve %q hop %d -> %q\n", cur.Path(), hops, next.Path())
		}
		cur = next
	}
}

// Update notifies the resolved target of e that it was changed through e.
// For a concrete entry it lets a container implementing Refresher
// recompute its derived state.
func (e *Entry) Update() {
	switch v := e.Value().(type) {
	case Reference:
		t, err := e.Fetch()
		if err != nil {
			if debug.Resolve() {
				debug.Logf("update %q: %v\n", e.Path(), err)
			}
			return
		}
		t.Update()
	case ObjectValue:
		if r, ok := v.Object.(Refresher); ok {
			r.Refresh()
		}
	case ArrayValue:
		if r, ok := v.Array.(Refresher); ok {
			r.Refresh()
		}
	}
}

// mutate applies f to the resolved target of e and then, if e is a
// reference, calls e.Update.
func (e *Entry) mutate(f func(t *Entry) error) error {
	t, err := e.Fetch()
	if err != nil {
		return err
	}
	if err := f(t); err != nil {
		return err
	}
	if t != e {
		e.Update()
	}
	return nil
}

// Clear resets e to Empty, releasing what it owned. On a reference this
// drops the reference itself and leaves the target alone.
func (e *Entry) Clear() {
	switch v := e.Value().(type) {
	case ObjectValue:
		for c := range v.Object.Children() {
			Release(c)
		}
		v.Object.Clear()
	case ArrayValue:
		for c := range v.Array.Children() {
			Release(c)
		}
		v.Array.Clear()
	}
	e.value = Empty{}
}

// Parent returns the entry whose container holds e, or nil for a root.
func (e *Entry) Parent() *Entry { return e.parent }

func (e *Entry) IsRoot() bool { return e.parent == nil }

func (e *Entry) Root() *Entry {
	res := e
	for res.parent != nil {
		res = res.parent
	}
	return res
}

// Depth returns the number of ancestors of e.
func (e *Entry) Depth() int {
	n := 0
	for p := e.parent; p != nil; p = p.parent {
		n++
	}
	return n
}

// IsLeaf reports whether e resolves to a value without children.
func (e *Entry) IsLeaf() bool {
	return e.Type().IsLeaf()
}

// Path returns the path from the root of e's tree to e.
func (e *Entry) Path() xpath.Path {
	var rev []xpath.Segment
	for n := e; n.parent != nil; n = n.parent {
		if n.index >= 0 {
			rev = append(rev, xpath.Index(n.index))
		} else {
			rev = append(rev, xpath.Key(n.key))
		}
	}
	segs := make([]xpath.Segment, len(rev))
	for i, s := range rev {
		segs[len(rev)-1-i] = s
	}
	return xpath.New(segs...)
}

func (e *Entry) String() string {
	switch v := e.Value().(type) {
	case Empty:
		return "Empty"
	case Reference:
		if v.target == nil {
			return "Reference(nil)"
		}
		return fmt.Sprintf("Reference(%q)", v.target.Path())
	case *Block:
		return fmt.Sprintf("Block(%s%v)", v.DType, v.Shape)
	case ObjectValue:
		return fmt.Sprintf("Object(%d)", v.Object.Size())
	case ArrayValue:
		return fmt.Sprintf("Array(%d)", v.Array.Size())
	case Scalar:
		return fmt.Sprintf("Scalar(%s %s)", v.Kind(), v)
	case ExtensionValue:
		return fmt.Sprintf("Extension(%s)", v.Extension.ExtensionType())
	default:
		panic("impossible value")
	}
}

var errNilTarget = errors.New("nil reference target")

// SetReference makes e an alias of target. It is allowed on Empty
// entries and re-points existing references.
func (e *Entry) SetReference(target *Entry) error {
	if target == nil {
		return errNilTarget
	}
	switch k := e.Kind(); k {
	case EmptyTag, ReferenceTag:
		e.value = Reference{target: target}
		return nil
	default:
		return mismatch(ReferenceTag, k)
	}
}
