package entry

import (
	"fmt"

	"github.com/signadot/spdb/debug"
	"github.com/signadot/spdb/entry/xpath"
)

// Insert walks p from e, promoting Empty entries to objects for key
// segments. Index segments must address existing elements: arrays are
// never grown by Insert.
func (e *Entry) Insert(p xpath.Path) (*Entry, error) {
	cur := e
	for i, seg := range p.Segments() {
		next, err := insertSeg(cur, seg)
		if err != nil {
			return nil, &PathError{Path: p, Index: i, Err: err}
		}
		cur = next
	}
	if debug.Path() {
		debug.Logf("insert %q from %q -> %s\n", p, e.Path(), cur)
	}
	return cur, nil
}

func insertSeg(e *Entry, seg xpath.Segment) (*Entry, error) {
	if seg.IsIndex() {
		if e.Type() == EmptyTag {
			return nil, fmt.Errorf("%w: index %d under empty entry", ErrOutOfRange, seg.Index())
		}
		a, err := e.AsArray()
		if err != nil {
			return nil, err
		}
		return a.At(seg.Index())
	}
	o, err := e.GetObject()
	if err != nil {
		// AsObject creates the object and notifies through references
		if o, err = e.AsObject(); err != nil {
			return nil, err
		}
		return o.Insert(seg.Key()), nil
	}
	c := o.Insert(seg.Key())
	if t, _ := e.Fetch(); t != e {
		e.Update()
	}
	return c, nil
}

// At walks p from e without modifying anything.
func (e *Entry) At(p xpath.Path) (*Entry, error) {
	cur := e
	for i, seg := range p.Segments() {
		next, err := atSeg(cur, seg)
		if err != nil {
			if debug.Path() {
				debug.Logf("at %q from %q: %v\n", p, e.Path(), err)
			}
			return nil, &PathError{Path: p, Index: i, Err: err}
		}
		cur = next
	}
	return cur, nil
}

func atSeg(e *Entry, seg xpath.Segment) (*Entry, error) {
	t, err := e.Fetch()
	if err != nil {
		return nil, err
	}
	switch v := t.Value().(type) {
	case ObjectValue:
		if seg.IsIndex() {
			return nil, mismatch(ArrayTag, ObjectTag)
		}
		return v.Object.At(seg.Key())
	case ArrayValue:
		if !seg.IsIndex() {
			return nil, mismatch(ObjectTag, ArrayTag)
		}
		return v.Array.At(seg.Index())
	case Empty:
		return nil, fmt.Errorf("%w: %s under empty entry", ErrNotFound, seg)
	default:
		if seg.IsIndex() {
			return nil, mismatch(ArrayTag, v.Tag())
		}
		return nil, mismatch(ObjectTag, v.Tag())
	}
}

// Erase removes the entry at p. An index segment may only name the last
// element of its array. Erasing the empty path clears e.
func (e *Entry) Erase(p xpath.Path) error {
	if p.IsEmpty() {
		e.Clear()
		return nil
	}
	parent, err := e.At(p.Parent())
	if err != nil {
		return err
	}
	last := p.Last()
	if err := eraseSeg(parent, last); err != nil {
		return &PathError{Path: p, Index: p.Len() - 1, Err: err}
	}
	if debug.Path() {
		debug.Logf("erase %q from %q\n", p, e.Path())
	}
	return nil
}

func eraseSeg(e *Entry, seg xpath.Segment) error {
	t, err := e.Fetch()
	if err != nil {
		return err
	}
	switch v := t.Value().(type) {
	case ObjectValue:
		if seg.IsIndex() {
			return mismatch(ArrayTag, ObjectTag)
		}
		if err := v.Object.Erase(seg.Key()); err != nil {
			return err
		}
	case ArrayValue:
		if !seg.IsIndex() {
			return mismatch(ObjectTag, ArrayTag)
		}
		n := v.Array.Size()
		if seg.Index() != n-1 {
			return fmt.Errorf("%w: can only erase the last element %d, not %d", ErrOutOfRange, n-1, seg.Index())
		}
		if err := v.Array.PopBack(); err != nil {
			return err
		}
	case Empty:
		return fmt.Errorf("%w: %s under empty entry", ErrNotFound, seg)
	default:
		if seg.IsIndex() {
			return mismatch(ArrayTag, v.Tag())
		}
		return mismatch(ObjectTag, v.Tag())
	}
	if t != e {
		e.Update()
	}
	return nil
}

// InsertPath parses p and calls Insert.
func (e *Entry) InsertPath(p string) (*Entry, error) {
	xp, err := xpath.Parse(p)
	if err != nil {
		return nil, err
	}
	return e.Insert(xp)
}

// AtPath parses p and calls At.
func (e *Entry) AtPath(p string) (*Entry, error) {
	xp, err := xpath.Parse(p)
	if err != nil {
		return nil, err
	}
	return e.At(xp)
}

// ErasePath parses p and calls Erase.
func (e *Entry) ErasePath(p string) error {
	xp, err := xpath.Parse(p)
	if err != nil {
		return err
	}
	return e.Erase(xp)
}
