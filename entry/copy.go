package entry

import (
	"errors"
	"fmt"
)

// Copy returns a deep copy of e as a new root backed by in-memory
// containers. References whose targets lie inside e are re-pointed at the
// corresponding copies; references leaving e keep their targets.
func (e *Entry) Copy() *Entry {
	res := New()
	// only kind mismatches fail and a fresh root has none
	_ = res.CopyFrom(e)
	return res
}

// CopyFrom deep copies the content of src into e, the way Copy does.
// Containers already held by e are reused, so a backend object installed
// on e receives src's children.
func (e *Entry) CopyFrom(src *Entry) error {
	mapped := map[*Entry]*Entry{}
	var refs []*Entry
	if err := copyInto(e, src, mapped, &refs); err != nil {
		return err
	}
	for _, r := range refs {
		ref := r.value.(Reference)
		if to, ok := mapped[ref.target]; ok {
			r.value = Reference{target: to}
		}
	}
	return nil
}

func copyInto(dst, src *Entry, mapped map[*Entry]*Entry, refs *[]*Entry) error {
	mapped[src] = dst
	switch v := src.Value().(type) {
	case Empty:
		return nil
	case Reference:
		if k := dst.Kind(); k != EmptyTag && k != ReferenceTag {
			return mismatch(ReferenceTag, k)
		}
		dst.value = v
		*refs = append(*refs, dst)
		return nil
	case *Block:
		// blocks edited in place through AsBlock are copied as they stand
		return dst.setBlock(v.Clone())
	case Scalar:
		return dst.SetScalar(v)
	case ExtensionValue:
		return dst.SetExtension(v.Extension)
	case ObjectValue:
		o, err := dst.AsObject()
		if err != nil {
			return err
		}
		for it := range v.Object.Items() {
			if err := copyInto(o.Insert(it.Key), it.Entry, mapped, refs); err != nil {
				return err
			}
		}
		return nil
	case ArrayValue:
		a, err := dst.AsArray()
		if err != nil {
			return err
		}
		for c := range v.Array.Children() {
			if err := copyInto(a.PushBack(), c, mapped, refs); err != nil {
				return err
			}
		}
		return nil
	default:
		panic("impossible value")
	}
}

var ErrReplaceCycle = errors.New("replace between ancestor and descendant")

// Replace moves the value of src into e, releasing what e held before.
// src is left Empty. Containers which are not bound to e must implement
// Binder so their children can be re-parented.
func (e *Entry) Replace(src *Entry) error {
	if src == e {
		return nil
	}
	if isAncestor(src, e) || isAncestor(e, src) {
		return fmt.Errorf("%w: %q and %q", ErrReplaceCycle, e.Path(), src.Path())
	}
	v := src.Value()
	switch x := v.(type) {
	case ObjectValue:
		b, ok := x.Object.(Binder)
		if !ok {
			return fmt.Errorf("%w: object at %q cannot be moved", ErrTypeMismatch, src.Path())
		}
		e.Clear()
		b.Bind(e)
	case ArrayValue:
		b, ok := x.Array.(Binder)
		if !ok {
			return fmt.Errorf("%w: array at %q cannot be moved", ErrTypeMismatch, src.Path())
		}
		e.Clear()
		b.Bind(e)
	default:
		e.Clear()
	}
	e.value = v
	src.value = Empty{}
	return nil
}

// isAncestor reports whether a is a proper ancestor of b.
func isAncestor(a, b *Entry) bool {
	for p := b.parent; p != nil; p = p.parent {
		if p == a {
			return true
		}
	}
	return false
}
