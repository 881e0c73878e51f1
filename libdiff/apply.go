package libdiff

import (
	"fmt"
	"slices"

	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/entry/xpath"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

// Apply applies cs to the tree under root in order. References in
// inserted values which pointed into the diffed tree are re-pointed at
// the same paths under root once all changes are applied.
func Apply(root *entry.Entry, cs []Change) error {
	a := &applier{root: root, dmp: diffpatch.New()}
	for i := range cs {
		if err := a.apply(&cs[i]); err != nil {
			return fmt.Errorf("%w: %s at %q: %w", ErrConflict, cs[i].Op, cs[i].Path, err)
		}
	}
	for _, r := range a.refs {
		p, err := xpath.Parse(r.rel)
		if err != nil {
			return err
		}
		t, err := root.At(p)
		if err != nil {
			return fmt.Errorf("%w: reference at %q: %w", ErrConflict, r.e.Path(), err)
		}
		if err := r.e.SetReference(t); err != nil {
			return err
		}
	}
	return nil
}

type pendingRef struct {
	e   *entry.Entry
	rel string
}

type applier struct {
	root *entry.Entry
	dmp  *diffpatch.DiffMatchPatch
	refs []pendingRef
}

func (a *applier) apply(c *Change) error {
	switch c.Op {
	case Delete:
		return a.root.Erase(c.Path)
	case Insert:
		if c.Path.IsEmpty() {
			return a.install(a.root, c)
		}
		parent, err := a.root.At(c.Path.Parent())
		if err != nil {
			return err
		}
		last := c.Path.Last()
		if last.IsKey() {
			o, err := parent.AsObject()
			if err != nil {
				return err
			}
			if _, err := o.At(last.Key()); err == nil {
				return fmt.Errorf("%q exists", last.Key())
			}
			return a.install(o.Insert(last.Key()), c)
		}
		arr, err := parent.AsArray()
		if err != nil {
			return err
		}
		if last.Index() != arr.Size() {
			return fmt.Errorf("insert at %d into array of %d", last.Index(), arr.Size())
		}
		return a.install(arr.PushBack(), c)
	case Replace:
		dst, err := a.root.At(c.Path)
		if err != nil {
			return err
		}
		return a.install(dst, c)
	case Edit:
		dst, err := a.root.At(c.Path)
		if err != nil {
			return err
		}
		s, err := dst.GetScalar()
		if err != nil {
			return err
		}
		cur, err := s.AsStr()
		if err != nil {
			return err
		}
		if want := a.dmp.DiffText1(c.Text); cur != want {
			return fmt.Errorf("text is %q, diff expects %q", cur, want)
		}
		return dst.SetString(a.dmp.DiffText2(c.Text))
	}
	return fmt.Errorf("unknown op %d", int(c.Op))
}

// install replaces the content of dst by a copy of c.To. A container of
// the same kind is emptied and reused, so a backend object held by dst
// stays in place.
func (a *applier) install(dst *entry.Entry, c *Change) error {
	if c.To == nil {
		return fmt.Errorf("%s without a value", c.Op)
	}
	switch v := dst.Value().(type) {
	case entry.ObjectValue:
		if c.To.Kind() != entry.ObjectTag {
			dst.Clear()
			break
		}
		for ch := range v.Object.Children() {
			entry.Release(ch)
		}
		v.Object.Clear()
	case entry.ArrayValue:
		if c.To.Kind() != entry.ArrayTag {
			dst.Clear()
			break
		}
		for ch := range v.Array.Children() {
			entry.Release(ch)
		}
		v.Array.Clear()
	default:
		dst.Clear()
	}
	if err := dst.CopyFrom(c.To); err != nil {
		return err
	}
	root := a.root.Root()
	return dst.Visit(func(e *entry.Entry, isPost bool) (bool, error) {
		if isPost {
			return true, nil
		}
		ref, ok := e.Value().(entry.Reference)
		if !ok || ref.Target() == nil || ref.Target().Root() == root {
			return true, nil
		}
		rel := refPath(c.toRoot, ref.Target())
		if rel == "" || rel[0] == '/' {
			return true, nil
		}
		a.refs = append(a.refs, pendingRef{e: e, rel: rel})
		return true, nil
	})
}

// Reverse returns the changes undoing cs.
func Reverse(cs []Change) []Change {
	res := make([]Change, len(cs))
	for i := range cs {
		c := cs[i]
		c.From, c.To = c.To, c.From
		c.fromRoot, c.toRoot = c.toRoot, c.fromRoot
		switch c.Op {
		case Insert:
			c.Op = Delete
		case Delete:
			c.Op = Insert
		case Edit:
			c.Text = slices.Clone(c.Text)
			for j := range c.Text {
				switch c.Text[j].Type {
				case diffpatch.DiffInsert:
					c.Text[j].Type = diffpatch.DiffDelete
				case diffpatch.DiffDelete:
					c.Text[j].Type = diffpatch.DiffInsert
				}
			}
		}
		res[len(cs)-1-i] = c
	}
	return res
}
