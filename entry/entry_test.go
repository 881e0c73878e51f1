package entry

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/signadot/spdb/cursor"
	"github.com/signadot/spdb/entry/xpath"
)

func mustInsert(t *testing.T, e *Entry, p string) *Entry {
	t.Helper()
	res, err := e.InsertPath(p)
	if err != nil {
		t.Fatalf("insert %q: %v", p, err)
	}
	return res
}

func TestInsertAtIdentity(t *testing.T) {
	root := New()
	arr := mustInsert(t, root, "arr")
	a, err := arr.AsArray()
	if err != nil {
		t.Fatal(err)
	}
	a.Resize(3)

	paths := []string{
		"a",
		"a/b/c",
		"'0'/x",
		"arr[1]/k",
		"arr[2]",
		"arr/0/z",
		"'a/b'/c",
		"x/@units",
	}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			ins := mustInsert(t, root, p)
			got, err := root.AtPath(p)
			if err != nil {
				t.Fatalf("at %q: %v", p, err)
			}
			if got != ins {
				t.Errorf("at %q returned %s, not the inserted node", p, got)
			}
			if !ins.Path().Equal(xpath.MustParse(p)) {
				t.Errorf("path of %q is %q", p, ins.Path())
			}
		})
	}
}

func TestABScenario(t *testing.T) {
	root := New()
	a := mustInsert(t, root, "a")
	o, err := a.AsObject()
	if err != nil {
		t.Fatal(err)
	}
	b := o.Insert("b")

	a2, err := root.AtPath("a")
	if err != nil {
		t.Fatal(err)
	}
	b2, err := a2.AtPath("b")
	if err != nil {
		t.Fatal(err)
	}
	b3 := mustInsert(t, root, "a/b")
	if b2 != b || b3 != b {
		t.Errorf("a/b reached three different nodes")
	}
	if b.Depth() != 2 || b.Root() != root || b.Parent() != a {
		t.Errorf("bad ancestry for %q", b.Path())
	}
}

func TestObjectSizeErase(t *testing.T) {
	for _, n := range []int{1, 2, 10, 50} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			o := NewObject(New())
			for i := range n {
				o.Insert(fmt.Sprintf("k%d", i))
				o.Insert(fmt.Sprintf("k%d", i))
			}
			if o.Size() != n {
				t.Fatalf("size %d, want %d", o.Size(), n)
			}
			if err := o.Erase("k0"); err != nil {
				t.Fatal(err)
			}
			if o.Size() != n-1 {
				t.Errorf("size after erase %d, want %d", o.Size(), n-1)
			}
			if _, err := o.At("k0"); !errors.Is(err, ErrNotFound) {
				t.Errorf("at erased key: %v", err)
			}
			if err := o.Erase("k0"); !errors.Is(err, ErrNotFound) {
				t.Errorf("second erase: %v", err)
			}
		})
	}
}

func TestObjectInsertKeepsContent(t *testing.T) {
	o := NewObject(New())
	if err := o.Insert("x").SetInt(3); err != nil {
		t.Fatal(err)
	}
	s, err := o.Insert("x").GetScalar()
	if err != nil {
		t.Fatal(err)
	}
	if s != Int(3) {
		t.Errorf("got %s", s)
	}
}

func TestObjectItemsSorted(t *testing.T) {
	o := NewObject(New())
	for _, k := range []string{"c", "a", "b"} {
		o.Insert(k)
	}
	keys := cursor.Collect(cursor.Map(o.Items(), func(it Item) string { return it.Key }))
	if diff := cmp.Diff([]string{"a", "b", "c"}, keys); diff != "" {
		t.Errorf("keys (-want +got):\n%s", diff)
	}
	// cursors restart
	if cursor.Count(o.Children()) != 3 || cursor.Count(o.Children()) != 3 {
		t.Errorf("children cursor did not restart")
	}
}

func TestArrayPushPop(t *testing.T) {
	for _, n := range []int{0, 1, 5, 33} {
		t.Run(fmt.Sprint(n), func(t *testing.T) {
			a := NewArray(New())
			for range n {
				a.PushBack()
			}
			if a.Size() != n {
				t.Fatalf("size %d", a.Size())
			}
			for i := range n + 2 {
				if _, err := a.At(a.Size() + i); !errors.Is(err, ErrOutOfRange) {
					t.Errorf("at %d: %v", a.Size()+i, err)
				}
			}
			if _, err := a.At(-1); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("at -1: %v", err)
			}
			for range n {
				if err := a.PopBack(); err != nil {
					t.Fatal(err)
				}
			}
			if a.Size() != 0 {
				t.Errorf("size %d after pops", a.Size())
			}
			if err := a.PopBack(); !errors.Is(err, ErrOutOfRange) {
				t.Errorf("pop on empty: %v", err)
			}
		})
	}
}

func TestArrayResizeReleases(t *testing.T) {
	root := New()
	a, err := root.AsArray()
	if err != nil {
		t.Fatal(err)
	}
	a.Resize(3)
	last, _ := a.At(2)
	ref := New()
	if err := ref.SetReference(last); err != nil {
		t.Fatal(err)
	}
	a.Resize(1)
	if !last.Released() {
		t.Errorf("truncated element not released")
	}
	if _, err := ref.Fetch(); !errors.Is(err, ErrNotFound) {
		t.Errorf("fetch dangling: %v", err)
	}
	it, err := a.Item(0)
	if err != nil {
		t.Fatal(err)
	}
	if cursor.Count(it) != 1 {
		t.Errorf("item cursor not single")
	}
	if _, err := a.Item(1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("item 1: %v", err)
	}
}

func TestReferenceRoundTrip(t *testing.T) {
	root := New()
	a := mustInsert(t, root, "a")
	b := mustInsert(t, root, "b")
	if err := a.SetReference(b); err != nil {
		t.Fatal(err)
	}
	if err := a.SetFloat(2.5); err != nil {
		t.Fatal(err)
	}
	s, err := b.GetScalar()
	if err != nil {
		t.Fatal(err)
	}
	if s != Float(2.5) {
		t.Errorf("b = %s", s)
	}
	f, err := a.Fetch()
	if err != nil {
		t.Fatal(err)
	}
	if f != b {
		t.Errorf("fetch returned %s", f.Path())
	}
	if a.Kind() != ReferenceTag || a.Type() != ScalarTag {
		t.Errorf("kind %s type %s", a.Kind(), a.Type())
	}
}

func TestReferenceMutatesTarget(t *testing.T) {
	root := New()
	a := mustInsert(t, root, "a")
	b := mustInsert(t, root, "b")
	if err := a.SetReference(b); err != nil {
		t.Fatal(err)
	}
	c := mustInsert(t, a, "c")
	if c.Parent() != b {
		t.Errorf("child created under %q", c.Parent().Path())
	}
	if got, err := root.AtPath("b/c"); err != nil || got != c {
		t.Errorf("b/c: %v", err)
	}
	if got, err := root.AtPath("a/c"); err != nil || got != c {
		t.Errorf("a/c: %v", err)
	}
}

func TestCyclicReference(t *testing.T) {
	root := New()
	a := mustInsert(t, root, "a")
	b := mustInsert(t, root, "b")
	if err := a.SetReference(b); err != nil {
		t.Fatal(err)
	}
	if err := b.SetReference(a); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Fetch(); !errors.Is(err, ErrCyclicReference) {
		t.Errorf("fetch: %v", err)
	}
	if err := a.SetInt(1); !errors.Is(err, ErrCyclicReference) {
		t.Errorf("set: %v", err)
	}
	if a.Type() != ReferenceTag {
		t.Errorf("type %s", a.Type())
	}
}

func TestSelfReference(t *testing.T) {
	e := New()
	if err := e.SetReference(e); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Fetch(); !errors.Is(err, ErrCyclicReference) {
		t.Errorf("fetch: %v", err)
	}
}

func TestLongReferenceChain(t *testing.T) {
	root := New()
	arr, _ := root.AsArray()
	arr.Resize(MaxReferenceHops + 2)
	for i := range MaxReferenceHops + 1 {
		from, _ := arr.At(i)
		to, _ := arr.At(i + 1)
		if err := from.SetReference(to); err != nil {
			t.Fatal(err)
		}
	}
	first, _ := arr.At(0)
	if _, err := first.Fetch(); !errors.Is(err, ErrCyclicReference) {
		t.Errorf("chain of %d hops: %v", MaxReferenceHops+1, err)
	}
	second, _ := arr.At(1)
	if _, err := second.Fetch(); err != nil {
		t.Errorf("chain of %d hops: %v", MaxReferenceHops, err)
	}
}

func TestDanglingReference(t *testing.T) {
	root := New()
	a := mustInsert(t, root, "a")
	b := mustInsert(t, root, "b/c")
	if err := a.SetReference(b); err != nil {
		t.Fatal(err)
	}
	if err := root.ErasePath("b"); err != nil {
		t.Fatal(err)
	}
	if _, err := a.Fetch(); !errors.Is(err, ErrNotFound) {
		t.Errorf("fetch: %v", err)
	}
	if a.Type() != ReferenceTag {
		t.Errorf("type %s", a.Type())
	}
}

func TestTypeMismatch(t *testing.T) {
	root := New()
	s := mustInsert(t, root, "s")
	if err := s.SetInt(1); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		f    func() error
	}{
		{"as object", func() error { _, err := s.AsObject(); return err }},
		{"as array", func() error { _, err := s.AsArray(); return err }},
		{"as block", func() error { _, err := s.AsBlock(); return err }},
		{"get object", func() error { _, err := s.GetObject(); return err }},
		{"block on scalar", func() error { b, _ := NewBlock(Uint8, 2); return s.SetBlock(b) }},
		{"reference on scalar", func() error { return s.SetReference(root) }},
		{"scalar on object", func() error { return root.SetInt(1) }},
		{"get scalar on object", func() error { _, err := root.GetScalar(); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.f(); !errors.Is(err, ErrTypeMismatch) {
				t.Errorf("got %v", err)
			}
		})
	}
}

func TestPathErrors(t *testing.T) {
	root := New()
	if err := mustInsert(t, root, "s").SetInt(1); err != nil {
		t.Fatal(err)
	}
	arr := mustInsert(t, root, "arr")
	a, _ := arr.AsArray()
	a.Resize(2)
	mustInsert(t, root, "e")

	tests := []struct {
		name    string
		insert  bool
		path    string
		wantErr error
		wantIdx int
	}{
		{"index on scalar", true, "s[0]", ErrTypeMismatch, 1},
		{"key on scalar", true, "s/x", ErrTypeMismatch, 1},
		{"index past end", true, "arr[2]", ErrOutOfRange, 1},
		{"no growth on empty", true, "e[0]", ErrOutOfRange, 1},
		{"key on array", true, "arr/x", ErrTypeMismatch, 1},
		{"at missing", false, "nope/x", ErrNotFound, 0},
		{"at under empty", false, "e/x", ErrNotFound, 1},
		{"at index on object", false, "[0]", ErrTypeMismatch, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.insert {
				_, err = root.InsertPath(tt.path)
			} else {
				_, err = root.AtPath(tt.path)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("got %v, want %v", err, tt.wantErr)
			}
			var pe *PathError
			if !errors.As(err, &pe) {
				t.Fatalf("%v is not a PathError", err)
			}
			if pe.Index != tt.wantIdx {
				t.Errorf("failing segment %d, want %d", pe.Index, tt.wantIdx)
			}
		})
	}
	if e, _ := root.AtPath("e"); e.Kind() != EmptyTag {
		t.Errorf("failed index insert promoted e to %s", e.Kind())
	}
}

func TestErasePath(t *testing.T) {
	root := New()
	arr := mustInsert(t, root, "arr")
	a, _ := arr.AsArray()
	a.Resize(3)

	if err := root.ErasePath("arr[0]"); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("erase first: %v", err)
	}
	if err := root.ErasePath("arr[2]"); err != nil {
		t.Errorf("erase last: %v", err)
	}
	if a.Size() != 2 {
		t.Errorf("size %d", a.Size())
	}
	if err := root.ErasePath("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("erase missing: %v", err)
	}
	if err := arr.ErasePath(""); err != nil {
		t.Fatal(err)
	}
	if arr.Kind() != EmptyTag {
		t.Errorf("kind %s after erasing empty path", arr.Kind())
	}
}

func TestClear(t *testing.T) {
	root := New()
	c := mustInsert(t, root, "x/y")
	root.Clear()
	if root.Kind() != EmptyTag {
		t.Errorf("kind %s", root.Kind())
	}
	if !c.Released() {
		t.Errorf("descendant not released")
	}
	// promotion works again
	if _, err := root.AsArray(); err != nil {
		t.Error(err)
	}
}

func TestScalarSetters(t *testing.T) {
	e := New()
	tests := []struct {
		set  func() error
		want Scalar
	}{
		{func() error { return e.SetBool(true) }, Bool(true)},
		{func() error { return e.SetInt(-4) }, Int(-4)},
		{func() error { return e.SetFloat(1.5) }, Float(1.5)},
		{func() error { return e.SetString("hi") }, Str("hi")},
		{func() error { return e.SetComplex(1 + 2i) }, Complex(1 + 2i)},
		{func() error { return e.SetIntVec([3]int64{1, 2, 3}) }, IntVec([3]int64{1, 2, 3})},
		{func() error { return e.SetFloatVec([3]float64{1, 2, 3}) }, FloatVec([3]float64{1, 2, 3})},
	}
	for _, tt := range tests {
		t.Run(tt.want.Kind().String(), func(t *testing.T) {
			if err := tt.set(); err != nil {
				t.Fatal(err)
			}
			got, err := e.GetScalar()
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

type countingObject struct {
	*MemObject
	refreshed int
}

func (c *countingObject) Refresh() { c.refreshed++ }

func TestUpdateThroughReference(t *testing.T) {
	root := New()
	target := mustInsert(t, root, "t")
	obj := &countingObject{MemObject: NewObject(target)}
	if err := target.SetObject(obj); err != nil {
		t.Fatal(err)
	}
	alias := mustInsert(t, root, "alias")
	if err := alias.SetReference(target); err != nil {
		t.Fatal(err)
	}
	mustInsert(t, alias, "k")
	if obj.refreshed != 1 {
		t.Errorf("target refreshed %d times, want 1", obj.refreshed)
	}
	mustInsert(t, alias, "k")
	if obj.refreshed != 2 {
		t.Errorf("target refreshed %d times after second insert, want 2", obj.refreshed)
	}
	before := obj.refreshed
	mustInsert(t, target, "j")
	if obj.refreshed != before {
		t.Errorf("direct mutation refreshed the target")
	}
}

func TestSetObjectBinds(t *testing.T) {
	root := New()
	o := NewObject(New())
	o.Insert("k")
	if err := root.SetObject(o); err != nil {
		t.Fatal(err)
	}
	if o.Self() != root {
		t.Errorf("object not bound")
	}
	k, err := root.AtPath("k")
	if err != nil {
		t.Fatal(err)
	}
	if k.Parent() != root {
		t.Errorf("child not re-parented")
	}
	if err := root.SetObject(NewObject(root)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("set object on object: %v", err)
	}
}

func TestVisit(t *testing.T) {
	root := New()
	mustInsert(t, root, "a/b")
	mustInsert(t, root, "c")
	var got []string
	err := root.Visit(func(e *Entry, isPost bool) (bool, error) {
		if isPost {
			got = append(got, "/"+e.Path().String())
		} else {
			got = append(got, e.Path().String())
		}
		return e.Path().String() != "c", nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"", "a", "a/b", "/a/b", "/a", "c", "/c", "/"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("visit order (-want +got):\n%s", diff)
	}
}

func TestAttributes(t *testing.T) {
	e := New()
	if err := e.SetAttribute("units", Str("m")); err != nil {
		t.Fatal(err)
	}
	if err := e.SetAttribute("scale", Float(2)); err != nil {
		t.Fatal(err)
	}
	mustInsert(t, e, "child")
	got, err := e.Attribute("units")
	if err != nil {
		t.Fatal(err)
	}
	if got != Str("m") {
		t.Errorf("units = %s", got)
	}
	if diff := cmp.Diff([]string{"scale", "units"}, cursor.Collect(e.Attributes())); diff != "" {
		t.Errorf("attributes (-want +got):\n%s", diff)
	}
	if err := e.RemoveAttribute("units"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Attribute("units"); !errors.Is(err, ErrNotFound) {
		t.Errorf("removed attribute: %v", err)
	}
	if n := cursor.Count(New().Attributes()); n != 0 {
		t.Errorf("empty entry has %d attributes", n)
	}
}

func TestCopy(t *testing.T) {
	root := New()
	if err := mustInsert(t, root, "sub/v").SetInt(1); err != nil {
		t.Fatal(err)
	}
	b, _ := FromFloat64s([]float64{1, 2})
	if err := mustInsert(t, root, "sub/blk").SetBlock(b); err != nil {
		t.Fatal(err)
	}
	outside := mustInsert(t, root, "out")
	inner := mustInsert(t, root, "sub/in")
	if err := inner.SetReference(mustInsert(t, root, "sub/v")); err != nil {
		t.Fatal(err)
	}
	if err := mustInsert(t, root, "sub/ext").SetReference(outside); err != nil {
		t.Fatal(err)
	}

	sub, _ := root.AtPath("sub")
	cp := sub.Copy()
	if !cp.IsRoot() {
		t.Errorf("copy is not a root")
	}
	cpIn, _ := cp.AtPath("in")
	cpV, _ := cp.AtPath("v")
	if got, err := cpIn.Fetch(); err != nil || got != cpV {
		t.Errorf("inner reference not remapped: %v", err)
	}
	cpExt, _ := cp.AtPath("ext")
	if got, err := cpExt.Fetch(); err != nil || got != outside {
		t.Errorf("outer reference not kept: %v", err)
	}
	cpBlk, _ := cp.AtPath("blk")
	gb, _ := cpBlk.GetBlock()
	if !gb.Equal(b) || &gb.Data[0] == &b.Data[0] {
		t.Errorf("block not deep copied")
	}
	if err := cpV.SetInt(9); err != nil {
		t.Fatal(err)
	}
	v, _ := root.AtPath("sub/v")
	if s, _ := v.GetScalar(); s != Int(1) {
		t.Errorf("copy aliases original: %s", s)
	}
}

func TestCopyKeepsEditedBlock(t *testing.T) {
	root := New()
	b, err := mustInsert(t, root, "a").AsBlock()
	if err != nil {
		t.Fatal(err)
	}
	b.Data = make([]byte, 8)
	if err := mustInsert(t, root, "z").SetInt(42); err != nil {
		t.Fatal(err)
	}

	cp := root.Copy()
	o, err := cp.GetObject()
	if err != nil {
		t.Fatal(err)
	}
	if o.Size() != 2 {
		t.Errorf("copy has %d keys, want 2", o.Size())
	}
	z, err := cp.AtPath("z")
	if err != nil {
		t.Fatal(err)
	}
	if s, _ := z.GetScalar(); s != Int(42) {
		t.Errorf("z = %s", s)
	}
	a, _ := cp.AtPath("a")
	if gb, err := a.GetBlock(); err != nil || len(gb.Data) != 8 {
		t.Errorf("block not copied: %v", err)
	}
}

func TestReplace(t *testing.T) {
	root := New()
	src := mustInsert(t, root, "src")
	child := mustInsert(t, src, "k")
	dst := mustInsert(t, root, "dst")
	old := mustInsert(t, dst, "old")

	if err := dst.Replace(src); err != nil {
		t.Fatal(err)
	}
	if src.Kind() != EmptyTag {
		t.Errorf("src kind %s", src.Kind())
	}
	if child.Parent() != dst {
		t.Errorf("child not re-parented")
	}
	if !child.Path().Equal(xpath.MustParse("dst/k")) {
		t.Errorf("child path %q", child.Path())
	}
	if !old.Released() {
		t.Errorf("replaced content not released")
	}
	if err := root.Replace(child); !errors.Is(err, ErrReplaceCycle) {
		t.Errorf("replace with descendant: %v", err)
	}
	if err := child.Replace(root); !errors.Is(err, ErrReplaceCycle) {
		t.Errorf("replace with ancestor: %v", err)
	}
}

func TestString(t *testing.T) {
	root := New()
	a := mustInsert(t, root, "a")
	if err := a.SetReference(mustInsert(t, root, "b")); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		e    *Entry
		want string
	}{
		{New(), "Empty"},
		{root, "Object(2)"},
		{a, `Reference("b")`},
	}
	for _, tt := range tests {
		if got := tt.e.String(); got != tt.want {
			t.Errorf("got %s, want %s", got, tt.want)
		}
	}
}
