package encode

import (
	"bytes"
	"strings"
	"testing"

	"github.com/signadot/spdb/entry"
)

func build(t *testing.T) *entry.Entry {
	t.Helper()
	root := entry.New()
	set := func(p string, s entry.Scalar) {
		e, err := root.InsertPath(p)
		if err != nil {
			t.Fatal(err)
		}
		if err := e.SetScalar(s); err != nil {
			t.Fatal(err)
		}
	}
	set("run/id", entry.Int(7))
	set("run/name", entry.Str("calib"))
	set("pos", entry.FloatVec([3]float64{1, 2.5, 3}))
	set("two words", entry.Bool(true))
	list, err := root.InsertPath("list")
	if err != nil {
		t.Fatal(err)
	}
	a, err := list.AsArray()
	if err != nil {
		t.Fatal(err)
	}
	if err := a.PushBack().SetInt(1); err != nil {
		t.Fatal(err)
	}
	a.PushBack()
	b, err := entry.FromInt64s([]int64{1, 2, 3, 4}, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	blk, err := root.InsertPath("blk")
	if err != nil {
		t.Fatal(err)
	}
	if err := blk.SetBlock(b); err != nil {
		t.Fatal(err)
	}
	ref, err := root.InsertPath("alias")
	if err != nil {
		t.Fatal(err)
	}
	id, err := root.AtPath("run/id")
	if err != nil {
		t.Fatal(err)
	}
	if err := ref.SetReference(id); err != nil {
		t.Fatal(err)
	}
	if _, err := root.InsertPath("none"); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestEncode(t *testing.T) {
	root := build(t)
	want := strings.Join([]string{
		`alias: -> run/id`,
		`blk: !block int64[2,2] [1 2 3 4]`,
		`list:`,
		`  - 1`,
		`  - ~`,
		`none: ~`,
		`pos: (1, 2.5, 3)`,
		`run:`,
		`  id: 7`,
		`  name: "calib"`,
		`"two words": true`,
	}, "\n") + "\n"
	buf := &bytes.Buffer{}
	if err := Encode(root, buf); err != nil {
		t.Fatal(err)
	}
	if buf.String() != want {
		t.Errorf("got\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestEncodeOptions(t *testing.T) {
	root := build(t)
	run, err := root.AtPath("run")
	if err != nil {
		t.Fatal(err)
	}
	id, err := root.AtPath("run/id")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		e    *entry.Entry
		opts []EncodeOption
		want string
	}{
		{"depth", root, []EncodeOption{MaxDepth(1)}, "run: ... 2 more"},
		{"indent", run, []EncodeOption{Indent(4)}, "id: 7\nname: \"calib\""},
		{"blockElems", root, []EncodeOption{BlockElems(2)}, "blk: !block int64[2,2] [1 2 ...2 more]"},
		{"leaf", id, nil, "7"},
		{"empty object", entry.New(), nil, "~"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := MustString(tc.e, tc.opts...)
			if !strings.Contains(got, tc.want) {
				t.Errorf("%q does not contain %q", got, tc.want)
			}
		})
	}
}

func TestRefPath(t *testing.T) {
	root := build(t)
	run, _ := root.AtPath("run")
	id, _ := root.AtPath("run/id")
	list, _ := root.AtPath("list")
	if got := RefPath(run, id); got != "id" {
		t.Errorf("got %q", got)
	}
	if got := RefPath(id, id); got != "." {
		t.Errorf("got %q", got)
	}
	if got := RefPath(list, id); got != "/run/id" {
		t.Errorf("got %q", got)
	}
}

func TestColors(t *testing.T) {
	c := NewColors()
	calls := 0
	c.Map[Colorable{Type: StringType, Attr: ValueColor}] = func(s string, _ ...any) string {
		calls++
		return "<" + s + ">"
	}
	root := entry.New()
	e, _ := root.InsertPath("s")
	if err := e.SetString("100%"); err != nil {
		t.Fatal(err)
	}
	got := MustString(root, EncodeColors(c))
	if !strings.Contains(got, `<"100%">`) || calls != 1 {
		t.Errorf("got %q after %d calls", got, calls)
	}
	if f := c.Get(EmptyType, FieldColor); f("x") != "x" {
		t.Errorf("default color changed text")
	}
}
