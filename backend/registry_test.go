package backend

import (
	"errors"
	"testing"

	"github.com/signadot/spdb/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	*entry.MemObject
	loaded, saved string
	fail          error
}

func (f *fakeBackend) Load(locator string) error {
	f.loaded = locator
	if f.fail != nil {
		return f.fail
	}
	f.Insert("from").SetString(locator)
	return nil
}

func (f *fakeBackend) Save(locator string) error {
	f.saved = locator
	return f.fail
}

func fakeFactory(made *[]*fakeBackend, fail error) ObjectFactory {
	return func(self *entry.Entry) (Backend, error) {
		b := &fakeBackend{MemObject: entry.NewObject(self), fail: fail}
		*made = append(*made, b)
		return b, nil
	}
}

func TestResolve(t *testing.T) {
	reg := NewRegistry()
	var made []*fakeBackend
	require.NoError(t, reg.Register("h5", fakeFactory(&made, nil), WithPatterns(`\.hdf5$`)))
	require.NoError(t, reg.Register("sqlite", fakeFactory(&made, nil)))
	require.NoError(t, reg.Register("hdf", fakeFactory(&made, nil)))
	require.NoError(t, reg.Associate("hdf", `^archive/.*\.bin$`))

	tests := []struct {
		request string
		name    string
		locator string
	}{
		{"", MemName, ""},
		{"scratch", MemName, "scratch"},
		{"mem:doc", MemName, "doc"},
		{":doc", MemName, "doc"},
		{"foo.h5", "h5", "foo.h5"},
		{"dir.v2/foo.h5", "h5", "dir.v2/foo.h5"},
		{"file:foo.h5", "h5", "foo.h5"},
		{"file:///tmp/foo.h5", "h5", "/tmp/foo.h5"},
		{"run.hdf5", "h5", "run.hdf5"},
		{"sqlite:data.db", "sqlite", "data.db"},
		{"sqlite:///var/data.db", "sqlite", "/var/data.db"},
		{"archive/x.bin", "hdf", "archive/x.bin"},
	}
	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			res, err := reg.Resolve(tt.request)
			require.NoError(t, err)
			assert.Equal(t, tt.name, res.Name)
			assert.Equal(t, tt.locator, res.Locator)
		})
	}
}

func TestResolvePatternOnly(t *testing.T) {
	reg := NewRegistry()
	var made []*fakeBackend
	require.NoError(t, reg.Register("hdf5-files", fakeFactory(&made, nil), WithPatterns(`.*\.h5$`)))
	res, err := reg.Resolve("foo.h5")
	require.NoError(t, err)
	assert.Equal(t, "hdf5-files", res.Name)
	assert.Equal(t, "h5", res.Scheme)
	assert.Equal(t, "foo.h5", res.Locator)
}

func TestResolveUnknown(t *testing.T) {
	reg := NewRegistry()
	for _, req := range []string{"bogus://x", "foo.h5", "x.json"} {
		_, err := reg.Resolve(req)
		require.ErrorIs(t, err, ErrUnknownBackend, req)
	}
	_, err := reg.Resolve("bogus://x")
	assert.Contains(t, err.Error(), `"bogus"`)
}

func TestRegisterOverwrites(t *testing.T) {
	reg := NewRegistry()
	var first, second []*fakeBackend
	require.NoError(t, reg.Register("x", fakeFactory(&first, nil), WithPatterns(`\.xx$`)))
	require.NoError(t, reg.Register("x", fakeFactory(&second, nil), WithPatterns(`\.xxx$`)))

	_, err := reg.Load("a.xx")
	require.NoError(t, err)
	assert.Empty(t, first)
	assert.Len(t, second, 1)
	assert.Equal(t, []string{`\.xx$`, `\.xxx$`}, reg.Patterns("x"))
	assert.Equal(t, []string{"mem", "x"}, reg.Names())
}

func TestRegisterErrors(t *testing.T) {
	reg := NewRegistry()
	var made []*fakeBackend
	assert.Error(t, reg.Register("", fakeFactory(&made, nil)))
	assert.Error(t, reg.Register("x", nil))
	assert.Error(t, reg.Register("x", fakeFactory(&made, nil), WithPatterns(`(`)))
	require.ErrorIs(t, reg.Associate("nope", `\.n$`), ErrUnknownBackend)
}

func TestLoadSave(t *testing.T) {
	reg := NewRegistry()
	var made []*fakeBackend
	require.NoError(t, reg.Register("fake", fakeFactory(&made, nil)))

	root, err := reg.Load("fake://some/where")
	require.NoError(t, err)
	require.Len(t, made, 1)
	assert.Equal(t, "some/where", made[0].loaded)
	from, err := root.AtPath("from")
	require.NoError(t, err)
	s, err := from.GetScalar()
	require.NoError(t, err)
	assert.Equal(t, entry.Str("some/where"), s)
	o, err := root.GetObject()
	require.NoError(t, err)
	assert.Same(t, made[0], o)

	e := entry.New()
	require.NoError(t, reg.Save(e, "x.fake"))
	require.Len(t, made, 2)
	assert.Equal(t, "x.fake", made[1].saved)
	assert.Same(t, e, made[1].Self())
}

func TestBackendIO(t *testing.T) {
	reg := NewRegistry()
	var made []*fakeBackend
	boom := errors.New("disk on fire")
	require.NoError(t, reg.Register("bad", fakeFactory(&made, boom)))

	_, err := reg.Load("bad:x")
	require.ErrorIs(t, err, ErrBackendIO)
	require.ErrorIs(t, err, boom)

	err = reg.Save(entry.New(), "bad:x")
	require.ErrorIs(t, err, ErrBackendIO)
	require.ErrorIs(t, err, boom)

	_, err = reg.Load("nope:x")
	require.ErrorIs(t, err, ErrUnknownBackend)
	assert.NotErrorIs(t, err, ErrBackendIO)
}

func TestNewArray(t *testing.T) {
	reg := NewRegistry()
	var made []*fakeBackend
	arrays := 0
	require.NoError(t, reg.Register("fake", fakeFactory(&made, nil), WithArrayFactory(func(self *entry.Entry) (entry.Array, error) {
		arrays++
		return entry.NewArray(self), nil
	})))
	self := entry.New()
	a, err := reg.NewArray("fake", self)
	require.NoError(t, err)
	assert.Same(t, self, a.Self())
	assert.Equal(t, 1, arrays)

	a, err = reg.NewArray(MemName, self)
	require.NoError(t, err)
	assert.Equal(t, 0, a.Size())

	_, err = reg.NewArray("nope", self)
	require.ErrorIs(t, err, ErrUnknownBackend)
}

func TestMemRoundTrip(t *testing.T) {
	reg := NewRegistry()
	src := entry.New()
	v, err := src.InsertPath("a/b")
	require.NoError(t, err)
	require.NoError(t, v.SetInt(4))
	ref, err := src.InsertPath("r")
	require.NoError(t, err)
	require.NoError(t, ref.SetReference(v))

	require.NoError(t, reg.Save(src, "mem:doc"))
	require.NoError(t, v.SetInt(5))

	got, err := reg.Load("mem:doc")
	require.NoError(t, err)
	gv, err := got.AtPath("a/b")
	require.NoError(t, err)
	s, err := gv.GetScalar()
	require.NoError(t, err)
	assert.Equal(t, entry.Int(4), s)
	gr, err := got.AtPath("r")
	require.NoError(t, err)
	target, err := gr.Fetch()
	require.NoError(t, err)
	assert.Same(t, gv, target)

	_, err = reg.Load("mem:missing")
	require.ErrorIs(t, err, entry.ErrNotFound)
	require.ErrorIs(t, err, ErrBackendIO)

	empty, err := reg.Load("")
	require.NoError(t, err)
	assert.Equal(t, entry.ObjectTag, empty.Kind())
}

func TestMemKeepsSiblingsOfEditedBlock(t *testing.T) {
	reg := NewRegistry()
	src := entry.New()
	a, err := src.InsertPath("a")
	require.NoError(t, err)
	b, err := a.AsBlock()
	require.NoError(t, err)
	b.Data = make([]byte, 8)
	z, err := src.InsertPath("z")
	require.NoError(t, err)
	require.NoError(t, z.SetInt(42))

	require.NoError(t, reg.Save(src, "mem:blk"))
	got, err := reg.Load("mem:blk")
	require.NoError(t, err)
	gz, err := got.AtPath("z")
	require.NoError(t, err)
	s, err := gz.GetScalar()
	require.NoError(t, err)
	assert.Equal(t, entry.Int(42), s)
}

func TestDefault(t *testing.T) {
	assert.Same(t, Default(), Default())
	assert.Contains(t, Default().Names(), MemName)
}

func TestSync(t *testing.T) {
	reg := NewRegistry()
	var made []*fakeBackend
	require.NoError(t, reg.Register("fake", fakeFactory(&made, nil)))

	root, err := reg.Load("fake:a")
	require.NoError(t, err)
	require.NoError(t, reg.Sync(root, "fake:b"))
	require.Len(t, made, 1)
	assert.Equal(t, "b", made[0].saved)

	plain := entry.New()
	_, err = plain.InsertPath("x")
	require.NoError(t, err)
	require.NoError(t, reg.Sync(plain, "fake:c"))
	require.Len(t, made, 2)
	assert.Equal(t, "c", made[1].saved)
}
