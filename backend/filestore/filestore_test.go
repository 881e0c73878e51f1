package filestore

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lines stores an object of ints as "key=value" lines.
type lines struct{}

func (lines) Name() string { return "lines" }

func (lines) Encode(e *entry.Entry) ([]byte, error) {
	o, err := e.GetObject()
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	for it := range o.Items() {
		s, err := it.Entry.GetScalar()
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(&b, "%s=%s\n", it.Key, s)
	}
	return []byte(b.String()), nil
}

func (lines) Decode(data []byte, into *entry.Entry) error {
	o, err := into.AsObject()
	if err != nil {
		return err
	}
	for _, l := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		k, v, ok := strings.Cut(l, "=")
		if !ok {
			return errors.New("missing =")
		}
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return err
		}
		if err := o.Insert(k).SetInt(i); err != nil {
			return err
		}
	}
	return nil
}

func TestStoreRoundTrip(t *testing.T) {
	fs := memfs.New()
	reg := backend.NewRegistry()
	require.NoError(t, reg.Register("lines", Factory(lines{}, WithFS(fs))))

	src := entry.New()
	for i, k := range []string{"b", "a"} {
		c, err := src.InsertPath(k)
		require.NoError(t, err)
		require.NoError(t, c.SetInt(int64(i)))
	}
	require.NoError(t, reg.Save(src, "out/doc.lines"))

	data, err := util.ReadFile(fs, "out/doc.lines")
	require.NoError(t, err)
	assert.Equal(t, "a=1\nb=0\n", string(data))

	got, err := reg.Load("out/doc.lines")
	require.NoError(t, err)
	o, err := got.GetObject()
	require.NoError(t, err)
	_, isStore := o.(*Store)
	assert.True(t, isStore)
	assert.Equal(t, 2, o.Size())
	a, err := got.AtPath("a")
	require.NoError(t, err)
	s, err := a.GetScalar()
	require.NoError(t, err)
	assert.Equal(t, entry.Int(1), s)
}

func TestStoreReload(t *testing.T) {
	fs := memfs.New()
	require.NoError(t, util.WriteFile(fs, "x.lines", []byte("k=1\n"), 0o644))
	root := entry.New()
	s := New(root, lines{}, WithFS(fs))
	require.NoError(t, root.SetObject(s))
	require.NoError(t, s.Load("x.lines"))
	_, err := root.InsertPath("extra")
	require.NoError(t, err)
	require.NoError(t, s.Load("x.lines"))
	assert.Equal(t, 1, s.Size())
}

func TestStoreErrors(t *testing.T) {
	fs := memfs.New()
	reg := backend.NewRegistry()
	require.NoError(t, reg.Register("lines", Factory(lines{}, WithFS(fs))))

	_, err := reg.Load("missing.lines")
	require.ErrorIs(t, err, backend.ErrBackendIO)
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, util.WriteFile(fs, "bad.lines", []byte("nope\n"), 0o644))
	_, err = reg.Load("bad.lines")
	require.ErrorIs(t, err, backend.ErrBackendIO)
	assert.Contains(t, err.Error(), "missing =")

	s := New(entry.New(), lines{}, WithFS(fs))
	assert.Error(t, s.Load(""))
}
