package all

import (
	"path/filepath"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/entry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	reg, err := NewRegistry(Options{FS: memfs.New()})
	require.NoError(t, err)
	want := append([]string{backend.MemName}, Names...)
	assert.ElementsMatch(t, want, reg.Names())

	for req, name := range map[string]string{
		"a.json":      "json",
		"a.yaml":      "yaml",
		"a.yml":       "yaml",
		"a.hcl":       "hcl",
		"a.spb":       "spb",
		"a.db":        "sqlite",
		"a.sqlite3":   "sqlite",
		"json:a.txt":  "json",
		"file:///a.b": "",
	} {
		if name == "" {
			_, err := reg.Resolve(req)
			require.ErrorIs(t, err, backend.ErrUnknownBackend, req)
			continue
		}
		res, err := reg.Resolve(req)
		require.NoError(t, err, req)
		assert.Equal(t, name, res.Name, req)
	}
}

func TestConvert(t *testing.T) {
	reg, err := NewRegistry(Options{FS: memfs.New()})
	require.NoError(t, err)

	src := entry.New()
	for p, s := range map[string]entry.Scalar{
		"title":        entry.Str("run"),
		"count":        entry.Int(3),
		"ok":           entry.Bool(true),
		"detector/gap": entry.Int(12),
	} {
		e, err := src.InsertPath(p)
		require.NoError(t, err)
		require.NoError(t, e.SetScalar(s))
	}

	uris := []string{"doc.json", "doc.yaml", "doc.hcl", "doc.spb", filepath.Join(t.TempDir(), "doc.db")}
	cur := src
	for _, uri := range uris {
		require.NoError(t, reg.Save(cur, uri), uri)
		next, err := reg.Load(uri)
		require.NoError(t, err, uri)
		for p, s := range map[string]entry.Scalar{
			"title":        entry.Str("run"),
			"count":        entry.Int(3),
			"ok":           entry.Bool(true),
			"detector/gap": entry.Int(12),
		} {
			e, err := next.AtPath(p)
			require.NoError(t, err, "%s %s", uri, p)
			got, err := e.GetScalar()
			require.NoError(t, err)
			assert.Equal(t, s, got, "%s %s", uri, p)
		}
		cur = next
	}
}
