// Package patch applies JSON Patch (RFC 6902) and JSON Merge Patch
// (RFC 7396) documents to entry trees.
//
// The tree is rendered as JSON, patched, and read back; the result is
// then applied to the original tree as a structural diff, so untouched
// nodes keep their identity and backends only see what changed.
package patch

import (
	"errors"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/ohler55/ojg/oj"
	"github.com/signadot/spdb/debug"
	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/jsonany"
	"github.com/signadot/spdb/libdiff"
)

var ErrPatch = errors.New("patch failed")

// Apply applies the RFC 6902 patch p to the tree under root.
func Apply(root *entry.Entry, p []byte) ([]libdiff.Change, error) {
	ops, err := jsonpatch.DecodePatch(p)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPatch, err)
	}
	return apply(root, "json-patch", ops.Apply)
}

// Merge applies the RFC 7396 merge patch p to the tree under root.
func Merge(root *entry.Entry, p []byte) ([]libdiff.Change, error) {
	return apply(root, "merge-patch", func(doc []byte) ([]byte, error) {
		return jsonpatch.MergePatch(doc, p)
	})
}

// MarshalJSON renders the tree under e as JSON, with references and
// other values JSON cannot hold in their tagged forms.
func MarshalJSON(e *entry.Entry) ([]byte, error) {
	v, err := jsonany.ToAny(e)
	if err != nil {
		return nil, err
	}
	return oj.Marshal(v, &oj.Options{Sort: true})
}

func apply(root *entry.Entry, kind string, f func([]byte) ([]byte, error)) ([]libdiff.Change, error) {
	if debug.Patch() {
		debug.Logf("%s called on %q\n", kind, root.Path())
	}
	d, err := MarshalJSON(root)
	if err != nil {
		return nil, err
	}
	out, err := f(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPatch, kind, err)
	}
	v, err := oj.Parse(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %s output: %w", ErrPatch, kind, err)
	}
	next := entry.New()
	if err := jsonany.FromAny(v, next); err != nil {
		return nil, err
	}
	cs, err := libdiff.Diff(root, next)
	if err != nil {
		return nil, err
	}
	if err := libdiff.Apply(root, cs); err != nil {
		return nil, err
	}
	if debug.Patch() {
		debug.Logf("%s changed %d paths under %q\n", kind, len(cs), root.Path())
	}
	return cs, nil
}
