package libdiff

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/signadot/spdb/debug"
	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/entry/xpath"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type Op int

const (
	Insert Op = iota
	Delete
	Replace
	// Edit changes a string leaf by a text diff.
	Edit
)

func (o Op) String() string {
	switch o {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	case Replace:
		return "replace"
	case Edit:
		return "edit"
	}
	return fmt.Sprintf("Op(%d)", int(o))
}

// Change is one difference at Path. From holds a copy of the old value
// and To a copy of the new one; Insert has no From and Delete no To.
// An Edit carries the text diff of a string leaf in Text.
type Change struct {
	Path xpath.Path
	Op   Op
	From *entry.Entry
	To   *entry.Entry
	Text []diffpatch.Diff

	// roots the copies were taken under, to re-point references
	fromRoot, toRoot *entry.Entry
}

var ErrConflict = errors.New("diff does not apply")

// Diff returns the changes turning the tree under from into the tree
// under to. Equal trees give no changes.
func Diff(from, to *entry.Entry) ([]Change, error) {
	d := &differ{fromRoot: from, toRoot: to, dmp: diffpatch.New()}
	if err := d.diff(xpath.Path{}, from, to); err != nil {
		return nil, err
	}
	if debug.Diff() {
		debug.Logf("diff %q %q: %d changes\n", from.Path(), to.Path(), len(d.res))
	}
	return d.res, nil
}

type differ struct {
	fromRoot, toRoot *entry.Entry
	dmp              *diffpatch.DiffMatchPatch
	res              []Change
}

func (d *differ) add(c Change) {
	c.fromRoot, c.toRoot = d.fromRoot, d.toRoot
	if c.From != nil {
		c.From = c.From.Copy()
	}
	if c.To != nil {
		c.To = c.To.Copy()
	}
	d.res = append(d.res, c)
}

func (d *differ) diff(p xpath.Path, from, to *entry.Entry) error {
	if from.Kind() != to.Kind() {
		d.add(Change{Path: p, Op: Replace, From: from, To: to})
		return nil
	}
	switch fv := from.Value().(type) {
	case entry.Empty:
		return nil
	case entry.ObjectValue:
		return d.diffObject(p, fv.Object, to.Value().(entry.ObjectValue).Object)
	case entry.ArrayValue:
		return d.diffArray(p, fv.Array, to.Value().(entry.ArrayValue).Array)
	case entry.Scalar:
		tv := to.Value().(entry.Scalar)
		if fv == tv {
			return nil
		}
		if fv.Kind() == entry.StringKind && tv.Kind() == entry.StringKind {
			if text := d.diffString(fv.String(), tv.String()); text != nil {
				d.res = append(d.res, Change{Path: p, Op: Edit, Text: text, fromRoot: d.fromRoot, toRoot: d.toRoot})
				return nil
			}
		}
	case *entry.Block:
		if fv.Equal(to.Value().(*entry.Block)) {
			return nil
		}
	case entry.Reference:
		tv := to.Value().(entry.Reference)
		if refPath(d.fromRoot, fv.Target()) == refPath(d.toRoot, tv.Target()) {
			return nil
		}
	case entry.ExtensionValue:
		if reflect.DeepEqual(fv.Extension, to.Value().(entry.ExtensionValue).Extension) {
			return nil
		}
	}
	d.add(Change{Path: p, Op: Replace, From: from, To: to})
	return nil
}

// diffObject diffs the key sequences, each key mapped to one rune, then
// recurses into the values of keys present on both sides.
func (d *differ) diffObject(p xpath.Path, from, to entry.Object) error {
	fromKeys := keys(from)
	toKeys := keys(to)
	if len(fromKeys)+len(toKeys) > maxRuneKeys {
		return d.diffSortedKeys(p, from, to, fromKeys, toKeys)
	}
	fieldMap := map[string]rune{}
	runeMap := map[rune]string{}
	fromRunes := mapFieldsTo(fieldMap, runeMap, fromKeys)
	toRunes := mapFieldsTo(fieldMap, runeMap, toKeys)
	diffs := d.dmp.DiffMainRunes(fromRunes, toRunes, false)
	for i := range diffs {
		for _, r := range diffs[i].Text {
			if err := d.diffKey(p, from, to, runeMap[r], diffs[i].Type); err != nil {
				return err
			}
		}
	}
	return nil
}

// diffSortedKeys walks both sorted key lists in step, for objects with
// more keys than there are runes to map them to.
func (d *differ) diffSortedKeys(p xpath.Path, from, to entry.Object, fromKeys, toKeys []string) error {
	i, j := 0, 0
	for i < len(fromKeys) || j < len(toKeys) {
		var err error
		switch {
		case j == len(toKeys) || (i < len(fromKeys) && fromKeys[i] < toKeys[j]):
			err = d.diffKey(p, from, to, fromKeys[i], diffpatch.DiffDelete)
			i++
		case i == len(fromKeys) || toKeys[j] < fromKeys[i]:
			err = d.diffKey(p, from, to, toKeys[j], diffpatch.DiffInsert)
			j++
		default:
			err = d.diffKey(p, from, to, fromKeys[i], diffpatch.DiffEqual)
			i++
			j++
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *differ) diffKey(p xpath.Path, from, to entry.Object, k string, op diffpatch.Operation) error {
	kp := p.Append(xpath.Key(k))
	switch op {
	case diffpatch.DiffDelete:
		f, err := from.At(k)
		if err != nil {
			return err
		}
		d.add(Change{Path: kp, Op: Delete, From: f})
	case diffpatch.DiffInsert:
		t, err := to.At(k)
		if err != nil {
			return err
		}
		d.add(Change{Path: kp, Op: Insert, To: t})
	case diffpatch.DiffEqual:
		f, err := from.At(k)
		if err != nil {
			return err
		}
		t, err := to.At(k)
		if err != nil {
			return err
		}
		return d.diff(kp, f, t)
	}
	return nil
}

// diffArray compares elements by index. Surplus elements of to are
// inserts in increasing index order and surplus elements of from are
// deletes from the back, so the changes apply in sequence.
func (d *differ) diffArray(p xpath.Path, from, to entry.Array) error {
	n, m := from.Size(), to.Size()
	for i := range min(n, m) {
		f, err := from.At(i)
		if err != nil {
			return err
		}
		t, err := to.At(i)
		if err != nil {
			return err
		}
		if err := d.diff(p.Append(xpath.Index(i)), f, t); err != nil {
			return err
		}
	}
	for i := n; i < m; i++ {
		t, err := to.At(i)
		if err != nil {
			return err
		}
		d.add(Change{Path: p.Append(xpath.Index(i)), Op: Insert, To: t})
	}
	for i := n - 1; i >= m; i-- {
		f, err := from.At(i)
		if err != nil {
			return err
		}
		d.add(Change{Path: p.Append(xpath.Index(i)), Op: Delete, From: f})
	}
	return nil
}

// diffString returns a text diff, or nil when the strings differ so much
// that replacing the whole value is smaller.
func (d *differ) diffString(from, to string) []diffpatch.Diff {
	multiLine := strings.Contains(from, "\n") && strings.Contains(to, "\n")
	diffs := d.dmp.DiffMain(from, to, multiLine)
	diffs = d.dmp.DiffCleanupSemantic(diffs)
	diffSize := 0
	for i := range diffs {
		if diffs[i].Type != diffpatch.DiffEqual {
			diffSize += len(diffs[i].Text)
		}
	}
	if diffSize > min(len(from), len(to))/2 {
		return nil
	}
	return diffs
}

func keys(o entry.Object) []string {
	var ks []string
	for it := range o.Items() {
		ks = append(ks, it.Key)
	}
	return ks
}

// surrogates are not valid runes and would not survive DiffMainRunes
const (
	surrogateMin = 0xD800
	surrogateEnd = 0xE000
	maxRuneKeys  = utf8.MaxRune + 1 - (surrogateEnd - surrogateMin)
)

func keyRune(n int) rune {
	if n >= surrogateMin {
		n += surrogateEnd - surrogateMin
	}
	return rune(n)
}

func mapFieldsTo(m map[string]rune, im map[rune]string, fields []string) []rune {
	rs := make([]rune, len(fields))
	for i, f := range fields {
		r, ok := m[f]
		if !ok {
			r = keyRune(len(m))
			m[f] = r
			im[r] = f
		}
		rs[i] = r
	}
	return rs
}

// refPath gives target's path relative to root, or its absolute path
// with a leading "/" when target lies elsewhere.
func refPath(root, target *entry.Entry) string {
	if target == nil {
		return ""
	}
	base, tp := root.Path(), target.Path()
	if target.Root() == root.Root() && tp.HasPrefix(base) {
		return tp.Slice(base.Len(), tp.Len()).String()
	}
	return "/" + tp.String()
}

// Paths lists the paths of cs in order.
func Paths(cs []Change) []xpath.Path {
	res := make([]xpath.Path, len(cs))
	for i := range cs {
		res[i] = cs[i].Path
	}
	return slices.Clip(res)
}

func (c Change) String() string {
	switch c.Op {
	case Insert:
		return fmt.Sprintf("+ %s: %s", c.Path, c.To)
	case Delete:
		return fmt.Sprintf("- %s: %s", c.Path, c.From)
	case Replace:
		return fmt.Sprintf("~ %s: %s -> %s", c.Path, c.From, c.To)
	case Edit:
		return fmt.Sprintf("~ %s: %s", c.Path, diffpatch.New().DiffToDelta(c.Text))
	}
	return c.Op.String()
}
