// Package jsonany converts entry trees to and from the generic values
// produced by JSON and YAML decoders: map[string]any, []any, strings,
// numbers, bools and nil.
//
// Values with no direct JSON form are written as single key objects:
//
//	{"$ref": "a/b[0]"}                 reference, path relative to the root
//	{"$float": "2"}                    float with an integral value, NaN or Inf
//	{"$complex": [re, im]}
//	{"$ivec": [x, y, z]}
//	{"$fvec": [x, y, z]}
//	{"$block": {"dtype": "float64", "shape": [2], "data": "<base64>"}}
//	{"$ext": {"type": "unit", "data": "<text>"}}
//
// Object keys starting with "$" are written with an extra "$".
package jsonany

import (
	"encoding"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/entry/xpath"
)

const (
	RefTag      = "$ref"
	FloatTag    = "$float"
	ComplexTag  = "$complex"
	IntVecTag   = "$ivec"
	FloatVecTag = "$fvec"
	BlockTag    = "$block"
	ExtTag      = "$ext"
)

var (
	ErrExternalReference = errors.New("reference leaves the encoded tree")
	ErrBadTaggedValue    = errors.New("bad tagged value")
)

// ToAny converts the tree rooted at root.
func ToAny(root *entry.Entry) (any, error) {
	return toAny(root, root.Path())
}

func toAny(e *entry.Entry, base xpath.Path) (any, error) {
	switch v := e.Value().(type) {
	case entry.Empty:
		return nil, nil
	case entry.Reference:
		t := v.Target()
		if t == nil || t.Released() {
			return nil, fmt.Errorf("%w: dangling reference at %q", entry.ErrNotFound, e.Path())
		}
		tp := t.Path()
		if t.Root() != e.Root() || !tp.HasPrefix(base) {
			return nil, fmt.Errorf("%w: %q refers to %q", ErrExternalReference, e.Path(), tp)
		}
		return map[string]any{RefTag: tp.Slice(base.Len(), tp.Len()).String()}, nil
	case entry.Scalar:
		return scalarToAny(v), nil
	case *entry.Block:
		dt, _ := v.DType.MarshalText()
		shape := make([]any, len(v.Shape))
		for i, d := range v.Shape {
			shape[i] = int64(d)
		}
		return map[string]any{BlockTag: map[string]any{
			"dtype": string(dt),
			"shape": shape,
			"data":  base64.StdEncoding.EncodeToString(v.Data),
		}}, nil
	case entry.ExtensionValue:
		tm, ok := v.Extension.(encoding.TextMarshaler)
		if !ok {
			return nil, fmt.Errorf("%w: extension %s at %q has no text form", entry.ErrTypeMismatch, v.Extension.ExtensionType(), e.Path())
		}
		d, err := tm.MarshalText()
		if err != nil {
			return nil, err
		}
		return map[string]any{ExtTag: map[string]any{
			"type": v.Extension.ExtensionType(),
			"data": string(d),
		}}, nil
	case entry.ObjectValue:
		res := make(map[string]any, v.Object.Size())
		for it := range v.Object.Items() {
			c, err := toAny(it.Entry, base)
			if err != nil {
				return nil, err
			}
			res[EscapeKey(it.Key)] = c
		}
		return res, nil
	case entry.ArrayValue:
		res := make([]any, 0, v.Array.Size())
		for c := range v.Array.Children() {
			a, err := toAny(c, base)
			if err != nil {
				return nil, err
			}
			res = append(res, a)
		}
		return res, nil
	default:
		panic("impossible value")
	}
}

func scalarToAny(s entry.Scalar) any {
	switch s.Kind() {
	case entry.FloatKind:
		f, _ := s.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) || f == math.Trunc(f) {
			return map[string]any{FloatTag: strconv.FormatFloat(f, 'g', -1, 64)}
		}
		return f
	case entry.ComplexKind:
		c, _ := s.AsComplex()
		return map[string]any{ComplexTag: []any{real(c), imag(c)}}
	case entry.IntVecKind:
		v, _ := s.AsIntVec()
		return map[string]any{IntVecTag: []any{v[0], v[1], v[2]}}
	case entry.FloatVecKind:
		v, _ := s.AsFloatVec()
		return map[string]any{FloatVecTag: []any{v[0], v[1], v[2]}}
	default:
		return s.Any()
	}
}

// EscapeKey doubles a leading "$" so keys cannot be read as tags.
func EscapeKey(k string) string {
	if strings.HasPrefix(k, "$") {
		return "$" + k
	}
	return k
}

// UnescapeKey reverses EscapeKey.
func UnescapeKey(k string) string {
	if strings.HasPrefix(k, "$$") {
		return k[1:]
	}
	return k
}

// FromAny stores v into into. Objects and arrays are built with
// into.AsObject and into.AsArray, so a backend object installed on into
// receives the top level keys. References are resolved after the whole
// value is stored.
func FromAny(v any, into *entry.Entry) error {
	d := &decoder{root: into}
	if err := d.decode(v, into); err != nil {
		return err
	}
	for _, r := range d.refs {
		t, err := into.At(r.path)
		if err != nil {
			return fmt.Errorf("reference at %q: %w", r.e.Path(), err)
		}
		if err := r.e.SetReference(t); err != nil {
			return err
		}
	}
	return nil
}

type pendingRef struct {
	e    *entry.Entry
	path xpath.Path
}

type decoder struct {
	root *entry.Entry
	refs []pendingRef
}

func (d *decoder) decode(v any, e *entry.Entry) error {
	switch x := v.(type) {
	case nil:
		return nil
	case map[string]any:
		if len(x) == 1 {
			for k, tv := range x {
				if ok, err := d.tagged(k, tv, e); ok || err != nil {
					return err
				}
			}
		}
		o, err := e.AsObject()
		if err != nil {
			return err
		}
		for k, cv := range x {
			if err := d.decode(cv, o.Insert(UnescapeKey(k))); err != nil {
				return err
			}
		}
		return nil
	case []any:
		a, err := e.AsArray()
		if err != nil {
			return err
		}
		for _, cv := range x {
			if err := d.decode(cv, a.PushBack()); err != nil {
				return err
			}
		}
		return nil
	default:
		n, err := number(v)
		if err == nil {
			return e.SetScalar(n)
		}
		s, err := entry.ScalarOf(v)
		if err != nil {
			return err
		}
		return e.SetScalar(s)
	}
}

func (d *decoder) tagged(k string, v any, e *entry.Entry) (bool, error) {
	bad := func(err error) (bool, error) {
		return true, fmt.Errorf("%w %s at %q: %v", ErrBadTaggedValue, k, e.Path(), err)
	}
	switch k {
	case RefTag:
		s, ok := v.(string)
		if !ok {
			return bad(fmt.Errorf("want string, have %T", v))
		}
		p, err := xpath.Parse(s)
		if err != nil {
			return bad(err)
		}
		d.refs = append(d.refs, pendingRef{e: e, path: p})
		return true, nil
	case FloatTag:
		s, ok := v.(string)
		if !ok {
			f, err := toFloat(v)
			if err != nil {
				return bad(err)
			}
			return true, e.SetFloat(f)
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return bad(err)
		}
		return true, e.SetFloat(f)
	case ComplexTag:
		fs, err := floats(v, 2)
		if err != nil {
			return bad(err)
		}
		return true, e.SetComplex(complex(fs[0], fs[1]))
	case FloatVecTag:
		fs, err := floats(v, 3)
		if err != nil {
			return bad(err)
		}
		return true, e.SetFloatVec([3]float64{fs[0], fs[1], fs[2]})
	case IntVecTag:
		is, err := ints(v, 3)
		if err != nil {
			return bad(err)
		}
		return true, e.SetIntVec([3]int64{is[0], is[1], is[2]})
	case BlockTag:
		m, ok := v.(map[string]any)
		if !ok {
			return bad(fmt.Errorf("want object, have %T", v))
		}
		b, err := blockFromAny(m)
		if err != nil {
			return bad(err)
		}
		return true, e.SetBlock(b)
	case ExtTag:
		m, ok := v.(map[string]any)
		if !ok {
			return bad(fmt.Errorf("want object, have %T", v))
		}
		typ, _ := m["type"].(string)
		data, _ := m["data"].(string)
		x, err := entry.DecodeExtension(typ, []byte(data))
		if err != nil {
			return bad(err)
		}
		return true, e.SetExtension(x)
	}
	return false, nil
}

func blockFromAny(m map[string]any) (*entry.Block, error) {
	var dt entry.DType
	s, _ := m["dtype"].(string)
	if err := dt.UnmarshalText([]byte(s)); err != nil {
		return nil, err
	}
	shapeAny, _ := m["shape"].([]any)
	shape64, err := ints(shapeAny, len(shapeAny))
	if err != nil {
		return nil, err
	}
	shape := make([]int, len(shape64))
	for i, d := range shape64 {
		shape[i] = int(d)
	}
	enc, _ := m["data"].(string)
	data, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, err
	}
	b := &entry.Block{DType: dt, Shape: shape, Data: data}
	return b, b.Validate()
}
