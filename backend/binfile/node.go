package binfile

import (
	"encoding"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/entry/xpath"
	"github.com/signadot/spdb/jsonany"
)

var le = binary.LittleEndian

type writer struct {
	buf  []byte
	base xpath.Path
}

func (w *writer) byte(b byte) { w.buf = append(w.buf, b) }
func (w *writer) uvarint(v uint64) { w.buf = binary.AppendUvarint(w.buf, v) }
func (w *writer) varint(v int64) { w.buf = binary.AppendVarint(w.buf, v) }
func (w *writer) f64(f float64) { w.buf = le.AppendUint64(w.buf, math.Float64bits(f)) }

func (w *writer) bytes(d []byte) {
	w.uvarint(uint64(len(d)))
	w.buf = append(w.buf, d...)
}

func (w *writer) str(s string) {
	w.uvarint(uint64(len(s)))
	w.buf = append(w.buf, s...)
}

func (w *writer) tag(t entry.Tag) { w.byte(byte(t)) }

func (w *writer) node(e *entry.Entry) error {
	switch v := e.Value().(type) {
	case entry.Empty:
		w.tag(entry.EmptyTag)
	case entry.Reference:
		t := v.Target()
		if t == nil || t.Released() {
			return fmt.Errorf("%w: dangling reference at %q", entry.ErrNotFound, e.Path())
		}
		tp := t.Path()
		if t.Root() != e.Root() || !tp.HasPrefix(w.base) {
			return fmt.Errorf("%w: %q refers to %q", jsonany.ErrExternalReference, e.Path(), tp)
		}
		w.tag(entry.ReferenceTag)
		w.str(tp.Slice(w.base.Len(), tp.Len()).String())
	case entry.Scalar:
		w.tag(entry.ScalarTag)
		w.scalar(v)
	case *entry.Block:
		w.tag(entry.BlockTag)
		w.byte(byte(v.DType))
		w.uvarint(uint64(len(v.Shape)))
		for _, d := range v.Shape {
			w.uvarint(uint64(d))
		}
		w.bytes(v.Data)
	case entry.ExtensionValue:
		tm, ok := v.Extension.(encoding.TextMarshaler)
		if !ok {
			return fmt.Errorf("%w: extension %s at %q has no text form", entry.ErrTypeMismatch, v.Extension.ExtensionType(), e.Path())
		}
		d, err := tm.MarshalText()
		if err != nil {
			return err
		}
		w.tag(entry.ExtensionTag)
		w.str(v.Extension.ExtensionType())
		w.bytes(d)
	case entry.ObjectValue:
		var items []entry.Item
		for it := range v.Object.Items() {
			items = append(items, it)
		}
		w.tag(entry.ObjectTag)
		w.uvarint(uint64(len(items)))
		for _, it := range items {
			w.str(it.Key)
			if err := w.node(it.Entry); err != nil {
				return err
			}
		}
	case entry.ArrayValue:
		w.tag(entry.ArrayTag)
		w.uvarint(uint64(v.Array.Size()))
		for c := range v.Array.Children() {
			if err := w.node(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *writer) scalar(s entry.Scalar) {
	w.byte(byte(s.Kind()))
	switch s.Kind() {
	case entry.BoolKind:
		b, _ := s.AsBool()
		if b {
			w.byte(1)
		} else {
			w.byte(0)
		}
	case entry.IntKind:
		i, _ := s.AsInt()
		w.varint(i)
	case entry.FloatKind:
		f, _ := s.AsFloat()
		w.f64(f)
	case entry.StringKind:
		str, _ := s.AsStr()
		w.str(str)
	case entry.ComplexKind:
		c, _ := s.AsComplex()
		w.f64(real(c))
		w.f64(imag(c))
	case entry.IntVecKind:
		v, _ := s.AsIntVec()
		for _, i := range v {
			w.varint(i)
		}
	case entry.FloatVecKind:
		v, _ := s.AsFloatVec()
		for _, f := range v {
			w.f64(f)
		}
	}
}

type pendingRef struct {
	e    *entry.Entry
	path string
}

type reader struct {
	buf  []byte
	off  int
	refs []pendingRef
}

func (r *reader) short(what string) error {
	return fmt.Errorf("%w: truncated %s at offset %d", ErrFormat, what, r.off)
}

func (r *reader) byte() (byte, error) {
	if r.off >= len(r.buf) {
		return 0, r.short("byte")
	}
	b := r.buf[r.off]
	r.off++
	return b, nil
}

func (r *reader) uvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.off:])
	if n <= 0 {
		return 0, r.short("uvarint")
	}
	r.off += n
	return v, nil
}

func (r *reader) varint() (int64, error) {
	v, n := binary.Varint(r.buf[r.off:])
	if n <= 0 {
		return 0, r.short("varint")
	}
	r.off += n
	return v, nil
}

// count reads a length and checks it against the remaining input, each
// counted item taking at least width bytes.
func (r *reader) count(width int) (int, error) {
	n, err := r.uvarint()
	if err != nil {
		return 0, err
	}
	if n > uint64((len(r.buf)-r.off)/width) {
		return 0, fmt.Errorf("%w: count %d exceeds input", ErrFormat, n)
	}
	return int(n), nil
}

func (r *reader) bytes() ([]byte, error) {
	n, err := r.count(1)
	if err != nil {
		return nil, err
	}
	d := r.buf[r.off : r.off+n]
	r.off += n
	return d, nil
}

func (r *reader) str() (string, error) {
	d, err := r.bytes()
	return string(d), err
}

func (r *reader) f64() (float64, error) {
	if r.off+8 > len(r.buf) {
		return 0, r.short("float")
	}
	f := math.Float64frombits(le.Uint64(r.buf[r.off:]))
	r.off += 8
	return f, nil
}

func (r *reader) node(e *entry.Entry) error {
	t, err := r.byte()
	if err != nil {
		return err
	}
	switch entry.Tag(t) {
	case entry.EmptyTag:
		return nil
	case entry.ReferenceTag:
		p, err := r.str()
		if err != nil {
			return err
		}
		r.refs = append(r.refs, pendingRef{e: e, path: p})
		return nil
	case entry.ScalarTag:
		s, err := r.scalar()
		if err != nil {
			return err
		}
		return e.SetScalar(s)
	case entry.BlockTag:
		b, err := r.block()
		if err != nil {
			return err
		}
		return e.SetBlock(b)
	case entry.ExtensionTag:
		typ, err := r.str()
		if err != nil {
			return err
		}
		d, err := r.bytes()
		if err != nil {
			return err
		}
		x, err := entry.DecodeExtension(typ, d)
		if err != nil {
			return err
		}
		return e.SetExtension(x)
	case entry.ObjectTag:
		n, err := r.count(2)
		if err != nil {
			return err
		}
		o, err := e.AsObject()
		if err != nil {
			return err
		}
		for range n {
			k, err := r.str()
			if err != nil {
				return err
			}
			if err := r.node(o.Insert(k)); err != nil {
				return err
			}
		}
		return nil
	case entry.ArrayTag:
		n, err := r.count(1)
		if err != nil {
			return err
		}
		a, err := e.AsArray()
		if err != nil {
			return err
		}
		for range n {
			if err := r.node(a.PushBack()); err != nil {
				return err
			}
		}
		return nil
	}
	return fmt.Errorf("%w: tag %d at offset %d", ErrFormat, t, r.off-1)
}

func (r *reader) scalar() (entry.Scalar, error) {
	k, err := r.byte()
	if err != nil {
		return entry.Scalar{}, err
	}
	switch entry.ScalarKind(k) {
	case entry.BoolKind:
		b, err := r.byte()
		return entry.Bool(b != 0), err
	case entry.IntKind:
		i, err := r.varint()
		return entry.Int(i), err
	case entry.FloatKind:
		f, err := r.f64()
		return entry.Float(f), err
	case entry.StringKind:
		s, err := r.str()
		return entry.Str(s), err
	case entry.ComplexKind:
		re, err := r.f64()
		if err != nil {
			return entry.Scalar{}, err
		}
		im, err := r.f64()
		return entry.Complex(complex(re, im)), err
	case entry.IntVecKind:
		var v [3]int64
		for i := range v {
			if v[i], err = r.varint(); err != nil {
				return entry.Scalar{}, err
			}
		}
		return entry.IntVec(v), nil
	case entry.FloatVecKind:
		var v [3]float64
		for i := range v {
			if v[i], err = r.f64(); err != nil {
				return entry.Scalar{}, err
			}
		}
		return entry.FloatVec(v), nil
	}
	return entry.Scalar{}, fmt.Errorf("%w: scalar kind %d", ErrFormat, k)
}

func (r *reader) block() (*entry.Block, error) {
	dt, err := r.byte()
	if err != nil {
		return nil, err
	}
	nd, err := r.count(1)
	if err != nil {
		return nil, err
	}
	shape := make([]int, nd)
	for i := range shape {
		d, err := r.uvarint()
		if err != nil {
			return nil, err
		}
		if d > math.MaxInt32 {
			return nil, fmt.Errorf("%w: dimension %d", ErrFormat, d)
		}
		shape[i] = int(d)
	}
	data, err := r.bytes()
	if err != nil {
		return nil, err
	}
	b := &entry.Block{DType: entry.DType(dt), Shape: shape, Data: append([]byte(nil), data...)}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return b, nil
}

func (r *reader) resolve(root *entry.Entry) error {
	for _, ref := range r.refs {
		t, err := root.AtPath(ref.path)
		if err != nil {
			return fmt.Errorf("reference at %q: %w", ref.e.Path(), err)
		}
		if err := ref.e.SetReference(t); err != nil {
			return err
		}
	}
	return nil
}
