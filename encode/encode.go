package encode

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/entry/xpath"
)

type EncState struct {
	depth      int
	indent     int
	maxDepth   int
	blockElems int
	root       *entry.Entry

	Color func(Type, ColorAttr, string) string
}

// Encode writes the tree under e to w.
func Encode(e *entry.Entry, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{indent: 2, blockElems: 8, root: e}
	for _, opt := range opts {
		opt(es)
	}
	if es.Color == nil {
		es.Color = func(_ Type, _ ColorAttr, s string) string { return s }
	}
	buf := &bytes.Buffer{}
	if isContainer(e) && size(e) > 0 {
		encodeChildren(buf, e, es)
	} else {
		buf.WriteString(inline(e, es))
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// MustString returns the encoding of e without the final newline.
func MustString(e *entry.Entry, opts ...EncodeOption) string {
	buf := bytes.NewBuffer(nil)
	if err := Encode(e, buf, opts...); err != nil {
		panic(err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// TypeOf returns the color class of e's value.
func TypeOf(e *entry.Entry) Type {
	switch v := e.Value().(type) {
	case entry.Reference:
		return ReferenceType
	case *entry.Block:
		return BlockType
	case entry.ObjectValue:
		return ObjectType
	case entry.ArrayValue:
		return ArrayType
	case entry.ExtensionValue:
		return ExtensionType
	case entry.Scalar:
		switch v.Kind() {
		case entry.BoolKind:
			return BoolType
		case entry.StringKind:
			return StringType
		case entry.IntVecKind, entry.FloatVecKind:
			return VectorType
		}
		return NumberType
	}
	return EmptyType
}

func isContainer(e *entry.Entry) bool {
	switch e.Value().(type) {
	case entry.ObjectValue, entry.ArrayValue:
		return true
	}
	return false
}

func size(e *entry.Entry) int {
	switch v := e.Value().(type) {
	case entry.ObjectValue:
		return v.Object.Size()
	case entry.ArrayValue:
		return v.Array.Size()
	}
	return 0
}

func encodeChildren(buf *bytes.Buffer, e *entry.Entry, es *EncState) {
	pad := strings.Repeat(" ", es.depth*es.indent)
	switch v := e.Value().(type) {
	case entry.ObjectValue:
		for it := range v.Object.Items() {
			buf.WriteString(pad)
			buf.WriteString(es.Color(ObjectType, FieldColor, Key(it.Key)))
			buf.WriteString(es.Color(ObjectType, SepColor, ":"))
			encodeValue(buf, it.Entry, es)
		}
	case entry.ArrayValue:
		for c := range v.Array.Children() {
			buf.WriteString(pad)
			buf.WriteString(es.Color(ArrayType, SepColor, "-"))
			encodeValue(buf, c, es)
		}
	}
}

// encodeValue writes a value after its key or dash, through the end of
// its line or nested block.
func encodeValue(buf *bytes.Buffer, e *entry.Entry, es *EncState) {
	if !isContainer(e) || size(e) == 0 {
		buf.WriteByte(' ')
		buf.WriteString(inline(e, es))
		buf.WriteByte('\n')
		return
	}
	if es.maxDepth > 0 && es.depth+1 >= es.maxDepth {
		buf.WriteByte(' ')
		buf.WriteString(es.Color(TypeOf(e), TagColor, fmt.Sprintf("... %d more", size(e))))
		buf.WriteByte('\n')
		return
	}
	buf.WriteByte('\n')
	es.depth++
	encodeChildren(buf, e, es)
	es.depth--
}

func inline(e *entry.Entry, es *EncState) string {
	t := TypeOf(e)
	switch v := e.Value().(type) {
	case entry.Empty:
		return es.Color(t, ValueColor, "~")
	case entry.ObjectValue:
		return es.Color(t, SepColor, "{}")
	case entry.ArrayValue:
		return es.Color(t, SepColor, "[]")
	case entry.Scalar:
		if v.Kind() == entry.StringKind {
			return es.Color(t, ValueColor, strconv.Quote(v.String()))
		}
		return es.Color(t, ValueColor, v.String())
	case entry.Reference:
		return es.Color(t, SepColor, "->") + " " + es.Color(t, ValueColor, RefPath(es.root, v.Target()))
	case *entry.Block:
		return es.Color(t, TagColor, "!block") + " " + es.Color(t, ValueColor, blockText(v, es.blockElems))
	case entry.ExtensionValue:
		tag := es.Color(t, TagColor, "!"+v.Extension.ExtensionType())
		if tm, ok := v.Extension.(encoding.TextMarshaler); ok {
			if d, err := tm.MarshalText(); err == nil {
				return tag + " " + es.Color(t, ValueColor, strconv.Quote(string(d)))
			}
		}
		return tag
	}
	return ""
}

// RefPath formats the path of target relative to root. Targets outside
// root are prefixed with "/" and given from their own root.
func RefPath(root, target *entry.Entry) string {
	if target == nil {
		return "<nil>"
	}
	base, tp := root.Path(), target.Path()
	if target.Root() == root.Root() && tp.HasPrefix(base) {
		rel := tp.Slice(base.Len(), tp.Len())
		if rel.IsEmpty() {
			return "."
		}
		return rel.String()
	}
	return "/" + tp.String()
}

// Key formats an object key, quoting it when it would not read back as
// a single key.
func Key(k string) string {
	s := xpath.Key(k).String()
	if strings.ContainsAny(s, ": \t\n#") && !strings.HasPrefix(s, "'") {
		return strconv.Quote(k)
	}
	return s
}

func blockText(b *entry.Block, limit int) string {
	dims := make([]string, len(b.Shape))
	for i, d := range b.Shape {
		dims[i] = strconv.Itoa(d)
	}
	head := b.DType.String() + "[" + strings.Join(dims, ",") + "]"
	var elems []string
	switch b.DType {
	case entry.Complex64, entry.Complex128:
		return head + " (" + strconv.Itoa(len(b.Data)) + " bytes)"
	case entry.Float32, entry.Float64:
		fs, err := b.Float64s()
		if err != nil {
			return head + " " + err.Error()
		}
		for _, f := range fs {
			elems = append(elems, strconv.FormatFloat(f, 'g', -1, 64))
		}
	default:
		is, err := b.Int64s()
		if err != nil {
			return head + " " + err.Error()
		}
		for _, i := range is {
			elems = append(elems, strconv.FormatInt(i, 10))
		}
	}
	more := ""
	if limit >= 0 && len(elems) > limit {
		more = fmt.Sprintf(" ...%d more", len(elems)-limit)
		elems = elems[:limit]
	}
	return head + " [" + strings.Join(elems, " ") + more + "]"
}
