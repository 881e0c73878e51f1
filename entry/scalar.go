package entry

import (
	"fmt"
	"math"
	"strconv"
)

// ScalarKind identifies the type held by a Scalar.
type ScalarKind int

const (
	BoolKind ScalarKind = iota
	IntKind
	FloatKind
	StringKind
	ComplexKind
	IntVecKind
	FloatVecKind
)

func (k ScalarKind) String() string {
	switch k {
	case BoolKind:
		return "bool"
	case IntKind:
		return "int"
	case FloatKind:
		return "float"
	case StringKind:
		return "string"
	case ComplexKind:
		return "complex"
	case IntVecKind:
		return "ivec3"
	case FloatVecKind:
		return "fvec3"
	}
	return "<unknown scalar kind>"
}

// Scalar is a small leaf value: a bool, an int64, a float64, a string, a
// complex128 or a 3-vector of int64 or float64. Numeric payloads share the
// same words so a Scalar stays small. Scalars are comparable with ==.
type Scalar struct {
	kind  ScalarKind
	words [3]uint64
	str   string
}

func Bool(b bool) Scalar {
	s := Scalar{kind: BoolKind}
	if b {
		s.words[0] = 1
	}
	return s
}

func Int(i int64) Scalar {
	return Scalar{kind: IntKind, words: [3]uint64{uint64(i)}}
}

func Float(f float64) Scalar {
	return Scalar{kind: FloatKind, words: [3]uint64{math.Float64bits(f)}}
}

func Str(v string) Scalar {
	return Scalar{kind: StringKind, str: v}
}

func Complex(c complex128) Scalar {
	return Scalar{kind: ComplexKind, words: [3]uint64{math.Float64bits(real(c)), math.Float64bits(imag(c))}}
}

func IntVec(v [3]int64) Scalar {
	return Scalar{kind: IntVecKind, words: [3]uint64{uint64(v[0]), uint64(v[1]), uint64(v[2])}}
}

func FloatVec(v [3]float64) Scalar {
	return Scalar{kind: FloatVecKind, words: [3]uint64{
		math.Float64bits(v[0]), math.Float64bits(v[1]), math.Float64bits(v[2]),
	}}
}

func (Scalar) Tag() Tag { return ScalarTag }
func (Scalar) isValue() {}

func (s Scalar) Kind() ScalarKind { return s.kind }

func (s Scalar) kindErr(want ScalarKind) error {
	return fmt.Errorf("%w: want %s scalar, have %s", ErrTypeMismatch, want, s.kind)
}

func (s Scalar) AsBool() (bool, error) {
	if s.kind != BoolKind {
		return false, s.kindErr(BoolKind)
	}
	return s.words[0] != 0, nil
}

func (s Scalar) AsInt() (int64, error) {
	if s.kind != IntKind {
		return 0, s.kindErr(IntKind)
	}
	return int64(s.words[0]), nil
}

func (s Scalar) AsFloat() (float64, error) {
	if s.kind != FloatKind {
		return 0, s.kindErr(FloatKind)
	}
	return math.Float64frombits(s.words[0]), nil
}

func (s Scalar) AsStr() (string, error) {
	if s.kind != StringKind {
		return "", s.kindErr(StringKind)
	}
	return s.str, nil
}

func (s Scalar) AsComplex() (complex128, error) {
	if s.kind != ComplexKind {
		return 0, s.kindErr(ComplexKind)
	}
	return complex(math.Float64frombits(s.words[0]), math.Float64frombits(s.words[1])), nil
}

func (s Scalar) AsIntVec() ([3]int64, error) {
	if s.kind != IntVecKind {
		return [3]int64{}, s.kindErr(IntVecKind)
	}
	return [3]int64{int64(s.words[0]), int64(s.words[1]), int64(s.words[2])}, nil
}

func (s Scalar) AsFloatVec() ([3]float64, error) {
	if s.kind != FloatVecKind {
		return [3]float64{}, s.kindErr(FloatVecKind)
	}
	return [3]float64{
		math.Float64frombits(s.words[0]),
		math.Float64frombits(s.words[1]),
		math.Float64frombits(s.words[2]),
	}, nil
}

// Any returns the scalar as a native Go value: bool, int64, float64,
// string, complex128, [3]int64 or [3]float64.
func (s Scalar) Any() any {
	switch s.kind {
	case BoolKind:
		v, _ := s.AsBool()
		return v
	case IntKind:
		v, _ := s.AsInt()
		return v
	case FloatKind:
		v, _ := s.AsFloat()
		return v
	case StringKind:
		return s.str
	case ComplexKind:
		v, _ := s.AsComplex()
		return v
	case IntVecKind:
		v, _ := s.AsIntVec()
		return v
	case FloatVecKind:
		v, _ := s.AsFloatVec()
		return v
	}
	return nil
}

// ScalarOf converts a native Go value into a Scalar.
func ScalarOf(v any) (Scalar, error) {
	switch x := v.(type) {
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint32:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return Str(x), nil
	case complex128:
		return Complex(x), nil
	case complex64:
		return Complex(complex128(x)), nil
	case [3]int64:
		return IntVec(x), nil
	case [3]float64:
		return FloatVec(x), nil
	}
	return Scalar{}, fmt.Errorf("%w: %T is not a scalar type", ErrTypeMismatch, v)
}

// ParseScalar reads a scalar from text the way a command line would: true
// and false are bools, integers and floats are numbers, anything else is a
// string.
func ParseScalar(v string) Scalar {
	switch v {
	case "true":
		return Bool(true)
	case "false":
		return Bool(false)
	}
	if i, err := strconv.ParseInt(v, 10, 64); err == nil {
		return Int(i)
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return Float(f)
	}
	return Str(v)
}

func (s Scalar) String() string {
	switch s.kind {
	case BoolKind:
		v, _ := s.AsBool()
		return strconv.FormatBool(v)
	case IntKind:
		v, _ := s.AsInt()
		return strconv.FormatInt(v, 10)
	case FloatKind:
		v, _ := s.AsFloat()
		return strconv.FormatFloat(v, 'g', -1, 64)
	case StringKind:
		return s.str
	case ComplexKind:
		v, _ := s.AsComplex()
		return strconv.FormatComplex(v, 'g', -1, 128)
	case IntVecKind:
		v, _ := s.AsIntVec()
		return fmt.Sprintf("(%d, %d, %d)", v[0], v[1], v[2])
	case FloatVecKind:
		v, _ := s.AsFloatVec()
		return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
	}
	return "<bad scalar>"
}
