package entry

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"slices"
)

// DType is the element type of a Block.
type DType int

const (
	Uint8 DType = iota
	Int8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
	Complex64
	Complex128
)

var dtypeNames = map[DType]string{
	Uint8:      "uint8",
	Int8:       "int8",
	Int16:      "int16",
	Uint16:     "uint16",
	Int32:      "int32",
	Uint32:     "uint32",
	Int64:      "int64",
	Uint64:     "uint64",
	Float32:    "float32",
	Float64:    "float64",
	Complex64:  "complex64",
	Complex128: "complex128",
}

var ErrBadDType = errors.New("bad dtype")

func (d DType) String() string {
	if s, ok := dtypeNames[d]; ok {
		return s
	}
	return "<unknown dtype>"
}

// Size returns the number of bytes of one element.
func (d DType) Size() int {
	switch d {
	case Uint8, Int8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64, Complex64:
		return 8
	case Complex128:
		return 16
	}
	return 0
}

func ParseDType(v string) (DType, error) {
	for d, s := range dtypeNames {
		if s == v {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadDType, v)
}

func (d DType) MarshalText() ([]byte, error) {
	s, ok := dtypeNames[d]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBadDType, int(d))
	}
	return []byte(s), nil
}

func (d *DType) UnmarshalText(b []byte) error {
	dd, err := ParseDType(string(b))
	if err != nil {
		return err
	}
	*d = dd
	return nil
}

// Block is a typed multidimensional buffer. Data holds the elements in
// row-major order, little endian. A block with no dimensions is empty.
type Block struct {
	DType DType
	Shape []int
	Data  []byte
}

func (*Block) Tag() Tag { return BlockTag }
func (*Block) isValue() {}

// NewBlock returns a zero filled block.
func NewBlock(dt DType, shape ...int) (*Block, error) {
	b := &Block{DType: dt, Shape: slices.Clone(shape)}
	n, err := b.byteLen()
	if err != nil {
		return nil, err
	}
	b.Data = make([]byte, n)
	return b, nil
}

// Len returns the number of elements described by the shape, or 0 when
// the shape is invalid.
func (b *Block) Len() int {
	n, _ := b.count()
	return n
}

func (b *Block) count() (int, error) {
	if len(b.Shape) == 0 {
		return 0, nil
	}
	n := 1
	for _, d := range b.Shape {
		if d < 0 {
			return 0, fmt.Errorf("negative dimension in shape %v", b.Shape)
		}
		if d != 0 && n > math.MaxInt/d {
			return 0, fmt.Errorf("shape %v overflows", b.Shape)
		}
		n *= d
	}
	return n, nil
}

func (b *Block) byteLen() (int, error) {
	sz := b.DType.Size()
	if sz == 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadDType, int(b.DType))
	}
	n, err := b.count()
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt/sz {
		return 0, fmt.Errorf("shape %v of %s overflows", b.Shape, b.DType)
	}
	return n * sz, nil
}

// Validate checks that the data length agrees with dtype and shape.
func (b *Block) Validate() error {
	n, err := b.byteLen()
	if err != nil {
		return err
	}
	if len(b.Data) != n {
		return fmt.Errorf("block data has %d bytes, shape %v of %s needs %d", len(b.Data), b.Shape, b.DType, n)
	}
	return nil
}

func (b *Block) Clone() *Block {
	return &Block{DType: b.DType, Shape: slices.Clone(b.Shape), Data: slices.Clone(b.Data)}
}

func (b *Block) Equal(o *Block) bool {
	if b == nil || o == nil {
		return b == o
	}
	return b.DType == o.DType && slices.Equal(b.Shape, o.Shape) && bytes.Equal(b.Data, o.Data)
}

// FromFloat64s returns a Float64 block holding vs with the given shape.
func FromFloat64s(vs []float64, shape ...int) (*Block, error) {
	if len(shape) == 0 {
		shape = []int{len(vs)}
	}
	b := &Block{DType: Float64, Shape: slices.Clone(shape), Data: make([]byte, 8*len(vs))}
	for i, v := range vs {
		binary.LittleEndian.PutUint64(b.Data[8*i:], math.Float64bits(v))
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// FromInt64s returns an Int64 block holding vs with the given shape.
func FromInt64s(vs []int64, shape ...int) (*Block, error) {
	if len(shape) == 0 {
		shape = []int{len(vs)}
	}
	b := &Block{DType: Int64, Shape: slices.Clone(shape), Data: make([]byte, 8*len(vs))}
	for i, v := range vs {
		binary.LittleEndian.PutUint64(b.Data[8*i:], uint64(v))
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Float64s decodes the elements of a real valued block as float64.
func (b *Block) Float64s() ([]float64, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	n := b.Len()
	res := make([]float64, n)
	d := b.Data
	le := binary.LittleEndian
	for i := range n {
		switch b.DType {
		case Uint8:
			res[i] = float64(d[i])
		case Int8:
			res[i] = float64(int8(d[i]))
		case Int16:
			res[i] = float64(int16(le.Uint16(d[2*i:])))
		case Uint16:
			res[i] = float64(le.Uint16(d[2*i:]))
		case Int32:
			res[i] = float64(int32(le.Uint32(d[4*i:])))
		case Uint32:
			res[i] = float64(le.Uint32(d[4*i:]))
		case Int64:
			res[i] = float64(int64(le.Uint64(d[8*i:])))
		case Uint64:
			res[i] = float64(le.Uint64(d[8*i:]))
		case Float32:
			res[i] = float64(math.Float32frombits(le.Uint32(d[4*i:])))
		case Float64:
			res[i] = math.Float64frombits(le.Uint64(d[8*i:]))
		default:
			return nil, fmt.Errorf("%w: %s block is not real valued", ErrTypeMismatch, b.DType)
		}
	}
	return res, nil
}

// Int64s decodes the elements of an integer block as int64.
func (b *Block) Int64s() ([]int64, error) {
	switch b.DType {
	case Float32, Float64, Complex64, Complex128:
		return nil, fmt.Errorf("%w: %s block is not integer valued", ErrTypeMismatch, b.DType)
	}
	fs, err := b.Float64s()
	if err != nil {
		return nil, err
	}
	if b.DType == Int64 || b.DType == Uint64 {
		res := make([]int64, len(fs))
		for i := range res {
			res[i] = int64(binary.LittleEndian.Uint64(b.Data[8*i:]))
		}
		return res, nil
	}
	res := make([]int64, len(fs))
	for i, f := range fs {
		res[i] = int64(f)
	}
	return res, nil
}
