package entry

import "fmt"

// AsObject returns the object held by e, promoting an Empty entry to a
// MemObject. Through a reference it acts on the target.
func (e *Entry) AsObject() (Object, error) {
	var res Object
	err := e.mutate(func(t *Entry) error {
		switch v := t.Value().(type) {
		case Empty:
			o := NewObject(t)
			t.value = ObjectValue{Object: o}
			res = o
			return nil
		case ObjectValue:
			res = v.Object
			return nil
		default:
			return mismatch(ObjectTag, v.Tag())
		}
	})
	return res, err
}

// AsArray returns the array held by e, promoting an Empty entry to a
// MemArray. Through a reference it acts on the target.
func (e *Entry) AsArray() (Array, error) {
	var res Array
	err := e.mutate(func(t *Entry) error {
		switch v := t.Value().(type) {
		case Empty:
			a := NewArray(t)
			t.value = ArrayValue{Array: a}
			res = a
			return nil
		case ArrayValue:
			res = v.Array
			return nil
		default:
			return mismatch(ArrayTag, v.Tag())
		}
	})
	return res, err
}

// AsBlock returns the block held by e, promoting an Empty entry to an
// empty Float64 block.
func (e *Entry) AsBlock() (*Block, error) {
	var res *Block
	err := e.mutate(func(t *Entry) error {
		switch v := t.Value().(type) {
		case Empty:
			b := &Block{DType: Float64}
			t.value = b
			res = b
			return nil
		case *Block:
			res = v
			return nil
		default:
			return mismatch(BlockTag, v.Tag())
		}
	})
	return res, err
}

// GetObject returns the object e resolves to without promoting.
func (e *Entry) GetObject() (Object, error) {
	t, err := e.Fetch()
	if err != nil {
		return nil, err
	}
	v, ok := t.Value().(ObjectValue)
	if !ok {
		return nil, mismatch(ObjectTag, t.Kind())
	}
	return v.Object, nil
}

// GetArray returns the array e resolves to without promoting.
func (e *Entry) GetArray() (Array, error) {
	t, err := e.Fetch()
	if err != nil {
		return nil, err
	}
	v, ok := t.Value().(ArrayValue)
	if !ok {
		return nil, mismatch(ArrayTag, t.Kind())
	}
	return v.Array, nil
}

// GetBlock returns the block e resolves to without promoting.
func (e *Entry) GetBlock() (*Block, error) {
	t, err := e.Fetch()
	if err != nil {
		return nil, err
	}
	b, ok := t.Value().(*Block)
	if !ok {
		return nil, mismatch(BlockTag, t.Kind())
	}
	return b, nil
}

func bindContainer(t *Entry, self *Entry, b any) error {
	if self == t {
		return nil
	}
	if binder, ok := b.(Binder); ok {
		binder.Bind(t)
		return nil
	}
	return fmt.Errorf("%w: container is bound to another entry", ErrTypeMismatch)
}

// SetObject installs o, typically a backend object, on an Empty entry.
func (e *Entry) SetObject(o Object) error {
	return e.mutate(func(t *Entry) error {
		if k := t.Kind(); k != EmptyTag {
			return mismatch(EmptyTag, k)
		}
		if err := bindContainer(t, o.Self(), o); err != nil {
			return err
		}
		t.value = ObjectValue{Object: o}
		return nil
	})
}

// SetArray installs a on an Empty entry.
func (e *Entry) SetArray(a Array) error {
	return e.mutate(func(t *Entry) error {
		if k := t.Kind(); k != EmptyTag {
			return mismatch(EmptyTag, k)
		}
		if err := bindContainer(t, a.Self(), a); err != nil {
			return err
		}
		t.value = ArrayValue{Array: a}
		return nil
	})
}

// SetBlock stores b on an Empty or Block entry.
func (e *Entry) SetBlock(b *Block) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return e.setBlock(b)
}

func (e *Entry) setBlock(b *Block) error {
	return e.mutate(func(t *Entry) error {
		switch k := t.Kind(); k {
		case EmptyTag, BlockTag:
			t.value = b
			return nil
		default:
			return mismatch(BlockTag, k)
		}
	})
}

// SetScalar stores s on an Empty or Scalar entry.
func (e *Entry) SetScalar(s Scalar) error {
	return e.mutate(func(t *Entry) error {
		switch k := t.Kind(); k {
		case EmptyTag, ScalarTag:
			t.value = s
			return nil
		default:
			return mismatch(ScalarTag, k)
		}
	})
}

// GetScalar returns the scalar e resolves to.
func (e *Entry) GetScalar() (Scalar, error) {
	t, err := e.Fetch()
	if err != nil {
		return Scalar{}, err
	}
	s, ok := t.Value().(Scalar)
	if !ok {
		return Scalar{}, mismatch(ScalarTag, t.Kind())
	}
	return s, nil
}

func (e *Entry) SetBool(b bool) error           { return e.SetScalar(Bool(b)) }
func (e *Entry) SetInt(i int64) error           { return e.SetScalar(Int(i)) }
func (e *Entry) SetFloat(f float64) error       { return e.SetScalar(Float(f)) }
func (e *Entry) SetString(s string) error       { return e.SetScalar(Str(s)) }
func (e *Entry) SetComplex(c complex128) error  { return e.SetScalar(Complex(c)) }
func (e *Entry) SetIntVec(v [3]int64) error     { return e.SetScalar(IntVec(v)) }
func (e *Entry) SetFloatVec(v [3]float64) error { return e.SetScalar(FloatVec(v)) }

// SetExtension stores x on an Empty or Extension entry.
func (e *Entry) SetExtension(x Extension) error {
	return e.mutate(func(t *Entry) error {
		switch k := t.Kind(); k {
		case EmptyTag, ExtensionTag:
			t.value = ExtensionValue{Extension: x}
			return nil
		default:
			return mismatch(ExtensionTag, k)
		}
	})
}

func (e *Entry) GetExtension() (Extension, error) {
	t, err := e.Fetch()
	if err != nil {
		return nil, err
	}
	v, ok := t.Value().(ExtensionValue)
	if !ok {
		return nil, mismatch(ExtensionTag, t.Kind())
	}
	return v.Extension, nil
}
