package entry

// Value is the payload of an Entry. The set of variants is closed:
//
//	Empty, Reference, *Block, ObjectValue, ArrayValue, Scalar, ExtensionValue
//
// so a type switch over them is exhaustive.
type Value interface {
	Tag() Tag
	isValue()
}

type Empty struct{}

func (Empty) Tag() Tag { return EmptyTag }
func (Empty) isValue() {}

// Reference aliases another entry without owning it.
type Reference struct {
	target *Entry
}

func (Reference) Tag() Tag { return ReferenceTag }
func (Reference) isValue() {}

// Target returns the entry referred to, which may itself be a reference.
func (r Reference) Target() *Entry { return r.target }

type ObjectValue struct {
	Object Object
}

func (ObjectValue) Tag() Tag { return ObjectTag }
func (ObjectValue) isValue() {}

type ArrayValue struct {
	Array Array
}

func (ArrayValue) Tag() Tag { return ArrayTag }
func (ArrayValue) isValue() {}

type ExtensionValue struct {
	Extension Extension
}

func (ExtensionValue) Tag() Tag { return ExtensionTag }
func (ExtensionValue) isValue() {}
