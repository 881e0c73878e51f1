package entry

import "fmt"

// Tag identifies the active variant of a Value.
type Tag int

const (
	EmptyTag Tag = iota
	ReferenceTag
	BlockTag
	ObjectTag
	ArrayTag
	ScalarTag
	ExtensionTag
)

func (t Tag) String() string {
	s, ok := map[Tag]string{
		EmptyTag:     "Empty",
		ReferenceTag: "Reference",
		BlockTag:     "Block",
		ObjectTag:    "Object",
		ArrayTag:     "Array",
		ScalarTag:    "Scalar",
		ExtensionTag: "Extension",
	}[t]
	if ok {
		return s
	}
	return "<unknown tag>"
}

func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Tag) UnmarshalText(d []byte) error {
	tt, ok := map[string]Tag{
		"Empty":     EmptyTag,
		"Reference": ReferenceTag,
		"Block":     BlockTag,
		"Object":    ObjectTag,
		"Array":     ArrayTag,
		"Scalar":    ScalarTag,
		"Extension": ExtensionTag,
	}[string(d)]
	if !ok {
		return fmt.Errorf("unrecognized tag %q", d)
	}
	*t = tt
	return nil
}

func Tags() []Tag {
	return []Tag{
		EmptyTag,
		ReferenceTag,
		BlockTag,
		ObjectTag,
		ArrayTag,
		ScalarTag,
		ExtensionTag,
	}
}

// IsLeaf reports whether values with tag t hold no child entries.
func (t Tag) IsLeaf() bool {
	switch t {
	case ObjectTag, ArrayTag, ReferenceTag:
		return false
	default:
		return true
	}
}
