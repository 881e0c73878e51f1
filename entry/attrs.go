package entry

import (
	"strings"

	"github.com/signadot/spdb/cursor"
)

// AttrPrefix marks object keys holding attributes rather than children.
const AttrPrefix = "@"

// IsAttrKey reports whether key names an attribute.
func IsAttrKey(key string) bool { return strings.HasPrefix(key, AttrPrefix) }

// SetAttribute stores s as attribute name of e, promoting e to an object.
func (e *Entry) SetAttribute(name string, s Scalar) error {
	o, err := e.AsObject()
	if err != nil {
		return err
	}
	if err := o.Insert(AttrPrefix + name).SetScalar(s); err != nil {
		return err
	}
	e.Update()
	return nil
}

// Attribute returns the attribute name of e.
func (e *Entry) Attribute(name string) (Scalar, error) {
	o, err := e.GetObject()
	if err != nil {
		return Scalar{}, err
	}
	c, err := o.At(AttrPrefix + name)
	if err != nil {
		return Scalar{}, err
	}
	return c.GetScalar()
}

// RemoveAttribute erases attribute name of e.
func (e *Entry) RemoveAttribute(name string) error {
	o, err := e.GetObject()
	if err != nil {
		return err
	}
	if err := o.Erase(AttrPrefix + name); err != nil {
		return err
	}
	e.Update()
	return nil
}

// Attributes returns the attribute names of e without the prefix. It is
// empty unless e resolves to an object.
func (e *Entry) Attributes() cursor.Cursor[string] {
	o, err := e.GetObject()
	if err != nil {
		return cursor.Empty[string]()
	}
	attrs := cursor.Filter(o.Items(), func(it Item) bool { return IsAttrKey(it.Key) })
	return cursor.Map(attrs, func(it Item) string { return strings.TrimPrefix(it.Key, AttrPrefix) })
}
