// Package jsonfile stores trees as JSON documents.
package jsonfile

import (
	"github.com/ohler55/ojg/oj"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/backend/filestore"
	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/jsonany"
)

const Name = "json"

// Codec reads and writes JSON with the tagged forms of package jsonany.
type Codec struct {
	// Indent is the number of spaces per level; 0 writes one line.
	Indent int
}

func (Codec) Name() string { return Name }

func (c Codec) Encode(e *entry.Entry) ([]byte, error) {
	v, err := jsonany.ToAny(e)
	if err != nil {
		return nil, err
	}
	d, err := oj.Marshal(v, &oj.Options{Indent: c.Indent, Sort: true})
	if err != nil {
		return nil, err
	}
	return append(d, '\n'), nil
}

func (Codec) Decode(data []byte, into *entry.Entry) error {
	v, err := oj.Parse(data)
	if err != nil {
		return err
	}
	return jsonany.FromAny(v, into)
}

// Register adds the json backend to reg.
func Register(reg *backend.Registry, opts ...filestore.Option) error {
	return reg.Register(Name, filestore.Factory(Codec{Indent: 2}, opts...))
}
