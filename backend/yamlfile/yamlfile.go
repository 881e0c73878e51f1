// Package yamlfile stores trees as YAML documents.
package yamlfile

import (
	"github.com/goccy/go-yaml"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/backend/filestore"
	"github.com/signadot/spdb/entry"
	"github.com/signadot/spdb/jsonany"
)

const Name = "yaml"

type Codec struct{}

func (Codec) Name() string { return Name }

func (Codec) Encode(e *entry.Entry) ([]byte, error) {
	v, err := jsonany.ToAny(e)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(v)
}

func (Codec) Decode(data []byte, into *entry.Entry) error {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return err
	}
	return jsonany.FromAny(v, into)
}

// Register adds the yaml backend to reg, also claiming ".yml" files.
func Register(reg *backend.Registry, opts ...filestore.Option) error {
	return reg.Register(Name, filestore.Factory(Codec{}, opts...), backend.WithPatterns(`\.yml$`))
}
