// Package all registers every file and database backend on a registry.
package all

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/backend/binfile"
	"github.com/signadot/spdb/backend/filestore"
	"github.com/signadot/spdb/backend/hclfile"
	"github.com/signadot/spdb/backend/jsonfile"
	"github.com/signadot/spdb/backend/sqlitedb"
	"github.com/signadot/spdb/backend/yamlfile"
)

type Options struct {
	// FS holds the files of the file backends. Nil means the host
	// filesystem.
	FS     billy.Filesystem
	Logger *slog.Logger
}

// Names lists the backends registered by Register, besides mem.
var Names = []string{jsonfile.Name, yamlfile.Name, hclfile.Name, binfile.Name, sqlitedb.Name}

func Register(reg *backend.Registry, opts Options) error {
	var fopts []filestore.Option
	if opts.FS != nil {
		fopts = append(fopts, filestore.WithFS(opts.FS))
	}
	var sopts []sqlitedb.Option
	if opts.Logger != nil {
		fopts = append(fopts, filestore.WithLogger(opts.Logger))
		sopts = append(sopts, sqlitedb.WithLogger(opts.Logger))
		reg.SetLogger(opts.Logger)
	}
	for _, f := range []func() error{
		func() error { return jsonfile.Register(reg, fopts...) },
		func() error { return yamlfile.Register(reg, fopts...) },
		func() error { return hclfile.Register(reg, fopts...) },
		func() error { return binfile.Register(reg, fopts...) },
		func() error { return sqlitedb.Register(reg, sopts...) },
	} {
		if err := f(); err != nil {
			return fmt.Errorf("register backends: %w", err)
		}
	}
	return nil
}

// NewRegistry returns a registry with mem and every backend of Register.
func NewRegistry(opts Options) (*backend.Registry, error) {
	reg := backend.NewRegistry()
	if err := Register(reg, opts); err != nil {
		return nil, err
	}
	return reg, nil
}
