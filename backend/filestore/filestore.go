// Package filestore implements backends which keep a whole tree in one
// file, read and written through a Codec.
package filestore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/debug"
	"github.com/signadot/spdb/entry"
)

// Codec converts between a tree and a file's bytes.
type Codec interface {
	// Name is used in logs and errors.
	Name() string
	Encode(e *entry.Entry) ([]byte, error)
	// Decode stores the document into into. When into holds an object
	// the document's top level keys are inserted into it.
	Decode(data []byte, into *entry.Entry) error
}

type Option func(*options)

type options struct {
	fs  billy.Filesystem
	log *slog.Logger
}

// WithFS makes locators name files in fs. Without it locators are paths
// in the host filesystem.
func WithFS(fs billy.Filesystem) Option {
	return func(o *options) { o.fs = fs }
}

// WithRoot makes locators relative to dir in the host filesystem.
func WithRoot(dir string) Option {
	return func(o *options) { o.fs = osfs.New(dir) }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.log = l }
}

// Store is an in-memory object which loads from and saves to one file.
type Store struct {
	*entry.MemObject
	codec Codec
	fs    billy.Filesystem
	abs   bool
	log   *slog.Logger
}

func New(self *entry.Entry, codec Codec, opts ...Option) *Store {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	s := &Store{
		MemObject: entry.NewObject(self),
		codec:     codec,
		fs:        o.fs,
		log:       o.log,
	}
	if s.fs == nil {
		s.fs = osfs.New("/")
		s.abs = true
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

// Factory returns a backend factory creating Stores with codec.
func Factory(codec Codec, opts ...Option) backend.ObjectFactory {
	return func(self *entry.Entry) (backend.Backend, error) {
		return New(self, codec, opts...), nil
	}
}

func (s *Store) path(locator string) (string, error) {
	if locator == "" {
		return "", fmt.Errorf("%s: empty file name", s.codec.Name())
	}
	if !s.abs {
		return locator, nil
	}
	return filepath.Abs(locator)
}

// Load replaces the children of s with the document in locator.
func (s *Store) Load(locator string) error {
	p, err := s.path(locator)
	if err != nil {
		return err
	}
	data, err := util.ReadFile(s.fs, p)
	if err != nil {
		return err
	}
	s.Clear()
	if err := s.codec.Decode(data, s.Self()); err != nil {
		return fmt.Errorf("decode %s %s: %w", s.codec.Name(), p, err)
	}
	if debug.Backend() {
		debug.Logf("%s: loaded %d bytes from %s\n", s.codec.Name(), len(data), p)
	}
	s.log.Debug("loaded file", "codec", s.codec.Name(), "path", p, "bytes", len(data))
	return nil
}

// Save writes the tree held by Self to locator, creating parent
// directories.
func (s *Store) Save(locator string) error {
	p, err := s.path(locator)
	if err != nil {
		return err
	}
	data, err := s.codec.Encode(s.Self())
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", s.codec.Name(), p, err)
	}
	if dir := filepath.Dir(p); dir != "." && dir != string(filepath.Separator) {
		if err := s.fs.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := util.WriteFile(s.fs, p, data, os.FileMode(0o644)); err != nil {
		return err
	}
	s.log.Debug("saved file", "codec", s.codec.Name(), "path", p, "bytes", len(data))
	return nil
}
