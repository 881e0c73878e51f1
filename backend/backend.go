package backend

import (
	"errors"

	"github.com/signadot/spdb/entry"
)

var (
	ErrUnknownBackend = errors.New("unknown backend")
	ErrBackendIO      = errors.New("backend i/o")
)

// Backend is an Object which can populate itself from, and persist its
// owning entry to, external storage named by a locator.
type Backend interface {
	entry.Object
	// Load replaces the content of the object with what is stored at
	// locator.
	Load(locator string) error
	// Save persists the content of Self() to locator.
	Save(locator string) error
}

// ObjectFactory creates a backend object bound to self. The object is not
// installed on self.
type ObjectFactory func(self *entry.Entry) (Backend, error)

// ArrayFactory creates an array bound to self.
type ArrayFactory func(self *entry.Entry) (entry.Array, error)
