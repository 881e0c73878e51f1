package entry

import (
	"errors"
	"fmt"

	"github.com/signadot/spdb/entry/xpath"
)

var (
	ErrTypeMismatch    = errors.New("type mismatch")
	ErrNotFound        = errors.New("not found")
	ErrOutOfRange      = errors.New("out of range")
	ErrCyclicReference = errors.New("cyclic reference")
)

// PathError records the segment of a path at which navigation failed.
type PathError struct {
	Path  xpath.Path
	Index int
	Err   error
}

func (e *PathError) Error() string {
	if e.Index < 0 || e.Index >= e.Path.Len() {
		return fmt.Sprintf("path %q: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("path %q at segment %d (%s): %v", e.Path, e.Index, e.Path.Segment(e.Index), e.Err)
}

func (e *PathError) Unwrap() error { return e.Err }

func mismatch(want, have Tag) error {
	return fmt.Errorf("%w: want %s, have %s", ErrTypeMismatch, want, have)
}
