package entry

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Extension is an application defined leaf value. Codecs persist an
// extension through encoding.TextMarshaler when it implements it, and read
// it back with the decoder registered under its ExtensionType.
type Extension interface {
	ExtensionType() string
}

// ExtensionDecoder rebuilds an extension from the text produced by its
// MarshalText method.
type ExtensionDecoder func(text []byte) (Extension, error)

var (
	extMu       sync.RWMutex
	extDecoders = map[string]ExtensionDecoder{}

	ErrExtensionExists  = errors.New("extension exists")
	ErrUnknownExtension = errors.New("unknown extension")
)

func RegisterExtension(name string, dec ExtensionDecoder) error {
	extMu.Lock()
	defer extMu.Unlock()
	if _, present := extDecoders[name]; present {
		return fmt.Errorf("%s: %w", name, ErrExtensionExists)
	}
	extDecoders[name] = dec
	return nil
}

func DecodeExtension(name string, text []byte) (Extension, error) {
	extMu.RLock()
	dec := extDecoders[name]
	extMu.RUnlock()
	if dec == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExtension, name)
	}
	return dec(text)
}

func Extensions() []string {
	extMu.RLock()
	defer extMu.RUnlock()
	res := make([]string, 0, len(extDecoders))
	for k := range extDecoders {
		res = append(res, k)
	}
	sort.Strings(res)
	return res
}
