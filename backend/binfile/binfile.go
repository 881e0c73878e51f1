// Package binfile stores trees in a compact binary format.
//
// A file starts with a 12 byte header:
//
//	magic   "SPDB"
//	version uint16 little endian
//	flags   uint16, bit 0 set when the body is zstd compressed
//	crc     uint32 IEEE checksum of the uncompressed body
//
// The body is one encoded node. A node is a tag byte followed by its
// payload; lengths and counts are uvarints.
package binfile

import (
	"errors"
	"fmt"
	"hash/crc32"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/signadot/spdb/backend"
	"github.com/signadot/spdb/backend/filestore"
	"github.com/signadot/spdb/entry"
)

const (
	Name = "spb"

	magic      = "SPDB"
	version    = 1
	headerSize = 12

	flagZstd = 1
)

var (
	ErrFormat   = errors.New("bad spb data")
	ErrChecksum = errors.New("spb checksum mismatch")
)

// Codec reads and writes the binary format.
type Codec struct {
	// Raw disables compression on write.
	Raw bool
}

func (Codec) Name() string { return Name }

var (
	zOnce sync.Once
	zEnc  *zstd.Encoder
	zDec  *zstd.Decoder
	zErr  error
)

func coders() (*zstd.Encoder, *zstd.Decoder, error) {
	zOnce.Do(func() {
		zEnc, zErr = zstd.NewWriter(nil)
		if zErr != nil {
			return
		}
		zDec, zErr = zstd.NewReader(nil)
	})
	return zEnc, zDec, zErr
}

func (c Codec) Encode(e *entry.Entry) ([]byte, error) {
	w := &writer{base: e.Path()}
	if err := w.node(e); err != nil {
		return nil, err
	}
	var flags uint16
	body := w.buf
	if !c.Raw {
		enc, _, err := coders()
		if err != nil {
			return nil, err
		}
		body = enc.EncodeAll(w.buf, nil)
		flags |= flagZstd
	}
	out := make([]byte, 0, headerSize+len(body))
	out = append(out, magic...)
	out = le.AppendUint16(out, version)
	out = le.AppendUint16(out, flags)
	out = le.AppendUint32(out, crc32.ChecksumIEEE(w.buf))
	return append(out, body...), nil
}

func (Codec) Decode(data []byte, into *entry.Entry) error {
	if len(data) < headerSize || string(data[:4]) != magic {
		return fmt.Errorf("%w: missing header", ErrFormat)
	}
	if v := le.Uint16(data[4:]); v != version {
		return fmt.Errorf("%w: version %d", ErrFormat, v)
	}
	flags := le.Uint16(data[6:])
	sum := le.Uint32(data[8:])
	body := data[headerSize:]
	if flags&flagZstd != 0 {
		_, dec, err := coders()
		if err != nil {
			return err
		}
		if body, err = dec.DecodeAll(body, nil); err != nil {
			return fmt.Errorf("%w: %w", ErrFormat, err)
		}
	}
	if crc32.ChecksumIEEE(body) != sum {
		return ErrChecksum
	}
	r := &reader{buf: body}
	if err := r.node(into); err != nil {
		return err
	}
	if r.off != len(r.buf) {
		return fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(r.buf)-r.off)
	}
	return r.resolve(into)
}

// Register adds the spb backend to reg.
func Register(reg *backend.Registry, opts ...filestore.Option) error {
	return reg.Register(Name, filestore.Factory(Codec{}, opts...))
}
