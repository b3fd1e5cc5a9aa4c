// Package reader provides the buffered, positional byte-stream reader the
// snapshot decoder is built on: exact-length reads, cheap single-byte peek,
// and a running cursor position so callers can report how far into the
// stream a structural error occurred.
package reader

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// Reader wraps an io.Reader with the primitive operations the snapshot
// decoder needs. It never rewinds arbitrarily far: Peek only looks one
// byte ahead.
type Reader struct {
	br  *bufio.Reader
	pos int64
}

// New wraps src in a Reader with a reasonably large buffer; snapshot
// entries routinely exceed the bufio default.
func New(src io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(src, 64*1024)}
}

// Position returns the number of bytes consumed so far.
func (r *Reader) Position() int64 {
	return r.pos
}

// ReadExact reads exactly n bytes or returns an error. A short read at
// any point other than a clean EOF is reported as io.ErrUnexpectedEOF.
func (r *Reader) ReadExact(n int) ([]byte, error) {
	if n == 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	read, err := io.ReadFull(r.br, buf)
	r.pos += int64(read)
	if err != nil {
		if err == io.EOF && read == 0 {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("short read at offset %d: wanted %d bytes, got %d: %w", r.pos-int64(read), n, read, err)
	}
	return buf, nil
}

// ReadU8 reads a single byte.
func (r *Reader) ReadU8() (byte, error) {
	b, err := r.br.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// Peek returns the next byte without consuming it. It isn't valid after a
// short read.
func (r *Reader) Peek() (byte, error) {
	buf, err := r.br.Peek(1)
	if err != nil {
		return 0, err
	}
	return buf[0], nil
}

// Skip discards n bytes.
func (r *Reader) Skip(n int) error {
	_, err := r.ReadExact(n)
	return err
}

// ReadLEU16 reads a little-endian uint16.
func (r *Reader) ReadLEU16() (uint16, error) {
	b, err := r.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadLEU32 reads a little-endian uint32.
func (r *Reader) ReadLEU32() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadLEU64 reads a little-endian uint64.
func (r *Reader) ReadLEU64() (uint64, error) {
	b, err := r.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadBEU16 reads a big-endian uint16.
func (r *Reader) ReadBEU16() (uint16, error) {
	b, err := r.ReadExact(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadBEU32 reads a big-endian uint32.
func (r *Reader) ReadBEU32() (uint32, error) {
	b, err := r.ReadExact(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// ReadBEU64 reads a big-endian uint64.
func (r *Reader) ReadBEU64() (uint64, error) {
	b, err := r.ReadExact(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}
