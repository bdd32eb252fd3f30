// Package binreader provides a seekable little-endian cursor over an
// in-memory resource buffer.
//
// A Cursor never mutates the buffer it reads. Offsets stored in Source 2
// resources are relative to the position of the field holding them, so most
// callers read an offset with Offset and then jump with At or Seek.
package binreader

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

// ErrOutOfBounds is returned when a read or seek leaves the buffer.
var ErrOutOfBounds = errors.New("read out of bounds")

// Cursor reads primitive values from a byte slice at a movable position.
type Cursor struct {
	data []byte
	pos  int64
}

// New returns a cursor positioned at the start of data.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// Len returns the size of the underlying buffer.
func (c *Cursor) Len() int64 {
	return int64(len(c.data))
}

// Pos returns the current position.
func (c *Cursor) Pos() int64 {
	return c.pos
}

// Seek moves the cursor to an absolute position. Seeking to Len is allowed.
func (c *Cursor) Seek(pos int64) error {
	if pos < 0 || pos > int64(len(c.data)) {
		return errors.Wrapf(ErrOutOfBounds, "seek to 0x%x (size 0x%x)", pos, len(c.data))
	}
	c.pos = pos
	return nil
}

// Skip advances the cursor by n bytes (n may be negative).
func (c *Cursor) Skip(n int64) error {
	return c.Seek(c.pos + n)
}

// At runs fn with the cursor moved to pos and restores the previous
// position afterwards, whatever fn returns.
func (c *Cursor) At(pos int64, fn func() error) error {
	saved := c.pos
	defer func() { c.pos = saved }()

	if err := c.Seek(pos); err != nil {
		return err
	}
	return fn()
}

func (c *Cursor) take(n int) ([]byte, error) {
	if n < 0 || c.pos+int64(n) > int64(len(c.data)) {
		return nil, errors.Wrapf(ErrOutOfBounds, "read %d bytes at 0x%x (size 0x%x)", n, c.pos, len(c.data))
	}
	b := c.data[c.pos : c.pos+int64(n)]
	c.pos += int64(n)
	return b, nil
}

// Bytes returns the next n bytes. The slice aliases the buffer.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	return c.take(n)
}

func (c *Cursor) Byte() (byte, error) {
	b, err := c.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (c *Cursor) Int16() (int16, error) {
	v, err := c.Uint16()
	return int16(v), err
}

func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

func (c *Cursor) Uint64() (uint64, error) {
	b, err := c.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (c *Cursor) Int64() (int64, error) {
	v, err := c.Uint64()
	return int64(v), err
}

func (c *Cursor) Float32() (float32, error) {
	v, err := c.Uint32()
	return math.Float32frombits(v), err
}

// Float32s reads n consecutive float32 values.
func (c *Cursor) Float32s(n int) ([]float32, error) {
	out := make([]float32, n)
	for i := range out {
		v, err := c.Float32()
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// CString reads a null-terminated UTF-8 string and leaves the cursor after
// the terminator. Invalid UTF-8 sequences are replaced with U+FFFD.
func (c *Cursor) CString() (string, error) {
	if c.pos >= int64(len(c.data)) {
		return "", errors.Wrapf(ErrOutOfBounds, "string at 0x%x", c.pos)
	}
	rest := c.data[c.pos:]
	end := bytes.IndexByte(rest, 0)
	if end < 0 {
		return "", errors.Wrapf(ErrOutOfBounds, "unterminated string at 0x%x", c.pos)
	}
	c.pos += int64(end) + 1

	s, err := unicode.UTF8.NewDecoder().Bytes(rest[:end])
	if err != nil {
		return "", errors.Wrapf(err, "decode string at 0x%x", c.pos)
	}
	return string(s), nil
}

// Offset reads a uint32 offset stored relative to its own position and
// returns the absolute target. A zero offset yields target 0 and ok false.
func (c *Cursor) Offset() (target int64, ok bool, err error) {
	field := c.pos
	off, err := c.Uint32()
	if err != nil {
		return 0, false, err
	}
	if off == 0 {
		return 0, false, nil
	}
	return field + int64(off), true, nil
}

// OffsetString reads a relative offset and the null-terminated string it
// points to. The cursor ends just after the offset field.
func (c *Cursor) OffsetString() (string, error) {
	target, ok, err := c.Offset()
	if err != nil || !ok {
		return "", err
	}

	var s string
	err = c.At(target, func() error {
		var err error
		s, err = c.CString()
		return err
	})
	return s, err
}

// Table checks that count entries of size bytes starting at at fit inside
// the buffer. Callers check before allocating for a count read from the file.
func (c *Cursor) Table(at int64, count uint32, size int64) error {
	end := at + int64(count)*size
	if at < 0 || end > int64(len(c.data)) {
		return errors.Wrapf(ErrOutOfBounds, "table of %d x %d bytes at 0x%x (size 0x%x)", count, size, at, len(c.data))
	}
	return nil
}
