// Package archive wraps compiled resources in a ZSTD frame for shipping.
//
// The frame is a 24-byte header followed by one zstd stream:
//
//	"ZSTD" | uint32 header length (16) | uint64 length | uint64 compressed length
package archive

import (
	"bytes"
	"encoding/binary"

	"github.com/pkg/errors"
)

// Magic identifies an archive.
var Magic = [4]byte{'Z', 'S', 'T', 'D'}

// HeaderSize is the encoded size of Header.
const HeaderSize = 24

// ErrNotArchive is returned when data does not start with a valid header.
var ErrNotArchive = errors.New("not a zstd archive")

type Header struct {
	Magic            [4]byte
	HeaderLength     uint32
	Length           uint64 // uncompressed
	CompressedLength uint64
}

// IsArchive reports whether prefix starts with the archive magic.
func IsArchive(prefix []byte) bool {
	return bytes.HasPrefix(prefix, Magic[:])
}

func (h *Header) Validate() error {
	if h.Magic != Magic {
		return errors.Wrapf(ErrNotArchive, "magic %q", h.Magic[:])
	}
	if h.HeaderLength != 16 {
		return errors.Errorf("header length %d, want 16", h.HeaderLength)
	}
	if h.Length == 0 || h.CompressedLength == 0 {
		return errors.Errorf("empty archive (length %d, compressed %d)", h.Length, h.CompressedLength)
	}
	return nil
}

// EncodeTo writes h into buf, which must hold HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint32(buf[4:8], h.HeaderLength)
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedLength)
}

func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// UnmarshalBinary decodes and validates a header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return errors.Wrapf(ErrNotArchive, "header needs %d bytes, have %d", HeaderSize, len(data))
	}
	copy(h.Magic[:], data[0:4])
	h.HeaderLength = binary.LittleEndian.Uint32(data[4:8])
	h.Length = binary.LittleEndian.Uint64(data[8:16])
	h.CompressedLength = binary.LittleEndian.Uint64(data[16:24])
	return h.Validate()
}

func newHeader(length, compressed uint64) *Header {
	return &Header{Magic: Magic, HeaderLength: 16, Length: length, CompressedLength: compressed}
}
