package archive

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestHeader(t *testing.T) {
	t.Run("MarshalUnmarshal", func(t *testing.T) {
		original := newHeader(1024, 512)
		data, err := original.MarshalBinary()
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		var decoded Header
		if err := decoded.UnmarshalBinary(data); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if decoded != *original {
			t.Errorf("got %+v, want %+v", decoded, *original)
		}
	})

	tests := []struct {
		name       string
		header     Header
		notArchive bool
	}{
		{"InvalidMagic", Header{HeaderLength: 16, Length: 1, CompressedLength: 1}, true},
		{"HeaderLength", Header{Magic: Magic, HeaderLength: 8, Length: 1, CompressedLength: 1}, false},
		{"ZeroLength", Header{Magic: Magic, HeaderLength: 16, CompressedLength: 512}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.header.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if got := errors.Is(err, ErrNotArchive); got != tt.notArchive {
				t.Errorf("errors.Is(ErrNotArchive) = %v", got)
			}
		})
	}

	t.Run("Short", func(t *testing.T) {
		var h Header
		if err := h.UnmarshalBinary([]byte("ZSTD")); !errors.Is(err, ErrNotArchive) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestIsArchive(t *testing.T) {
	if !IsArchive([]byte("ZSTD\x10\x00")) {
		t.Error("ZSTD prefix not detected")
	}
	if IsArchive([]byte("ZST")) || IsArchive([]byte{0x34, 0x12, 0xAA, 0x55}) {
		t.Error("false positive")
	}
}

// resourceBytes stands in for a compiled resource file.
func resourceBytes() []byte {
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 13)
	}
	return data
}

func TestReadWrite(t *testing.T) {
	original := resourceBytes()

	t.Run("EncodeReadAll", func(t *testing.T) {
		ws := &seekableBuffer{Buffer: &bytes.Buffer{}}
		if err := Encode(ws, original); err != nil {
			t.Fatalf("encode: %v", err)
		}

		decoded, err := ReadAll(bytes.NewReader(ws.Bytes()))
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !bytes.Equal(decoded, original) {
			t.Error("data mismatch")
		}
	})

	t.Run("HeaderPatchedAtOffset", func(t *testing.T) {
		ws := &seekableBuffer{Buffer: &bytes.Buffer{}}
		if _, err := ws.Write([]byte("prefix")); err != nil {
			t.Fatal(err)
		}
		if err := Encode(ws, original, WithCompressionLevel(3)); err != nil {
			t.Fatalf("encode: %v", err)
		}

		var h Header
		if err := h.UnmarshalBinary(ws.Bytes()[6:]); err != nil {
			t.Fatalf("header: %v", err)
		}
		if want := uint64(ws.Len() - 6 - HeaderSize); h.CompressedLength != want {
			t.Errorf("compressed length = %d, want %d", h.CompressedLength, want)
		}
	})

	t.Run("WrapUnwrap", func(t *testing.T) {
		wrapped, err := Wrap(original, DefaultCompressionLevel)
		if err != nil {
			t.Fatal(err)
		}
		if !IsArchive(wrapped) {
			t.Fatal("wrapped data lacks magic")
		}
		decoded, err := Unwrap(nil, wrapped)
		if err != nil {
			t.Fatalf("unwrap: %v", err)
		}
		if !bytes.Equal(decoded, original) {
			t.Error("data mismatch")
		}

		if _, err := Unwrap(nil, wrapped[:len(wrapped)-1]); err == nil {
			t.Error("truncated archive: expected error")
		}
	})

	t.Run("Stream", func(t *testing.T) {
		wrapped, err := Wrap(original, DefaultCompressionLevel)
		if err != nil {
			t.Fatal(err)
		}
		r, err := NewReader(bytes.NewReader(wrapped))
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		if r.Header().Length != uint64(len(original)) {
			t.Errorf("length = %d", r.Header().Length)
		}
		got, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, original) {
			t.Error("data mismatch")
		}
	})
}

type seekableBuffer struct {
	*bytes.Buffer
	pos int64
}

func (s *seekableBuffer) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
		s.pos = offset
	case io.SeekCurrent:
		s.pos += offset
	case io.SeekEnd:
		s.pos = int64(s.Buffer.Len()) + offset
	}
	return s.pos, nil
}

func (s *seekableBuffer) Write(p []byte) (n int, err error) {
	for int64(s.Buffer.Len()) < s.pos {
		s.Buffer.WriteByte(0)
	}
	if s.pos < int64(s.Buffer.Len()) {
		n = copy(s.Buffer.Bytes()[s.pos:], p)
		if n < len(p) {
			m, err := s.Buffer.Write(p[n:])
			n += m
			if err != nil {
				return n, err
			}
		}
	} else {
		n, err = s.Buffer.Write(p)
	}
	s.pos += int64(n)
	return n, err
}

func TestHostileHeaders(t *testing.T) {
	wrapped, err := Wrap(resourceBytes(), DefaultCompressionLevel)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		header *Header
		body   []byte
	}{
		{"CompressedLengthWraps", newHeader(4096, ^uint64(0)), make([]byte, 40)},
		{"CompressedLengthPastEnd", newHeader(4096, 41), make([]byte, 40)},
		{"HugeLength", newHeader(^uint64(0), uint64(len(wrapped)-HeaderSize)), wrapped[HeaderSize:]},
		{"LengthTooLong", newHeader(4097, uint64(len(wrapped)-HeaderSize)), wrapped[HeaderSize:]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, _ := tt.header.MarshalBinary()
			data = append(data, tt.body...)

			if _, err := Unwrap(nil, data); err == nil {
				t.Error("Unwrap: expected error")
			}
			if _, err := ReadAll(bytes.NewReader(data)); err == nil {
				t.Error("ReadAll: expected error")
			}
		})
	}
}
