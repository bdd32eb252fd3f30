package binreader

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/pkg/errors"
)

func TestPrimitives(t *testing.T) {
	data := make([]byte, 0, 32)
	data = append(data, 0x7f)
	data = binary.LittleEndian.AppendUint16(data, 0xfffe)
	data = binary.LittleEndian.AppendUint32(data, 0xdeadbeef)
	data = binary.LittleEndian.AppendUint64(data, 0x0102030405060708)
	data = binary.LittleEndian.AppendUint32(data, math.Float32bits(1.5))

	c := New(data)

	b, err := c.Byte()
	if err != nil || b != 0x7f {
		t.Fatalf("Byte: got %x, %v", b, err)
	}
	i16, err := c.Int16()
	if err != nil || i16 != -2 {
		t.Fatalf("Int16: got %d, %v", i16, err)
	}
	u32, err := c.Uint32()
	if err != nil || u32 != 0xdeadbeef {
		t.Fatalf("Uint32: got %x, %v", u32, err)
	}
	u64, err := c.Uint64()
	if err != nil || u64 != 0x0102030405060708 {
		t.Fatalf("Uint64: got %x, %v", u64, err)
	}
	f, err := c.Float32()
	if err != nil || f != 1.5 {
		t.Fatalf("Float32: got %v, %v", f, err)
	}
	if c.Pos() != c.Len() {
		t.Errorf("Pos: got %d, want %d", c.Pos(), c.Len())
	}

	if _, err := c.Byte(); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("read past end: got %v, want ErrOutOfBounds", err)
	}
}

func TestCString(t *testing.T) {
	t.Run("Terminated", func(t *testing.T) {
		c := New([]byte("abc\x00def\x00"))
		s, err := c.CString()
		if err != nil || s != "abc" {
			t.Fatalf("got %q, %v", s, err)
		}
		if c.Pos() != 4 {
			t.Errorf("Pos: got %d, want 4", c.Pos())
		}
	})

	t.Run("InvalidUTF8", func(t *testing.T) {
		c := New([]byte{'a', 0xff, 'b', 0})
		s, err := c.CString()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if s != "a�b" {
			t.Errorf("got %q", s)
		}
	})

	t.Run("Unterminated", func(t *testing.T) {
		c := New([]byte("abc"))
		if _, err := c.CString(); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("got %v, want ErrOutOfBounds", err)
		}
	})
}

func TestAtRestoresPosition(t *testing.T) {
	c := New(make([]byte, 16))
	if err := c.Seek(4); err != nil {
		t.Fatal(err)
	}

	err := c.At(12, func() error {
		if c.Pos() != 12 {
			t.Errorf("inside At: got %d, want 12", c.Pos())
		}
		_, err := c.Uint64()
		return err
	})
	if !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("got %v, want ErrOutOfBounds", err)
	}
	if c.Pos() != 4 {
		t.Errorf("after failed At: got %d, want 4", c.Pos())
	}
}

func TestOffsetString(t *testing.T) {
	// offset field at 0 pointing 8 bytes ahead
	data := make([]byte, 8)
	binary.LittleEndian.PutUint32(data[0:], 8)
	data = append(data, "name\x00"...)

	c := New(data)
	s, err := c.OffsetString()
	if err != nil || s != "name" {
		t.Fatalf("got %q, %v", s, err)
	}
	if c.Pos() != 4 {
		t.Errorf("Pos: got %d, want 4", c.Pos())
	}

	t.Run("Zero", func(t *testing.T) {
		c := New(make([]byte, 4))
		s, err := c.OffsetString()
		if err != nil || s != "" {
			t.Errorf("got %q, %v", s, err)
		}
	})
}

func TestTable(t *testing.T) {
	c := New(make([]byte, 64))

	tests := []struct {
		name  string
		at    int64
		count uint32
		size  int64
		ok    bool
	}{
		{"Fits", 16, 4, 12, true},
		{"Exact", 0, 2, 32, true},
		{"Empty", 64, 0, 40, true},
		{"PastEnd", 16, 5, 12, false},
		{"HugeCount", 4, 0xFFFFFFFF, 40, false},
		{"Negative", -4, 1, 4, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Table(tt.at, tt.count, tt.size)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrOutOfBounds) {
				t.Errorf("err = %v, want ErrOutOfBounds", err)
			}
		})
	}
}
