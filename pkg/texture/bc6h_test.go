package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"testing"
)

// refBlock is a mode 0, partition 0 block taken from a game texture.
var refBlock = bc6hBlock{lo: 0x00020078C89639C0, hi: 0x00000007000C0002}

func blockBytes(bs ...bc6hBlock) []byte {
	out := make([]byte, 0, 16*len(bs))
	for _, b := range bs {
		out = binary.LittleEndian.AppendUint64(out, b.lo)
		out = binary.LittleEndian.AppendUint64(out, b.hi)
	}
	return out
}

func TestBC6HReferenceBlock(t *testing.T) {
	m := refBlock.mode()
	if m == nil || m.code != 0 {
		t.Fatalf("mode = %v, want code 0", m)
	}
	if p := refBlock.partition(); p != 0 {
		t.Fatalf("partition = %d, want 0", p)
	}

	t.Run("Endpoints", func(t *testing.T) {
		want := [4][3]int{
			{29600, 19232, 6432},
			{30560, 18208, 6432},
			{29664, 19232, 6432},
			{29600, 19232, 6432},
		}
		ep := refBlock.endpoints(m)
		for e := range ep {
			for c := range ep[e] {
				ep[e][c] = unquantize(ep[e][c], m.wBits)
			}
		}
		if ep != want {
			t.Errorf("endpoints = %v, want %v", ep, want)
		}
	})

	t.Run("Pixels", func(t *testing.T) {
		a := [4]uint8{0, 3, 152, 255}
		b := [4]uint8{0, 4, 127, 255}
		c := [4]uint8{0, 3, 185, 255}
		d := [4]uint8{0, 4, 131, 255}
		want := [16][4]uint8{
			a, b, d, d,
			b, c, d, d,
			b, b, d, d,
			b, b, d, d,
		}

		s := NewSurface(4, 4)
		if err := NewBC6HDecoder(4, 4).Decode(s, blockBytes(refBlock)); err != nil {
			t.Fatalf("Decode: %v", err)
		}
		for i, w := range want {
			pi := s.PixOffset(i%4, i/4)
			var got [4]uint8
			copy(got[:], s.Pix[pi:pi+4])
			if got != w {
				t.Errorf("texel %d = %v, want %v", i, got, w)
			}
		}
	})
}

func TestUnquantize(t *testing.T) {
	for _, wBits := range []uint{7, 9, 10, 11, 12, 16} {
		if got := unquantize(0, wBits); got != 0 {
			t.Errorf("unquantize(0, %d) = %d", wBits, got)
		}
		if got := unquantize(1<<wBits-1, wBits); got != 0xFFFF {
			t.Errorf("unquantize(max, %d) = %#x", wBits, got)
		}
		for _, v := range []int{1, 2, 1<<(wBits-1) + 3} {
			if want := (v<<16 + 0x8000) >> wBits; unquantize(v, wBits) != want {
				t.Errorf("unquantize(%d, %d) = %d, want %d", v, wBits, unquantize(v, wBits), want)
			}
		}
	}
}

func TestBC6HModeLayouts(t *testing.T) {
	for _, m := range bc6hModeList {
		used := make([]int, 128)
		for i := 0; i < int(m.modeBits); i++ {
			used[i]++
		}
		for e := 0; e < m.endpointCount(); e++ {
			for c := 0; c < 3; c++ {
				width := m.wBits
				if e > 0 && m.transformed {
					width = m.deltaBits[c]
				}
				dst := make([]int, width)
				for _, r := range m.endpoints[e][c] {
					for k := 0; k < int(r.n); k++ {
						used[int(r.src)+k]++
						if int(r.dst)+k >= len(dst) {
							t.Fatalf("mode %d endpoint %d/%d: bit %d past width %d", m.code, e, c, int(r.dst)+k, width)
						}
						dst[int(r.dst)+k]++
					}
				}
				for bit, n := range dst {
					if n != 1 {
						t.Errorf("mode %d endpoint %d/%d: component bit %d written %d times", m.code, e, c, bit, n)
					}
				}
			}
		}
		first := 65
		if m.twoSubsets {
			first = 77
		}
		for i := first; i < 128; i++ {
			used[i]++
		}
		for bit, n := range used {
			if n != 1 {
				t.Errorf("mode %d: block bit %d used %d times", m.code, bit, n)
			}
		}
		if bc6hModes[m.code] == nil {
			t.Errorf("mode %d not indexed", m.code)
		}
	}
}

// placement says block bit src lands in bit dst of component c of
// endpoint e (0 w, 1 x, 2 y, 3 z).
type placement struct{ src, e, c, dst int }

func TestBC6HModeBitPlacement(t *testing.T) {
	tests := []struct {
		code  uint8
		cases []placement
	}{
		{0, []placement{
			{5, 0, 0, 0}, {34, 0, 2, 9}, {65, 2, 0, 0}, {75, 3, 0, 4},
			{2, 2, 1, 4}, {64, 2, 2, 3}, {3, 2, 2, 4}, {40, 3, 1, 4},
			{50, 3, 2, 0}, {60, 3, 2, 1}, {70, 3, 2, 2}, {76, 3, 2, 3}, {4, 3, 2, 4},
		}},
		{1, []placement{
			{11, 0, 0, 6}, {40, 1, 0, 5}, {24, 2, 1, 4}, {2, 2, 1, 5},
			{14, 2, 2, 4}, {22, 2, 2, 5}, {3, 3, 1, 4}, {4, 3, 1, 5},
			{12, 3, 2, 0}, {13, 3, 2, 1}, {23, 3, 2, 2}, {32, 3, 2, 3}, {34, 3, 2, 4}, {33, 3, 2, 5},
		}},
		{2, []placement{
			{40, 0, 0, 10}, {49, 0, 1, 10}, {59, 0, 2, 10}, {39, 1, 0, 4},
			{64, 2, 2, 3}, {50, 3, 2, 0}, {76, 3, 2, 3},
		}},
		{6, []placement{
			{39, 0, 0, 10}, {50, 0, 1, 10}, {59, 0, 2, 10}, {49, 1, 1, 4},
			{75, 2, 1, 4}, {40, 3, 1, 4}, {69, 3, 2, 0}, {60, 3, 2, 1},
		}},
		{10, []placement{
			{39, 0, 0, 10}, {49, 0, 1, 10}, {60, 0, 2, 10}, {59, 1, 2, 4},
			{40, 2, 2, 4}, {50, 3, 2, 0}, {69, 3, 2, 1}, {76, 3, 2, 3}, {75, 3, 2, 4},
		}},
		{14, []placement{
			{13, 0, 0, 8}, {24, 2, 1, 4}, {14, 2, 2, 4}, {40, 3, 1, 4}, {34, 3, 2, 4},
		}},
		{18, []placement{
			{40, 1, 0, 5}, {70, 2, 0, 5}, {76, 3, 0, 5}, {24, 2, 1, 4}, {14, 2, 2, 4},
			{13, 3, 1, 4}, {23, 3, 2, 2}, {33, 3, 2, 3}, {34, 3, 2, 4},
		}},
		{22, []placement{
			{50, 1, 1, 5}, {24, 2, 1, 4}, {23, 2, 1, 5}, {14, 2, 2, 4},
			{40, 3, 1, 4}, {33, 3, 1, 5}, {13, 3, 2, 0}, {34, 3, 2, 4},
		}},
		{26, []placement{
			{60, 1, 2, 5}, {24, 2, 1, 4}, {14, 2, 2, 4}, {23, 2, 2, 5},
			{40, 3, 1, 4}, {50, 3, 2, 0}, {13, 3, 2, 1}, {34, 3, 2, 4}, {33, 3, 2, 5},
		}},
		{30, []placement{
			{10, 0, 0, 5}, {40, 1, 0, 5}, {24, 2, 1, 4}, {21, 2, 1, 5},
			{63, 2, 2, 2}, {64, 2, 2, 3}, {14, 2, 2, 4}, {22, 2, 2, 5},
			{11, 3, 1, 4}, {31, 3, 1, 5}, {12, 3, 2, 0}, {13, 3, 2, 1},
			{23, 3, 2, 2}, {32, 3, 2, 3}, {34, 3, 2, 4}, {33, 3, 2, 5},
		}},
		{3, []placement{
			{34, 0, 2, 9}, {44, 1, 0, 9}, {63, 1, 2, 8}, {64, 1, 2, 9},
		}},
		{7, []placement{
			{44, 0, 0, 10}, {54, 0, 1, 10}, {64, 0, 2, 10}, {43, 1, 0, 8}, {63, 1, 2, 8},
		}},
		{11, []placement{
			{44, 0, 0, 10}, {43, 0, 0, 11}, {54, 0, 1, 10}, {53, 0, 1, 11},
			{64, 0, 2, 10}, {63, 0, 2, 11}, {42, 1, 0, 7},
		}},
		{15, []placement{
			{44, 0, 0, 10}, {39, 0, 0, 15}, {49, 0, 1, 15}, {62, 0, 2, 12},
			{59, 0, 2, 15}, {35, 1, 0, 0}, {38, 1, 0, 3},
		}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("Mode%d", tt.code), func(t *testing.T) {
			m := bc6hModes[tt.code]
			if m == nil {
				t.Fatalf("mode %d not indexed", tt.code)
			}
			for _, p := range tt.cases {
				b := bc6hBlock{lo: uint64(tt.code)}
				if p.src < 64 {
					b.lo |= 1 << p.src
				} else {
					b.hi |= 1 << (p.src - 64)
				}
				if b.mode() != m {
					t.Fatalf("bit %d changed the mode", p.src)
				}

				var want [4][3]int
				want[p.e][p.c] = 1 << p.dst
				if got := b.rawEndpoints(m); got != want {
					t.Errorf("bit %d: endpoints %v, want %v", p.src, got, want)
				}
			}
		})
	}
}

func TestBC6HIndexWidths(t *testing.T) {
	t.Run("OneSubset", func(t *testing.T) {
		b := bc6hBlock{lo: 3, hi: 0xF << 1}
		idx := b.indices(bc6hModes[3])
		if idx[0] != 7 || idx[1] != 1 {
			t.Errorf("idx[0], idx[1] = %d, %d; want 7, 1", idx[0], idx[1])
		}
	})

	tests := []struct {
		partition uint64
		anchor    int
	}{
		{0, 15},
		{17, 2},
		{18, 8},
	}
	for _, tt := range tests {
		b := bc6hBlock{hi: 0xFFFFFFFFFFFC0000 | tt.partition<<13}
		if p := b.partition(); p != int(tt.partition) {
			t.Fatalf("partition = %d, want %d", p, tt.partition)
		}
		idx := b.indices(bc6hModes[0])
		for i, v := range idx {
			want := 7
			if i == 0 || i == tt.anchor {
				want = 3
			}
			if v != want {
				t.Errorf("partition %d: idx[%d] = %d, want %d", tt.partition, i, v, want)
			}
		}
	}
}

func TestBC6HZeroBlocks(t *testing.T) {
	for _, m := range bc6hModeList {
		s := NewSurface(4, 4)
		for i := range s.Pix {
			s.Pix[i] = 0xAA
		}
		if err := NewBC6HDecoder(4, 4).Decode(s, blockBytes(bc6hBlock{lo: uint64(m.code)})); err != nil {
			t.Fatalf("mode %d: %v", m.code, err)
		}
		for i := 0; i < 16; i++ {
			pi := s.PixOffset(i%4, i/4)
			if px := s.Pix[pi : pi+4]; px[0] != 0 || px[1] != 0 || px[2] != 0 || px[3] != 255 {
				t.Errorf("mode %d texel %d = %v", m.code, i, px)
			}
		}
	}
}

func TestBC6HSaturates(t *testing.T) {
	// mode 3, red of the first endpoint at full scale, every index zero
	b := bc6hBlock{lo: 3 | 0x3FF<<5}
	s := NewSurface(4, 4)
	if err := NewBC6HDecoder(4, 4).Decode(s, blockBytes(b)); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 16; i++ {
		pi := s.PixOffset(i%4, i/4)
		if px := s.Pix[pi : pi+4]; px[0] != 0 || px[1] != 0 || px[2] != 255 || px[3] != 255 {
			t.Errorf("texel %d = %v, want [0 0 255 255]", i, px)
		}
	}
}

func TestBC6HDecodeSurface(t *testing.T) {
	// 5x5 needs 2x2 blocks; the padding texels are written too.
	s := NewSurface(5, 5)
	input := blockBytes(refBlock, refBlock, refBlock, refBlock)
	if err := NewBC6HDecoder(5, 5).Decode(s, input); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			pi := s.PixOffset(x, y)
			if s.Pix[pi+3] != 255 {
				t.Fatalf("texel (%d, %d) alpha = %d", x, y, s.Pix[pi+3])
			}
		}
	}
	first := s.Pix[s.PixOffset(0, 0):][:4]
	other := s.Pix[s.PixOffset(4, 4):][:4]
	if string(first) != string(other) {
		t.Errorf("block (1, 1) texel 0 = %v, want %v", other, first)
	}
}

func TestBC6HErrors(t *testing.T) {
	t.Run("ReservedMode", func(t *testing.T) {
		input := blockBytes(refBlock, bc6hBlock{lo: 19})
		err := NewBC6HDecoder(8, 4).Decode(NewSurface(8, 4), input)
		if !errors.Is(err, ErrInvalidBlockMode) {
			t.Fatalf("err = %v, want ErrInvalidBlockMode", err)
		}
		var be *BlockError
		if !errors.As(err, &be) || be.X != 1 || be.Y != 0 || be.Mode != 19 {
			t.Errorf("BlockError = %+v", be)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		err := NewBC6HDecoder(8, 8).Decode(NewSurface(8, 8), make([]byte, 63))
		if !errors.Is(err, ErrTruncatedInput) {
			t.Errorf("err = %v, want ErrTruncatedInput", err)
		}
	})

	t.Run("SurfaceTooSmall", func(t *testing.T) {
		err := NewBC6HDecoder(8, 8).Decode(NewSurface(4, 4), make([]byte, 64))
		if !errors.Is(err, ErrSurfaceTooSmall) {
			t.Errorf("err = %v, want ErrSurfaceTooSmall", err)
		}
	})

	for _, code := range []uint64{19, 23, 27, 31} {
		if m := (bc6hBlock{lo: code}).mode(); m != nil {
			t.Errorf("code %d resolved to mode %d", code, m.code)
		}
	}
}

func BenchmarkBC6HDecode(b *testing.B) {
	const size = 256
	n := (size / 4) * (size / 4)
	bs := make([]bc6hBlock, n)
	for i := range bs {
		bs[i] = refBlock
	}
	input := blockBytes(bs...)
	dec := NewBC6HDecoder(size, size)
	s := NewSurface(size, size)

	b.SetBytes(int64(len(input)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := dec.Decode(s, input); err != nil {
			b.Fatal(err)
		}
	}
}
