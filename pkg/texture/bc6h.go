package texture

import (
	"encoding/binary"

	"github.com/x448/float16"
)

// BC6HDecoder decodes unsigned BC6H (BPTC float) textures to LDR BGRA8.
type BC6HDecoder struct {
	width, height int
}

// NewBC6HDecoder returns a decoder for a width×height BC6H mip.
func NewBC6HDecoder(width, height int) *BC6HDecoder {
	return &BC6HDecoder{width: width, height: height}
}

// Decode consumes one 16-byte block per 4x4 texels, row-major, and writes
// every texel of every block with alpha 255. A block with a reserved mode
// fails the whole decode.
func (d *BC6HDecoder) Decode(dst *Surface, input []byte) error {
	if err := dst.fits(d.width, d.height); err != nil {
		return err
	}
	if err := blockInput(input, d.width, d.height, 16); err != nil {
		return err
	}

	var texels [16][3]uint8
	blocksW, blocksH := blocks(d.width), blocks(d.height)
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			off := (by*blocksW + bx) * 16
			b := bc6hBlock{
				lo: binary.LittleEndian.Uint64(input[off:]),
				hi: binary.LittleEndian.Uint64(input[off+8:]),
			}
			m := b.mode()
			if m == nil {
				return &BlockError{X: bx, Y: by, Mode: b.modeCode()}
			}
			b.decode(m, &texels)

			for i, c := range texels {
				pi := dst.PixOffset(bx*4+i%4, by*4+i/4)
				dst.Pix[pi+0] = c[2]
				dst.Pix[pi+1] = c[1]
				dst.Pix[pi+2] = c[0]
				dst.Pix[pi+3] = 255
			}
		}
	}
	return nil
}

// bc6hBlock is one 128-bit block; bit 0 is the lowest bit of lo.
type bc6hBlock struct {
	lo, hi uint64
}

// bits returns n (at most 32) bits starting at bit start.
func (b bc6hBlock) bits(start, n uint) uint32 {
	var v uint64
	switch {
	case start >= 64:
		v = b.hi >> (start - 64)
	case start+n > 64:
		v = b.lo>>start | b.hi<<(64-start)
	default:
		v = b.lo >> start
	}
	return uint32(v & (1<<n - 1))
}

func (b bc6hBlock) modeCode() uint8 {
	if code := uint8(b.lo & 0x3); code < 2 {
		return code
	}
	return uint8(b.lo & 0x1F)
}

func (b bc6hBlock) mode() *bc6hMode {
	return bc6hModes[b.modeCode()]
}

// rawEndpoints gathers the endpoint bits of m as stored, deltas included.
func (b bc6hBlock) rawEndpoints(m *bc6hMode) (ep [4][3]int) {
	for e := 0; e < m.endpointCount(); e++ {
		for c := 0; c < 3; c++ {
			var v uint32
			for _, run := range m.endpoints[e][c] {
				v |= b.bits(uint(run.src), uint(run.n)) << run.dst
			}
			ep[e][c] = int(v)
		}
	}
	return ep
}

// endpoints extracts the quantized endpoints of m and applies the delta
// transform.
func (b bc6hBlock) endpoints(m *bc6hMode) [4][3]int {
	ep := b.rawEndpoints(m)
	if m.transformed {
		mask := 1<<m.wBits - 1
		for e := 1; e < m.endpointCount(); e++ {
			for c := 0; c < 3; c++ {
				ep[e][c] = (ep[0][c] + signExtend(ep[e][c], m.deltaBits[c])) & mask
			}
		}
	}
	return ep
}

// partition returns the two-subset shape index.
func (b bc6hBlock) partition() int {
	return int(b.bits(77, 5))
}

// indices returns the per-texel weight indices. Anchor texels store one bit
// fewer; their implied top bit is zero.
func (b bc6hBlock) indices(m *bc6hMode) (idx [16]int) {
	if !m.twoSubsets {
		pos := uint(65)
		for i := range idx {
			n := uint(4)
			if i == 0 {
				n = 3
			}
			idx[i] = int(b.bits(pos, n))
			pos += n
		}
		return idx
	}

	anchor := int(bptcAnchors2[b.partition()])
	pos := uint(82)
	for i := range idx {
		n := uint(3)
		if i == 0 || i == anchor {
			n = 2
		}
		idx[i] = int(b.bits(pos, n))
		pos += n
	}
	return idx
}

func (b bc6hBlock) decode(m *bc6hMode, out *[16][3]uint8) {
	ep := b.endpoints(m)
	for e := range ep {
		for c := range ep[e] {
			ep[e][c] = unquantize(ep[e][c], m.wBits)
		}
	}

	idx := b.indices(m)
	var shape *[16]uint8
	if m.twoSubsets {
		shape = &bptcPartitions2[b.partition()]
	}

	for i := range out {
		subset, weight := 0, 0
		if shape != nil {
			subset = int(shape[i])
			weight = bptcWeights3[idx[i]]
		} else {
			weight = bptcWeights4[idx[i]]
		}
		a, z := ep[2*subset], ep[2*subset+1]
		for c := 0; c < 3; c++ {
			q := (a[c]*(64-weight) + z[c]*weight) >> 6
			out[i][c] = halfToByte(uint16((q * 31) >> 6))
		}
	}
}

// unquantize expands a wBits-wide endpoint component to 16 bits.
func unquantize(v int, wBits uint) int {
	switch {
	case v == 0:
		return 0
	case v == 1<<wBits-1:
		return 0xFFFF
	default:
		return (v<<16 + 0x8000) >> wBits
	}
}

func signExtend(v int, bits uint) int {
	if v&(1<<(bits-1)) != 0 {
		return v - 1<<bits
	}
	return v
}

// halfToByte maps a half-float bit pattern to a clamped 8-bit channel.
func halfToByte(h uint16) uint8 {
	f := float16.Frombits(h).Float32() * 255
	switch {
	case f <= 0:
		return 0
	case f >= 255:
		return 255
	default:
		return uint8(f)
	}
}
