package texture

import "encoding/binary"

// BC1Decoder decodes DXT1 textures.
type BC1Decoder struct {
	width, height int
}

func NewBC1Decoder(width, height int) *BC1Decoder {
	return &BC1Decoder{width: width, height: height}
}

// BC3Decoder decodes DXT5 textures: a BC1 color block preceded by an
// interpolated alpha block.
type BC3Decoder struct {
	width, height int
}

func NewBC3Decoder(width, height int) *BC3Decoder {
	return &BC3Decoder{width: width, height: height}
}

func (d *BC1Decoder) Decode(dst *Surface, input []byte) error {
	if err := dst.fits(d.width, d.height); err != nil {
		return err
	}
	if err := blockInput(input, d.width, d.height, 8); err != nil {
		return err
	}

	blocksW, blocksH := blocks(d.width), blocks(d.height)
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			off := (by*blocksW + bx) * 8
			colors := colorPalette(input[off:], true)
			writeColorBlock(dst, bx, by, colors, binary.LittleEndian.Uint32(input[off+4:]), nil)
		}
	}
	return nil
}

func (d *BC3Decoder) Decode(dst *Surface, input []byte) error {
	if err := dst.fits(d.width, d.height); err != nil {
		return err
	}
	if err := blockInput(input, d.width, d.height, 16); err != nil {
		return err
	}

	blocksW, blocksH := blocks(d.width), blocks(d.height)
	for by := 0; by < blocksH; by++ {
		for bx := 0; bx < blocksW; bx++ {
			off := (by*blocksW + bx) * 16
			alphas := alphaPalette(input[off], input[off+1])

			var alphaIndices uint64
			for i := 0; i < 6; i++ {
				alphaIndices |= uint64(input[off+2+i]) << (i * 8)
			}
			var alpha [16]uint8
			for i := range alpha {
				alpha[i] = alphas[(alphaIndices>>(3*i))&7]
			}

			colors := colorPalette(input[off+8:], false)
			writeColorBlock(dst, bx, by, colors, binary.LittleEndian.Uint32(input[off+12:]), &alpha)
		}
	}
	return nil
}

// colorPalette expands the two RGB565 endpoints at b into the four block
// colors. BC1 blocks with c0 <= c1 use the three-color mode with a
// transparent fourth entry.
func colorPalette(b []byte, punchThrough bool) [4][4]uint8 {
	c0 := binary.LittleEndian.Uint16(b)
	c1 := binary.LittleEndian.Uint16(b[2:])
	r0, g0, b0 := rgb565(c0)
	r1, g1, b1 := rgb565(c1)

	var colors [4][4]uint8
	colors[0] = [4]uint8{uint8(r0), uint8(g0), uint8(b0), 255}
	colors[1] = [4]uint8{uint8(r1), uint8(g1), uint8(b1), 255}
	if c0 > c1 || !punchThrough {
		colors[2] = [4]uint8{uint8((2*r0 + r1) / 3), uint8((2*g0 + g1) / 3), uint8((2*b0 + b1) / 3), 255}
		colors[3] = [4]uint8{uint8((r0 + 2*r1) / 3), uint8((g0 + 2*g1) / 3), uint8((b0 + 2*b1) / 3), 255}
	} else {
		colors[2] = [4]uint8{uint8((r0 + r1) / 2), uint8((g0 + g1) / 2), uint8((b0 + b1) / 2), 255}
		colors[3] = [4]uint8{0, 0, 0, 0}
	}
	return colors
}

func rgb565(c uint16) (r, g, b int) {
	r5 := int(c>>11) & 0x1F
	g6 := int(c>>5) & 0x3F
	b5 := int(c) & 0x1F
	return r5<<3 | r5>>2, g6<<2 | g6>>4, b5<<3 | b5>>2
}

func alphaPalette(a0, a1 uint8) [8]uint8 {
	var alphas [8]uint8
	alphas[0] = a0
	alphas[1] = a1
	if a0 > a1 {
		for i := 2; i < 8; i++ {
			alphas[i] = uint8((int(a0)*(8-i) + int(a1)*(i-1)) / 7)
		}
	} else {
		for i := 2; i < 6; i++ {
			alphas[i] = uint8((int(a0)*(6-i) + int(a1)*(i-1)) / 5)
		}
		alphas[6] = 0
		alphas[7] = 255
	}
	return alphas
}

func writeColorBlock(dst *Surface, bx, by int, colors [4][4]uint8, indices uint32, alpha *[16]uint8) {
	for i := 0; i < 16; i++ {
		c := colors[(indices>>(2*i))&3]
		pi := dst.PixOffset(bx*4+i%4, by*4+i/4)
		dst.Pix[pi+0] = c[2]
		dst.Pix[pi+1] = c[1]
		dst.Pix[pi+2] = c[0]
		if alpha != nil {
			dst.Pix[pi+3] = alpha[i]
		} else {
			dst.Pix[pi+3] = c[3]
		}
	}
}
