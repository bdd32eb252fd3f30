package texture

import "github.com/pkg/errors"

// linearDecoder copies texels of an uncompressed format into the surface,
// converting each one with swizzle.
type linearDecoder struct {
	width, height int
	bpp           int
	swizzle       func(dst, src []byte)
}

func NewRGBA8888Decoder(width, height int) Decoder {
	return &linearDecoder{width: width, height: height, bpp: 4, swizzle: func(dst, src []byte) {
		dst[0], dst[1], dst[2], dst[3] = src[2], src[1], src[0], src[3]
	}}
}

func NewBGRA8888Decoder(width, height int) Decoder {
	return &linearDecoder{width: width, height: height, bpp: 4, swizzle: func(dst, src []byte) {
		copy(dst[:4], src[:4])
	}}
}

// NewI8Decoder decodes 8-bit intensity textures to opaque gray.
func NewI8Decoder(width, height int) Decoder {
	return &linearDecoder{width: width, height: height, bpp: 1, swizzle: func(dst, src []byte) {
		dst[0], dst[1], dst[2], dst[3] = src[0], src[0], src[0], 255
	}}
}

func (d *linearDecoder) Decode(dst *Surface, input []byte) error {
	if err := dst.fits(d.width, d.height); err != nil {
		return err
	}
	if need := d.width * d.height * d.bpp; len(input) < need {
		return errors.Wrapf(ErrTruncatedInput, "need %d bytes for %dx%d, have %d", need, d.width, d.height, len(input))
	}

	for y := 0; y < d.height; y++ {
		row := input[y*d.width*d.bpp:]
		for x := 0; x < d.width; x++ {
			pi := dst.PixOffset(x, y)
			d.swizzle(dst.Pix[pi:pi+4], row[x*d.bpp:])
		}
	}
	return nil
}
