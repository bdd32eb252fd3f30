// Package texture reads Source 2 texture resources (VTEX DATA blocks) and
// decodes their mip levels into BGRA8 surfaces.
//
// Block codecs share the Decoder contract: BC6H is decoded to LDR, and the
// DXT1/DXT5 and uncompressed decoders plug into the same interface. Formats
// without a decoder can still be exported as DDS.
package texture

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"

	"github.com/goopsie/s2FileTools/pkg/binreader"
)

// Format is the VTEX pixel format.
type Format uint8

const (
	FormatUnknown       Format = 0
	FormatDXT1          Format = 1
	FormatDXT5          Format = 2
	FormatI8            Format = 3
	FormatRGBA8888      Format = 4
	FormatR16           Format = 5
	FormatRG1616        Format = 6
	FormatRGBA16161616  Format = 7
	FormatR16F          Format = 8
	FormatRG1616F       Format = 9
	FormatRGBA16161616F Format = 10
	FormatR32F          Format = 11
	FormatRG3232F       Format = 12
	FormatRGB323232F    Format = 13
	FormatRGBA32323232F Format = 14
	FormatJPEGRGBA8888  Format = 15
	FormatPNGRGBA8888   Format = 16
	FormatJPEGDXT5      Format = 17
	FormatPNGDXT5       Format = 18
	FormatBC6H          Format = 19
	FormatBC7           Format = 20
	FormatATI2N         Format = 21
	FormatIA88          Format = 22
	FormatETC2          Format = 23
	FormatETC2EAC       Format = 24
	FormatR11EAC        Format = 25
	FormatRG11EAC       Format = 26
	FormatATI1N         Format = 27
	FormatBGRA8888      Format = 28
)

var formatNames = map[Format]string{
	FormatDXT1:          "DXT1",
	FormatDXT5:          "DXT5",
	FormatI8:            "I8",
	FormatRGBA8888:      "RGBA8888",
	FormatR16:           "R16",
	FormatRG1616:        "RG1616",
	FormatRGBA16161616:  "RGBA16161616",
	FormatR16F:          "R16F",
	FormatRG1616F:       "RG1616F",
	FormatRGBA16161616F: "RGBA16161616F",
	FormatR32F:          "R32F",
	FormatRG3232F:       "RG3232F",
	FormatRGB323232F:    "RGB323232F",
	FormatRGBA32323232F: "RGBA32323232F",
	FormatJPEGRGBA8888:  "JPEG_RGBA8888",
	FormatPNGRGBA8888:   "PNG_RGBA8888",
	FormatJPEGDXT5:      "JPEG_DXT5",
	FormatPNGDXT5:       "PNG_DXT5",
	FormatBC6H:          "BC6H",
	FormatBC7:           "BC7",
	FormatATI2N:         "ATI2N",
	FormatIA88:          "IA88",
	FormatETC2:          "ETC2",
	FormatETC2EAC:       "ETC2_EAC",
	FormatR11EAC:        "R11_EAC",
	FormatRG11EAC:       "RG11_EAC",
	FormatATI1N:         "ATI1N",
	FormatBGRA8888:      "BGRA8888",
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(f))
}

// BlockSize returns the bytes per 4x4 block for block-compressed formats
// and the bytes per texel otherwise. Image-file formats return 0.
func (f Format) BlockSize() (size int, compressed bool) {
	switch f {
	case FormatDXT1, FormatATI1N, FormatETC2, FormatR11EAC:
		return 8, true
	case FormatDXT5, FormatBC6H, FormatBC7, FormatATI2N, FormatETC2EAC, FormatRG11EAC:
		return 16, true
	case FormatI8:
		return 1, false
	case FormatR16, FormatR16F, FormatIA88:
		return 2, false
	case FormatRGBA8888, FormatBGRA8888, FormatRG1616, FormatRG1616F, FormatR32F:
		return 4, false
	case FormatRGBA16161616, FormatRGBA16161616F, FormatRG3232F:
		return 8, false
	case FormatRGB323232F:
		return 12, false
	case FormatRGBA32323232F:
		return 16, false
	default:
		return 0, false
	}
}

const extraDataCompressedMipSize = 4

// lz4MaxRatio bounds how far one LZ4 block can expand.
const lz4MaxRatio = 255

// Texture is a parsed VTEX DATA block.
type Texture struct {
	Version      uint16
	Flags        uint16
	Reflectivity [4]float32
	Width        uint16
	Height       uint16
	Depth        uint16
	Format       Format
	MipLevels    uint8
	Picmip0Res   uint32

	// CompressedMips holds the stored size of each mip level, largest
	// first, when mips are LZ4 compressed.
	CompressedMips []int32
}

// ParseHeader decodes a VTEX DATA block.
func ParseHeader(data []byte) (*Texture, error) {
	c := binreader.New(data)
	t := &Texture{}

	var err error
	read16 := func(dst *uint16) {
		if err == nil {
			*dst, err = c.Uint16()
		}
	}
	read16(&t.Version)
	read16(&t.Flags)
	for i := range t.Reflectivity {
		if err == nil {
			t.Reflectivity[i], err = c.Float32()
		}
	}
	read16(&t.Width)
	read16(&t.Height)
	read16(&t.Depth)
	if err != nil {
		return nil, errors.Wrap(err, "read texture header")
	}

	format, err := c.Byte()
	if err != nil {
		return nil, errors.Wrap(err, "read format")
	}
	t.Format = Format(format)
	if t.MipLevels, err = c.Byte(); err != nil {
		return nil, errors.Wrap(err, "read mip levels")
	}
	if t.Picmip0Res, err = c.Uint32(); err != nil {
		return nil, errors.Wrap(err, "read picmip0 resolution")
	}

	extraAt, _, err := c.Offset()
	if err != nil {
		return nil, errors.Wrap(err, "read extra data offset")
	}
	extraCount, err := c.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "read extra data count")
	}

	if t.Version != 1 {
		return nil, errors.Errorf("unknown texture version %d", t.Version)
	}

	for i := uint32(0); i < extraCount; i++ {
		if err := c.Seek(extraAt + int64(i)*12); err != nil {
			return nil, errors.Wrapf(err, "seek extra data %d", i)
		}
		if err := t.readExtraData(c); err != nil {
			return nil, errors.Wrapf(err, "extra data %d", i)
		}
	}
	return t, nil
}

func (t *Texture) readExtraData(c *binreader.Cursor) error {
	typ, err := c.Uint32()
	if err != nil {
		return err
	}
	at, _, err := c.Offset()
	if err != nil {
		return err
	}
	if typ != extraDataCompressedMipSize {
		return nil
	}

	return c.At(at, func() error {
		if err := c.Skip(8); err != nil {
			return err
		}
		count, err := c.Int32()
		if err != nil {
			return err
		}
		if count < 0 || count > 32 {
			return errors.Errorf("bad compressed mip count %d", count)
		}
		t.CompressedMips = make([]int32, count)
		for i := range t.CompressedMips {
			if t.CompressedMips[i], err = c.Int32(); err != nil {
				return err
			}
			if t.CompressedMips[i] < 0 {
				return errors.Errorf("negative compressed size %d for mip %d", t.CompressedMips[i], i)
			}
		}
		return nil
	})
}

// MipDimensions returns the texel size of mip level.
func (t *Texture) MipDimensions(level int) (width, height, depth int) {
	width = max(1, int(t.Width)>>level)
	height = max(1, int(t.Height)>>level)
	depth = max(1, int(t.Depth)>>level)
	return width, height, depth
}

// MipSize returns the decompressed byte size of mip level.
func (t *Texture) MipSize(level int) (int, error) {
	size, compressed := t.Format.BlockSize()
	if size == 0 {
		return 0, errors.Wrapf(ErrUnsupportedFormat, "no fixed mip size for %s", t.Format)
	}
	w, h, d := t.MipDimensions(level)
	if compressed {
		return blocks(w) * blocks(h) * size * d, nil
	}
	return w * h * size * d, nil
}

// storedSize is the on-disk size of mip level.
func (t *Texture) storedSize(level int) (int, error) {
	if level < len(t.CompressedMips) {
		if n := t.CompressedMips[level]; n >= 0 {
			return int(n), nil
		}
		return 0, errors.Errorf("negative compressed size %d for mip %d", t.CompressedMips[level], level)
	}
	return t.MipSize(level)
}

// MipData returns the decompressed bytes of mip level. tail holds the
// resource bytes following the DATA block, where mips are stored smallest
// first.
func (t *Texture) MipData(tail []byte, level int) ([]byte, error) {
	if level < 0 || level >= int(t.MipLevels) {
		return nil, errors.Errorf("mip level %d out of range (%d levels)", level, t.MipLevels)
	}

	offset := 0
	for l := int(t.MipLevels) - 1; l > level; l-- {
		n, err := t.storedSize(l)
		if err != nil {
			return nil, err
		}
		offset += n
	}

	stored, err := t.storedSize(level)
	if err != nil {
		return nil, err
	}
	size, err := t.MipSize(level)
	if err != nil {
		return nil, err
	}
	if offset+stored > len(tail) {
		return nil, errors.Wrapf(ErrTruncatedInput, "mip %d needs bytes %d..%d, have %d", level, offset, offset+stored, len(tail))
	}
	src := tail[offset : offset+stored]

	if stored >= size {
		return src[:size], nil
	}

	if size > stored*lz4MaxRatio {
		return nil, errors.Errorf("mip %d: %d bytes cannot decompress to %d", level, stored, size)
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(src, out)
	if err != nil {
		return nil, errors.Wrapf(err, "decompress mip %d", level)
	}
	if n != size {
		return nil, errors.Errorf("mip %d decompressed to %d bytes, want %d", level, n, size)
	}
	return out, nil
}

// Decode decodes mip level into a new surface.
func (t *Texture) Decode(tail []byte, level int) (*Surface, error) {
	w, h, _ := t.MipDimensions(level)
	dec, err := DecoderFor(t.Format, w, h)
	if err != nil {
		return nil, err
	}
	data, err := t.MipData(tail, level)
	if err != nil {
		return nil, err
	}

	s := NewSurface(w, h)
	if err := dec.Decode(s, data); err != nil {
		return nil, errors.Wrapf(err, "decode %s mip %d", t.Format, level)
	}
	return s, nil
}

func (t *Texture) String() string {
	return fmt.Sprintf("Texture: %dx%dx%d, %d mips, format=%s, flags=0x%x",
		t.Width, t.Height, t.Depth, t.MipLevels, t.Format, t.Flags)
}
