package texture

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// DXGI_FORMAT values written to the DX10 header extension.
const (
	DXGI_FORMAT_UNKNOWN        = 0
	DXGI_FORMAT_R8G8B8A8_UNORM = 28
	DXGI_FORMAT_BC1_UNORM      = 71
	DXGI_FORMAT_BC3_UNORM      = 77
	DXGI_FORMAT_BC4_UNORM      = 80
	DXGI_FORMAT_BC5_UNORM      = 83
	DXGI_FORMAT_B8G8R8A8_UNORM = 87
	DXGI_FORMAT_BC6H_UF16      = 95
	DXGI_FORMAT_BC7_UNORM      = 98
	DXGI_FORMAT_R8_UNORM       = 61
)

// DXGIFormat maps a VTEX format to the DXGI format with the same memory
// layout, or DXGI_FORMAT_UNKNOWN.
func (f Format) DXGIFormat() uint32 {
	switch f {
	case FormatDXT1:
		return DXGI_FORMAT_BC1_UNORM
	case FormatDXT5:
		return DXGI_FORMAT_BC3_UNORM
	case FormatATI1N:
		return DXGI_FORMAT_BC4_UNORM
	case FormatATI2N:
		return DXGI_FORMAT_BC5_UNORM
	case FormatBC6H:
		return DXGI_FORMAT_BC6H_UF16
	case FormatBC7:
		return DXGI_FORMAT_BC7_UNORM
	case FormatRGBA8888:
		return DXGI_FORMAT_R8G8B8A8_UNORM
	case FormatBGRA8888:
		return DXGI_FORMAT_B8G8R8A8_UNORM
	case FormatI8:
		return DXGI_FORMAT_R8_UNORM
	default:
		return DXGI_FORMAT_UNKNOWN
	}
}

// DDS header constants
const (
	DDS_MAGIC                    = 0x20534444 // "DDS "
	DDS_HEADER_SIZE              = 124
	DDS_HEADER_FLAGS_CAPS        = 0x1
	DDS_HEADER_FLAGS_HEIGHT      = 0x2
	DDS_HEADER_FLAGS_WIDTH       = 0x4
	DDS_HEADER_FLAGS_PIXELFORMAT = 0x1000
	DDS_HEADER_FLAGS_MIPMAPCOUNT = 0x20000
	DDS_HEADER_FLAGS_LINEARSIZE  = 0x80000

	DDS_SURFACE_FLAGS_TEXTURE = 0x1000
	DDS_SURFACE_FLAGS_MIPMAP  = 0x400000

	DDS_PIXELFORMAT_SIZE = 32
	DDS_FOURCC           = 0x4

	DX10_FOURCC = 0x30315844 // "DX10"
)

// DDS returns the texture as a DDS file with a DX10 header, mips largest
// first. The pixel data is copied without decoding, so formats with no
// Decoder (BC7, ATI1N, ATI2N) can still be exported.
func (t *Texture) DDS(tail []byte) ([]byte, error) {
	dxgi := t.Format.DXGIFormat()
	if dxgi == DXGI_FORMAT_UNKNOWN {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "no DXGI format for %s", t.Format)
	}

	linearSize, err := t.MipSize(0)
	if err != nil {
		return nil, err
	}

	out := t.ddsHeader(dxgi, uint32(linearSize))
	for level := 0; level < int(t.MipLevels); level++ {
		data, err := t.MipData(tail, level)
		if err != nil {
			return nil, errors.Wrapf(err, "mip %d", level)
		}
		out = append(out, data...)
	}
	return out, nil
}

// ddsHeader builds magic, DDS_HEADER and the DX10 extension.
func (t *Texture) ddsHeader(dxgi, linearSize uint32) []byte {
	header := make([]byte, 4+DDS_HEADER_SIZE+20)
	le := binary.LittleEndian

	le.PutUint32(header[0:], DDS_MAGIC)
	le.PutUint32(header[4:], DDS_HEADER_SIZE)

	flags := uint32(DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH |
		DDS_HEADER_FLAGS_PIXELFORMAT | DDS_HEADER_FLAGS_LINEARSIZE)
	if t.MipLevels > 1 {
		flags |= DDS_HEADER_FLAGS_MIPMAPCOUNT
	}
	le.PutUint32(header[8:], flags)
	le.PutUint32(header[12:], uint32(t.Height))
	le.PutUint32(header[16:], uint32(t.Width))
	le.PutUint32(header[20:], linearSize)
	// depth at 24 stays zero for 2D textures
	le.PutUint32(header[28:], uint32(t.MipLevels))
	// 11 reserved dwords at 32

	// DDS_PIXELFORMAT at 76
	le.PutUint32(header[76:], DDS_PIXELFORMAT_SIZE)
	le.PutUint32(header[80:], DDS_FOURCC)
	le.PutUint32(header[84:], DX10_FOURCC)

	caps := uint32(DDS_SURFACE_FLAGS_TEXTURE)
	if t.MipLevels > 1 {
		caps |= DDS_SURFACE_FLAGS_MIPMAP
	}
	le.PutUint32(header[108:], caps)

	// DX10 extension at 128: format, TEXTURE2D, misc, array size, misc2
	le.PutUint32(header[128:], dxgi)
	le.PutUint32(header[132:], 3)
	le.PutUint32(header[140:], 1)
	return header
}
