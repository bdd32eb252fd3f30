package texture

import "github.com/pkg/errors"

// Decoder decodes one mip level of a texture into a caller-owned surface.
// Decoders hold only the texture dimensions, so one value may be shared by
// goroutines that each pass their own surface and input.
type Decoder interface {
	Decode(dst *Surface, input []byte) error
}

// DecoderFor returns the decoder for textures of format f.
func DecoderFor(f Format, width, height int) (Decoder, error) {
	switch f {
	case FormatBC6H:
		return NewBC6HDecoder(width, height), nil
	case FormatDXT1:
		return NewBC1Decoder(width, height), nil
	case FormatDXT5:
		return NewBC3Decoder(width, height), nil
	case FormatRGBA8888:
		return NewRGBA8888Decoder(width, height), nil
	case FormatBGRA8888:
		return NewBGRA8888Decoder(width, height), nil
	case FormatI8:
		return NewI8Decoder(width, height), nil
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%s", f)
	}
}

// blockInput checks that input holds every block of a width×height texture.
func blockInput(input []byte, width, height, blockSize int) error {
	need := blocks(width) * blocks(height) * blockSize
	if len(input) < need {
		return errors.Wrapf(ErrTruncatedInput, "need %d bytes for %dx%d, have %d", need, width, height, len(input))
	}
	return nil
}
