package texture

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInvalidBlockMode  = errors.New("invalid block mode")
	ErrTruncatedInput    = errors.New("texture data truncated")
	ErrSurfaceTooSmall   = errors.New("destination surface too small")
	ErrUnsupportedFormat = errors.New("unsupported texture format")
)

// BlockError reports the block whose bits did not match any known layout.
type BlockError struct {
	X, Y int // block coordinates
	Mode uint8
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block (%d, %d): %v %d", e.X, e.Y, ErrInvalidBlockMode, e.Mode)
}

func (e *BlockError) Unwrap() error { return ErrInvalidBlockMode }

// Surface is a caller-owned BGRA8 pixel buffer. Rows are Stride bytes apart.
type Surface struct {
	Width, Height int
	Stride        int
	Pix           []byte
}

// NewSurface allocates a surface whose rows and columns are padded to a
// multiple of four, so block decoders can write whole blocks.
func NewSurface(width, height int) *Surface {
	w := blocks(width) * 4
	h := blocks(height) * 4
	return &Surface{
		Width:  width,
		Height: height,
		Stride: w * 4,
		Pix:    make([]byte, w*4*h),
	}
}

// PixOffset returns the index of the first byte of texel (x, y).
func (s *Surface) PixOffset(x, y int) int {
	return y*s.Stride + x*4
}

func blocks(n int) int {
	return (n + 3) / 4
}

// fits checks that s can hold w×h texels padded to whole blocks.
func (s *Surface) fits(width, height int) error {
	cols := blocks(width) * 4
	rows := blocks(height) * 4
	if width <= 0 || height <= 0 {
		return errors.Wrapf(ErrSurfaceTooSmall, "invalid size %dx%d", width, height)
	}
	if s.Stride < cols*4 || len(s.Pix) < (rows-1)*s.Stride+cols*4 {
		return errors.Wrapf(ErrSurfaceTooSmall, "need %dx%d texels, have stride %d and %d bytes",
			cols, rows, s.Stride, len(s.Pix))
	}
	return nil
}
