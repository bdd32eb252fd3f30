package archive

import (
	"bytes"
	"io"
	"math"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// maxPrealloc caps the buffer allocated up front from a header's Length.
// Larger content still decodes; the buffer grows as data arrives.
const maxPrealloc = 64 << 20

// Reader streams the decompressed content of an archive.
type Reader struct {
	header  Header
	zReader io.ReadCloser
}

// NewReader reads and validates the header from r.
func NewReader(r io.Reader) (*Reader, error) {
	var buf [HeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, errors.Wrap(err, "read archive header")
	}

	reader := &Reader{}
	if err := reader.header.UnmarshalBinary(buf[:]); err != nil {
		return nil, err
	}
	reader.zReader = zstd.NewReader(r)
	return reader, nil
}

func (r *Reader) Header() Header { return r.header }

func (r *Reader) Read(p []byte) (int, error) { return r.zReader.Read(p) }

func (r *Reader) Close() error { return r.zReader.Close() }

// ReadAll decompresses the whole archive read from r.
func ReadAll(r io.Reader) ([]byte, error) {
	reader, err := NewReader(r)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	length := reader.header.Length
	buf := bytes.NewBuffer(make([]byte, 0, min(length, maxPrealloc)))
	if _, err := buf.ReadFrom(io.LimitReader(reader, int64(min(length, math.MaxInt64)))); err != nil {
		return nil, errors.Wrap(err, "read archive content")
	}
	if uint64(buf.Len()) != length {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "archive content is %d bytes, header says %d", buf.Len(), length)
	}
	return buf.Bytes(), nil
}

// Unwrap decompresses an archive held in memory. Callers decoding many
// archives on one goroutine can pass a reused zstd.Ctx; nil allocates one.
func Unwrap(ctx zstd.Ctx, data []byte) ([]byte, error) {
	var h Header
	if err := h.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	if h.CompressedLength > uint64(len(data)-HeaderSize) {
		return nil, errors.Errorf("archive truncated: need %d compressed bytes, have %d", h.CompressedLength, len(data)-HeaderSize)
	}
	end := HeaderSize + h.CompressedLength
	if ctx == nil {
		ctx = zstd.NewCtx()
	}

	out, err := ctx.Decompress(make([]byte, 0, min(h.Length, maxPrealloc)), data[HeaderSize:end])
	if err != nil {
		return nil, errors.Wrap(err, "decompress archive")
	}
	if uint64(len(out)) != h.Length {
		return nil, errors.Errorf("archive decompressed to %d bytes, header says %d", len(out), h.Length)
	}
	return out, nil
}
