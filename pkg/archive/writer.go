package archive

import (
	"io"

	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// DefaultCompressionLevel favours packing speed.
const DefaultCompressionLevel = zstd.BestSpeed

// Writer compresses into dst and patches the header on Close.
type Writer struct {
	dst     io.WriteSeeker
	start   int64
	zWriter *zstd.Writer
	header  *Header
	level   int
}

type WriterOption func(*Writer)

func WithCompressionLevel(level int) WriterOption {
	return func(w *Writer) {
		w.level = level
	}
}

// NewWriter writes a placeholder header for length uncompressed bytes.
func NewWriter(dst io.WriteSeeker, length uint64, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		dst:    dst,
		level:  DefaultCompressionLevel,
		header: newHeader(length, 0),
	}
	for _, opt := range opts {
		opt(w)
	}

	start, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "locate header")
	}
	w.start = start

	buf, _ := w.header.MarshalBinary()
	if _, err := dst.Write(buf); err != nil {
		return nil, errors.Wrap(err, "write header")
	}
	w.zWriter = zstd.NewWriterLevel(dst, w.level)
	return w, nil
}

func (w *Writer) Write(p []byte) (int, error) {
	return w.zWriter.Write(p)
}

// Close flushes the stream and rewrites the header with the compressed size.
func (w *Writer) Close() error {
	if err := w.zWriter.Close(); err != nil {
		return errors.Wrap(err, "close compressor")
	}

	end, err := w.dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "locate end")
	}
	w.header.CompressedLength = uint64(end - w.start - HeaderSize)

	if _, err := w.dst.Seek(w.start, io.SeekStart); err != nil {
		return errors.Wrap(err, "seek header")
	}
	buf, _ := w.header.MarshalBinary()
	if _, err := w.dst.Write(buf); err != nil {
		return errors.Wrap(err, "rewrite header")
	}
	_, err = w.dst.Seek(end, io.SeekStart)
	return errors.Wrap(err, "seek end")
}

// Encode writes data to dst as one archive.
func Encode(dst io.WriteSeeker, data []byte, opts ...WriterOption) error {
	w, err := NewWriter(dst, uint64(len(data)), opts...)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return errors.Wrap(err, "compress")
	}
	return w.Close()
}

// Wrap returns data as an in-memory archive.
func Wrap(data []byte, level int) ([]byte, error) {
	compressed, err := zstd.CompressLevel(nil, data, level)
	if err != nil {
		return nil, errors.Wrap(err, "compress")
	}
	out := make([]byte, HeaderSize, HeaderSize+len(compressed))
	newHeader(uint64(len(data)), uint64(len(compressed))).EncodeTo(out)
	return append(out, compressed...), nil
}
