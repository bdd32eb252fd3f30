// Package resource reads the compiled Source 2 resource container: a small
// header, a table of typed blocks, and the blocks themselves.
package resource

import (
	"fmt"
	"os"

	"github.com/pkg/errors"

	"github.com/goopsie/s2FileTools/pkg/archive"
	"github.com/goopsie/s2FileTools/pkg/binreader"
	"github.com/goopsie/s2FileTools/pkg/schema"
)

// HeaderVersion is the only container version in use.
const HeaderVersion = 12

const (
	magicVPK    = 0x55AA1234
	magicShader = 0x32736376 // "vcs2"
)

const (
	blockEntrySize     = 12
	referenceEntrySize = 16
)

var (
	ErrNotResource  = errors.New("not a compiled resource")
	ErrMissingBlock = errors.New("block not present")
)

// Block is one entry of the block table. Offset is absolute.
type Block struct {
	Type   string
	Offset int64
	Size   int64
}

func (b Block) String() string {
	return fmt.Sprintf("%s @ %d (%d bytes)", b.Type, b.Offset, b.Size)
}

// Resource is a parsed container. Data is the whole file and Blocks are
// in file order.
type Resource struct {
	FileSize      uint32
	HeaderVersion uint16
	Version       uint16
	Blocks        []Block

	Data []byte
}

// Open reads path, unwrapping it first when it is a zstd archive.
func Open(path string) (*Resource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return r, nil
}

// Parse reads the header and block table of data.
func Parse(data []byte) (*Resource, error) {
	if archive.IsArchive(data) {
		unwrapped, err := archive.Unwrap(nil, data)
		if err != nil {
			return nil, err
		}
		data = unwrapped
	}

	c := binreader.New(data)
	r := &Resource{Data: data}

	var err error
	if r.FileSize, err = c.Uint32(); err != nil {
		return nil, errors.Wrap(ErrNotResource, "file too short")
	}
	switch r.FileSize {
	case magicVPK:
		return nil, errors.Wrap(ErrNotResource, "file is a VPK package")
	case magicShader:
		return nil, errors.Wrap(ErrNotResource, "file is a compiled shader")
	}

	if r.HeaderVersion, err = c.Uint16(); err != nil {
		return nil, errors.Wrap(ErrNotResource, "file too short")
	}
	if r.HeaderVersion != HeaderVersion {
		return nil, errors.Wrapf(ErrNotResource, "header version %d, want %d", r.HeaderVersion, HeaderVersion)
	}
	if r.Version, err = c.Uint16(); err != nil {
		return nil, errors.Wrap(err, "read version")
	}

	tableAt, _, err := c.Offset()
	if err != nil {
		return nil, errors.Wrap(err, "read block table offset")
	}
	count, err := c.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "read block count")
	}
	if err := c.Table(tableAt, count, blockEntrySize); err != nil {
		return nil, errors.Wrap(err, "block table")
	}
	if err := c.Seek(tableAt); err != nil {
		return nil, errors.Wrap(err, "seek block table")
	}

	r.Blocks = make([]Block, 0, count)
	for i := uint32(0); i < count; i++ {
		b, err := readBlock(c)
		if err != nil {
			return nil, errors.Wrapf(err, "block %d", i)
		}
		if b.Offset+b.Size > int64(len(data)) {
			return nil, errors.Wrapf(binreader.ErrOutOfBounds, "block %s ends at %d, file is %d bytes",
				b.Type, b.Offset+b.Size, len(data))
		}
		r.Blocks = append(r.Blocks, b)
	}
	return r, nil
}

func readBlock(c *binreader.Cursor) (Block, error) {
	typ, err := c.Bytes(4)
	if err != nil {
		return Block{}, err
	}
	at, _, err := c.Offset()
	if err != nil {
		return Block{}, err
	}
	size, err := c.Uint32()
	if err != nil {
		return Block{}, err
	}
	return Block{Type: string(typ), Offset: at, Size: int64(size)}, nil
}

// Find returns the first block of type typ.
func (r *Resource) Find(typ string) (Block, error) {
	for _, b := range r.Blocks {
		if b.Type == typ {
			return b, nil
		}
	}
	return Block{}, errors.Wrapf(ErrMissingBlock, "%s", typ)
}

// Block returns the bytes of the first block of type typ.
func (r *Resource) Block(typ string) ([]byte, error) {
	b, err := r.Find(typ)
	if err != nil {
		return nil, err
	}
	return r.Data[b.Offset : b.Offset+b.Size], nil
}

// Tail returns the bytes following block typ. Textures keep their mips
// there.
func (r *Resource) Tail(typ string) ([]byte, error) {
	b, err := r.Find(typ)
	if err != nil {
		return nil, err
	}
	return r.Data[b.Offset+b.Size:], nil
}

// Manifest parses the NTRO block.
func (r *Resource) Manifest() (*schema.Manifest, error) {
	data, err := r.Block("NTRO")
	if err != nil {
		return nil, err
	}
	return schema.ParseManifest(data)
}

// ExternalReferences parses the RERL block into id → resource name. A
// resource without RERL has no references.
func (r *Resource) ExternalReferences() (map[uint64]string, error) {
	data, err := r.Block("RERL")
	if errors.Is(err, ErrMissingBlock) {
		return map[uint64]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	c := binreader.New(data)
	at, _, err := c.Offset()
	if err != nil {
		return nil, errors.Wrap(err, "read RERL offset")
	}
	count, err := c.Uint32()
	if err != nil {
		return nil, errors.Wrap(err, "read RERL count")
	}

	if err := c.Table(at, count, referenceEntrySize); err != nil {
		return nil, errors.Wrap(err, "RERL table")
	}

	refs := make(map[uint64]string, count)
	for i := uint32(0); i < count; i++ {
		if err := c.Seek(at + int64(i)*referenceEntrySize); err != nil {
			return nil, errors.Wrapf(err, "RERL entry %d", i)
		}
		id, err := c.Uint64()
		if err != nil {
			return nil, errors.Wrapf(err, "RERL entry %d", i)
		}
		name, err := c.OffsetString()
		if err != nil {
			return nil, errors.Wrapf(err, "RERL entry %d name", i)
		}
		refs[id] = name
	}
	return refs, nil
}
