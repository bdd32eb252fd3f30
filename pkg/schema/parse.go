package schema

import (
	"github.com/goopsie/s2FileTools/pkg/binreader"
	"github.com/pkg/errors"
)

// On-disk entry sizes inside the NTRO block.
const (
	structEntrySize = 40
	fieldEntrySize  = 24
	enumEntrySize   = 28
	memberEntrySize = 8
)

// ParseManifest decodes an NTRO block. data must start at the block.
func ParseManifest(data []byte) (*Manifest, error) {
	c := binreader.New(data)
	m := &Manifest{}

	var err error
	if m.IntrospectionVersion, err = c.Uint32(); err != nil {
		return nil, errors.Wrap(err, "read introspection version")
	}

	structsAt, structCount, err := readTable(c)
	if err != nil {
		return nil, errors.Wrap(err, "read struct table")
	}
	enumsAt, enumCount, err := readTable(c)
	if err != nil {
		return nil, errors.Wrap(err, "read enum table")
	}

	if err := c.Table(structsAt, structCount, structEntrySize); err != nil {
		return nil, errors.Wrap(err, "struct table")
	}
	if err := c.Table(enumsAt, enumCount, enumEntrySize); err != nil {
		return nil, errors.Wrap(err, "enum table")
	}

	m.Structs = make([]Struct, structCount)
	for i := range m.Structs {
		if err := c.Seek(structsAt + int64(i)*structEntrySize); err != nil {
			return nil, errors.Wrapf(err, "seek struct %d", i)
		}
		if err := readStruct(c, &m.Structs[i]); err != nil {
			return nil, errors.Wrapf(err, "read struct %d", i)
		}
	}

	m.Enums = make([]Enum, enumCount)
	for i := range m.Enums {
		if err := c.Seek(enumsAt + int64(i)*enumEntrySize); err != nil {
			return nil, errors.Wrapf(err, "seek enum %d", i)
		}
		if err := readEnum(c, &m.Enums[i]); err != nil {
			return nil, errors.Wrapf(err, "read enum %d", i)
		}
	}

	return m, nil
}

// readTable reads a relative {offset, count} pair and returns the absolute
// start of the table.
func readTable(c *binreader.Cursor) (int64, uint32, error) {
	at, _, err := c.Offset()
	if err != nil {
		return 0, 0, err
	}
	count, err := c.Uint32()
	if err != nil {
		return 0, 0, err
	}
	return at, count, nil
}

func readStruct(c *binreader.Cursor, s *Struct) error {
	var err error
	if s.IntrospectionVersion, err = c.Uint32(); err != nil {
		return err
	}
	if s.ID, err = c.Uint32(); err != nil {
		return err
	}
	if s.Name, err = c.OffsetString(); err != nil {
		return errors.Wrap(err, "name")
	}
	if s.DiskCRC, err = c.Uint32(); err != nil {
		return err
	}
	if s.UserVersion, err = c.Int32(); err != nil {
		return err
	}
	if s.DiskSize, err = c.Uint16(); err != nil {
		return err
	}
	if s.Alignment, err = c.Uint16(); err != nil {
		return err
	}
	if s.BaseStructID, err = c.Uint32(); err != nil {
		return err
	}

	fieldsAt, fieldCount, err := readTable(c)
	if err != nil {
		return errors.Wrap(err, "field table")
	}
	if s.Flags, err = c.Byte(); err != nil {
		return err
	}

	if err := c.Table(fieldsAt, fieldCount, fieldEntrySize); err != nil {
		return errors.Wrapf(err, "struct %s fields", s.Name)
	}
	s.Fields = make([]Field, fieldCount)
	for i := range s.Fields {
		err := c.At(fieldsAt+int64(i)*fieldEntrySize, func() error {
			return readField(c, &s.Fields[i])
		})
		if err != nil {
			return errors.Wrapf(err, "struct %s field %d", s.Name, i)
		}
	}
	return nil
}

func readField(c *binreader.Cursor, f *Field) error {
	var err error
	if f.Name, err = c.OffsetString(); err != nil {
		return errors.Wrap(err, "name")
	}
	if f.Count, err = c.Int16(); err != nil {
		return err
	}
	if f.OnDiskOffset, err = c.Int16(); err != nil {
		return err
	}

	indirectionsAt, indirectionCount, err := readTable(c)
	if err != nil {
		return errors.Wrap(err, "indirection table")
	}
	if indirectionCount > 0 {
		err = c.At(indirectionsAt, func() error {
			raw, err := c.Bytes(int(indirectionCount))
			if err != nil {
				return err
			}
			f.Indirections = make([]Indirection, len(raw))
			for i, b := range raw {
				f.Indirections[i] = Indirection(b)
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "field %s indirections", f.Name)
		}
	}

	if f.TypeData, err = c.Uint32(); err != nil {
		return err
	}
	t, err := c.Int16()
	if err != nil {
		return err
	}
	f.Type = DataType(t)
	return nil
}

func readEnum(c *binreader.Cursor, e *Enum) error {
	var err error
	if e.IntrospectionVersion, err = c.Uint32(); err != nil {
		return err
	}
	if e.ID, err = c.Uint32(); err != nil {
		return err
	}
	if e.Name, err = c.OffsetString(); err != nil {
		return errors.Wrap(err, "name")
	}
	if e.DiskCRC, err = c.Uint32(); err != nil {
		return err
	}
	if e.UserVersion, err = c.Int32(); err != nil {
		return err
	}

	membersAt, memberCount, err := readTable(c)
	if err != nil {
		return errors.Wrap(err, "member table")
	}

	if err := c.Table(membersAt, memberCount, memberEntrySize); err != nil {
		return errors.Wrapf(err, "enum %s members", e.Name)
	}
	e.Members = make([]EnumMember, memberCount)
	for i := range e.Members {
		m := &e.Members[i]
		err := c.At(membersAt+int64(i)*memberEntrySize, func() error {
			var err error
			if m.Name, err = c.OffsetString(); err != nil {
				return err
			}
			m.Value, err = c.Int32()
			return err
		})
		if err != nil {
			return errors.Wrapf(err, "enum %s member %d", e.Name, i)
		}
	}
	return nil
}
