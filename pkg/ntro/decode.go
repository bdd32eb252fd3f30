// Package ntro decodes resource data described by an introspection manifest
// into a typed tree and renders it as tab-indented text or YAML.
package ntro

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"

	"github.com/goopsie/s2FileTools/pkg/binreader"
	"github.com/goopsie/s2FileTools/pkg/schema"
)

const maxDepth = 64

// Reader decodes structs of one manifest. It holds no per-call state and is
// safe for concurrent use.
type Reader struct {
	Manifest *schema.Manifest

	// ExternalRefs maps external reference ids to resource names. Optional.
	ExternalRefs map[uint64]string
}

// Decode decodes s read at base in data.
func (r *Reader) Decode(data []byte, s *schema.Struct, base int64) (*Node, error) {
	d := &decoder{r: r, c: binreader.New(data)}
	return d.structure(s, base, 0)
}

// ReadStructure decodes s at base and appends its text tree to w.
func (r *Reader) ReadStructure(w *Writer, data []byte, s *schema.Struct, base int64) error {
	n, err := r.Decode(data, s, base)
	if err != nil {
		return err
	}
	n.Write(w)
	return nil
}

// DecodeRoot decodes the first referenced struct of the manifest at base.
func (r *Reader) DecodeRoot(data []byte, base int64) (*Node, error) {
	root, ok := r.Manifest.Root()
	if !ok {
		return nil, errors.Wrap(ErrUnknownStruct, "manifest has no structs")
	}
	return r.Decode(data, root, base)
}

// Dump returns the text tree of the first referenced struct at base.
func (r *Reader) Dump(data []byte, base int64) (string, error) {
	n, err := r.DecodeRoot(data, base)
	if err != nil {
		return "", err
	}
	return n.Text(), nil
}

// Decode is a shorthand for a Reader without external references.
func Decode(m *schema.Manifest, data []byte, s *schema.Struct, base int64) (*Node, error) {
	return (&Reader{Manifest: m}).Decode(data, s, base)
}

// ReadStructure is a shorthand for a Reader without external references.
func ReadStructure(w *Writer, m *schema.Manifest, data []byte, s *schema.Struct, base int64) error {
	return (&Reader{Manifest: m}).ReadStructure(w, data, s, base)
}

// Dump is a shorthand for a Reader without external references.
func Dump(m *schema.Manifest, data []byte, base int64) (string, error) {
	return (&Reader{Manifest: m}).Dump(data, base)
}

type decoder struct {
	r *Reader
	c *binreader.Cursor
}

func (d *decoder) structure(s *schema.Struct, base int64, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, errors.Wrapf(ErrNestingTooDeep, "struct %s", s.Name)
	}

	n := &Node{Struct: s, Fields: make([]FieldValue, 0, len(s.Fields))}
	for i := range s.Fields {
		f := &s.Fields[i]
		if err := d.c.Seek(base + int64(f.OnDiskOffset)); err != nil {
			return nil, &FieldError{Struct: s.Name, Field: f.Name, Err: err}
		}
		fv := FieldValue{Field: f}
		if err := d.values(f, 0, depth, &fv.Values); err != nil {
			return nil, &FieldError{Struct: s.Name, Field: f.Name, Err: err}
		}
		n.Fields = append(n.Fields, fv)
	}
	return n, nil
}

// values resolves indirection level of f at the cursor and appends the
// decoded values.
func (d *decoder) values(f *schema.Field, level, depth int, out *[]Value) error {
	if level == len(f.Indirections) {
		v, err := d.scalar(f, depth)
		if err != nil {
			return err
		}
		*out = append(*out, v)
		return nil
	}

	slot := d.c.Pos()
	offset, err := d.c.Uint32()
	if err != nil {
		return err
	}

	switch ind := f.Indirections[level]; ind {
	case schema.IndirectionPointer:
		if offset == 0 {
			*out = append(*out, Value{Type: f.Type, Empty: true})
			return nil
		}
		if err := d.c.Seek(slot + int64(offset)); err != nil {
			return err
		}
		return d.values(f, level+1, depth, out)

	case schema.IndirectionArray:
		count, err := d.c.Uint32()
		if err != nil {
			return err
		}
		if count == 0 {
			*out = append(*out, Value{Type: f.Type, Empty: true})
			return nil
		}
		stride, err := d.stride(f, level+1)
		if err != nil {
			return err
		}
		if stride == 0 {
			return errors.Wrapf(ErrZeroStride, "%d elements of %s", count, f.Type)
		}
		start := slot + int64(offset)
		if err := d.c.Table(start, count, stride); err != nil {
			return err
		}
		for i := int64(0); i < int64(count); i++ {
			if err := d.c.Seek(start + i*stride); err != nil {
				return err
			}
			if err := d.values(f, level+1, depth, out); err != nil {
				return errors.Wrapf(err, "element %d", i)
			}
		}
		return nil

	default:
		return errors.Wrapf(ErrUnknownIndirection, "code 0x%02x", byte(ind))
	}
}

// stride returns the on-disk size of f seen from indirection level.
func (d *decoder) stride(f *schema.Field, level int) (int64, error) {
	if level < len(f.Indirections) {
		ind := f.Indirections[level]
		if size := ind.Size(); size > 0 {
			return size, nil
		}
		return 0, errors.Wrapf(ErrUnknownIndirection, "code 0x%02x", byte(ind))
	}
	if f.Type == schema.DataTypeStruct {
		s, ok := d.r.Manifest.StructByID(f.TypeData)
		if !ok {
			return 0, errors.Wrapf(ErrUnknownStruct, "id 0x%08x", f.TypeData)
		}
		return int64(s.DiskSize), nil
	}
	if size := f.Type.Size(); size > 0 {
		return size, nil
	}
	return 0, errors.Wrapf(ErrUnknownFieldType, "%s", f.Type)
}

func (d *decoder) scalar(f *schema.Field, depth int) (Value, error) {
	c := d.c
	v := Value{Type: f.Type}
	var err error

	switch f.Type {
	case schema.DataTypeStruct:
		s, ok := d.r.Manifest.StructByID(f.TypeData)
		if !ok {
			return v, errors.Wrapf(ErrUnknownStruct, "id 0x%08x", f.TypeData)
		}
		v.Data, err = d.structure(s, c.Pos(), depth+1)

	case schema.DataTypeEnum:
		var x uint32
		x, err = c.Uint32()
		v.Data = x
		if e, ok := d.r.Manifest.EnumByID(f.TypeData); ok && err == nil {
			v.Label, _ = e.MemberName(int32(x))
		}

	case schema.DataTypeByte, schema.DataTypeBoolean:
		v.Data, err = c.Byte()
	case schema.DataTypeInt16:
		v.Data, err = c.Int16()
	case schema.DataTypeUInt16:
		v.Data, err = c.Uint16()
	case schema.DataTypeInt32:
		v.Data, err = c.Int32()
	case schema.DataTypeUInt32:
		v.Data, err = c.Uint32()
	case schema.DataTypeInt64:
		v.Data, err = c.Int64()
	case schema.DataTypeUInt64:
		v.Data, err = c.Uint64()
	case schema.DataTypeFloat:
		v.Data, err = c.Float32()

	case schema.DataTypeExternalReference:
		var id uint64
		id, err = c.Uint64()
		v.Data = id
		if name, ok := d.r.ExternalRefs[id]; ok && err == nil {
			v.Label = name
		}

	case schema.DataTypeVector3:
		var fs []float32
		if fs, err = c.Float32s(3); err == nil {
			v.Data = mgl32.Vec3{fs[0], fs[1], fs[2]}
		}

	case schema.DataTypeVector4, schema.DataTypeColor, schema.DataTypeFltx4:
		var fs []float32
		if fs, err = c.Float32s(4); err == nil {
			v.Data = mgl32.Vec4{fs[0], fs[1], fs[2], fs[3]}
		}

	case schema.DataTypeQuaternion:
		var fs []float32
		if fs, err = c.Float32s(4); err == nil {
			v.Data = mgl32.Quat{W: fs[3], V: mgl32.Vec3{fs[0], fs[1], fs[2]}}
		}

	case schema.DataTypeMatrix3x4, schema.DataTypeMatrix3x4a:
		var fs []float32
		if fs, err = c.Float32s(12); err == nil {
			v.Data = mgl32.Mat3x4FromRows(
				mgl32.Vec4{fs[0], fs[1], fs[2], fs[3]},
				mgl32.Vec4{fs[4], fs[5], fs[6], fs[7]},
				mgl32.Vec4{fs[8], fs[9], fs[10], fs[11]},
			)
		}

	case schema.DataTypeString, schema.DataTypeString4:
		v.Data, err = d.str()

	case schema.DataTypeCTransform:
		var raw []byte
		if raw, err = c.Bytes(32); err == nil {
			v.Data = append([]byte(nil), raw...)
			v.Unresolved = true
		}

	default:
		return v, errors.Wrapf(ErrUnknownFieldType, "%s", f.Type)
	}

	return v, err
}

// str reads a string through its relative offset and leaves the cursor just
// after the offset field.
func (d *decoder) str() (string, error) {
	slot := d.c.Pos()
	offset, err := d.c.Uint32()
	if err != nil {
		return "", err
	}
	if offset == 0 {
		return "", nil
	}

	var s string
	err = d.c.At(slot+int64(offset), func() error {
		var err error
		s, err = d.c.CString()
		return err
	})
	return s, err
}
