// Package schema models the introspection manifest (NTRO block) of a Source 2
// resource: the structs, fields and enums that describe how the DATA block
// is laid out on disk.
package schema

import "fmt"

// DataType identifies the on-disk type of a field.
type DataType int16

const (
	DataTypeStruct            DataType = 1
	DataTypeEnum              DataType = 2
	DataTypeExternalReference DataType = 3
	DataTypeString4           DataType = 4
	DataTypeByte              DataType = 11
	DataTypeInt16             DataType = 12
	DataTypeUInt16            DataType = 13
	DataTypeInt32             DataType = 14
	DataTypeUInt32            DataType = 15
	DataTypeInt64             DataType = 16
	DataTypeUInt64            DataType = 17
	DataTypeFloat             DataType = 18
	DataTypeVector3           DataType = 22
	DataTypeVector4           DataType = 23
	DataTypeQuaternion        DataType = 25
	DataTypeFltx4             DataType = 27
	DataTypeColor             DataType = 28
	DataTypeBoolean           DataType = 30
	DataTypeString            DataType = 31
	DataTypeMatrix3x4         DataType = 33
	DataTypeMatrix3x4a        DataType = 36
	DataTypeCTransform        DataType = 40
)

var dataTypeNames = map[DataType]string{
	DataTypeStruct:            "Struct",
	DataTypeEnum:              "Enum",
	DataTypeExternalReference: "ExternalReference",
	DataTypeString4:           "String4",
	DataTypeByte:              "Byte",
	DataTypeInt16:             "Int16",
	DataTypeUInt16:            "UInt16",
	DataTypeInt32:             "Int32",
	DataTypeUInt32:            "UInt32",
	DataTypeInt64:             "Int64",
	DataTypeUInt64:            "UInt64",
	DataTypeFloat:             "Float",
	DataTypeVector3:           "Vector3",
	DataTypeVector4:           "Vector4",
	DataTypeQuaternion:        "Quaternion",
	DataTypeFltx4:             "Fltx4",
	DataTypeColor:             "Color",
	DataTypeBoolean:           "Boolean",
	DataTypeString:            "String",
	DataTypeMatrix3x4:         "Matrix3x4",
	DataTypeMatrix3x4a:        "Matrix3x4a",
	DataTypeCTransform:        "CTransform",
}

// Known reports whether t belongs to the closed set of supported types.
func (t DataType) Known() bool {
	_, ok := dataTypeNames[t]
	return ok
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("DataType(%d)", int16(t))
}

// Size returns the natural on-disk size of a scalar of type t. Struct sizes
// come from the manifest, so Size returns 0 for DataTypeStruct and for
// unknown types.
func (t DataType) Size() int64 {
	switch t {
	case DataTypeByte, DataTypeBoolean:
		return 1
	case DataTypeInt16, DataTypeUInt16:
		return 2
	case DataTypeEnum, DataTypeInt32, DataTypeUInt32, DataTypeFloat,
		DataTypeString, DataTypeString4:
		return 4
	case DataTypeInt64, DataTypeUInt64, DataTypeExternalReference:
		return 8
	case DataTypeVector3:
		return 12
	case DataTypeVector4, DataTypeQuaternion, DataTypeFltx4, DataTypeColor:
		return 16
	case DataTypeCTransform:
		return 32
	case DataTypeMatrix3x4, DataTypeMatrix3x4a:
		return 48
	default:
		return 0
	}
}

// Indirection is a pointer-like wrapper around a field's value.
type Indirection byte

const (
	// IndirectionPointer is a single optional offset to the value.
	IndirectionPointer Indirection = 0x03
	// IndirectionArray is an offset followed by an element count.
	IndirectionArray Indirection = 0x04
)

// Size returns the bytes one indirection level occupies in its slot.
func (i Indirection) Size() int64 {
	switch i {
	case IndirectionPointer:
		return 4
	case IndirectionArray:
		return 8
	default:
		return 0
	}
}

func (i Indirection) String() string {
	switch i {
	case IndirectionPointer:
		return "Pointer"
	case IndirectionArray:
		return "Array"
	default:
		return fmt.Sprintf("Indirection(0x%02x)", byte(i))
	}
}

// Field describes one member of a struct.
type Field struct {
	Name         string
	Count        int16
	OnDiskOffset int16
	Indirections []Indirection // outermost first
	TypeData     uint32        // struct or enum id for Struct/Enum fields
	Type         DataType
}

// Struct is one ReferencedStruct of the manifest.
type Struct struct {
	IntrospectionVersion uint32
	ID                   uint32
	Name                 string
	DiskCRC              uint32
	UserVersion          int32
	DiskSize             uint16
	Alignment            uint16
	BaseStructID         uint32
	Fields               []Field
	Flags                byte
}

// EnumMember is a named enum value.
type EnumMember struct {
	Name  string
	Value int32
}

// Enum is one ReferencedEnum of the manifest.
type Enum struct {
	IntrospectionVersion uint32
	ID                   uint32
	Name                 string
	DiskCRC              uint32
	UserVersion          int32
	Members              []EnumMember
}

// Manifest is a parsed introspection manifest.
type Manifest struct {
	IntrospectionVersion uint32
	Structs              []Struct
	Enums                []Enum
}

// StructByID returns the struct with the given id.
func (m *Manifest) StructByID(id uint32) (*Struct, bool) {
	for i := range m.Structs {
		if m.Structs[i].ID == id {
			return &m.Structs[i], true
		}
	}
	return nil, false
}

// EnumByID returns the enum with the given id.
func (m *Manifest) EnumByID(id uint32) (*Enum, bool) {
	for i := range m.Enums {
		if m.Enums[i].ID == id {
			return &m.Enums[i], true
		}
	}
	return nil, false
}

// MemberName returns the name of the member holding value.
func (e *Enum) MemberName(value int32) (string, bool) {
	for _, m := range e.Members {
		if m.Value == value {
			return m.Name, true
		}
	}
	return "", false
}

// Root returns the first referenced struct, which describes the DATA block.
func (m *Manifest) Root() (*Struct, bool) {
	if len(m.Structs) == 0 {
		return nil, false
	}
	return &m.Structs[0], true
}
