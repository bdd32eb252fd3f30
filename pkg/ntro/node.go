package ntro

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/goopsie/s2FileTools/pkg/schema"
)

const ctransformPlaceholder = "CTransform (unresolved 32-byte layout)"

// Node is one decoded struct.
type Node struct {
	Struct *schema.Struct
	Fields []FieldValue
}

// FieldValue holds the decoded values of one field. Indirections are
// flattened: an array field yields one Value per element, and a null
// pointer or empty array yields a single empty Value.
type FieldValue struct {
	Field  *schema.Field
	Values []Value
}

// Value is one decoded scalar. Data holds the Go representation:
//
//	Byte, Boolean         uint8
//	Int16 .. UInt64       int16, uint16, int32, uint32, int64, uint64
//	Enum                  uint32
//	ExternalReference     uint64
//	Float                 float32
//	Vector3               mgl32.Vec3
//	Vector4, Color, Fltx4 mgl32.Vec4
//	Quaternion            mgl32.Quat
//	Matrix3x4(a)          mgl32.Mat3x4
//	String, String4       string
//	CTransform            []byte (raw, unresolved)
//	Struct                *Node
type Value struct {
	Type  schema.DataType
	Data  interface{}
	Empty bool

	// Label is the symbolic name of an Enum member or ExternalReference,
	// when the resource provides one.
	Label string

	// Unresolved marks values whose layout is not decoded.
	Unresolved bool
}

// Struct returns the nested node of a Struct value.
func (v Value) Struct() (*Node, bool) {
	n, ok := v.Data.(*Node)
	return n, ok
}

func f6(f float32) string {
	return strconv.FormatFloat(float64(f), 'f', 6, 32)
}

func vecString(c ...float32) string {
	s := "["
	for i, f := range c {
		if i > 0 {
			s += ", "
		}
		s += f6(f)
	}
	return s + "]"
}

// lines returns the text form of a non-struct value.
func (v Value) lines() []string {
	if v.Empty {
		return []string{"empty"}
	}
	if v.Label != "" {
		return []string{v.Label}
	}
	switch d := v.Data.(type) {
	case float32:
		return []string{f6(d)}
	case mgl32.Vec3:
		return []string{vecString(d[0], d[1], d[2])}
	case mgl32.Vec4:
		return []string{vecString(d[0], d[1], d[2], d[3])}
	case mgl32.Quat:
		return []string{vecString(d.V[0], d.V[1], d.V[2], d.W)}
	case mgl32.Mat3x4:
		out := make([]string, 3)
		for r := range out {
			row := d.Row(r)
			out[r] = vecString(row[0], row[1], row[2], row[3])
		}
		return out
	case string:
		return []string{d}
	case []byte:
		return []string{ctransformPlaceholder}
	default:
		return []string{fmt.Sprint(d)}
	}
}

// String returns the single-line text form of v.
func (v Value) String() string {
	if n, ok := v.Struct(); ok && !v.Empty {
		return n.Struct.Name
	}
	s := ""
	for i, l := range v.lines() {
		if i > 0 {
			s += " "
		}
		s += l
	}
	return s
}

// Write renders n as a tab-indented tree at w's current indent.
func (n *Node) Write(w *Writer) {
	w.WriteLine(n.Struct.Name)
	w.Indent++
	for _, f := range n.Fields {
		w.Write(f.Field.Name + " " + f.Field.Type.String() + ": ")
		w.Indent++
		for _, v := range f.Values {
			v.write(w)
		}
		w.Indent--
	}
	w.Indent--
}

func (v Value) write(w *Writer) {
	// every struct value starts on a new line, so struct array elements
	// after the first are separated by an indented blank line
	if nested, ok := v.Struct(); ok && !v.Empty {
		w.WriteLine("")
		nested.Write(w)
		return
	}
	for _, l := range v.lines() {
		w.WriteLine(l)
	}
}

// WriteText writes the text tree of n to out.
func (n *Node) WriteText(out io.Writer) error {
	var w Writer
	n.Write(&w)
	_, err := io.WriteString(out, w.String())
	return err
}

// Text returns the text tree of n.
func (n *Node) Text() string {
	var w Writer
	n.Write(&w)
	return w.String()
}
