package ntro

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"

	"github.com/goopsie/s2FileTools/pkg/schema"
)

var _ yaml.Marshaler = (*Node)(nil)

// MarshalYAML renders n as a single-key mapping from the struct name to its
// ordered fields.
func (n *Node) MarshalYAML() (interface{}, error) {
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalar(n.Struct.Name, ""),
			n.fieldsYAML(),
		},
	}, nil
}

func (n *Node) fieldsYAML() *yaml.Node {
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range n.Fields {
		value := f.yaml()
		if value.Kind == yaml.ScalarNode && value.LineComment == "" {
			value.LineComment = f.Field.Type.String()
		}
		m.Content = append(m.Content, scalar(f.Field.Name, ""), value)
	}
	return m
}

func (f FieldValue) yaml() *yaml.Node {
	if !hasArray(f.Field) && len(f.Values) == 1 {
		return f.Values[0].yaml()
	}
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, v := range f.Values {
		if v.Empty {
			continue
		}
		seq.Content = append(seq.Content, v.yaml())
	}
	return seq
}

func hasArray(f *schema.Field) bool {
	for _, ind := range f.Indirections {
		if ind == schema.IndirectionArray {
			return true
		}
	}
	return false
}

func scalar(value, tag string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value, Tag: tag}
}

func floatSeq(fs ...float32) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, f := range fs {
		seq.Content = append(seq.Content, scalar(f6(f), "!!float"))
	}
	return seq
}

func (v Value) yaml() *yaml.Node {
	if v.Empty {
		return scalar("null", "!!null")
	}
	if v.Label != "" {
		node := scalar(v.Label, "!!str")
		node.LineComment = fmt.Sprint(v.Data)
		return node
	}

	switch d := v.Data.(type) {
	case *Node:
		return d.fieldsYAML()
	case uint8:
		if v.Type == schema.DataTypeBoolean {
			return scalar(fmt.Sprint(d != 0), "!!bool")
		}
		return scalar(fmt.Sprint(d), "!!int")
	case int16, uint16, int32, uint32, int64, uint64:
		return scalar(fmt.Sprint(d), "!!int")
	case float32:
		return scalar(f6(d), "!!float")
	case mgl32.Vec3:
		return floatSeq(d[0], d[1], d[2])
	case mgl32.Vec4:
		return floatSeq(d[0], d[1], d[2], d[3])
	case mgl32.Quat:
		return floatSeq(d.V[0], d.V[1], d.V[2], d.W)
	case mgl32.Mat3x4:
		rows := &yaml.Node{Kind: yaml.SequenceNode}
		for r := 0; r < 3; r++ {
			row := d.Row(r)
			rows.Content = append(rows.Content, floatSeq(row[0], row[1], row[2], row[3]))
		}
		return rows
	case string:
		return scalar(d, "!!str")
	case []byte:
		node := scalar(ctransformPlaceholder, "!!str")
		node.LineComment = fmt.Sprintf("raw %x", d)
		return node
	default:
		return scalar(fmt.Sprint(d), "")
	}
}
